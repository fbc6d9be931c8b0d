package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/BasilOkoth/digitest/token"
)

const maxBodySize = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Message: msg})
}

// mapError converts domain errors to the HTTP error taxonomy: missing input
// is a client error, a failed token check is an auth failure, anything else
// is internal.
func (a *API) mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, token.ErrMissingToken):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, token.ErrInvalidToken):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		a.writeInternalError(w, err)
	}
}

// writeInternalError reports a 500 with the underlying detail suppressed
// outside development.
func (a *API) writeInternalError(w http.ResponseWriter, err error) {
	resp := ErrorResponse{Message: "Internal server error"}
	if a.cfg.Environment == "development" && err != nil {
		resp.Error = err.Error()
	}
	writeJSON(w, http.StatusInternalServerError, resp)
}

// decodeJSON reads a JSON body into T. An empty body decodes to the zero
// value so that field-level validation produces the missing-input errors.
func decodeJSON[T any](w http.ResponseWriter, r *http.Request) (T, bool) {
	var v T
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(&v); err != nil {
		if errors.Is(err, io.EOF) {
			return v, true
		}
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return v, false
	}
	return v, true
}
