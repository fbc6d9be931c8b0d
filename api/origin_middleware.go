package api

import "net/http"

// OriginMiddleware gates every request on the origin allow-list and handles
// CORS for accepted browser callers. Rejections carry the offending origin
// and the full allow-list so a misconfigured deployment is diagnosable from
// the response alone.
func (a *API) OriginMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqOrigin := r.Header.Get("Origin")
		if !a.allow.Allowed(reqOrigin) {
			a.audit.logFailure(AuditOriginRejected, r, "origin not in allow-list")
			writeJSON(w, http.StatusForbidden, ErrorResponse{
				Message:        "CORS Error: Your domain is not allowed to access this API",
				YourDomain:     reqOrigin,
				AllowedDomains: a.allow.Patterns(),
			})
			return
		}

		if reqOrigin != "" {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", reqOrigin)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Add("Vary", "Origin")
		}

		if r.Method == http.MethodOptions {
			h := w.Header()
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
