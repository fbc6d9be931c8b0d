package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BasilOkoth/digitest/api"
	"github.com/BasilOkoth/digitest/internal/config"
	"github.com/BasilOkoth/digitest/origin"
	"github.com/BasilOkoth/digitest/token"
)

const allowedOrigin = "https://digitmatch-pro.vercel.app"

func setupServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Config{
		Environment:    "development",
		Port:           3000,
		AffiliateCode:  "AFF123",
		AllowedOrigins: []string{allowedOrigin, "https://*.vercel.app"},
		TokenTTL:       15 * time.Minute,
	}
	allow, err := origin.NewAllowList(cfg.AllowedOrigins, discardLogger())
	require.NoError(t, err)
	iss, err := token.NewIssuer("test-signing-secret", cfg.TokenTTL)
	require.NoError(t, err)
	t.Cleanup(iss.Destroy)

	a := api.New(cfg, allow, iss,
		api.WithLogger(discardLogger()),
		api.WithVerifyDelay(0))
	r := chi.NewRouter()
	r.Mount("/api", a.Router())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func doJSON(t *testing.T, method, url string, body any, headers map[string]string) *http.Response {
	t.Helper()
	var reqBody bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&reqBody).Encode(body))
	}
	req, err := http.NewRequestWithContext(t.Context(), method, url, &reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func verifyToken(t *testing.T, srv *httptest.Server, apiToken string) api.VerifyTokenResponse {
	t.Helper()
	resp := doJSON(t, http.MethodPost, srv.URL+"/api/verify-token", map[string]string{
		"apiToken": apiToken,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return decodeBody[api.VerifyTokenResponse](t, resp)
}

func TestVerifyTokenMissing(t *testing.T) {
	srv := setupServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/verify-token", map[string]string{}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeBody[api.ErrorResponse](t, resp)
	assert.False(t, body.Success)
	assert.Equal(t, "API token is required", body.Message)
}

func TestVerifyTokenTooShort(t *testing.T) {
	srv := setupServer(t)

	// Boundary: exactly 10 characters is still invalid.
	for _, tok := range []string{"x", "abcdefghij"} {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/verify-token", map[string]string{
			"apiToken": tok,
		}, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, tok)
		body := decodeBody[api.ErrorResponse](t, resp)
		assert.False(t, body.Success)
	}
}

func TestVerifyTokenSuccess(t *testing.T) {
	srv := setupServer(t)

	got := verifyToken(t, srv, "abcdefghijk")
	assert.True(t, got.Success)
	assert.Regexp(t, regexp.MustCompile(`^verif_\d+_[a-z0-9]+$`), got.Token)
	assert.Regexp(t, regexp.MustCompile(`^CR\d+$`), got.User.LoginID)
	assert.True(t, got.User.Verified)
	assert.Equal(t, "AFF123", got.User.AffiliateCode, "server affiliate code when none supplied")
	assert.Equal(t, "development", got.ServerInfo.Environment)
}

func TestVerifyTokenEchoesAffiliateCode(t *testing.T) {
	srv := setupServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/verify-token", map[string]string{
		"apiToken":      "abcdefghijk",
		"affiliateCode": "CUSTOM",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[api.VerifyTokenResponse](t, resp)
	assert.Equal(t, "CUSTOM", got.User.AffiliateCode)
}

func TestGetBotConfig(t *testing.T) {
	srv := setupServer(t)
	verif := verifyToken(t, srv, "abcdefghijk").Token

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/get-bot-config", map[string]string{
		"verificationToken": verif,
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[api.BotConfigResponse](t, resp)
	assert.True(t, got.Success)
	assert.Equal(t, "/bot.html", got.BotURL)
	assert.Equal(t, 2.0, got.Config.MartingaleMultiplier)
	assert.Equal(t, 7, got.Config.MaxConsecutiveLosses)
	assert.Equal(t, "DIGITMATCH_INSTANT", got.Config.Strategy)
	assert.False(t, strings.Contains(got.BotURL, "://"), "botUrl must be relative")
}

func TestGetBotConfigMissingToken(t *testing.T) {
	srv := setupServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/get-bot-config", map[string]string{}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetBotConfigInvalidToken(t *testing.T) {
	srv := setupServer(t)

	for _, tok := range []string{"not-verif", "verif_123_forgedforgedforgedforged1"} {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/get-bot-config", map[string]string{
			"verificationToken": tok,
		}, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, tok)
	}
}

func TestGenerateBotLinkEndToEnd(t *testing.T) {
	srv := setupServer(t)
	verif := verifyToken(t, srv, "abcdefghijk").Token

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/generate-bot-link", map[string]string{
		"verificationToken": verif,
		"account1":          "CR1",
		"token1":            "t1",
		"currency1":         "USD",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[api.GenerateBotLinkResponse](t, resp)
	assert.True(t, got.Success)
	assert.True(t, strings.HasPrefix(got.BotLink, "/bot.html?"))
	assert.Contains(t, got.BotLink, "acct1=CR1&token1=t1&cur1=USD")
	assert.Contains(t, got.BotLink, "verif="+verif)
	assert.True(t, strings.HasSuffix(got.FullBotLink, got.BotLink))
	assert.Contains(t, got.FullBotLink, "://")
}

func TestGenerateBotLinkFreshState(t *testing.T) {
	srv := setupServer(t)
	verif := verifyToken(t, srv, "abcdefghijk").Token
	body := map[string]string{
		"verificationToken": verif,
		"account1":          "CR1",
		"token1":            "t1",
		"currency1":         "USD",
	}

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/generate-bot-link", body, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	first := decodeBody[api.GenerateBotLinkResponse](t, resp)

	resp = doJSON(t, http.MethodPost, srv.URL+"/api/generate-bot-link", body, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	second := decodeBody[api.GenerateBotLinkResponse](t, resp)

	assert.NotEqual(t, first.BotLink, second.BotLink)
	assert.NotEqual(t, first.FullBotLink, second.FullBotLink)
}

func TestGenerateBotLinkRejectsMissingAndInvalid(t *testing.T) {
	srv := setupServer(t)

	// This endpoint answers 401 for both missing and malformed tokens.
	for _, body := range []map[string]string{
		{},
		{"verificationToken": "forged"},
	} {
		resp := doJSON(t, http.MethodPost, srv.URL+"/api/generate-bot-link", body, nil)
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		got := decodeBody[api.ErrorResponse](t, resp)
		assert.False(t, got.Success)
		assert.Equal(t, "Valid verification token required", got.Message)
	}
}

func TestOriginGateRejects(t *testing.T) {
	srv := setupServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/health", nil, map[string]string{
		"Origin": "https://evil.com",
	})
	require.Equal(t, http.StatusForbidden, resp.StatusCode)
	got := decodeBody[api.ErrorResponse](t, resp)
	assert.False(t, got.Success)
	assert.Equal(t, "https://evil.com", got.YourDomain)
	assert.Contains(t, got.AllowedDomains, allowedOrigin)
}

func TestOriginGateAllows(t *testing.T) {
	srv := setupServer(t)

	for _, o := range []string{"", allowedOrigin, "https://preview.vercel.app"} {
		headers := map[string]string{}
		if o != "" {
			headers["Origin"] = o
		}
		resp := doJSON(t, http.MethodGet, srv.URL+"/api/health", nil, headers)
		require.Equal(t, http.StatusOK, resp.StatusCode, o)
		if o != "" {
			assert.Equal(t, o, resp.Header.Get("Access-Control-Allow-Origin"))
			assert.Equal(t, "true", resp.Header.Get("Access-Control-Allow-Credentials"))
		}
		resp.Body.Close()
	}
}

func TestOriginGateAppliesToEveryRoute(t *testing.T) {
	srv := setupServer(t)
	headers := map[string]string{"Origin": "https://evil.com"}

	for _, route := range []struct {
		method, path string
	}{
		{http.MethodPost, "/api/verify-token"},
		{http.MethodPost, "/api/get-bot-config"},
		{http.MethodPost, "/api/generate-bot-link"},
		{http.MethodGet, "/api/get-affiliate-code"},
		{http.MethodPost, "/api/track-referral"},
		{http.MethodGet, "/api/test-domain"},
	} {
		resp := doJSON(t, route.method, srv.URL+route.path, map[string]string{}, headers)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, route.path)
		resp.Body.Close()
	}
}

func TestPreflight(t *testing.T) {
	srv := setupServer(t)

	resp := doJSON(t, http.MethodOptions, srv.URL+"/api/verify-token", nil, map[string]string{
		"Origin":                        allowedOrigin,
		"Access-Control-Request-Method": "POST",
	})
	defer resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, allowedOrigin, resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Methods"), "POST")
	assert.Contains(t, resp.Header.Get("Access-Control-Allow-Headers"), "Content-Type")
}

func TestGetAffiliateCode(t *testing.T) {
	srv := setupServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/get-affiliate-code", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[api.AffiliateCodeResponse](t, resp)
	assert.True(t, got.Success)
	assert.Equal(t, "AFF123", got.Code)
	assert.Equal(t, "development", got.Environment)
	assert.NotEmpty(t, got.Domain)
}

func TestTrackReferral(t *testing.T) {
	srv := setupServer(t)

	resp := doJSON(t, http.MethodPost, srv.URL+"/api/track-referral", map[string]string{
		"email":         "user@example.com",
		"affiliateCode": "AFF123",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[api.TrackReferralResponse](t, resp)
	assert.True(t, got.Success)
	assert.NotEmpty(t, got.ReferralID)
}

func TestHealth(t *testing.T) {
	srv := setupServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/health", nil, map[string]string{
		"Origin": allowedOrigin,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[api.HealthResponse](t, resp)
	assert.Equal(t, "OK", got.Status)
	assert.Equal(t, "1.0.0", got.Version)
	assert.Equal(t, 3000, got.Server.Port)
	assert.Contains(t, got.CORS.AllowedOrigins, allowedOrigin)
	assert.True(t, got.CORS.IsAllowed)
}

func TestHealthWithoutOriginReportsNotAllowed(t *testing.T) {
	srv := setupServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/health", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[api.HealthResponse](t, resp)
	// The gate admits originless requests, but the diagnostic reports
	// them as not-allowed.
	assert.False(t, got.CORS.IsAllowed)
}

func TestTestDomain(t *testing.T) {
	srv := setupServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/test-domain", nil, map[string]string{
		"Origin":          allowedOrigin,
		"X-Custom-Header": "probe",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[api.TestDomainResponse](t, resp)
	assert.NotEmpty(t, got.CurrentDomain)
	assert.Equal(t, allowedOrigin, got.CurrentOrigin)
	assert.Equal(t, "http", got.Protocol)
	assert.Equal(t, "probe", got.Headers.Get("X-Custom-Header"))
}

func TestNotFound(t *testing.T) {
	srv := setupServer(t)

	resp := doJSON(t, http.MethodGet, srv.URL+"/api/no-such-endpoint", nil, map[string]string{
		"Origin": allowedOrigin,
	})
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	got := decodeBody[api.ErrorResponse](t, resp)
	assert.False(t, got.Success)
	assert.Equal(t, "Endpoint not found", got.Message)
	assert.Equal(t, "/api/no-such-endpoint", got.Path)
	assert.Equal(t, http.MethodGet, got.Method)
	assert.Equal(t, allowedOrigin, got.YourDomain)
}

func TestVerifyDelaySuspendsWithoutBlocking(t *testing.T) {
	cfg := config.Config{
		Environment:   "development",
		AffiliateCode: "AFF123",
		VerifyDelay:   100 * time.Millisecond,
	}
	allow, err := origin.NewAllowList(nil, discardLogger())
	require.NoError(t, err)
	iss, err := token.NewIssuer("test-signing-secret", 0)
	require.NoError(t, err)
	t.Cleanup(iss.Destroy)

	a := api.New(cfg, allow, iss, api.WithLogger(discardLogger()))
	r := chi.NewRouter()
	r.Mount("/api", a.Router())
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	// Two concurrent verifications complete in roughly one delay, not two.
	start := time.Now()
	errs := make(chan error, 2)
	for range 2 {
		go func() {
			resp, err := http.Post(srv.URL+"/api/verify-token", "application/json",
				strings.NewReader(`{"apiToken":"abcdefghijk"}`))
			if err == nil {
				resp.Body.Close()
			}
			errs <- err
		}()
	}
	require.NoError(t, <-errs)
	require.NoError(t, <-errs)
	assert.Less(t, time.Since(start), 190*time.Millisecond)
}
