package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/BasilOkoth/digitest/botlink"
)

// minAPITokenLength is the threshold below which an opaque API token is
// rejected as invalid. Stand-in for real upstream validation.
const minAPITokenLength = 10

// VerifyToken handles POST /verify-token. It validates the opaque API token
// and mints a verification token for the downstream config and link
// endpoints.
func (a *API) VerifyToken(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[VerifyTokenRequest](w, r)
	if !ok {
		return
	}
	if req.APIToken == "" {
		a.audit.logFailure(AuditTokenRejected, r, "api token missing")
		writeError(w, http.StatusBadRequest, "API token is required")
		return
	}

	// Simulated upstream latency. A per-request suspension, not a
	// blocking sleep: other requests proceed while this one waits.
	select {
	case <-r.Context().Done():
		return
	case <-time.After(a.verifyDelay):
	}

	if len(req.APIToken) <= minAPITokenLength {
		a.audit.logFailure(AuditTokenRejected, r, "api token too short")
		writeError(w, http.StatusUnauthorized, "Invalid API token. Please check your token and try again.")
		return
	}

	verif, err := a.issuer.Mint()
	if err != nil {
		a.writeInternalError(w, err)
		return
	}

	affiliate := req.AffiliateCode
	if affiliate == "" {
		affiliate = a.cfg.AffiliateCode
	}

	a.audit.log(AuditTokenVerified, r)
	writeJSON(w, http.StatusOK, VerifyTokenResponse{
		Success: true,
		Message: "Token validated successfully!",
		Token:   verif,
		User: UserProfile{
			Email:         "user@deriv.com",
			Name:          "Deriv Trader",
			LoginID:       botlink.NewAccountID(),
			Verified:      true,
			AffiliateCode: affiliate,
		},
		ServerInfo: ServerInfo{
			Environment: a.cfg.Environment,
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		},
	})
}

// GetBotConfig handles POST /get-bot-config.
func (a *API) GetBotConfig(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[BotConfigRequest](w, r)
	if !ok {
		return
	}

	cfg, botURL, err := a.links.IssueConfig(req.VerificationToken, r.Host)
	if err != nil {
		a.audit.logFailure(AuditTokenRejected, r, "bot config denied")
		a.mapError(w, err)
		return
	}

	a.audit.log(AuditConfigIssued, r)
	writeJSON(w, http.StatusOK, BotConfigResponse{
		Success: true,
		Config:  cfg,
		BotURL:  botURL,
		Message: "Bot configuration loaded successfully",
		ServerInfo: ServerInfo{
			Origin:      r.Header.Get("Origin"),
			Environment: a.cfg.Environment,
		},
	})
}

// GenerateBotLink handles POST /generate-bot-link. A missing token is
// treated the same as an invalid one here: the endpoint only answers 401
// for token failures.
func (a *API) GenerateBotLink(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[GenerateBotLinkRequest](w, r)
	if !ok {
		return
	}

	link, err := a.links.Generate(req.VerificationToken,
		botlink.Account{ID: req.Account1, Token: req.Token1, Currency: req.Currency1},
		botlink.Account{ID: req.Account2, Token: req.Token2, Currency: req.Currency2},
		requestOrigin(r))
	if err != nil {
		a.audit.logFailure(AuditTokenRejected, r, "bot link denied")
		writeError(w, http.StatusUnauthorized, "Valid verification token required")
		return
	}

	a.audit.log(AuditLinkGenerated, r)
	writeJSON(w, http.StatusOK, GenerateBotLinkResponse{
		Success:     true,
		BotLink:     link.Relative,
		FullBotLink: link.Absolute,
		Message:     "Bot link generated successfully",
		ServerInfo: ServerInfo{
			CurrentDomain: r.Host,
			CurrentOrigin: requestOrigin(r),
			Environment:   a.cfg.Environment,
		},
	})
}

// GetAffiliateCode handles GET /get-affiliate-code.
func (a *API) GetAffiliateCode(w http.ResponseWriter, r *http.Request) {
	a.audit.log(AuditAffiliateCodeServed, r,
		slog.String("origin", r.Header.Get("Origin")))

	writeJSON(w, http.StatusOK, AffiliateCodeResponse{
		Success:     true,
		Code:        a.cfg.AffiliateCode,
		Environment: a.cfg.Environment,
		Domain:      r.Host,
		Message:     "Affiliate code retrieved successfully",
	})
}

// TrackReferral handles POST /track-referral. Referrals are logged, not
// persisted; the generated id lets a client correlate follow-ups.
func (a *API) TrackReferral(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeJSON[TrackReferralRequest](w, r)
	if !ok {
		return
	}

	referralID := uuid.NewString()
	a.audit.log(AuditReferralTracked, r,
		slog.String("referral_id", referralID),
		slog.String("email", req.Email),
		slog.String("affiliate_code", req.AffiliateCode),
		slog.String("origin", r.Header.Get("Origin")))

	writeJSON(w, http.StatusOK, TrackReferralResponse{
		Success:    true,
		Message:    "Referral tracked successfully",
		ReferralID: referralID,
		Origin:     r.Header.Get("Origin"),
	})
}

// Health handles GET /health.
func (a *API) Health(w http.ResponseWriter, r *http.Request) {
	reqOrigin := r.Header.Get("Origin")
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:      "OK",
		Environment: a.cfg.Environment,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Version:     version,
		Server: HealthServer{
			Port:   a.cfg.Port,
			Host:   r.Host,
			Origin: reqOrigin,
		},
		CORS: HealthCORS{
			AllowedOrigins: a.allow.Patterns(),
			CurrentOrigin:  reqOrigin,
			// Diagnostic view: unlike the gate, an absent origin is
			// reported as not-allowed rather than allowed.
			IsAllowed: reqOrigin != "" && a.allow.Allowed(reqOrigin),
		},
	})
}

// TestDomain handles GET /test-domain, echoing request metadata for
// deployment debugging.
func (a *API) TestDomain(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, TestDomainResponse{
		CurrentDomain: r.Host,
		CurrentOrigin: r.Header.Get("Origin"),
		Protocol:      requestProtocol(r),
		Headers:       r.Header,
		Environment:   a.cfg.Environment,
	})
}

// NotFound answers unmatched routes with a structured 404.
func (a *API) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, ErrorResponse{
		Message:    "Endpoint not found",
		Path:       r.URL.Path,
		Method:     r.Method,
		YourDomain: r.Header.Get("Origin"),
	})
}

// requestOrigin returns the declared Origin, falling back to the request's
// own scheme and host for non-browser callers.
func requestOrigin(r *http.Request) string {
	if o := r.Header.Get("Origin"); o != "" {
		return o
	}
	return requestProtocol(r) + "://" + r.Host
}

func requestProtocol(r *http.Request) string {
	if requestIsSecure(r) {
		return "https"
	}
	return "http"
}

func requestIsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return true
	}
	return strings.Contains(strings.ToLower(r.Header.Get("Forwarded")), "proto=https")
}
