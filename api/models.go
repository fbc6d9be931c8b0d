package api

import (
	"net/http"

	"github.com/BasilOkoth/digitest/botlink"
)

// UserProfile is the synthetic profile returned after token verification.
type UserProfile struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	LoginID       string `json:"loginid"`
	Verified      bool   `json:"verified"`
	AffiliateCode string `json:"affiliateCode,omitempty"`
}

// ServerInfo carries per-request environment metadata echoed in responses.
type ServerInfo struct {
	Environment   string `json:"environment,omitempty"`
	Timestamp     string `json:"timestamp,omitempty"`
	Origin        string `json:"origin,omitempty"`
	CurrentDomain string `json:"currentDomain,omitempty"`
	CurrentOrigin string `json:"currentOrigin,omitempty"`
}

// VerifyTokenRequest is the JSON body for POST /verify-token.
type VerifyTokenRequest struct {
	APIToken      string `json:"apiToken"`
	AffiliateCode string `json:"affiliateCode,omitempty"`
}

// VerifyTokenResponse is returned from POST /verify-token.
type VerifyTokenResponse struct {
	Success    bool        `json:"success"`
	Message    string      `json:"message"`
	Token      string      `json:"token"`
	User       UserProfile `json:"user"`
	ServerInfo ServerInfo  `json:"serverInfo"`
}

// BotConfigRequest is the JSON body for POST /get-bot-config.
type BotConfigRequest struct {
	VerificationToken string `json:"verificationToken"`
}

// BotConfigResponse is returned from POST /get-bot-config.
type BotConfigResponse struct {
	Success    bool                   `json:"success"`
	Config     botlink.StrategyConfig `json:"config"`
	BotURL     string                 `json:"botUrl"`
	Message    string                 `json:"message"`
	ServerInfo ServerInfo             `json:"serverInfo"`
}

// GenerateBotLinkRequest is the JSON body for POST /generate-bot-link.
type GenerateBotLinkRequest struct {
	VerificationToken string `json:"verificationToken"`
	Account1          string `json:"account1,omitempty"`
	Token1            string `json:"token1,omitempty"`
	Currency1         string `json:"currency1,omitempty"`
	Account2          string `json:"account2,omitempty"`
	Token2            string `json:"token2,omitempty"`
	Currency2         string `json:"currency2,omitempty"`
}

// GenerateBotLinkResponse is returned from POST /generate-bot-link.
type GenerateBotLinkResponse struct {
	Success     bool       `json:"success"`
	BotLink     string     `json:"botLink"`
	FullBotLink string     `json:"fullBotLink"`
	Message     string     `json:"message"`
	ServerInfo  ServerInfo `json:"serverInfo"`
}

// AffiliateCodeResponse is returned from GET /get-affiliate-code.
type AffiliateCodeResponse struct {
	Success     bool   `json:"success"`
	Code        string `json:"code"`
	Environment string `json:"environment"`
	Domain      string `json:"domain"`
	Message     string `json:"message"`
}

// TrackReferralRequest is the JSON body for POST /track-referral.
type TrackReferralRequest struct {
	Email         string `json:"email,omitempty"`
	AffiliateCode string `json:"affiliateCode,omitempty"`
	IP            string `json:"ip,omitempty"`
	UserAgent     string `json:"userAgent,omitempty"`
}

// TrackReferralResponse is returned from POST /track-referral.
type TrackReferralResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	ReferralID string `json:"referralId"`
	Origin     string `json:"origin,omitempty"`
}

// HealthResponse is returned from GET /health.
type HealthResponse struct {
	Status      string       `json:"status"`
	Environment string       `json:"environment"`
	Timestamp   string       `json:"timestamp"`
	Version     string       `json:"version"`
	Server      HealthServer `json:"server"`
	CORS        HealthCORS   `json:"cors"`
}

// HealthServer describes the serving process in health output.
type HealthServer struct {
	Port   int    `json:"port"`
	Host   string `json:"host"`
	Origin string `json:"origin,omitempty"`
}

// HealthCORS echoes the allow-list decision for the calling origin.
type HealthCORS struct {
	AllowedOrigins []string `json:"allowedOrigins"`
	CurrentOrigin  string   `json:"currentOrigin,omitempty"`
	IsAllowed      bool     `json:"isAllowed"`
}

// TestDomainResponse is returned from GET /test-domain.
type TestDomainResponse struct {
	CurrentDomain string      `json:"currentDomain"`
	CurrentOrigin string      `json:"currentOrigin,omitempty"`
	Protocol      string      `json:"protocol"`
	Headers       http.Header `json:"headers"`
	Environment   string      `json:"environment"`
}

// ErrorResponse is returned for all error cases. Success is always false;
// the remaining fields are populated per error class.
type ErrorResponse struct {
	Success        bool     `json:"success"`
	Message        string   `json:"message"`
	YourDomain     string   `json:"yourDomain,omitempty"`
	AllowedDomains []string `json:"allowedDomains,omitempty"`
	Path           string   `json:"path,omitempty"`
	Method         string   `json:"method,omitempty"`
	Error          string   `json:"error,omitempty"`
}
