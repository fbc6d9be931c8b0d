package api

import (
	"log/slog"
	"net/http"
	"time"
)

// AuditEvent identifies the type of security-relevant action being logged.
type AuditEvent string

const (
	AuditTokenVerified       AuditEvent = "token_verified"
	AuditTokenRejected       AuditEvent = "token_rejected"
	AuditConfigIssued        AuditEvent = "config_issued"
	AuditLinkGenerated       AuditEvent = "link_generated"
	AuditOriginRejected      AuditEvent = "origin_rejected"
	AuditReferralTracked     AuditEvent = "referral_tracked"
	AuditAffiliateCodeServed AuditEvent = "affiliate_code_served"
)

// auditLogger wraps slog.Logger for structured security audit logging.
// Token values never appear in audit output; only event metadata does.
type auditLogger struct {
	logger *slog.Logger
}

func newAuditLogger(logger *slog.Logger) *auditLogger {
	return &auditLogger{
		logger: logger.With("component", "audit"),
	}
}

func (al *auditLogger) log(event AuditEvent, r *http.Request, attrs ...slog.Attr) {
	baseAttrs := []slog.Attr{
		slog.String("event", string(event)),
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("timestamp", time.Now().UTC().Format(time.RFC3339)),
	}
	baseAttrs = append(baseAttrs, attrs...)
	al.logger.LogAttrs(r.Context(), slog.LevelInfo, "audit", baseAttrs...)
}

// logFailure logs a rejected request with its reason.
func (al *auditLogger) logFailure(event AuditEvent, r *http.Request, reason string, extra ...slog.Attr) {
	attrs := []slog.Attr{
		slog.String("reason", reason),
	}
	attrs = append(attrs, extra...)
	al.log(event, r, attrs...)
}
