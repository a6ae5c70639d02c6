package audit

import (
	"context"
	"log/slog"
	"time"
)

// Logger writes audit entries for privileged mutations: agreement
// decisions, role changes, recorded payments.
type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, actor, action, resource, resourceID, status, details string) {
	al.logger.Info("audit",
		slog.String("actor", actor),
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("status", status),
		slog.String("details", details),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogAgreementDecision(ctx context.Context, actor, agreementID, decision string) {
	al.LogAction(ctx, actor, decision, "agreement", agreementID, "applied", "")
}

func (al *Logger) LogRoleChange(ctx context.Context, actor, userID string, from, to string) {
	al.LogAction(ctx, actor, "role_change", "user", userID, "applied", from+" -> "+to)
}

func (al *Logger) LogPayment(ctx context.Context, actor, paymentID, details string) {
	al.LogAction(ctx, actor, "record_payment", "payment", paymentID, "applied", details)
}
