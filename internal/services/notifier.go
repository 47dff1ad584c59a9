package services

import (
	"context"

	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/types"
)

// Notifier delivers email tokens. Delivery transport lives outside the
// service layer; the default implementation only logs.
type Notifier interface {
	SendEmailToken(ctx context.Context, user *types.User, token *types.EmailToken) error
}

type logNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) Notifier {
	return &logNotifier{log: log.With("service", "LogNotifier")}
}

func (n *logNotifier) SendEmailToken(ctx context.Context, user *types.User, token *types.EmailToken) error {
	n.log.Info("Email token issued",
		"user_id", user.ID,
		"email", user.Email,
		"purpose", token.Purpose,
		"expires_at", token.ExpiresAt,
	)
	return nil
}
