package usecase

import (
	"context"
	"encoding/hex"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/shandysiswandi/isaback/internal/identity/entity"
	"github.com/shandysiswandi/isaback/internal/pkg/goerror"
	"github.com/shandysiswandi/isaback/internal/pkg/idempotency"
	"github.com/shandysiswandi/isaback/internal/shared/job"
)

const (
	defaultResetTokenTTL = 30 * time.Minute
	defaultResetWindow   = time.Minute
)

type SessionCreateInput struct {
	Email string
}

// SessionCreate starts a password reset. It answers the same way whether
// or not the email belongs to a user.
func (s *Usecase) SessionCreate(ctx context.Context, in SessionCreateInput) error {
	ctx, span := s.startSpan(ctx, "SessionCreate")
	defer span.End()

	email := strings.TrimSpace(strings.ToLower(in.Email))

	if s.idemp != nil {
		emailHash, err := s.digest(email)
		if err != nil {
			slog.ErrorContext(ctx, "failed to hash reset request email", "error", err)
			return goerror.NewServer(err)
		}

		window := s.durationOr("modules.identity.reset_request_window_seconds", time.Second, defaultResetWindow)
		state, err := s.idemp.Acquire(ctx, "identity:reset:"+emailHash, window)
		if err != nil {
			slog.ErrorContext(ctx, "failed to acquire reset request slot", "error", err)
			return goerror.NewServer(err)
		}
		if state != idempotency.StateNone {
			slog.WarnContext(ctx, "reset request throttled", "email", email)
			return nil
		}
	}

	user, err := s.repoDB.GetUserByEmail(ctx, email)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "reset requested for unknown email", "email", email)
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by email", "email", email, "error", err)
		return goerror.NewServer(err)
	}

	token := s.oid.Generate()
	tokenHash, err := s.digest(token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash reset token", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}
	ttl := s.durationOr("modules.identity.reset_token_ttl_minutes", time.Minute, defaultResetTokenTTL)

	if err := s.repoDB.CreateResetToken(ctx, entity.ResetToken{
		ID:        s.uid.Generate(),
		UserID:    user.ID,
		TokenHash: tokenHash,
		ExpiresAt: s.clock.Now().Add(ttl),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create reset token", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	data := job.ForgotPasswordData{Name: user.Name, Username: user.Username, Token: token}

	if mailer := s.mailer.Load(); mailer.Active {
		err := s.repoJob.EnqueueMailForgotPassword(ctx, job.Notification[job.ForgotPasswordData]{
			To:   user.Email,
			From: mailer.Origin,
			Data: data,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to enqueue forgot password mail", "user_id", user.ID, "error", err)
		}
	}

	if sms := s.sms.Load(); sms.Active && user.Phone != "" {
		err := s.repoJob.EnqueueSmsForgotPassword(ctx, job.Notification[job.ForgotPasswordData]{
			To:   user.Phone,
			From: sms.Sender,
			Data: data,
		})
		if err != nil {
			slog.ErrorContext(ctx, "failed to enqueue forgot password sms", "user_id", user.ID, "error", err)
		}
	}

	return nil
}

func (s *Usecase) digest(v string) (string, error) {
	b, err := s.hmac.Hash(v)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
