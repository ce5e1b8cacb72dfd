package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/isaback/internal/pkg/goerror"
)

var errInvalidResetToken = goerror.NewBusiness("Invalid or expired token", goerror.CodeUnauthorized)

type SessionResetInput struct {
	Token           string
	Password        string
	ConfirmPassword string
}

func (s *Usecase) SessionReset(ctx context.Context, in SessionResetInput) error {
	ctx, span := s.startSpan(ctx, "SessionReset")
	defer span.End()

	if in.Password != in.ConfirmPassword {
		return goerror.NewBusiness("Passwords do not match", goerror.CodeInvalidInput)
	}

	tokenHash, err := s.digest(in.Token)
	if err != nil {
		slog.ErrorContext(ctx, "failed to hash reset token", "error", err)
		return goerror.NewServer(err)
	}

	token, err := s.repoDB.GetResetTokenByHash(ctx, tokenHash)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "reset token not found")
		return errInvalidResetToken
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get reset token", "error", err)
		return goerror.NewServer(err)
	}

	if token.Expired(s.clock.Now()) {
		slog.WarnContext(ctx, "reset token expired", "token_id", token.ID, "user_id", token.UserID)
		s.deleteResetToken(ctx, token.ID)
		return errInvalidResetToken
	}

	user, err := s.repoDB.GetUserByID(ctx, token.UserID)
	if errors.Is(err, goerror.ErrNotFound) {
		slog.WarnContext(ctx, "reset token owner not found", "user_id", token.UserID)
		s.deleteResetToken(ctx, token.ID)
		return errInvalidResetToken
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user by id", "user_id", token.UserID, "error", err)
		return goerror.NewServer(err)
	}

	if err := s.repoIDP.ResetPassword(ctx, user.KeycloakID, in.Password); err != nil {
		slog.ErrorContext(ctx, "failed to reset password in identity provider", "user_id", user.ID, "error", err)
		return goerror.NewServer(err)
	}

	s.deleteResetToken(ctx, token.ID)

	return nil
}

func (s *Usecase) deleteResetToken(ctx context.Context, id int64) {
	if err := s.repoDB.DeleteResetToken(ctx, id); err != nil {
		slog.ErrorContext(ctx, "failed to repo delete reset token", "token_id", id, "error", err)
	}
}

// PurgeExpiredResetTokens drops reset tokens past their expiry.
func (s *Usecase) PurgeExpiredResetTokens(ctx context.Context) (int64, error) {
	ctx, span := s.startSpan(ctx, "PurgeExpiredResetTokens")
	defer span.End()

	n, err := s.repoDB.DeleteExpiredResetTokens(ctx, s.clock.Now())
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo delete expired reset tokens", "error", err)
		return 0, err
	}

	if n > 0 {
		slog.InfoContext(ctx, "expired reset tokens purged", "count", n)
	}

	return n, nil
}
