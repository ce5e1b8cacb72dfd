package db

import (
	"context"

	"github.com/shandysiswandi/isaback/internal/identity/entity"
)

func (s *DB) CreateUser(ctx context.Context, u entity.User) (err error) {
	ctx, span := s.startSpan(ctx, "CreateUser")
	defer func() { s.endSpan(span, err) }()

	m := user{
		ID:             u.ID,
		KeycloakID:     u.KeycloakID,
		Username:       u.Username,
		Name:           u.Name,
		Email:          u.Email,
		CPF:            u.CPF,
		Phone:          u.Phone,
		RoleID:         u.RoleID,
		Establishments: refs(u.EstablishmentIDs()),
	}

	return s.mapError(s.db.WithContext(ctx).Create(&m).Error)
}

func (s *DB) CreateResetToken(ctx context.Context, t entity.ResetToken) (err error) {
	ctx, span := s.startSpan(ctx, "CreateResetToken")
	defer func() { s.endSpan(span, err) }()

	return s.mapError(s.db.WithContext(ctx).Create(&resetToken{
		ID:        t.ID,
		UserID:    t.UserID,
		TokenHash: t.TokenHash,
		ExpiresAt: t.ExpiresAt,
	}).Error)
}
