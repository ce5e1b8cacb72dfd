package db

import (
	"context"
	"time"

	"github.com/shandysiswandi/isaback/internal/identity/entity"
	"github.com/shandysiswandi/isaback/internal/pkg/goerror"
	"gorm.io/gorm"
)

func (s *DB) UpdateUser(ctx context.Context, p entity.UserPatch) (err error) {
	ctx, span := s.startSpan(ctx, "UpdateUser")
	defer func() { s.endSpan(span, err) }()

	return s.mapError(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		fields := map[string]any{
			"username": p.Username,
			"name":     p.Name,
			"email":    p.Email,
			"cpf":      p.CPF,
			"phone":    p.Phone,
		}
		if p.RoleID != nil {
			fields["role_id"] = *p.RoleID
		}

		res := tx.Model(&user{ID: p.ID}).Updates(fields)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return goerror.ErrNotFound
		}

		if p.Establishments == nil {
			return nil
		}

		return tx.Model(&user{ID: p.ID}).Association("Establishments").Replace(refs(p.Establishments))
	}))
}

func (s *DB) DeleteResetToken(ctx context.Context, id int64) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteResetToken")
	defer func() { s.endSpan(span, err) }()

	return s.mapError(s.db.WithContext(ctx).Delete(&resetToken{}, id).Error)
}

func (s *DB) DeleteExpiredResetTokens(ctx context.Context, now time.Time) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "DeleteExpiredResetTokens")
	defer func() { s.endSpan(span, err) }()

	res := s.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&resetToken{})
	if res.Error != nil {
		return 0, s.mapError(res.Error)
	}

	return res.RowsAffected, nil
}
