package db

import (
	"context"
	"strings"

	"github.com/shandysiswandi/isaback/internal/identity/entity"
	"gorm.io/gorm"
)

func (s *DB) GetUserByID(ctx context.Context, id string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByID")
	defer func() { s.endSpan(span, err) }()

	var m user
	if err := s.db.WithContext(ctx).Preload("Establishments").First(&m, "id = ?", id).Error; err != nil {
		return nil, s.mapError(err)
	}

	u := toEntityUser(m)
	return &u, nil
}

func (s *DB) GetUserByEmail(ctx context.Context, email string) (_ *entity.User, err error) {
	ctx, span := s.startSpan(ctx, "GetUserByEmail")
	defer func() { s.endSpan(span, err) }()

	var m user
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		return nil, s.mapError(err)
	}

	u := toEntityUser(m)
	return &u, nil
}

// GetUserConflicts reports whether email or username belong to a user other than excludeID.
func (s *DB) GetUserConflicts(ctx context.Context, email, username, excludeID string) (emailTaken, usernameTaken bool, err error) {
	ctx, span := s.startSpan(ctx, "GetUserConflicts")
	defer func() { s.endSpan(span, err) }()

	var found []user
	q := s.db.WithContext(ctx).Select("id", "email", "username").Where("(email = ? OR username = ?)", email, username)
	if excludeID != "" {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Find(&found).Error; err != nil {
		return false, false, s.mapError(err)
	}

	for _, m := range found {
		emailTaken = emailTaken || m.Email == email
		usernameTaken = usernameTaken || m.Username == username
	}

	return emailTaken, usernameTaken, nil
}

func (s *DB) CountEstablishments(ctx context.Context, ids []string) (_ int64, err error) {
	ctx, span := s.startSpan(ctx, "CountEstablishments")
	defer func() { s.endSpan(span, err) }()

	if len(ids) == 0 {
		return 0, nil
	}

	var n int64
	if err := s.db.WithContext(ctx).Model(&establishment{}).Where("id IN ?", ids).Count(&n).Error; err != nil {
		return 0, s.mapError(err)
	}

	return n, nil
}

func (s *DB) GetUserList(ctx context.Context, f entity.UserListFilter) (_ []entity.User, _ int64, err error) {
	ctx, span := s.startSpan(ctx, "GetUserList")
	defer func() { s.endSpan(span, err) }()

	q := s.db.WithContext(ctx).Model(&user{})
	if search := strings.TrimSpace(f.Search); search != "" {
		like := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(username) LIKE ? OR LOWER(email) LIKE ?", like, like, like)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, s.mapError(err)
	}

	var rows []user
	if err := q.Preload("Establishments").Order("name ASC, id ASC").Limit(f.Limit).Offset(f.Offset).Find(&rows).Error; err != nil {
		return nil, 0, s.mapError(err)
	}

	users := make([]entity.User, len(rows))
	for i, m := range rows {
		users[i] = toEntityUser(m)
	}

	return users, total, nil
}

func (s *DB) GetResetTokenByHash(ctx context.Context, hash string) (_ *entity.ResetToken, err error) {
	ctx, span := s.startSpan(ctx, "GetResetTokenByHash")
	defer func() { s.endSpan(span, err) }()

	var m resetToken
	if err := s.db.WithContext(ctx).Where("token_hash = ?", hash).First(&m).Error; err != nil {
		return nil, s.mapError(err)
	}

	return &entity.ResetToken{ID: m.ID, UserID: m.UserID, TokenHash: m.TokenHash, ExpiresAt: m.ExpiresAt}, nil
}
