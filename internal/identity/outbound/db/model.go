package db

import (
	"time"

	"github.com/shandysiswandi/isaback/internal/identity/entity"
)

type user struct {
	ID             string `gorm:"primaryKey"`
	KeycloakID     string `gorm:"index"`
	Username       string `gorm:"uniqueIndex"`
	Name           string
	Email          string `gorm:"uniqueIndex"`
	CPF            string `gorm:"column:cpf"`
	Phone          string
	RoleID         string
	Establishments []establishment `gorm:"many2many:user_establishments"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (user) TableName() string { return "users" }

type establishment struct {
	ID   string `gorm:"primaryKey"`
	Name string
}

func (establishment) TableName() string { return "establishments" }

type resetToken struct {
	ID        int64     `gorm:"primaryKey;autoIncrement:false"`
	UserID    string    `gorm:"index"`
	TokenHash string    `gorm:"uniqueIndex"`
	ExpiresAt time.Time `gorm:"index"`
}

func (resetToken) TableName() string { return "reset_tokens" }

// Models lists the tables owned by the identity module, for migrations.
func Models() []any {
	return []any{&establishment{}, &user{}, &resetToken{}}
}

func toEntityUser(m user) entity.User {
	u := entity.User{
		ID:             m.ID,
		KeycloakID:     m.KeycloakID,
		Username:       m.Username,
		Name:           m.Name,
		Email:          m.Email,
		CPF:            m.CPF,
		Phone:          m.Phone,
		RoleID:         m.RoleID,
		Establishments: make([]entity.Establishment, len(m.Establishments)),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	for i, e := range m.Establishments {
		u.Establishments[i] = entity.Establishment{ID: e.ID, Name: e.Name}
	}
	return u
}

func refs(ids []string) []establishment {
	out := make([]establishment, len(ids))
	for i, id := range ids {
		out[i] = establishment{ID: id}
	}
	return out
}
