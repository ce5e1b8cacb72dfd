package inbound

import (
	"net/http"
	"time"

	"github.com/shandysiswandi/isaback/internal/identity/entity"
)

type EstablishmentResponse struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

type UserResponse struct {
	ID             string                  `json:"id"`
	Username       string                  `json:"username"`
	Name           string                  `json:"name"`
	Email          string                  `json:"email"`
	CPF            string                  `json:"cpf"`
	Phone          string                  `json:"phone"`
	RoleID         string                  `json:"roleId"`
	Establishments []EstablishmentResponse `json:"establishments"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

func toUserResponse(u entity.User) UserResponse {
	ests := make([]EstablishmentResponse, 0, len(u.Establishments))
	for _, e := range u.Establishments {
		ests = append(ests, EstablishmentResponse{ID: e.ID, Name: e.Name})
	}

	return UserResponse{
		ID:             u.ID,
		Username:       u.Username,
		Name:           u.Name,
		Email:          u.Email,
		CPF:            u.CPF,
		Phone:          u.Phone,
		RoleID:         u.RoleID,
		Establishments: ests,
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
}

type UserCreateRequest struct {
	Username        string   `json:"username"`
	Name            string   `json:"name"`
	Password        string   `json:"password"`
	ConfirmPassword string   `json:"confirm_password"`
	CPF             string   `json:"cpf"`
	Phone           string   `json:"phone"`
	Email           string   `json:"email"`
	RoleID          string   `json:"roleId"`
	Establishments  []string `json:"establishments"`
}

type UserCreateResponse struct {
	UserResponse
}

func (UserCreateResponse) StatusCode() int { return http.StatusCreated }

func (UserCreateResponse) Message() string { return "User created" }

type UserUpdateRequest struct {
	ID             string   `json:"id"`
	Username       string   `json:"username"`
	Name           string   `json:"name"`
	CPF            string   `json:"cpf"`
	Phone          string   `json:"phone"`
	Email          string   `json:"email"`
	RoleID         *string  `json:"roleId"`
	Establishments []string `json:"establishments"`
}

type UserUpdateResponse struct {
	UserResponse
}

func (UserUpdateResponse) Message() string { return "User updated" }

type UsersResponse struct {
	Users []UserResponse `json:"users"`
	// meta
	total int64
	size  int32
	page  int32
}

func (r UsersResponse) Meta() map[string]any {
	return map[string]any{
		"total": r.total,
		"size":  r.size,
		"page":  r.page,
	}
}

type UserDetailResponse struct {
	User UserResponse `json:"user"`
}

type SessionCreateRequest struct {
	Email string `json:"email"`
}

type SessionCreateResponse struct{}

func (SessionCreateResponse) Message() string {
	return "If the email is registered, reset instructions have been sent"
}

type SessionResetRequest struct {
	Token           string `json:"token"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type SessionResetResponse struct{}

func (SessionResetResponse) Message() string { return "Password has been reset" }
