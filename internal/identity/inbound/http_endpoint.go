package inbound

import (
	"github.com/shandysiswandi/isaback/internal/identity/usecase"
	"github.com/shandysiswandi/isaback/internal/pkg/router"
)

// HTTPEndpoint exposes HTTP handlers for user management and password reset.
type HTTPEndpoint struct {
	uc uc
}

// @Summary List users
// @Description Returns a page of users matching the search term.
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page, starting at 1"
// @Param size query int false "Page size, up to 100"
// @Param search query string false "Matches username, name or email"
// @Success 200 {object} router.successResponse{data=UsersResponse}
// @Failure 401 {object} router.errorResponse "Unauthorized"
// @Failure 403 {object} router.errorResponse "Forbidden"
// @Router /api/v1/users [get]
func (h *HTTPEndpoint) UserList(r *router.Request) (any, error) {
	size, err := r.GetQueryInt32("size")
	if err != nil {
		return nil, err
	}

	page, err := r.GetQueryInt32("page")
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.UserList(r.Context(), usecase.UserListInput{
		Search: r.GetQuery("search"),
		Size:   size,
		Page:   page,
	})
	if err != nil {
		return nil, err
	}

	users := make([]UserResponse, 0, len(resp.Users))
	for _, item := range resp.Users {
		users = append(users, toUserResponse(item))
	}

	return UsersResponse{
		Users: users,
		total: resp.Total,
		size:  resp.Size,
		page:  resp.Page,
	}, nil
}

// @Summary User detail
// @Tags Users
// @Security BearerAuth
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} router.successResponse{data=UserDetailResponse}
// @Failure 404 {object} router.errorResponse "User not found"
// @Router /api/v1/users/{id} [get]
func (h *HTTPEndpoint) UserDetail(r *router.Request) (any, error) {
	user, err := h.uc.UserDetail(r.Context(), r.GetParam("id"))
	if err != nil {
		return nil, err
	}

	return UserDetailResponse{User: toUserResponse(*user)}, nil
}

// @Summary Create user
// @Description Creates the user in the identity provider and stores its profile.
// @Tags Users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body UserCreateRequest true "User creation payload"
// @Success 201 {object} router.successResponse{data=UserCreateResponse}
// @Failure 400 {object} router.errorResponse "Validation error"
// @Failure 409 {object} router.errorResponse "Email already in use"
// @Router /api/v1/users [post]
func (h *HTTPEndpoint) UserCreate(r *router.Request) (any, error) {
	var req UserCreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	user, err := h.uc.UserCreate(r.Context(), usecase.UserCreateInput{
		Username:        req.Username,
		Name:            req.Name,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		Email:           req.Email,
		CPF:             req.CPF,
		Phone:           req.Phone,
		RoleID:          req.RoleID,
		Establishments:  req.Establishments,
	})
	if err != nil {
		return nil, err
	}

	return UserCreateResponse{UserResponse: toUserResponse(*user)}, nil
}

// @Summary Update user
// @Description Replaces the user profile. roleId and establishments are kept when omitted.
// @Tags Users
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body UserUpdateRequest true "User update payload"
// @Success 200 {object} router.successResponse{data=UserUpdateResponse}
// @Failure 400 {object} router.errorResponse "Validation error"
// @Failure 404 {object} router.errorResponse "User not found"
// @Router /api/v1/users [put]
func (h *HTTPEndpoint) UserUpdate(r *router.Request) (any, error) {
	var req UserUpdateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	user, err := h.uc.UserUpdate(r.Context(), usecase.UserUpdateInput{
		ID:             req.ID,
		Username:       req.Username,
		Name:           req.Name,
		Email:          req.Email,
		CPF:            req.CPF,
		Phone:          req.Phone,
		RoleID:         req.RoleID,
		Establishments: req.Establishments,
	})
	if err != nil {
		return nil, err
	}

	return UserUpdateResponse{UserResponse: toUserResponse(*user)}, nil
}

// @Summary Request password reset
// @Tags Sessions
// @Accept json
// @Produce json
// @Param request body SessionCreateRequest true "Email"
// @Success 200 {object} router.successResponse
// @Router /api/v1/sessions [post]
func (h *HTTPEndpoint) SessionCreate(r *router.Request) (any, error) {
	var req SessionCreateRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.SessionCreate(r.Context(), usecase.SessionCreateInput{Email: req.Email}); err != nil {
		return nil, err
	}

	return SessionCreateResponse{}, nil
}

// @Summary Reset password
// @Tags Sessions
// @Accept json
// @Produce json
// @Param request body SessionResetRequest true "Token and new password"
// @Success 200 {object} router.successResponse
// @Failure 401 {object} router.errorResponse "Invalid or expired token"
// @Router /api/v1/sessions/reset [post]
func (h *HTTPEndpoint) SessionReset(r *router.Request) (any, error) {
	var req SessionResetRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	if err := h.uc.SessionReset(r.Context(), usecase.SessionResetInput{
		Token:           req.Token,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
	}); err != nil {
		return nil, err
	}

	return SessionResetResponse{}, nil
}
