// Package authz checks realm roles of the caller against casbin policies.
package authz

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/casbin/casbin/v3"
	"github.com/casbin/casbin/v3/model"
	"github.com/shandysiswandi/isaback/internal/pkg/goerror"
	"github.com/shandysiswandi/isaback/internal/pkg/jwt"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// Actions understood by the policies.
const (
	ActRead   = "read"
	ActCreate = "create"
	ActUpdate = "update"
)

// ErrInvalidPolicy is returned for a policy not shaped "role:object:action".
var ErrInvalidPolicy = errors.New("authz: policy must be role:object:action")

// Authorizer enforces role policies.
type Authorizer struct {
	enforcer *casbin.Enforcer
}

// New builds an in-memory enforcer from policies written "role:object:action".
// "*" matches any object or action.
func New(policies []string) (*Authorizer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, err
	}

	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, err
	}

	for _, p := range policies {
		parts := strings.Split(strings.TrimSpace(p), ":")
		if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPolicy, p)
		}
		if _, err := e.AddPolicy(parts[0], parts[1], parts[2]); err != nil {
			return nil, err
		}
	}

	return &Authorizer{enforcer: e}, nil
}

// Allowed reports whether any of roles may perform act on obj.
func (a *Authorizer) Allowed(roles []string, obj, act string) (bool, error) {
	for _, role := range roles {
		ok, err := a.enforcer.Enforce(role, obj, act)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}

	return false, nil
}

// Check returns the caller claims when the caller is authenticated and one of
// their realm roles grants act on obj.
func (a *Authorizer) Check(ctx context.Context, obj, act string) (*jwt.Claims, error) {
	clm := jwt.GetAuth(ctx)
	if clm == nil {
		return nil, goerror.NewBusiness("Authentication required", goerror.CodeUnauthorized)
	}

	ok, err := a.Allowed(clm.Roles(), obj, act)
	if err != nil {
		slog.ErrorContext(ctx, "failed to check authorization", "user_id", clm.Subject, "error", err)
		return nil, goerror.NewServer(err)
	}

	if !ok {
		slog.WarnContext(ctx, "account not allowed", "user_id", clm.Subject, "object", obj, "action", act)
		return nil, goerror.NewBusiness("Account not allowed", goerror.CodeForbidden)
	}

	return clm, nil
}
