package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/isaback/internal/identity/entity"
	"github.com/shandysiswandi/isaback/internal/pkg/clock"
	"github.com/shandysiswandi/isaback/internal/pkg/config"
	"github.com/shandysiswandi/isaback/internal/pkg/goerror"
	"github.com/shandysiswandi/isaback/internal/pkg/hash"
	"github.com/shandysiswandi/isaback/internal/pkg/idempotency"
	"github.com/shandysiswandi/isaback/internal/pkg/instrument"
	"github.com/shandysiswandi/isaback/internal/pkg/jwt"
	"github.com/shandysiswandi/isaback/internal/pkg/uid"
	"github.com/shandysiswandi/isaback/internal/settings"
	"github.com/shandysiswandi/isaback/internal/shared/job"
	"go.opentelemetry.io/otel/trace"
)

const resourceUsers = "users"

type repoDB interface {
	GetUserByID(ctx context.Context, id string) (*entity.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUserConflicts(ctx context.Context, email, username, excludeID string) (emailTaken, usernameTaken bool, err error)
	GetUserList(ctx context.Context, f entity.UserListFilter) ([]entity.User, int64, error)
	CountEstablishments(ctx context.Context, ids []string) (int64, error)
	GetResetTokenByHash(ctx context.Context, hash string) (*entity.ResetToken, error)

	CreateUser(ctx context.Context, u entity.User) error
	CreateResetToken(ctx context.Context, t entity.ResetToken) error

	UpdateUser(ctx context.Context, p entity.UserPatch) error

	DeleteResetToken(ctx context.Context, id int64) error
	DeleteExpiredResetTokens(ctx context.Context, now time.Time) (int64, error)
}

type repoIDP interface {
	CreateUser(ctx context.Context, u entity.User, password string) (string, error)
	UpdateUser(ctx context.Context, keycloakID string, u entity.User) error
	ResetPassword(ctx context.Context, keycloakID, password string) error
	DeleteUser(ctx context.Context, keycloakID string) error
}

type repoJob interface {
	EnqueueMailForgotPassword(ctx context.Context, n job.Notification[job.ForgotPasswordData]) error
	EnqueueSmsForgotPassword(ctx context.Context, n job.Notification[job.ForgotPasswordData]) error
}

type authorizer interface {
	Check(ctx context.Context, obj, act string) (*jwt.Claims, error)
}

type Usecase struct {
	repoDB  repoDB
	repoIDP repoIDP
	repoJob repoJob
	authz   authorizer
	idemp   idempotency.Idempotency
	cfg     config.Config
	hmac    hash.Hash
	uid     uid.NumberID
	uuid    uid.StringID
	oid     uid.StringID
	clock   clock.Clocker
	ins     instrument.Instrumentation
	mailer  *settings.Holder[settings.Mailer]
	sms     *settings.Holder[settings.SMS]
}

type Dependency struct {
	RepoDB      repoDB
	RepoIDP     repoIDP
	RepoJob     repoJob
	Authz       authorizer
	Idempotency idempotency.Idempotency
	Config      config.Config
	HMAC        hash.Hash
	UID         uid.NumberID
	UUID        uid.StringID
	OID         uid.StringID
	Clock       clock.Clocker
	Instrument  instrument.Instrumentation
	Mailer      *settings.Holder[settings.Mailer]
	SMS         *settings.Holder[settings.SMS]
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:  dep.RepoDB,
		repoIDP: dep.RepoIDP,
		repoJob: dep.RepoJob,
		authz:   dep.Authz,
		idemp:   dep.Idempotency,
		cfg:     dep.Config,
		hmac:    dep.HMAC,
		uid:     dep.UID,
		uuid:    dep.UUID,
		oid:     dep.OID,
		clock:   dep.Clock,
		ins:     dep.Instrument,
		mailer:  dep.Mailer,
		sms:     dep.SMS,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.usecase").Start(ctx, name)
}

// ensureEstablishments fails with 400 unless every id names an existing establishment.
func (s *Usecase) ensureEstablishments(ctx context.Context, ids []string) error {
	ids = lo.Uniq(lo.Compact(ids))
	if len(ids) == 0 {
		return nil
	}

	n, err := s.repoDB.CountEstablishments(ctx, ids)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo count establishments", "ids", ids, "error", err)
		return goerror.NewServer(err)
	}

	if n != int64(len(ids)) {
		slog.WarnContext(ctx, "unknown establishment requested", "ids", ids, "found", n)
		return goerror.NewBusiness("Establishment not found", goerror.CodeInvalidInput)
	}

	return nil
}

// ensureUnique fails with 409 when email or username belong to another user.
func (s *Usecase) ensureUnique(ctx context.Context, email, username, excludeID string) error {
	emailTaken, usernameTaken, err := s.repoDB.GetUserConflicts(ctx, email, username, excludeID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo get user conflicts", "email", email, "username", username, "error", err)
		return goerror.NewServer(err)
	}

	if emailTaken {
		slog.WarnContext(ctx, "email already in use", "email", email)
		return goerror.NewBusiness("Email already in use", goerror.CodeConflict)
	}
	if usernameTaken {
		slog.WarnContext(ctx, "username already in use", "username", username)
		return goerror.NewBusiness("Username already in use", goerror.CodeConflict)
	}

	return nil
}

func (s *Usecase) durationOr(key string, unit, fallback time.Duration) time.Duration {
	if s.cfg != nil {
		if v := s.cfg.GetInt64(key); v > 0 {
			return time.Duration(v) * unit
		}
	}
	return fallback
}
