package identity

import (
	"context"

	"github.com/shandysiswandi/isaback/internal/identity/inbound"
	"github.com/shandysiswandi/isaback/internal/identity/outbound/db"
	"github.com/shandysiswandi/isaback/internal/identity/outbound/idp"
	"github.com/shandysiswandi/isaback/internal/identity/outbound/job"
	"github.com/shandysiswandi/isaback/internal/identity/usecase"
	"github.com/shandysiswandi/isaback/internal/pkg/authz"
	"github.com/shandysiswandi/isaback/internal/pkg/clock"
	"github.com/shandysiswandi/isaback/internal/pkg/config"
	"github.com/shandysiswandi/isaback/internal/pkg/hash"
	"github.com/shandysiswandi/isaback/internal/pkg/idempotency"
	"github.com/shandysiswandi/isaback/internal/pkg/instrument"
	"github.com/shandysiswandi/isaback/internal/pkg/jobqueue"
	"github.com/shandysiswandi/isaback/internal/pkg/keycloak"
	"github.com/shandysiswandi/isaback/internal/pkg/router"
	"github.com/shandysiswandi/isaback/internal/pkg/uid"
	"github.com/shandysiswandi/isaback/internal/pkg/validator"
	"github.com/shandysiswandi/isaback/internal/settings"
	"gorm.io/gorm"
)

// PublicEndpoints lists identity routes that skip bearer authentication.
var PublicEndpoints = inbound.PublicEndpoints

type Dependency struct {
	DB          *gorm.DB                          `validate:"required"`
	Router      *router.Router                    `validate:"required"`
	Queue       *jobqueue.Queue                   `validate:"required"`
	Keycloak    *keycloak.Client                  `validate:"required"`
	Authz       *authz.Authorizer                 `validate:"required"`
	Idempotency idempotency.Idempotency           `validate:"required"`
	Config      config.Config                     `validate:"required"`
	Instrument  instrument.Instrumentation        `validate:"required"`
	UID         uid.NumberID                      `validate:"required"`
	UUID        uid.StringID                      `validate:"required"`
	OID         uid.StringID                      `validate:"required"`
	HMAC        hash.Hash                         `validate:"required"`
	Clock       clock.Clocker                     `validate:"required"`
	Validator   validator.JSONValidator           `validate:"required"`
	Mailer      *settings.Holder[settings.Mailer] `validate:"required"`
	SMS         *settings.Holder[settings.SMS]    `validate:"required"`
}

// Module is the wired identity module.
type Module struct {
	uc *usecase.Usecase
}

// Models returns the gorm models owned by the module, for migrations.
func Models() []any {
	return db.Models()
}

func New(dep Dependency) (*Module, error) {
	if err := dep.Validator.Validate(dep); err != nil {
		return nil, err
	}

	uc := usecase.New(usecase.Dependency{
		RepoDB:      db.NewDB(dep.DB, dep.Instrument),
		RepoIDP:     idp.NewKeycloak(dep.Keycloak, dep.Instrument),
		RepoJob:     job.NewQueue(dep.Queue, dep.Instrument),
		Authz:       dep.Authz,
		Idempotency: dep.Idempotency,
		Config:      dep.Config,
		HMAC:        dep.HMAC,
		UID:         dep.UID,
		UUID:        dep.UUID,
		OID:         dep.OID,
		Clock:       dep.Clock,
		Instrument:  dep.Instrument,
		Mailer:      dep.Mailer,
		SMS:         dep.SMS,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, dep.Validator, uc)

	return &Module{uc: uc}, nil
}

// PurgeExpiredResetTokens is run by the daily schedule.
func (m *Module) PurgeExpiredResetTokens(ctx context.Context) error {
	_, err := m.uc.PurgeExpiredResetTokens(ctx)
	return err
}
