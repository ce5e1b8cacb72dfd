package notification

import (
	"context"

	"github.com/shandysiswandi/isaback/internal/notification/inbound"
	"github.com/shandysiswandi/isaback/internal/notification/outbound/db"
	"github.com/shandysiswandi/isaback/internal/notification/outbound/email"
	"github.com/shandysiswandi/isaback/internal/notification/outbound/job"
	"github.com/shandysiswandi/isaback/internal/notification/outbound/sms"
	"github.com/shandysiswandi/isaback/internal/notification/usecase"
	"github.com/shandysiswandi/isaback/internal/pkg/authz"
	"github.com/shandysiswandi/isaback/internal/pkg/clock"
	"github.com/shandysiswandi/isaback/internal/pkg/config"
	"github.com/shandysiswandi/isaback/internal/pkg/instrument"
	"github.com/shandysiswandi/isaback/internal/pkg/jobqueue"
	"github.com/shandysiswandi/isaback/internal/pkg/mail"
	"github.com/shandysiswandi/isaback/internal/pkg/router"
	"github.com/shandysiswandi/isaback/internal/pkg/uid"
	"github.com/shandysiswandi/isaback/internal/pkg/validator"
	"github.com/shandysiswandi/isaback/internal/settings"
	"gorm.io/gorm"
)

type Dependency struct {
	DB            *gorm.DB                                 `validate:"required"`
	Router        *router.Router                           `validate:"required"`
	Queue         *jobqueue.Queue                          `validate:"required"`
	Mail          mail.Mail                                `validate:"required"`
	Authz         *authz.Authorizer                        `validate:"required"`
	Config        config.Config                            `validate:"required"`
	Instrument    instrument.Instrumentation               `validate:"required"`
	UID           uid.NumberID                             `validate:"required"`
	Clock         clock.Clocker                            `validate:"required"`
	Validator     validator.Validator                      `validate:"required"`
	Mailer        *settings.Holder[settings.Mailer]        `validate:"required"`
	Destinataries *settings.Holder[settings.Destinataries] `validate:"required"`
	SMS           *settings.Holder[settings.SMS]           `validate:"required"`
}

// Module is the wired notification module. It reports failures to support
// and processes the notification jobs.
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
		RepoDB:        db.NewDB(dep.DB, dep.Instrument),
		RepoMail:      email.New(dep.Mail, dep.Mailer, dep.Instrument),
		RepoSMS:       sms.New(dep.SMS, dep.Instrument),
		RepoJob:       job.NewQueue(dep.Queue, dep.Instrument),
		Authz:         dep.Authz,
		Config:        dep.Config,
		UID:           dep.UID,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Mailer:        dep.Mailer,
		Destinataries: dep.Destinataries,
	})

	inbound.RegisterJobProcessors(dep.Queue, uc)
	inbound.RegisterHTTPEndpoint(dep.Router, uc)

	return &Module{uc: uc}, nil
}

// NotifyFailure implements router.FailureNotifier.
func (m *Module) NotifyFailure(ctx context.Context, name, message string) error {
	return m.uc.NotifyFailure(ctx, name, message)
}

// NotifyJobFailure is the job queue fail listener.
func (m *Module) NotifyJobFailure(ctx context.Context, failed jobqueue.Job, err error) {
	m.uc.NotifyJobFailure(ctx, failed, err)
}
