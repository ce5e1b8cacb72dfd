package usecase

import (
	"context"

	"github.com/shandysiswandi/isaback/internal/notification/entity"
	"github.com/shandysiswandi/isaback/internal/pkg/clock"
	"github.com/shandysiswandi/isaback/internal/pkg/config"
	"github.com/shandysiswandi/isaback/internal/pkg/instrument"
	"github.com/shandysiswandi/isaback/internal/pkg/jwt"
	"github.com/shandysiswandi/isaback/internal/pkg/mail"
	"github.com/shandysiswandi/isaback/internal/pkg/sms"
	"github.com/shandysiswandi/isaback/internal/pkg/uid"
	"github.com/shandysiswandi/isaback/internal/settings"
	"github.com/shandysiswandi/isaback/internal/shared/job"
	"go.opentelemetry.io/otel/trace"
)

type repoDB interface {
	GetTemplate(ctx context.Context, jobName string, ch entity.Channel) (*entity.Template, error)
	CreateDeliveryLog(ctx context.Context, dl entity.CreateDeliveryLog) error
	UpdateDeliveryLogStatus(ctx context.Context, u entity.UpdateDeliveryLog) error
	ListDeliveryLogs(ctx context.Context, limit, offset int) ([]entity.DeliveryLog, int64, error)
}

type repoMail interface {
	Send(ctx context.Context, msg mail.Message) error
}

type repoSMS interface {
	Send(ctx context.Context, msg sms.Message) error
}

type repoJob interface {
	EnqueueMailError(ctx context.Context, n job.Notification[job.ErrorData]) error
	EnqueueMailJobError(ctx context.Context, n job.Notification[job.ErrorData]) error
}

type authorizer interface {
	Check(ctx context.Context, obj, act string) (*jwt.Claims, error)
}

type Usecase struct {
	repoDB        repoDB
	repoMail      repoMail
	repoSMS       repoSMS
	repoJob       repoJob
	authz         authorizer
	cfg           config.Config
	uid           uid.NumberID
	clock         clock.Clocker
	ins           instrument.Instrumentation
	mailer        *settings.Holder[settings.Mailer]
	destinataries *settings.Holder[settings.Destinataries]
}

type Dependency struct {
	RepoDB        repoDB
	RepoMail      repoMail
	RepoSMS       repoSMS
	RepoJob       repoJob
	Authz         authorizer
	Config        config.Config
	UID           uid.NumberID
	Clock         clock.Clocker
	Instrument    instrument.Instrumentation
	Mailer        *settings.Holder[settings.Mailer]
	Destinataries *settings.Holder[settings.Destinataries]
}

func New(dep Dependency) *Usecase {
	return &Usecase{
		repoDB:        dep.RepoDB,
		repoMail:      dep.RepoMail,
		repoSMS:       dep.RepoSMS,
		repoJob:       dep.RepoJob,
		authz:         dep.Authz,
		cfg:           dep.Config,
		uid:           dep.UID,
		clock:         dep.Clock,
		ins:           dep.Instrument,
		mailer:        dep.Mailer,
		destinataries: dep.Destinataries,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}
