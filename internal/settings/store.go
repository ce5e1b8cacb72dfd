package settings

import (
	"context"
	"errors"

	"github.com/shandysiswandi/isaback/internal/pkg/database"
	"github.com/shandysiswandi/isaback/internal/pkg/goerror"
	"github.com/shandysiswandi/isaback/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// singletonID is the id of the only row of each settings table.
const singletonID = 1

// Store reads settings rows.
type Store struct {
	db  *gorm.DB
	ins instrument.Instrumentation
}

// NewStore creates a settings store.
func NewStore(db *gorm.DB, ins instrument.Instrumentation) *Store {
	return &Store{db: db, ins: ins}
}

func (s *Store) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("settings.store").Start(ctx, name)
}

func (s *Store) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// first loads the singleton row into dst. A missing row leaves dst untouched.
func (s *Store) first(ctx context.Context, dst any) error {
	err := database.MapError(s.db.WithContext(ctx).First(dst, singletonID).Error)
	if errors.Is(err, goerror.ErrNotFound) {
		return nil
	}
	return err
}

// GetMailer returns the mailer config; a missing row means inactive.
func (s *Store) GetMailer(ctx context.Context) (_ Mailer, err error) {
	ctx, span := s.startSpan(ctx, "GetMailer")
	defer func() { s.endSpan(span, err) }()

	var row mailerConfig
	if err := s.first(ctx, &row); err != nil {
		return Mailer{}, err
	}

	return Mailer{
		Active:   row.Active,
		Host:     row.Host,
		Port:     row.Port,
		Username: row.Username,
		Password: row.Password,
		Origin:   row.Origin,
	}, nil
}

// GetDestinataries returns the mail destinataries; a missing row disables support mail.
func (s *Store) GetDestinataries(ctx context.Context) (_ Destinataries, err error) {
	ctx, span := s.startSpan(ctx, "GetDestinataries")
	defer func() { s.endSpan(span, err) }()

	var row mailerDestinataries
	if err := s.first(ctx, &row); err != nil {
		return Destinataries{}, err
	}

	return Destinataries{Support: row.Support, SupportActive: row.SupportActive}, nil
}

// GetSMS returns the SMS config; a missing row means inactive.
func (s *Store) GetSMS(ctx context.Context) (_ SMS, err error) {
	ctx, span := s.startSpan(ctx, "GetSMS")
	defer func() { s.endSpan(span, err) }()

	var row smsConfig
	if err := s.first(ctx, &row); err != nil {
		return SMS{}, err
	}

	return SMS{
		Active:     row.Active,
		Sender:     row.Sender,
		GatewayURL: row.GatewayURL,
		APIKey:     row.APIKey,
	}, nil
}
