package db

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

type DB struct {
	db  *gorm.DB
	ins instrument.Instrumentation
}

func NewDB(db *gorm.DB, ins instrument.Instrumentation) *DB {
	return &DB{db: db, ins: ins}
}

func (s *DB) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("identity.outbound.db").Start(ctx, name)
}

func (s *DB) endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, goerror.ErrNotFound) && !errors.Is(err, goerror.ErrConflict) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (s *DB) mapError(err error) error {
	return database.MapError(err)
}
