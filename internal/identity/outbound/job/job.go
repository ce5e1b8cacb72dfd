package job

import (
	"context"

	"github.com/shandysiswandi/isaback/internal/pkg/instrument"
	"github.com/shandysiswandi/isaback/internal/pkg/jobqueue"
	shared "github.com/shandysiswandi/isaback/internal/shared/job"
	"go.opentelemetry.io/otel/codes"
)

type enqueuer interface {
	Enqueue(ctx context.Context, name string, data any) (jobqueue.Job, error)
}

type Queue struct {
	queue enqueuer
	ins   instrument.Instrumentation
}

func NewQueue(q enqueuer, ins instrument.Instrumentation) *Queue {
	return &Queue{queue: q, ins: ins}
}

func (q *Queue) enqueue(ctx context.Context, name string, data any) error {
	ctx, span := q.ins.Tracer("identity.outbound.job").Start(ctx, name)
	defer span.End()

	if _, err := q.queue.Enqueue(ctx, name, data); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}

func (q *Queue) EnqueueMailForgotPassword(ctx context.Context, n shared.Notification[shared.ForgotPasswordData]) error {
	return q.enqueue(ctx, shared.SendMailForgotPassword, n)
}

func (q *Queue) EnqueueSmsForgotPassword(ctx context.Context, n shared.Notification[shared.ForgotPasswordData]) error {
	return q.enqueue(ctx, shared.SendSmsForgotPassword, n)
}
