package inbound

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/isaback/internal/pkg/jobqueue"
	"github.com/shandysiswandi/isaback/internal/shared/job"
)

type definer interface {
	Define(name string, p jobqueue.Processor)
}

// RegisterJobProcessors defines the notification jobs on q.
func RegisterJobProcessors(q definer, uc uc) {
	q.Define(job.SendMailError, processor(uc.SendMailError))
	q.Define(job.SendMailJobError, processor(uc.SendMailJobError))
	q.Define(job.SendMailForgotPassword, processor(uc.SendMailForgotPassword))
	q.Define(job.SendSmsForgotPassword, processor(uc.SendSmsForgotPassword))
}

// processor decodes the notification payload of a job before calling handle.
// Undecodable payloads are dropped.
func processor[T any](handle func(context.Context, job.Notification[T]) error) jobqueue.Processor {
	return func(ctx context.Context, j jobqueue.Job) error {
		var n job.Notification[T]
		if err := j.Decode(&n); err != nil {
			slog.ErrorContext(ctx, "failed to decode notification job", "job", j.Name, "job_id", j.ID, "data", string(j.Data), "error", err)
			return nil
		}

		return handle(ctx, n)
	}
}
