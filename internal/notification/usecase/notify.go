package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/isaback/internal/pkg/goerror"
	"github.com/shandysiswandi/isaback/internal/pkg/jobqueue"
	"github.com/shandysiswandi/isaback/internal/shared/job"
)

// NotifyFailure enqueues a SendMailError job for support when the mailer is active.
func (s *Usecase) NotifyFailure(ctx context.Context, name, message string) error {
	mailer := s.mailer.Load()
	if !mailer.Active {
		return nil
	}

	return s.repoJob.EnqueueMailError(ctx, job.Notification[job.ErrorData]{
		To:   s.destinataries.Load().SupportAddress(),
		From: mailer.Origin,
		Data: job.ErrorData{Name: name, Message: message},
	})
}

// NotifyJobFailure enqueues a SendMailJobError job for a failed job when the
// mailer is active. Failures of error mails themselves are only logged.
func (s *Usecase) NotifyJobFailure(ctx context.Context, failed jobqueue.Job, err error) {
	if failed.Name == job.SendMailError || failed.Name == job.SendMailJobError {
		return
	}

	mailer := s.mailer.Load()
	if !mailer.Active {
		return
	}

	if enqErr := s.repoJob.EnqueueMailJobError(ctx, job.Notification[job.ErrorData]{
		To:   s.destinataries.Load().SupportAddress(),
		From: mailer.Origin,
		Data: job.ErrorData{Name: goerror.Name(err), Message: err.Error(), Job: failed.Name},
	}); enqErr != nil {
		slog.ErrorContext(ctx, "failed to enqueue job error mail", "job", failed.Name, "error", enqErr)
	}
}
