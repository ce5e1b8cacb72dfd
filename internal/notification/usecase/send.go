package usecase

import (
	"context"
	"log/slog"
	"net/url"

	"github.com/shandysiswandi/isaback/internal/shared/job"
)

// SendMailError mails an unhandled request failure to support.
func (s *Usecase) SendMailError(ctx context.Context, n job.Notification[job.ErrorData]) error {
	ctx, span := s.startSpan(ctx, "SendMailError")
	defer span.End()

	if n.To == "" {
		slog.WarnContext(ctx, "no destination for error mail", "name", n.Data.Name)
		return nil
	}

	data := s.baseTemplateData()
	data["name"] = n.Data.Name
	data["message"] = n.Data.Message

	return s.deliverEmail(ctx, delivery{job: job.SendMailError, to: n.To, from: n.From, data: data})
}

// SendMailJobError mails a background job failure to support.
func (s *Usecase) SendMailJobError(ctx context.Context, n job.Notification[job.ErrorData]) error {
	ctx, span := s.startSpan(ctx, "SendMailJobError")
	defer span.End()

	if n.To == "" {
		slog.WarnContext(ctx, "no destination for job error mail", "job", n.Data.Job)
		return nil
	}

	data := s.baseTemplateData()
	data["name"] = n.Data.Name
	data["message"] = n.Data.Message
	data["job"] = n.Data.Job

	return s.deliverEmail(ctx, delivery{job: job.SendMailJobError, to: n.To, from: n.From, data: data})
}

func (s *Usecase) SendMailForgotPassword(ctx context.Context, n job.Notification[job.ForgotPasswordData]) error {
	ctx, span := s.startSpan(ctx, "SendMailForgotPassword")
	defer span.End()

	if n.To == "" {
		slog.WarnContext(ctx, "no destination for forgot password mail", "username", n.Data.Username)
		return nil
	}

	return s.deliverEmail(ctx, delivery{job: job.SendMailForgotPassword, to: n.To, from: n.From, data: s.forgotPasswordData(n.Data)})
}

func (s *Usecase) SendSmsForgotPassword(ctx context.Context, n job.Notification[job.ForgotPasswordData]) error {
	ctx, span := s.startSpan(ctx, "SendSmsForgotPassword")
	defer span.End()

	if n.To == "" {
		slog.WarnContext(ctx, "no destination for forgot password sms", "username", n.Data.Username)
		return nil
	}

	return s.deliverSMS(ctx, delivery{job: job.SendSmsForgotPassword, to: n.To, from: n.From, data: s.forgotPasswordData(n.Data)})
}

func (s *Usecase) forgotPasswordData(d job.ForgotPasswordData) map[string]any {
	web := ""
	if s.cfg != nil {
		web = s.cfg.GetString("app.web")
	}

	data := s.baseTemplateData()
	data["name"] = d.Name
	data["username"] = d.Username
	data["reset_url"] = web + "/reset-password?token=" + url.QueryEscape(d.Token)

	return data
}
