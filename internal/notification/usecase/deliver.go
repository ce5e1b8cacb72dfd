package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/isaback/internal/notification/entity"
	"github.com/shandysiswandi/isaback/internal/pkg/mail"
	"github.com/shandysiswandi/isaback/internal/pkg/sms"
)

type delivery struct {
	job  string
	to   string
	from string
	data map[string]any
}

func (s *Usecase) deliverEmail(ctx context.Context, d delivery) error {
	tpl, ok := s.getTemplate(ctx, d.job, entity.ChannelEmail)
	if !ok {
		return fmt.Errorf("no email template for %s", d.job)
	}

	subject, err := s.renderText("subject", tpl.Subject, d.data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render email subject", "job", d.job, "error", err)
		return err
	}

	body, err := s.renderHTML("body", tpl.Body, d.data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render email body", "job", d.job, "error", err)
		return err
	}

	meta := map[string]any{"from": d.from, "subject": subject}
	return s.track(ctx, d, entity.ChannelEmail, meta, func() error {
		return s.repoMail.Send(ctx, mail.Message{
			From:     d.from,
			To:       []string{d.to},
			Subject:  subject,
			HTMLBody: body,
		})
	})
}

func (s *Usecase) deliverSMS(ctx context.Context, d delivery) error {
	tpl, ok := s.getTemplate(ctx, d.job, entity.ChannelSMS)
	if !ok {
		return fmt.Errorf("no sms template for %s", d.job)
	}

	body, err := s.renderText("body", tpl.Body, d.data)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render sms body", "job", d.job, "error", err)
		return err
	}

	return s.track(ctx, d, entity.ChannelSMS, map[string]any{"from": d.from}, func() error {
		return s.repoSMS.Send(ctx, sms.Message{From: d.from, To: d.to, Body: body})
	})
}

// track records a delivery log around send. Log failures never block delivery.
func (s *Usecase) track(ctx context.Context, d delivery, ch entity.Channel, meta map[string]any, send func() error) error {
	logID := s.uid.Generate()
	logged := true
	if err := s.repoDB.CreateDeliveryLog(ctx, entity.CreateDeliveryLog{
		ID:        logID,
		JobName:   d.job,
		Channel:   ch,
		Recipient: d.to,
		Meta:      meta,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to repo create delivery log", "job", d.job, "channel", ch.String(), "error", err)
		logged = false
	}

	sendErr := send()

	if logged {
		up := entity.UpdateDeliveryLog{ID: logID, Status: entity.DeliveryStatusSent}
		if sendErr != nil {
			up.Status, up.Error = entity.DeliveryStatusFailed, sendErr.Error()
		}
		if err := s.repoDB.UpdateDeliveryLogStatus(ctx, up); err != nil {
			slog.ErrorContext(ctx, "failed to repo update delivery log status", "log_id", logID, "error", err)
		}
	}

	if sendErr != nil {
		slog.ErrorContext(ctx, "failed to deliver notification", "job", d.job, "channel", ch.String(), "log_id", logID, "error", sendErr)
		return sendErr
	}

	return nil
}
