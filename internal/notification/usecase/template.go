package usecase

import (
	"bytes"
	"context"
	"errors"
	htmltemplate "html/template"
	"log/slog"
	"text/template"

	"github.com/shandysiswandi/isaback/internal/notification/entity"
	"github.com/shandysiswandi/isaback/internal/pkg/goerror"
	"github.com/shandysiswandi/isaback/internal/shared/job"
)

type templateKey struct {
	job string
	ch  entity.Channel
}

// defaultTemplates are used when the database holds no template for a job.
var defaultTemplates = map[templateKey]entity.Template{
	{job.SendMailError, entity.ChannelEmail}: {
		Subject: "[{{.app_name}}] Internal error: {{.name}}",
		Body: `<p>An unexpected error reached a client of {{.app_name}}.</p>
<p><b>{{.name}}</b></p>
<pre>{{.message}}</pre>`,
	},
	{job.SendMailJobError, entity.ChannelEmail}: {
		Subject: "[{{.app_name}}] Job {{.job}} failed",
		Body: `<p>The background job <b>{{.job}}</b> failed.</p>
<p><b>{{.name}}</b></p>
<pre>{{.message}}</pre>`,
	},
	{job.SendMailForgotPassword, entity.ChannelEmail}: {
		Subject: "{{.app_name}} password reset",
		Body: `<p>Hello {{.name}},</p>
<p>We received a request to reset the password of <b>{{.username}}</b>.</p>
<p><a href="{{.reset_url}}">Choose a new password</a></p>
<p>If you did not ask for it, ignore this message.</p>
<p>{{.app_name}} &copy; {{.year}}</p>`,
	},
	{job.SendSmsForgotPassword, entity.ChannelSMS}: {
		Body: `{{.app_name}}: reset the password of {{.username}} at {{.reset_url}}`,
	},
}

func (s *Usecase) getTemplate(ctx context.Context, jobName string, ch entity.Channel) (entity.Template, bool) {
	tpl, err := s.repoDB.GetTemplate(ctx, jobName, ch)
	if err == nil {
		return *tpl, true
	}
	if !errors.Is(err, goerror.ErrNotFound) {
		slog.ErrorContext(ctx, "failed to repo get template", "job", jobName, "channel", ch.String(), "error", err)
	}

	def, ok := defaultTemplates[templateKey{jobName, ch}]
	if !ok {
		slog.WarnContext(ctx, "notification template not found", "job", jobName, "channel", ch.String())
		return entity.Template{}, false
	}
	def.JobName, def.Channel = jobName, ch

	return def, true
}

func (s *Usecase) renderHTML(name, tpl string, data map[string]any) (string, error) {
	t, err := htmltemplate.New(name).Option("missingkey=zero").Parse(tpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *Usecase) renderText(name, tpl string, data map[string]any) (string, error) {
	t, err := template.New(name).Option("missingkey=zero").Parse(tpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (s *Usecase) baseTemplateData() map[string]any {
	name := "ISA"
	if s.cfg != nil {
		if v := s.cfg.GetString("app.name"); v != "" {
			name = v
		}
	}

	return map[string]any{
		"app_name":      name,
		"support_email": s.destinataries.Load().Support,
		"year":          s.clock.Now().Format("2006"),
	}
}
