package settings

import (
	"context"

	"github.com/shandysiswandi/isaback/internal/pkg/authz"
	"github.com/shandysiswandi/isaback/internal/pkg/jwt"
	"github.com/shandysiswandi/isaback/internal/pkg/router"
)

const resource = "settings"

type authorizer interface {
	Check(ctx context.Context, obj, act string) (*jwt.Claims, error)
}

// MailerResponse is the mailer config as shown to administrators.
type MailerResponse struct {
	Active        bool   `json:"active"`
	Host          string `json:"host"`
	Port          int    `json:"port"`
	Username      string `json:"username"`
	Origin        string `json:"origin"`
	Support       string `json:"support"`
	SupportActive bool   `json:"support_active"`
}

// SMSResponse is the SMS config as shown to administrators.
type SMSResponse struct {
	Active     bool   `json:"active"`
	Sender     string `json:"sender"`
	GatewayURL string `json:"gateway_url"`
}

// HTTPEndpoint serves the loaded settings. Secrets are never returned.
type HTTPEndpoint struct {
	loader *Loader
	authz  authorizer
}

// RegisterHTTPEndpoint mounts the settings routes.
func RegisterHTTPEndpoint(r *router.Router, l *Loader, az authorizer) {
	end := &HTTPEndpoint{loader: l, authz: az}

	r.GET("/api/v1/settings/mailer", end.Mailer)
	r.GET("/api/v1/settings/sms", end.SMS)
}

// Mailer returns the mailer config and its destinataries.
func (h *HTTPEndpoint) Mailer(r *router.Request) (any, error) {
	if _, err := h.authz.Check(r.Context(), resource, authz.ActRead); err != nil {
		return nil, err
	}

	m := h.loader.Mailer.Load()
	d := h.loader.Destinataries.Load()

	return MailerResponse{
		Active:        m.Active,
		Host:          m.Host,
		Port:          m.Port,
		Username:      m.Username,
		Origin:        m.Origin,
		Support:       d.Support,
		SupportActive: d.SupportActive,
	}, nil
}

// SMS returns the SMS config.
func (h *HTTPEndpoint) SMS(r *router.Request) (any, error) {
	if _, err := h.authz.Check(r.Context(), resource, authz.ActRead); err != nil {
		return nil, err
	}

	s := h.loader.SMS.Load()

	return SMSResponse{Active: s.Active, Sender: s.Sender, GatewayURL: s.GatewayURL}, nil
}
