// Package settings loads the tenant mail and SMS settings kept in the
// database and serves them to the rest of the service through Holders.
package settings

import "time"

// Mailer is the outgoing mail configuration.
type Mailer struct {
	Active   bool
	Host     string
	Port     int
	Username string
	Password string
	// Origin is the sender address of every notification mail.
	Origin string
}

// Destinataries lists who receives operational mail.
type Destinataries struct {
	Support       string
	SupportActive bool
}

// SupportAddress returns the support address when support mail is enabled.
func (d Destinataries) SupportAddress() string {
	if !d.SupportActive {
		return ""
	}
	return d.Support
}

// SMS is the SMS gateway configuration.
type SMS struct {
	Active     bool
	Sender     string
	GatewayURL string
	APIKey     string
}

type mailerConfig struct {
	ID        int64 `gorm:"primaryKey"`
	Active    bool
	Host      string
	Port      int
	Username  string
	Password  string
	Origin    string
	UpdatedAt time.Time
}

func (mailerConfig) TableName() string { return "mailer_configs" }

type mailerDestinataries struct {
	ID            int64 `gorm:"primaryKey"`
	Support       string
	SupportActive bool
	UpdatedAt     time.Time
}

func (mailerDestinataries) TableName() string { return "mailer_destinataries" }

type smsConfig struct {
	ID         int64 `gorm:"primaryKey"`
	Active     bool
	Sender     string
	GatewayURL string
	APIKey     string `gorm:"column:api_key"`
	UpdatedAt  time.Time
}

func (smsConfig) TableName() string { return "sms_configs" }

// Models lists the tables owned by this package, for migrations.
func Models() []any {
	return []any{&mailerConfig{}, &mailerDestinataries{}, &smsConfig{}}
}
