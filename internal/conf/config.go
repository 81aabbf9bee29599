package conf

import (
	"fmt"
)

type Bootstrap struct {
	Server  *Server  `yaml:"server" json:"server"`
	Data    *Data    `yaml:"data" json:"data"`
	Payment *Payment `yaml:"payment" json:"payment"`
	App     *App     `yaml:"app" json:"app"`
	Log     *Log     `yaml:"log" json:"log"`
}

type Server struct {
	Http struct {
		Addr    string `yaml:"addr" json:"addr"`
		Timeout string `yaml:"timeout" json:"timeout"`
	} `yaml:"http" json:"http"`
}

type Data struct {
	Database struct {
		Driver       string `yaml:"driver" json:"driver"`
		Source       string `yaml:"source" json:"source"`
		MaxIdleConns int    `yaml:"max_idle_conns" json:"max_idle_conns"`
		MaxOpenConns int    `yaml:"max_open_conns" json:"max_open_conns"`
	} `yaml:"database" json:"database"`
	Redis struct {
		Addr         string `yaml:"addr" json:"addr"`
		Password     string `yaml:"password" json:"password"`
		Db           int32  `yaml:"db" json:"db"`
		ReadTimeout  string `yaml:"read_timeout" json:"read_timeout"`
		WriteTimeout string `yaml:"write_timeout" json:"write_timeout"`
	} `yaml:"redis" json:"redis"`
}

// Payment carries the webhook credentials for the payment processor.
type Payment struct {
	WebhookSecret string `yaml:"webhook_secret" json:"webhook_secret"`
}

// App carries product-level settings.
type App struct {
	// PurchaseURL is where a user is sent when the publish quota denies them.
	PurchaseURL string `yaml:"purchase_url" json:"purchase_url"`
	// SessionTTL is the lifetime of an authenticated session, e.g. "720h".
	SessionTTL string `yaml:"session_ttl" json:"session_ttl"`
	// StalePendingDays is how long a pending order may sit before the cron
	// sweep marks it failed.
	StalePendingDays int `yaml:"stale_pending_days" json:"stale_pending_days"`
}

type Log struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	Output string `yaml:"output" json:"output"`
}

// Validate validates the configuration
func (b *Bootstrap) Validate() error {
	if b.Server == nil {
		return fmt.Errorf("server configuration is required")
	}
	if b.Server.Http.Addr == "" {
		return fmt.Errorf("server.http.addr is required")
	}
	if b.Data == nil {
		return fmt.Errorf("data configuration is required")
	}
	if b.Data.Database.Source == "" {
		return fmt.Errorf("data.database.source is required")
	}
	if b.Payment == nil || b.Payment.WebhookSecret == "" {
		return fmt.Errorf("payment.webhook_secret is required")
	}
	if b.App == nil {
		return fmt.Errorf("app configuration is required")
	}
	if b.App.PurchaseURL == "" {
		return fmt.Errorf("app.purchase_url is required")
	}
	if b.Log == nil {
		return fmt.Errorf("log configuration is required")
	}
	return nil
}
