// Package email envía correo saliente. Fire-and-forget desde el punto de
// vista del core: un fallo se loguea y se retorna, nadie reintenta acá.
package email

import "context"

// Sender envía un correo HTML a un destinatario.
type Sender interface {
	SendEmail(ctx context.Context, to, subject, htmlBody string) error
}

// Config SMTP del sender.
type Config struct {
	Host               string `yaml:"host"`
	Port               int    `yaml:"port"`
	From               string `yaml:"from"`
	User               string `yaml:"user"`
	Pass               string `yaml:"pass"`
	TLSMode            string `yaml:"tls_mode"` // "auto" | "ssl" | "none"
	InsecureSkipVerify bool   `yaml:"insecure_skip_verify"`
}
