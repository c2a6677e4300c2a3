// Package mailer delivers account credentials over SMTP.
package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"strings"

	"github.com/clubstride/hourtrack/internal/config"
	"github.com/clubstride/hourtrack/internal/models"
	"github.com/clubstride/hourtrack/internal/services"
	mail "github.com/go-mail/mail/v2"
)

const credentialsSubject = "Your hourtrack account is ready"

var credentialsBody = template.Must(template.New("credentials").Parse(`<p>Hi {{.Name}},</p>
<p>Your {{.Role}} account has been approved.</p>
<p>Username: <strong>{{.Username}}</strong><br>
Temporary password: <strong>{{.Password}}</strong></p>
<p>You will be asked to choose a new password the first time you sign in.</p>
{{- if .LoginURL}}
<p><a href="{{.LoginURL}}">Sign in</a></p>
{{- end}}
`))

var errNoRecipient = errors.New("user has no email address")

type credentialsView struct {
	Name     string
	Role     string
	Username string
	Password string
	LoginURL string
}

// SMTPMailer sends credential mail through a STARTTLS SMTP relay.
type SMTPMailer struct {
	from     string
	loginURL string
	send     func(message *mail.Message) error
}

// New returns an SMTP mailer, or a no-op mailer when SMTP is not configured.
func New(cfg config.SMTPConfig) services.CredentialsNotifier {
	if !cfg.Enabled() {
		return Noop{}
	}

	dialer := mail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Pass)
	dialer.StartTLSPolicy = mail.MandatoryStartTLS
	dialer.TLSConfig = &tls.Config{
		ServerName:         cfg.Host,
		InsecureSkipVerify: cfg.SkipTLSVerify,
	}

	return &SMTPMailer{
		from:     cfg.From,
		loginURL: strings.TrimSpace(cfg.LoginURL),
		send:     func(message *mail.Message) error { return dialer.DialAndSend(message) },
	}
}

func (mailer *SMTPMailer) SendCredentials(ctx context.Context, user models.User, credentials services.IssuedCredentials) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	message, err := mailer.buildCredentialsMessage(user, credentials)
	if err != nil {
		return err
	}
	if err := mailer.send(message); err != nil {
		return fmt.Errorf("send credentials to user %d: %w", user.ID, err)
	}
	return nil
}

func (mailer *SMTPMailer) buildCredentialsMessage(user models.User, credentials services.IssuedCredentials) (*mail.Message, error) {
	recipient := strings.TrimSpace(user.Email)
	if recipient == "" {
		return nil, errNoRecipient
	}

	var body bytes.Buffer
	view := credentialsView{
		Name:     user.Name,
		Role:     user.Role.Label(),
		Username: credentials.Username,
		Password: credentials.TemporaryPassword,
		LoginURL: mailer.loginURL,
	}
	if err := credentialsBody.Execute(&body, view); err != nil {
		return nil, fmt.Errorf("render credentials mail: %w", err)
	}

	message := mail.NewMessage()
	message.SetHeader("From", mailer.from)
	message.SetAddressHeader("To", recipient, user.Name)
	message.SetHeader("Subject", credentialsSubject)
	message.SetBody("text/html", body.String())
	return message, nil
}

// Noop drops credential mail. The approving admin reads the credentials from the response.
type Noop struct{}

func (Noop) SendCredentials(context.Context, models.User, services.IssuedCredentials) error {
	return nil
}
