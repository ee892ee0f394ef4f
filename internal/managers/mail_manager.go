package managers

import (
	"context"
	"fmt"
	"time"

	"github.com/mailgun/mailgun-go/v4"
	"github.com/matcornic/hermes/v2"
	log "github.com/sirupsen/logrus"

	"camphub/internal/config"
)

// MailMgr is the outbound-notification contract. The auth flow only needs
// password-reset delivery; everything about transport and formatting stays
// behind this interface.
type MailMgr interface {
	SendPasswordResetMail(email, name, resetURL string) error
}

// MailManager delivers mail through Mailgun with bodies rendered by Hermes.
type MailManager struct {
	Hermes     *hermes.Hermes
	Mailgun    *mailgun.MailgunImpl
	from       string
	production bool
}

// NewMailManager initializes the mail manager from configuration. Outside
// production no mail leaves the process; sends succeed silently.
func NewMailManager(cfg *config.Config) MailMgr {
	log.Info("Initializing mail manager")

	if !cfg.IsProduction() {
		log.Info("Running in development mode, email will not be sent to users")
	}

	mm := &MailManager{
		Hermes: &hermes.Hermes{
			Theme:         new(hermes.Default),
			TextDirection: hermes.TDLeftToRight,
			Product: hermes.Product{
				Name: cfg.FromName,
				Link: "https://camphub.dev/",
			},
		},
		Mailgun:    mailgun.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey),
		from:       fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail),
		production: cfg.IsProduction(),
	}

	log.Info("Initialized mail manager")
	return mm
}

// SendPasswordResetMail mails the plaintext reset link to the account owner.
// The reset secret only ever leaves the server through this channel.
func (mm *MailManager) SendPasswordResetMail(email, name, resetURL string) error {
	if !mm.production {
		log.Info("Skipping password reset mail in development mode")
		return nil
	}

	mailBody := hermes.Email{
		Body: hermes.Body{
			Name: name,
			Intros: []string{
				"You are receiving this email because you (or someone else) has requested the reset of a password.",
			},
			Actions: []hermes.Action{
				{
					Instructions: "Click the button below to reset your password. The link expires in 10 minutes.",
					Button: hermes.Button{
						Text: "Reset your password",
						Link: resetURL,
					},
				},
			},
			Outros: []string{
				"If you did not request a password reset, no further action is required on your part.",
			},
		},
	}

	emailBody, err := mm.Hermes.GenerateHTML(mailBody)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(5*time.Second))
	defer cancel()

	message := mm.Mailgun.NewMessage(mm.from, "Password reset token", "", email)
	message.SetHtml(emailBody)
	if _, _, err = mm.Mailgun.Send(ctx, message); err != nil {
		log.Warning("Error sending password reset mail: " + err.Error())
		return err
	}
	log.Debug("Password reset mail sent to ", email)

	return nil
}
