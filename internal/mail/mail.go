// Package mail dispatches booking-confirmation and password-reset e-mails
// as a detached background task (spec §5 "Background work"). With no
// SMTP_HOST configured, the dispatcher is a silent no-op (spec §6).
package mail

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/parkhub/parkhub-server/infrastructure/logging"
	"github.com/parkhub/parkhub-server/internal/domain"
)

// Config holds the SMTP_{HOST,PORT,USER,PASS,FROM} settings (spec §6). A
// zero-value Config (Host empty) disables sending entirely.
type Config struct {
	Host string
	Port string
	User string
	Pass string
	From string
	// AppURL is embedded in password-reset e-mail bodies.
	AppURL string
}

// Enabled reports whether SMTP_HOST is configured.
func (c Config) Enabled() bool {
	return c.Host != ""
}

// Dispatcher sends booking-confirmation and password-reset e-mails. Every
// send happens on its own goroutine; failures are logged and never
// propagated to the caller (spec §4.F, §5).
type Dispatcher struct {
	cfg    Config
	logger *logging.Logger
}

// New builds a Dispatcher. A Config with Host == "" yields a dispatcher
// whose sends are silent no-ops.
func New(cfg Config, logger *logging.Logger) *Dispatcher {
	return &Dispatcher{cfg: cfg, logger: logger}
}

// NotifyBookingConfirmed implements internal/booking.Notifier: it dispatches
// a confirmation e-mail as a detached task. The send runs on its own
// goroutine, so a caller holding a lock (the booking coordinator calls this
// under its write lock) does not hold it across the SMTP exchange.
func (d *Dispatcher) NotifyBookingConfirmed(ctx context.Context, booking domain.Booking, ownerEmail string) {
	if !d.cfg.Enabled() || ownerEmail == "" {
		return
	}

	subject := "Your ParkHub booking is confirmed"
	body := fmt.Sprintf(
		"Your reservation for slot %d (%s) is confirmed from %s to %s. Total: %.2f %s.",
		booking.SlotNumber, booking.FloorName,
		booking.StartTime.Format("2006-01-02 15:04"), booking.EndTime.Format("2006-01-02 15:04"),
		booking.Pricing.Total, booking.Pricing.Currency,
	)

	go d.send(ctx, ownerEmail, subject, body)
}

// NotifyPasswordReset dispatches a password-reset e-mail containing a
// link built from AppURL and the reset token, as a detached task.
func (d *Dispatcher) NotifyPasswordReset(ctx context.Context, toEmail, token string) {
	if !d.cfg.Enabled() || toEmail == "" {
		return
	}

	subject := "Reset your ParkHub password"
	link := fmt.Sprintf("%s/reset-password?token=%s", d.cfg.AppURL, token)
	body := fmt.Sprintf("Use the link below to reset your password. It expires in one hour.\n\n%s", link)

	go d.send(ctx, toEmail, subject, body)
}

func (d *Dispatcher) send(ctx context.Context, to, subject, body string) {
	addr := fmt.Sprintf("%s:%s", d.cfg.Host, d.cfg.Port)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", d.cfg.From, to, subject, body)

	var auth smtp.Auth
	if d.cfg.User != "" {
		auth = smtp.PlainAuth("", d.cfg.User, d.cfg.Pass, d.cfg.Host)
	}

	if err := smtp.SendMail(addr, auth, d.cfg.From, []string{to}, []byte(msg)); err != nil {
		if d.logger != nil {
			d.logger.Error(ctx, "failed to send e-mail", err, map[string]interface{}{"to": to, "subject": subject})
		}
	}
}
