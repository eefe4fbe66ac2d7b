package services

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	twilio "github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/dormhub/dorms-service/internal/utils"
)

// PushResult distinguishes unregistered tokens so stale devices can
// eventually be pruned (currently they are only logged).
type PushResult int

const (
	PushOK PushResult = iota
	PushUnregistered
	PushFailed
)

// EmailSender, PushSender and SMSSender are the outbound notification
// boundaries. All implementations are fire-and-forget from the caller's
// point of view: failures are logged, never propagated into the state
// change that triggered them.
type EmailSender interface {
	SendEmail(recipientName, recipientAddr, subject, plainBody, htmlBody string) error
}

type PushSender interface {
	SendPush(ctx context.Context, token, title, body string, data map[string]string) PushResult
}

type SMSSender interface {
	SendSMS(to, body string) error
}

/* ---------- SendGrid ---------- */

type sendgridEmailSender struct {
	client    *sendgrid.Client
	fromName  string
	fromEmail string
	sandbox   bool
}

func NewSendGridEmailSender(client *sendgrid.Client, fromName, fromEmail string, sandbox bool) EmailSender {
	return &sendgridEmailSender{client: client, fromName: fromName, fromEmail: fromEmail, sandbox: sandbox}
}

func (s *sendgridEmailSender) SendEmail(recipientName, recipientAddr, subject, plainBody, htmlBody string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(recipientName, recipientAddr)
	msg := mail.NewSingleEmail(from, subject, to, plainBody, htmlBody)
	if s.sandbox {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}
	resp, err := s.client.Send(msg)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}

/* ---------- Firebase Cloud Messaging ---------- */

type fcmPushSender struct {
	client *messaging.Client
}

// NewFCMPushSender takes the firebase app initialized once at process
// start; no lazy global init.
func NewFCMPushSender(ctx context.Context, app *firebase.App) (PushSender, error) {
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, err
	}
	return &fcmPushSender{client: client}, nil
}

func (s *fcmPushSender) SendPush(ctx context.Context, token, title, body string, data map[string]string) PushResult {
	msg := &messaging.Message{
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Token: token,
		Data:  data,
	}
	if _, err := s.client.Send(ctx, msg); err != nil {
		if messaging.IsUnregistered(err) {
			utils.Logger.WithError(err).Warnf("Push token unregistered: %s…", truncateToken(token))
			return PushUnregistered
		}
		utils.Logger.WithError(err).Warnf("Push send failure to token %s…", truncateToken(token))
		return PushFailed
	}
	return PushOK
}

func truncateToken(token string) string {
	if len(token) > 12 {
		return token[:12]
	}
	return token
}

/* ---------- Twilio ---------- */

type twilioSMSSender struct {
	client    *twilio.RestClient
	fromPhone string
}

func NewTwilioSMSSender(client *twilio.RestClient, fromPhone string) SMSSender {
	return &twilioSMSSender{client: client, fromPhone: fromPhone}
}

func (s *twilioSMSSender) SendSMS(to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.fromPhone)
	params.SetBody(body)
	_, err := s.client.Api.CreateMessage(params)
	return err
}
