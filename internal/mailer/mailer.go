// Package mailer delivers transactional email through Resend.  In dev mode
// (or when no API key is configured) messages are logged instead of sent so
// the full signup flow works without an email provider.
package mailer

import (
    "context"
    "fmt"
    "log"

    "github.com/resend/resend-go/v2"
)

// Mailer is what the rest of the application depends on; the queue consumer
// and handlers never see the Resend client directly.
type Mailer interface {
    SendVerificationEmail(ctx context.Context, to, username, token string) error
    SendPasswordResetEmail(ctx context.Context, to, username, token string) error
    SendWelcomeEmail(ctx context.Context, to, username string) error
}

// ResendMailer sends mail via the Resend API.
type ResendMailer struct {
    client      *resend.Client
    from        string
    frontendURL string
    dev         bool
}

// New builds a mailer.  With an empty API key or dev=true no client is
// created and every send is logged.
func New(apiKey, from, frontendURL string, dev bool) *ResendMailer {
    var client *resend.Client
    if apiKey != "" && !dev {
        client = resend.NewClient(apiKey)
    }
    return &ResendMailer{client: client, from: from, frontendURL: frontendURL, dev: dev}
}

func (m *ResendMailer) send(ctx context.Context, kind, to, subject, body string) error {
    if m.dev || m.client == nil {
        log.Printf("📧 [dev] %s email to=%s subject=%q\n%s", kind, to, subject, body)
        return nil
    }
    _, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
        From:    m.from,
        To:      []string{to},
        Subject: subject,
        Text:    body,
    })
    if err != nil {
        return fmt.Errorf("send %s email: %w", kind, err)
    }
    log.Printf("📧 %s email sent to %s", kind, to)
    return nil
}

// SendVerificationEmail mails the email-verification link for a new account.
func (m *ResendMailer) SendVerificationEmail(ctx context.Context, to, username, token string) error {
    url := fmt.Sprintf("%s/verify-email?token=%s", m.frontendURL, token)
    subject, body := verificationTemplate(username, url)
    return m.send(ctx, "verification", to, subject, body)
}

// SendPasswordResetEmail mails a password-reset link.
func (m *ResendMailer) SendPasswordResetEmail(ctx context.Context, to, username, token string) error {
    url := fmt.Sprintf("%s/reset-password?token=%s", m.frontendURL, token)
    subject, body := passwordResetTemplate(username, url)
    return m.send(ctx, "password reset", to, subject, body)
}

// SendWelcomeEmail mails the post-verification welcome note.
func (m *ResendMailer) SendWelcomeEmail(ctx context.Context, to, username string) error {
    subject, body := welcomeTemplate(username, m.frontendURL)
    return m.send(ctx, "welcome", to, subject, body)
}
