// Package queue defines the email jobs exchanged over the message broker and
// the background consumer that delivers them.
package queue

// Kinds of outbound email the consumer knows how to deliver.
const (
    EmailKindVerification  = "verification"
    EmailKindPasswordReset = "password_reset"
    EmailKindWelcome       = "welcome"
)

// EmailJob is enqueued whenever a handler needs to send mail.  Delivery is
// pushed off the request path: the handler only enqueues, the consumer talks
// to the email provider.  The payload carries everything needed to build the
// message without querying the primary database.
type EmailJob struct {
    ID         string `json:"id"` // uuid, for log correlation
    Kind       string `json:"kind"`
    To         string `json:"to"`
    Username   string `json:"username"`
    Token      string `json:"token,omitempty"` // verification or reset token
    EnqueuedAt string `json:"enqueued_at"`
}
