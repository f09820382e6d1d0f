package queue

import (
    "context"
    "encoding/json"
    "log"
    "time"

    "github.com/google/uuid"
    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/fullhouse/poker-signup/internal/mailer"
)

const emailQueueName = "email.outbound"

// EmailPublisher is the handler-facing side of the queue.  Handlers enqueue
// jobs and move on; failures are the publisher's problem to report.
type EmailPublisher interface {
    PublishEmail(ctx context.Context, kind, to, username, token string) error
}

// AMQPPublisher publishes email jobs to the durable email.outbound queue.
// A fresh connection per publish keeps the publisher stateless; request
// volume on these endpoints is low enough that pooling would be premature.
type AMQPPublisher struct {
    URL string
}

func NewAMQPPublisher(url string) *AMQPPublisher { return &AMQPPublisher{URL: url} }

// PublishEmail marshals the job and publishes it persistently.  Errors are
// logged and returned so callers can decide whether the request should fail;
// most enqueue on a best-effort basis and answer the client regardless.
func (p *AMQPPublisher) PublishEmail(ctx context.Context, kind, to, username, token string) error {
    job := EmailJob{
        ID:         uuid.NewString(),
        Kind:       kind,
        To:         to,
        Username:   username,
        Token:      token,
        EnqueuedAt: time.Now().UTC().Format(time.RFC3339),
    }

    conn, err := amqp.Dial(p.URL)
    if err != nil {
        log.Printf("rabbitmq: dial failed: %v", err)
        return err
    }
    defer func() { _ = conn.Close() }()

    ch, err := conn.Channel()
    if err != nil {
        log.Printf("rabbitmq: channel open failed: %v", err)
        return err
    }
    defer func() { _ = ch.Close() }()

    // Durable so jobs survive broker restarts; declare is idempotent.
    if _, err := ch.QueueDeclare(emailQueueName, true, false, false, false, nil); err != nil {
        log.Printf("rabbitmq: queue declare failed: %v", err)
        return err
    }

    body, err := json.Marshal(job)
    if err != nil {
        log.Printf("rabbitmq: marshal job failed: %v", err)
        return err
    }

    pub := amqp.Publishing{
        ContentType:  "application/json",
        DeliveryMode: amqp.Persistent,
        MessageId:    job.ID,
        Timestamp:    time.Now().UTC(),
        Body:         body,
    }
    if err := ch.PublishWithContext(ctx, "", emailQueueName, false, false, pub); err != nil {
        log.Printf("rabbitmq: publish failed: %v", err)
        return err
    }
    return nil
}

// DirectPublisher delivers jobs synchronously through the mailer.  Used when
// no broker URL is configured, so single-process deployments still send mail.
type DirectPublisher struct {
    Mailer mailer.Mailer
}

func NewDirectPublisher(m mailer.Mailer) *DirectPublisher { return &DirectPublisher{Mailer: m} }

func (p *DirectPublisher) PublishEmail(ctx context.Context, kind, to, username, token string) error {
    return deliver(ctx, p.Mailer, EmailJob{
        ID:       uuid.NewString(),
        Kind:     kind,
        To:       to,
        Username: username,
        Token:    token,
    })
}
