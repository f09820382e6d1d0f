package queue

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log"
    "time"

    amqp "github.com/rabbitmq/amqp091-go"

    "github.com/fullhouse/poker-signup/internal/mailer"
)

// StartEmailConsumer connects to RabbitMQ, declares the email.outbound queue
// (durable), and delivers jobs through the mailer.  It runs a reconnect loop
// with exponential backoff and returns only when ctx is cancelled; delivery
// errors are logged and the message rejected without requeue so a bad job
// cannot wedge the queue.
func StartEmailConsumer(ctx context.Context, url string, m mailer.Mailer) error {
    backoff := time.Second
    for {
        if ctx.Err() != nil {
            return ctx.Err()
        }
        conn, err := amqp.Dial(url)
        if err != nil {
            log.Printf("email-consumer: failed to dial broker: %v; retrying in %s", err, backoff)
            select {
            case <-time.After(backoff):
            case <-ctx.Done():
                return ctx.Err()
            }
            if backoff < 30*time.Second {
                backoff *= 2
            }
            continue
        }
        backoff = time.Second // reset after successful connect

        if err := consumeLoop(ctx, conn, m); err != nil {
            log.Printf("email-consumer: consume loop ended: %v; reconnecting", err)
            _ = conn.Close()
            select {
            case <-time.After(2 * time.Second):
            case <-ctx.Done():
                return ctx.Err()
            }
        }
    }
}

func consumeLoop(ctx context.Context, conn *amqp.Connection, m mailer.Mailer) error {
    ch, err := conn.Channel()
    if err != nil {
        return fmt.Errorf("channel open: %w", err)
    }
    defer func() { _ = ch.Close() }()

    if err := ch.Qos(20, 0, false); err != nil {
        log.Printf("email-consumer: set QoS failed: %v", err)
    }

    if _, err := ch.QueueDeclare(emailQueueName, true, false, false, false, nil); err != nil {
        return fmt.Errorf("queue declare: %w", err)
    }

    msgs, err := ch.Consume(emailQueueName, "", false, false, false, false, nil)
    if err != nil {
        return fmt.Errorf("queue consume: %w", err)
    }

    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("deliveries channel closed")
            }
            if err := handleDelivery(ctx, m, d.Body); err != nil {
                log.Printf("email-consumer: handle job failed: %v", err)
                _ = d.Nack(false, false) // reject, do not requeue to avoid tight loops
                continue
            }
            _ = d.Ack(false)
        }
    }
}

func handleDelivery(ctx context.Context, m mailer.Mailer, body []byte) error {
    var job EmailJob
    if err := json.Unmarshal(body, &job); err != nil {
        return fmt.Errorf("unmarshal: %w", err)
    }
    return deliver(ctx, m, job)
}

// deliver routes a job to the right mailer call.  Shared with the direct
// publisher so both paths send identical mail.
func deliver(ctx context.Context, m mailer.Mailer, job EmailJob) error {
    switch job.Kind {
    case EmailKindVerification:
        return m.SendVerificationEmail(ctx, job.To, job.Username, job.Token)
    case EmailKindPasswordReset:
        return m.SendPasswordResetEmail(ctx, job.To, job.Username, job.Token)
    case EmailKindWelcome:
        return m.SendWelcomeEmail(ctx, job.To, job.Username)
    default:
        return fmt.Errorf("unknown email kind %q (job %s)", job.Kind, job.ID)
    }
}
