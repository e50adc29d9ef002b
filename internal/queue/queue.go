// internal/queue/queue.go
package queue

import (
    "context"
    "encoding/json"
    "errors"
    "log"

    "github.com/streadway/amqp"

    appErrors "github.com/umutalparslan/push-notification-system/internal/errors"
    "github.com/umutalparslan/push-notification-system/internal/model"
)

const maxRequeues = 3

// Publisher is the producer side of the campaign queue. Enqueue writes one
// persistent message to the durable queue, so broker restarts do not lose
// pending jobs.
type Publisher interface {
    Enqueue(job model.CampaignJob) error
}

type AMQPQueue struct {
    conn  *amqp.Connection
    ch    *amqp.Channel
    queue amqp.Queue
}

func Connect(url, name string) (*AMQPQueue, error) {
    conn, err := amqp.Dial(url)
    if err != nil {
        return nil, err
    }

    ch, err := conn.Channel()
    if err != nil {
        conn.Close()
        return nil, err
    }

    q, err := ch.QueueDeclare(
        name,
        true,  // durable
        false, // delete when unused
        false, // exclusive
        false, // no-wait
        nil,   // arguments
    )
    if err != nil {
        ch.Close()
        conn.Close()
        return nil, err
    }

    log.Println("✅ Connected to RabbitMQ, queue:", name)
    return &AMQPQueue{conn: conn, ch: ch, queue: q}, nil
}

func (q *AMQPQueue) Close() {
    q.ch.Close()
    q.conn.Close()
}

func (q *AMQPQueue) Enqueue(job model.CampaignJob) error {
    body, err := json.Marshal(job)
    if err != nil {
        return err
    }
    err = q.ch.Publish(
        "",           // default exchange
        q.queue.Name, // routing key
        false,
        false,
        amqp.Publishing{
            ContentType:  "application/json",
            DeliveryMode: amqp.Persistent,
            Body:         body,
        },
    )
    if err != nil {
        return err
    }
    log.Printf("campaign %d sent to queue", job.ID)
    return nil
}

// JobProcessor is the dispatch engine as seen by the consumer.
type JobProcessor interface {
    Dispatch(ctx context.Context, job model.CampaignJob) error
}

// Consume runs the worker loop: one message at a time, manual ack only after
// the processor returns. AckDecision spells out the policy so redelivery
// stays safe: a crashed consumer leaves the message unacked and the broker
// redelivers it; replays are absorbed by the idempotent ledger upsert.
func (q *AMQPQueue) Consume(ctx context.Context, processor JobProcessor) error {
    // One unacked delivery per consumer; pending jobs spread across workers
    // instead of piling onto whichever connected first.
    if err := q.ch.Qos(1, 0, false); err != nil {
        return err
    }

    msgs, err := q.ch.Consume(
        q.queue.Name,
        "",
        false, // autoAck off: ack only after dispatch returns
        false,
        false,
        false,
        nil,
    )
    if err != nil {
        return err
    }

    log.Println("🚀 Worker running, waiting for campaigns...")
    for {
        select {
        case <-ctx.Done():
            return ctx.Err()
        case d, ok := <-msgs:
            if !ok {
                return errors.New("queue channel closed")
            }
            q.handle(ctx, processor, d)
        }
    }
}

func (q *AMQPQueue) handle(ctx context.Context, processor JobProcessor, d amqp.Delivery) {
    var job model.CampaignJob
    if err := json.Unmarshal(d.Body, &job); err != nil {
        log.Println("⚠️ Invalid job payload, dropping:", err)
        d.Ack(false)
        return
    }

    log.Printf("processing campaign %d from queue", job.ID)
    err := processor.Dispatch(ctx, job)

    switch Decide(err, requeueCount(d)) {
    case AckDone:
        d.Ack(false)
    case AckDrop:
        log.Printf("⚠️ campaign %d dropped: %v", job.ID, err)
        d.Ack(false)
    case Requeue:
        log.Printf("⚠️ campaign %d failed, requeueing: %v", job.ID, err)
        d.Nack(false, true)
    }
}

type Decision int

const (
    AckDone Decision = iota
    AckDrop
    Requeue
)

// Decide maps a dispatch result to an ack decision. No job is silently
// dropped: every consumed message is acked after producing ledger rows
// (possibly all failed) or requeued for another worker. A campaign naming
// only missing applications is not retryable, and a job that has already
// been requeued maxRequeues times is dropped rather than looped forever.
func Decide(err error, requeues int) Decision {
    if err == nil {
        return AckDone
    }
    if errors.Is(err, appErrors.ErrNoApplications) {
        return AckDrop
    }
    if requeues >= maxRequeues {
        return AckDrop
    }
    return Requeue
}

func requeueCount(d amqp.Delivery) int {
    if d.Redelivered {
        // The broker does not count redeliveries; Redelivered only says it
        // happened at least once. A redelivered attempt is treated as the
        // last one, so a persistently failing job cannot loop through the
        // broker forever without a dead-letter setup.
        return maxRequeues
    }
    return 0
}
