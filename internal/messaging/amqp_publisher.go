package messaging

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dafibh/envelope/envelope-backend/internal/events"
	"github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"
)

const (
	publishTimeout = 5 * time.Second
	queueSize      = 256
)

// Ensure AMQPPublisher implements events.EventPublisher
var _ events.EventPublisher = (*AMQPPublisher)(nil)

// channelPublisher is the subset of *amqp091.Channel used for publishing
type channelPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

// AMQPPublisher forwards ledger events to a RabbitMQ topic exchange. Events
// are queued and sent from a single goroutine so Publish never blocks.
type AMQPPublisher struct {
	conn     *amqp091.Connection
	channel  channelPublisher
	exchange string
	queue    chan events.Event
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

// NewAMQPPublisher dials the broker and declares a durable topic exchange
func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	err = channel.ExchangeDeclare(
		exchange, // name
		"topic",  // type
		true,     // durable
		false,    // auto-deleted
		false,    // internal
		false,    // no-wait
		nil,      // arguments
	)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}

	p := newAMQPPublisher(channel, exchange)
	p.conn = conn
	return p, nil
}

func newAMQPPublisher(channel channelPublisher, exchange string) *AMQPPublisher {
	p := &AMQPPublisher{
		channel:  channel,
		exchange: exchange,
		queue:    make(chan events.Event, queueSize),
		done:     make(chan struct{}),
	}
	p.wg.Add(1)
	go p.run()
	return p
}

// Publish queues the event; it is dropped with a warning when the queue is full
func (p *AMQPPublisher) Publish(event events.Event) {
	select {
	case <-p.done:
		return
	default:
	}

	select {
	case p.queue <- event:
	case <-p.done:
	default:
		log.Warn().Str("event_type", event.Type).Msg("AMQP event queue full, dropping event")
	}
}

func (p *AMQPPublisher) run() {
	defer p.wg.Done()
	for {
		select {
		case event := <-p.queue:
			p.send(event)
		case <-p.done:
			// Drain what is already queued
			for {
				select {
				case event := <-p.queue:
					p.send(event)
				default:
					return
				}
			}
		}
	}
}

func (p *AMQPPublisher) send(event events.Event) {
	body, err := event.ToJSON()
	if err != nil {
		log.Error().Err(err).Str("event_type", event.Type).Msg("Failed to serialize event")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange, // exchange
		RoutingKey(event),
		false, // mandatory
		false, // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    event.Timestamp,
			Type:         event.Type,
			Body:         body,
		},
	)
	if err != nil {
		log.Warn().Err(err).Str("event_type", event.Type).Msg("Failed to publish event")
		return
	}

	log.Debug().
		Str("event_type", event.Type).
		Str("exchange", p.exchange).
		Msg("Published event")
}

// Close stops the sender after flushing queued events and closes the connection
func (p *AMQPPublisher) Close() error {
	var err error
	p.once.Do(func() {
		close(p.done)
		p.wg.Wait()
		if p.conn != nil {
			err = p.conn.Close()
		}
	})
	return err
}

// RoutingKey is "ledger.<entity>.<event>", e.g. ledger.transaction.created
func RoutingKey(event events.Event) string {
	return "ledger." + event.Type
}
