package core

import (
	"context"
	"strings"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/jabolina/go-raymond/pkg/raymond/types"

	"github.com/pkg/errors"
)

// ErrNotAdvertised is returned by Send when a message cannot be delivered:
// the target has no subscribed queue, the transport is closed, or the
// broker publish fails.
var ErrNotAdvertised = errors.New("raymond: transport send failure")

// Callback is invoked for every message whose destination is the
// subscribed node, with the sender's name, the message kind, and the raw
// body, the shape described for subscribe() in §4.2.
type Callback func(sender string, kind types.Kind, body string)

// Transport is the contract the node state machine depends on: subscribe
// to one per-node queue on a topic exchange, and publish to peers.
// Delivery is reliable and per-pair ordered; duplicates are not produced.
type Transport interface {
	// Subscribe registers callback to receive every message addressed to
	// nodeName. Must be called once per node before Send is used.
	Subscribe(nodeName string, callback Callback) error

	// Send publishes a message from sender to target. kind selects the
	// routing key suffix; body is empty for every kind except advise.
	Send(sender, target string, kind types.Kind, body string) error

	// Close tears down the underlying connection/channel.
	Close() error
}

const exchangeName = "raymond.nodes"

// AMQPTransport is the production Transport, backed by a topic exchange on
// a RabbitMQ-compatible broker. The routing key is <sender>.<receiver>.
// <kind>; each subscribed node owns a queue bound with the pattern
// *.<receiver>.*, exactly as specified in the wire format section.
type AMQPTransport struct {
	log  types.Logger
	conn *amqp.Connection
	ch   *amqp.Channel

	mu          sync.Mutex
	subscribers map[string]Callback

	ctx    context.Context
	cancel context.CancelFunc
}

// NewAMQPTransport dials brokerURL, declares the shared topic exchange,
// and returns a Transport ready for Subscribe/Send calls.
func NewAMQPTransport(brokerURL string, log types.Logger) (*AMQPTransport, error) {
	conn, err := amqp.Dial(brokerURL)
	if err != nil {
		return nil, errors.Wrapf(err, "dialing broker %s", brokerURL)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "opening channel")
	}

	if err := ch.ExchangeDeclare(exchangeName, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, errors.Wrap(err, "declaring topic exchange")
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &AMQPTransport{
		log:         log,
		conn:        conn,
		ch:          ch,
		subscribers: make(map[string]Callback),
		ctx:         ctx,
		cancel:      cancel,
	}
	return t, nil
}

// Subscribe declares nodeName's queue, binds it with *.<nodeName>.*, and
// spawns a consumer goroutine that demultiplexes the routing key into
// (sender, kind) before invoking callback.
func (t *AMQPTransport) Subscribe(nodeName string, callback Callback) error {
	queue, err := t.ch.QueueDeclare(nodeName, true, false, false, false, nil)
	if err != nil {
		return errors.Wrapf(err, "declaring queue for %s", nodeName)
	}

	pattern := types.QueueBindingPattern(nodeName)
	if err := t.ch.QueueBind(queue.Name, pattern, exchangeName, false, nil); err != nil {
		return errors.Wrapf(err, "binding queue %s to pattern %s", nodeName, pattern)
	}

	deliveries, err := t.ch.Consume(queue.Name, "", true, false, false, false, nil)
	if err != nil {
		return errors.Wrapf(err, "consuming from queue %s", nodeName)
	}

	t.mu.Lock()
	t.subscribers[nodeName] = callback
	t.mu.Unlock()

	InvokerInstance().Spawn(func() {
		t.poll(nodeName, deliveries)
	})
	return nil
}

func (t *AMQPTransport) poll(nodeName string, deliveries <-chan amqp.Delivery) {
	for {
		select {
		case <-t.ctx.Done():
			return
		case d, ok := <-deliveries:
			if !ok {
				return
			}
			sender, kind, err := decodeRoutingKey(d.RoutingKey)
			if err != nil {
				t.log.Warnf("dropping message with malformed routing key %q: %v", d.RoutingKey, err)
				continue
			}
			t.mu.Lock()
			callback := t.subscribers[nodeName]
			t.mu.Unlock()
			if callback != nil {
				callback(sender, kind, string(d.Body))
			}
		}
	}
}

// Send publishes to the shared topic exchange with routing key
// <sender>.<target>.<kind>.
func (t *AMQPTransport) Send(sender, target string, kind types.Kind, body string) error {
	routingKey := types.RoutingKey(sender, target, kind)
	err := t.ch.PublishWithContext(t.ctx, exchangeName, routingKey, false, false, amqp.Publishing{
		ContentType: "text/plain",
		Body:        []byte(body),
	})
	if err != nil {
		return errors.Wrapf(ErrNotAdvertised, "publishing %s to %s: %v", kind, target, err)
	}
	return nil
}

// Close cancels all consumers and tears down the channel and connection.
func (t *AMQPTransport) Close() error {
	t.cancel()
	if err := t.ch.Close(); err != nil {
		t.log.Errorf("closing channel: %v", err)
	}
	return t.conn.Close()
}

func decodeRoutingKey(key string) (sender string, kind types.Kind, err error) {
	parts := strings.SplitN(key, ".", 3)
	if len(parts) != 3 {
		return "", "", errors.Errorf("expected <sender>.<receiver>.<kind>, got %q", key)
	}
	return parts[0], types.Kind(parts[2]), nil
}
