package types

// Kind enumerates the five protocol messages exchanged over the transport.
type Kind string

const (
	Request    Kind = "request"
	Privilege  Kind = "privilege"
	Initialize Kind = "initialize"
	Restart    Kind = "restart"
	Advise     Kind = "advise"
)

// Envelope groups the fields of one protocol message: the sender's name,
// the receiver, the message kind, and the raw body (empty for every kind
// except advise, which carries an encoded AdviseTriple). The transport's
// Callback receives sender, kind and body as separate arguments, not as an
// Envelope.
type Envelope struct {
	Sender   string
	Receiver string
	Kind     Kind
	Body     string
}

// RoutingKey builds the wire routing key described in the wire format
// section: <sender>.<receiver>.<kind>.
func RoutingKey(sender, receiver string, kind Kind) string {
	return sender + "." + receiver + "." + string(kind)
}

// QueueBindingPattern returns the binding pattern a node's queue is bound
// to on the topic exchange: *.<receiver>.*.
func QueueBindingPattern(receiver string) string {
	return "*." + receiver + ".*"
}
