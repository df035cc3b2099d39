package sse

// Payload is one message as published by a Source.
type Payload struct {
	ID      string
	Data    any
	Comment string
	Event   string
	Retry   int
}

// SendOption sets optional payload fields.
type SendOption func(*Payload)

// WithEvent sets the event name.
func WithEvent(name string) SendOption {
	return func(p *Payload) { p.Event = name }
}

// WithRetry sets the reconnection time in milliseconds. Negative values become 0.
func WithRetry(ms int) SendOption {
	return func(p *Payload) {
		if ms < 0 {
			ms = 0
		}
		p.Retry = ms
	}
}

// WithComment adds a comment line ahead of the message.
func WithComment(comment string) SendOption {
	return func(p *Payload) { p.Comment = comment }
}
