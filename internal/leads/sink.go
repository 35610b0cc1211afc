package leads

import (
	"context"
	"fmt"

	"elite-gym/internal/whatsapp"
)

// Sink delivers a formatted lead text to a destination outside this service.
type Sink interface {
	Send(ctx context.Context, sessionID, destination, text string) error
}

// HandoffPublisher pushes a deep link to the visitor's live connection.
type HandoffPublisher interface {
	PublishHandoff(sessionID, link string)
}

// LinkSink is the click-to-chat hand-off: the visitor's browser opens the
// wa.me link with the lead prefilled and the visitor sends it themselves.
type LinkSink struct {
	Publisher HandoffPublisher
}

func (s LinkSink) Send(_ context.Context, sessionID, destination, text string) error {
	if s.Publisher != nil {
		s.Publisher.PublishHandoff(sessionID, whatsapp.DeepLink(destination, text))
	}
	return nil
}

// MessageSender is the subset of the Cloud API client CloudSink needs.
type MessageSender interface {
	SendMessage(ctx context.Context, to, body string) (string, error)
}

// CloudSink sends the lead text straight to the destination through the
// WhatsApp Cloud API.
type CloudSink struct {
	Client MessageSender
}

func (s CloudSink) Send(ctx context.Context, _, destination, text string) error {
	if _, err := s.Client.SendMessage(ctx, destination, text); err != nil {
		return fmt.Errorf("cloud api send: %w", err)
	}
	return nil
}
