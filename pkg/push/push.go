// Package push abstracts the delivery of push messages to device
// endpoints. The notification pipeline only ever sees the Transport and
// EndpointResolver interfaces; the concrete implementation is FCM.
package push

import (
	"context"
	"log"
)

// Payload is the message delivered to a device.
type Payload struct {
	Text        string
	SubjectID   string
	SubjectType string
}

// Transport publishes a payload to a single device endpoint. Errors are
// per-device and non-fatal to the caller.
type Transport interface {
	Publish(ctx context.Context, endpoint string, payload Payload) error
}

// EndpointResolver exchanges a raw platform push token for a deliverable
// endpoint handle. Resolution runs asynchronously whenever a device's push
// token changes.
type EndpointResolver interface {
	ResolveEndpoint(ctx context.Context, pushToken string) (string, error)
}

// LogTransport writes payloads to the process log instead of delivering
// them. Used in development when no Firebase credentials are configured.
type LogTransport struct{}

func NewLogTransport() *LogTransport {
	return &LogTransport{}
}

func (t *LogTransport) Publish(_ context.Context, endpoint string, payload Payload) error {
	log.Printf("push (log transport): endpoint=%s text=%q subject=%s/%s",
		endpoint, payload.Text, payload.SubjectType, payload.SubjectID)
	return nil
}

func (t *LogTransport) ResolveEndpoint(_ context.Context, pushToken string) (string, error) {
	return pushToken, nil
}
