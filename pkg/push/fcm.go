package push

import (
	"context"
	"fmt"
	"log"
	"os"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// FCM delivers payloads through Firebase Cloud Messaging. The endpoint
// handle for a device is its validated registration token.
type FCM struct {
	client *messaging.Client
}

// NewFCM initializes the Firebase app and messaging client
func NewFCM(ctx context.Context, credentialsPath string) (*FCM, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("Firebase credentials path not provided")
	}

	// Check if the credentials file exists
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("Firebase credentials file not found at %s", credentialsPath)
	}

	opt := option.WithCredentialsFile(credentialsPath)

	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firebase messaging client: %w", err)
	}

	log.Println("Firebase messaging client initialized successfully!")
	return &FCM{client: client}, nil
}

func (f *FCM) Publish(ctx context.Context, endpoint string, payload Payload) error {
	msg := &messaging.Message{
		Token: endpoint,
		Notification: &messaging.Notification{
			Body: payload.Text,
		},
		Data: map[string]string{
			"subject_id":   payload.SubjectID,
			"subject_type": payload.SubjectType,
		},
	}
	if _, err := f.client.Send(ctx, msg); err != nil {
		return fmt.Errorf("fcm publish: %w", err)
	}
	return nil
}

// ResolveEndpoint validates a registration token with a dry-run send and
// returns it as the device's endpoint handle.
func (f *FCM) ResolveEndpoint(ctx context.Context, pushToken string) (string, error) {
	msg := &messaging.Message{
		Token: pushToken,
		Data:  map[string]string{"probe": "endpoint"},
	}
	if _, err := f.client.SendDryRun(ctx, msg); err != nil {
		return "", fmt.Errorf("fcm token validation: %w", err)
	}
	return pushToken, nil
}
