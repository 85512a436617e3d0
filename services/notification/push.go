package notification

import (
	"context"
	"fmt"
	"strings"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// PushMessage is a mobile push sent to an FCM topic.
type PushMessage struct {
	Topic string
	Title string
	Body  string
	Data  map[string]string
}

type PushSender interface {
	Push(ctx context.Context, msg PushMessage) error
}

// messenger is the part of *messaging.Client the sender uses.
type messenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMSender delivers pushes through Firebase Cloud Messaging.
type FCMSender struct {
	client messenger
	logger *zap.Logger
}

// NewFCMSender initializes the Firebase app from a service account file.
func NewFCMSender(ctx context.Context, credentialsFile string, logger *zap.Logger) (*FCMSender, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("firebase: error initializing app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("firebase: error getting Messaging client: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FCMSender{client: client, logger: logger}, nil
}

func (s *FCMSender) Push(ctx context.Context, msg PushMessage) error {
	id, err := s.client.Send(ctx, &messaging.Message{
		Topic: msg.Topic,
		Notification: &messaging.Notification{
			Title: msg.Title,
			Body:  msg.Body,
		},
		Data: msg.Data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send FCM message: %w", err)
	}
	s.logger.Debug("push sent", zap.String("topic", msg.Topic), zap.String("messageId", id))
	return nil
}

// LogPushSender logs pushes instead of sending them.
type LogPushSender struct {
	logger *zap.Logger
}

func NewLogPushSender(logger *zap.Logger) *LogPushSender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogPushSender{logger: logger}
}

func (s *LogPushSender) Push(_ context.Context, msg PushMessage) error {
	s.logger.Info("push delivery disabled; would send", zap.String("topic", msg.Topic), zap.String("title", msg.Title))
	return nil
}

// UserTopic is the FCM topic a user's devices subscribe to.
func UserTopic(userID string) string {
	var b strings.Builder
	b.WriteString("user-")
	for _, r := range userID {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.', r == '~':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
