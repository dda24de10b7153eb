package notification

import (
	"context"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"github.com/jabinweb/church-manager-sub003/internal/model"
	"github.com/jabinweb/church-manager-sub003/internal/repository"
	"google.golang.org/api/option"
)

// FCMNotifier sends mobile push notifications to users that have no
// live stream when a message arrives. It implements
// push.OfflineNotifier. Misses and failures are logged, never
// propagated: mobile push is best effort on top of an already-durable
// message.
type FCMNotifier struct {
	client   *messaging.Client
	userRepo *repository.UserRepository
}

// NewFCMNotifier creates the notifier, or nil when Firebase is not
// configured (the dispatcher treats a nil notifier as disabled).
func NewFCMNotifier(credentialsFile string, userRepo *repository.UserRepository) *FCMNotifier {
	if credentialsFile == "" {
		log.Println("⚠️ Firebase credentials not provided, mobile notifications disabled")
		return nil
	}

	opt := option.WithCredentialsFile(credentialsFile)
	app, err := firebase.NewApp(context.Background(), nil, opt)
	if err != nil {
		log.Printf("⚠️ Failed to initialize Firebase app: %v (mobile notifications disabled)", err)
		return nil
	}

	client, err := app.Messaging(context.Background())
	if err != nil {
		log.Printf("⚠️ Failed to get messaging client: %v", err)
		return nil
	}

	log.Println("✅ Firebase FCM initialized")
	return &FCMNotifier{client: client, userRepo: userRepo}
}

// NotifyNewMessage sends a notification for msg to all of the user's
// registered devices.
func (n *FCMNotifier) NotifyNewMessage(ctx context.Context, userID uuid.UUID, msg *model.Message) {
	if n == nil || n.client == nil {
		return
	}

	user, err := n.userRepo.FindByID(userID)
	if err != nil || !user.IsNotificationEnabled {
		return
	}

	devices, err := n.userRepo.GetUserDevices(userID)
	if err != nil || len(devices) == 0 {
		return
	}

	title := "New message"
	if msg.Sender != nil {
		title = msg.Sender.Name
	}
	body := msg.Content
	if body == "" {
		body = "Sent an attachment"
	}

	tokens := make([]string, 0, len(devices))
	for _, d := range devices {
		tokens = append(tokens, d.FCMToken)
	}

	out := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"type":            string(model.EventNewMessage),
			"conversation_id": msg.ConversationID.String(),
			"message_id":      msg.ID.String(),
		},
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	br, err := n.client.SendMulticast(ctx, out)
	if err != nil {
		log.Printf("⚠️ FCM send failed for user %s: %v", userID, err)
		return
	}
	if br.FailureCount > 0 {
		for idx, resp := range br.Responses {
			if !resp.Success {
				log.Printf("⚠️ FCM failure for token %s: %v", tokens[idx], resp.Error)
			}
		}
	}
}
