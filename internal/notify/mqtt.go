package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/motominder/motominder/internal/reminder"
)

const publishTimeout = 5 * time.Second

// command is the scheduling instruction published to the owner's device.
// The device OS registers (or cancels) the actual local notifications; this
// side only tells it what to schedule.
type command struct {
	Action     string           `json:"action"` // "cancel_all", "immediate", "at", "daily"
	ReminderID string           `json:"reminder_id,omitempty"`
	Title      string           `json:"title,omitempty"`
	Body       string           `json:"body,omitempty"`
	Payload    reminder.Payload `json:"payload,omitempty"`
	When       *time.Time       `json:"when,omitempty"`
	TimeOfDay  string           `json:"time_of_day,omitempty"`
}

// ConnectMQTT connects to the broker named by the MQTT_BROKER environment
// variable. An empty MQTT_BROKER means push is not configured.
func ConnectMQTT() (mqtt.Client, error) {
	broker := os.Getenv("MQTT_BROKER")
	if broker == "" {
		return nil, fmt.Errorf("MQTT_BROKER not set")
	}
	clientID := os.Getenv("MQTT_CLIENT_ID")
	if clientID == "" {
		clientID = "motominder-server"
	}

	opts := mqtt.NewClientOptions().AddBroker(broker).SetClientID(clientID)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		return nil, fmt.Errorf("mqtt connect timed out")
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect error: %w", err)
	}
	return client, nil
}

// MQTTNotifier implements reminder.Notifier by publishing scheduling
// commands to the owner's notification topic at QoS 1.
type MQTTNotifier struct {
	client mqtt.Client
}

// NewMQTTNotifier creates a notifier over a connected MQTT client.
func NewMQTTNotifier(client mqtt.Client) *MQTTNotifier {
	return &MQTTNotifier{client: client}
}

// Topic returns the notification command topic for an owner.
func Topic(ownerID string) string {
	return "motominder/notify/" + ownerID
}

func (n *MQTTNotifier) publish(ownerID string, cmd command) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal command: %w", err)
	}
	token := n.client.Publish(Topic(ownerID), 1, false, data)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish timed out")
	}
	return token.Error()
}

// CancelAll publishes a cancel-all command for the owner's device.
func (n *MQTTNotifier) CancelAll(ctx context.Context, ownerID string) error {
	return n.publish(ownerID, command{Action: "cancel_all"})
}

// ScheduleImmediate publishes an immediate notification command.
func (n *MQTTNotifier) ScheduleImmediate(ctx context.Context, ownerID, title, body string, payload reminder.Payload) (string, error) {
	id := primitive.NewObjectID().Hex()
	err := n.publish(ownerID, command{
		Action:     "immediate",
		ReminderID: id,
		Title:      title,
		Body:       body,
		Payload:    payload,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// ScheduleAt publishes a one-shot command for a future time. A time not
// strictly in the future is silently dropped.
func (n *MQTTNotifier) ScheduleAt(ctx context.Context, ownerID, title, body string, payload reminder.Payload, when time.Time) (string, error) {
	if !when.After(time.Now()) {
		return "", nil
	}
	id := primitive.NewObjectID().Hex()
	err := n.publish(ownerID, command{
		Action:     "at",
		ReminderID: id,
		Title:      title,
		Body:       body,
		Payload:    payload,
		When:       &when,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// ScheduleDailyRepeating publishes a daily-repeating command.
func (n *MQTTNotifier) ScheduleDailyRepeating(ctx context.Context, ownerID, title, body string, payload reminder.Payload, timeOfDay string) (string, error) {
	id := primitive.NewObjectID().Hex()
	err := n.publish(ownerID, command{
		Action:     "daily",
		ReminderID: id,
		Title:      title,
		Body:       body,
		Payload:    payload,
		TimeOfDay:  timeOfDay,
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// Disabled is the notifier used when push is not configured or the user has
// not granted notification permission. Every scheduling run against it is a
// silent no-op.
type Disabled struct{}

func (Disabled) CancelAll(ctx context.Context, ownerID string) error {
	return reminder.ErrPermissionDenied
}

func (Disabled) ScheduleImmediate(ctx context.Context, ownerID, title, body string, payload reminder.Payload) (string, error) {
	return "", reminder.ErrPermissionDenied
}

func (Disabled) ScheduleAt(ctx context.Context, ownerID, title, body string, payload reminder.Payload, when time.Time) (string, error) {
	return "", reminder.ErrPermissionDenied
}

func (Disabled) ScheduleDailyRepeating(ctx context.Context, ownerID, title, body string, payload reminder.Payload, timeOfDay string) (string, error) {
	return "", reminder.ErrPermissionDenied
}
