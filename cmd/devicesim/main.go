package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"sync"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"
)

// Command mirrors the scheduling instruction the server publishes for an
// owner's device. The real app hands these to the phone's notification
// service; this simulator keeps them in memory and prints what the phone
// would show.
type Command struct {
	Action     string     `json:"action"` // "cancel_all", "immediate", "at", "daily"
	ReminderID string     `json:"reminder_id,omitempty"`
	Title      string     `json:"title,omitempty"`
	Body       string     `json:"body,omitempty"`
	When       *time.Time `json:"when,omitempty"`
	TimeOfDay  string     `json:"time_of_day,omitempty"`
	Payload    struct {
		Category  string     `json:"category"`
		VehicleID string     `json:"vehicle_id,omitempty"`
		DueDate   *time.Time `json:"due_date,omitempty"`
		Count     int        `json:"count,omitempty"`
		Urgency   string     `json:"urgency,omitempty"`
		Reference string     `json:"reference,omitempty"`
	} `json:"payload,omitempty"`
}

// pending is a scheduled local notification as the device would hold it.
type pending struct {
	ID        string
	Title     string
	Body      string
	When      *time.Time
	TimeOfDay string
	Daily     bool
}

// registry holds the device's pending notifications, keyed by reminder id.
type registry struct {
	mu      sync.Mutex
	entries map[string]pending
}

func newRegistry() *registry {
	return &registry{entries: make(map[string]pending)}
}

func (r *registry) apply(cmd Command) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch cmd.Action {
	case "cancel_all":
		n := len(r.entries)
		r.entries = make(map[string]pending)
		log.Infof("Cancelled %d pending notifications", n)
	case "immediate":
		log.WithFields(log.Fields{
			"title":    cmd.Title,
			"category": cmd.Payload.Category,
			"urgency":  cmd.Payload.Urgency,
		}).Infof("NOTIFY NOW: %s", cmd.Body)
	case "at":
		r.entries[cmd.ReminderID] = pending{
			ID:    cmd.ReminderID,
			Title: cmd.Title,
			Body:  cmd.Body,
			When:  cmd.When,
		}
		log.WithField("when", cmd.When).Infof("Scheduled: %s", cmd.Title)
	case "daily":
		r.entries[cmd.ReminderID] = pending{
			ID:        cmd.ReminderID,
			Title:     cmd.Title,
			Body:      cmd.Body,
			TimeOfDay: cmd.TimeOfDay,
			Daily:     true,
		}
		log.WithField("time_of_day", cmd.TimeOfDay).Infof("Scheduled daily: %s", cmd.Title)
	default:
		log.Warnf("Unknown action %q", cmd.Action)
	}
}

// snapshot returns the pending notifications ordered by reminder id so the
// periodic dump is stable.
func (r *registry) snapshot() []pending {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]pending, 0, len(r.entries))
	for _, p := range r.entries {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *registry) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var cmd Command
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		log.WithError(err).Warn("Dropping malformed command")
		return
	}
	r.apply(cmd)
}

func main() {
	broker := os.Getenv("MQTT_BROKER")
	if broker == "" {
		broker = "tcp://localhost:1883"
	}
	ownerID := os.Getenv("OWNER_ID")
	if ownerID == "" {
		log.Fatal("OWNER_ID is required")
	}
	topic := "motominder/notify/" + ownerID

	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(fmt.Sprintf("devicesim-%s-%d", ownerID, os.Getpid())).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalf("Failed to connect to broker %s: %v", broker, token.Error())
	}
	log.Infof("Connected to %s", broker)

	reg := newRegistry()
	if token := client.Subscribe(topic, 1, reg.handleMessage); token.Wait() && token.Error() != nil {
		log.Fatalf("Failed to subscribe to %s: %v", topic, token.Error())
	}
	log.Infof("Listening for reminders on %s", topic)

	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			for _, p := range reg.snapshot() {
				if p.Daily {
					log.Infof("  pending daily @ %s: %s", p.TimeOfDay, p.Title)
				} else {
					log.Infof("  pending at %s: %s", p.When.Format(time.RFC3339), p.Title)
				}
			}
		case <-sig:
			client.Disconnect(250)
			log.Info("Device simulator stopped")
			return
		}
	}
}
