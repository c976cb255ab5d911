package reminder

import (
	"context"
	"errors"
	"time"
)

// ErrPermissionDenied is returned by a Notifier when the user has not
// granted notification permission. It is a configuration state, not a
// failure: the scheduler treats it as "do nothing".
var ErrPermissionDenied = errors.New("notification permission not granted")

// Payload is the structured data attached to every reminder so the app can
// deep-link to the right vehicle screen on tap.
type Payload struct {
	Category  string     `json:"category"`
	VehicleID string     `json:"vehicle_id,omitempty"`
	DueDate   *time.Time `json:"due_date,omitempty"`
	Count     int        `json:"count,omitempty"`
	Urgency   string     `json:"urgency,omitempty"`
	Reference string     `json:"reference,omitempty"`
}

// Notifier is the external notification service the scheduler registers
// reminders against. Reminder ids are opaque; the service tracks them by its
// own scheme.
type Notifier interface {
	// CancelAll cancels every reminder previously registered for the
	// owner. Best-effort.
	CancelAll(ctx context.Context, ownerID string) error

	// ScheduleImmediate fires a notification right away.
	ScheduleImmediate(ctx context.Context, ownerID, title, body string, payload Payload) (string, error)

	// ScheduleAt registers a one-shot notification for a future time.
	// When when is not strictly in the future it returns an empty id and
	// no error.
	ScheduleAt(ctx context.Context, ownerID, title, body string, payload Payload, when time.Time) (string, error)

	// ScheduleDailyRepeating registers a notification repeating daily at
	// the given local time of day ("09:00").
	ScheduleDailyRepeating(ctx context.Context, ownerID, title, body string, payload Payload, timeOfDay string) (string, error)
}
