package enums

import "fmt"

// NotificationEvent names a lifecycle event surfaced on a user's dashboard.
type NotificationEvent string

const (
	NotificationEventAccepted            NotificationEvent = "accepted"
	NotificationEventPickedUp            NotificationEvent = "picked_up"
	NotificationEventCancelled           NotificationEvent = "cancelled"
	NotificationEventAcceptanceCancelled NotificationEvent = "acceptance_cancelled"
)

var validNotificationEvents = []NotificationEvent{
	NotificationEventAccepted,
	NotificationEventPickedUp,
	NotificationEventCancelled,
	NotificationEventAcceptanceCancelled,
}

// IsValid checks whether the given event matches the canonical enum.
func (n NotificationEvent) IsValid() bool {
	for _, candidate := range validNotificationEvents {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationEvent converts raw strings into NotificationEvent.
func ParseNotificationEvent(value string) (NotificationEvent, error) {
	for _, candidate := range validNotificationEvents {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification event %q", value)
}
