package events

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
)

// Topic names a kind of change.
type Topic string

const (
	CartUpdated          Topic = "cartUpdated"
	ThemeChanged         Topic = "themeChanged"
	LanguageChanged      Topic = "languageChanged"
	PurchasesUpdated     Topic = "purchasesUpdated"
	NotificationsUpdated Topic = "notificationsUpdated"
	AuthChanged          Topic = "authChanged"
	SidebarToggled       Topic = "sidebarToggled"
)

// Topics lists every known topic.
func Topics() []Topic {
	return []Topic{
		CartUpdated, ThemeChanged, LanguageChanged, PurchasesUpdated,
		NotificationsUpdated, AuthChanged, SidebarToggled,
	}
}

// Event is a published change. Scope identifies whose state changed:
// a visitor id for per-visitor stores, empty for site-wide ones.
type Event struct {
	Topic   Topic           `json:"topic"`
	Scope   string          `json:"scope,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
	At      time.Time       `json:"at"`
	Origin  string          `json:"origin,omitempty"`
}

// New builds an Event with a JSON-encoded payload.
func New(topic Topic, scope string, payload any) (Event, error) {
	if topic == "" {
		return Event{}, ErrEmptyTopic
	}
	e := Event{Topic: topic, Scope: scope, At: time.Now().UTC()}
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return Event{}, errors.Join(ErrMarshalPayload, err)
		}
		e.Payload = raw
	}
	return e, nil
}

// Decode unmarshals the payload into T.
func Decode[T any](e Event) (T, error) {
	var v T
	if len(e.Payload) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(e.Payload, &v); err != nil {
		return v, errors.Join(ErrDecodePayload, err)
	}
	return v, nil
}

// VisibleTo reports whether a subscriber in scope should see e.
// Site-wide events are visible to everyone.
func (e Event) VisibleTo(scope string) bool {
	return e.Scope == "" || e.Scope == scope
}

// UserScope is the scope of events about one signed-in user's data.
func UserScope(userID int) string {
	return "user:" + strconv.Itoa(userID)
}

// IsUserScope reports whether scope was built by UserScope.
func IsUserScope(scope string) bool {
	return strings.HasPrefix(scope, "user:")
}
