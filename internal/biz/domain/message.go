package domain

import "time"

// MessageState is the delivery state of a sent message
type MessageState string

const (
	StateSent     MessageState = "sent"
	StateBounced  MessageState = "bounced"
	StateRejected MessageState = "rejected"
	StateSpam     MessageState = "spam"
	StateUnsub    MessageState = "unsub"
	StateDeferred MessageState = "deferred"
	StateQueued   MessageState = "queued"
)

// Label returns the human-readable state; unknown states are returned verbatim
func (s MessageState) Label() string {
	switch s {
	case StateSent:
		return "Sent"
	case StateBounced:
		return "Bounced"
	case StateRejected:
		return "Rejected"
	case StateSpam:
		return "Marked as spam"
	case StateUnsub:
		return "Unsubscribed"
	case StateDeferred:
		return "Deferred"
	case StateQueued:
		return "Queued"
	default:
		return string(s)
	}
}

// MessageEntry is one historical send record
type MessageEntry struct {
	Ts           int64                  `json:"ts"`
	ID           string                 `json:"_id"`
	Sender       string                 `json:"sender"`
	Template     string                 `json:"template"`
	Subject      string                 `json:"subject"`
	Email        string                 `json:"email"`
	Tags         []string               `json:"tags"`
	Opens        int64                  `json:"opens"`
	OpensDetail  []OpenDetail           `json:"opens_detail"`
	Clicks       int64                  `json:"clicks"`
	ClicksDetail []ClickDetail          `json:"clicks_detail"`
	State        MessageState           `json:"state"`
	Metadata     map[string]interface{} `json:"metadata"`
}

// SentAt returns the send time in UTC
func (m *MessageEntry) SentAt() time.Time {
	return time.Unix(m.Ts, 0).UTC()
}

// IsSpam reports whether the recipient flagged the message as spam
func (m *MessageEntry) IsSpam() bool {
	return m.State == StateSpam
}

// OpenDetail is a single open event
type OpenDetail struct {
	Ts       int64  `json:"ts"`
	IP       string `json:"ip"`
	Location string `json:"location"`
	UA       string `json:"ua"`
}

// ClickDetail is a single click event
type ClickDetail struct {
	Ts       int64  `json:"ts"`
	URL      string `json:"url"`
	IP       string `json:"ip"`
	Location string `json:"location"`
	UA       string `json:"ua"`
}
