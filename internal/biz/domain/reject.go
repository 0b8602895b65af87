package domain

// Reason is the provider's classification of why an address is rejected
type Reason string

const (
	ReasonHardBounce Reason = "hard-bounce"
	ReasonSoftBounce Reason = "soft-bounce"
	ReasonSpam       Reason = "spam"
	ReasonUnsub      Reason = "unsub"
	ReasonCustom     Reason = "custom"
)

// Label returns the human-readable description of the reason.
// Tags the provider introduces later are returned verbatim.
func (r Reason) Label() string {
	switch r {
	case ReasonHardBounce:
		return "Hard Bounce - address does not exist or is invalid"
	case ReasonSoftBounce:
		return "Soft Bounce - temporary failure (mailbox full or server down)"
	case ReasonSpam:
		return "Spam Complaint - recipient reported the email as spam"
	case ReasonUnsub:
		return "Unsubscribe - recipient unsubscribed"
	case ReasonCustom:
		return "Manual - added to the reject list by hand"
	default:
		return string(r)
	}
}

// RejectEntry is one suppression record on the provider's reject list
type RejectEntry struct {
	Email       string       `json:"email"`
	Reason      Reason       `json:"reason"`
	Detail      string       `json:"detail"`
	CreatedAt   string       `json:"created_at"`
	LastEventAt string       `json:"last_event_at"`
	ExpiresAt   *string      `json:"expires_at"`
	Expired     bool         `json:"expired"`
	Sender      *SenderStats `json:"sender"`
	Subaccount  *string      `json:"subaccount"`
}

// HasExpiry reports whether the entry is removed automatically at some point
func (e *RejectEntry) HasExpiry() bool {
	return e.ExpiresAt != nil && *e.ExpiresAt != ""
}

// SenderStats are the cumulative counters of the sender that triggered the rejection
type SenderStats struct {
	Address      string `json:"address"`
	CreatedAt    string `json:"created_at"`
	Sent         int64  `json:"sent"`
	HardBounces  int64  `json:"hard_bounces"`
	SoftBounces  int64  `json:"soft_bounces"`
	Rejects      int64  `json:"rejects"`
	Complaints   int64  `json:"complaints"`
	Unsubs       int64  `json:"unsubs"`
	Opens        int64  `json:"opens"`
	Clicks       int64  `json:"clicks"`
	UniqueOpens  int64  `json:"unique_opens"`
	UniqueClicks int64  `json:"unique_clicks"`
}

// DeleteResult is the provider's acknowledgment of a removal attempt
type DeleteResult struct {
	Deleted    bool    `json:"deleted"`
	Email      string  `json:"email"`
	Subaccount *string `json:"subaccount"`
}
