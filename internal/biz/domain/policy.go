package domain

// AccessMode is the active access-control mode
type AccessMode string

const (
	AccessModeOpen  AccessMode = "open"
	AccessModeGroup AccessMode = "group"
	AccessModeUsers AccessMode = "users"
)

// AccessPolicy decides who may use the console (value object).
// The mode is fixed at construction.
type AccessPolicy struct {
	mode    AccessMode
	groupID string
	userIDs map[string]struct{}
}

// NewAccessPolicy builds a policy. A group id takes precedence over the
// caller allowlist; with neither configured the policy is open.
func NewAccessPolicy(groupID string, userIDs []string) AccessPolicy {
	if groupID != "" {
		return AccessPolicy{mode: AccessModeGroup, groupID: groupID}
	}

	users := make(map[string]struct{}, len(userIDs))
	for _, id := range userIDs {
		if id != "" {
			users[id] = struct{}{}
		}
	}
	if len(users) > 0 {
		return AccessPolicy{mode: AccessModeUsers, userIDs: users}
	}
	return AccessPolicy{mode: AccessModeOpen}
}

// Mode returns the active mode
func (p AccessPolicy) Mode() AccessMode {
	if p.mode == "" {
		return AccessModeOpen
	}
	return p.mode
}

// Allows reports whether callerID may use the console from the given chat
func (p AccessPolicy) Allows(callerID, chatID string, chatType ChatType) bool {
	switch p.Mode() {
	case AccessModeGroup:
		return chatType.IsGroup() && chatID == p.groupID
	case AccessModeUsers:
		_, ok := p.userIDs[callerID]
		return ok
	default:
		return true
	}
}
