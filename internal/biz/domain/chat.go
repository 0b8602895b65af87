package domain

// ChatType represents the chat type
type ChatType string

const (
	ChatTypeP2P        ChatType = "p2p"
	ChatTypeGroup      ChatType = "group"
	ChatTypeTopicGroup ChatType = "topic_group"
)

// ParseChatType maps a transport chat type onto a ChatType.
// Unknown values are treated as private chats.
func ParseChatType(s string) ChatType {
	switch ChatType(s) {
	case ChatTypeGroup, ChatTypeTopicGroup:
		return ChatType(s)
	case "supergroup":
		return ChatTypeGroup
	default:
		return ChatTypeP2P
	}
}

// IsGroup reports whether the chat is shared by several members
func (t ChatType) IsGroup() bool {
	return t == ChatTypeGroup || t == ChatTypeTopicGroup
}

// IsPrivate reports whether the chat is a one-to-one conversation
func (t ChatType) IsPrivate() bool {
	return !t.IsGroup()
}
