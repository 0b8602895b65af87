package repo

import "context"

// MessageRepo is the chat transport's outbound interface
type MessageRepo interface {
	// SendText sends a text message to a chat
	SendText(ctx context.Context, chatID, text string) error
}
