package repo

import (
	"context"

	"github.com/DevRickLin/reject-console/internal/biz/domain"
)

// RejectRepo is the email provider's suppression interface.
// Errors are opaque to callers: only success or failure matters.
type RejectRepo interface {
	// Lookup lists reject entries for one address, expired ones included
	Lookup(ctx context.Context, address string) ([]domain.RejectEntry, error)

	// ListAll lists every active (non-expired) reject entry
	ListAll(ctx context.Context) ([]domain.RejectEntry, error)

	// Remove deletes an address from the reject list
	Remove(ctx context.Context, address string) (*domain.DeleteResult, error)

	// SearchHistory returns recent send history for an address, most recent first
	SearchHistory(ctx context.Context, address string, limit int) ([]domain.MessageEntry, error)
}
