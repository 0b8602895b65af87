package data

import (
	"context"
	"sort"

	"github.com/DevRickLin/reject-console/internal/biz/domain"
	"github.com/DevRickLin/reject-console/internal/biz/repo"
)

// mandrillAPI is the subset of the Mandrill client the repository uses
type mandrillAPI interface {
	ListRejects(ctx context.Context, email string, includeExpired bool) ([]domain.RejectEntry, error)
	DeleteReject(ctx context.Context, email string) (*domain.DeleteResult, error)
	SearchMessages(ctx context.Context, email string, limit int) ([]domain.MessageEntry, error)
}

// mandrillRepo implements the reject repository on top of Mandrill
type mandrillRepo struct {
	client mandrillAPI
}

// NewMandrillRepo creates a new Mandrill repository
func NewMandrillRepo(client mandrillAPI) repo.RejectRepo {
	return &mandrillRepo{client: client}
}

// Lookup lists entries for one address, expired ones included
func (r *mandrillRepo) Lookup(ctx context.Context, address string) ([]domain.RejectEntry, error) {
	return r.client.ListRejects(ctx, address, true)
}

// ListAll lists every active entry
func (r *mandrillRepo) ListAll(ctx context.Context) ([]domain.RejectEntry, error) {
	return r.client.ListRejects(ctx, "", false)
}

// Remove deletes an address from the reject list
func (r *mandrillRepo) Remove(ctx context.Context, address string) (*domain.DeleteResult, error) {
	return r.client.DeleteReject(ctx, address)
}

// SearchHistory returns at most limit messages, most recent first
func (r *mandrillRepo) SearchHistory(ctx context.Context, address string, limit int) ([]domain.MessageEntry, error) {
	if limit <= 0 {
		return nil, nil
	}

	messages, err := r.client.SearchMessages(ctx, address, limit)
	if err != nil {
		return nil, err
	}

	// Upstream returns newest first today; sorting keeps the order if it stops doing so
	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Ts > messages[j].Ts
	})
	if len(messages) > limit {
		messages = messages[:limit]
	}
	return messages, nil
}
