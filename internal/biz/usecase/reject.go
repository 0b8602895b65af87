package usecase

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/DevRickLin/reject-console/internal/biz/domain"
	"github.com/DevRickLin/reject-console/internal/biz/repo"
	"github.com/DevRickLin/reject-console/internal/logging"
)

// CheckResult is the outcome of a single-address check
type CheckResult struct {
	Address         string
	Entries         []domain.RejectEntry
	History         []domain.MessageEntry
	HistoryIncluded bool // history was requested; a failed search leaves History empty
}

// Blocked reports whether the address is on the reject list
func (r *CheckResult) Blocked() bool {
	return len(r.Entries) > 0
}

// BulkOutcome classifies one address in a bulk check
type BulkOutcome string

const (
	BulkClean   BulkOutcome = "CLEAN"
	BulkBlocked BulkOutcome = "BLOCKED"
	BulkError   BulkOutcome = "ERROR"
)

// BulkItem is the result for one address of a bulk check
type BulkItem struct {
	Address string
	Outcome BulkOutcome
	Reason  domain.Reason // first entry's reason when blocked
	Err     error
}

// Line renders the item as a summary line
func (i BulkItem) Line() string {
	if i.Outcome == BulkBlocked {
		return fmt.Sprintf("[%s] %s (%s)", i.Outcome, i.Address, i.Reason)
	}
	return fmt.Sprintf("[%s] %s", i.Outcome, i.Address)
}

// BulkResult aggregates a bulk check, items in input order
type BulkResult struct {
	Items   []BulkItem
	Clean   int
	Blocked int
	Errors  int
}

// Total returns the number of addresses processed
func (r *BulkResult) Total() int {
	return len(r.Items)
}

// Lines returns one summary line per address
func (r *BulkResult) Lines() []string {
	lines := make([]string, len(r.Items))
	for i, item := range r.Items {
		lines[i] = item.Line()
	}
	return lines
}

// RejectUsecase orchestrates reject list lookups and removals
type RejectUsecase struct {
	rejectRepo   repo.RejectRepo
	historyLimit int
	logger       *zap.Logger
}

// NewRejectUsecase creates a new reject usecase. A historyLimit of zero
// disables the send history merge on single checks.
func NewRejectUsecase(rejectRepo repo.RejectRepo, historyLimit int, logger *zap.Logger) *RejectUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RejectUsecase{
		rejectRepo:   rejectRepo,
		historyLimit: historyLimit,
		logger:       logger,
	}
}

// Check looks up one address and merges its recent send history.
// A history search failure is reported as empty history.
func (uc *RejectUsecase) Check(ctx context.Context, address string) (*CheckResult, error) {
	entries, err := uc.rejectRepo.Lookup(ctx, address)
	if err != nil {
		return nil, err
	}

	result := &CheckResult{
		Address: address,
		Entries: entries,
	}

	if uc.historyLimit > 0 {
		result.HistoryIncluded = true
		history, err := uc.rejectRepo.SearchHistory(ctx, address, uc.historyLimit)
		if err != nil {
			uc.logger.Warn("History search failed, reporting no history",
				zap.String("address", logging.RedactEmail(address)),
				zap.Error(err))
		} else {
			result.History = history
		}
	}

	return result, nil
}

// BulkCheck looks up addresses one after another. A failed lookup is
// recorded against its address and does not stop the others.
func (uc *RejectUsecase) BulkCheck(ctx context.Context, addresses []string) *BulkResult {
	result := &BulkResult{Items: make([]BulkItem, 0, len(addresses))}

	for _, address := range addresses {
		item := BulkItem{Address: address}

		entries, err := uc.rejectRepo.Lookup(ctx, address)
		switch {
		case err != nil:
			item.Outcome = BulkError
			item.Err = err
			result.Errors++
			uc.logger.Warn("Bulk lookup failed",
				zap.String("address", logging.RedactEmail(address)),
				zap.Error(err))
		case len(entries) == 0:
			item.Outcome = BulkClean
			result.Clean++
		default:
			item.Outcome = BulkBlocked
			item.Reason = entries[0].Reason
			result.Blocked++
		}

		result.Items = append(result.Items, item)
	}

	uc.logger.Info("Bulk check finished",
		zap.Int("total", result.Total()),
		zap.Int("clean", result.Clean),
		zap.Int("blocked", result.Blocked),
		zap.Int("errors", result.Errors))
	return result
}

// Remove deletes an address from the reject list
func (uc *RejectUsecase) Remove(ctx context.Context, address string) (*domain.DeleteResult, error) {
	result, err := uc.rejectRepo.Remove(ctx, address)
	if err != nil {
		return nil, err
	}

	uc.logger.Info("Reject removal processed",
		zap.String("address", logging.RedactEmail(address)),
		zap.Bool("deleted", result.Deleted))
	return result, nil
}

// ListBlocked lists every active reject entry
func (uc *RejectUsecase) ListBlocked(ctx context.Context) ([]domain.RejectEntry, error) {
	return uc.rejectRepo.ListAll(ctx)
}
