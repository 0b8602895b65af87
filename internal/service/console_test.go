package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevRickLin/reject-console/internal/biz/domain"
	"github.com/DevRickLin/reject-console/internal/biz/usecase"
	"github.com/DevRickLin/reject-console/internal/conf"
)

// Mock implementations

type mockMessageRepo struct {
	mu       sync.Mutex
	sentText []string
	err      error
}

func (m *mockMessageRepo) SendText(ctx context.Context, chatID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sentText = append(m.sentText, text)
	return nil
}

func (m *mockMessageRepo) sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.sentText...)
}

type mockRejectRepo struct {
	entries   map[string][]domain.RejectEntry
	lookupErr map[string]error
	all       []domain.RejectEntry
	listErr   error
	deleted   map[string]bool
	removeErr error
	lookups   []string
}

func (m *mockRejectRepo) Lookup(ctx context.Context, address string) ([]domain.RejectEntry, error) {
	m.lookups = append(m.lookups, address)
	if err := m.lookupErr[address]; err != nil {
		return nil, err
	}
	return m.entries[address], nil
}

func (m *mockRejectRepo) ListAll(ctx context.Context) ([]domain.RejectEntry, error) {
	return m.all, m.listErr
}

func (m *mockRejectRepo) Remove(ctx context.Context, address string) (*domain.DeleteResult, error) {
	if m.removeErr != nil {
		return nil, m.removeErr
	}
	return &domain.DeleteResult{Deleted: m.deleted[address], Email: address}, nil
}

func (m *mockRejectRepo) SearchHistory(ctx context.Context, address string, limit int) ([]domain.MessageEntry, error) {
	return nil, nil
}

func newTestService(rejects *mockRejectRepo) (*ConsoleService, *mockMessageRepo) {
	msgRepo := &mockMessageRepo{}
	rejectUC := usecase.NewRejectUsecase(rejects, 0, nil)
	return NewConsoleService(rejectUC, msgRepo, nil, nil), msgRepo
}

func handle(t *testing.T, svc *ConsoleService, text string) {
	t.Helper()
	err := svc.HandleMessage(context.Background(), &MessageRequest{
		ChatID:   "oc_chat",
		SenderID: "ou_user",
		ChatType: domain.ChatTypeGroup,
		Content:  text,
	})
	require.NoError(t, err)
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		text     string
		wantCmd  string
		wantArgs string
	}{
		{"/check a@x.com", "check", "a@x.com"},
		{"  /CHECK   a@x.com  ", "check", "a@x.com"},
		{"/check@RejectBot a@x.com", "check", "a@x.com"},
		{"@RejectBot /listblocked", "listblocked", ""},
		{"@RejectBot @other /remove a@x.com", "remove", "a@x.com"},
		{"/checkbulk a@x.com\nb@y.com", "checkbulk", "a@x.com\nb@y.com"},
		{"hello a@x.com", "", "hello a@x.com"},
		{"@RejectBot", "", ""},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			cmd, args := ParseCommand(tt.text)
			assert.Equal(t, tt.wantCmd, cmd)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestHandleMessage_StartAndHelp(t *testing.T) {
	svc, msgRepo := newTestService(&mockRejectRepo{})

	handle(t, svc, "/start")
	handle(t, svc, "/help")

	sent := msgRepo.sent()
	require.Len(t, sent, 2)
	assert.Equal(t, conf.DefaultMessagesConfig().Start, sent[0])
	assert.Equal(t, conf.DefaultMessagesConfig().Help, sent[1])
}

func TestHandleMessage_CheckInvalidAddress(t *testing.T) {
	rejects := &mockRejectRepo{}
	svc, msgRepo := newTestService(rejects)

	handle(t, svc, "/check not-an-address")

	assert.Equal(t, []string{"Usage: /check email@domain.com"}, msgRepo.sent())
	assert.Empty(t, rejects.lookups, "invalid input must not reach the provider")
}

func TestHandleMessage_CheckClean(t *testing.T) {
	svc, msgRepo := newTestService(&mockRejectRepo{})

	handle(t, svc, "/check clean@example.com")

	sent := msgRepo.sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "Checking address: clean@example.com...", sent[0])
	assert.Contains(t, sent[1], "Status: CLEAN")
	assert.NotContains(t, sent[1], "Detail")
}

func TestHandleMessage_CheckBlocked(t *testing.T) {
	rejects := &mockRejectRepo{entries: map[string][]domain.RejectEntry{
		"bad@example.com": {{Email: "bad@example.com", Reason: domain.ReasonHardBounce, Detail: "550 5.1.1 user unknown"}},
	}}
	svc, msgRepo := newTestService(rejects)

	handle(t, svc, "/check bad@example.com")

	sent := msgRepo.sent()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[1], "Status: BLOCKED")
	assert.Contains(t, sent[1], "550 (5.1.1)")
	assert.Contains(t, sent[1], "/remove bad@example.com")
}

func TestHandleMessage_CheckProviderError(t *testing.T) {
	rejects := &mockRejectRepo{lookupErr: map[string]error{"a@x.com": errors.New("Invalid_Key: Invalid API key")}}
	svc, msgRepo := newTestService(rejects)

	handle(t, svc, "/check a@x.com")

	sent := msgRepo.sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "Error checking address: Invalid_Key: Invalid API key", sent[1])
}

func TestHandleMessage_CheckBulk(t *testing.T) {
	rejects := &mockRejectRepo{
		entries:   map[string][]domain.RejectEntry{"b@y.com": {{Reason: domain.ReasonSpam}}},
		lookupErr: map[string]error{"a@x.com": errors.New("timeout")},
	}
	svc, msgRepo := newTestService(rejects)

	handle(t, svc, "/checkbulk a@x.com, bad-input b@y.com")

	sent := msgRepo.sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "Checking 2 addresses...", sent[0])
	assert.Contains(t, sent[1], "[ERROR] a@x.com")
	assert.Contains(t, sent[1], "[BLOCKED] b@y.com (spam)")
	assert.Contains(t, sent[1], "Total: 2")
	assert.Equal(t, []string{"a@x.com", "b@y.com"}, rejects.lookups)
}

func TestHandleMessage_CheckBulkWithoutAddresses(t *testing.T) {
	svc, msgRepo := newTestService(&mockRejectRepo{})

	handle(t, svc, "/checkbulk nothing here")

	assert.Equal(t, []string{"Usage: /checkbulk email1@domain.com email2@domain.com ..."}, msgRepo.sent())
}

func TestHandleMessage_FreeTextRouting(t *testing.T) {
	t.Run("no address", func(t *testing.T) {
		svc, msgRepo := newTestService(&mockRejectRepo{})
		handle(t, svc, "hello there")
		assert.Equal(t, []string{conf.DefaultMessagesConfig().Guidance}, msgRepo.sent())
	})

	t.Run("single address", func(t *testing.T) {
		svc, msgRepo := newTestService(&mockRejectRepo{})
		handle(t, svc, "please check a@x.com")
		sent := msgRepo.sent()
		require.Len(t, sent, 2)
		assert.Contains(t, sent[1], "Status: CLEAN")
	})

	t.Run("many addresses", func(t *testing.T) {
		svc, msgRepo := newTestService(&mockRejectRepo{})
		handle(t, svc, "a@x.com b@y.com")
		sent := msgRepo.sent()
		require.Len(t, sent, 2)
		assert.Equal(t, "Found 2 addresses, checking...", sent[0])
		assert.Contains(t, sent[1], "Bulk Check Report")
	})
}

func TestHandleMessage_Remove(t *testing.T) {
	rejects := &mockRejectRepo{deleted: map[string]bool{"gone@x.com": true}}
	svc, msgRepo := newTestService(rejects)

	handle(t, svc, "/remove gone@x.com")
	handle(t, svc, "/remove missing@x.com")
	handle(t, svc, "/remove")

	assert.Equal(t, []string{
		"Address gone@x.com was removed from the reject list.",
		"Address missing@x.com was not found on the reject list.",
		"Usage: /remove email@domain.com",
	}, msgRepo.sent())
}

func TestHandleMessage_RemoveError(t *testing.T) {
	svc, msgRepo := newTestService(&mockRejectRepo{removeErr: errors.New("Invalid_Reject: not found")})

	handle(t, svc, "/remove a@x.com")

	assert.Equal(t, []string{"Error removing address: Invalid_Reject: not found"}, msgRepo.sent())
}

func TestHandleMessage_ListBlocked(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		svc, msgRepo := newTestService(&mockRejectRepo{})
		handle(t, svc, "/listblocked")
		sent := msgRepo.sent()
		require.Len(t, sent, 2)
		assert.Equal(t, "Fetching the reject list...", sent[0])
		assert.Contains(t, sent[1], "empty")
	})

	t.Run("paginated", func(t *testing.T) {
		var all []domain.RejectEntry
		for i := 0; i < 50; i++ {
			all = append(all, domain.RejectEntry{Email: "user@example.com", Reason: domain.ReasonHardBounce, CreatedAt: "2024-01-01 00:00:00"})
		}
		svc, msgRepo := newTestService(&mockRejectRepo{all: all})
		svc.SetPageLimit(500)

		handle(t, svc, "/listblocked")

		pages := msgRepo.sent()[1:]
		require.Greater(t, len(pages), 1)
		assert.True(t, strings.HasPrefix(pages[0], "Total blocked: 50"))
		for i, page := range pages {
			assert.LessOrEqual(t, len([]rune(page)), 500)
			if i > 0 {
				assert.NotContains(t, page, "Total blocked")
			}
		}
	})

	t.Run("provider error", func(t *testing.T) {
		svc, msgRepo := newTestService(&mockRejectRepo{listErr: errors.New("boom")})
		handle(t, svc, "/listblocked")
		assert.Equal(t, "Error listing the reject list: boom", msgRepo.sent()[1])
	})
}

func TestHandleMessage_ChatIDAndUnknown(t *testing.T) {
	svc, msgRepo := newTestService(&mockRejectRepo{})

	handle(t, svc, "/chatid")
	handle(t, svc, "/frobnicate")

	sent := msgRepo.sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "Chat ID: oc_chat\nChat type: group\nUser ID: ou_user", sent[0])
	assert.Equal(t, conf.DefaultMessagesConfig().Guidance, sent[1])
}

func TestHandleMessage_SendFailure(t *testing.T) {
	svc, msgRepo := newTestService(&mockRejectRepo{})
	msgRepo.err = errors.New("network down")

	err := svc.HandleMessage(context.Background(), &MessageRequest{ChatID: "oc_chat", Content: "/help"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network down")
}

func TestPostBlockedList(t *testing.T) {
	svc, msgRepo := newTestService(&mockRejectRepo{all: []domain.RejectEntry{
		{Email: "a@x.com", Reason: domain.ReasonSpam, CreatedAt: "2024-02-02 00:00:00"},
	}})

	require.NoError(t, svc.PostBlockedList(context.Background(), "oc_chat"))
	assert.Equal(t, []string{"Total blocked: 1\n\n1. a@x.com (spam) - 2024-02-02 00:00:00"}, msgRepo.sent())

	failing, _ := newTestService(&mockRejectRepo{listErr: errors.New("boom")})
	assert.Error(t, failing.PostBlockedList(context.Background(), "oc_chat"))
}
