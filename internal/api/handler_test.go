package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevRickLin/reject-console/internal/biz/domain"
	"github.com/DevRickLin/reject-console/internal/biz/usecase"
	"github.com/DevRickLin/reject-console/internal/metrics"
)

// MockRejectRepo implements repo.RejectRepo for testing
type MockRejectRepo struct {
	entries map[string][]domain.RejectEntry
	all     []domain.RejectEntry
	err     error
}

func (m *MockRejectRepo) Lookup(ctx context.Context, address string) ([]domain.RejectEntry, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.entries[address], nil
}

func (m *MockRejectRepo) ListAll(ctx context.Context) ([]domain.RejectEntry, error) {
	return m.all, m.err
}

func (m *MockRejectRepo) Remove(ctx context.Context, address string) (*domain.DeleteResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &domain.DeleteResult{Deleted: true, Email: address}, nil
}

func (m *MockRejectRepo) SearchHistory(ctx context.Context, address string, limit int) ([]domain.MessageEntry, error) {
	return nil, nil
}

func newTestServer(repo *MockRejectRepo) http.Handler {
	rejectUC := usecase.NewRejectUsecase(repo, 0, nil)
	accessUC := usecase.NewAccessUsecase(domain.NewAccessPolicy("oc_ops", nil), nil)
	return NewServer(rejectUC, accessUC, "127.0.0.1:0", nil).Handler()
}

func serve(h http.Handler, method, path string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	w := serve(newTestServer(&MockRejectRepo{}), http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestMetrics(t *testing.T) {
	metrics.CommandsTotal.WithLabelValues("check", "ok").Inc()

	w := serve(newTestServer(&MockRejectRepo{}), http.MethodGet, "/metrics", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "reject_console_commands_total")
}

func TestHandleCheck(t *testing.T) {
	h := newTestServer(&MockRejectRepo{entries: map[string][]domain.RejectEntry{
		"bad@x.com": {{Email: "bad@x.com", Reason: domain.ReasonHardBounce}},
	}})

	w := serve(h, http.MethodGet, "/api/rejects/bad@x.com", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp CheckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Blocked)
	assert.Len(t, resp.Entries, 1)
	assert.Contains(t, resp.Report, "Status: BLOCKED")

	w = serve(h, http.MethodGet, "/api/rejects/clean@x.com", nil)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Blocked)
	assert.NotNil(t, resp.Entries)
}

func TestHandleCheck_InvalidAddress(t *testing.T) {
	w := serve(newTestServer(&MockRejectRepo{}), http.MethodGet, "/api/rejects/not-an-address", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleCheck_ProviderError(t *testing.T) {
	w := serve(newTestServer(&MockRejectRepo{err: errors.New("Invalid_Key: bad key")}), http.MethodGet, "/api/rejects/a@x.com", nil)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid_Key")
}

func TestHandleBulkCheck(t *testing.T) {
	h := newTestServer(&MockRejectRepo{entries: map[string][]domain.RejectEntry{
		"b@y.com": {{Reason: domain.ReasonSpam}},
	}})

	body, _ := json.Marshal(BulkCheckRequest{Addresses: []string{"a@x.com", "junk"}, Text: "also b@y.com"})
	w := serve(h, http.MethodPost, "/api/rejects/check", body)
	require.Equal(t, http.StatusOK, w.Code)

	var resp BulkCheckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, 1, resp.Clean)
	assert.Equal(t, 1, resp.Blocked)
	assert.Equal(t, "CLEAN", resp.Items[0].Outcome)
	assert.Equal(t, "spam", resp.Items[1].Reason)
}

func TestHandleBulkCheck_NoAddresses(t *testing.T) {
	w := serve(newTestServer(&MockRejectRepo{}), http.MethodPost, "/api/rejects/check", []byte(`{"text":"nothing"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleRemove(t *testing.T) {
	w := serve(newTestServer(&MockRejectRepo{}), http.MethodDelete, "/api/rejects/gone@x.com", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var result domain.DeleteResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.True(t, result.Deleted)
	assert.Equal(t, "gone@x.com", result.Email)
}

func TestHandleListRejects(t *testing.T) {
	h := newTestServer(&MockRejectRepo{all: []domain.RejectEntry{{Email: "a@x.com"}, {Email: "b@x.com"}}})

	w := serve(h, http.MethodGet, "/api/rejects/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"total":2`))
}

func TestHandleAccess(t *testing.T) {
	w := serve(newTestServer(&MockRejectRepo{}), http.MethodGet, "/api/access", nil)

	assert.JSONEq(t, `{"mode":"group"}`, w.Body.String())
}

func newLifecycleServer() *Server {
	rejectUC := usecase.NewRejectUsecase(&MockRejectRepo{}, 0, nil)
	accessUC := usecase.NewAccessUsecase(domain.NewAccessPolicy("", nil), nil)
	return NewServer(rejectUC, accessUC, "127.0.0.1:0", nil)
}

func TestServer_StartThenStop(t *testing.T) {
	s := newLifecycleServer()

	done := make(chan error, 1)
	go func() { done <- s.Start() }()

	time.Sleep(50 * time.Millisecond)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Stop")
	}
}

func TestServer_StopBeforeStart(t *testing.T) {
	s := newLifecycleServer()

	require.NoError(t, s.Stop(context.Background()))

	done := make(chan error, 1)
	go func() { done <- s.Start() }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Start kept listening after Stop")
	}
}
