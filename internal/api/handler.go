package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/DevRickLin/reject-console/internal/biz/domain"
	"github.com/DevRickLin/reject-console/internal/biz/usecase"
)

// Server provides the local ops HTTP API: health, metrics and a JSON view
// of the reject list
type Server struct {
	rejectUC *usecase.RejectUsecase
	accessUC *usecase.AccessUsecase
	addr     string
	server   *http.Server
	logger   *zap.Logger
}

// NewServer creates a new API server
func NewServer(rejectUC *usecase.RejectUsecase, accessUC *usecase.AccessUsecase, addr string, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		rejectUC: rejectUC,
		accessUC: accessUC,
		addr:     addr,
		logger:   logger.Named("api"),
	}
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Enabled reports whether an address is configured
func (s *Server) Enabled() bool {
	return s.addr != ""
}

// Handler builds the router
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/access", s.handleAccess)
		r.Route("/rejects", func(r chi.Router) {
			r.Get("/", s.handleListRejects)
			r.Post("/check", s.handleBulkCheck)
			r.Get("/{address}", s.handleCheck)
			r.Delete("/{address}", s.handleRemove)
		})
	})

	return r
}

// Start serves until Stop is called; it returns nil after Stop, including
// when Stop ran first
func (s *Server) Start() error {
	s.logger.Info("Starting HTTP server", zap.String("addr", s.addr))
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// ============ Reject Handlers ============

// CheckResponse is the JSON view of a single-address check
type CheckResponse struct {
	Address string                `json:"address"`
	Blocked bool                  `json:"blocked"`
	Entries []domain.RejectEntry  `json:"entries"`
	History []domain.MessageEntry `json:"history,omitempty"`
	Report  string                `json:"report"`
}

// BulkCheckRequest lists addresses explicitly or as free text
type BulkCheckRequest struct {
	Addresses []string `json:"addresses"`
	Text      string   `json:"text"`
}

// BulkItem is one line of a bulk check
type BulkItem struct {
	Address string `json:"address"`
	Outcome string `json:"outcome"`
	Reason  string `json:"reason,omitempty"`
	Error   string `json:"error,omitempty"`
}

// BulkCheckResponse is the JSON view of a bulk check
type BulkCheckResponse struct {
	Items   []BulkItem `json:"items"`
	Clean   int        `json:"clean"`
	Blocked int        `json:"blocked"`
	Errors  int        `json:"errors"`
	Total   int        `json:"total"`
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if !domain.IsAddress(address) {
		http.Error(w, "invalid address", http.StatusBadRequest)
		return
	}

	result, err := s.rejectUC.Check(r.Context(), address)
	if err != nil {
		s.writeError(w, err)
		return
	}

	entries := result.Entries
	if entries == nil {
		entries = []domain.RejectEntry{}
	}
	s.writeJSON(w, CheckResponse{
		Address: address,
		Blocked: result.Blocked(),
		Entries: entries,
		History: result.History,
		Report:  usecase.FormatCheck(result),
	})
}

func (s *Server) handleBulkCheck(w http.ResponseWriter, r *http.Request) {
	var req BulkCheckRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	addresses := domain.MergeAddresses(req.Addresses, req.Text)
	if len(addresses) == 0 {
		http.Error(w, "no valid addresses", http.StatusBadRequest)
		return
	}

	result := s.rejectUC.BulkCheck(r.Context(), addresses)
	resp := BulkCheckResponse{
		Items:   make([]BulkItem, len(result.Items)),
		Clean:   result.Clean,
		Blocked: result.Blocked,
		Errors:  result.Errors,
		Total:   result.Total(),
	}
	for i, item := range result.Items {
		resp.Items[i] = BulkItem{
			Address: item.Address,
			Outcome: string(item.Outcome),
			Reason:  string(item.Reason),
		}
		if item.Err != nil {
			resp.Items[i].Error = item.Err.Error()
		}
	}
	s.writeJSON(w, resp)
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if !domain.IsAddress(address) {
		http.Error(w, "invalid address", http.StatusBadRequest)
		return
	}

	result, err := s.rejectUC.Remove(r.Context(), address)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, result)
}

func (s *Server) handleListRejects(w http.ResponseWriter, r *http.Request) {
	entries, err := s.rejectUC.ListBlocked(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if entries == nil {
		entries = []domain.RejectEntry{}
	}
	s.writeJSON(w, map[string]interface{}{
		"total":   len(entries),
		"entries": entries,
	})
}

func (s *Server) handleAccess(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, map[string]string{"mode": string(s.accessUC.Policy().Mode())})
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

// writeError reports a provider failure as a bad gateway
func (s *Server) writeError(w http.ResponseWriter, err error) {
	s.logger.Warn("Provider error", zap.Error(err))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
