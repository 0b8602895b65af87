package server

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DevRickLin/reject-console/internal/biz/domain"
	"github.com/DevRickLin/reject-console/internal/biz/repo"
	"github.com/DevRickLin/reject-console/internal/biz/usecase"
	"github.com/DevRickLin/reject-console/internal/infra/feishu"
	"github.com/DevRickLin/reject-console/internal/service"
)

// seenTTL is how long a message id is remembered for deduplication
const seenTTL = 5 * time.Minute

// Transport delivers inbound Feishu messages
type Transport interface {
	OnMessage(handler feishu.MessageHandler)
	Start(ctx context.Context) error
	Stop()
}

// FeishuServer handles Feishu message processing
type FeishuServer struct {
	transport   Transport
	messageRepo repo.MessageRepo
	consoleSvc  *service.ConsoleService
	accessUC    *usecase.AccessUsecase
	cron        *service.CronRunner
	deniedText  string
	logger      *zap.Logger

	// Message deduplication cache
	seenMsgsMu sync.Mutex
	seenMsgs   map[string]time.Time // msgID -> timestamp

	// One command at a time per chat; entries live while a message holds
	// or waits for them
	chatLocksMu sync.Mutex
	chatLocks   map[string]*chatLock
}

type chatLock struct {
	mu   sync.Mutex
	refs int
}

// NewFeishuServer creates a new Feishu server
func NewFeishuServer(
	transport Transport,
	messageRepo repo.MessageRepo,
	consoleSvc *service.ConsoleService,
	accessUC *usecase.AccessUsecase,
	cron *service.CronRunner,
	deniedText string,
	logger *zap.Logger,
) *FeishuServer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeishuServer{
		transport:   transport,
		messageRepo: messageRepo,
		consoleSvc:  consoleSvc,
		accessUC:    accessUC,
		cron:        cron,
		deniedText:  deniedText,
		logger:      logger.Named("server"),
		seenMsgs:    make(map[string]time.Time),
		chatLocks:   make(map[string]*chatLock),
	}
}

// Start starts the server and blocks until ctx is done or the transport fails
func (s *FeishuServer) Start(ctx context.Context) error {
	if s.cron != nil {
		s.cron.Start()
	}

	s.transport.OnMessage(s.handleMessage)
	return s.transport.Start(ctx)
}

// Stop stops the server
func (s *FeishuServer) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
	s.transport.Stop()
}

// handleMessage handles Feishu messages
func (s *FeishuServer) handleMessage(msg *feishu.Message) {
	if !s.markMessageSeen(msg.MsgID) {
		s.logger.Debug("Duplicate message ignored", zap.String("msg_id", msg.MsgID))
		return
	}

	requestID := uuid.NewString()
	chatType := domain.ParseChatType(msg.ChatType)
	senderID := msg.SenderID()
	logger := s.logger.With(zap.String("request_id", requestID), zap.String("chat_id", msg.ChatID))

	unlock := s.lockChat(msg.ChatID)
	defer unlock()

	ctx := context.Background()

	// /chatid answers regardless of the gate so operators can discover ids
	if cmd, _ := service.ParseCommand(msg.Content); cmd != service.CmdChatID {
		decision := s.accessUC.Check(senderID, msg.ChatID, chatType)
		if !decision.Allowed {
			if decision.Notify {
				if err := s.messageRepo.SendText(ctx, msg.ChatID, s.deniedText); err != nil {
					logger.Warn("Failed to send denial notice", zap.Error(err))
				}
			}
			return
		}
	}

	req := &service.MessageRequest{
		RequestID: requestID,
		ChatID:    msg.ChatID,
		MsgID:     msg.MsgID,
		SenderID:  senderID,
		ChatType:  chatType,
		Content:   msg.Content,
	}
	if err := s.consoleSvc.HandleMessage(ctx, req); err != nil {
		logger.Error("Handle message error", zap.Error(err))
	}
}

// lockChat blocks until the chat is free and returns its release func.
// The entry is dropped once no message holds or waits for it.
func (s *FeishuServer) lockChat(chatID string) func() {
	s.chatLocksMu.Lock()
	lock, ok := s.chatLocks[chatID]
	if !ok {
		lock = &chatLock{}
		s.chatLocks[chatID] = lock
	}
	lock.refs++
	s.chatLocksMu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()

		s.chatLocksMu.Lock()
		lock.refs--
		if lock.refs == 0 {
			delete(s.chatLocks, chatID)
		}
		s.chatLocksMu.Unlock()
	}
}

// markMessageSeen records a message id and reports whether it was new
func (s *FeishuServer) markMessageSeen(msgID string) bool {
	s.seenMsgsMu.Lock()
	defer s.seenMsgsMu.Unlock()

	now := time.Now()
	if ts, exists := s.seenMsgs[msgID]; exists && now.Sub(ts) < seenTTL {
		return false
	}
	s.seenMsgs[msgID] = now

	// Drop expired records while holding the lock
	cutoff := now.Add(-seenTTL)
	for id, ts := range s.seenMsgs {
		if ts.Before(cutoff) {
			delete(s.seenMsgs, id)
		}
	}
	return true
}
