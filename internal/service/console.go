package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/DevRickLin/reject-console/internal/biz/domain"
	"github.com/DevRickLin/reject-console/internal/biz/repo"
	"github.com/DevRickLin/reject-console/internal/biz/usecase"
	"github.com/DevRickLin/reject-console/internal/conf"
	"github.com/DevRickLin/reject-console/internal/logging"
	"github.com/DevRickLin/reject-console/internal/metrics"
)

// Command names
const (
	CmdStart       = "start"
	CmdHelp        = "help"
	CmdCheck       = "check"
	CmdCheckBulk   = "checkbulk"
	CmdRemove      = "remove"
	CmdListBlocked = "listblocked"
	CmdChatID      = "chatid"
)

// Metric status values
const (
	statusOK      = "ok"
	statusInvalid = "invalid"
	statusError   = "error"
)

// ConsoleService routes chat commands to the reject usecase and replies
type ConsoleService struct {
	rejectUC    *usecase.RejectUsecase
	messageRepo repo.MessageRepo
	messages    *conf.MessagesConfig
	pageLimit   int
	logger      *zap.Logger
}

// NewConsoleService creates a new console service
func NewConsoleService(
	rejectUC *usecase.RejectUsecase,
	messageRepo repo.MessageRepo,
	messages *conf.MessagesConfig,
	logger *zap.Logger,
) *ConsoleService {
	if messages == nil {
		messages = conf.DefaultMessagesConfig()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleService{
		rejectUC:    rejectUC,
		messageRepo: messageRepo,
		messages:    messages,
		pageLimit:   usecase.DefaultPageLimit,
		logger:      logger.Named("service"),
	}
}

// SetPageLimit overrides the maximum characters per outbound message
func (s *ConsoleService) SetPageLimit(limit int) {
	if limit > 0 {
		s.pageLimit = limit
	}
}

// MessageRequest represents an inbound chat message
type MessageRequest struct {
	RequestID string
	ChatID    string
	MsgID     string
	SenderID  string
	ChatType  domain.ChatType
	Content   string
}

// ParseCommand splits text into a command name and its arguments. Leading
// @mentions are skipped and a "@botname" suffix on the command is dropped.
// Text that is not a slash command returns an empty name and the text.
func ParseCommand(text string) (string, string) {
	text = strings.TrimSpace(text)
	for strings.HasPrefix(text, "@") {
		idx := strings.IndexAny(text, " \t\n")
		if idx < 0 {
			return "", ""
		}
		text = strings.TrimSpace(text[idx:])
	}

	if !strings.HasPrefix(text, "/") {
		return "", text
	}

	name, args := text[1:], ""
	if idx := strings.IndexAny(name, " \t\n"); idx >= 0 {
		name, args = name[:idx], strings.TrimSpace(name[idx:])
	}
	if idx := strings.Index(name, "@"); idx >= 0 {
		name = name[:idx]
	}
	return strings.ToLower(name), args
}

// HandleMessage processes one inbound message to completion
func (s *ConsoleService) HandleMessage(ctx context.Context, req *MessageRequest) error {
	cmd, args := ParseCommand(req.Content)
	logger := s.logger.With(zap.String("request_id", req.RequestID), zap.String("chat_id", req.ChatID))

	label := cmd
	var status string
	var err error

	switch cmd {
	case "":
		label = "text"
		status, err = s.handleText(ctx, req.ChatID, args)
	case CmdStart:
		status, err = s.send(ctx, req.ChatID, s.messages.Start)
	case CmdHelp:
		status, err = s.send(ctx, req.ChatID, s.messages.Help)
	case CmdCheck:
		status, err = s.handleCheck(ctx, req.ChatID, args)
	case CmdCheckBulk:
		status, err = s.handleCheckBulk(ctx, req.ChatID, args)
	case CmdRemove:
		status, err = s.handleRemove(ctx, req.ChatID, args)
	case CmdListBlocked:
		status, err = s.handleListBlocked(ctx, req.ChatID)
	case CmdChatID:
		status, err = s.send(ctx, req.ChatID, fmt.Sprintf("Chat ID: %s\nChat type: %s\nUser ID: %s",
			req.ChatID, req.ChatType, req.SenderID))
	default:
		label = "unknown"
		status, err = s.send(ctx, req.ChatID, s.messages.Guidance)
	}

	if err != nil {
		status = statusError
		logger.Error("Reply failed", zap.String("command", label), zap.Error(err))
	}
	metrics.CommandsTotal.WithLabelValues(label, status).Inc()
	logger.Info("Command handled", zap.String("command", label), zap.String("status", status))
	return err
}

// handleText routes free text by the number of addresses it contains
func (s *ConsoleService) handleText(ctx context.Context, chatID, text string) (string, error) {
	addresses := domain.ExtractAddresses(text)
	switch len(addresses) {
	case 0:
		return s.send(ctx, chatID, s.messages.Guidance)
	case 1:
		return s.check(ctx, chatID, addresses[0])
	default:
		return s.bulk(ctx, chatID, addresses, fmt.Sprintf("Found %d addresses, checking...", len(addresses)))
	}
}

func (s *ConsoleService) handleCheck(ctx context.Context, chatID, args string) (string, error) {
	address := strings.TrimSpace(args)
	if !domain.IsAddress(address) {
		return s.sendInvalid(ctx, chatID, "Usage: /check email@domain.com")
	}
	return s.check(ctx, chatID, address)
}

func (s *ConsoleService) check(ctx context.Context, chatID, address string) (string, error) {
	if err := s.messageRepo.SendText(ctx, chatID, fmt.Sprintf("Checking address: %s...", address)); err != nil {
		return statusError, err
	}

	result, err := s.rejectUC.Check(ctx, address)
	if err != nil {
		s.logger.Warn("Check failed", zap.String("address", logging.RedactEmail(address)), zap.Error(err))
		return s.sendFailure(ctx, chatID, "Error checking address: "+err.Error())
	}
	return s.send(ctx, chatID, usecase.FormatCheck(result))
}

func (s *ConsoleService) handleCheckBulk(ctx context.Context, chatID, args string) (string, error) {
	addresses := domain.ExtractAddresses(args)
	if len(addresses) == 0 {
		return s.sendInvalid(ctx, chatID, "Usage: /checkbulk email1@domain.com email2@domain.com ...")
	}
	return s.bulk(ctx, chatID, addresses, fmt.Sprintf("Checking %d addresses...", len(addresses)))
}

func (s *ConsoleService) bulk(ctx context.Context, chatID string, addresses []string, notice string) (string, error) {
	if err := s.messageRepo.SendText(ctx, chatID, notice); err != nil {
		return statusError, err
	}
	result := s.rejectUC.BulkCheck(ctx, addresses)
	return s.send(ctx, chatID, usecase.FormatBulk(result))
}

func (s *ConsoleService) handleRemove(ctx context.Context, chatID, args string) (string, error) {
	address := strings.TrimSpace(args)
	if !domain.IsAddress(address) {
		return s.sendInvalid(ctx, chatID, "Usage: /remove email@domain.com")
	}

	result, err := s.rejectUC.Remove(ctx, address)
	if err != nil {
		s.logger.Warn("Remove failed", zap.String("address", logging.RedactEmail(address)), zap.Error(err))
		return s.sendFailure(ctx, chatID, "Error removing address: "+err.Error())
	}
	if result.Deleted {
		return s.send(ctx, chatID, fmt.Sprintf("Address %s was removed from the reject list.", address))
	}
	return s.send(ctx, chatID, fmt.Sprintf("Address %s was not found on the reject list.", address))
}

func (s *ConsoleService) handleListBlocked(ctx context.Context, chatID string) (string, error) {
	if err := s.messageRepo.SendText(ctx, chatID, "Fetching the reject list..."); err != nil {
		return statusError, err
	}

	entries, err := s.rejectUC.ListBlocked(ctx)
	if err != nil {
		s.logger.Warn("List failed", zap.Error(err))
		return s.sendFailure(ctx, chatID, "Error listing the reject list: "+err.Error())
	}
	return s.send(ctx, chatID, usecase.FormatList(entries))
}

// PostBlockedList sends the full active reject list to a chat, paginated
func (s *ConsoleService) PostBlockedList(ctx context.Context, chatID string) error {
	entries, err := s.rejectUC.ListBlocked(ctx)
	if err != nil {
		return fmt.Errorf("list rejects: %w", err)
	}
	_, err = s.send(ctx, chatID, usecase.FormatList(entries))
	return err
}

// send delivers text in pages, skipping blank ones
func (s *ConsoleService) send(ctx context.Context, chatID, text string) (string, error) {
	for _, page := range usecase.PaginateText(text, s.pageLimit) {
		if strings.TrimSpace(page) == "" {
			continue
		}
		if err := s.messageRepo.SendText(ctx, chatID, page); err != nil {
			return statusError, fmt.Errorf("send to %s: %w", chatID, err)
		}
	}
	return statusOK, nil
}

func (s *ConsoleService) sendInvalid(ctx context.Context, chatID, text string) (string, error) {
	if _, err := s.send(ctx, chatID, text); err != nil {
		return statusError, err
	}
	return statusInvalid, nil
}

func (s *ConsoleService) sendFailure(ctx context.Context, chatID, text string) (string, error) {
	if _, err := s.send(ctx, chatID, text); err != nil {
		return statusError, err
	}
	return statusError, nil
}
