package usecase

import (
	"go.uber.org/zap"

	"github.com/DevRickLin/reject-console/internal/biz/domain"
	"github.com/DevRickLin/reject-console/internal/metrics"
)

// AccessDecision is the gate's verdict for one inbound message
type AccessDecision struct {
	Allowed bool
	Notify  bool // send an explicit denial notice
}

// AccessUsecase applies the access policy to inbound messages
type AccessUsecase struct {
	policy domain.AccessPolicy
	logger *zap.Logger
}

// NewAccessUsecase creates a new access usecase
func NewAccessUsecase(policy domain.AccessPolicy, logger *zap.Logger) *AccessUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("Access policy loaded", zap.String("mode", string(policy.Mode())))
	return &AccessUsecase{policy: policy, logger: logger}
}

// Policy returns the active policy
func (uc *AccessUsecase) Policy() domain.AccessPolicy {
	return uc.policy
}

// Check decides whether the caller may proceed. Denials outside private
// chats stay silent so the bot does not reveal itself to foreign groups.
func (uc *AccessUsecase) Check(callerID, chatID string, chatType domain.ChatType) AccessDecision {
	if uc.policy.Allows(callerID, chatID, chatType) {
		return AccessDecision{Allowed: true}
	}

	mode := string(uc.policy.Mode())
	metrics.AccessDeniedTotal.WithLabelValues(mode).Inc()
	uc.logger.Info("Access denied",
		zap.String("mode", mode),
		zap.String("caller_id", callerID),
		zap.String("chat_id", chatID),
		zap.String("chat_type", string(chatType)))

	return AccessDecision{Notify: chatType.IsPrivate()}
}
