package feishu

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	lark "github.com/larksuite/oapi-sdk-go/v3"
	larkcore "github.com/larksuite/oapi-sdk-go/v3/core"
	"github.com/larksuite/oapi-sdk-go/v3/event/dispatcher"
	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	larkws "github.com/larksuite/oapi-sdk-go/v3/ws"
	"go.uber.org/zap"

	"github.com/DevRickLin/reject-console/internal/conf"
)

// Message represents a received Feishu message
type Message struct {
	ChatID     string
	MsgID      string
	MsgType    string // text, post
	ChatType   string // p2p, group, topic_group
	Content    string // Plain text with mention placeholders removed
	Sender     *Sender
	CreateTime int64 // Milliseconds Unix timestamp from Feishu
}

// SenderID returns the sender's open_id, or empty if unknown
func (m *Message) SenderID() string {
	if m.Sender == nil {
		return ""
	}
	return m.Sender.SenderID
}

// Sender represents the message sender
type Sender struct {
	SenderID   string // open_id
	SenderType string // user, app
	TenantKey  string
}

// MessageHandler is the callback for received messages
type MessageHandler func(msg *Message)

// Client is the Feishu API client
type Client struct {
	appID     string
	appSecret string
	larkCli   *lark.Client
	wsCli     *larkws.Client
	onMessage MessageHandler
	cancel    context.CancelFunc
	logger    *zap.Logger
}

// NewClient creates a new Feishu client
func NewClient(cfg conf.FeishuConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		appID:     cfg.AppID,
		appSecret: cfg.AppSecret,
		larkCli:   lark.NewClient(cfg.AppID, cfg.AppSecret),
		logger:    logger.Named("feishu"),
	}
}

// OnMessage sets the message handler
func (c *Client) OnMessage(handler MessageHandler) {
	c.onMessage = handler
}

// Start connects to Feishu via WebSocket and blocks until ctx is done
func (c *Client) Start(ctx context.Context) error {
	ctx, c.cancel = context.WithCancel(ctx)

	// Must return quickly so the SDK can ACK, otherwise Feishu redelivers
	eventHandler := dispatcher.NewEventDispatcher("", "").
		OnP2MessageReceiveV1(func(_ context.Context, event *larkim.P2MessageReceiveV1) error {
			go c.handleMessage(event)
			return nil
		})

	c.wsCli = larkws.NewClient(c.appID, c.appSecret,
		larkws.WithEventHandler(eventHandler),
		larkws.WithLogLevel(larkcore.LogLevelInfo),
	)

	c.logger.Info("starting websocket connection")
	return c.wsCli.Start(ctx)
}

// Stop disconnects from Feishu
func (c *Client) Stop() {
	if c.cancel != nil {
		c.cancel()
	}
}

// handleMessage converts an incoming event and passes it to the handler
func (c *Client) handleMessage(event *larkim.P2MessageReceiveV1) {
	if event == nil || event.Event == nil {
		return
	}
	msg := ConvertEvent(event.Event)
	if msg == nil {
		return
	}

	c.logger.Debug("message received",
		zap.String("chat_id", msg.ChatID),
		zap.String("chat_type", msg.ChatType),
		zap.String("msg_type", msg.MsgType),
	)

	if c.onMessage != nil {
		c.onMessage(msg)
	}
}

// ConvertEvent builds a Message from a receive event. It returns nil for
// messages sent by apps (including this bot) and unsupported message types.
func ConvertEvent(ev *larkim.P2MessageReceiveV1Data) *Message {
	rawMsg := ev.Message
	if rawMsg == nil || rawMsg.ChatId == nil || rawMsg.MessageId == nil {
		return nil
	}

	// Ignore bot messages to prevent reply loops
	if ev.Sender != nil && ev.Sender.SenderType != nil && *ev.Sender.SenderType == "app" {
		return nil
	}

	msg := &Message{
		ChatID:  *rawMsg.ChatId,
		MsgID:   *rawMsg.MessageId,
		MsgType: stringValue(rawMsg.MessageType),
	}

	if rawMsg.CreateTime != nil {
		if ts, err := strconv.ParseInt(*rawMsg.CreateTime, 10, 64); err == nil {
			msg.CreateTime = ts
		}
	}
	if rawMsg.ChatType != nil {
		msg.ChatType = *rawMsg.ChatType
	}

	if ev.Sender != nil {
		msg.Sender = &Sender{
			SenderType: stringValue(ev.Sender.SenderType),
			TenantKey:  stringValue(ev.Sender.TenantKey),
		}
		if ev.Sender.SenderId != nil {
			msg.Sender.SenderID = stringValue(ev.Sender.SenderId.OpenId)
		}
	}

	content := stringValue(rawMsg.Content)
	switch msg.MsgType {
	case "text":
		msg.Content = ParseTextContent(content)
	case "post":
		msg.Content = ParsePostContent(content)
	default:
		return nil
	}
	return msg
}

// mentionPattern matches Feishu mention placeholders such as @_user_1 or @_all
var mentionPattern = regexp.MustCompile(`@_(user_\d+|all)`)

// ParseTextContent extracts text from a text message with mention
// placeholders removed
func ParseTextContent(content string) string {
	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return ""
	}
	return stripMentions(parsed.Text)
}

// ParsePostContent extracts the text of a rich text message, one line per
// paragraph. Mentions and images are dropped.
func ParsePostContent(content string) string {
	var parsed struct {
		Title   string `json:"title"`
		Content [][]struct {
			Tag  string `json:"tag"`
			Text string `json:"text,omitempty"`
		} `json:"content"`
	}
	if err := json.Unmarshal([]byte(content), &parsed); err != nil {
		return ""
	}

	var textParts []string
	if parsed.Title != "" {
		textParts = append(textParts, parsed.Title)
	}
	for _, line := range parsed.Content {
		var b strings.Builder
		for _, elem := range line {
			if elem.Tag == "text" || elem.Tag == "a" {
				b.WriteString(elem.Text)
			}
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			textParts = append(textParts, s)
		}
	}
	return stripMentions(strings.Join(textParts, "\n"))
}

func stripMentions(text string) string {
	return strings.TrimSpace(mentionPattern.ReplaceAllString(text, ""))
}

// SendText sends a text message to a chat
func (c *Client) SendText(ctx context.Context, chatID, text string) error {
	content := map[string]string{"text": text}
	contentJSON, _ := json.Marshal(content)

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(larkim.ReceiveIdTypeChatId).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(chatID).
			MsgType(larkim.MsgTypeText).
			Content(string(contentJSON)).
			Build()).
		Build()

	resp, err := c.larkCli.Im.Message.Create(ctx, req)
	if err != nil {
		return fmt.Errorf("send message failed: %w", err)
	}
	if !resp.Success() {
		return fmt.Errorf("send message error: %s", resp.Msg)
	}

	c.logger.Debug("message sent", zap.String("chat_id", chatID), zap.Int("chars", len([]rune(text))))
	return nil
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
