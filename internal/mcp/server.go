// Package mcp exposes the reject console as MCP tools over stdio.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/DevRickLin/reject-console/internal/biz/domain"
	"github.com/DevRickLin/reject-console/internal/biz/usecase"
)

// Tool names
const (
	ToolCheck     = "reject_check"
	ToolCheckBulk = "reject_check_bulk"
	ToolRemove    = "reject_remove"
	ToolList      = "reject_list"
)

// RejectMCPServer provides MCP tools for the Mandrill reject list
type RejectMCPServer struct {
	server   *mcp.Server
	rejectUC *usecase.RejectUsecase
	logger   *zap.Logger
}

// NewServer creates a new reject MCP server
func NewServer(rejectUC *usecase.RejectUsecase, version string, logger *zap.Logger) *RejectMCPServer {
	if logger == nil {
		logger = zap.NewNop()
	}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "reject-console",
		Version: version,
	}, nil)

	s := &RejectMCPServer{
		server:   server,
		rejectUC: rejectUC,
		logger:   logger.Named("mcp"),
	}
	s.registerTools()
	return s
}

// registerTools registers all reject list tools
func (s *RejectMCPServer) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolCheck,
		Description: "Check whether an email address is on the Mandrill reject list. Returns the reject reason, SMTP detail and recent send history.",
	}, s.handleCheck)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolCheckBulk,
		Description: "Check several email addresses at once. Pass them as a list or as free text; invalid tokens are ignored.",
	}, s.handleCheckBulk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolRemove,
		Description: "Remove an email address from the Mandrill reject list so mail to it is delivered again.",
	}, s.handleRemove)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        ToolList,
		Description: "List every active (non-expired) entry on the Mandrill reject list.",
	}, s.handleList)
}

// Run starts the MCP server with stdio transport
func (s *RejectMCPServer) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// GetServer returns the underlying MCP server
func (s *RejectMCPServer) GetServer() *mcp.Server {
	return s.server
}

// CheckInput is the input for reject_check tool
type CheckInput struct {
	Address string `json:"address" jsonschema:"The email address to check"`
}

// CheckOutput is the output for reject_check tool
type CheckOutput struct {
	Address string `json:"address"`
	Blocked bool   `json:"blocked"`
	Entries int    `json:"entries"`
	Report  string `json:"report"`
}

func (s *RejectMCPServer) handleCheck(ctx context.Context, req *mcp.CallToolRequest, input CheckInput) (*mcp.CallToolResult, CheckOutput, error) {
	if !domain.IsAddress(input.Address) {
		return nil, CheckOutput{}, fmt.Errorf("invalid email address: %q", input.Address)
	}

	result, err := s.rejectUC.Check(ctx, input.Address)
	if err != nil {
		return nil, CheckOutput{}, fmt.Errorf("error checking address: %w", err)
	}

	out := CheckOutput{
		Address: input.Address,
		Blocked: result.Blocked(),
		Entries: len(result.Entries),
		Report:  usecase.FormatCheck(result),
	}
	return textResult(out.Report), out, nil
}

// CheckBulkInput is the input for reject_check_bulk tool
type CheckBulkInput struct {
	Addresses []string `json:"addresses,omitempty" jsonschema:"Email addresses to check"`
	Text      string   `json:"text,omitempty" jsonschema:"Free text to scan for email addresses"`
}

// CheckBulkOutput is the output for reject_check_bulk tool
type CheckBulkOutput struct {
	Clean   int    `json:"clean"`
	Blocked int    `json:"blocked"`
	Errors  int    `json:"errors"`
	Total   int    `json:"total"`
	Report  string `json:"report"`
}

func (s *RejectMCPServer) handleCheckBulk(ctx context.Context, req *mcp.CallToolRequest, input CheckBulkInput) (*mcp.CallToolResult, CheckBulkOutput, error) {
	addresses := domain.MergeAddresses(input.Addresses, input.Text)
	if len(addresses) == 0 {
		return nil, CheckBulkOutput{}, errors.New("no valid email addresses found")
	}

	result := s.rejectUC.BulkCheck(ctx, addresses)
	out := CheckBulkOutput{
		Clean:   result.Clean,
		Blocked: result.Blocked,
		Errors:  result.Errors,
		Total:   result.Total(),
		Report:  usecase.FormatBulk(result),
	}
	return textResult(out.Report), out, nil
}

// RemoveInput is the input for reject_remove tool
type RemoveInput struct {
	Address string `json:"address" jsonschema:"The email address to remove from the reject list"`
}

// RemoveOutput is the output for reject_remove tool
type RemoveOutput struct {
	Address string `json:"address"`
	Deleted bool   `json:"deleted"`
	Message string `json:"message"`
}

func (s *RejectMCPServer) handleRemove(ctx context.Context, req *mcp.CallToolRequest, input RemoveInput) (*mcp.CallToolResult, RemoveOutput, error) {
	if !domain.IsAddress(input.Address) {
		return nil, RemoveOutput{}, fmt.Errorf("invalid email address: %q", input.Address)
	}

	result, err := s.rejectUC.Remove(ctx, input.Address)
	if err != nil {
		return nil, RemoveOutput{}, fmt.Errorf("error removing address: %w", err)
	}

	out := RemoveOutput{Address: input.Address, Deleted: result.Deleted}
	if result.Deleted {
		out.Message = fmt.Sprintf("Address %s was removed from the reject list.", input.Address)
	} else {
		out.Message = fmt.Sprintf("Address %s was not found on the reject list.", input.Address)
	}
	return textResult(out.Message), out, nil
}

// ListInput is the input for reject_list tool
type ListInput struct{}

// ListOutput is the output for reject_list tool
type ListOutput struct {
	Total  int    `json:"total"`
	Report string `json:"report"`
}

func (s *RejectMCPServer) handleList(ctx context.Context, req *mcp.CallToolRequest, input ListInput) (*mcp.CallToolResult, ListOutput, error) {
	entries, err := s.rejectUC.ListBlocked(ctx)
	if err != nil {
		return nil, ListOutput{}, fmt.Errorf("error listing the reject list: %w", err)
	}

	out := ListOutput{Total: len(entries), Report: usecase.FormatList(entries)}
	s.logger.Debug("Listed rejects", zap.Int("total", out.Total))
	return textResult(out.Report), out, nil
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}
