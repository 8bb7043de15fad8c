// Package mcp serves the travel tools over the Model Context Protocol:
// line-delimited JSON-RPC 2.0 on a reader/writer pair, usually stdio.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/soyeahso/holiday/internal/agent"
	"github.com/soyeahso/holiday/internal/logging"
	"github.com/soyeahso/holiday/internal/version"
)

// ServerName is reported in the initialize result.
const ServerName = "travel_server"

// maxLineBytes bounds a single request line.
const maxLineBytes = 1 << 20

// Server answers MCP requests with the tools of a registry.
type Server struct {
	tools *agent.ToolRegistry
	log   *logging.Logger

	mu  sync.Mutex
	out io.Writer
}

// NewServer creates a server for tools.
func NewServer(tools *agent.ToolRegistry, log *logging.Logger) *Server {
	return &Server{tools: tools, log: log.Sub("mcp")}
}

// Serve reads requests from in until EOF or ctx is done and writes
// responses to out. Requests are handled in order.
func (s *Server) Serve(ctx context.Context, in io.Reader, out io.Writer) error {
	s.mu.Lock()
	s.out = out
	s.mu.Unlock()

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	s.log.Info().Int("tools", len(s.tools.Names())).Msg("listening for requests")
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		s.handleLine(ctx, line)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading requests: %w", err)
	}
	s.log.Info().Msg("input closed, shutting down")
	return nil
}

func (s *Server) handleLine(ctx context.Context, line string) {
	var req Request
	if err := json.Unmarshal([]byte(line), &req); err != nil {
		s.log.Warn().Err(err).Msg("parse error")
		s.sendError(nil, CodeParseError, "Parse error", err.Error())
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		s.sendError(req.ID, CodeInvalidRequest, "Invalid request", nil)
		return
	}

	s.log.Debug().Str("method", req.Method).Interface("id", req.ID).Msg("handling request")

	switch req.Method {
	case "initialize":
		s.sendResult(req.ID, InitializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    Capabilities{Tools: map[string]any{}},
			ServerInfo:      ServerInfo{Name: ServerName, Version: version.Version},
		})
	case "ping":
		s.sendResult(req.ID, map[string]any{})
	case "tools/list":
		s.handleListTools(req)
	case "tools/call":
		s.handleCallTool(ctx, req)
	default:
		if strings.HasPrefix(req.Method, "notifications/") {
			return
		}
		s.sendError(req.ID, CodeMethodNotFound, "Method not found", fmt.Sprintf("Unknown method: %s", req.Method))
	}
}

func (s *Server) handleListTools(req Request) {
	defs := s.tools.Definitions()
	tools := make([]Tool, 0, len(defs))
	for _, d := range defs {
		tools = append(tools, Tool{Name: d.Name, Description: d.Description, InputSchema: d.Parameters})
	}
	s.sendResult(req.ID, ListToolsResult{Tools: tools})
}

func (s *Server) handleCallTool(ctx context.Context, req Request) {
	var params CallToolParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		s.sendError(req.ID, CodeInvalidParams, "Invalid params", err.Error())
		return
	}
	if _, ok := s.tools.Get(params.Name); !ok {
		s.sendError(req.ID, CodeInvalidParams, "Unknown tool", fmt.Sprintf("Tool not found: %s", params.Name))
		return
	}

	args := string(params.Arguments)
	if args == "" || args == "null" {
		args = "{}"
	}
	output, err := s.tools.Execute(ctx, params.Name, args)
	if err != nil {
		s.log.Warn().Err(err).Str("tool", params.Name).Msg("tool error")
		s.sendResult(req.ID, ToolResult{
			Content: []ContentItem{{Type: "text", Text: err.Error()}},
			IsError: true,
		})
		return
	}
	s.sendResult(req.ID, ToolResult{Content: []ContentItem{{Type: "text", Text: output}}})
}

func (s *Server) sendResult(id, result any) {
	s.write(Response{JSONRPC: "2.0", ID: id, Result: result})
}

func (s *Server) sendError(id any, code int, message string, data any) {
	s.write(Response{JSONRPC: "2.0", ID: id, Error: &RPCError{Code: code, Message: message, Data: data}})
}

func (s *Server) write(resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		s.log.Error().Err(err).Msg("marshaling response")
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintf(s.out, "%s\n", data); err != nil {
		s.log.Error().Err(err).Msg("writing response")
	}
}
