package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/soyeahso/holiday/internal/agent"
	"github.com/soyeahso/holiday/internal/llm"
	"github.com/soyeahso/holiday/internal/store"
)

// llmCallTimeout is the maximum duration of one chat turn.
const llmCallTimeout = 5 * time.Minute

// maxChatBody caps the POST /api/chat request body.
const maxChatBody = 1 << 20

var errNoAgent = errors.New("no LLM provider configured")

// registerHTTPRoutes sets up all HTTP routes on the server mux.
func (s *Server) registerHTTPRoutes(mux *http.ServeMux) {
	token := s.cfg.Gateway.Token

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ws", s.handleWebSocket)

	mux.HandleFunc("GET /api/welcome", requireToken(token, s.handleWelcome))
	mux.HandleFunc("GET /api/tools", requireToken(token, s.handleTools))
	mux.HandleFunc("POST /api/chat", requireToken(token, s.handleChat))
	if s.invocations != nil {
		mux.HandleFunc("GET /api/history", requireToken(token, s.handleHistory))
	}

	// Catch-all for unknown routes
	mux.HandleFunc("/", handleNotFound)
}

// registerRPCHandlers sets up all WebSocket RPC method handlers.
func (s *Server) registerRPCHandlers() {
	s.Handle("health", s.rpcHealth)
	s.Handle("tools.list", s.rpcToolsList)
	s.Handle("chat.send", s.rpcChatSend)
	s.Handle("chat.reset", s.rpcChatReset)
	if s.invocations != nil {
		s.Handle("tools.history", s.rpcToolsHistory)
	}
}

// chatRequest is the body of POST /api/chat.
type chatRequest struct {
	Message string        `json:"message"`
	History []llm.Message `json:"history"`
}

// chatResponse is returned for a completed chat turn.
type chatResponse struct {
	Reply      string        `json:"reply"`
	History    []llm.Message `json:"history"`
	Model      string        `json:"model,omitempty"`
	ToolCalls  int           `json:"toolCalls"`
	DurationMS int64         `json:"durationMs"`
}

func newChatResponse(res *agent.TurnResult) chatResponse {
	hist := res.History
	if hist == nil {
		hist = []llm.Message{}
	}
	return chatResponse{
		Reply:      res.Reply,
		History:    hist,
		Model:      res.Model,
		ToolCalls:  res.ToolCalls,
		DurationMS: res.Duration.Milliseconds(),
	}
}

// toolInfo describes a tool to chat clients.
type toolInfo struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"inputSchema"`
}

func (s *Server) toolList() []toolInfo {
	out := []toolInfo{}
	if s.tools == nil {
		return out
	}
	for _, def := range s.tools.Definitions() {
		out = append(out, toolInfo{Name: def.Name, Description: def.Description, InputSchema: def.Parameters})
	}
	return out
}

// submit runs one chat turn with the per-turn timeout.
func (s *Server) submit(ctx context.Context, message string, history []llm.Message) (*agent.TurnResult, error) {
	if s.runner == nil {
		return nil, errNoAgent
	}
	ctx, cancel := context.WithTimeout(ctx, llmCallTimeout)
	defer cancel()
	return s.runner.SubmitTurn(ctx, message, history)
}

func parseLimit(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

func (s *Server) recentInvocations(ctx context.Context, tool string, limit int) ([]store.InvocationRecord, error) {
	recs, err := s.invocations.Recent(ctx, tool, limit)
	if recs == nil {
		recs = []store.InvocationRecord{}
	}
	return recs, err
}

// HTTP handlers

func (s *Server) handleWelcome(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": agent.WelcomeMessage})
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"tools": s.toolList()})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxChatBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	res, err := s.submit(r.Context(), req.Message, req.History)
	switch {
	case errors.Is(err, errNoAgent):
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		s.log.Error().Err(err).Msg("chat turn failed")
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, newChatResponse(res))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	recs, err := s.recentInvocations(r.Context(), q.Get("tool"), parseLimit(q.Get("limit")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"invocations": recs})
}

// RPC handlers

func (s *Server) rpcHealth(rc *RequestContext) {
	rc.Respond(HealthResponse{
		Status:  "ok",
		Version: s.version,
		Clients: s.clients.Count(),
		Agent:   s.runner != nil,
	})
}

func (s *Server) rpcToolsList(rc *RequestContext) {
	rc.Respond(map[string]any{"tools": s.toolList()})
}

type chatSendParams struct {
	Message string `json:"message"`
	// History overrides the connection's history when present.
	History *[]llm.Message `json:"history,omitempty"`
}

func (s *Server) rpcChatSend(rc *RequestContext) {
	var p chatSendParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError("invalid_params", err.Error())
		return
	}

	history := rc.Client.History()
	if p.History != nil {
		history = *p.History
	}

	res, err := s.submit(rc.Ctx, p.Message, history)
	switch {
	case errors.Is(err, errNoAgent):
		rc.RespondError("unavailable", err.Error())
		return
	case err != nil:
		rc.RespondError("agent_error", err.Error())
		return
	}

	rc.Client.SetHistory(res.History)
	if res.Reply != "" {
		if err := rc.Client.SendEvent("chat.reply", map[string]any{
			"requestId": rc.Frame.ID,
			"reply":     res.Reply,
		}, s.eventSeq.Add(1)); err != nil {
			s.log.Debug().Err(err).Msg("failed to send chat.reply event")
		}
	}
	rc.Respond(newChatResponse(res))
}

func (s *Server) rpcChatReset(rc *RequestContext) {
	rc.Client.SetHistory(nil)
	rc.Respond(map[string]any{"history": []llm.Message{}})
}

type toolsHistoryParams struct {
	Tool  string `json:"tool,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

func (s *Server) rpcToolsHistory(rc *RequestContext) {
	var p toolsHistoryParams
	if err := rc.Params(&p); err != nil {
		rc.RespondError("invalid_params", err.Error())
		return
	}
	recs, err := s.recentInvocations(rc.Ctx, p.Tool, p.Limit)
	if err != nil {
		rc.RespondError("store_error", err.Error())
		return
	}
	rc.Respond(map[string]any{"invocations": recs})
}
