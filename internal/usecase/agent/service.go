package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gaiachat/internal/domain"
	"github.com/kailas-cloud/gaiachat/internal/domain/result"
	domsession "github.com/kailas-cloud/gaiachat/internal/domain/session"
	"github.com/kailas-cloud/gaiachat/internal/logger"
)

// Default history windows for the tool-selection and follow-up calls.
const (
	DefaultHistoryWindow  = 10
	DefaultFollowupWindow = 15
)

// Config tunes the conversation windows. Zero values use the defaults.
type Config struct {
	HistoryWindow  int
	FollowupWindow int
}

// Response is the outcome of one chat turn.
type Response struct {
	Message  string
	Result   *result.Result
	PlotType string
	Query    string
}

// Service runs one chat turn: a tool-selection call, at most one round of
// tool execution, and a follow-up call that explains the results.
type Service struct {
	model     ChatModel
	sessions  Sessions
	tools     *Registry
	cfg       Config
	toolCalls *prometheus.CounterVec
}

// New creates a chat agent over the catalog tools. toolCalls counts tool
// executions by tool and status; it may be nil.
func New(
	model ChatModel, cat Catalog, sessions Sessions, cfg Config, toolCalls *prometheus.CounterVec,
) (*Service, error) {
	reg, err := NewRegistry(DefaultTools(cat)...)
	if err != nil {
		return nil, fmt.Errorf("register tools: %w", err)
	}
	if cfg.HistoryWindow <= 0 {
		cfg.HistoryWindow = DefaultHistoryWindow
	}
	if cfg.FollowupWindow <= 0 {
		cfg.FollowupWindow = DefaultFollowupWindow
	}
	return &Service{model: model, sessions: sessions, tools: reg, cfg: cfg, toolCalls: toolCalls}, nil
}

// Tools returns the registered tool specs.
func (s *Service) Tools() []ToolSpec { return s.tools.Specs() }

// Chat appends message to the session, lets the model pick tools, runs them
// and returns the final reply. The session is saved only when the turn completes.
func (s *Service) Chat(ctx context.Context, sessionID, message string) (Response, error) {
	if message == "" {
		return Response{}, domain.Invalidf("message must not be empty")
	}
	ctx = logger.With(ctx, zap.String("session_id", sessionID))
	sess, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return Response{}, err
	}

	sess.Append(domsession.Message{Role: domsession.RoleUser, Content: message})
	first, err := s.model.Complete(ctx, Request{
		Messages: withSystem(sess.Window(s.cfg.HistoryWindow)),
		Tools:    s.tools.Specs(),
	})
	if err != nil {
		return Response{}, fmt.Errorf("chat completion: %w", err)
	}

	t := &turn{prior: sess.Last}
	reply := first.Content
	if len(first.ToolCalls) > 0 {
		sess.Append(domsession.Message{
			Role:      domsession.RoleAssistant,
			Content:   first.Content,
			ToolCalls: first.ToolCalls,
		})
		for _, call := range first.ToolCalls {
			sess.Append(domsession.Message{
				Role:       domsession.RoleTool,
				Content:    s.runTool(ctx, call, t),
				ToolCallID: call.ID,
			})
		}

		followup, err := s.model.Complete(ctx, Request{
			Messages: withSystem(sess.Window(s.cfg.FollowupWindow)),
		})
		if err != nil {
			return Response{}, fmt.Errorf("follow-up completion: %w", err)
		}
		reply = followup.Content
	}

	sess.Append(domsession.Message{Role: domsession.RoleAssistant, Content: reply})
	resp := Response{Message: reply, PlotType: t.plotType, Result: t.last}
	switch {
	case t.last != nil:
		sess.Last = domsession.SnapshotOf(*t.last, t.plotType)
		resp.Query = t.last.Query()
	case t.plotType != "" && sess.Last != nil:
		sess.Last.PlotType = t.plotType
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return Response{}, err
	}
	return resp, nil
}

// runTool executes one call and returns the JSON payload for the model.
func (s *Service) runTool(ctx context.Context, call domsession.ToolCall, t *turn) string {
	ctx = logger.With(ctx, zap.String("tool", call.Name))
	payload, err := s.tools.execute(ctx, call, t)
	status := "success"
	if err != nil {
		status = "error"
		logger.FromContext(ctx).Warn("Tool call failed", zap.Error(err))
	}
	if s.toolCalls != nil {
		s.toolCalls.WithLabelValues(call.Name, status).Inc()
	}

	b, err := json.Marshal(payload)
	if err != nil {
		b, _ = json.Marshal(failure(fmt.Errorf("encode tool result: %w", err)))
	}
	return string(b)
}

func withSystem(history []domsession.Message) []domsession.Message {
	out := make([]domsession.Message, 0, len(history)+1)
	out = append(out, domsession.Message{Role: domsession.RoleSystem, Content: systemPrompt})
	return append(out, history...)
}
