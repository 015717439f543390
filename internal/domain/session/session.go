// Package session models a chat conversation and the last result it produced.
package session

import (
	"time"

	"github.com/kailas-cloud/gaiachat/internal/domain/result"
	"github.com/kailas-cloud/gaiachat/internal/domain/star"
)

// Message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// ToolCall is a function invocation requested by the assistant.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Message is one turn of the conversation. Assistant turns may carry tool
// calls; tool turns answer one call by ID.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// Snapshot is a stored copy of a query result.
type Snapshot struct {
	Query       string      `json:"query"`
	Description string      `json:"description"`
	Columns     []string    `json:"columns"`
	Stars       []star.Star `json:"stars"`
	PlotType    string      `json:"plot_type,omitempty"`
}

// SnapshotOf copies a result for storage.
func SnapshotOf(r result.Result, plotType string) *Snapshot {
	t := r.Table()
	return &Snapshot{
		Query:       r.Query(),
		Description: r.Description(),
		Columns:     t.Columns(),
		Stars:       t.Stars(),
		PlotType:    plotType,
	}
}

// Result rebuilds the stored result.
func (s *Snapshot) Result() result.Result {
	return result.New(star.NewTable(s.Columns, s.Stars), s.Query, s.Description)
}

// Session is a chat conversation with its most recent result.
type Session struct {
	ID        string    `json:"id"`
	History   []Message `json:"history"`
	Last      *Snapshot `json:"last,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Append adds messages to the history.
func (s *Session) Append(msgs ...Message) {
	s.History = append(s.History, msgs...)
}

// Window returns at most the last n messages. Tool replies at the start of the
// window are dropped because the assistant turn that requested them fell outside it.
func (s *Session) Window(n int) []Message {
	start := 0
	if n > 0 && len(s.History) > n {
		start = len(s.History) - n
	}
	for start < len(s.History) && s.History[start].Role == RoleTool {
		start++
	}
	return append([]Message(nil), s.History[start:]...)
}
