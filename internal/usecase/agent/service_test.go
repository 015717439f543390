package agent

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/kailas-cloud/gaiachat/internal/domain"
	"github.com/kailas-cloud/gaiachat/internal/domain/result"
	domsession "github.com/kailas-cloud/gaiachat/internal/domain/session"
	"github.com/kailas-cloud/gaiachat/internal/domain/star"
	"github.com/kailas-cloud/gaiachat/internal/usecase/catalog"
)

// --- mocks ---

type mockModel struct {
	replies  []Completion
	err      error
	requests []Request
}

func (m *mockModel) Complete(_ context.Context, req Request) (Completion, error) {
	m.requests = append(m.requests, req)
	if m.err != nil {
		return Completion{}, m.err
	}
	if len(m.replies) == 0 {
		return Completion{Content: "done"}, nil
	}
	c := m.replies[0]
	m.replies = m.replies[1:]
	return c, nil
}

type mockCatalog struct {
	res    result.Result
	err    error
	solar  []catalog.SolarParams
	cone   []catalog.ConeParams
	hvs    []catalog.HypervelocityParams
	stream []catalog.StreamParams
	halo   []catalog.HaloParams
	raw    []string
}

func (m *mockCatalog) SearchCone(_ context.Context, p catalog.ConeParams) (result.Result, error) {
	m.cone = append(m.cone, p)
	return m.res, m.err
}

func (m *mockCatalog) SearchSolarNeighborhood(_ context.Context, p catalog.SolarParams) (result.Result, error) {
	m.solar = append(m.solar, p)
	return m.res, m.err
}

func (m *mockCatalog) SearchHypervelocity(_ context.Context, p catalog.HypervelocityParams) (result.Result, error) {
	m.hvs = append(m.hvs, p)
	return m.res, m.err
}

func (m *mockCatalog) SearchStream(_ context.Context, p catalog.StreamParams) (result.Result, error) {
	m.stream = append(m.stream, p)
	return m.res, m.err
}

func (m *mockCatalog) SearchAccretedHalo(_ context.Context, p catalog.HaloParams) (result.Result, error) {
	m.halo = append(m.halo, p)
	return m.res, m.err
}

func (m *mockCatalog) ExecuteRaw(_ context.Context, q string) (result.Result, error) {
	m.raw = append(m.raw, q)
	return m.res, m.err
}

type mockSessions struct {
	sessions map[string]domsession.Session
	saves    int
}

func newMockSessions(ids ...string) *mockSessions {
	m := &mockSessions{sessions: map[string]domsession.Session{}}
	for _, id := range ids {
		m.sessions[id] = domsession.Session{ID: id}
	}
	return m
}

func (m *mockSessions) Get(_ context.Context, id string) (domsession.Session, error) {
	s, ok := m.sessions[id]
	if !ok {
		return domsession.Session{}, domain.ErrSessionNotFound
	}
	return s, nil
}

func (m *mockSessions) Save(_ context.Context, s domsession.Session) error {
	m.saves++
	m.sessions[s.ID] = s
	return nil
}

// --- helpers ---

func sampleResult(n int) result.Result {
	stars := make([]star.Star, n)
	for i := range stars {
		stars[i] = star.Star{SourceID: int64(i + 1), Parallax: star.Some(12)}
	}
	t := star.NewTable([]string{star.ColSourceID, star.ColParallax}, stars)
	return result.New(t, "SELECT TOP 10 source_id, parallax FROM gaiadr3.gaia_source", "Solar neighborhood within 100 pc")
}

func call(id, name, args string) domsession.ToolCall {
	return domsession.ToolCall{ID: id, Name: name, Arguments: args}
}

func toolPayload(t *testing.T, m domsession.Message) map[string]any {
	t.Helper()
	var p map[string]any
	if err := json.Unmarshal([]byte(m.Content), &p); err != nil {
		t.Fatalf("tool payload is not JSON: %v", err)
	}
	return p
}

func newService(t *testing.T, model ChatModel, cat Catalog, sess Sessions, calls *prometheus.CounterVec) *Service {
	t.Helper()
	svc, err := New(model, cat, sess, Config{}, calls)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc
}

// --- tests ---

func TestNewRegistry_RejectsDuplicates(t *testing.T) {
	tools := DefaultTools(&mockCatalog{})
	_, err := NewRegistry(append(tools, tools[0])...)
	if err == nil {
		t.Fatal("expected duplicate tool error")
	}
}

func TestDefaultTools_Names(t *testing.T) {
	reg, err := NewRegistry(DefaultTools(&mockCatalog{})...)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	want := []string{
		ToolSolarNeighborhood, ToolCone, ToolHypervelocity, ToolStream,
		ToolAccretedHalo, ToolCustomADQL, ToolVisualization,
	}
	specs := reg.Specs()
	if len(specs) != len(want) {
		t.Fatalf("tools = %d, want %d", len(specs), len(want))
	}
	for i, s := range specs {
		if s.Name != want[i] {
			t.Errorf("tool %d = %s, want %s", i, s.Name, want[i])
		}
		if s.Parameters["type"] != "object" {
			t.Errorf("%s parameters must be an object schema", s.Name)
		}
	}
}

func TestChat_NoToolCalls(t *testing.T) {
	model := &mockModel{replies: []Completion{{Content: "Hello, ask me about Gaia."}}}
	sessions := newMockSessions("s1")
	svc := newService(t, model, &mockCatalog{}, sessions, nil)

	resp, err := svc.Chat(context.Background(), "s1", "hi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Message != "Hello, ask me about Gaia." || resp.Result != nil {
		t.Errorf("response = %+v", resp)
	}
	if len(model.requests) != 1 {
		t.Fatalf("model calls = %d, want 1", len(model.requests))
	}
	req := model.requests[0]
	if req.Messages[0].Role != domsession.RoleSystem || len(req.Tools) != 7 {
		t.Errorf("first request must carry the system prompt and tools")
	}
	got := sessions.sessions["s1"].History
	if len(got) != 2 || got[0].Role != domsession.RoleUser || got[1].Role != domsession.RoleAssistant {
		t.Errorf("history = %+v", got)
	}
}

func TestChat_ToolRound(t *testing.T) {
	model := &mockModel{replies: []Completion{
		{ToolCalls: []domsession.ToolCall{
			call("c1", ToolSolarNeighborhood, `{"distance_pc": 50}`),
			call("c2", ToolVisualization, `{"plot_type": "hr_diagram"}`),
		}},
		{Content: "Found 3 nearby stars."},
	}}
	cat := &mockCatalog{res: sampleResult(3)}
	sessions := newMockSessions("s1")
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "tool_calls"}, []string{"tool", "status"})
	svc := newService(t, model, cat, sessions, calls)

	resp, err := svc.Chat(context.Background(), "s1", "stars within 50 pc, as an HR diagram")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Message != "Found 3 nearby stars." || resp.PlotType != "hr_diagram" {
		t.Errorf("response = %+v", resp)
	}
	if resp.Result == nil || resp.Result.RowCount() != 3 {
		t.Fatalf("result = %+v", resp.Result)
	}
	if !strings.HasPrefix(resp.Query, "SELECT TOP 10") {
		t.Errorf("query = %q", resp.Query)
	}
	if len(cat.solar) != 1 || cat.solar[0].DistancePc != 50 {
		t.Errorf("solar params = %+v", cat.solar)
	}

	if len(model.requests) != 2 {
		t.Fatalf("model calls = %d, want 2", len(model.requests))
	}
	if len(model.requests[1].Tools) != 0 {
		t.Error("follow-up request must not offer tools")
	}

	sess := sessions.sessions["s1"]
	// user, assistant(tool calls), tool, tool, assistant
	if len(sess.History) != 5 {
		t.Fatalf("history = %d messages", len(sess.History))
	}
	solar := toolPayload(t, sess.History[2])
	if solar["success"] != true || solar["row_count"] != float64(3) {
		t.Errorf("solar payload = %v", solar)
	}
	viz := toolPayload(t, sess.History[3])
	if viz["has_data"] != true {
		t.Errorf("visualization payload = %v", viz)
	}
	if sess.Last == nil || sess.Last.PlotType != "hr_diagram" || len(sess.Last.Stars) != 3 {
		t.Errorf("last snapshot = %+v", sess.Last)
	}
	if v := testutil.ToFloat64(calls.WithLabelValues(ToolSolarNeighborhood, "success")); v != 1 {
		t.Errorf("tool success count = %v", v)
	}
}

func TestChat_DefaultsApplied(t *testing.T) {
	model := &mockModel{replies: []Completion{
		{ToolCalls: []domsession.ToolCall{
			call("c1", ToolSolarNeighborhood, ``),
			call("c2", ToolHypervelocity, `{}`),
			call("c3", ToolCone, `{"ra": 10.5, "dec": -3}`),
		}},
	}}
	cat := &mockCatalog{res: sampleResult(1)}
	svc := newService(t, model, cat, newMockSessions("s1"), nil)

	if _, err := svc.Chat(context.Background(), "s1", "go"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cat.solar[0].DistancePc != catalog.DefaultSolarDistancePc {
		t.Errorf("solar distance = %v", cat.solar[0].DistancePc)
	}
	if cat.hvs[0].DistanceKpc != catalog.DefaultHVSDistanceKpc || cat.hvs[0].MinVelocityKms != catalog.DefaultHVSMinVelocity {
		t.Errorf("hypervelocity params = %+v", cat.hvs[0])
	}
	if cat.cone[0].RadiusDeg != catalog.DefaultConeRadiusDeg || cat.cone[0].RA != 10.5 {
		t.Errorf("cone params = %+v", cat.cone[0])
	}
}

func TestChat_ToolErrorsGoBackToModel(t *testing.T) {
	model := &mockModel{replies: []Completion{
		{ToolCalls: []domsession.ToolCall{
			call("c1", ToolStream, `{"stream_name": "Andromeda"}`),
			call("c2", "launch_rocket", `{}`),
			call("c3", ToolCone, `{"ra": 10}`),
			call("c4", ToolVisualization, `{"plot_type": "pie_chart"}`),
		}},
		{Content: "Andromeda is not a supported stream."},
	}}
	cat := &mockCatalog{err: &domain.UnknownPopulationError{
		Key: "Andromeda", Kind: "stream", Supported: []string{"Nyx", "GSE"},
	}}
	sessions := newMockSessions("s1")
	svc := newService(t, model, cat, sessions, nil)

	resp, err := svc.Chat(context.Background(), "s1", "Andromeda stream")
	if err != nil {
		t.Fatalf("tool failures must not fail the turn: %v", err)
	}
	if resp.Result != nil {
		t.Error("no result expected")
	}
	hist := sessions.sessions["s1"].History
	for i, want := range []string{"Unknown stream: Andromeda", "unknown tool: launch_rocket", "ra and dec are required", "pie_chart"} {
		p := toolPayload(t, hist[2+i])
		if p["success"] != false {
			t.Errorf("payload %d success = %v", i, p["success"])
		}
		if msg, _ := p["error"].(string); !strings.Contains(msg, want) {
			t.Errorf("payload %d error = %q, want it to contain %q", i, msg, want)
		}
	}
}

func TestChat_VisualizationOnlyUpdatesPriorResult(t *testing.T) {
	model := &mockModel{replies: []Completion{
		{ToolCalls: []domsession.ToolCall{call("c1", ToolVisualization, `{"plot_type": "sky_map"}`)}},
	}}
	sessions := newMockSessions()
	sessions.sessions["s1"] = domsession.Session{ID: "s1", Last: domsession.SnapshotOf(sampleResult(2), "")}
	svc := newService(t, model, &mockCatalog{}, sessions, nil)

	resp, err := svc.Chat(context.Background(), "s1", "plot it on the sky")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.PlotType != "sky_map" || resp.Result != nil {
		t.Errorf("response = %+v", resp)
	}
	last := sessions.sessions["s1"].Last
	if last == nil || last.PlotType != "sky_map" || len(last.Stars) != 2 {
		t.Errorf("last = %+v", last)
	}
}

func TestChat_ModelErrorDoesNotSave(t *testing.T) {
	model := &mockModel{err: domain.ErrLLMProviderError}
	sessions := newMockSessions("s1")
	svc := newService(t, model, &mockCatalog{}, sessions, nil)

	_, err := svc.Chat(context.Background(), "s1", "hi")
	if !errors.Is(err, domain.ErrLLMProviderError) {
		t.Fatalf("expected ErrLLMProviderError, got %v", err)
	}
	if sessions.saves != 0 {
		t.Error("session must not be saved on failure")
	}
}

func TestChat_UnknownSession(t *testing.T) {
	svc := newService(t, &mockModel{}, &mockCatalog{}, newMockSessions(), nil)
	_, err := svc.Chat(context.Background(), "missing", "hi")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	svc := newService(t, &mockModel{}, &mockCatalog{}, newMockSessions("s1"), nil)
	_, err := svc.Chat(context.Background(), "s1", "")
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestChat_HistoryWindow(t *testing.T) {
	sessions := newMockSessions()
	s := domsession.Session{ID: "s1"}
	for i := 0; i < 30; i++ {
		s.Append(domsession.Message{Role: domsession.RoleUser, Content: "old"})
	}
	sessions.sessions["s1"] = s
	model := &mockModel{replies: []Completion{
		{ToolCalls: []domsession.ToolCall{call("c1", ToolAccretedHalo, `{"retrograde_only": true}`)}},
		{Content: "ok"},
	}}
	cat := &mockCatalog{res: sampleResult(1)}
	svc := newService(t, model, cat, sessions, nil)

	if _, err := svc.Chat(context.Background(), "s1", "retrograde halo"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := len(model.requests[0].Messages); n != DefaultHistoryWindow+1 {
		t.Errorf("first call messages = %d, want %d", n, DefaultHistoryWindow+1)
	}
	if n := len(model.requests[1].Messages); n != DefaultFollowupWindow+1 {
		t.Errorf("follow-up messages = %d, want %d", n, DefaultFollowupWindow+1)
	}
	if !cat.halo[0].RetrogradeOnly {
		t.Error("retrograde_only not passed")
	}
}
