package dispatch

import (
	"context"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/descope-sample-apps/connected-agent-sub002/internal/storage"
	"github.com/descope-sample-apps/connected-agent-sub002/internal/tool"
	"go.uber.org/zap"
)

// fakeTool records how many times it executed and returns a canned result.
type fakeTool struct {
	desc     tool.Descriptor
	result   tool.Result
	panicMsg string
	executed int
}

func (f *fakeTool) Descriptor() tool.Descriptor { return f.desc }

func (f *fakeTool) Execute(_ context.Context, _ string, _ map[string]any) tool.Result {
	f.executed++
	if f.panicMsg != "" {
		panic(f.panicMsg)
	}
	return f.result
}

// memWriter collects events synchronously for assertions.
type memWriter struct {
	mu     sync.Mutex
	events []*storage.InvocationEvent
}

func (w *memWriter) Write(event *storage.InvocationEvent) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = append(w.events, event)
}

func (w *memWriter) Close() {}

func (w *memWriter) last(t *testing.T) *storage.InvocationEvent {
	t.Helper()
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.events) == 0 {
		t.Fatal("no events recorded")
	}
	return w.events[len(w.events)-1]
}

func newTestDispatcher(t *testing.T, tools ...tool.Tool) (*Dispatcher, *memWriter) {
	t.Helper()
	registry := tool.NewRegistry()
	registry.MustRegister(tools...)
	writer := &memWriter{}
	return New(registry, writer, zap.NewNop()), writer
}

func TestDispatch_UnknownTool(t *testing.T) {
	ft := &fakeTool{desc: tool.Descriptor{Name: "crm_deal_lookup"}}
	d, writer := newTestDispatcher(t, ft)

	res := d.Dispatch(context.Background(), Invocation{ToolName: "nonexistent", UserID: "u1"})

	if res.Kind != tool.KindFailure || res.ErrKind != tool.ErrUnknownTool {
		t.Fatalf("expected unknown_tool failure, got %+v", res)
	}
	if !strings.Contains(res.Message, "nonexistent") {
		t.Fatalf("message %q does not name the missing tool", res.Message)
	}
	if ft.executed != 0 {
		t.Fatal("no registered tool may run on a registry miss")
	}
	if ev := writer.last(t); ev.Outcome != "failure" || ev.ErrorKind != "unknown_tool" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestDispatch_InvalidArguments_NeverExecutes(t *testing.T) {
	ft := &fakeTool{
		desc: tool.Descriptor{
			Name: "crm_deal_lookup",
			Parameters: map[string]any{
				"type":     "object",
				"required": []string{"deal_id"},
				"properties": map[string]any{
					"deal_id": map[string]any{"type": "string"},
				},
			},
		},
		result: tool.Succeed(nil),
	}
	d, _ := newTestDispatcher(t, ft)

	inv := Invocation{ToolName: "crm_deal_lookup", UserID: "u1", Args: map[string]any{}}

	// Identical invalid input rejects identically, and the tool body
	// (and therefore the network) is never touched.
	first := d.Dispatch(context.Background(), inv)
	second := d.Dispatch(context.Background(), inv)

	for _, res := range []tool.Result{first, second} {
		if res.Kind != tool.KindFailure || res.ErrKind != tool.ErrInvalidArguments {
			t.Fatalf("expected invalid_arguments, got %+v", res)
		}
	}
	if first.Message != second.Message {
		t.Fatalf("validation not deterministic: %q vs %q", first.Message, second.Message)
	}
	if ft.executed != 0 {
		t.Fatalf("tool executed %d times on invalid args", ft.executed)
	}
}

func TestDispatch_PanicBecomesToolCrashed(t *testing.T) {
	ft := &fakeTool{
		desc:     tool.Descriptor{Name: "weather_current"},
		panicMsg: "nil map write",
	}
	d, writer := newTestDispatcher(t, ft)

	res := d.Dispatch(context.Background(), Invocation{ToolName: "weather_current", UserID: "u1"})

	if res.Kind != tool.KindFailure || res.ErrKind != tool.ErrToolCrashed {
		t.Fatalf("expected tool_crashed, got %+v", res)
	}
	if !strings.Contains(res.Message, "nil map write") {
		t.Fatalf("message %q does not carry the panic value", res.Message)
	}
	if ev := writer.last(t); ev.ErrorKind != "tool_crashed" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestDispatch_ConnectionRequiredPassesThroughVerbatim(t *testing.T) {
	sig := tool.ConnectionSignal{
		Provider:      "custom-crm",
		MissingScopes: []string{"deals:read"},
		Message:       "Connect your CRM account to look up deals.",
		Action:        "connect://custom-crm?scopes=deals%3Aread",
	}
	ft := &fakeTool{
		desc:   tool.Descriptor{Name: "crm_deal_lookup"},
		result: tool.NeedConnection(sig),
	}
	d, writer := newTestDispatcher(t, ft)

	res := d.Dispatch(context.Background(), Invocation{ToolName: "crm_deal_lookup", UserID: "u1"})

	if res.Kind != tool.KindConnectionRequired || res.Signal == nil {
		t.Fatalf("expected connection_required, got %+v", res)
	}
	if !reflect.DeepEqual(*res.Signal, sig) {
		t.Fatalf("signal altered in transit: %+v", res.Signal)
	}

	ev := writer.last(t)
	if ev.Outcome != "connection_required" || ev.Provider != "custom-crm" {
		t.Fatalf("unexpected event: %+v", ev)
	}
}

func TestDispatch_SuccessAndEventAttribution(t *testing.T) {
	ft := &fakeTool{
		desc:   tool.Descriptor{Name: "parse_date"},
		result: tool.Succeed(map[string]any{"date": "2026-08-26"}),
	}
	d, writer := newTestDispatcher(t, ft)

	res := d.Dispatch(context.Background(), Invocation{
		ToolName:      "parse_date",
		UserID:        "u1",
		CorrelationID: "corr-1",
		Workflow:      "schedule_followup",
		Step:          "parse_date",
	})

	if !res.OK() {
		t.Fatalf("expected success, got %+v", res)
	}
	ev := writer.last(t)
	if ev.Source != "workflow" || ev.WorkflowName != "schedule_followup" || ev.CorrelationID != "corr-1" {
		t.Fatalf("unexpected attribution: %+v", ev)
	}
}

func TestDispatch_GeneratesCorrelationID(t *testing.T) {
	ft := &fakeTool{desc: tool.Descriptor{Name: "parse_date"}, result: tool.Succeed(nil)}
	d, writer := newTestDispatcher(t, ft)

	d.Dispatch(context.Background(), Invocation{ToolName: "parse_date", UserID: "u1"})

	if ev := writer.last(t); ev.CorrelationID == "" {
		t.Fatal("expected a generated correlation id")
	}
	if ev := writer.last(t); ev.Source != "dispatch" {
		t.Fatalf("direct dispatch source = %q", ev.Source)
	}
}

func TestDispatch_NilWriterIsSafe(t *testing.T) {
	registry := tool.NewRegistry()
	registry.MustRegister(&fakeTool{desc: tool.Descriptor{Name: "parse_date"}, result: tool.Succeed(nil)})
	d := New(registry, nil, zap.NewNop())

	if res := d.Dispatch(context.Background(), Invocation{ToolName: "parse_date", UserID: "u1"}); !res.OK() {
		t.Fatalf("expected success, got %+v", res)
	}
}
