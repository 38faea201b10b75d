package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/aknsr/linecap/internal/capture"
	"github.com/aknsr/linecap/internal/llm"
)

type fakeProvider struct {
	content string
	err     error
	lastReq llm.CompletionRequest
}

func (f *fakeProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Content: f.content}, nil
}

func (f *fakeProvider) Name() string { return "fake" }

func TestExtractTask(t *testing.T) {
	p := &fakeProvider{content: `{
		"type": "task",
		"title": "資料作成",
		"fields": {
			"datetime": "明日14時",
			"priority": "高",
			"assignee": "田中"
		},
		"confidence": 0.92
	}`}
	ex := New(p, "test-model")

	res, err := ex.Extract(context.Background(), "明日14時までに田中さんが資料作成、優先度高め")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}

	if res.Type != capture.TypeTask {
		t.Errorf("Type = %q, want task", res.Type)
	}
	if res.Confidence != 0.92 {
		t.Errorf("Confidence = %v, want 0.92", res.Confidence)
	}
	if got := res.Fields[capture.FieldTitle].Text; got != "資料作成" {
		t.Errorf("title = %q, want 資料作成", got)
	}
	if got := res.Fields[capture.FieldPriority]; got.Kind != capture.ValuePriority || got.Priority != capture.PriorityHigh {
		t.Errorf("priority = %+v, want high priority value", got)
	}
	if !p.lastReq.JSONMode {
		t.Error("completion request did not ask for JSON mode")
	}
}

func TestExtractToleratesMarkdownFence(t *testing.T) {
	p := &fakeProvider{content: "Here is the result:\n```json\n{\"type\":\"schedule\",\"title\":\"定例会議\",\"fields\":{},\"confidence\":0.8}\n```"}
	ex := New(p, "test-model")

	res, err := ex.Extract(context.Background(), "毎週の定例会議")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if res.Type != capture.TypeSchedule {
		t.Errorf("Type = %q, want schedule", res.Type)
	}
}

func TestExtractBackendErrorPropagates(t *testing.T) {
	p := &fakeProvider{err: errors.New("rate limited")}
	ex := New(p, "test-model")

	if _, err := ex.Extract(context.Background(), "なにか"); err == nil {
		t.Fatal("expected an error when the backend fails")
	}
}

func TestExtractGarbageFallsBackToMemo(t *testing.T) {
	cases := []string{
		"I could not classify that message, sorry.",
		`{"type":"grocery_list","title":"x","fields":{},"confidence":0.9}`,
		`{broken json`,
	}
	for _, content := range cases {
		ex := New(&fakeProvider{content: content}, "test-model")
		res, err := ex.Extract(context.Background(), "買い物メモ")
		if err != nil {
			t.Fatalf("Extract(%q): %v", content, err)
		}
		if res.Type != capture.TypeMemo {
			t.Errorf("content %q: Type = %q, want memo fallback", content, res.Type)
		}
		if res.Confidence != fallbackConfidence {
			t.Errorf("content %q: Confidence = %v, want %v", content, res.Confidence, fallbackConfidence)
		}
		if got := res.Fields[capture.FieldBody].Text; got != "買い物メモ" {
			t.Errorf("content %q: body = %q, want the original text", content, got)
		}
	}
}

func TestToValueVariants(t *testing.T) {
	if _, ok := toValue("location", ""); ok {
		t.Error("empty string should be dropped")
	}

	v, ok := toValue("attendees", []any{"田中", "佐藤"})
	if !ok || v.Kind != capture.ValueList || len(v.List) != 2 {
		t.Errorf("list value = %+v, want two items", v)
	}

	v, ok = toValue("count", float64(3))
	if !ok || v.Text != "3" {
		t.Errorf("number value = %+v, want text \"3\"", v)
	}

	v, ok = toValue(capture.FieldPriority, "low")
	if !ok || v.Priority != capture.PriorityLow {
		t.Errorf("priority value = %+v, want low", v)
	}

	// Unrecognized priority text stays as plain text.
	v, ok = toValue(capture.FieldPriority, "urgent-ish")
	if !ok || v.Kind != capture.ValueText {
		t.Errorf("unknown priority = %+v, want plain text", v)
	}

	if _, ok := toValue("nested", map[string]any{"a": 1}); ok {
		t.Error("object values should be dropped")
	}
}
