// Package extract interprets free-form chat text into a typed field
// set using an LLM backend.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aknsr/linecap/internal/capture"
	"github.com/aknsr/linecap/internal/llm"
)

// fallbackConfidence is assigned when the backend fails or returns an
// unusable classification and the text is kept as a plain memo.
const fallbackConfidence = 0.2

// LLMExtractor implements capture.Extractor on top of an llm.Provider.
type LLMExtractor struct {
	provider llm.Provider
	model    string
}

// New creates an extractor using the given provider and model.
func New(provider llm.Provider, model string) *LLMExtractor {
	return &LLMExtractor{provider: provider, model: model}
}

// extractionResponse is the JSON shape the model is asked to produce.
type extractionResponse struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Fields     map[string]any `json:"fields"`
	Confidence float64        `json:"confidence"`
}

// Extract classifies text and pulls out field values. The backend
// failing or answering garbage degrades to a low-confidence memo
// instead of an error so the capture flow never blocks on the model.
func (e *LLMExtractor) Extract(ctx context.Context, text string) (*capture.Extraction, error) {
	resp, err := e.provider.Complete(ctx, llm.CompletionRequest{
		Model: e.model,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: systemPrompt},
			{Role: llm.RoleUser, Content: text},
		},
		MaxTokens:   1024,
		Temperature: 0.1,
		JSONMode:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("extraction completion: %w", err)
	}

	parsed, err := parseResponse(resp.Content)
	if err != nil {
		return memoFallback(text), nil
	}

	t := capture.LogicalType(parsed.Type)
	if !t.Valid() {
		return memoFallback(text), nil
	}

	fields := make(map[string]capture.Value)
	if parsed.Title != "" {
		fields[capture.FieldTitle] = capture.TextValue(parsed.Title)
	}
	for k, raw := range parsed.Fields {
		if v, ok := toValue(k, raw); ok {
			fields[k] = v
		}
	}

	return &capture.Extraction{
		Type:       t,
		Fields:     fields,
		Confidence: parsed.Confidence,
	}, nil
}

// parseResponse locates and decodes the JSON object in the model
// output, tolerating markdown fences and leading prose.
func parseResponse(content string) (*extractionResponse, error) {
	jsonStr := content
	if idx := strings.Index(jsonStr, "{"); idx >= 0 {
		jsonStr = jsonStr[idx:]
	}
	if idx := strings.LastIndex(jsonStr, "}"); idx >= 0 {
		jsonStr = jsonStr[:idx+1]
	}

	var parsed extractionResponse
	if err := json.Unmarshal([]byte(jsonStr), &parsed); err != nil {
		return nil, fmt.Errorf("parsing extraction response: %w", err)
	}
	return &parsed, nil
}

// toValue maps a decoded JSON field value onto the capture value
// variant. Unknown keys are kept; unusable values are dropped.
func toValue(key string, raw any) (capture.Value, bool) {
	switch v := raw.(type) {
	case string:
		if v == "" {
			return capture.Value{}, false
		}
		if key == capture.FieldPriority {
			if p, ok := toPriority(v); ok {
				return capture.PriorityValue(p), true
			}
		}
		return capture.TextValue(v), true
	case []any:
		var items []string
		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				items = append(items, s)
			}
		}
		if len(items) == 0 {
			return capture.Value{}, false
		}
		return capture.ListValue(items), true
	case float64:
		return capture.TextValue(strings.TrimSuffix(fmt.Sprintf("%v", v), ".0")), true
	}
	return capture.Value{}, false
}

func toPriority(s string) (capture.Priority, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high", "高":
		return capture.PriorityHigh, true
	case "medium", "中":
		return capture.PriorityMedium, true
	case "low", "低":
		return capture.PriorityLow, true
	}
	return "", false
}

// memoFallback keeps the user's text as an unclassified memo.
func memoFallback(text string) *capture.Extraction {
	return &capture.Extraction{
		Type: capture.TypeMemo,
		Fields: map[string]capture.Value{
			capture.FieldBody: capture.TextValue(text),
		},
		Confidence: fallbackConfidence,
	}
}

const systemPrompt = `あなたはチャットメッセージから業務データを抽出するエンジンです。
入力された日本語または英語のメッセージを分類し、必ず次のJSONだけを返してください:
{
  "type": "personal_schedule|schedule|task|project|contact|appointment|memo",
  "title": "短いタイトル",
  "fields": {
    "datetime": "日時があれば（例: 2025-04-01 14:00 や 明日14時）",
    "location": "場所があれば",
    "priority": "high|medium|low（明示されていれば）",
    "assignee": "担当者があれば",
    "body": "本文・詳細"
  },
  "confidence": 0.0から1.0の分類確度
}

ルール:
- 分類に迷う場合は memo を選び confidence を下げる
- 共有の予定は schedule、自分だけの予定は personal_schedule
- 値が読み取れないフィールドは省略する
- JSON以外の文字を出力しない`
