package line

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientReply(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody []byte
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	c := NewClient("token-123")
	c.baseURL = ts.URL

	err := c.Reply(context.Background(), "tok-1", []OutMessage{{Type: "text", Text: "保存しました。"}})
	if err != nil {
		t.Fatalf("Reply: %v", err)
	}

	if gotPath != "/v2/bot/message/reply" {
		t.Errorf("path = %q", gotPath)
	}
	if gotAuth != "Bearer token-123" {
		t.Errorf("auth = %q", gotAuth)
	}

	var payload struct {
		ReplyToken string       `json:"replyToken"`
		Messages   []OutMessage `json:"messages"`
	}
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("unmarshal body: %v", err)
	}
	if payload.ReplyToken != "tok-1" || len(payload.Messages) != 1 {
		t.Errorf("payload = %+v", payload)
	}
}

func TestClientPushErrorStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"Invalid reply token"}`, http.StatusBadRequest)
	}))
	defer ts.Close()

	c := NewClient("token-123")
	c.baseURL = ts.URL

	if err := c.Push(context.Background(), "U1", []OutMessage{{Type: "text", Text: "x"}}); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}
