package line

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"sort"

	"github.com/aknsr/linecap/internal/capture"
)

// Replier sends reply messages for a webhook event.
type Replier interface {
	Reply(ctx context.Context, replyToken string, messages []OutMessage) error
}

// WebhookHandler receives LINE webhook deliveries, verifies them and
// feeds the events into the capture router.
type WebhookHandler struct {
	router        *capture.Router
	client        Replier
	channelSecret string
}

// NewWebhookHandler creates a webhook handler. An empty channelSecret
// disables signature verification (local development only).
func NewWebhookHandler(router *capture.Router, client Replier, channelSecret string) *WebhookHandler {
	return &WebhookHandler{router: router, client: client, channelSecret: channelSecret}
}

// ServeHTTP handles POST deliveries. LINE requires a fast 200 for every
// delivery; per-event processing failures are logged, never surfaced as
// HTTP errors.
func (h *WebhookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if h.channelSecret != "" {
		if !h.verifySignature(r.Header.Get("X-Line-Signature"), body) {
			http.Error(w, "invalid signature", http.StatusUnauthorized)
			return
		}
	}

	var payload webhookBody
	if err := json.Unmarshal(body, &payload); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}

	for _, ev := range payload.Events {
		h.handleEvent(r, ev)
	}
	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) handleEvent(r *http.Request, ev Event) {
	inbound, ok := toInbound(ev)
	if !ok {
		return
	}

	reply := h.router.Route(r.Context(), inbound)
	if reply == nil {
		return
	}

	msgs := Render(reply)
	if len(msgs) == 0 || ev.ReplyToken == "" {
		return
	}
	if err := h.client.Reply(r.Context(), ev.ReplyToken, msgs); err != nil {
		log.Printf("line: reply failed for %s: %v", inbound.Key, err)
	}
}

// toInbound converts a webhook event into the channel-neutral form,
// resolving mention metadata. Returns false for event types the bot
// does not process.
func toInbound(ev Event) (capture.InboundEvent, bool) {
	key := capture.Key{
		UserID:         ev.Source.UserID,
		ConversationID: ev.Source.ConversationID(),
	}
	if key.UserID == "" {
		return capture.InboundEvent{}, false
	}

	switch ev.Type {
	case "message":
		if ev.Message == nil || ev.Message.Type != "text" {
			return capture.InboundEvent{}, false
		}
		text, mentioned := resolveMention(ev.Message)
		return capture.InboundEvent{
			Kind:      capture.EventMessage,
			Key:       key,
			ActorID:   ev.Source.UserID,
			Text:      text,
			Mentioned: mentioned,
		}, true

	case "postback":
		if ev.Postback == nil {
			return capture.InboundEvent{}, false
		}
		return capture.InboundEvent{
			Kind:         capture.EventPostback,
			Key:          key,
			ActorID:      ev.Source.UserID,
			PostbackData: ev.Postback.Data,
		}, true
	}
	return capture.InboundEvent{}, false
}

// resolveMention reports whether a structured mention targets the bot
// and strips those mention spans from the text. Without mention
// metadata the router falls back to bot-name substring matching.
func resolveMention(msg *Message) (string, bool) {
	if msg.Mention == nil || len(msg.Mention.Mentionees) == 0 {
		return msg.Text, false
	}

	var selfSpans []Mentionee
	for _, m := range msg.Mention.Mentionees {
		if m.IsSelf {
			selfSpans = append(selfSpans, m)
		}
	}
	if len(selfSpans) == 0 {
		return msg.Text, false
	}

	// Remove spans back to front so earlier indexes stay valid.
	sort.Slice(selfSpans, func(i, j int) bool { return selfSpans[i].Index > selfSpans[j].Index })
	runes := []rune(msg.Text)
	for _, span := range selfSpans {
		start, end := span.Index, span.Index+span.Length
		if start < 0 || end > len(runes) || start > end {
			continue
		}
		runes = append(runes[:start], runes[end:]...)
	}
	return string(runes), true
}

// verifySignature checks the X-Line-Signature header: the base64 HMAC
// SHA-256 of the raw body under the channel secret.
func (h *WebhookHandler) verifySignature(signature string, body []byte) bool {
	if signature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.channelSecret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
