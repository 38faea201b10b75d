package capture

import (
	"context"
	"log"
	"strings"
)

// EventKind discriminates inbound webhook events.
type EventKind int

const (
	EventMessage EventKind = iota
	EventPostback
)

// InboundEvent is a channel-neutral inbound event, produced by the
// webhook layer after payload parsing and mention resolution.
type InboundEvent struct {
	Kind    EventKind
	Key     Key
	ActorID string

	// Message events.
	Text      string
	Mentioned bool // a structured mention span targeted the bot

	// Postback events.
	PostbackData string
}

// Router applies the processing gate to inbound events and dispatches
// the ones that pass into the state machine. Route returns nil when the
// event is silently dropped.
type Router struct {
	engine   *Engine
	botNames []string
}

// NewRouter creates a router. botNames are the fallback substrings that
// count as addressing the bot when no structured mention metadata is
// present.
func NewRouter(engine *Engine, botNames []string) *Router {
	return &Router{engine: engine, botNames: botNames}
}

// Route dispatches one inbound event.
func (r *Router) Route(ctx context.Context, ev InboundEvent) *Reply {
	if ev.Kind == EventPostback {
		// Postbacks originate from our own buttons; no addressing gate.
		return r.engine.HandlePostback(ctx, ev.Key, ev.ActorID, ev.PostbackData)
	}

	store := r.engine.Store()
	awaiting := store.IsAwaitingInput(ev.Key)
	sess := store.Get(ev.Key)
	menu := sess != nil && sess.IsMenuSession
	active := sess != nil
	addressed := ev.Mentioned || r.nameMatch(ev.Text)
	text := r.stripBotNames(ev.Text)
	builtin := builtinCommand(text)

	if !awaiting && !menu && !active && !addressed && builtin == "" {
		// Undirected chatter in a group: not for us.
		return nil
	}

	// A pending field always wins: the next message is the field's
	// value, even when it looks like a command.
	if awaiting {
		return r.engine.HandleText(ctx, ev.Key, ev.ActorID, strings.TrimSpace(text))
	}

	switch builtin {
	case "menu":
		return menuPrompt()
	case "help":
		return helpReply()
	}

	text = strings.TrimSpace(text)
	if text == "" {
		log.Printf("capture: empty message after mention strip from %s", ev.Key)
		return textReply("内容を入力してください。")
	}
	return r.engine.HandleText(ctx, ev.Key, ev.ActorID, text)
}

// nameMatch reports whether the text contains a bot name variant.
func (r *Router) nameMatch(text string) bool {
	for _, name := range r.botNames {
		if name != "" && strings.Contains(text, name) {
			return true
		}
	}
	return false
}

// stripBotNames removes bot-address tokens so they are not captured as
// field content.
func (r *Router) stripBotNames(text string) string {
	for _, name := range r.botNames {
		if name == "" {
			continue
		}
		text = strings.ReplaceAll(text, "@"+name, "")
		text = strings.ReplaceAll(text, name, "")
	}
	return text
}

// builtinCommand recognizes literal commands that work without
// addressing the bot. Exact match after trimming.
func builtinCommand(text string) string {
	switch strings.TrimSpace(strings.ToLower(text)) {
	case "menu", "メニュー":
		return "menu"
	case "help", "ヘルプ":
		return "help"
	}
	return ""
}

func helpReply() *Reply {
	return textReply("予定やタスクをそのまま送信すると自動で読み取ります。\n" +
		"「メニュー」で種別を選んで登録することもできます。\n" +
		"ボタンから保存・編集・種別変更ができます。")
}
