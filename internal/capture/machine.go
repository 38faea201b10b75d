package capture

import (
	"context"
	"log"

	"github.com/aknsr/linecap/internal/events"
)

// Extraction is the typed best-guess record produced by the field
// extraction backend for a free-text message.
type Extraction struct {
	Type       LogicalType
	Fields     map[string]Value
	Confidence float64
}

// Extractor interprets free text into a typed field set. Implementations
// must degrade rather than block: on backend failure they either return
// an error (no session is created) or a low-confidence memo fallback.
type Extractor interface {
	Extract(ctx context.Context, text string) (*Extraction, error)
}

// Saver persists finalized or partial records. Save is called at most
// once per session; every later persistence call for the session goes
// through Update with the id Save returned.
type Saver interface {
	Save(ctx context.Context, t LogicalType, fields map[string]Value, actorID string) (string, error)
	Update(ctx context.Context, id string, t LogicalType, fields map[string]Value, actorID string) error
}

// Engine is the session state machine. For every inbound event it
// decides the next prompt or action, reading and writing the session
// store and calling the extractor and saver as needed.
//
// Nothing here returns an error to the caller: every failure mode maps
// to a user-facing reply or a logged no-op, because the chat channel
// has no error-recovery UX beyond another message.
type Engine struct {
	store     *Store
	extractor Extractor
	saver     Saver
	hub       *events.Hub
}

// NewEngine creates a state machine over the given collaborators. hub
// may be nil when no live event feed is attached.
func NewEngine(store *Store, extractor Extractor, saver Saver, hub *events.Hub) *Engine {
	return &Engine{store: store, extractor: extractor, saver: saver, hub: hub}
}

// Store exposes the session store for gate checks by the router.
func (e *Engine) Store() *Store { return e.store }

// HandleText processes an inbound free-text message that passed the
// router's gate. text arrives with any bot-address token already
// stripped.
func (e *Engine) HandleText(ctx context.Context, key Key, actorID, text string) *Reply {
	sess := e.store.Get(key)

	// A pending field consumes the very next message verbatim, no
	// matter what it contains.
	if sess != nil && sess.PendingField != "" {
		field := sess.PendingField
		v := TextValue(text)
		e.store.WriteField(key, field, v)
		if sess = e.store.Get(key); sess == nil {
			return sessionGoneReply()
		}
		return fieldAckPrompt(sess, field, v)
	}

	// Menu sessions keep soliciting detail: run extraction and merge,
	// but never overwrite the type the user chose from the menu.
	if sess != nil && sess.IsMenuSession {
		res, err := e.extractor.Extract(ctx, text)
		if err != nil {
			log.Printf("capture: extraction failed for %s: %v", key, err)
			return textReply("うまく読み取れませんでした。もう一度入力してください。")
		}
		e.store.MergeFields(key, res.Fields)
		// The session may have expired or been ended while the
		// extraction call was in flight.
		if sess = e.store.Get(key); sess == nil {
			return sessionGoneReply()
		}
		return confirmationPrompt(sess)
	}

	// Fresh capture: classify the text and start (or restart) a
	// session. Extraction failure creates no session.
	res, err := e.extractor.Extract(ctx, text)
	if err != nil {
		log.Printf("capture: extraction failed for %s: %v", key, err)
		return textReply("うまく読み取れませんでした。もう一度入力してください。")
	}

	e.store.Create(key, res.Type, false)
	e.store.MergeFields(key, res.Fields)
	e.store.SetConfidence(key, res.Confidence)
	if sess = e.store.Get(key); sess == nil {
		return sessionGoneReply()
	}
	return confirmationPrompt(sess)
}

// HandlePostback processes a decoded button tap.
func (e *Engine) HandlePostback(ctx context.Context, key Key, actorID, data string) *Reply {
	act, err := DecodeAction(data)
	if err != nil {
		log.Printf("capture: malformed postback from %s: %v", key, err)
		return textReply("不明な操作です。")
	}

	switch act := act.(type) {
	case OpenMenu:
		return menuPrompt()

	case StartCapture:
		if sess := e.store.Get(key); sess != nil && sess.IsMenuSession {
			// Refining the type mid-flow keeps the gathered fields.
			e.store.ConvertToDataSession(key, act.Type)
			if sess = e.store.Get(key); sess != nil {
				return confirmationPrompt(sess)
			}
		}
		e.store.Create(key, act.Type, true)
		return &Reply{
			Text: act.Type.Label() + "の登録を始めます。内容を送信してください。",
		}

	case SavePartial:
		return e.save(ctx, key, actorID)

	case ModifyField:
		if e.store.Get(key) == nil {
			return sessionGoneReply()
		}
		e.store.SetPendingField(key, act.Field)
		return fieldInputPrompt(act.Field)

	case RequestReclassify:
		if e.store.Get(key) == nil {
			return sessionGoneReply()
		}
		return typeChooserPrompt()

	case SelectType:
		return e.reclassify(ctx, key, actorID, act.Type)

	case SelectAssignee:
		sess := e.store.Get(key)
		if sess == nil {
			return sessionGoneReply()
		}
		v := TextValue(act.UserID)
		e.store.WriteField(key, FieldAssignee, v)
		if sess = e.store.Get(key); sess == nil {
			return sessionGoneReply()
		}
		return fieldAckPrompt(sess, FieldAssignee, v)

	case EndSession:
		if e.store.End(key) == nil {
			return textReply("進行中のセッションはありません。")
		}
		return textReply("セッションを終了しました。")
	}

	log.Printf("capture: unhandled action %T from %s", act, key)
	return textReply("不明な操作です。")
}

// save persists the session's fields: a create on first save, an update
// against the same record on every save after that. On persistence
// failure the saved-state is left untouched so re-issuing save is safe.
func (e *Engine) save(ctx context.Context, key Key, actorID string) *Reply {
	sess := e.store.Get(key)
	if sess == nil {
		return sessionGoneReply()
	}

	if sess.SavedAlready {
		if err := e.saver.Update(ctx, sess.SavedRecordID, sess.Type, sess.Fields, actorID); err != nil {
			log.Printf("capture: update %s failed for %s: %v", sess.SavedRecordID, key, err)
			return textReply("保存に失敗しました。もう一度お試しください。")
		}
		e.publish(events.RecordUpdated, sess, actorID)
		return savedPrompt(sess, true)
	}

	id, err := e.saver.Save(ctx, sess.Type, sess.Fields, actorID)
	if err != nil {
		log.Printf("capture: save failed for %s: %v", key, err)
		return textReply("保存に失敗しました。もう一度お試しください。")
	}
	e.store.MarkSaved(key, id)
	// The session may have been ended or expired while the persistence
	// call was in flight. The record exists either way, so acknowledge
	// from the local snapshot rather than re-reading the store.
	sess.SavedAlready = true
	sess.SavedRecordID = id
	e.publish(events.RecordCreated, sess, actorID)
	return savedPrompt(sess, false)
}

// reclassify applies a type chosen from the chooser: menu sessions are
// converted in place, capture sessions are retyped, and an already
// persisted record is re-saved under the new type. Fields are never
// discarded.
func (e *Engine) reclassify(ctx context.Context, key Key, actorID string, t LogicalType) *Reply {
	sess := e.store.Get(key)
	if sess == nil {
		return sessionGoneReply()
	}

	if sess.IsMenuSession {
		e.store.ConvertToDataSession(key, t)
	} else {
		e.store.Reclassify(key, t)
	}

	if sess = e.store.Get(key); sess == nil {
		return sessionGoneReply()
	}
	if sess.SavedAlready {
		if err := e.saver.Update(ctx, sess.SavedRecordID, sess.Type, sess.Fields, actorID); err != nil {
			log.Printf("capture: update after reclassify failed for %s: %v", key, err)
			return textReply("種別は変更しましたが、保存の更新に失敗しました。")
		}
		e.publish(events.RecordUpdated, sess, actorID)
	}
	return confirmationPrompt(sess)
}

func (e *Engine) publish(kind events.Kind, sess *Session, actorID string) {
	if e.hub == nil || sess == nil {
		return
	}
	e.hub.Publish(events.Event{
		Kind:        kind,
		RecordID:    sess.SavedRecordID,
		LogicalType: string(sess.Type),
		ActorID:     actorID,
	})
}

// savedPrompt acknowledges a create or update and keeps the session
// open for further enrichment.
func savedPrompt(sess *Session, updated bool) *Reply {
	text := "保存しました。続けて編集できます。"
	if updated {
		text = "更新しました。続けて編集できます。"
	}
	return &Reply{
		Text: text,
		Prompt: &Prompt{
			Title: sess.Type.Label() + "を保存済み",
			Body:  sess.Summary(),
			Actions: []PromptAction{
				postbackAction("さらに追加", nextFieldAction(sess)),
				postbackAction("種別を変更", RequestReclassify{}),
				postbackAction("終了", EndSession{}),
			},
		},
	}
}
