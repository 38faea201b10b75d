package capture

// Reply is the abstract next-step descriptor handed to the channel
// renderer: a plain acknowledgement, optionally with a structured
// prompt carrying labeled actions.
type Reply struct {
	Text   string
	Prompt *Prompt
}

// Prompt is a structured question shown with buttons.
type Prompt struct {
	Title   string
	Body    string
	Actions []PromptAction
}

// PromptAction is one labeled button. Exactly one of Data (fire this
// postback) or Field (send this text as the user's next message, which
// the pending field consumes like typed input) is set.
type PromptAction struct {
	Label string
	Data  string
	Field string
}

func postbackAction(label string, a Action) PromptAction {
	return PromptAction{Label: label, Data: a.Encode()}
}

func messageAction(text string) PromptAction {
	return PromptAction{Label: text, Field: text}
}

func textReply(text string) *Reply { return &Reply{Text: text} }

func sessionGoneReply() *Reply {
	return textReply("セッションが見つかりません。最初からやり直してください。")
}

// confirmationPrompt renders the classification confirmation panel for
// an active session: save, reclassify, per-field edit, end.
func confirmationPrompt(sess *Session) *Reply {
	actions := []PromptAction{
		postbackAction("保存する", SavePartial{Type: sess.Type}),
		postbackAction("種別を変更", RequestReclassify{}),
	}
	for _, f := range []string{FieldTitle, FieldDateTime, FieldLocation} {
		actions = append(actions, postbackAction(fieldLabel(f)+"を入力", ModifyField{Type: sess.Type, Field: f}))
	}
	actions = append(actions, postbackAction("終了", EndSession{}))

	return &Reply{
		Text: "内容を確認してください",
		Prompt: &Prompt{
			Title:   sess.Type.Label() + "として登録します",
			Body:    sess.Summary(),
			Actions: actions,
		},
	}
}

// menuPrompt lists every logical type as a capture entry point.
func menuPrompt() *Reply {
	var actions []PromptAction
	for _, t := range AllTypes() {
		actions = append(actions, postbackAction(t.Label(), StartCapture{Type: t}))
	}
	return &Reply{
		Text: "メニュー",
		Prompt: &Prompt{
			Title:   "何を登録しますか？",
			Actions: actions,
		},
	}
}

// typeChooserPrompt lists every logical type for reclassification.
func typeChooserPrompt() *Reply {
	var actions []PromptAction
	for _, t := range AllTypes() {
		actions = append(actions, postbackAction(t.Label(), SelectType{Type: t}))
	}
	return &Reply{
		Text: "種別を選択してください",
		Prompt: &Prompt{
			Title:   "正しい種別を選んでください",
			Actions: actions,
		},
	}
}

// fieldAckPrompt acknowledges a stored field value and offers to save
// or keep adding detail.
func fieldAckPrompt(sess *Session, field string, v Value) *Reply {
	return &Reply{
		Text: fieldLabel(field) + "を「" + v.String() + "」に設定しました",
		Prompt: &Prompt{
			Title: sess.Type.Label() + "の入力",
			Body:  sess.Summary(),
			Actions: []PromptAction{
				postbackAction("保存する", SavePartial{Type: sess.Type}),
				postbackAction("さらに追加", nextFieldAction(sess)),
				postbackAction("終了", EndSession{}),
			},
		},
	}
}

// fieldInputPrompt asks for a pending field's value. Fields with a
// small natural answer set get tappable suggestions; a tapped
// suggestion arrives as an ordinary text message and is consumed by the
// pending field like any other input.
func fieldInputPrompt(field string) *Reply {
	suggestions := fieldSuggestions(field)
	if len(suggestions) == 0 {
		return textReply(fieldLabel(field) + "を入力してください")
	}
	actions := make([]PromptAction, 0, len(suggestions))
	for _, s := range suggestions {
		actions = append(actions, messageAction(s))
	}
	return &Reply{
		Text: fieldLabel(field) + "を入力してください",
		Prompt: &Prompt{
			Title:   fieldLabel(field) + "を入力してください",
			Actions: actions,
		},
	}
}

func fieldSuggestions(field string) []string {
	switch field {
	case FieldPriority:
		return []string{"高", "中", "低"}
	case FieldDateTime:
		return []string{"今日", "明日", "明後日"}
	}
	return nil
}

// nextFieldAction suggests the first empty well-known field, falling
// back to the title when everything is filled.
func nextFieldAction(sess *Session) Action {
	for _, f := range fieldOrder {
		if _, ok := sess.Fields[f]; !ok {
			return ModifyField{Type: sess.Type, Field: f}
		}
	}
	return ModifyField{Type: sess.Type, Field: FieldTitle}
}
