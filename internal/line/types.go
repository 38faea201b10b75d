// Package line is the LINE Messaging API boundary: webhook parsing and
// signature verification inbound, reply/push messages outbound.
package line

// webhookBody is the top-level webhook payload.
type webhookBody struct {
	Destination string  `json:"destination"`
	Events      []Event `json:"events"`
}

// Event is one webhook event. Only message and postback events are
// processed; everything else is acknowledged and dropped.
type Event struct {
	Type       string    `json:"type"`
	ReplyToken string    `json:"replyToken"`
	Timestamp  int64     `json:"timestamp"`
	Source     Source    `json:"source"`
	Message    *Message  `json:"message,omitempty"`
	Postback   *Postback `json:"postback,omitempty"`
}

// Source identifies the sender and the chat the event came from.
type Source struct {
	Type    string `json:"type"` // user, group, room
	UserID  string `json:"userId"`
	GroupID string `json:"groupId,omitempty"`
	RoomID  string `json:"roomId,omitempty"`
}

// ConversationID returns the group or room id, or empty for a direct
// chat.
func (s Source) ConversationID() string {
	if s.GroupID != "" {
		return s.GroupID
	}
	return s.RoomID
}

// Message is an inbound message event body.
type Message struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"` // only "text" is processed
	Text    string   `json:"text"`
	Mention *Mention `json:"mention,omitempty"`
}

// Mention carries structured mention spans within the message text.
type Mention struct {
	Mentionees []Mentionee `json:"mentionees"`
}

// Mentionee is one mention span. IsSelf marks a mention of the bot.
type Mentionee struct {
	Index  int    `json:"index"`
	Length int    `json:"length"`
	UserID string `json:"userId,omitempty"`
	Type   string `json:"type,omitempty"`
	IsSelf bool   `json:"isSelf,omitempty"`
}

// Postback is a button-tap event body carrying encoded action data.
type Postback struct {
	Data string `json:"data"`
}

// OutMessage is an outbound message. Only text messages (optionally
// with quick-reply buttons) are produced.
type OutMessage struct {
	Type       string      `json:"type"`
	Text       string      `json:"text"`
	QuickReply *QuickReply `json:"quickReply,omitempty"`
}

// QuickReply is a row of buttons under a message.
type QuickReply struct {
	Items []QuickReplyItem `json:"items"`
}

// QuickReplyItem is one button.
type QuickReplyItem struct {
	Type   string    `json:"type"` // always "action"
	Action OutAction `json:"action"`
}

// OutAction is the action fired when a button is tapped: a postback
// carrying encoded data, or a message action that sends literal text.
type OutAction struct {
	Type        string `json:"type"` // postback, message
	Label       string `json:"label"`
	Data        string `json:"data,omitempty"`
	DisplayText string `json:"displayText,omitempty"`
	Text        string `json:"text,omitempty"`
}
