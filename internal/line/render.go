package line

import (
	"github.com/aknsr/linecap/internal/capture"
)

// maxQuickReplyItems is the LINE platform limit for quick-reply rows.
const maxQuickReplyItems = 13

// Render turns the state machine's abstract next-step descriptor into
// LINE messages.
func Render(reply *capture.Reply) []OutMessage {
	if reply == nil {
		return nil
	}

	var msgs []OutMessage
	if reply.Prompt == nil {
		return append(msgs, OutMessage{Type: "text", Text: reply.Text})
	}

	if reply.Text != "" && reply.Text != reply.Prompt.Title {
		msgs = append(msgs, OutMessage{Type: "text", Text: reply.Text})
	}

	text := reply.Prompt.Title
	if reply.Prompt.Body != "" {
		text += "\n" + reply.Prompt.Body
	}

	prompt := OutMessage{Type: "text", Text: text}
	if len(reply.Prompt.Actions) > 0 {
		qr := &QuickReply{}
		for _, act := range reply.Prompt.Actions {
			if len(qr.Items) == maxQuickReplyItems {
				break
			}
			qr.Items = append(qr.Items, QuickReplyItem{
				Type:   "action",
				Action: toOutAction(act),
			})
		}
		prompt.QuickReply = qr
	}
	return append(msgs, prompt)
}

func toOutAction(act capture.PromptAction) OutAction {
	if act.Data != "" {
		return OutAction{
			Type:        "postback",
			Label:       act.Label,
			Data:        act.Data,
			DisplayText: act.Label,
		}
	}
	// Collect-text actions send the field label back as a message; the
	// session's pending field decides how it is interpreted.
	return OutAction{
		Type:  "message",
		Label: act.Label,
		Text:  act.Field,
	}
}
