package capture

import (
	"fmt"
	"time"
)

// LogicalType identifies the kind of record a session is capturing.
// The set is closed: it drives both which fields are relevant and which
// persistence call is made when the session is saved.
type LogicalType string

const (
	TypePersonalSchedule LogicalType = "personal_schedule"
	TypeSchedule         LogicalType = "schedule"
	TypeTask             LogicalType = "task"
	TypeProject          LogicalType = "project"
	TypeContact          LogicalType = "contact"
	TypeAppointment      LogicalType = "appointment"
	TypeMemo             LogicalType = "memo"
)

// AllTypes returns every logical type in menu display order.
func AllTypes() []LogicalType {
	return []LogicalType{
		TypeTask,
		TypeSchedule,
		TypePersonalSchedule,
		TypeAppointment,
		TypeProject,
		TypeContact,
		TypeMemo,
	}
}

// Valid reports whether t is a member of the closed type set.
func (t LogicalType) Valid() bool {
	switch t {
	case TypePersonalSchedule, TypeSchedule, TypeTask, TypeProject,
		TypeContact, TypeAppointment, TypeMemo:
		return true
	}
	return false
}

// Label returns the user-facing Japanese label for the type.
func (t LogicalType) Label() string {
	switch t {
	case TypePersonalSchedule:
		return "個人予定"
	case TypeSchedule:
		return "予定"
	case TypeTask:
		return "タスク"
	case TypeProject:
		return "案件"
	case TypeContact:
		return "連絡先"
	case TypeAppointment:
		return "アポイント"
	case TypeMemo:
		return "メモ"
	}
	return string(t)
}

// Key identifies a capture session: one end user within one
// conversation. ConversationID is empty for a direct chat.
type Key struct {
	UserID         string
	ConversationID string
}

func (k Key) String() string {
	if k.ConversationID == "" {
		return k.UserID
	}
	return k.UserID + "@" + k.ConversationID
}

// ValueKind discriminates the closed Value variant.
type ValueKind int

const (
	ValueText ValueKind = iota
	ValueDateTime
	ValuePriority
	ValueList
)

// Priority is the enum variant carried by ValuePriority values.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Value is a field value. Fields captured from raw chat text are stored
// as ValueText verbatim; the extractor may produce the richer kinds.
// Downstream persistence mapping switches exhaustively on Kind.
type Value struct {
	Kind     ValueKind
	Text     string
	Time     time.Time
	Priority Priority
	List     []string
}

// TextValue wraps raw text as a Value.
func TextValue(s string) Value { return Value{Kind: ValueText, Text: s} }

// TimeValue wraps a parsed timestamp as a Value.
func TimeValue(t time.Time) Value { return Value{Kind: ValueDateTime, Time: t} }

// PriorityValue wraps a priority as a Value.
func PriorityValue(p Priority) Value { return Value{Kind: ValuePriority, Priority: p} }

// ListValue wraps a string list as a Value.
func ListValue(items []string) Value { return Value{Kind: ValueList, List: items} }

// String renders the value for user-facing acknowledgements.
func (v Value) String() string {
	switch v.Kind {
	case ValueDateTime:
		return v.Time.Format("2006-01-02 15:04")
	case ValuePriority:
		return string(v.Priority)
	case ValueList:
		out := ""
		for i, item := range v.List {
			if i > 0 {
				out += ", "
			}
			out += item
		}
		return out
	}
	return v.Text
}

// Session is an in-progress structured-data capture for one key.
type Session struct {
	Key            Key
	Type           LogicalType
	Fields         map[string]Value
	PendingField   string
	IsMenuSession  bool
	SavedRecordID  string
	SavedAlready   bool
	Confidence     float64
	CreatedAt      time.Time
	LastActivityAt time.Time
}

// copySession returns a snapshot of s so that callers never observe a
// session mutated by a concurrent event for the same key.
func copySession(s *Session) *Session {
	out := *s
	out.Fields = make(map[string]Value, len(s.Fields))
	for k, v := range s.Fields {
		out.Fields[k] = v
	}
	return &out
}

// Summary renders the accumulated fields for confirmation prompts.
func (s *Session) Summary() string {
	out := fmt.Sprintf("種別: %s", s.Type.Label())
	for _, k := range fieldOrder {
		if v, ok := s.Fields[k]; ok {
			out += fmt.Sprintf("\n%s: %s", fieldLabel(k), v.String())
		}
	}
	for k, v := range s.Fields {
		if !wellKnownField(k) {
			out += fmt.Sprintf("\n%s: %s", k, v.String())
		}
	}
	return out
}

// Well-known field keys. The field set is open: unknown keys are stored
// and rendered as-is.
const (
	FieldTitle    = "title"
	FieldDateTime = "datetime"
	FieldLocation = "location"
	FieldPriority = "priority"
	FieldAssignee = "assignee"
	FieldBody     = "body"
)

var fieldOrder = []string{FieldTitle, FieldDateTime, FieldLocation, FieldPriority, FieldAssignee, FieldBody}

func wellKnownField(k string) bool {
	for _, f := range fieldOrder {
		if f == k {
			return true
		}
	}
	return false
}

func fieldLabel(k string) string {
	switch k {
	case FieldTitle:
		return "タイトル"
	case FieldDateTime:
		return "日時"
	case FieldLocation:
		return "場所"
	case FieldPriority:
		return "優先度"
	case FieldAssignee:
		return "担当者"
	case FieldBody:
		return "内容"
	}
	return k
}
