package capture

import (
	"fmt"
	"strings"
)

// Action is a decoded postback button tap. The wire format is a single
// underscore-delimited string with no escaping, so field keys and user
// ids are decoded positionally after matching the logical type against
// the closed type set (logical types themselves contain underscores).
type Action interface {
	// Encode renders the action to its postback wire string.
	Encode() string
}

// StartCapture begins a menu-driven capture of the given type.
type StartCapture struct {
	Type LogicalType
}

func (a StartCapture) Encode() string { return "start_capture_" + string(a.Type) }

// SavePartial persists the session's current fields. Further edits keep
// updating the same record.
type SavePartial struct {
	Type LogicalType
}

func (a SavePartial) Encode() string { return "save_partial_" + string(a.Type) }

// ModifyField asks the user to type a value for one field.
type ModifyField struct {
	Type  LogicalType
	Field string
}

func (a ModifyField) Encode() string {
	return fmt.Sprintf("modify_field_%s_%s", a.Type, a.Field)
}

// RequestReclassify shows the logical type chooser.
type RequestReclassify struct{}

func (RequestReclassify) Encode() string { return "change_classification" }

// SelectType applies a classification chosen from the type chooser.
type SelectType struct {
	Type LogicalType
}

func (a SelectType) Encode() string { return "select_type_" + string(a.Type) }

// SelectAssignee assigns a record to a user chosen from a member list.
type SelectAssignee struct {
	Type   LogicalType
	UserID string
}

func (a SelectAssignee) Encode() string {
	return fmt.Sprintf("select_assignee_%s_%s", a.Type, a.UserID)
}

// EndSession closes the capture session.
type EndSession struct{}

func (EndSession) Encode() string { return "end_session" }

// OpenMenu shows the top-level capture menu.
type OpenMenu struct{}

func (OpenMenu) Encode() string { return "open_menu" }

// ErrUnknownAction is returned when postback data matches no known
// action prefix.
var ErrUnknownAction = fmt.Errorf("unknown postback action")

// DecodeAction parses postback wire data into an Action.
func DecodeAction(data string) (Action, error) {
	switch data {
	case "change_classification":
		return RequestReclassify{}, nil
	case "end_session":
		return EndSession{}, nil
	case "open_menu":
		return OpenMenu{}, nil
	}

	if rest, ok := strings.CutPrefix(data, "start_capture_"); ok {
		t := LogicalType(rest)
		if !t.Valid() {
			return nil, fmt.Errorf("%w: bad type in %q", ErrUnknownAction, data)
		}
		return StartCapture{Type: t}, nil
	}
	if rest, ok := strings.CutPrefix(data, "save_partial_"); ok {
		t := LogicalType(rest)
		if !t.Valid() {
			return nil, fmt.Errorf("%w: bad type in %q", ErrUnknownAction, data)
		}
		return SavePartial{Type: t}, nil
	}
	if rest, ok := strings.CutPrefix(data, "select_type_"); ok {
		t := LogicalType(rest)
		if !t.Valid() {
			return nil, fmt.Errorf("%w: bad type in %q", ErrUnknownAction, data)
		}
		return SelectType{Type: t}, nil
	}
	if rest, ok := strings.CutPrefix(data, "modify_field_"); ok {
		t, param, err := splitTypeParam(rest)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAction, data)
		}
		return ModifyField{Type: t, Field: param}, nil
	}
	if rest, ok := strings.CutPrefix(data, "select_assignee_"); ok {
		t, param, err := splitTypeParam(rest)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownAction, data)
		}
		return SelectAssignee{Type: t, UserID: param}, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownAction, data)
}

// splitTypeParam splits "<type>_<param>" where type is matched against
// the closed LogicalType set (longest match first, since
// personal_schedule contains schedule as a suffix component).
func splitTypeParam(rest string) (LogicalType, string, error) {
	var best LogicalType
	for _, t := range AllTypes() {
		prefix := string(t) + "_"
		if strings.HasPrefix(rest, prefix) && len(t) > len(best) {
			best = t
		}
	}
	if best == "" {
		return "", "", fmt.Errorf("no logical type prefix in %q", rest)
	}
	param := rest[len(best)+1:]
	if param == "" {
		return "", "", fmt.Errorf("empty parameter in %q", rest)
	}
	return best, param, nil
}
