package records

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/aknsr/linecap/internal/capture"
)

// normalize maps a session's raw field values onto record columns.
// Unmapped keys land in the extras bag verbatim.
func normalize(t capture.LogicalType, fields map[string]capture.Value, actorID string, now time.Time) Record {
	rec := Record{
		LogicalType: string(t),
		Fields:      make(map[string]string),
	}

	for key, v := range fields {
		switch key {
		case capture.FieldTitle:
			rec.Title = v.String()
		case capture.FieldBody:
			rec.Body = v.String()
		case capture.FieldDateTime:
			if ts, ok := resolveTime(v, now); ok {
				rec.DueAt = &ts
			} else {
				// Unparseable datetimes are kept as raw text rather
				// than dropped.
				rec.Fields[key] = v.String()
			}
		case capture.FieldPriority:
			rec.Priority = resolvePriority(v)
		case capture.FieldAssignee:
			rec.Assignee = v.String()
		default:
			rec.Fields[key] = v.String()
		}
	}

	// Tasks without an explicit assignee belong to whoever captured
	// them.
	if rec.Assignee == "" && t == capture.TypeTask {
		rec.Assignee = actorID
	}
	return rec
}

func resolveTime(v capture.Value, now time.Time) (time.Time, bool) {
	if v.Kind == capture.ValueDateTime {
		return v.Time, true
	}
	return ParseDateTime(v.String(), now)
}

func resolvePriority(v capture.Value) string {
	if v.Kind == capture.ValuePriority {
		return string(v.Priority)
	}
	switch strings.ToLower(strings.TrimSpace(v.String())) {
	case "high", "高":
		return string(capture.PriorityHigh)
	case "medium", "中":
		return string(capture.PriorityMedium)
	case "low", "低":
		return string(capture.PriorityLow)
	}
	return strings.TrimSpace(v.String())
}

var absoluteLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006/01/02 15:04",
	"2006-01-02",
	"2006/01/02",
}

// 3月15日14時30分, 3月15日14時, 3月15日
var jpDateRe = regexp.MustCompile(`^(\d{1,2})月(\d{1,2})日(?:(\d{1,2})時(?:(\d{1,2})分)?)?$`)

// 明日14時, 今日9時30分, 明後日
var jpRelativeRe = regexp.MustCompile(`^(今日|明日|明後日)(?:(\d{1,2})時(?:(\d{1,2})分)?)?$`)

// ParseDateTime parses the free-text datetime formats users actually
// type: ISO-ish layouts plus common Japanese absolute and relative
// forms. Month/day dates without a year resolve to the next occurrence
// from now.
func ParseDateTime(s string, now time.Time) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range absoluteLayouts {
		if ts, err := time.ParseInLocation(layout, s, now.Location()); err == nil {
			return ts, true
		}
	}

	if m := jpDateRe.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		hour, min := atoiDefault(m[3]), atoiDefault(m[4])
		ts := time.Date(now.Year(), time.Month(month), day, hour, min, 0, 0, now.Location())
		if ts.Before(now) {
			ts = ts.AddDate(1, 0, 0)
		}
		return ts, true
	}

	if m := jpRelativeRe.FindStringSubmatch(s); m != nil {
		days := map[string]int{"今日": 0, "明日": 1, "明後日": 2}[m[1]]
		hour, min := atoiDefault(m[2]), atoiDefault(m[3])
		base := now.AddDate(0, 0, days)
		return time.Date(base.Year(), base.Month(), base.Day(), hour, min, 0, 0, now.Location()), true
	}

	return time.Time{}, false
}

func atoiDefault(s string) int {
	if s == "" {
		return 0
	}
	n, _ := strconv.Atoi(s)
	return n
}
