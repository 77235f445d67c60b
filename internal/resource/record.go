package resource

import (
	"fmt"
	"strconv"
)

// Record is one instance of a resource as exchanged with the clinic API.
// A record with an empty id is a draft that has not been created yet.
type Record map[string]any

// ID returns the record identifier, or "" for drafts.
func (r Record) ID() string {
	return Stringify(r["id"])
}

// IsDraft reports whether the record has not been persisted yet.
func (r Record) IsDraft() bool {
	return r.ID() == ""
}

// String returns the named field rendered as text.
func (r Record) String(field string) string {
	return Stringify(r[field])
}

// Clone returns a deep copy so drafts can be edited without touching the
// collection they were taken from.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

// Items returns the named list field as records. Non-object entries are skipped.
func (r Record) Items(field string) []Record {
	raw, _ := r[field].([]any)
	items := make([]Record, 0, len(raw))
	for _, v := range raw {
		switch m := v.(type) {
		case map[string]any:
			items = append(items, Record(m))
		case Record:
			items = append(items, m)
		}
	}
	return items
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return map[string]any(Record(t).Clone())
	case Record:
		return t.Clone()
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Stringify renders a decoded JSON value as text. Whole numbers lose their
// fractional part so identifiers decoded as float64 print naturally.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
