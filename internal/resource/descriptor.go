package resource

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ConnectionError is shown when a request never produced an HTTP response.
const ConnectionError = "Error de conexión"

// DateLayout is the wire format of every date field.
const DateLayout = "2006-01-02"

type Kind int

const (
	Text Kind = iota
	Email
	Date
	Time
	Number
	Enum
	Reference
	Companion
	Items
)

// Field describes one attribute of a resource record.
type Field struct {
	Name  string
	Label string
	Kind  Kind
	// Options lists the allowed values. For an Enum the first is the default;
	// other kinds only validate against them.
	Options []string
	// Lookup names the lookup collection that feeds a Reference.
	Lookup string
	// Companion is the denormalized label field paired with a Reference.
	Companion string
	// DefaultToday pre-fills a Date with the current day in new drafts.
	DefaultToday bool
	// ItemFields describes the entries of an Items field.
	ItemFields []Field
}

// Column is one table column of the list view.
type Column struct {
	Field  string
	Header string
}

// Messages are the per-operation error strings of a resource page.
type Messages struct {
	Load   string
	Detail string
	Create string
	Update string
	Delete string
}

// Capability is a set of operations a resource page offers.
type Capability uint8

const (
	CapList Capability = 1 << iota
	CapView
	CapCreate
	CapUpdate
	CapDelete

	CapAll = CapList | CapView | CapCreate | CapUpdate | CapDelete
)

func (c Capability) Has(op Capability) bool {
	return c&op == op
}

// LookupSpec describes a read-only reference collection used by a form.
type LookupSpec struct {
	Name         string
	Resource     string
	LabelFields  []string
	ErrorMessage string
}

// Path is the collection URL path of the looked-up resource.
func (s LookupSpec) Path() string {
	return "/api/" + s.Resource
}

// Label joins the label fields of r with a space, skipping empty ones.
func (s LookupSpec) Label(r Record) string {
	parts := make([]string, 0, len(s.LabelFields))
	for _, f := range s.LabelFields {
		if v := strings.TrimSpace(r.String(f)); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// Descriptor is the declarative configuration of one resource page.
type Descriptor struct {
	Name         string
	Title        string
	Fields       []Field
	Columns      []Column
	Messages     Messages
	Capabilities Capability
	Lookups      []LookupSpec
}

// CollectionPath is the REST collection path, e.g. /api/pacientes.
func (d Descriptor) CollectionPath() string {
	return "/api/" + d.Name
}

// ItemPath is the REST path of one record.
func (d Descriptor) ItemPath(id string) string {
	return d.CollectionPath() + "/" + url.PathEscape(id)
}

// LookupSpec returns the lookup collection of this page with the given name.
func (d Descriptor) LookupSpec(name string) (LookupSpec, bool) {
	for _, s := range d.Lookups {
		if s.Name == name {
			return s, true
		}
	}
	return LookupSpec{}, false
}

func (d Descriptor) Field(name string) (Field, bool) {
	return findField(d.Fields, name)
}

func findField(fields []Field, name string) (Field, bool) {
	for _, f := range fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// ItemField returns the named field of an Items entry.
func (f Field) ItemField(name string) (Field, bool) {
	return findField(f.ItemFields, name)
}

// Blank builds the draft shown by the creation dialog.
func (d Descriptor) Blank(now time.Time) Record {
	r := blankOf(d.Fields, now)
	r["id"] = ""
	return r
}

// BlankItem builds an empty entry for the named Items field.
func (d Descriptor) BlankItem(field string, now time.Time) (Record, error) {
	f, ok := d.Field(field)
	if !ok || f.Kind != Items {
		return nil, fmt.Errorf("%s has no list field %q", d.Name, field)
	}
	return blankOf(f.ItemFields, now), nil
}

func blankOf(fields []Field, now time.Time) Record {
	r := make(Record, len(fields)+1)
	for _, f := range fields {
		r[f.Name] = f.zero(now)
	}
	return r
}

func (f Field) zero(now time.Time) any {
	switch f.Kind {
	case Number:
		return float64(0)
	case Enum:
		if len(f.Options) > 0 {
			return f.Options[0]
		}
		return ""
	case Items:
		return []any{}
	case Date:
		if f.DefaultToday {
			return now.UTC().Format(DateLayout)
		}
		return ""
	default:
		return ""
	}
}

// Parse converts user input into the value stored for the field.
func (f Field) Parse(raw string) (any, error) {
	switch f.Kind {
	case Number:
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %q is not a number", f.Name, raw)
		}
		return n, nil
	case Enum:
		return f.choose(raw)
	case Date:
		if raw == "" {
			return "", nil
		}
		if _, err := time.Parse(DateLayout, raw); err != nil {
			return nil, fmt.Errorf("%s: %q is not a YYYY-MM-DD date", f.Name, raw)
		}
		return raw, nil
	case Items:
		return nil, fmt.Errorf("%s: list fields are edited item by item", f.Name)
	default:
		if len(f.Options) > 0 && raw != "" {
			return f.choose(raw)
		}
		return raw, nil
	}
}

func (f Field) choose(raw string) (any, error) {
	for _, o := range f.Options {
		if strings.EqualFold(o, raw) {
			return o, nil
		}
	}
	return nil, fmt.Errorf("%s: %q is not one of %s", f.Name, raw, strings.Join(f.Options, ", "))
}

// FormatDate renders a wire date as dd/MM/yyyy for tables. Values that are
// not dates are returned unchanged.
func FormatDate(v string) string {
	if len(v) >= len(DateLayout) {
		if t, err := time.Parse(DateLayout, v[:len(DateLayout)]); err == nil {
			return t.Format("02/01/2006")
		}
	}
	return v
}
