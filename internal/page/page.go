// Package page assembles a resource page: one controller for the resource
// itself plus the lookup collections its form pickers need.
package page

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/clinica/dashboard/internal/controller"
	"github.com/clinica/dashboard/internal/lookup"
	"github.com/clinica/dashboard/internal/resource"
)

var ErrUnknownField = errors.New("unknown field")

type config struct {
	logger   zerolog.Logger
	now      func() time.Time
	ctrlOpts []controller.Option
}

type Option func(*config)

func WithLogger(l zerolog.Logger) Option {
	return func(c *config) { c.logger = l }
}

func WithClock(now func() time.Time) Option {
	return func(c *config) { c.now = now }
}

func WithNavigator(n controller.Navigator) Option {
	return func(c *config) { c.ctrlOpts = append(c.ctrlOpts, controller.WithNavigator(n)) }
}

func WithLoginPath(path string) Option {
	return func(c *config) { c.ctrlOpts = append(c.ctrlOpts, controller.WithLoginPath(path)) }
}

type Page struct {
	Desc       resource.Descriptor
	Controller *controller.Controller
	Lookups    *lookup.Resolver

	client controller.Client
	now    func() time.Time
}

func New(desc resource.Descriptor, client controller.Client, opts ...Option) *Page {
	cfg := config{logger: zerolog.Nop(), now: time.Now}
	for _, o := range opts {
		o(&cfg)
	}
	ctrlOpts := append([]controller.Option{
		controller.WithLogger(cfg.logger),
		controller.WithClock(cfg.now),
	}, cfg.ctrlOpts...)

	return &Page{
		Desc:       desc,
		Controller: controller.New(desc, client, ctrlOpts...),
		Lookups:    lookup.NewResolver(client, cfg.logger.With().Str("page", desc.Name).Logger()),
		client:     client,
		now:        cfg.now,
	}
}

// Mount initializes the controller and loads the lookups concurrently. Lookup
// failures only show in Error; the returned error is the controller's. With
// no session nothing is requested at all.
func (p *Page) Mount(ctx context.Context) error {
	if !p.client.HasSession() {
		return p.Controller.Initialize(ctx)
	}

	var ctrlErr error
	var wg conc.WaitGroup
	wg.Go(func() {
		ctrlErr = p.Controller.Initialize(ctx)
	})
	wg.Go(func() {
		_ = p.Lookups.LoadAll(ctx, p.Desc.Lookups...)
	})
	wg.Wait()
	return ctrlErr
}

// Error is the message the page shows: the controller's error slot, or else
// the latest lookup failure.
func (p *Page) Error() string {
	if msg := p.Controller.Err(); msg != "" {
		return msg
	}
	return p.Lookups.Err()
}

// SelectReference sets a foreign key of the draft and its companion label.
func (p *Page) SelectReference(field, id string) error {
	f, ok := p.Desc.Field(field)
	if !ok {
		return fmt.Errorf("%s: %w %q", p.Desc.Name, ErrUnknownField, field)
	}
	if f.Kind != resource.Reference {
		return fmt.Errorf("%s.%s is not a reference", p.Desc.Name, field)
	}
	label, _ := p.Lookups.Label(f.Lookup, id)
	return p.Controller.UpdateDraft(func(r resource.Record) {
		r[f.Name] = id
		if f.Companion != "" {
			r[f.Companion] = label
		}
	})
}

func (p *Page) itemsField(field string) (resource.Field, error) {
	f, ok := p.Desc.Field(field)
	if !ok {
		return f, fmt.Errorf("%s: %w %q", p.Desc.Name, ErrUnknownField, field)
	}
	if f.Kind != resource.Items {
		return f, fmt.Errorf("%s.%s is not a list", p.Desc.Name, field)
	}
	return f, nil
}

func itemsOf(r resource.Record, field string) []any {
	items, _ := r[field].([]any)
	return items
}

// AddItem appends a blank entry to a list field of the draft.
func (p *Page) AddItem(field string) error {
	if _, err := p.itemsField(field); err != nil {
		return err
	}
	item, err := p.Desc.BlankItem(field, p.now())
	if err != nil {
		return err
	}
	return p.Controller.UpdateDraft(func(r resource.Record) {
		r[field] = append(itemsOf(r, field), map[string]any(item))
	})
}

// RemoveItem drops the entry at index from a list field of the draft.
func (p *Page) RemoveItem(field string, index int) error {
	if _, err := p.itemsField(field); err != nil {
		return err
	}
	var rangeErr error
	err := p.Controller.UpdateDraft(func(r resource.Record) {
		items := itemsOf(r, field)
		if index < 0 || index >= len(items) {
			rangeErr = fmt.Errorf("%s: no item %d", field, index)
			return
		}
		out := make([]any, 0, len(items)-1)
		out = append(out, items[:index]...)
		r[field] = append(out, items[index+1:]...)
	})
	if err != nil {
		return err
	}
	return rangeErr
}

// SetItem sets key on the entry at index of a list field. Choosing a
// referenced id also fills the entry's companion label.
func (p *Page) SetItem(field string, index int, key string, value any) error {
	f, err := p.itemsField(field)
	if err != nil {
		return err
	}
	sub, ok := f.ItemField(key)
	if !ok {
		return fmt.Errorf("%s: %w %q", field, ErrUnknownField, key)
	}
	var label string
	if sub.Kind == resource.Reference {
		label, _ = p.Lookups.Label(sub.Lookup, resource.Stringify(value))
	}

	var rangeErr error
	err = p.Controller.UpdateDraft(func(r resource.Record) {
		items := itemsOf(r, field)
		if index < 0 || index >= len(items) {
			rangeErr = fmt.Errorf("%s: no item %d", field, index)
			return
		}
		item, ok := items[index].(map[string]any)
		if !ok {
			item = map[string]any{}
			items[index] = item
		}
		item[key] = value
		if sub.Kind == resource.Reference && sub.Companion != "" {
			item[sub.Companion] = label
		}
	})
	if err != nil {
		return err
	}
	return rangeErr
}

// SetInput applies one textual edit to the draft. name is a field name or,
// for list fields, "field.index.key"; an index one past the end appends a
// new entry first.
func (p *Page) SetInput(name, raw string) error {
	if field, rest, nested := strings.Cut(name, "."); nested {
		idxText, key, ok := strings.Cut(rest, ".")
		if !ok {
			return fmt.Errorf("%s: expected field.index.key", name)
		}
		index, err := strconv.Atoi(idxText)
		if err != nil {
			return fmt.Errorf("%s: bad index %q", name, idxText)
		}
		f, err := p.itemsField(field)
		if err != nil {
			return err
		}
		sub, ok := f.ItemField(key)
		if !ok {
			return fmt.Errorf("%s: %w %q", field, ErrUnknownField, key)
		}
		value, err := sub.Parse(raw)
		if err != nil {
			return err
		}
		if index == len(itemsOf(p.Controller.Snapshot().Dialog.Record, field)) {
			if err := p.AddItem(field); err != nil {
				return err
			}
		}
		return p.SetItem(field, index, key, value)
	}

	f, ok := p.Desc.Field(name)
	if !ok {
		return fmt.Errorf("%s: %w %q", p.Desc.Name, ErrUnknownField, name)
	}
	if f.Kind == resource.Reference {
		return p.SelectReference(name, raw)
	}
	value, err := f.Parse(raw)
	if err != nil {
		return err
	}
	return p.Controller.SetField(name, value)
}
