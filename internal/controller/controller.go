// Package controller manages the list, detail and edit interaction of one
// resource page against its REST collection.
//
// The controller owns the record collection, the dialog and a single error
// slot. Mutations are never merged locally: a successful save or remove is
// always followed by exactly one fresh list request. Of several overlapping
// list requests only the most recently issued one may update state.
package controller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/clinica/dashboard/internal/platform/apiclient"
	"github.com/clinica/dashboard/internal/resource"
)

var (
	ErrUnauthenticated = errors.New("no session, login required")
	ErrUnsupported     = errors.New("operation not offered by this page")
	ErrReadOnly        = errors.New("dialog is in view mode")
	ErrDialogClosed    = errors.New("no dialog open")
	// ErrSuperseded is returned by a fetch whose response was discarded
	// because a newer fetch of the same kind was issued meanwhile.
	ErrSuperseded = errors.New("superseded by a newer request")
)

// Client is the part of apiclient.Client the controller uses.
type Client interface {
	HasSession() bool
	List(ctx context.Context, path string) ([]resource.Record, error)
	Get(ctx context.Context, path string) (resource.Record, error)
	Create(ctx context.Context, path string, rec resource.Record) (resource.Record, error)
	Update(ctx context.Context, path string, rec resource.Record) (resource.Record, error)
	Delete(ctx context.Context, path string) error
}

// Navigator moves the user to another surface of the dashboard.
type Navigator interface {
	ToLogin(path string)
}

type NavigatorFunc func(path string)

func (f NavigatorFunc) ToLogin(path string) { f(path) }

const DefaultLoginPath = "/login"

type Option func(*Controller)

func WithNavigator(n Navigator) Option {
	return func(c *Controller) { c.nav = n }
}

func WithLoginPath(path string) Option {
	return func(c *Controller) {
		if path != "" {
			c.loginPath = path
		}
	}
}

// WithClock sets the time source used for date defaults in new drafts.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) { c.now = now }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Controller) { c.logger = l }
}

type Controller struct {
	desc      resource.Descriptor
	client    Client
	nav       Navigator
	loginPath string
	now       func() time.Time
	logger    zerolog.Logger

	mu            sync.Mutex
	authenticated bool
	records       []resource.Record
	dialog        Dialog
	errMsg        string
	listState     LoadState
	listSeq       uint64
	listCancel    context.CancelFunc
	detailSeq     uint64
}

func New(desc resource.Descriptor, client Client, opts ...Option) *Controller {
	c := &Controller{
		desc:      desc,
		client:    client,
		nav:       NavigatorFunc(func(string) {}),
		loginPath: DefaultLoginPath,
		now:       time.Now,
		logger:    zerolog.Nop(),
		records:   []resource.Record{},
	}
	for _, o := range opts {
		o(c)
	}
	c.logger = c.logger.With().Str("resource", desc.Name).Logger()
	return c
}

func (c *Controller) Descriptor() resource.Descriptor {
	return c.desc
}

// Initialize gates the page on a session. Without one it redirects to the
// login path and returns ErrUnauthenticated without touching the network.
func (c *Controller) Initialize(ctx context.Context) error {
	if !c.client.HasSession() {
		c.redirect()
		return ErrUnauthenticated
	}
	c.mu.Lock()
	c.authenticated = true
	c.mu.Unlock()
	return c.List(ctx)
}

// List replaces the collection with a fresh server read, in server order.
func (c *Controller) List(ctx context.Context) error {
	if !c.desc.Capabilities.Has(resource.CapList) {
		return ErrUnsupported
	}

	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	if c.listCancel != nil {
		c.listCancel()
	}
	c.listSeq++
	seq := c.listSeq
	c.listCancel = cancel
	c.listState = Loading
	c.mu.Unlock()

	records, err := c.client.List(ctx, c.desc.CollectionPath())

	c.mu.Lock()
	if seq != c.listSeq {
		c.mu.Unlock()
		cancel()
		c.logger.Debug().Uint64("seq", seq).Msg("stale list response discarded")
		return ErrSuperseded
	}
	cancel()
	c.listCancel = nil
	if err != nil {
		c.listState = Errored
		c.mu.Unlock()
		return c.fail(err, "list", c.desc.Messages.Load)
	}
	if records == nil {
		records = []resource.Record{}
	}
	c.records = records
	c.listState = Loaded
	c.errMsg = ""
	c.mu.Unlock()

	c.logger.Debug().Int("count", len(records)).Msg("list loaded")
	return nil
}

// ViewDetails fetches one record and shows it read-only. On failure the
// dialog is left as it was.
func (c *Controller) ViewDetails(ctx context.Context, id string) error {
	if !c.desc.Capabilities.Has(resource.CapView) {
		return ErrUnsupported
	}

	c.mu.Lock()
	c.detailSeq++
	seq := c.detailSeq
	c.mu.Unlock()

	rec, err := c.client.Get(ctx, c.desc.ItemPath(id))

	c.mu.Lock()
	if seq != c.detailSeq {
		c.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil {
		c.mu.Unlock()
		return c.fail(err, "detail", c.desc.Messages.Detail)
	}
	if rec == nil {
		rec = resource.Record{}
	}
	c.dialog = Dialog{Open: true, Mode: ModeView, Record: rec}
	c.errMsg = ""
	c.mu.Unlock()
	return nil
}

// StartCreate opens the dialog on a blank draft.
func (c *Controller) StartCreate() error {
	if !c.desc.Capabilities.Has(resource.CapCreate) {
		return ErrUnsupported
	}
	c.mu.Lock()
	c.dialog = Dialog{Open: true, Mode: ModeEdit, Record: c.desc.Blank(c.now())}
	c.mu.Unlock()
	return nil
}

// StartEdit opens the dialog on a copy of rec.
func (c *Controller) StartEdit(rec resource.Record) error {
	if !c.desc.Capabilities.Has(resource.CapUpdate) {
		return ErrUnsupported
	}
	c.mu.Lock()
	c.dialog = Dialog{Open: true, Mode: ModeEdit, Record: rec.Clone()}
	c.mu.Unlock()
	return nil
}

// Save creates rec when its id is empty and updates it otherwise. The full
// record is the request body. On success the dialog closes and the list is
// fetched again; on failure the dialog stays open.
func (c *Controller) Save(ctx context.Context, rec resource.Record) error {
	creating := rec.IsDraft()
	op, msg, capability := "update", c.desc.Messages.Update, resource.CapUpdate
	if creating {
		op, msg, capability = "create", c.desc.Messages.Create, resource.CapCreate
	}
	if !c.desc.Capabilities.Has(capability) {
		return ErrUnsupported
	}

	var err error
	if creating {
		_, err = c.client.Create(ctx, c.desc.CollectionPath(), rec)
	} else {
		_, err = c.client.Update(ctx, c.desc.ItemPath(rec.ID()), rec)
	}
	if err != nil {
		return c.fail(err, op, msg)
	}

	c.mu.Lock()
	c.dialog = Dialog{}
	c.errMsg = ""
	c.mu.Unlock()
	c.logger.Info().Str("op", op).Str("id", rec.ID()).Msg("record saved")

	return c.refresh(ctx)
}

// Submit saves the draft held by the open edit dialog.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	d := c.dialog
	c.mu.Unlock()
	switch {
	case !d.Open:
		return ErrDialogClosed
	case d.Mode != ModeEdit:
		return ErrReadOnly
	}
	return c.Save(ctx, d.Record.Clone())
}

// Remove deletes a record and fetches the list again. On failure the
// collection is left untouched.
func (c *Controller) Remove(ctx context.Context, id string) error {
	if !c.desc.Capabilities.Has(resource.CapDelete) {
		return ErrUnsupported
	}
	if err := c.client.Delete(ctx, c.desc.ItemPath(id)); err != nil {
		return c.fail(err, "delete", c.desc.Messages.Delete)
	}

	c.mu.Lock()
	c.dialog = Dialog{}
	c.errMsg = ""
	c.mu.Unlock()
	c.logger.Info().Str("op", "delete").Str("id", id).Msg("record deleted")

	return c.refresh(ctx)
}

// refresh is the list that follows a successful mutation. Being overtaken by
// a newer list is not a failure of the mutation.
func (c *Controller) refresh(ctx context.Context) error {
	if err := c.List(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		return err
	}
	return nil
}

func (c *Controller) CloseDialog() {
	c.mu.Lock()
	c.dialog = Dialog{}
	c.mu.Unlock()
}

// SetField sets one field of the draft in the open edit dialog.
func (c *Controller) SetField(name string, value any) error {
	return c.UpdateDraft(func(r resource.Record) { r[name] = value })
}

// UpdateDraft applies fn to the draft in the open edit dialog.
func (c *Controller) UpdateDraft(fn func(resource.Record)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.dialog.Open {
		return ErrDialogClosed
	}
	if c.dialog.Mode != ModeEdit {
		return ErrReadOnly
	}
	if c.dialog.Record == nil {
		c.dialog.Record = resource.Record{}
	}
	fn(c.dialog.Record)
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	records := make([]resource.Record, len(c.records))
	for i, r := range c.records {
		records[i] = r.Clone()
	}
	return State{
		Authenticated: c.authenticated,
		Records:       records,
		Dialog:        Dialog{Open: c.dialog.Open, Mode: c.dialog.Mode, Record: c.dialog.Record.Clone()},
		Error:         c.errMsg,
		ListState:     c.listState,
	}
}

// Err returns the error slot.
func (c *Controller) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// fail records a failed request in the error slot and returns err. A lost
// session redirects instead and leaves the slot alone.
func (c *Controller) fail(err error, op, msg string) error {
	if errors.Is(err, apiclient.ErrNoSession) {
		c.redirect()
		return ErrUnauthenticated
	}

	text := msg
	var te *apiclient.TransportError
	if errors.As(err, &te) {
		text = resource.ConnectionError
	}

	c.mu.Lock()
	c.errMsg = text
	c.mu.Unlock()

	c.logger.Warn().Err(err).Str("op", op).Msg(text)
	return err
}

func (c *Controller) redirect() {
	c.mu.Lock()
	c.authenticated = false
	c.mu.Unlock()
	c.logger.Info().Str("path", c.loginPath).Msg("no session, redirecting to login")
	c.nav.ToLogin(c.loginPath)
}
