// Package lookup resolves the read-only reference collections behind the
// foreign-key pickers of a form (patients, staff, medications).
package lookup

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc"

	"github.com/clinica/dashboard/internal/platform/apiclient"
	"github.com/clinica/dashboard/internal/resource"
)

// Option is one selectable entry of a picker.
type Option struct {
	ID    string
	Label string
}

type State int

const (
	Idle State = iota
	Loading
	Loaded
	Errored
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Errored:
		return "errored"
	default:
		return "idle"
	}
}

// Lister fetches a collection.
type Lister interface {
	List(ctx context.Context, path string) ([]resource.Record, error)
}

type collection struct {
	state   State
	options []Option
	seq     uint64
}

// Resolver caches lookup collections by name. A failed collection is left
// empty and never affects the others.
type Resolver struct {
	client Lister
	logger zerolog.Logger

	mu          sync.Mutex
	collections map[string]*collection
	errMsg      string
	errFrom     string
}

func NewResolver(client Lister, logger zerolog.Logger) *Resolver {
	return &Resolver{
		client:      client,
		logger:      logger,
		collections: make(map[string]*collection),
	}
}

func (r *Resolver) entry(name string) *collection {
	c, ok := r.collections[name]
	if !ok {
		c = &collection{}
		r.collections[name] = c
	}
	return c
}

// Load fetches the lookup's endpoint and replaces the collection with one
// option per item, labelled by its label fields joined with a space.
func (r *Resolver) Load(ctx context.Context, spec resource.LookupSpec) error {
	r.mu.Lock()
	c := r.entry(spec.Name)
	c.seq++
	seq := c.seq
	c.state = Loading
	r.mu.Unlock()

	records, err := r.client.List(ctx, spec.Path())

	r.mu.Lock()
	defer r.mu.Unlock()
	if seq != c.seq {
		return nil
	}
	log := r.logger.With().Str("lookup", spec.Name).Logger()
	if err != nil {
		c.state = Errored
		c.options = nil
		if errors.Is(err, apiclient.ErrNoSession) {
			return err
		}
		msg := spec.ErrorMessage
		var te *apiclient.TransportError
		if errors.As(err, &te) {
			msg = resource.ConnectionError
		}
		r.errMsg, r.errFrom = msg, spec.Name
		log.Warn().Err(err).Msg(msg)
		return err
	}

	options := make([]Option, 0, len(records))
	for _, rec := range records {
		options = append(options, Option{ID: rec.ID(), Label: spec.Label(rec)})
	}
	c.options = options
	c.state = Loaded
	if r.errFrom == spec.Name {
		r.errMsg, r.errFrom = "", ""
	}
	log.Debug().Int("count", len(options)).Msg("lookup loaded")
	return nil
}

// LoadAll loads every lookup concurrently and returns the joined failures.
func (r *Resolver) LoadAll(ctx context.Context, specs ...resource.LookupSpec) error {
	errs := make([]error, len(specs))
	var wg conc.WaitGroup
	for i, spec := range specs {
		wg.Go(func() {
			errs[i] = r.Load(ctx, spec)
		})
	}
	wg.Wait()
	return errors.Join(errs...)
}

// Options returns a copy of the named collection; empty until loaded.
func (r *Resolver) Options(name string) []Option {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.collections[name]
	if !ok {
		return nil
	}
	return append([]Option(nil), c.options...)
}

// Label returns the label of id in the named collection.
func (r *Resolver) Label(name, id string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.collections[name]
	if !ok {
		return "", false
	}
	for _, o := range c.options {
		if o.ID == id {
			return o.Label, true
		}
	}
	return "", false
}

func (r *Resolver) State(name string) State {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.collections[name]; ok {
		return c.state
	}
	return Idle
}

// Err returns the message of the most recent lookup failure.
func (r *Resolver) Err() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errMsg
}
