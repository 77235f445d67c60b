package devapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/clinica/dashboard/internal/resource"
	"github.com/clinica/dashboard/pkg/pagination"
)

var ErrUnknownResource = errors.New("unknown resource")

// Service validates the resource segment and keeps companion labels in sync
// with the records they point at.
type Service struct {
	store  Store
	logger zerolog.Logger
}

func NewService(store Store, logger zerolog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

func (s *Service) descriptor(name string) (resource.Descriptor, error) {
	d, ok := resource.Lookup(name)
	if !ok {
		return d, fmt.Errorf("%w: %s", ErrUnknownResource, name)
	}
	return d, nil
}

func (s *Service) List(ctx context.Context, name string, page pagination.Params) ([]resource.Record, error) {
	if _, err := s.descriptor(name); err != nil {
		return nil, err
	}
	return s.store.List(ctx, name, page)
}

func (s *Service) Get(ctx context.Context, name, id string) (resource.Record, error) {
	if _, err := s.descriptor(name); err != nil {
		return nil, err
	}
	return s.store.Get(ctx, name, id)
}

func (s *Service) Create(ctx context.Context, name string, rec resource.Record) (resource.Record, error) {
	d, err := s.descriptor(name)
	if err != nil {
		return nil, err
	}
	rec = rec.Clone()
	if err := s.denormalize(ctx, d, rec); err != nil {
		return nil, err
	}
	return s.store.Create(ctx, name, rec)
}

func (s *Service) Update(ctx context.Context, name, id string, rec resource.Record) (resource.Record, error) {
	d, err := s.descriptor(name)
	if err != nil {
		return nil, err
	}
	rec = rec.Clone()
	if err := s.denormalize(ctx, d, rec); err != nil {
		return nil, err
	}
	return s.store.Update(ctx, name, id, rec)
}

func (s *Service) Delete(ctx context.Context, name, id string) error {
	if _, err := s.descriptor(name); err != nil {
		return err
	}
	return s.store.Delete(ctx, name, id)
}

// denormalize fills the companion label of every reference in rec, including
// references inside list fields, from the referenced record. References to
// records that do not exist keep whatever label the client sent.
func (s *Service) denormalize(ctx context.Context, d resource.Descriptor, rec resource.Record) error {
	for _, f := range d.Fields {
		switch f.Kind {
		case resource.Reference:
			if err := s.fillCompanion(ctx, d, f, rec); err != nil {
				return err
			}
		case resource.Items:
			for _, item := range rec.Items(f.Name) {
				for _, sub := range f.ItemFields {
					if sub.Kind != resource.Reference {
						continue
					}
					if err := s.fillCompanion(ctx, d, sub, item); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func (s *Service) fillCompanion(ctx context.Context, d resource.Descriptor, f resource.Field, rec resource.Record) error {
	id := rec.String(f.Name)
	if id == "" || f.Companion == "" {
		return nil
	}
	spec, ok := d.LookupSpec(f.Lookup)
	if !ok {
		return nil
	}
	ref, err := s.store.Get(ctx, spec.Resource, id)
	if errors.Is(err, ErrNotFound) {
		s.logger.Debug().Str("resource", d.Name).Str("field", f.Name).Str("ref", id).Msg("dangling reference")
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve %s %s: %w", f.Name, id, err)
	}
	rec[f.Companion] = spec.Label(ref)
	return nil
}
