package devapi

import (
	"context"
	"errors"
	"testing"

	"github.com/clinica/dashboard/internal/resource"
	"github.com/clinica/dashboard/pkg/pagination"
)

func TestMemoryStore_CRUD(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	a, err := s.Create(ctx, "pacientes", resource.Record{"id": "", "nombre": "Ana"})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if a.ID() == "" {
		t.Fatal("expected assigned id")
	}
	b, _ := s.Create(ctx, "pacientes", resource.Record{"nombre": "Luis"})
	s.Create(ctx, "personal", resource.Record{"nombre": "Gregory"})

	list, _ := s.List(ctx, "pacientes", pagination.Params{})
	if len(list) != 2 || list[0].ID() != a.ID() || list[1].ID() != b.ID() {
		t.Errorf("expected insertion order, got %v", list)
	}

	got, err := s.Get(ctx, "pacientes", a.ID())
	if err != nil || got["nombre"] != "Ana" {
		t.Errorf("expected Ana, got %v (%v)", got, err)
	}

	if _, err := s.Update(ctx, "pacientes", a.ID(), resource.Record{"id": "ignored", "nombre": "Ana María"}); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	got, _ = s.Get(ctx, "pacientes", a.ID())
	if got["nombre"] != "Ana María" || got.ID() != a.ID() {
		t.Errorf("expected updated record keeping its id, got %v", got)
	}
	list, _ = s.List(ctx, "pacientes", pagination.Params{})
	if list[0].ID() != a.ID() {
		t.Error("update moved the record")
	}

	if err := s.Delete(ctx, "pacientes", a.ID()); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := s.Get(ctx, "pacientes", a.ID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(ctx, "pacientes", a.ID()); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := s.Update(ctx, "citas", "x", resource.Record{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on unknown collection, got %v", err)
	}
}

func TestMemoryStore_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	in := resource.Record{"nombre": "Ana"}
	created, _ := s.Create(ctx, "pacientes", in)
	created["nombre"] = "changed"
	in["nombre"] = "changed"

	got, _ := s.Get(ctx, "pacientes", created.ID())
	if got["nombre"] != "Ana" {
		t.Errorf("store shares memory with callers: %v", got)
	}
}

func TestMemoryStore_ListWindow(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for _, n := range []string{"a", "b", "c"} {
		s.Create(ctx, "medicamentos", resource.Record{"nombre": n})
	}
	list, _ := s.List(ctx, "medicamentos", pagination.Params{Limit: 1, Offset: 1})
	if len(list) != 1 || list[0]["nombre"] != "b" {
		t.Errorf("expected [b], got %v", list)
	}
	empty, _ := s.List(ctx, "facturas", pagination.Params{})
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil list, got %#v", empty)
	}
}

func TestParseID(t *testing.T) {
	if _, err := parseID("not-a-uuid"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := parseID("8f14e45f-ceea-467f-a0e6-0d1b5a7e4c2a"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestDecodeBody(t *testing.T) {
	rec, err := decodeBody("id-1", []byte(`{"id":"stale","nombre":"Ana"}`))
	if err != nil {
		t.Fatalf("decodeBody() error: %v", err)
	}
	if rec.ID() != "id-1" || rec["nombre"] != "Ana" {
		t.Errorf("unexpected record %v", rec)
	}
	if _, err := decodeBody("id-1", []byte(`[1,2]`)); err == nil {
		t.Error("expected error for non-object body")
	}
}
