package lookup

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/rs/zerolog"

	"github.com/clinica/dashboard/internal/platform/apiclient"
	"github.com/clinica/dashboard/internal/resource"
)

type fakeLister struct {
	mu    sync.Mutex
	data  map[string][]resource.Record
	errs  map[string]error
	paths []string
}

func (f *fakeLister) List(ctx context.Context, path string) ([]resource.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
	if err := f.errs[path]; err != nil {
		return nil, err
	}
	return f.data[path], nil
}

func newFake() *fakeLister {
	return &fakeLister{data: map[string][]resource.Record{}, errs: map[string]error{}}
}

func TestLoad_JoinsLabelFields(t *testing.T) {
	f := newFake()
	f.data["/api/pacientes"] = []resource.Record{
		{"id": "p1", "nombre": "Ana", "apellido": "Ruiz"},
		{"id": "p2", "nombre": "Luis", "apellido": ""},
		{"id": float64(3), "nombre": " Eva ", "apellido": "Gil"},
	}
	r := NewResolver(f, zerolog.Nop())

	if r.State("pacientes") != Idle {
		t.Errorf("expected idle before load")
	}
	if err := r.Load(context.Background(), resource.PatientsLookup); err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := []Option{{"p1", "Ana Ruiz"}, {"p2", "Luis"}, {"3", "Eva Gil"}}
	if got := r.Options("pacientes"); !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if r.State("pacientes") != Loaded {
		t.Errorf("expected loaded, got %s", r.State("pacientes"))
	}
	if l, ok := r.Label("pacientes", "p1"); !ok || l != "Ana Ruiz" {
		t.Errorf("expected Ana Ruiz, got %q", l)
	}
	if _, ok := r.Label("pacientes", "nope"); ok {
		t.Error("expected unknown id to have no label")
	}
}

func TestLoad_Failure(t *testing.T) {
	f := newFake()
	f.errs["/api/personal"] = &apiclient.StatusError{Code: 500}
	r := NewResolver(f, zerolog.Nop())

	if err := r.Load(context.Background(), resource.DoctorsLookup); err == nil {
		t.Fatal("expected error")
	}
	if r.State("medicos") != Errored {
		t.Errorf("expected errored, got %s", r.State("medicos"))
	}
	if len(r.Options("medicos")) != 0 {
		t.Error("expected empty picker after failure")
	}
	if r.Err() != "Error al cargar médicos" {
		t.Errorf("unexpected error message %q", r.Err())
	}
}

func TestLoad_TransportFailure(t *testing.T) {
	f := newFake()
	f.errs["/api/medicamentos"] = &apiclient.TransportError{Err: errors.New("dial tcp")}
	r := NewResolver(f, zerolog.Nop())

	r.Load(context.Background(), resource.MedicationsLookup)
	if r.Err() != resource.ConnectionError {
		t.Errorf("expected connection error, got %q", r.Err())
	}
}

func TestLoadAll_FailureIsIsolated(t *testing.T) {
	f := newFake()
	f.data["/api/pacientes"] = []resource.Record{{"id": "p1", "nombre": "Ana", "apellido": "Ruiz"}}
	f.errs["/api/personal"] = &apiclient.StatusError{Code: 503}
	r := NewResolver(f, zerolog.Nop())

	err := r.LoadAll(context.Background(), resource.PatientsLookup, resource.DoctorsLookup)
	if err == nil {
		t.Fatal("expected joined error")
	}
	if len(r.Options("pacientes")) != 1 {
		t.Errorf("expected patients to load despite staff failure")
	}
	if r.State("medicos") != Errored {
		t.Errorf("expected medicos errored, got %s", r.State("medicos"))
	}
	if len(f.paths) != 2 {
		t.Errorf("expected two requests, got %v", f.paths)
	}
}

func TestLoadAll_Empty(t *testing.T) {
	r := NewResolver(newFake(), zerolog.Nop())
	if err := r.LoadAll(context.Background()); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestLoad_SuccessClearsOwnError(t *testing.T) {
	f := newFake()
	f.errs["/api/personal"] = &apiclient.StatusError{Code: 500}
	r := NewResolver(f, zerolog.Nop())
	r.Load(context.Background(), resource.StaffLookup)
	if r.Err() == "" {
		t.Fatal("expected error after failed load")
	}

	delete(f.errs, "/api/personal")
	if err := r.Load(context.Background(), resource.StaffLookup); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if r.Err() != "" {
		t.Errorf("expected error cleared, got %q", r.Err())
	}
}
