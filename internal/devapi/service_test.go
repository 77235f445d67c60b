package devapi

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/clinica/dashboard/internal/resource"
	"github.com/clinica/dashboard/pkg/pagination"
)

func newTestService() (*Service, *MemoryStore) {
	store := NewMemoryStore()
	return NewService(store, zerolog.Nop()), store
}

func TestService_UnknownResource(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	if _, err := svc.List(ctx, "mascotas", pagination.Params{}); !errors.Is(err, ErrUnknownResource) {
		t.Errorf("expected ErrUnknownResource, got %v", err)
	}
	if _, err := svc.Create(ctx, "mascotas", resource.Record{}); !errors.Is(err, ErrUnknownResource) {
		t.Errorf("expected ErrUnknownResource, got %v", err)
	}
	if err := svc.Delete(ctx, "mascotas", "1"); !errors.Is(err, ErrUnknownResource) {
		t.Errorf("expected ErrUnknownResource, got %v", err)
	}
}

func TestService_DenormalizesCompanions(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	patient, _ := svc.Create(ctx, "pacientes", resource.Record{"nombre": "Ana", "apellido": "Ruiz"})
	doctor, _ := svc.Create(ctx, "personal", resource.Record{"nombre": "Gregory", "apellido": "House"})

	cita, err := svc.Create(ctx, "citas", resource.Record{
		"pacienteId": patient.ID(),
		"medicoId":   doctor.ID(),
		"estado":     "Programada",
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if cita["pacienteNombre"] != "Ana Ruiz" || cita["medicoNombre"] != "Gregory House" {
		t.Errorf("expected companion names, got %v", cita)
	}

	other, _ := svc.Create(ctx, "pacientes", resource.Record{"nombre": "Luis", "apellido": "Gil"})
	cita["pacienteId"] = other.ID()
	updated, err := svc.Update(ctx, "citas", cita.ID(), cita)
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if updated["pacienteNombre"] != "Luis Gil" {
		t.Errorf("expected companion refreshed on update, got %v", updated["pacienteNombre"])
	}
}

func TestService_DanglingReferenceKeepsClientLabel(t *testing.T) {
	svc, _ := newTestService()
	rec, err := svc.Create(context.Background(), "horarios", resource.Record{
		"personalId":     "missing",
		"personalNombre": "Ana Ruiz",
		"dia":            "Lunes",
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if rec["personalNombre"] != "Ana Ruiz" {
		t.Errorf("expected client label kept, got %v", rec["personalNombre"])
	}
}

func TestService_DenormalizesPrescriptionItems(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	med, _ := svc.Create(ctx, "medicamentos", resource.Record{"nombre": "Ibuprofeno"})

	rx, err := svc.Create(ctx, "recetas", resource.Record{
		"medicamentos": []any{
			map[string]any{"id": med.ID(), "nombre": "", "dosis": "400mg", "duracion": "5 días"},
		},
	})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	items := rx.Items("medicamentos")
	if len(items) != 1 || items[0]["nombre"] != "Ibuprofeno" {
		t.Errorf("expected item name filled, got %v", items)
	}
}
