package devapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/clinica/dashboard/internal/resource"
)

func newTestHandler() (*Handler, *echo.Echo) {
	svc, _ := newTestService()
	return NewHandler(svc, zerolog.Nop()), echo.New()
}

func newCtx(e *echo.Echo, method, target, body string, params ...string) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)
	return c, rec
}

func expectHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected echo.HTTPError, got %v", err)
	}
	if he.Code != code {
		t.Errorf("expected %d, got %d", code, he.Code)
	}
}

func TestHandler_CreateAndGet(t *testing.T) {
	h, e := newTestHandler()

	c, rec := newCtx(e, http.MethodPost, "/api/pacientes", `{"id":"","nombre":"Ana","apellido":"Ruiz"}`, "resource", "pacientes")
	if err := h.Create(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}
	var created resource.Record
	json.Unmarshal(rec.Body.Bytes(), &created)
	if created.ID() == "" || created["nombre"] != "Ana" {
		t.Fatalf("unexpected created record %v", created)
	}
	if _, ok := created["resource"]; ok {
		t.Error("path parameter leaked into the record")
	}

	c, rec = newCtx(e, http.MethodGet, "/", "", "resource", "pacientes", "id", created.ID())
	if err := h.Get(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestHandler_ListReturnsBareArray(t *testing.T) {
	h, e := newTestHandler()

	c, rec := newCtx(e, http.MethodGet, "/api/citas", "", "resource", "citas")
	if err := h.List(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("expected [], got %s", body)
	}

	c, _ = newCtx(e, http.MethodGet, "/api/citas?limit=-3", "", "resource", "citas")
	expectHTTPError(t, h.List(c), http.StatusBadRequest)
}

func TestHandler_NotFound(t *testing.T) {
	h, e := newTestHandler()

	c, _ := newCtx(e, http.MethodGet, "/", "", "resource", "pacientes", "id", "nope")
	expectHTTPError(t, h.Get(c), http.StatusNotFound)

	c, _ = newCtx(e, http.MethodDelete, "/", "", "resource", "pacientes", "id", "nope")
	expectHTTPError(t, h.Delete(c), http.StatusNotFound)

	c, _ = newCtx(e, http.MethodPut, "/", `{"nombre":"x"}`, "resource", "pacientes", "id", "nope")
	expectHTTPError(t, h.Update(c), http.StatusNotFound)

	c, _ = newCtx(e, http.MethodGet, "/api/mascotas", "", "resource", "mascotas")
	expectHTTPError(t, h.List(c), http.StatusNotFound)
}

func TestHandler_BadBody(t *testing.T) {
	h, e := newTestHandler()
	for _, body := range []string{`[1,2]`, `null`, `{"nombre":`} {
		c, _ := newCtx(e, http.MethodPost, "/api/pacientes", body, "resource", "pacientes")
		expectHTTPError(t, h.Create(c), http.StatusBadRequest)
	}
}

func TestHandler_UpdateAndDelete(t *testing.T) {
	h, e := newTestHandler()
	created, _ := h.svc.Create(context.Background(), "medicamentos", resource.Record{"nombre": "Ibuprofeno"})

	c, rec := newCtx(e, http.MethodPut, "/", `{"nombre":"Ibuprofeno 400"}`, "resource", "medicamentos", "id", created.ID())
	if err := h.Update(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	c, rec = newCtx(e, http.MethodDelete, "/", "", "resource", "medicamentos", "id", created.ID())
	if err := h.Delete(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
}
