package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/clinica/dashboard/internal/platform/session"
	"github.com/clinica/dashboard/internal/resource"
)

func TestClient_NoSessionSendsNothing(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	c := New(srv.URL, session.Static(""))
	if c.HasSession() {
		t.Error("expected no session")
	}
	_, err := c.List(context.Background(), "/api/pacientes")
	if !errors.Is(err, ErrNoSession) {
		t.Errorf("expected ErrNoSession, got %v", err)
	}
	if n := atomic.LoadInt32(&hits); n != 0 {
		t.Errorf("expected no request, got %d", n)
	}
}

func TestClient_ListSendsBearerAndKeepsOrder(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("expected bearer header, got %q", got)
		}
		if r.Method != http.MethodGet || r.URL.Path != "/api/pacientes" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"id":"b","nombre":"Zoe"},{"id":"a","nombre":"Ana"}]`)
	}))
	defer srv.Close()

	c := New(srv.URL+"/", session.Static("tok-1"))
	records, err := c.List(context.Background(), "/api/pacientes")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(records) != 2 || records[0].ID() != "b" || records[1].ID() != "a" {
		t.Errorf("expected server order [b a], got %v", records)
	}
}

func TestClient_EmptyArray(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `null`)
	}))
	defer srv.Close()

	records, err := New(srv.URL, session.Static("t")).List(context.Background(), "/api/citas")
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", records)
	}
}

func TestClient_StatusError(t *testing.T) {
	for _, code := range []int{http.StatusUnauthorized, http.StatusNotFound, http.StatusInternalServerError} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "nope", code)
		}))

		_, err := New(srv.URL, session.Static("t")).Get(context.Background(), "/api/citas/1")
		var se *StatusError
		if !errors.As(err, &se) {
			t.Fatalf("expected StatusError for %d, got %v", code, err)
		}
		if se.Code != code || se.Method != http.MethodGet || se.Path != "/api/citas/1" {
			t.Errorf("unexpected status error %+v", se)
		}
		if !IsStatus(err, code) {
			t.Errorf("IsStatus(%d) = false", code)
		}
		srv.Close()
	}
}

func TestClient_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, session.Static("t")).List(context.Background(), "/api/citas")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestClient_UndecodableBodyIsTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<html>gateway</html>`)
	}))
	defer srv.Close()

	_, err := New(srv.URL, session.Static("t")).List(context.Background(), "/api/citas")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
}

func TestClient_CreateSendsJSONBody(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected application/json, got %q", ct)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id":"new-1","nombre":"Ana"}`)
	}))
	defer srv.Close()

	out, err := New(srv.URL, session.Static("t")).Create(context.Background(), "/api/pacientes", resource.Record{"nombre": "Ana"})
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if got["nombre"] != "Ana" {
		t.Errorf("expected body nombre Ana, got %v", got)
	}
	if out.ID() != "new-1" {
		t.Errorf("expected echoed id new-1, got %q", out.ID())
	}
}

func TestClient_MutationWithoutBodySucceeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPut {
			io.WriteString(w, `"ok"`)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := New(srv.URL, session.Static("t"))
	if out, err := c.Update(context.Background(), "/api/pacientes/1", resource.Record{"id": "1"}); err != nil || out != nil {
		t.Errorf("expected nil record and no error, got %v (%v)", out, err)
	}
	if err := c.Delete(context.Background(), "/api/pacientes/1"); err != nil {
		t.Errorf("Delete() error: %v", err)
	}
}

func TestClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := New(srv.URL, session.Static("t"), WithTimeout(50*time.Millisecond))
	_, err := c.List(context.Background(), "/api/citas")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError on timeout, got %v", err)
	}
}

func TestClient_TimeoutSurvivesCustomHTTPClient(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	c := New(srv.URL, session.Static("t"),
		WithTimeout(50*time.Millisecond),
		WithHTTPClient(&http.Client{}))
	if c.http.Timeout != 50*time.Millisecond {
		t.Fatalf("expected 50ms timeout, got %s", c.http.Timeout)
	}
	_, err := c.List(context.Background(), "/api/citas")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError on timeout, got %v", err)
	}
}

type brokenProvider struct{}

func (brokenProvider) Token() (string, error) { return "", errors.New("session file locked") }

func TestClient_UnreadableSessionIsTransportError(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	c := New(srv.URL, brokenProvider{})
	_, err := c.List(context.Background(), "/api/citas")
	var te *TransportError
	if !errors.As(err, &te) {
		t.Fatalf("expected TransportError, got %v", err)
	}
	if errors.Is(err, ErrNoSession) {
		t.Error("unreadable session must not look like a missing one")
	}
	if n := atomic.LoadInt32(&hits); n != 0 {
		t.Errorf("expected no request, got %d", n)
	}
}
