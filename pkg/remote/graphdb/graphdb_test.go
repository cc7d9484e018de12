package graphdb

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geoknoesis/rdfgraph/pkg/rdf"
)

func TestBegin_ReturnsLocationHeaderAsSessionKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "http://graphdb/repositories/x/transactions/abc")
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	b := New(srv.URL, "x")
	key, err := b.Begin(t.Context(), nil)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if key != "http://graphdb/repositories/x/transactions/abc" {
		t.Fatalf("unexpected session key: %s", key)
	}
}

func TestBegin_MissingLocationHeaderFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	b := New(srv.URL, "x")
	_, err := b.Begin(t.Context(), nil)
	if !errors.Is(err, rdf.ErrMissingLocationHeader) {
		t.Fatalf("expected ErrMissingLocationHeader, got %v", err)
	}
}

func TestRemoveQuads_SynthesizesDeleteDataUpdate(t *testing.T) {
	var gotAction, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAction = r.URL.Query().Get("action")
		body := make([]byte, r.ContentLength)
		r.Body.Read(body)
		gotBody = string(body)
	}))
	defer srv.Close()

	b := New(srv.URL, "x")
	q := rdf.NewQuad(rdf.NewNamedNode("http://ex/s"), rdf.NewNamedNode("http://ex/p"), rdf.NewLiteral("o"), nil)
	if err := b.RemoveQuads(t.Context(), srv.URL+"/tx1", []*rdf.Quad{q}); err != nil {
		t.Fatalf("RemoveQuads: %v", err)
	}
	if gotAction != "UPDATE" {
		t.Fatalf("expected action=UPDATE, got %s", gotAction)
	}
	if !strings.Contains(gotBody, "DELETE DATA") {
		t.Fatalf("expected a synthesized DELETE DATA body, got %s", gotBody)
	}
}
