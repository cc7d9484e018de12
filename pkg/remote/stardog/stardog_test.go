package stardog

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/geoknoesis/rdfgraph/pkg/sparql"
)

func TestBegin_ReturnsTxIDFromBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/transaction/begin") {
			t.Fatalf("unexpected begin path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("reasoning") != "on" {
			t.Fatalf("expected reasoning=on, got %s", r.URL.RawQuery)
		}
		io.WriteString(w, "tx-42")
	}))
	defer srv.Close()

	b := New(srv.URL, "mydb", "user", "pass")
	reasoning := true
	key, err := b.Begin(t.Context(), &reasoning)
	if err != nil {
		t.Fatalf("Begin: %v", err)
	}
	if key != "tx-42" {
		t.Fatalf("expected session key tx-42, got %q", key)
	}
}

func TestBegin_NonOKStatusIsHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	b := New(srv.URL, "mydb", "user", "pass")
	_, err := b.Begin(t.Context(), nil)
	if err == nil {
		t.Fatal("expected an error for a 500 begin response")
	}
}

func TestQuery_SendsAcceptHeaderPerKind(t *testing.T) {
	var gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{"head":{"vars":[]},"boolean":true}`))
	}))
	defer srv.Close()

	b := New(srv.URL, "mydb", "user", "pass")
	resp, err := b.Query(t.Context(), "", sparql.Ask, "ASK { ?s ?p ?o }", nil)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if gotAccept != "application/sparql-results+json" {
		t.Fatalf("unexpected Accept header: %s", gotAccept)
	}
	if resp.Boolean == nil || !*resp.Boolean {
		t.Fatalf("expected boolean true, got %+v", resp)
	}
}
