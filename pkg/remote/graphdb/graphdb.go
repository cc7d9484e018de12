// Package graphdb implements remote.Backend against a GraphDB/RDF4J HTTP
// endpoint: location-url transactions (the txn URL returned in a begin
// response's Location header becomes the sessionKey) and the `infer=`
// URL parameter for reasoning.
package graphdb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/geoknoesis/rdfgraph/pkg/rdf"
	"github.com/geoknoesis/rdfgraph/pkg/rdf/codec"
	"github.com/geoknoesis/rdfgraph/pkg/remote"
	"github.com/geoknoesis/rdfgraph/pkg/sparql"
)

// Backend talks to one GraphDB repository over plain net/http. Auth is the
// caller's choice: leave Client nil for an unauthenticated deployment, or
// set a Client whose Transport attaches whatever credentials the
// deployment needs.
type Backend struct {
	baseURL          string
	repository       string
	client           *http.Client
	ReasoningDefault bool
}

// New returns a Backend for repository at baseURL (e.g.
// "https://graphdb.example.com").
func New(baseURL, repository string) *Backend {
	return &Backend{
		baseURL:    strings.TrimRight(baseURL, "/"),
		repository: repository,
		client:     http.DefaultClient,
	}
}

// SetHTTPClient overrides the transport, e.g. to supply caller-managed auth.
func (b *Backend) SetHTTPClient(c *http.Client) { b.client = c }

func (b *Backend) repoURL(path string) string {
	return b.baseURL + "/repositories/" + b.repository + path
}

func (b *Backend) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	return http.NewRequestWithContext(ctx, method, url, body)
}

func (b *Backend) do(req *http.Request, op string) (*http.Response, error) {
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rdf.ErrConnection, err)
	}
	if resp.StatusCode/100 != 2 {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &rdf.HttpStatusError{Op: op, Status: resp.StatusCode, Reason: resp.Status, Body: body}
	}
	return resp, nil
}

func inferParam(reasoning *bool, fallback bool) string {
	on := fallback
	if reasoning != nil {
		on = *reasoning
	}
	if on {
		return "true"
	}
	return "false"
}

// Begin opens a transaction and returns the full transaction URL as the
// sessionKey: every subsequent operation on a GraphDB transaction is just
// a verb against that URL, no separate id-to-path translation needed.
func (b *Backend) Begin(ctx context.Context, reasoning *bool) (string, error) {
	req, err := b.newRequest(ctx, http.MethodPost, b.repoURL("/transactions"), nil)
	if err != nil {
		return "", err
	}
	resp, err := b.do(req, "begin")
	if err != nil {
		return "", err
	}
	resp.Body.Close()
	loc := resp.Header.Get("Location")
	if loc == "" {
		return "", &rdf.TransactionError{Op: rdf.TxOpBegin, Cause: rdf.ErrMissingLocationHeader}
	}
	return loc, nil
}

func (b *Backend) Commit(ctx context.Context, sessionKey string) error {
	req, err := b.newRequest(ctx, http.MethodPut, sessionKey+"?action=COMMIT", nil)
	if err != nil {
		return err
	}
	resp, err := b.do(req, "commit")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (b *Backend) Rollback(ctx context.Context, sessionKey string) error {
	req, err := b.newRequest(ctx, http.MethodDelete, sessionKey, nil)
	if err != nil {
		return err
	}
	resp, err := b.do(req, "rollback")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (b *Backend) AddQuads(ctx context.Context, sessionKey string, quads []*rdf.Quad) error {
	var buf bytes.Buffer
	if err := codec.Serialize(&buf, quads, codec.FormatTriG); err != nil {
		return err
	}
	req, err := b.newRequest(ctx, http.MethodPut, sessionKey+"?action=ADD", bytes.NewReader(buf.Bytes()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-trig-star")
	resp, err := b.do(req, "add")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// RemoveQuads synthesizes a DELETE DATA { ... } body and submits it as a
// SPARQL update: GraphDB's transaction API has no RDF-body remove verb,
// only the UPDATE action.
func (b *Backend) RemoveQuads(ctx context.Context, sessionKey string, quads []*rdf.Quad) error {
	return b.Update(ctx, sessionKey, remote.RenderDeleteData(quads))
}

func acceptHeader(kind sparql.QueryKind) string {
	switch kind {
	case sparql.Select, sparql.Ask:
		return "application/sparql-results+json"
	default:
		return "application/x-trig-star"
	}
}

func (b *Backend) Query(ctx context.Context, sessionKey string, kind sparql.QueryKind, queryText string, reasoning *bool) (*remote.QueryResponse, error) {
	infer := inferParam(reasoning, b.ReasoningDefault)
	var req *http.Request
	var err error
	if sessionKey != "" {
		endpoint := sessionKey + "?action=QUERY&infer=" + infer
		req, err = b.newRequest(ctx, http.MethodPut, endpoint, strings.NewReader(url.Values{"query": {queryText}}.Encode()))
		if err == nil {
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		}
	} else {
		endpoint := b.repoURL("") + "?" + url.Values{"query": {queryText}, "infer": {infer}}.Encode()
		req, err = b.newRequest(ctx, http.MethodGet, endpoint, nil)
	}
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", acceptHeader(kind))
	resp, err := b.do(req, "query")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rdf.ErrIO, err)
	}
	return remote.DecodeQueryResponse(kind, acceptHeader(kind), body)
}

func (b *Backend) Update(ctx context.Context, sessionKey string, updateText string) error {
	endpoint := sessionKey + "?action=UPDATE"
	req, err := b.newRequest(ctx, http.MethodPut, endpoint, strings.NewReader(updateText))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/sparql-update")
	resp, err := b.do(req, "update")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (b *Backend) DeleteAll(ctx context.Context, graphIRI string) error {
	req, err := b.newRequest(ctx, http.MethodDelete, b.repoURL("/statements?graph="+url.QueryEscape(graphIRI)), nil)
	if err != nil {
		return err
	}
	resp, err := b.do(req, "delete-all")
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

var _ remote.Backend = (*Backend)(nil)
