// Package rdfxio adapts pkg/rdf/codec's format-polymorphic parsing to the
// content-type-keyed interface internal/server expects when it hands off an
// HTTP request body to a parser.
package rdfxio

import (
	"fmt"
	"io"
	"strings"

	"github.com/geoknoesis/rdfgraph/pkg/rdf"
	"github.com/geoknoesis/rdfgraph/pkg/rdf/codec"
)

// RDFParser parses RDF data in one specific wire format into quads.
type RDFParser interface {
	Parse(reader io.Reader) ([]*rdf.Quad, error)

	// ContentType returns the MIME type this parser handles.
	ContentType() string
}

// codecParser is an RDFParser backed by a fixed codec.Format*. The actual
// parsing, prefix handling, and error reporting all live in pkg/rdf/codec;
// this type exists only to pin down which format a given content type maps
// to and satisfy the RDFParser interface internal/server depends on.
type codecParser struct {
	contentType string
	format      string
}

func (p *codecParser) ContentType() string {
	return p.contentType
}

func (p *codecParser) Parse(reader io.Reader) ([]*rdf.Quad, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("error reading input: %w", err)
	}

	quads, err := codec.ParseString(string(data), p.format, "")
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", p.contentType, err)
	}
	return quads, nil
}

// NewParser creates an RDF parser for the given content type, ignoring any
// parameters (e.g. "; charset=utf-8") appended to it.
func NewParser(contentType string) (RDFParser, error) {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if idx := strings.Index(ct, ";"); idx != -1 {
		ct = strings.TrimSpace(ct[:idx])
	}

	switch ct {
	case "application/n-triples", "text/plain":
		return &codecParser{contentType: "application/n-triples", format: codec.FormatNTriples}, nil
	case "application/n-quads":
		return &codecParser{contentType: "application/n-quads", format: codec.FormatNQuads}, nil
	case "text/turtle", "application/x-turtle":
		return &codecParser{contentType: "text/turtle", format: codec.FormatTurtle}, nil
	case "application/trig":
		return &codecParser{contentType: "application/trig", format: codec.FormatTriG}, nil
	case "application/rdf+xml":
		return &codecParser{contentType: "application/rdf+xml", format: codec.FormatRDFXML}, nil
	case "application/ld+json":
		return &codecParser{contentType: "application/ld+json", format: codec.FormatJSONLD}, nil
	default:
		return nil, fmt.Errorf("unsupported content type: %s", contentType)
	}
}

// GetSupportedContentTypes returns every content type NewParser accepts.
func GetSupportedContentTypes() []string {
	return []string{
		"application/n-triples",
		"application/n-quads",
		"text/turtle",
		"application/x-turtle",
		"application/trig",
		"application/rdf+xml",
		"application/ld+json",
		"text/plain",
	}
}
