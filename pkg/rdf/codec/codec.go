// Package codec is the format-polymorphic parse/serialize boundary: Turtle,
// TriG, N-Triples, N-Quads, RDF/XML, and JSON-LD, with format resolution
// following a fixed chain (explicit option, then file extension, then
// content sniffing, then a Turtle default).
package codec

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/geoknoesis/rdfgraph/pkg/rdf"
)

// Format names recognized by DetectFormat/Serialize, expressed as MIME
// types. The Turtle, TriG, N-Triples and N-Quads values are ones
// pkg/rdf.NewParser also accepts; it has no RDF/XML or JSON-LD case.
const (
	FormatTurtle   = "text/turtle"
	FormatTriG     = "application/trig"
	FormatNTriples = "application/n-triples"
	FormatNQuads   = "application/n-quads"
	FormatRDFXML   = "application/rdf+xml"
	FormatJSONLD   = "application/ld+json"
)

type options struct {
	baseIRI string
	format  string
}

// Option configures a parse or serialize call.
type Option func(*options)

// WithBaseIRI sets the base IRI used to resolve relative IRIs while parsing.
func WithBaseIRI(base string) Option {
	return func(o *options) { o.baseIRI = base }
}

// WithFormat pins the format, short-circuiting extension/content detection.
func WithFormat(format string) Option {
	return func(o *options) { o.format = format }
}

func resolveOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// normalizeFormat maps short names and aliases onto the canonical MIME
// constants above.
func normalizeFormat(f string) string {
	switch strings.ToLower(strings.TrimSpace(f)) {
	case "turtle", "ttl", FormatTurtle:
		return FormatTurtle
	case "trig", FormatTriG:
		return FormatTriG
	case "ntriples", "n-triples", "nt", FormatNTriples:
		return FormatNTriples
	case "nquads", "n-quads", "nq", FormatNQuads:
		return FormatNQuads
	case "rdfxml", "rdf/xml", "rdf", FormatRDFXML:
		return FormatRDFXML
	case "jsonld", "json-ld", FormatJSONLD:
		return FormatJSONLD
	default:
		return f
	}
}

// DetectFormat resolves a format name using explicit → file extension →
// content sniffing → Turtle-default, in that order.
func DetectFormat(explicit, path string, sniff []byte) string {
	if explicit != "" {
		return normalizeFormat(explicit)
	}
	if path != "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".ttl":
			return FormatTurtle
		case ".trig":
			return FormatTriG
		case ".nt":
			return FormatNTriples
		case ".nq":
			return FormatNQuads
		case ".rdf", ".xml":
			return FormatRDFXML
		case ".jsonld":
			return FormatJSONLD
		case ".json":
			return FormatJSONLD
		}
	}
	trimmed := strings.TrimSpace(string(sniff))
	switch {
	case strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "["):
		return FormatJSONLD
	case strings.HasPrefix(trimmed, "<?xml") || strings.Contains(trimmed[:minInt(64, len(trimmed))], "<rdf:RDF"):
		return FormatRDFXML
	}
	return FormatTurtle
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// ParseString parses data, resolving format and base IRI per DetectFormat
// unless overridden by format/baseIRI or opts.
func ParseString(data, format, baseIRI string, opts ...Option) ([]*rdf.Quad, error) {
	o := resolveOptions(opts)
	if format == "" {
		format = o.format
	}
	if baseIRI == "" {
		baseIRI = o.baseIRI
	}
	format = DetectFormat(format, "", []byte(data))

	switch format {
	case FormatTurtle:
		p := rdf.NewTurtleParser(data)
		if baseIRI != "" {
			p.SetBaseURI(baseIRI)
		}
		triples, err := p.Parse()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", rdf.ErrParse, err)
		}
		return triplesToQuads(triples), nil

	case FormatNTriples:
		p := rdf.NewNTriplesParser(data)
		triples, err := p.Parse()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", rdf.ErrParse, err)
		}
		return triplesToQuads(triples), nil

	case FormatTriG:
		p := rdf.NewTriGParser(data)
		if baseIRI != "" {
			p.SetBaseURI(baseIRI)
		}
		quads, err := p.Parse()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", rdf.ErrParse, err)
		}
		return quads, nil

	case FormatNQuads:
		p := rdf.NewNQuadsParser(data)
		quads, err := p.Parse()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", rdf.ErrParse, err)
		}
		return quads, nil

	case FormatRDFXML:
		p := rdf.NewRDFXMLParser()
		if baseIRI != "" {
			p.SetBaseURI(baseIRI)
		}
		quads, err := p.Parse(strings.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", rdf.ErrParse, err)
		}
		return quads, nil

	case FormatJSONLD:
		quads, err := parseJSONLD(data, baseIRI)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", rdf.ErrParse, err)
		}
		return quads, nil

	default:
		return nil, fmt.Errorf("%w: unrecognized format %q", rdf.ErrParse, format)
	}
}

// ParseReader parses everything available from r.
func ParseReader(r io.Reader, format, baseIRI string, opts ...Option) ([]*rdf.Quad, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rdf.ErrIO, err)
	}
	return ParseString(string(data), format, baseIRI, opts...)
}

// ParseFile reads and parses path. The base IRI comes only from
// WithBaseIRI; it is not derived from the file's path.
func ParseFile(path string, opts ...Option) ([]*rdf.Quad, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", rdf.ErrIO, err)
	}
	o := resolveOptions(opts)
	format := DetectFormat(o.format, path, data)
	return ParseString(string(data), format, o.baseIRI, opts...)
}

func triplesToQuads(triples []*rdf.Triple) []*rdf.Quad {
	quads := make([]*rdf.Quad, len(triples))
	for i, t := range triples {
		quads[i] = rdf.NewQuad(t.Subject, t.Predicate, t.Object, nil)
	}
	return quads
}

// Serialize writes quads to w in the given format.
func Serialize(w io.Writer, quads []*rdf.Quad, format string) error {
	format = normalizeFormat(format)
	switch format {
	case FormatNQuads, "":
		return rdf.WriteQuadsCanonical(w, quads)

	case FormatNTriples:
		triples := make([]*rdf.Triple, len(quads))
		for i, q := range quads {
			triples[i] = rdf.NewTriple(q.Subject, q.Predicate, q.Object)
		}
		return rdf.WriteTriplesCanonical(w, triples)

	case FormatTurtle:
		return serializeTurtle(w, quads)

	case FormatTriG:
		return serializeTriG(w, quads)

	case FormatJSONLD:
		return serializeJSONLD(w, quads)

	case FormatRDFXML:
		return fmt.Errorf("%w: RDF/XML serialization is not yet implemented", rdf.ErrSerialize)

	default:
		return fmt.Errorf("%w: unrecognized format %q", rdf.ErrSerialize, format)
	}
}

// SerializeToFile serializes quads to a file, resolving format from the
// path's extension when format is empty.
func SerializeToFile(path string, quads []*rdf.Quad, format string) error {
	if format == "" {
		format = DetectFormat("", path, nil)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %v", rdf.ErrIO, err)
	}
	defer f.Close()
	return Serialize(f, quads, format)
}

// serializeTurtle groups triples by subject, one block per subject, using
// each term's own String() rendering (already valid Turtle/N-Triples
// syntax); it does not attempt prefix compaction or collection shorthand.
func serializeTurtle(w io.Writer, quads []*rdf.Quad) error {
	bySubject := make(map[string][]*rdf.Quad)
	var order []string
	for _, q := range quads {
		key := q.Subject.String()
		if _, seen := bySubject[key]; !seen {
			order = append(order, key)
		}
		bySubject[key] = append(bySubject[key], q)
	}
	for _, key := range order {
		group := bySubject[key]
		if _, err := fmt.Fprintf(w, "%s\n", group[0].Subject.String()); err != nil {
			return err
		}
		for i, q := range group {
			sep := " ;"
			if i == len(group)-1 {
				sep = " ."
			}
			if _, err := fmt.Fprintf(w, "    %s %s%s\n", q.Predicate.String(), q.Object.String(), sep); err != nil {
				return err
			}
		}
	}
	return nil
}

// serializeTriG groups quads by graph, then delegates each graph's triples
// to serializeTurtle inside a `<graph> { ... }` (or bare, for the default
// graph) block.
func serializeTriG(w io.Writer, quads []*rdf.Quad) error {
	byGraph := make(map[string][]*rdf.Quad)
	var order []string
	for _, q := range quads {
		key := ""
		if q.Graph != nil && !rdf.IsDefaultGraph(q.Graph) {
			key = q.Graph.String()
		}
		if _, seen := byGraph[key]; !seen {
			order = append(order, key)
		}
		byGraph[key] = append(byGraph[key], q)
	}
	for _, key := range order {
		group := byGraph[key]
		if key == "" {
			if err := serializeTurtle(w, group); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%s {\n", key); err != nil {
			return err
		}
		if err := serializeTurtle(w, group); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "}\n"); err != nil {
			return err
		}
	}
	return nil
}
