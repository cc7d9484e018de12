package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/geoknoesis/rdfgraph/pkg/rdf"
	"github.com/piprate/json-gold/ld"
)

// parseJSONLD expands and flattens a JSON-LD document via json-gold's
// processor, asking it to serialize straight to N-Quads so the result can
// be handed to the same N-Quads parser every other format's quads pass
// through on the way into a graph.
func parseJSONLD(data, baseIRI string) ([]*rdf.Quad, error) {
	var doc interface{}
	if err := json.Unmarshal([]byte(data), &doc); err != nil {
		return nil, fmt.Errorf("decoding JSON-LD document: %w", err)
	}

	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions(baseIRI)
	opts.Format = FormatNQuads

	out, err := proc.ToRDF(doc, opts)
	if err != nil {
		return nil, fmt.Errorf("expanding JSON-LD to RDF: %w", err)
	}
	nquads, ok := out.(string)
	if !ok {
		return nil, fmt.Errorf("json-gold ToRDF returned %T, expected N-Quads text", out)
	}

	p := rdf.NewNQuadsParser(nquads)
	return p.Parse()
}

// serializeJSONLD renders quads as expanded JSON-LD by round-tripping
// through json-gold's N-Quads-to-JSON-LD conversion: encode to canonical
// N-Quads (every other serializer's format of record), hand that text to
// json-gold's dataset parser, then ask it to produce JSON-LD objects. The
// output is not compacted and carries no @context.
func serializeJSONLD(w io.Writer, quads []*rdf.Quad) error {
	nquads := rdf.SerializeQuadsCanonical(quads)

	dataset, err := ld.ParseNQuads(nquads)
	if err != nil {
		return fmt.Errorf("parsing intermediate N-Quads for json-gold: %w", err)
	}

	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions("")

	expanded, err := proc.FromRDF(dataset, opts)
	if err != nil {
		return fmt.Errorf("converting RDF to JSON-LD: %w", err)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(expanded)
}
