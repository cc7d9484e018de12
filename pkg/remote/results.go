package remote

import (
	"encoding/json"
	"fmt"

	"github.com/geoknoesis/rdfgraph/pkg/rdf"
	"github.com/geoknoesis/rdfgraph/pkg/rdf/codec"
	"github.com/geoknoesis/rdfgraph/pkg/sparql"
	"github.com/geoknoesis/rdfgraph/pkg/store"
)

// DecodeQueryResponse turns a backend's raw response body into a
// QueryResponse, dispatching on query kind: SELECT/ASK decode the SPARQL
// results JSON format (§4.6.4), CONSTRUCT/DESCRIBE decode through the
// format codec using the backend's negotiated contentType (N-Triples or
// TriG-star). Quoted triples do not come back as QuotedTriple terms: see
// normalizeStarContentType.
func DecodeQueryResponse(kind sparql.QueryKind, contentType string, body []byte) (*QueryResponse, error) {
	switch kind {
	case sparql.Select:
		return decodeSelectResultsJSON(body)
	case sparql.Ask:
		return decodeAskResultJSON(body)
	default:
		quads, err := codec.ParseString(string(body), normalizeStarContentType(contentType), "")
		if err != nil {
			return nil, err
		}
		return &QueryResponse{Quads: quads}, nil
	}
}

// normalizeStarContentType maps the RDF-star content-type variants the
// backends negotiate for CONSTRUCT/DESCRIBE onto the codec package's
// corresponding base format; there is no separate "-star" format constant
// on the parsing side. The TriG parser hands << s p o >> to the Turtle
// parser, which turns it into a blank-node reifier with an rdf:reifies
// triple. The strict N-Triples parser rejects << s p o >> and accepts only
// <<( s p o )>> triple terms in object position.
func normalizeStarContentType(contentType string) string {
	switch contentType {
	case "application/x-trig-star":
		return codec.FormatTriG
	case "application/n-triples-star", "application/n-triples":
		return codec.FormatNTriples
	default:
		return contentType
	}
}

// SPARQL JSON Results Format: https://www.w3.org/TR/sparql11-results-json/
// This is the client-side mirror of the teacher's own encoder
// (pkg/server/results): the wire shape is identical, only the direction of
// conversion (JSON -> rdf.Term rather than rdf.Term -> JSON) differs.

type sparqlResultsJSON struct {
	Head    resultHead      `json:"head"`
	Results *resultBindings `json:"results,omitempty"`
	Boolean *bool           `json:"boolean,omitempty"`
}

type resultHead struct {
	Vars []string `json:"vars"`
}

type resultBindings struct {
	Bindings []map[string]bindingValue `json:"bindings"`
}

type bindingValue struct {
	Type     string  `json:"type"`
	Value    string  `json:"value"`
	Datatype *string `json:"datatype,omitempty"`
	XMLLang  *string `json:"xml:lang,omitempty"`
}

// decodeSelectResultsJSON decodes a SELECT response body into a
// QueryResponse carrying Variables and Bindings.
func decodeSelectResultsJSON(body []byte) (*QueryResponse, error) {
	var parsed sparqlResultsJSON
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", rdf.ErrBindingDecode, err)
	}
	resp := &QueryResponse{Variables: parsed.Head.Vars}
	if parsed.Results == nil {
		return resp, nil
	}
	for _, row := range parsed.Results.Bindings {
		binding := store.NewBinding()
		for varName, bv := range row {
			term, err := bindingValueToTerm(bv)
			if err != nil {
				return nil, err
			}
			binding.Vars[varName] = term
		}
		resp.Bindings = append(resp.Bindings, binding)
	}
	return resp, nil
}

// decodeAskResultJSON decodes an ASK response body into a QueryResponse
// carrying Boolean.
func decodeAskResultJSON(body []byte) (*QueryResponse, error) {
	var parsed sparqlResultsJSON
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", rdf.ErrBindingDecode, err)
	}
	if parsed.Boolean == nil {
		return nil, fmt.Errorf("%w: ASK response carried no boolean field", rdf.ErrBindingDecode)
	}
	return &QueryResponse{Boolean: parsed.Boolean}, nil
}

// bindingValueToTerm decodes one {type,value,datatype?,xml:lang?} entry per
// the RDF/JS term conventions the results JSON format shares with it.
func bindingValueToTerm(bv bindingValue) (rdf.Term, error) {
	switch bv.Type {
	case "uri":
		return rdf.NewNamedNode(bv.Value), nil
	case "bnode":
		return rdf.NewBlankNode(bv.Value), nil
	case "literal", "typed-literal":
		if bv.XMLLang != nil && *bv.XMLLang != "" {
			return rdf.NewLiteralWithLanguage(bv.Value, *bv.XMLLang), nil
		}
		if bv.Datatype != nil && *bv.Datatype != "" {
			return rdf.NewLiteralWithDatatype(bv.Value, rdf.NewNamedNode(*bv.Datatype)), nil
		}
		return rdf.NewLiteral(bv.Value), nil
	default:
		return nil, fmt.Errorf("%w: unrecognized binding type %q", rdf.ErrBindingDecode, bv.Type)
	}
}
