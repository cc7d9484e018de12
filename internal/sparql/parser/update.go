package parser

import "fmt"

// UpdateOpType identifies which of the four SPARQL 1.1 Update Operation
// forms an UpdateOperation represents.
type UpdateOpType int

const (
	UpdateOpInsertData UpdateOpType = iota
	UpdateOpDeleteData
	UpdateOpInsertDeleteWhere
	UpdateOpDeleteWhere
)

// Update is a parsed SPARQL Update request: a semicolon-separated sequence
// of operations sharing one set of PREFIX bindings.
type Update struct {
	Prefixes   map[string]string
	Operations []*UpdateOperation
}

// QuadData is a single triple, optionally scoped to an explicit named graph
// via a GRAPH <iri> { ... } wrapper inside a DATA or template block. Graph
// is empty when the block left it unspecified; PrepareUpdate fills it with
// the receiving graph's identity.
type QuadData struct {
	Graph  string
	Triple *TriplePattern
}

// UpdateOperation is one operation of an Update: INSERT DATA/DELETE DATA
// carry Data; INSERT/DELETE WHERE and DELETE WHERE carry templates plus a
// WHERE pattern (DeleteTemplate mirrors Where.Patterns for the DELETE WHERE
// shorthand, since there the pattern doubles as its own delete template).
type UpdateOperation struct {
	Type           UpdateOpType
	Data           []*QuadData
	DeleteTemplate []*QuadData
	InsertTemplate []*QuadData
	Where          *GraphPattern
}

// ParseUpdate parses a SPARQL Update request.
func (p *Parser) ParseUpdate() (*Update, error) {
	p.skipWhitespace()

	for {
		p.skipWhitespace()
		if p.matchKeyword("PREFIX") {
			if err := p.skipPrefix(); err != nil {
				return nil, err
			}
		} else if p.matchKeyword("BASE") {
			if err := p.skipBase(); err != nil {
				return nil, err
			}
		} else {
			break
		}
	}

	update := &Update{Prefixes: p.prefixes}

	for {
		p.skipWhitespace()
		if p.pos >= p.length {
			break
		}
		op, err := p.parseUpdateOperation()
		if err != nil {
			return nil, err
		}
		update.Operations = append(update.Operations, op)

		p.skipWhitespace()
		if p.peek() == ';' {
			p.advance()
			continue
		}
		break
	}

	if len(update.Operations) == 0 {
		return nil, fmt.Errorf("empty update request")
	}

	return update, nil
}

func (p *Parser) parseUpdateOperation() (*UpdateOperation, error) {
	if p.matchKeyword("INSERT") {
		if p.matchKeyword("DATA") {
			data, err := p.parseQuadBlock()
			if err != nil {
				return nil, fmt.Errorf("INSERT DATA: %w", err)
			}
			return &UpdateOperation{Type: UpdateOpInsertData, Data: data}, nil
		}
		insertTemplate, err := p.parseQuadBlock()
		if err != nil {
			return nil, fmt.Errorf("INSERT template: %w", err)
		}
		if !p.matchKeyword("WHERE") {
			return nil, fmt.Errorf("expected WHERE after INSERT template")
		}
		where, err := p.parseGraphPattern()
		if err != nil {
			return nil, err
		}
		return &UpdateOperation{Type: UpdateOpInsertDeleteWhere, InsertTemplate: insertTemplate, Where: where}, nil
	}

	if p.matchKeyword("DELETE") {
		if p.matchKeyword("DATA") {
			data, err := p.parseQuadBlock()
			if err != nil {
				return nil, fmt.Errorf("DELETE DATA: %w", err)
			}
			return &UpdateOperation{Type: UpdateOpDeleteData, Data: data}, nil
		}
		if p.matchKeyword("WHERE") {
			where, err := p.parseGraphPattern()
			if err != nil {
				return nil, err
			}
			var quads []*QuadData
			for _, t := range where.Patterns {
				quads = append(quads, &QuadData{Triple: t})
			}
			return &UpdateOperation{Type: UpdateOpDeleteWhere, DeleteTemplate: quads, Where: where}, nil
		}

		deleteTemplate, err := p.parseQuadBlock()
		if err != nil {
			return nil, fmt.Errorf("DELETE template: %w", err)
		}
		op := &UpdateOperation{Type: UpdateOpInsertDeleteWhere, DeleteTemplate: deleteTemplate}
		if p.matchKeyword("INSERT") {
			insertTemplate, err := p.parseQuadBlock()
			if err != nil {
				return nil, fmt.Errorf("INSERT template: %w", err)
			}
			op.InsertTemplate = insertTemplate
		}
		if !p.matchKeyword("WHERE") {
			return nil, fmt.Errorf("expected WHERE after DELETE template")
		}
		where, err := p.parseGraphPattern()
		if err != nil {
			return nil, err
		}
		op.Where = where
		return op, nil
	}

	return nil, fmt.Errorf("expected INSERT or DELETE at start of update operation")
}

// parseQuadBlock parses a `{ ... }` block of triples, some possibly wrapped
// in `GRAPH <iri> { ... }`. Used for both DATA blocks and INSERT/DELETE
// templates: the two only differ in whether variables are semantically
// allowed, which PrepareUpdate does not need to enforce.
func (p *Parser) parseQuadBlock() ([]*QuadData, error) {
	p.skipWhitespace()
	if p.peek() != '{' {
		return nil, fmt.Errorf("expected '{' to start quad block")
	}
	p.advance()

	var quads []*QuadData
	for {
		p.skipWhitespace()
		if p.peek() == '}' {
			p.advance()
			break
		}

		if p.matchKeyword("GRAPH") {
			p.skipWhitespace()
			if p.peek() != '<' {
				return nil, fmt.Errorf("expected IRI after GRAPH")
			}
			iri, err := p.parseIRI()
			if err != nil {
				return nil, err
			}
			p.skipWhitespace()
			if p.peek() != '{' {
				return nil, fmt.Errorf("expected '{' after GRAPH <iri>")
			}
			p.advance()
			for {
				p.skipWhitespace()
				if p.peek() == '}' {
					p.advance()
					break
				}
				t, err := p.parseTriplePattern()
				if err != nil {
					return nil, err
				}
				quads = append(quads, &QuadData{Graph: iri, Triple: t})
				p.skipWhitespace()
				if p.peek() == '.' {
					p.advance()
				}
			}
			p.skipWhitespace()
			if p.peek() == '.' {
				p.advance()
			}
			continue
		}

		t, err := p.parseTriplePattern()
		if err != nil {
			return nil, err
		}
		quads = append(quads, &QuadData{Triple: t})
		p.skipWhitespace()
		if p.peek() == '.' {
			p.advance()
		}
	}

	return quads, nil
}
