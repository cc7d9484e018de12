package testsuite

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// TestManifest is the parsed form of one W3C-style test manifest file (and,
// transitively, every manifest it mf:includes).
type TestManifest struct {
	BaseURI string
	Tests   []TestCase
}

// TestCase is a single entry from a manifest: one conformance test.
type TestCase struct {
	Name        string
	Type        TestType
	Action      string      // Query or data file under test
	Data        []string    // Default-graph data files
	GraphData   []GraphData // Named graph data
	Result      string      // Expected result file
	Approved    bool
	Description string
}

// GraphData names one named graph loaded for a test, as a (graph name,
// source file) pair.
type GraphData struct {
	Name string
	File string
}

// TestType is one of the manifest vocabulary's test classes (SPARQL syntax/
// evaluation/update, or one of this module's own RDF format test classes).
type TestType string

const (
	TestTypePositiveSyntax   TestType = "PositiveSyntaxTest"
	TestTypePositiveSyntax11 TestType = "PositiveSyntaxTest11"
	TestTypeNegativeSyntax   TestType = "NegativeSyntaxTest"
	TestTypeNegativeSyntax11 TestType = "NegativeSyntaxTest11"

	TestTypeQueryEvaluation TestType = "QueryEvaluationTest"

	TestTypeCSVResultFormat  TestType = "CSVResultFormatTest"
	TestTypeTSVResultFormat  TestType = "TSVResultFormatTest"
	TestTypeJSONResultFormat TestType = "JSONResultFormatTest"

	TestTypePositiveUpdateSyntax TestType = "PositiveUpdateSyntaxTest11"
	TestTypeNegativeUpdateSyntax TestType = "NegativeUpdateSyntaxTest11"
	TestTypeUpdateEvaluation     TestType = "UpdateEvaluationTest"

	TestTypeTurtleEval           TestType = "TestTurtleEval"
	TestTypeTurtlePositiveSyntax TestType = "TestTurtlePositiveSyntax"
	TestTypeTurtleNegativeSyntax TestType = "TestTurtleNegativeSyntax"
	TestTypeTurtleNegativeEval   TestType = "TestTurtleNegativeEval"

	TestTypeNTriplesPositiveSyntax TestType = "TestNTriplesPositiveSyntax"
	TestTypeNTriplesNegativeSyntax TestType = "TestNTriplesNegativeSyntax"
	TestTypeNTriplesPositiveC14N   TestType = "TestNTriplesPositiveC14N"

	TestTypeNQuadsPositiveSyntax TestType = "TestNQuadsPositiveSyntax"
	TestTypeNQuadsNegativeSyntax TestType = "TestNQuadsNegativeSyntax"
	TestTypeNQuadsPositiveC14N   TestType = "TestNQuadsPositiveC14N"

	TestTypeTrigEval           TestType = "TestTrigEval"
	TestTypeTrigPositiveSyntax TestType = "TestTrigPositiveSyntax"
	TestTypeTrigNegativeSyntax TestType = "TestTrigNegativeSyntax"
	TestTypeTrigNegativeEval   TestType = "TestTrigNegativeEval"

	TestTypeXMLEval           TestType = "TestXMLEval"
	TestTypeXMLNegativeSyntax TestType = "TestXMLNegativeSyntax"

	TestTypeJSONLDEval           TestType = "TestJSONLDEval"
	TestTypeJSONLDNegativeSyntax TestType = "TestJSONLDNegativeSyntax"
)

// typeMarkers maps each manifest rdf:type token to its TestType, checked in
// this order against a line's text. Order matters: some tokens are
// prefixes of others (PositiveSyntaxTest vs PositiveSyntaxTest11), so the
// longer/more specific tokens are listed first.
var typeMarkers = []struct {
	token string
	typ   TestType
}{
	{"PositiveSyntaxTest11", TestTypePositiveSyntax11},
	{"PositiveSyntaxTest", TestTypePositiveSyntax},
	{"NegativeSyntaxTest11", TestTypeNegativeSyntax11},
	{"NegativeSyntaxTest", TestTypeNegativeSyntax},
	{"CSVResultFormatTest", TestTypeCSVResultFormat},
	{"JSONResultFormatTest", TestTypeJSONResultFormat},
	{"QueryEvaluationTest", TestTypeQueryEvaluation},
	{"TestTurtleNegativeEval", TestTypeTurtleNegativeEval},
	{"TestTurtleEval", TestTypeTurtleEval},
	{"TestTurtlePositiveSyntax", TestTypeTurtlePositiveSyntax},
	{"TestTurtleNegativeSyntax", TestTypeTurtleNegativeSyntax},
	{"TestNTriplesPositiveC14N", TestTypeNTriplesPositiveC14N},
	{"TestNTriplesPositiveSyntax", TestTypeNTriplesPositiveSyntax},
	{"TestNTriplesNegativeSyntax", TestTypeNTriplesNegativeSyntax},
	{"TestNQuadsPositiveC14N", TestTypeNQuadsPositiveC14N},
	{"TestNQuadsPositiveSyntax", TestTypeNQuadsPositiveSyntax},
	{"TestNQuadsNegativeSyntax", TestTypeNQuadsNegativeSyntax},
	{"TestTrigNegativeEval", TestTypeTrigNegativeEval},
	{"TestTrigEval", TestTypeTrigEval},
	{"TestTrigPositiveSyntax", TestTypeTrigPositiveSyntax},
	{"TestTrigNegativeSyntax", TestTypeTrigNegativeSyntax},
	{"TestXMLEval", TestTypeXMLEval},
	{"TestXMLNegativeSyntax", TestTypeXMLNegativeSyntax},
	{"TestJSONLDEval", TestTypeJSONLDEval},
	{"TestJSONLDNegativeSyntax", TestTypeJSONLDNegativeSyntax},
}

func matchTestType(line string) (TestType, bool) {
	for _, m := range typeMarkers {
		if strings.Contains(line, m.token) {
			return m.typ, true
		}
	}
	return "", false
}

// firstAngleBracket returns the text of the first "<...>" span in line.
func firstAngleBracket(line string) (string, bool) {
	parts := strings.SplitN(line, "<", 2)
	if len(parts) < 2 {
		return "", false
	}
	closeIdx := strings.Index(parts[1], ">")
	if closeIdx == -1 {
		return "", false
	}
	return parts[1][:closeIdx], true
}

// angleBracketAfter returns the first "<...>" span in line that occurs
// after marker's position.
func angleBracketAfter(line, marker string) (string, bool) {
	idx := strings.Index(line, marker)
	if idx == -1 {
		return "", false
	}
	return firstAngleBracket(line[idx+len(marker):])
}

// ParseManifest reads a Turtle-syntax manifest by scanning it line by line
// for the mf:/qt:/rdft: vocabulary tokens that matter to the test runner,
// rather than fully parsing it as RDF — W3C manifests are regular enough in
// practice that this covers the corpus without pulling in collection
// (rdf:first/rdf:rest) handling for mf:entries.
func ParseManifest(path string) (*TestManifest, error) {
	return parseManifestWithVisited(path, make(map[string]bool))
}

func parseManifestWithVisited(path string, visited map[string]bool) (*TestManifest, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		absPath = path
	}
	if visited[absPath] {
		return &TestManifest{BaseURI: filepath.Dir(path)}, nil
	}
	visited[absPath] = true

	file, err := os.Open(path) // #nosec G304 - test suite legitimately reads test manifest files
	if err != nil {
		return nil, fmt.Errorf("failed to open manifest: %w", err)
	}
	defer file.Close()

	manifest := &TestManifest{BaseURI: filepath.Dir(path)}

	scanner := bufio.NewScanner(file)
	var currentTest *TestCase
	var inTest, inInclude bool
	var includeFiles []string

	flushTest := func() {
		if currentTest != nil && currentTest.Name != "" && currentTest.Type != "" {
			manifest.Tests = append(manifest.Tests, *currentTest)
		}
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.Contains(line, "mf:include") {
			inInclude = true
			continue
		}
		if inInclude {
			if strings.Contains(line, "<") && strings.Contains(line, ">") {
				for _, part := range strings.Split(line, "<")[1:] {
					if idx := strings.Index(part, ">"); idx != -1 {
						if includeFile := part[:idx]; strings.HasSuffix(includeFile, ".ttl") {
							includeFiles = append(includeFiles, includeFile)
						}
					}
				}
			}
			if strings.Contains(line, ")") && strings.Contains(line, ".") {
				inInclude = false
			}
			continue
		}

		// A test definition can open as <#name>, :name, or prefix:name
		// (e.g. trs:test-1), declared via "rdf:type" or the "a rdft:"/
		// "a mf:" shorthand.
		hasTestType := strings.Contains(line, "rdf:type") || strings.Contains(line, " a rdft:") || strings.Contains(line, " a mf:")
		startsWithTestID := strings.HasPrefix(line, "<#") ||
			strings.HasPrefix(line, ":") ||
			(len(line) > 0 && line[0] != ' ' && line[0] != '#' && strings.Contains(line, ":") &&
				strings.Index(line, ":") < strings.Index(line, " "))

		if startsWithTestID && hasTestType {
			flushTest()
			currentTest = &TestCase{}
			inTest = true
		}

		if !inTest || currentTest == nil {
			continue
		}

		if strings.Contains(line, "mf:name") {
			if parts := strings.Split(line, `"`); len(parts) >= 2 {
				currentTest.Name = parts[1]
			}
		}

		if strings.Contains(line, "rdf:type") || strings.Contains(line, " a mf:") || strings.Contains(line, "a rdft:") {
			if typ, ok := matchTestType(line); ok {
				currentTest.Type = typ
			}
		}

		if strings.Contains(line, "mf:action") || strings.Contains(line, "qt:query") {
			if v, ok := firstAngleBracket(line); ok {
				currentTest.Action = v
			}
		}

		if strings.Contains(line, "qt:data") && !strings.Contains(line, "qt:graphData") {
			if v, ok := angleBracketAfter(line, "qt:data"); ok {
				currentTest.Data = append(currentTest.Data, v)
			}
		}

		if strings.Contains(line, "qt:graphData") {
			if v, ok := angleBracketAfter(line, "qt:graphData"); ok {
				// The graph name is not resolved to an IRI; the file
				// path doubles as the name.
				currentTest.GraphData = append(currentTest.GraphData, GraphData{Name: v, File: v})
			}
		}

		if strings.Contains(line, "mf:result") {
			if v, ok := firstAngleBracket(line); ok {
				currentTest.Result = v
			}
		}

		if strings.Contains(line, "mf:approval") && strings.Contains(line, "Approved") {
			currentTest.Approved = true
		}

		if strings.Contains(line, "rdfs:comment") {
			if parts := strings.Split(line, `"`); len(parts) >= 2 {
				currentTest.Description = parts[1]
			}
		}
	}
	flushTest()

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading manifest: %w", err)
	}

	for _, includeFile := range includeFiles {
		includePath := filepath.Join(manifest.BaseURI, includeFile)
		included, err := parseManifestWithVisited(includePath, visited)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to load included manifest %s: %v\n", includePath, err)
			continue
		}
		resolveRelative(included)
		manifest.Tests = append(manifest.Tests, included.Tests...)
	}

	// A QueryEvaluationTest whose result file is .tsv is really a TSV
	// result-format test; the manifest vocabulary doesn't say so directly.
	for i := range manifest.Tests {
		if manifest.Tests[i].Type == TestTypeQueryEvaluation && strings.HasSuffix(manifest.Tests[i].Result, ".tsv") {
			manifest.Tests[i].Type = TestTypeTSVResultFormat
		}
	}

	return manifest, nil
}

// resolveRelative rewrites every path in an included manifest's tests to be
// absolute, relative to that manifest's own directory, before its tests are
// merged into the parent (whose BaseURI would otherwise be used instead).
func resolveRelative(m *TestManifest) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		resolved, err := filepath.Abs(filepath.Join(m.BaseURI, p))
		if err != nil {
			return p
		}
		return resolved
	}
	for i := range m.Tests {
		test := &m.Tests[i]
		test.Action = abs(test.Action)
		test.Result = abs(test.Result)
		for j := range test.Data {
			test.Data[j] = abs(test.Data[j])
		}
		for j := range test.GraphData {
			test.GraphData[j].File = abs(test.GraphData[j].File)
		}
	}
}

// ResolveFile resolves a relative file path against the manifest base URI.
func (m *TestManifest) ResolveFile(relPath string) string {
	if filepath.IsAbs(relPath) {
		return relPath
	}
	return filepath.Join(m.BaseURI, relPath)
}

// fileToIRI converts a file path to a file:// IRI following W3C test suite
// conventions.
func (m *TestManifest) fileToIRI(relPath string) string {
	absPath := filepath.ToSlash(m.ResolveFile(relPath))
	if !strings.HasPrefix(absPath, "/") {
		absPath = "/" + absPath
	}
	return "file://" + absPath
}
