package graph

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFromString_PopulatesAGraphFromTurtle(t *testing.T) {
	ttl := `<http://ex/s> <http://ex/p> "o" .`
	g, err := FromString(ttl, "turtle", "")
	if err != nil {
		t.Fatalf("FromString: %v", err)
	}
	it, err := g.Quads(context.Background())
	if err != nil {
		t.Fatalf("Quads: %v", err)
	}
	defer it.Close()
	count := 0
	for it.Next() {
		if _, err := it.Quad(); err != nil {
			t.Fatalf("Quad: %v", err)
		}
		count++
	}
	if count != 1 {
		t.Fatalf("expected 1 quad, got %d", count)
	}
}

func TestFromString_PropagatesParseError(t *testing.T) {
	if _, err := FromString("<http://ex/s>", "turtle", ""); err == nil {
		t.Fatal("expected a parse error to propagate")
	}
}

func TestFromFile_ResolvesFormatByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "data.nt")
	content := "<http://ex/s> <http://ex/p> \"o\" .\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	g, err := FromFile(path, "")
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	it, err := g.Quads(context.Background())
	if err != nil {
		t.Fatalf("Quads: %v", err)
	}
	defer it.Close()
	if !it.Next() {
		t.Fatal("expected at least one quad")
	}
}
