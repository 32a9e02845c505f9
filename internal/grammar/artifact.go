package grammar

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
)

// The compiled-grammar artifact is a gob stream: a record count, then that
// many (key, grammar) records. The loader binds each grammar to the
// smalltalk rule carrying the same key.

// WriteArtifact serializes grammars in artifact order.
func WriteArtifact(w io.Writer, grammars []*Grammar) error {
	enc := gob.NewEncoder(w)
	if err := enc.Encode(len(grammars)); err != nil {
		return fmt.Errorf("encode grammar count: %w", err)
	}
	for _, g := range grammars {
		if err := enc.Encode(g.Key); err != nil {
			return fmt.Errorf("encode grammar key %q: %w", g.Key, err)
		}
		if err := enc.Encode(g); err != nil {
			return fmt.Errorf("encode grammar %q: %w", g.Key, err)
		}
	}
	return nil
}

// ReadArtifact decodes an artifact stream into a key->grammar map. Any
// malformed record fails the whole read.
func ReadArtifact(r io.Reader) (map[string]*Grammar, error) {
	dec := gob.NewDecoder(r)
	var n int
	if err := dec.Decode(&n); err != nil {
		return nil, fmt.Errorf("decode grammar count: %w", err)
	}
	if n < 0 {
		return nil, fmt.Errorf("negative grammar count %d", n)
	}
	grammars := make(map[string]*Grammar, n)
	for i := 0; i < n; i++ {
		var key string
		if err := dec.Decode(&key); err != nil {
			return nil, fmt.Errorf("decode key of grammar %d/%d: %w", i+1, n, err)
		}
		var g Grammar
		if err := dec.Decode(&g); err != nil {
			return nil, fmt.Errorf("decode grammar %q: %w", key, err)
		}
		g.Key = key
		grammars[key] = &g
	}
	return grammars, nil
}

// ReadArtifactFile loads an artifact from disk.
func ReadArtifactFile(path string) (map[string]*Grammar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open grammar artifact: %w", err)
	}
	defer f.Close()
	return ReadArtifact(f)
}
