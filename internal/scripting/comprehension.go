package scripting

import "go-dialog/internal/textutil"

// ComprehensionTable maps free-form ways of saying something onto one
// canonical phrase, e.g. an imperative "назови свое имя" onto the question
// "как тебя зовут?". The interpreter searches variants by similarity and,
// above its threshold, adopts the anchor.
type ComprehensionTable struct {
	variants []string          // canonized variant phrases, lookup order
	anchor   map[string]string // canonized variant -> anchor phrase
}

func NewComprehensionTable() *ComprehensionTable {
	return &ComprehensionTable{anchor: make(map[string]string)}
}

// Add registers one variant->anchor pair. Later duplicates of a variant
// are ignored so the first registration wins.
func (t *ComprehensionTable) Add(anchor, variant string) {
	v := textutil.Canonize(variant)
	if _, exists := t.anchor[v]; exists {
		return
	}
	t.variants = append(t.variants, v)
	t.anchor[v] = anchor
}

// Variants lists the canonized variant phrases in registration order, the
// candidate set for the similarity search.
func (t *ComprehensionTable) Variants() []string { return t.variants }

// AnchorFor returns the canonical phrase for a canonized variant.
func (t *ComprehensionTable) AnchorFor(variant string) (string, bool) {
	a, ok := t.anchor[textutil.Canonize(variant)]
	return a, ok
}

// Len counts registered variants.
func (t *ComprehensionTable) Len() int { return len(t.variants) }
