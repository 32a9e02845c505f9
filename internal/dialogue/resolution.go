package dialogue

// resolutionKind tells how (and whether) a raw utterance was rewritten into
// a context-free text before downstream matching.
type resolutionKind int

const (
	resUnresolved resolutionKind = iota
	resAnaphora
	resEllipsis
	resTemplateTranslated
)

func (k resolutionKind) String() string {
	switch k {
	case resAnaphora:
		return "anaphora"
	case resEllipsis:
		return "ellipsis"
	case resTemplateTranslated:
		return "template"
	default:
		return "unresolved"
	}
}

type resolution struct {
	kind resolutionKind
	text string
}

func (r resolution) resolved() bool {
	return r.kind != resUnresolved
}
