package session

// Modality classifies an utterance.
type Modality string

const (
	ModalityUnknown    Modality = ""
	ModalityQuestion   Modality = "question"
	ModalityImperative Modality = "imperative"
	ModalityAssertion  Modality = "assertion"
)

// Grammatical person of an utterance, as reported by the modality model.
// PersonUnknown is used when the model gives no opinion.
const (
	PersonUnknown = 0
	PersonFirst   = 1
	PersonSecond  = 2
	PersonThird   = 3
)

// InterpretedPhrase is one fully classified utterance. It is created once
// per turn, its modality is fixed before it enters the history, and history
// entries are never mutated afterwards.
type InterpretedPhrase struct {
	Raw    string // utterance as received
	Text   string // resolved/canonical text used by downstream stages
	Intent string

	modality Modality
	person   int

	// IsBot marks utterances the bot itself emitted (or synthesized probes).
	IsBot bool
}

// NewPhrase starts a phrase whose resolved text defaults to the raw text.
func NewPhrase(raw string) *InterpretedPhrase {
	return &InterpretedPhrase{Raw: raw, Text: raw}
}

// SetModality fixes modality and person. The first call wins; later calls
// are ignored so a phrase already in the history cannot change shape.
func (p *InterpretedPhrase) SetModality(m Modality, person int) {
	if p.modality != ModalityUnknown {
		return
	}
	p.modality = m
	p.person = person
}

// ForceQuestion reclassifies the phrase as a question while keeping the
// detected person. Used when the caller demands question answering.
func (p *InterpretedPhrase) ForceQuestion() {
	p.modality = ModalityQuestion
}

func (p *InterpretedPhrase) Modality() Modality { return p.modality }
func (p *InterpretedPhrase) Person() int        { return p.person }

func (p *InterpretedPhrase) IsQuestion() bool   { return p.modality == ModalityQuestion }
func (p *InterpretedPhrase) IsImperative() bool { return p.modality == ModalityImperative }
func (p *InterpretedPhrase) IsAssertion() bool  { return p.modality == ModalityAssertion }
