// Package answer defines the composed answer returned to callers.
package answer

// Source is a cited document reference.
type Source struct {
	Titre string
	URL   string
}

// Answer is the generated text plus its cited sources.
type Answer struct {
	text    string
	sources []Source
}

// New creates an answer.
func New(text string, sources []Source) Answer {
	return Answer{text: text, sources: sources}
}

// Text returns the generated answer text.
func (a Answer) Text() string { return a.text }

// Sources returns the cited sources, one per ranked document used.
func (a Answer) Sources() []Source { return a.sources }
