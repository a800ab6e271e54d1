// Package procedure defines the administrative-procedure record aggregate.
package procedure

import (
	"fmt"
)

// Defaults for optional metadata fields, applied at the ingestion boundary.
const (
	DefaultSource = "ServicePublic.gov.bf"
	DefaultEspace = "Particuliers"
	DefaultTheme  = "Non spécifié"
	DefaultCout   = "Non spécifié"
)

// Procedure is an administrative-procedure record (immutable value object).
// The ID is assigned at indexing time; all other fields are write-once per
// index cycle — a full reindex wholesale-replaces records.
type Procedure struct {
	id          string
	titre       string
	description string
	url         string
	source      string
	espace      string
	theme       string
	cout        string
	conditions  string
	infos       string
}

// New validates a corpus document and creates a Procedure without an ID
// (the repository assigns one at upsert). Optional metadata fields fall
// back to their documented defaults.
func New(titre, description, url string, opts ...Option) (Procedure, error) {
	if titre == "" {
		return Procedure{}, fmt.Errorf("titre is required")
	}
	if description == "" {
		return Procedure{}, fmt.Errorf("description is required for %q", titre)
	}

	p := Procedure{
		titre:       titre,
		description: description,
		url:         url,
		source:      DefaultSource,
		espace:      DefaultEspace,
		theme:       DefaultTheme,
		cout:        DefaultCout,
	}
	for _, opt := range opts {
		opt(&p)
	}
	return p, nil
}

// Option sets an optional metadata field on a Procedure.
type Option func(*Procedure)

// WithSource overrides the publication source.
func WithSource(source string) Option {
	return func(p *Procedure) {
		if source != "" {
			p.source = source
		}
	}
}

// WithEspace overrides the space/category (e.g. "Particuliers", "Entreprises").
func WithEspace(espace string) Option {
	return func(p *Procedure) {
		if espace != "" {
			p.espace = espace
		}
	}
}

// WithTheme overrides the theme.
func WithTheme(theme string) Option {
	return func(p *Procedure) {
		if theme != "" {
			p.theme = theme
		}
	}
}

// WithCout overrides the cost description.
func WithCout(cout string) Option {
	return func(p *Procedure) {
		if cout != "" {
			p.cout = cout
		}
	}
}

// WithConditions sets the access conditions.
func WithConditions(conditions string) Option {
	return func(p *Procedure) { p.conditions = conditions }
}

// WithInfos sets the supplementary information.
func WithInfos(infos string) Option {
	return func(p *Procedure) { p.infos = infos }
}

// Reconstruct rebuilds a Procedure from storage without validation.
func Reconstruct(id, titre, description, url, source, espace, theme, cout, conditions, infos string) Procedure {
	return Procedure{
		id:          id,
		titre:       titre,
		description: description,
		url:         url,
		source:      source,
		espace:      espace,
		theme:       theme,
		cout:        cout,
		conditions:  conditions,
		infos:       infos,
	}
}

// WithID returns a copy carrying the given storage identifier.
func (p Procedure) WithID(id string) Procedure {
	p.id = id
	return p
}

// ID returns the storage identifier, empty before indexing.
func (p Procedure) ID() string { return p.id }

// Titre returns the procedure title.
func (p Procedure) Titre() string { return p.titre }

// Description returns the procedure body text.
func (p Procedure) Description() string { return p.description }

// URL returns the canonical source URL.
func (p Procedure) URL() string { return p.url }

// Source returns the publication source.
func (p Procedure) Source() string { return p.source }

// Espace returns the space/category.
func (p Procedure) Espace() string { return p.espace }

// Theme returns the theme.
func (p Procedure) Theme() string { return p.theme }

// Cout returns the cost description.
func (p Procedure) Cout() string { return p.cout }

// Conditions returns the access conditions.
func (p Procedure) Conditions() string { return p.conditions }

// Infos returns the supplementary information.
func (p Procedure) Infos() string { return p.infos }

// EmbeddingText is the passage text embedded at index time. Title and
// description are combined for sharper document-level vectors.
func (p Procedure) EmbeddingText() string {
	return fmt.Sprintf("Titre: %s. Description: %s", p.titre, p.description)
}
