// Package corpus decodes the scraped procedure corpus file.
//
// The file schema is the contract between the scraping pipeline and the
// indexer: a JSON array of documents with French field names preserved
// verbatim. Interoperability with existing corpora depends on those exact
// keys, accents and typographic apostrophe included.
package corpus

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Dayende-ib/guichet/internal/domain"
	"github.com/Dayende-ib/guichet/internal/domain/procedure"
)

// document mirrors one corpus entry. Keys come from the scraper output.
type document struct {
	Titre       string `json:"Titre"`
	Description string `json:"Description"`
	URL         string `json:"Adresse web"`
	Source      string `json:"source"`
	Espace      string `json:"Espace"`
	Theme       string `json:"Thème"`
	Cout        string `json:"Coût(s)"`
	Conditions  string `json:"Conditions d’accès"`
	Infos       string `json:"Informations complémentaires"`
}

// Load reads and validates a corpus file.
func Load(path string) ([]procedure.Procedure, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open corpus %s: %w", path, err)
	}
	defer f.Close()

	procs, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("corpus %s: %w", path, err)
	}
	return procs, nil
}

// Decode parses a JSON corpus stream into validated procedures.
// Validation is all-or-nothing: one malformed document fails the whole
// decode, so a reindex never runs against a partially readable corpus.
func Decode(r io.Reader) ([]procedure.Procedure, error) {
	var docs []document
	if err := json.NewDecoder(r).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode corpus: %w", err)
	}

	procs := make([]procedure.Procedure, 0, len(docs))
	for i, d := range docs {
		p, err := procedure.New(d.Titre, d.Description, d.URL,
			procedure.WithSource(d.Source),
			procedure.WithEspace(d.Espace),
			procedure.WithTheme(d.Theme),
			procedure.WithCout(d.Cout),
			procedure.WithConditions(d.Conditions),
			procedure.WithInfos(d.Infos),
		)
		if err != nil {
			return nil, fmt.Errorf("document [%d]: %w: %w", i, domain.ErrInvalidDocument, err)
		}
		procs = append(procs, p)
	}
	return procs, nil
}
