// Package registry holds the carbon registry data model and the document
// operations exposed by the API.
package registry

import "fmt"

// Kind identifies one of the three registry lists in the document.
type Kind string

const (
	KindCarbon Kind = "carbon"
	KindRec    Kind = "rec"
	KindEts    Kind = "ets"
)

// ParseKind validates a registry type path segment.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindCarbon, KindRec, KindEts:
		return Kind(s), nil
	}
	return "", fmt.Errorf("unknown registry type %q", s)
}

// Entry is a single registry listed in the dataset.
type Entry struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Country  string  `json:"country"`
	Region   string  `json:"region,omitempty"`
	Website  string  `json:"website,omitempty"`
	Status   string  `json:"status,omitempty"`
	Issued   float64 `json:"issued"`
	Retired  float64 `json:"retired"`
	Standard string  `json:"standard,omitempty"`
	Notes    string  `json:"notes,omitempty"`
}

// CategoryTotals aggregates one registry list.
type CategoryTotals struct {
	Registries int     `json:"registries"`
	Issued     float64 `json:"issued"`
	Retired    float64 `json:"retired"`
}

// EtsTotals aggregates the ETS list, which tracks no credit volumes.
type EtsTotals struct {
	Registries int `json:"registries"`
}

// Totals is the derived summary block stored alongside the lists.
type Totals struct {
	Carbon          CategoryTotals `json:"carbon"`
	Rec             CategoryTotals `json:"rec"`
	Ets             EtsTotals      `json:"ets"`
	TotalRegistries int            `json:"totalRegistries"`
	TotalCountries  int            `json:"totalCountries"`
}

// Data is the whole registry document.
type Data struct {
	CarbonRegistries []Entry `json:"carbonRegistries"`
	RecRegistries    []Entry `json:"recRegistries"`
	EtsRegistries    []Entry `json:"etsRegistries"`
	Totals           *Totals `json:"totals,omitempty"`
	LastUpdated      string  `json:"lastUpdated,omitempty"`
}

// List returns the entry slice for the given kind.
func (d *Data) List(kind Kind) []Entry {
	switch kind {
	case KindCarbon:
		return d.CarbonRegistries
	case KindRec:
		return d.RecRegistries
	case KindEts:
		return d.EtsRegistries
	}
	return nil
}

func (d *Data) setList(kind Kind, entries []Entry) {
	switch kind {
	case KindCarbon:
		d.CarbonRegistries = entries
	case KindRec:
		d.RecRegistries = entries
	case KindEts:
		d.EtsRegistries = entries
	}
}

// CalculateTotals recomputes the summary block from the current lists.
// Countries are counted once across all three lists; blanks are ignored.
func CalculateTotals(d *Data) Totals {
	carbon := CategoryTotals{Registries: len(d.CarbonRegistries)}
	for _, e := range d.CarbonRegistries {
		carbon.Issued += e.Issued
		carbon.Retired += e.Retired
	}

	rec := CategoryTotals{Registries: len(d.RecRegistries)}
	for _, e := range d.RecRegistries {
		rec.Issued += e.Issued
		rec.Retired += e.Retired
	}

	countries := make(map[string]struct{})
	for _, list := range [][]Entry{d.CarbonRegistries, d.RecRegistries, d.EtsRegistries} {
		for _, e := range list {
			if e.Country != "" {
				countries[e.Country] = struct{}{}
			}
		}
	}

	return Totals{
		Carbon:          carbon,
		Rec:             rec,
		Ets:             EtsTotals{Registries: len(d.EtsRegistries)},
		TotalRegistries: len(d.CarbonRegistries) + len(d.RecRegistries) + len(d.EtsRegistries),
		TotalCountries:  len(countries),
	}
}

// UpdateEntry replaces the entry with the given ID. Returns false if no entry
// matched.
func (d *Data) UpdateEntry(kind Kind, id string, updated Entry) bool {
	entries := d.List(kind)
	for i := range entries {
		if entries[i].ID == id {
			updated.ID = id
			entries[i] = updated
			return true
		}
	}
	return false
}

// AddEntry appends a new entry to the named list.
func (d *Data) AddEntry(kind Kind, entry Entry) {
	d.setList(kind, append(d.List(kind), entry))
}

// DeleteEntry removes the entry with the given ID. Returns false if no entry
// matched.
func (d *Data) DeleteEntry(kind Kind, id string) bool {
	entries := d.List(kind)
	for i := range entries {
		if entries[i].ID == id {
			d.setList(kind, append(entries[:i], entries[i+1:]...))
			return true
		}
	}
	return false
}
