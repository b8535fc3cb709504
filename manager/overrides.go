package manager

import (
	"slices"

	"github.com/maruel/natural"

	"sizekit/css"
)

// Override is a generated token redefined by a stylesheet.
type Override struct {
	Name      string
	Generated string
	Value     string
	Selector  string
	Media     string
}

// Report lists differences between a stylesheet and the active sheet.
type Report struct {
	Overridden []Override
	// Unchanged lists tokens declared with exactly the generated value.
	Unchanged []string
	// Unknown lists custom properties which are not generated tokens.
	Unknown []string
}

// Overrides reads custom properties from sheet and compares them with tokens
// generated for active configuration. Every declaration is reported, so a
// token redefined under several selectors appears several times.
func (m *Manager) Overrides(sheet []byte) Report {
	generated := m.Tokens(m.Config())
	parsed := css.NewReader(m.log).Read(sheet)

	var r Report
	for _, p := range parsed.Properties {
		gen, ok := generated[p.Name]
		switch {
		case !ok:
			r.Unknown = append(r.Unknown, p.Name)
		case gen == p.Value:
			r.Unchanged = append(r.Unchanged, p.Name)
		default:
			r.Overridden = append(r.Overridden, Override{
				Name:      p.Name,
				Generated: gen,
				Value:     p.Value,
				Selector:  p.Selector,
				Media:     p.Media,
			})
		}
	}

	slices.SortStableFunc(r.Overridden, func(a, b Override) int {
		return compareNatural(a.Name, b.Name)
	})
	r.Unchanged = sortedUnique(r.Unchanged)
	r.Unknown = sortedUnique(r.Unknown)
	return r
}

func compareNatural(a, b string) int {
	switch {
	case natural.Less(a, b):
		return -1
	case natural.Less(b, a):
		return 1
	}
	return 0
}

func sortedUnique(names []string) []string {
	slices.SortFunc(names, compareNatural)
	return slices.Compact(names)
}
