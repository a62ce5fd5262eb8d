// Package pricing computes the effective unit price of a catalog
// product from the customer's variant selections. It is the single
// source of truth the tool executors use: the model's arithmetic is
// never trusted.
package pricing

import (
	"errors"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/sokoni-labs/sokoni/core/types"
)

// ErrAmbiguousFixedGroups flags a product configured with more than one
// fixed-mode variant group. There is no well-defined winner, so the
// catalog owner has to fix the product instead of the engine silently
// letting the last group overwrite the price.
var ErrAmbiguousFixedGroups = errors.New("product has more than one fixed-mode variant group")

// Resolution is the outcome of pricing one product. UnitPrice, Label
// and Selected are only meaningful when Finalizable() is true; a
// partial resolution keeps the bare product name and a zero price so it
// can never be mistaken for a sellable quote.
type Resolution struct {
	UnitPrice int64
	// Label is the product name followed by each selected option value,
	// e.g. "T-Shirt Noir L". This exact string must be used as the
	// line-item name of any created order.
	Label string
	// Selected maps group name to the canonical option value matched.
	Selected map[string]string
	// Missing lists the variant groups still lacking a selection.
	Missing []types.VariantGroup
}

// Finalizable reports whether the price may be used for a transaction.
func (r Resolution) Finalizable() bool {
	return len(r.Missing) == 0
}

// MissingNames returns the names of the unselected groups.
func (r Resolution) MissingNames() []string {
	names := make([]string, 0, len(r.Missing))
	for _, g := range r.Missing {
		names = append(names, g.Name)
	}
	return names
}

// Resolve prices a product against the given selections. freeText is
// the product name as the model typed it; option values embedded there
// ("T-Shirt L") count as selections when no explicit one was given.
//
// Fixed groups replace the base price with the chosen option's price
// (a zero-priced option keeps the base); additive groups sum on top.
// Groups without options are malformed catalog data and are skipped.
func Resolve(p types.Product, selections map[string]string, freeText string) (Resolution, error) {
	res := Resolution{
		UnitPrice: p.Price,
		Label:     p.Name,
		Selected:  map[string]string{},
	}

	if !p.HasRealVariants() {
		return res, nil
	}

	fixedGroups := 0
	for _, g := range p.Variants {
		if g.HasOptions() && g.Mode == types.PricingFixed {
			fixedGroups++
		}
	}
	if fixedGroups > 1 {
		return Resolution{}, ErrAmbiguousFixedGroups
	}

	base := p.Price
	var supplements int64

	for _, g := range p.Variants {
		if !g.HasOptions() {
			continue
		}

		opt := matchSelection(g, selections, freeText)
		if opt == nil {
			// Supplements are optional by nature; only non-additive
			// groups block the sale.
			if g.Mode != types.PricingAdditive {
				res.Missing = append(res.Missing, g)
			}
			continue
		}

		res.Selected[g.Name] = opt.Value
		switch g.Mode {
		case types.PricingAdditive:
			supplements += opt.Price
		default:
			if opt.Price > 0 {
				base = opt.Price
			}
		}
	}

	if len(res.Missing) > 0 {
		res.UnitPrice = 0
		return res, nil
	}

	res.UnitPrice = base + supplements
	for _, g := range p.Variants {
		if v, ok := res.Selected[g.Name]; ok {
			res.Label += " " + v
		}
	}
	return res, nil
}

func matchSelection(g types.VariantGroup, selections map[string]string, freeText string) *types.VariantOption {
	for key, value := range selections {
		if fold(key) == fold(g.Name) {
			if opt := MatchOption(g, value); opt != nil {
				return opt
			}
		}
	}

	// The model often folds the choice into the product name itself.
	// The longest embedded value wins so "T-Shirt XL" never resolves to
	// the "L" option.
	if freeText != "" {
		text := fold(freeText)
		var best *types.VariantOption
		bestLen := 0
		for i := range g.Options {
			v := fold(g.Options[i].Value)
			if v != "" && strings.Contains(text, v) && len(v) > bestLen {
				best = &g.Options[i]
				bestLen = len(v)
			}
		}
		if best != nil {
			return best
		}
	}

	return nil
}

// MatchOption finds the option a customer-supplied value refers to,
// tolerating case, accents and partial values ("marine" matches
// "Bleu Marine").
func MatchOption(g types.VariantGroup, value string) *types.VariantOption {
	if value == "" {
		return nil
	}
	want := fold(value)

	for i := range g.Options {
		if fold(g.Options[i].Value) == want {
			return &g.Options[i]
		}
	}
	for i := range g.Options {
		have := fold(g.Options[i].Value)
		if strings.Contains(have, want) || strings.Contains(want, have) {
			return &g.Options[i]
		}
	}
	return nil
}

var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold lowercases and strips diacritics for tolerant matching.
func fold(s string) string {
	out, _, err := transform.String(foldTransformer, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}
