package tools

import (
	"fmt"
	"strings"
	"time"

	"github.com/sokoni-labs/sokoni/core/types"
)

// countryPrefixes recognized as already-international numbers.
var countryPrefixes = []string{"225", "33", "1"}

// NormalizePhone brings a customer phone number to +<country><number>
// form. It accepts anything readable (spaces, dashes, 00 prefix,
// national 0-prefixed numbers) so a sale is never blocked on formatting.
func NormalizePhone(phone, defaultCountryCode string) string {
	normalized := strings.TrimSpace(phone)
	for _, c := range []string{" ", "-", "(", ")", "."} {
		normalized = strings.ReplaceAll(normalized, c, "")
	}
	if normalized == "" {
		return ""
	}

	if strings.HasPrefix(normalized, "00") {
		normalized = "+" + normalized[2:]
	}
	if strings.HasPrefix(normalized, "+") {
		return normalized
	}
	for _, prefix := range countryPrefixes {
		if strings.HasPrefix(normalized, prefix) {
			return "+" + normalized
		}
	}
	if strings.HasPrefix(normalized, "0") && len(normalized) >= 8 {
		return "+" + defaultCountryCode + normalized[1:]
	}

	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, normalized)
	return "+" + defaultCountryCode + digits
}

// checkStock reports whether quantity units can be sold.
func checkStock(p types.Product, quantity int64) (available int64, ok bool) {
	if p.Unlimited() {
		return -1, true
	}
	return p.StockQuantity, p.StockQuantity >= quantity
}

// findProduct scores catalogue entries against the model-supplied name
// and returns the best match, or nil when nothing scores high enough.
// Exact name beats substring containment beats keyword hits.
func findProduct(products []types.Product, name string) *types.Product {
	searchName := strings.ToLower(strings.TrimSpace(name))
	if searchName == "" {
		return nil
	}
	terms := []string{}
	for _, w := range strings.Fields(searchName) {
		if len(w) > 2 {
			terms = append(terms, w)
		}
	}

	var best *types.Product
	bestScore := 0
	for i := range products {
		p := &products[i]
		productName := strings.ToLower(p.Name)
		score := 0
		switch {
		case productName == searchName:
			score = 100
		case strings.Contains(searchName, productName) || strings.Contains(productName, searchName):
			score = 50
		default:
			for _, term := range terms {
				if strings.Contains(productName, term) {
					score += 10
				}
			}
			if score < 20 {
				productText := strings.ToLower(p.Name + " " + p.Description + " " + p.SellerNote)
				for _, term := range terms {
					if strings.Contains(productText, term) {
						score += 2
					}
				}
			}
		}
		if score > bestScore {
			bestScore = score
			best = p
		}
	}
	if bestScore >= 10 {
		return best
	}
	return nil
}

func productNames(products []types.Product) string {
	names := make([]string, 0, len(products))
	for _, p := range products {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}

var dateLayouts = []string{"2006-01-02", "02/01/2006", "2006/01/02", "02-01-2006"}

// parsePreferredDate combines a customer-supplied date and optional time
// into a concrete timestamp. Missing times default to 09:00. Dates that
// do not parse, or that lie in the past, are rejected.
func parsePreferredDate(date, tm string, now time.Time) (time.Time, error) {
	date = strings.TrimSpace(date)
	if tm == "" {
		tm = "09:00"
	}

	var day time.Time
	var err error
	for _, layout := range dateLayouts {
		day, err = time.ParseInLocation(layout, date, now.Location())
		if err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("unparsable date %q", date)
	}

	clock, err := time.Parse("15:04", strings.TrimSpace(tm))
	if err != nil {
		return time.Time{}, fmt.Errorf("unparsable time %q", tm)
	}

	at := time.Date(day.Year(), day.Month(), day.Day(), clock.Hour(), clock.Minute(), 0, 0, now.Location())
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if at.Before(today) {
		return time.Time{}, fmt.Errorf("date %q is in the past", date)
	}
	return at, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
