// Package prompt assembles the per-turn instruction context handed to the
// completion call. Sections are emitted in a fixed order because later
// sections reference earlier ones (the tool guide names catalogue fields,
// seller rules override the principles above them).
package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/sokoni-labs/sokoni/core/types"
	"github.com/sokoni-labs/sokoni/pkg/xstrings"
)

const defaultBulkThreshold = 50

// Input carries everything one Synthesize call needs. There is no
// ambient agent lookup: the caller supplies the full bundle.
type Input struct {
	Agent     types.Agent
	Products  []types.Product
	History   types.CustomerHistory
	Knowledge []types.KnowledgeSnippet
	Currency  string
}

type sectionData struct {
	Agent           types.Agent
	Language        string
	BulkThreshold   int
	EscalationPhone string
	MapLink         string
	Hours           string
	Snippets        []types.KnowledgeSnippet
}

// Synthesizer renders instruction contexts. Templates are parsed once
// at construction.
type Synthesizer struct {
	identity    *template.Template
	principles  *template.Template
	toolGuide   *template.Template
	business    *template.Template
	knowledge   *template.Template
	customRules *template.Template
}

func NewSynthesizer() (*Synthesizer, error) {
	s := &Synthesizer{}
	for _, t := range []struct {
		name string
		text string
		dst  **template.Template
	}{
		{"identity", identityTemplate, &s.identity},
		{"principles", principlesTemplate, &s.principles},
		{"toolGuide", toolGuideTemplate, &s.toolGuide},
		{"businessInfo", businessInfoTemplate, &s.business},
		{"knowledge", knowledgeTemplate, &s.knowledge},
		{"customRules", customRulesTemplate, &s.customRules},
	} {
		tmpl, err := templateBase(t.name, t.text)
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", t.name, err)
		}
		*t.dst = tmpl
	}
	return s, nil
}

// Synthesize builds the full instruction context as one ordered text
// block. It is pure: no I/O, no retrieval, no clock.
func (s *Synthesizer) Synthesize(in Input) (string, error) {
	data := sectionData{
		Agent:           in.Agent,
		Language:        in.Agent.Language,
		BulkThreshold:   in.Agent.BulkOrderThreshold,
		EscalationPhone: in.Agent.EscalationPhone,
		MapLink:         mapsLink(in.Agent.Latitude, in.Agent.Longitude),
		Hours:           formatHours(in.Agent.BusinessHours),
		Snippets:        in.Knowledge,
	}
	if data.Language == "" {
		data.Language = "French"
	}
	if data.BulkThreshold <= 0 {
		data.BulkThreshold = defaultBulkThreshold
	}
	if data.EscalationPhone == "" {
		data.EscalationPhone = in.Agent.ContactPhone
	}

	sections := []string{}
	for _, tmpl := range []*template.Template{s.identity, s.principles, s.toolGuide} {
		out, err := templateExecute(tmpl, data)
		if err != nil {
			return "", err
		}
		sections = append(sections, out)
	}

	sections = append(sections,
		catalogSection(in.Products, in.Currency),
		historySection(in.History, in.Currency))

	business, err := templateExecute(s.business, data)
	if err != nil {
		return "", err
	}
	sections = append(sections, business)

	if len(in.Knowledge) > 0 {
		out, err := templateExecute(s.knowledge, data)
		if err != nil {
			return "", err
		}
		sections = append(sections, out)
	}

	if strings.TrimSpace(in.Agent.CustomRules) != "" {
		out, err := templateExecute(s.customRules, data)
		if err != nil {
			return "", err
		}
		sections = append(sections, out)
	}

	return strings.Join(sections, "\n\n"), nil
}

func catalogSection(products []types.Product, currency string) string {
	var b strings.Builder
	b.WriteString("===================================================\n")
	b.WriteString("CATALOGUE\n")
	b.WriteString("===================================================\n")

	if len(products) == 0 {
		b.WriteString("No products are available at the moment.")
		return b.String()
	}

	byID := make(map[string]string, len(products))
	for _, p := range products {
		byID[p.ID] = p.Name
	}

	symbol := currencySymbol(currency)
	for i, p := range products {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "* %s [%s]\n", p.Name, kindLabel(p.Kind))
		fmt.Fprintf(&b, "  Price: %s\n", priceDisplay(p, symbol))
		if !p.Unlimited() {
			fmt.Fprintf(&b, "  Stock: %d\n", p.StockQuantity)
		}
		if p.Description != "" {
			fmt.Fprintf(&b, "  %s\n", p.Description)
		}
		if p.Pitch != "" {
			fmt.Fprintf(&b, "  Pitch: %s\n", p.Pitch)
		}
		if len(p.Features) > 0 {
			fmt.Fprintf(&b, "  Features: %s\n", strings.Join(p.Features, ", "))
		}
		if tags := xstrings.UniqueSlice(p.Tags); len(tags) > 0 {
			fmt.Fprintf(&b, "  Tags: %s\n", strings.Join(tags, ", "))
		}
		for _, g := range p.Variants {
			if !g.HasOptions() {
				continue
			}
			fmt.Fprintf(&b, "  %s (choice required, %s): %s\n",
				g.Name, modeLabel(g.Mode), optionList(g, p.Price, symbol))
		}
		for _, lf := range p.LeadFields {
			req := "optional"
			if lf.Required {
				req = "required"
			}
			fmt.Fprintf(&b, "  Ask the customer: %s (%s)\n", lf.Label, req)
		}
		if p.ImageURL != "" {
			b.WriteString("  Photo available (send_image)\n")
		}
		if related := relatedNames(p.RelatedIDs, byID); len(related) > 0 {
			fmt.Fprintf(&b, "  Goes well with: %s\n", strings.Join(related, ", "))
		}
		if p.SellerNote != "" {
			fmt.Fprintf(&b, "  Seller note: %s\n", p.SellerNote)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func historySection(h types.CustomerHistory, currency string) string {
	var b strings.Builder
	b.WriteString("===================================================\n")
	b.WriteString("CUSTOMER HISTORY\n")
	b.WriteString("===================================================\n")

	last := h.LastOrder()
	if last == nil {
		b.WriteString("New customer, no previous orders.")
		return b.String()
	}

	id := last.ID
	if len(id) > 8 {
		id = id[:8]
	}
	fmt.Fprintf(&b, "Known customer. Last order #%s\n", id)
	fmt.Fprintf(&b, "- Date: %s\n", last.CreatedAt.Format("02/01/2006"))
	fmt.Fprintf(&b, "- Total: %s %s\n", xstrings.FormatThousands(last.Total), currencySymbol(currency))
	fmt.Fprintf(&b, "- Status: %s (%s)\n", last.Status, paymentLabel(last.PaymentMethod))
	if last.CustomerPhone != "" {
		fmt.Fprintf(&b, "- Phone: %s\n", xstrings.MaskDigits(last.CustomerPhone, 8))
	}
	if last.DeliveryAddress != "" {
		fmt.Fprintf(&b, "- Address: %s\n", xstrings.Truncate(last.DeliveryAddress, 30))
	}
	if len(last.Items) > 0 {
		names := make([]string, 0, len(last.Items))
		for _, it := range last.Items {
			names = append(names, fmt.Sprintf("%dx %s", it.Quantity, it.Name))
		}
		fmt.Fprintf(&b, "- Items: %s\n", strings.Join(names, ", "))
	}
	b.WriteString("You may offer to reuse these details, but only after an explicit yes.")
	return b.String()
}

// priceDisplay renders a single price, or a "from X to Y" range when a
// fixed variant group carries several distinct option prices.
func priceDisplay(p types.Product, symbol string) string {
	for _, g := range p.Variants {
		if g.Mode == types.PricingFixed && g.HasOptions() {
			min, max := p.Price, p.Price
			for _, opt := range g.Options {
				price := opt.Price
				if price == 0 {
					price = p.Price
				}
				if price < min {
					min = price
				}
				if price > max {
					max = price
				}
			}
			if min != max {
				return fmt.Sprintf("from %s to %s %s", xstrings.FormatThousands(min), xstrings.FormatThousands(max), symbol)
			}
			break
		}
	}
	return fmt.Sprintf("%s %s", xstrings.FormatThousands(p.Price), symbol)
}

func optionList(g types.VariantGroup, basePrice int64, symbol string) string {
	parts := make([]string, 0, len(g.Options))
	for _, opt := range g.Options {
		switch {
		case opt.Price > 0 && g.Mode == types.PricingAdditive:
			parts = append(parts, fmt.Sprintf("%s (+%s %s)", opt.Value, xstrings.FormatThousands(opt.Price), symbol))
		case opt.Price > 0:
			parts = append(parts, fmt.Sprintf("%s (%s %s)", opt.Value, xstrings.FormatThousands(opt.Price), symbol))
		default:
			parts = append(parts, opt.Value)
		}
	}
	return strings.Join(parts, ", ")
}

func relatedNames(ids []string, byID map[string]string) []string {
	names := []string{}
	for _, id := range ids {
		if name, ok := byID[id]; ok {
			names = append(names, name)
		}
	}
	return names
}

func kindLabel(k types.ProductKind) string {
	switch k {
	case types.ProductDigital:
		return "digital"
	case types.ProductService:
		return "service"
	default:
		return "physical"
	}
}

func modeLabel(m types.PricingMode) string {
	if m == types.PricingAdditive {
		return "price added on top"
	}
	return "price replaces base"
}

func paymentLabel(m types.PaymentMethod) string {
	switch m {
	case types.PaymentCashOnDelivery:
		return "cash on delivery"
	case types.PaymentMobileMoneyDirect:
		return "mobile money direct"
	default:
		return "online payment"
	}
}

func currencySymbol(currency string) string {
	switch currency {
	case "", "XOF":
		return "FCFA"
	case "EUR":
		return "€"
	default:
		return "$"
	}
}

var weekdays = []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func formatHours(hours map[string]types.DaySchedule) string {
	if len(hours) == 0 {
		return ""
	}
	lines := []string{}
	for _, day := range weekdays {
		sched, ok := hours[day]
		if !ok {
			continue
		}
		label := strings.ToUpper(day[:1]) + day[1:]
		if sched.Closed {
			lines = append(lines, fmt.Sprintf("  %s: closed", label))
			continue
		}
		if sched.Open == "" || sched.Close == "" {
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s: %s-%s", label, sched.Open, sched.Close))
	}
	return strings.Join(lines, "\n")
}

func mapsLink(lat, lng float64) string {
	if lat == 0 && lng == 0 {
		return ""
	}
	return fmt.Sprintf("https://maps.google.com/?q=%f,%f", lat, lng)
}
