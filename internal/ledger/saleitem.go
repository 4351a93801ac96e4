package ledger

import (
	"regexp"
	"strings"
)

const saleMarker = "venta registrada:"

var (
	saleItemPattern = regexp.MustCompile(
		`(?i)([A-Za-z0-9().\- ]+?)(?: -)? *cantidad: *([0-9.,]+) *,? *precio *unitario: *([0-9.,]+)`)
	whitespaceRun = regexp.MustCompile(`\s+`)

	// A period ends the annotation unless a digit follows, so "20.50" is
	// swallowed whole instead of leaving a ".50" residue behind.
	paymentDetailPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)pago\s+v(?:i|í)a(?:[^.,;|]|\.\d)*`),
		regexp.MustCompile(`(?i)pago\s+con(?:[^.,;|]|\.\d)*`),
		regexp.MustCompile(`(?i)m(?:e|é)todos?\s+de\s+pago\s*:(?:[^.;|]|\.\d)*`),
	}
	separatorRun = regexp.MustCompile(`[,;]+`)
)

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(s, " "))
}

// ExtractSaleItems parses the "NAME - Cantidad: Q, Precio Unitario: P" line
// items embedded in a sale description. Repeated lines with the same name and
// unit price are merged by summing quantities, preserving first-seen order.
func ExtractSaleItems(description string) []SaleItem {
	matches := saleItemPattern.FindAllStringSubmatch(description, -1)
	if len(matches) == 0 {
		return nil
	}
	index := make(map[string]int)
	var items []SaleItem
	for _, m := range matches {
		name := collapseWhitespace(m[1])
		qty, okQ := parseLocalizedDecimal(m[2])
		price, okP := parseLocalizedDecimal(m[3])
		if name == "" || !okQ || !okP {
			continue
		}
		key := strings.ToLower(name) + "|" + price.StringFixed(4)
		if i, ok := index[key]; ok {
			items[i].Quantity = items[i].Quantity.Add(qty)
			continue
		}
		index[key] = len(items)
		items = append(items, SaleItem{Name: name, Quantity: qty, UnitPrice: price})
	}
	return items
}

// StripPaymentDetails removes inline payment-method annotations from a
// description so two legs of the same sale that differ only in tender text
// normalize to the same string.
func StripPaymentDetails(s string) string {
	out := s
	for _, pat := range paymentDetailPatterns {
		out = pat.ReplaceAllString(out, " ")
	}
	out = separatorRun.ReplaceAllString(out, " ")
	return collapseWhitespace(out)
}

// SplitDescription separates a description into the free prefix before the
// "Venta registrada:" marker and the sale suffix from the marker onward.
// When the marker is absent the whole text is the prefix. normalized is the
// lowercased, payment-stripped prefix used as a grouping key component.
func SplitDescription(description string) (prefix, suffix, normalized string) {
	lower := strings.ToLower(description)
	if idx := strings.Index(lower, saleMarker); idx >= 0 {
		prefix = strings.TrimSpace(description[:idx])
		suffix = collapseWhitespace(description[idx:])
	} else {
		prefix = strings.TrimSpace(description)
	}
	base := StripPaymentDetails(prefix)
	if base == "" {
		base = prefix
	}
	normalized = strings.ToLower(collapseWhitespace(base))
	return prefix, suffix, normalized
}
