package ledger

import (
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// mergeGroup accumulates the legs of one logical sale while Merge scans the
// input slice.
type mergeGroup struct {
	first        Entry
	prefix       string
	fallbacks    []string
	items        []SaleItem
	itemIndex    map[string]int
	tenders      []mergedTender
	tenderIndex  map[string]int
	fingerprints map[string]bool
	amounts      []decimal.Decimal
	amountSeen   map[string]bool
}

// mergedTender unions one tender label across legs. Distinct explicit amounts
// for the same label accumulate; repeats of the same amount do not.
type mergedTender struct {
	label      string
	sum        decimal.Decimal
	hasAmount  bool
	amountSeen map[string]bool
}

// Merge collapses duplicated and split transaction records into one logical
// entry per sale. Records group by type, voucher, normalized description
// prefix, second-resolution timestamp, register and client identity; inside a
// group, legs whose line-item fingerprint was already seen are duplicates and
// contribute nothing new. Line items merge by name and unit price, tenders
// union case-insensitively, the earliest non-empty voucher wins, and the
// merged amount is recomputed from line items when any exist, otherwise as the
// sum of distinct raw amounts. First-seen order is preserved; CLOSURE entries
// pass through untouched. Merging is idempotent: feeding the output back in
// returns it unchanged.
func Merge(entries []Entry) []Entry {
	groups := make(map[string]*mergeGroup)
	var order []string
	var closures []Entry
	closurePos := make(map[int]int) // index in output ordering → closures index
	seenIDs := make(map[uuid.UUID]bool)

	pos := 0
	for _, e := range entries {
		if e.ID != uuid.Nil {
			if seenIDs[e.ID] {
				continue
			}
			seenIDs[e.ID] = true
		}
		if e.Type == TypeClosure {
			closurePos[pos] = len(closures)
			closures = append(closures, e)
			pos++
			continue
		}

		items := ExtractSaleItems(e.Description)
		prefix, suffix, normalized := SplitDescription(e.Description)
		key := groupKey(e, normalized, len(items) > 0)
		fp := fingerprint(normalized, e.Voucher, items)

		g, ok := groups[key]
		if !ok {
			g = &mergeGroup{
				first:        e,
				prefix:       StripPaymentDetails(prefix),
				itemIndex:    make(map[string]int),
				tenderIndex:  make(map[string]int),
				fingerprints: make(map[string]bool),
				amountSeen:   make(map[string]bool),
			}
			groups[key] = g
			order = append(order, key)
			pos++
		}

		dup := g.fingerprints[fp]
		g.fingerprints[fp] = true

		if ak := e.Amount.StringFixed(2); !g.amountSeen[ak] {
			g.amountSeen[ak] = true
			g.amounts = append(g.amounts, e.Amount)
		}
		for _, t := range e.Tenders {
			g.addTender(t.Label, t.Amount)
		}
		for _, label := range ExtractTendersFromText(e.Description) {
			g.addTender(label, nil)
		}

		if dup {
			continue
		}
		for _, it := range items {
			ik := strings.ToLower(it.Name) + "|" + it.UnitPrice.StringFixed(4)
			if i, seen := g.itemIndex[ik]; seen {
				g.items[i].Quantity = g.items[i].Quantity.Add(it.Quantity)
			} else {
				g.itemIndex[ik] = len(g.items)
				g.items = append(g.items, it)
			}
		}
		if len(items) == 0 && suffix != "" {
			g.fallbacks = append(g.fallbacks, suffix)
		}
		if g.first.Voucher == "" && e.Voucher != "" {
			g.first.Voucher = e.Voucher
		}
		if g.prefix == "" {
			g.prefix = StripPaymentDetails(prefix)
		}
	}

	out := make([]Entry, 0, len(order)+len(closures))
	gi := 0
	for p := 0; p < pos; p++ {
		if ci, ok := closurePos[p]; ok {
			out = append(out, closures[ci])
			continue
		}
		out = append(out, groups[order[gi]].emit())
		gi++
	}
	return out
}

func groupKey(e Entry, normalized string, hasItems bool) string {
	parts := []string{
		e.Type,
		strings.ToLower(strings.TrimSpace(e.Voucher)),
		normalized,
		strconv.FormatInt(e.Timestamp.Unix(), 10),
		e.RegisterID.String(),
		strings.ToLower(strings.TrimSpace(e.ClientDocument)),
		strings.ToLower(strings.TrimSpace(e.ClientName)),
	}
	// Without line items or a voucher there is nothing safe to merge on, so
	// the amount joins the key and only exact repeats collapse.
	if !hasItems && strings.TrimSpace(e.Voucher) == "" {
		parts = append(parts, e.Amount.StringFixed(2))
	}
	return strings.Join(parts, "|")
}

func fingerprint(normalizedPrefix, voucher string, items []SaleItem) string {
	sigs := make([]string, len(items))
	for i, it := range items {
		sigs[i] = strings.ToLower(it.Name) + "|" + it.UnitPrice.StringFixed(4) + "|" + it.Quantity.StringFixed(4)
	}
	sort.Strings(sigs)
	return normalizedPrefix + "|" + strings.ToLower(strings.TrimSpace(voucher)) + "|" + strings.Join(sigs, ";")
}

func (g *mergeGroup) addTender(label string, amount *decimal.Decimal) {
	label = strings.TrimSpace(label)
	if label == "" {
		return
	}
	if amount == nil {
		amount = ExtractAmount(label)
	}
	key := fold(string(Classify(label)))
	i, ok := g.tenderIndex[key]
	if !ok {
		i = len(g.tenders)
		g.tenderIndex[key] = i
		g.tenders = append(g.tenders, mergedTender{label: string(Classify(label)), amountSeen: make(map[string]bool)})
	}
	t := &g.tenders[i]
	if amount != nil {
		if ak := amount.StringFixed(2); !t.amountSeen[ak] {
			t.amountSeen[ak] = true
			t.sum = t.sum.Add(*amount)
			t.hasAmount = true
		}
	}
}

func (g *mergeGroup) emit() Entry {
	e := g.first

	if len(g.tenders) > 0 {
		e.Tenders = make([]TenderEntry, len(g.tenders))
		for i, t := range g.tenders {
			e.Tenders[i] = TenderEntry{Label: t.label}
			if t.hasAmount {
				amt := t.sum
				e.Tenders[i].Amount = &amt
			}
		}
	}

	switch {
	case len(g.items) > 0:
		segments := make([]string, len(g.items))
		total := decimal.Zero
		for i, it := range g.items {
			segments[i] = it.Name + " - Cantidad: " + formatQuantity(it.Quantity) +
				", Precio Unitario: " + it.UnitPrice.StringFixed(2)
			total = total.Add(it.Subtotal())
		}
		e.Description = joinDescription(g.prefix, "Venta registrada: "+strings.Join(segments, " | "))
		e.Amount = total.Round(2)
	case len(g.fallbacks) > 0:
		e.Description = joinDescription(g.prefix, g.fallbacks[0])
		e.Amount = sumDecimals(g.amounts)
	default:
		if g.prefix != "" {
			e.Description = g.prefix
		} else {
			e.Description = collapseWhitespace(e.Description)
		}
		e.Amount = sumDecimals(g.amounts)
	}
	return e
}

func joinDescription(prefix, rest string) string {
	if prefix == "" {
		return rest
	}
	return prefix + " " + rest
}

func sumDecimals(ds []decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, d := range ds {
		total = total.Add(d)
	}
	return total
}

func formatQuantity(q decimal.Decimal) string {
	if q.IsInteger() {
		return q.Truncate(0).String()
	}
	return q.StringFixed(2)
}
