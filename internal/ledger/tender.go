package ledger

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Category is a canonical tender bucket. Labels that match no known keyword
// keep their trimmed original text, so unrecognized methods survive
// aggregation instead of being silently dropped.
type Category string

const (
	CategoryCash     Category = "CASH"
	CategoryCard     Category = "CARD"
	CategoryTransfer Category = "TRANSFER"
	CategoryYape     Category = "YAPE"
	CategoryPlin     Category = "PLIN"
)

// TenderEntry is one payment method attached to an entry. Amount is nil when
// the split was not made explicit; ResolveTenders fills implicit shares from
// the entry total.
type TenderEntry struct {
	Label  string
	Amount *decimal.Decimal
}

// ResolvedTender is a tender with its final signed amount, after implicit
// shares have been distributed. Expenses carry negative amounts.
type ResolvedTender struct {
	Category Category
	Amount   decimal.Decimal
}

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// fold lowercases and removes diacritics so "Crédito" and "credito" compare
// equal during keyword matching.
func fold(s string) string {
	out, _, err := transform.String(stripMarks, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

var cardKeywords = []string{
	"tarjeta", "visa", "master", "credito", "debito", "amex", "american express",
}

// Classify maps a raw tender label to its canonical category. Matching is
// case- and accent-insensitive and works on substrings, so "Pago con Visa"
// classifies as CARD and the "transfer" stem covers both "transfer" and
// "transferencia". Precedence: cash, card, transfer, yape, plin.
func Classify(label string) Category {
	folded := fold(label)
	switch {
	case strings.Contains(folded, "efectivo"):
		return CategoryCash
	case containsAny(folded, cardKeywords):
		return CategoryCard
	case strings.Contains(folded, "transfer"):
		return CategoryTransfer
	case strings.Contains(folded, "yape"):
		return CategoryYape
	case strings.Contains(folded, "plin"):
		return CategoryPlin
	default:
		return Category(strings.TrimSpace(label))
	}
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

var amountToken = regexp.MustCompile(`-?\d+(?:[.,]\d+)*`)

// ExtractAmount pulls the explicit amount out of a tender string such as
// "EN EFECTIVO: 20.50" or "Yape: S/. 1.250,75". The last numeric token wins;
// nil when the string carries no number.
func ExtractAmount(raw string) *decimal.Decimal {
	tokens := amountToken.FindAllString(raw, -1)
	if len(tokens) == 0 {
		return nil
	}
	d, ok := parseLocalizedDecimal(tokens[len(tokens)-1])
	if !ok {
		return nil
	}
	return &d
}

// parseLocalizedDecimal accepts both "1,250.75" and "1.250,75": whichever
// separator appears last is the decimal point, the rest are grouping marks.
func parseLocalizedDecimal(token string) (decimal.Decimal, bool) {
	sep := strings.LastIndexAny(token, ".,")
	normalized := token
	if sep >= 0 {
		intPart := strings.Map(func(r rune) rune {
			if r == '.' || r == ',' {
				return -1
			}
			return r
		}, token[:sep])
		normalized = intPart + "." + token[sep+1:]
	}
	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// ResolveTenders turns an entry's tender list into per-category signed
// amounts. Explicit amounts (structured or embedded in the label text) are
// taken as-is; the remainder of the entry total is split evenly across
// tenders with no amount, with the last one absorbing the rounding residue.
// Expense entries negate non-negative amounts; an amount already negative in
// the source text is respected.
func ResolveTenders(e Entry) []ResolvedTender {
	if len(e.Tenders) == 0 {
		return nil
	}
	resolved := make([]ResolvedTender, len(e.Tenders))
	explicit := decimal.Zero
	var implicit []int
	for i, t := range e.Tenders {
		amt := t.Amount
		if amt == nil {
			amt = ExtractAmount(t.Label)
		}
		resolved[i].Category = Classify(t.Label)
		if amt != nil {
			resolved[i].Amount = *amt
			explicit = explicit.Add(amt.Abs())
		} else {
			implicit = append(implicit, i)
		}
	}
	if len(implicit) > 0 {
		remaining := e.Amount.Sub(explicit)
		if remaining.Sign() > 0 {
			share := remaining.Div(decimal.NewFromInt(int64(len(implicit)))).Round(2)
			for n, idx := range implicit {
				if n == len(implicit)-1 {
					resolved[idx].Amount = remaining.Sub(share.Mul(decimal.NewFromInt(int64(len(implicit) - 1))))
				} else {
					resolved[idx].Amount = share
				}
			}
		}
	}
	if e.Type == TypeExpense {
		for i := range resolved {
			if resolved[i].Amount.Sign() > 0 {
				resolved[i].Amount = resolved[i].Amount.Neg()
			}
		}
	}
	return resolved
}

// A period ends the capture unless a digit follows, so "20.50" survives but a
// sentence boundary does not.
var tenderTextPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)pago\s+v(?:i|í)a\s+((?:[^.;|]|\.\d)+)`),
	regexp.MustCompile(`(?i)pago\s+con\s+((?:[^.;|]|\.\d)+)`),
	regexp.MustCompile(`(?i)m(?:e|é)todos?\s+de\s+pago\s*:?\s*((?:[^.;|]|\.\d)+)`),
}

// ExtractTendersFromText recovers payment-method labels from free-form
// description text ("Pago vía Yape", "Metodos de pago: EN EFECTIVO: 20.50").
// Used as a fallback for records without structured tender rows.
func ExtractTendersFromText(text string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, pat := range tenderTextPatterns {
		for _, m := range pat.FindAllStringSubmatch(text, -1) {
			for _, seg := range splitTenderSegments(m[1]) {
				key := fold(seg)
				if seg == "" || seen[key] {
					continue
				}
				seen[key] = true
				out = append(out, seg)
			}
		}
	}
	return out
}

var tenderSeparator = regexp.MustCompile(`(?i)\s*(?:[,/]|\sy\s)\s*`)

func splitTenderSegments(s string) []string {
	parts := tenderSeparator.Split(s, -1)
	var out []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
