package detector

import "regexp"

// FormatKind tags which locale format produced an extracted amount.
type FormatKind int

const (
	// FormatColones is the "tantos (mil) (de) colones" idiom.
	FormatColones FormatKind = iota
	// FormatRate is a standalone "a N" exchange-rate quote.
	FormatRate
	// FormatStandardCrypto is the plain "N CURRENCY" form.
	FormatStandardCrypto
)

// String returns a short name for logging.
func (k FormatKind) String() string {
	switch k {
	case FormatColones:
		return "colones"
	case FormatRate:
		return "rate"
	default:
		return "standard"
	}
}

// Amount is an extracted amount with its currency or rate label. A nil
// *Amount means no recognizable amount was present.
type Amount struct {
	Amount string
	Label  string
	Kind   FormatKind
}

// Display returns the amount the way the responder quotes it back.
func (a *Amount) Display() string {
	if a.Kind == FormatRate {
		return "a " + a.Amount
	}
	return a.Amount + " " + a.Label
}

// Extraction patterns, tried in priority order against the original text.
// They run on raw input, not the normalized form, so currency symbols and
// case-sensitive tickers survive.
var (
	// "500 mil colones", "1.500.000 colones", "300 de colones"
	colonesAmountPattern = regexp.MustCompile(`(?i)\b(\d[\d.,]*(?:\s*mil(?:es)?)?)\s*(?:de\s+)?(colones)\b`)

	// "a 512", "al 515,50" — how sellers quote the ₡/USDT rate
	ratePattern = regexp.MustCompile(`(?i)\ba(?:l)?\s+(\d{3,4}(?:[.,]\d{1,2})?)\b`)

	// "5000 USDT", "10.000 usd", "0.5 btc", "2.500,50 €", "$3000"
	standardSuffixPattern = regexp.MustCompile(`(?i)\b(\d+(?:[.,]\d+)*)\s*(usdt|usd|eur|btc|eth|dai|usdc)\b`)
	symbolSuffixPattern   = regexp.MustCompile(`\b(\d+(?:[.,]\d+)*)\s*([€$₡])`)
	symbolPrefixPattern   = regexp.MustCompile(`([€$₡])\s*(\d+(?:[.,]\d+)*)\b`)
)

// Extractor pulls a numeric amount and its currency or rate label out of raw
// message text. The formats are tried in a fixed priority order and the
// first match wins.
type Extractor struct{}

// NewExtractor creates an Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns the first amount found, or nil when none of the formats
// match.
func (e *Extractor) Extract(raw string) *Amount {
	if raw == "" {
		return nil
	}

	if m := colonesAmountPattern.FindStringSubmatch(raw); m != nil {
		return &Amount{Amount: m[1], Label: "colones", Kind: FormatColones}
	}

	if m := ratePattern.FindStringSubmatch(raw); m != nil {
		return &Amount{Amount: m[1], Label: "colones", Kind: FormatRate}
	}

	if m := standardSuffixPattern.FindStringSubmatch(raw); m != nil {
		return &Amount{Amount: m[1], Label: m[2], Kind: FormatStandardCrypto}
	}
	if m := symbolSuffixPattern.FindStringSubmatch(raw); m != nil {
		return &Amount{Amount: m[1], Label: m[2], Kind: FormatStandardCrypto}
	}
	if m := symbolPrefixPattern.FindStringSubmatch(raw); m != nil {
		return &Amount{Amount: m[2], Label: m[1], Kind: FormatStandardCrypto}
	}

	return nil
}
