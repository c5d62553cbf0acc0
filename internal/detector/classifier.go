package detector

import "regexp"

// Match categories, tested against normalized text. The wording is Costa
// Rican P2P Spanish because that is what the monitored group speaks.
var (
	sellPattern     = regexp.MustCompile(`\b(vendo|venta|liquido|liquidar|oferta|ofrezco|dispongo|cambio|remato)\b`)
	currencyPattern = regexp.MustCompile(`\b(usdt|btc|eth|tether|binance|cripto|crypto|bitcoin|ethereum|dai|usdc|busd|bnb|dolar|dolares)\b`)
	amountPattern   = regexp.MustCompile(`\b\d+(\.\d{3})*(,\d+)?\s*((usd|usdt|eur|colones)\b|[€$₡])`)
	p2pPattern      = regexp.MustCompile(`\b(p2p|peer.to.peer|transferencia|sinpe|intercambio|cambio)\b`)
	bankingPattern  = regexp.MustCompile(`\b(bac|bcr|banco|nacional|popular|scotiabank|promerica|coopeservidores)\b`)

	// The "tantos (mil) (de) colones" idiom. Locals often phrase a colón sale
	// without any crypto ticker at all; together with a sell keyword it is
	// strong evidence on its own.
	colonesIdiomPattern = regexp.MustCompile(`\b\d[\d.,]*\s*(mil(es)?\s+)?(de\s+)?colones\b`)
)

// Exclusion categories. A match on any of these forces a negative result no
// matter how many sell categories also matched: replying to a buyer or to a
// question reads as spam and burns trust in the group.
var (
	buyIntentPattern = regexp.MustCompile(`\b(compro|busco|necesito|quiero\s+comprar|buying|want\s+to\s+buy|wtb)\b`)
	questionPattern  = regexp.MustCompile(`\b(pregunta|consulta|cuanto|precio|como|donde|quien)\b|\?`)
	completedPattern = regexp.MustCompile(`\b(vendido|sold|completado|cerrado|ya\s+no)\b`)
	metaPattern      = regexp.MustCompile(`\b(admin|administrador|reglas|estafa|scam|spam)\b`)
)

// Matches records which pattern categories fired for a message.
type Matches struct {
	SellKeyword   bool
	CurrencyTerm  bool
	AmountPattern bool
	P2PTerm       bool
	BankingTerm   bool
}

// Result is the outcome of classifying one normalized message.
type Result struct {
	IsSellOffer bool
	Confidence  float64
	Matches     Matches
	// Excluded is true when an exclusion pattern fired; IsSellOffer is then
	// false regardless of the match count.
	Excluded bool
}

// Classifier decides whether normalized message text is a sell offer. The
// thresholds are empirically chosen (see Config defaults) and deliberately
// conservative: a missed offer costs one trade, a false positive costs the
// bot its welcome in the group.
type Classifier struct {
	matchThreshold    int
	confidenceDivisor float64
}

// NewClassifier creates a Classifier with the given thresholds. A message is
// a sell offer when at least matchThreshold categories fire; confidence is
// matchCount/confidenceDivisor capped at 1.0.
func NewClassifier(matchThreshold int, confidenceDivisor float64) *Classifier {
	if matchThreshold <= 0 {
		matchThreshold = 2
	}
	if confidenceDivisor <= 0 {
		confidenceDivisor = 3
	}
	return &Classifier{matchThreshold: matchThreshold, confidenceDivisor: confidenceDivisor}
}

// Classify evaluates normalized text. Callers must pass the output of
// Normalize; the patterns assume lower case without diacritics.
func (c *Classifier) Classify(normalized string) Result {
	var res Result
	if normalized == "" {
		return res
	}

	res.Matches = Matches{
		SellKeyword:   sellPattern.MatchString(normalized),
		CurrencyTerm:  currencyPattern.MatchString(normalized),
		AmountPattern: amountPattern.MatchString(normalized),
		P2PTerm:       p2pPattern.MatchString(normalized),
		BankingTerm:   bankingPattern.MatchString(normalized),
	}

	res.Excluded = buyIntentPattern.MatchString(normalized) ||
		questionPattern.MatchString(normalized) ||
		completedPattern.MatchString(normalized) ||
		metaPattern.MatchString(normalized)

	count := 0
	for _, hit := range []bool{
		res.Matches.SellKeyword,
		res.Matches.CurrencyTerm,
		res.Matches.AmountPattern,
		res.Matches.P2PTerm,
		res.Matches.BankingTerm,
	} {
		if hit {
			count++
		}
	}

	if colonesIdiomPattern.MatchString(normalized) {
		count++
		if res.Matches.SellKeyword {
			// Sell keyword plus the colón idiom is the strongest local
			// phrasing there is; count it twice.
			count++
		}
	}

	res.Confidence = float64(count) / c.confidenceDivisor
	if res.Confidence > 1.0 {
		res.Confidence = 1.0
	}
	res.IsSellOffer = !res.Excluded && count >= c.matchThreshold
	return res
}
