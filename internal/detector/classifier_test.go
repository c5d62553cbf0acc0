package detector

import "testing"

func newTestClassifier() *Classifier {
	return NewClassifier(2, 3)
}

func TestClassifyDetectsSellOffers(t *testing.T) {
	c := newTestClassifier()
	offers := []string{
		"Vendo 5000 USDT, MP",
		"Liquido 10.000 USDT transferencia bancaria",
		"Oferta: 2500 USD cripto p2p",
		"Vendo bitcoin 1.5 BTC banco nacional",
		"Dispongo de 3000 USDT sinpe BCR",
		"Cambio dolares 5000 USD cripto",
		"Ofrezco 15.000 USDT p2p BAC",
		"Vendo tether 8000 USDT scotiabank",
		"Liquido 4.500 USD cripto transferencia",
		"Venta ethereum 2 ETH banco popular",
		"Vendo 15k USDT sinpe",
		"Liquido 8000 tether transferencia",
		"Dispongo 20000 USD p2p",
	}
	for _, msg := range offers {
		if res := c.Classify(Normalize(msg)); !res.IsSellOffer {
			t.Errorf("Classify(%q).IsSellOffer = false, want true (confidence %.2f)", msg, res.Confidence)
		}
	}
}

func TestClassifyRejectsNonOffers(t *testing.T) {
	c := newTestClassifier()
	nonOffers := []string{
		"Compro USDT al mejor precio",
		"Busco 5000 USDT transferencia",
		"Necesito bitcoin urgente",
		"Quiero comprar ethereum",
		"Hola, ¿cuánto el USDT hoy?",
		"Ya vendido, gracias",
		"Precio del bitcoin?",
		"Buenos días grupo",
		"VENDIDO - cerrado",
		"WTB 5000 USDT",
		"compro usdt buen precio",
		"Ojo con ese scam de USDT baratos",
	}
	for _, msg := range nonOffers {
		if res := c.Classify(Normalize(msg)); res.IsSellOffer {
			t.Errorf("Classify(%q).IsSellOffer = true, want false", msg)
		}
	}
}

// Exclusions win no matter how many sell categories also match.
func TestClassifyExclusionOverridesMatches(t *testing.T) {
	c := newTestClassifier()
	msg := Normalize("Compro 5000 USDT transferencia banco nacional")
	res := c.Classify(msg)
	if !res.Excluded {
		t.Fatal("Excluded = false, want true")
	}
	if res.IsSellOffer {
		t.Error("IsSellOffer = true for excluded message, want false")
	}
	// The category flags still report what matched.
	if !res.Matches.CurrencyTerm || !res.Matches.BankingTerm {
		t.Errorf("category flags lost on exclusion: %+v", res.Matches)
	}
}

// Adding a matching category can never lower confidence.
func TestClassifyMonotonicity(t *testing.T) {
	c := newTestClassifier()
	base := "vendo usdt"
	additions := []string{
		"vendo usdt transferencia",
		"vendo usdt transferencia banco nacional",
		"vendo 5000 usdt transferencia banco nacional",
	}
	prev := c.Classify(base).Confidence
	for _, msg := range additions {
		got := c.Classify(msg).Confidence
		if got < prev {
			t.Errorf("confidence dropped from %.2f to %.2f at %q", prev, got, msg)
		}
		prev = got
	}
}

func TestClassifyColonesIdiomBoost(t *testing.T) {
	c := newTestClassifier()

	// The idiom alone is one category, not enough by itself.
	weak := c.Classify("tengo 500 mil colones")
	if weak.IsSellOffer {
		t.Errorf("idiom without sell intent classified as offer: %+v", weak)
	}

	// Sell keyword + idiom gets the extra increment and clears the bar even
	// without any crypto ticker.
	strong := c.Classify("vendo 500 mil colones")
	if !strong.IsSellOffer {
		t.Errorf("sell + colones idiom not classified as offer: %+v", strong)
	}
	if strong.Confidence < 2.0/3.0 {
		t.Errorf("Confidence = %.2f, want >= 0.66", strong.Confidence)
	}
}

// Scenario: the canonical group message.
func TestClassifyScenarioFullOffer(t *testing.T) {
	c := newTestClassifier()
	res := c.Classify("vendo 5000 usdt transferencia banco nacional")
	if !res.IsSellOffer {
		t.Fatal("IsSellOffer = false, want true")
	}
	if res.Confidence < 0.66 {
		t.Errorf("Confidence = %.2f, want >= 0.66", res.Confidence)
	}
	want := Matches{SellKeyword: true, CurrencyTerm: true, AmountPattern: true, P2PTerm: true, BankingTerm: true}
	if res.Matches != want {
		t.Errorf("Matches = %+v, want %+v", res.Matches, want)
	}
}

func TestClassifyEmptyInput(t *testing.T) {
	c := newTestClassifier()
	res := c.Classify("")
	if res.IsSellOffer || res.Confidence != 0 {
		t.Errorf("empty input classified: %+v", res)
	}
}

func TestClassifyConfidenceCapped(t *testing.T) {
	c := newTestClassifier()
	// All five categories plus the boosted idiom: count is well past the
	// divisor, confidence must cap at 1.0.
	res := c.Classify("vendo 5000 usdt transferencia banco nacional y 200 mil colones")
	if res.Confidence != 1.0 {
		t.Errorf("Confidence = %.2f, want 1.0", res.Confidence)
	}
}

func TestClassifyThresholdConfigurable(t *testing.T) {
	strict := NewClassifier(4, 3)
	res := strict.Classify("vendo usdt transferencia")
	if res.IsSellOffer {
		t.Error("3 matches cleared a threshold of 4")
	}
	if !newTestClassifier().Classify("vendo usdt transferencia").IsSellOffer {
		t.Error("3 matches did not clear the default threshold of 2")
	}
}
