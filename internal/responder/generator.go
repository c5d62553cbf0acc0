package responder

import (
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/ticolabs/papibot/internal/detector"
)

// Base replies in Costa Rican pachuco register. Every entry carries the
// self token and a buying verb so the validity check holds by construction.
var baseReplies = []string{
	"Aquí papibot, los compro",
	"Pura vida, los agarra el papibot",
	"Mae, ¡los jalo yo! papibot aquí",
	"¡Diay! Papibot los compra al toque",
	"Esos los agarro, papibot aquí",
	"Mae, papibot interesado",
	"Aquí ando, papibot los compro",
	"Papibot presente, ¡los jalo!",
	"Mae, ¿cuánto? Papibot compra",
	"Tuanis, papibot los quiero",
}

// Amount-aware replies; {amount} is substituted with the extracted amount.
var amountReplies = []string{
	"Mae, esos {amount} los agarra papibot",
	"Papibot interesado en los {amount}",
	"¡Diay! {amount} al toque, papibot compra",
	"Tuanis, esos {amount} los compro, papibot aquí",
	"Mae, {amount} suena bien, papibot los quiero",
}

// Time-of-day replies for variety.
var timeReplies = map[string][]string{
	"morning": {
		"Buenos días mae, papibot los compra",
		"Upe, papibot aquí desde temprano, los quiero",
		"Mae, papibot madrugando, los compro",
	},
	"afternoon": {
		"Buenas tardes, papibot interesado",
		"Mae, papibot aquí en la tarde, los compro",
		"Papibot presente, ¿cuánto pide? Los quiero",
	},
	"evening": {
		"Buenas noches mae, papibot los compra",
		"Papibot nocturno, ¡los jalo!",
		"Mae, hasta tarde anda papibot comprando",
	},
}

// Regional expressions prepended or appended for variety.
var expressions = []string{"mae", "diay", "tuanis", "pura vida", "upe", "al chile"}

// Intensifiers: one-rune entries go in front, the rest go at the end.
var intensifiers = []string{"¡", "¡¡", "🔥", "💰", "⚡", "🚀"}

// buyingVerbs are the terms that mark buying intent for the validity check.
var buyingVerbs = []string{"compro", "compra", "comprando", "agarro", "agarra", "jalo", "quiero", "interesado"}

// FallbackReply trivially satisfies the validity invariant for the default
// token. Generators substitute their configured self token into it; use
// Generator.Fallback for the token-correct form.
const FallbackReply = "Aquí papibot, los compro"

// defaultToken is the wording the template pools are written in. A different
// configured token is substituted over it.
const defaultToken = "papibot"

// Generator composes replies to detected sell offers. It consults the
// Limiter before composing; a denied acquisition yields no reply and no
// state change. Not safe for concurrent use: the session controller calls it
// from its single processing path.
type Generator struct {
	limiter    *Limiter
	token      string
	tokenLower string
	tokenTitle string
	rng        *rand.Rand
	now        func() time.Time
}

// NewGenerator creates a Generator gated by the given limiter. selfToken is
// the bot's identifier every reply must contain; empty falls back to the
// default.
func NewGenerator(limiter *Limiter, selfToken string) *Generator {
	token := strings.TrimSpace(selfToken)
	if token == "" {
		token = defaultToken
	}
	return &Generator{
		limiter:    limiter,
		token:      token,
		tokenLower: strings.ToLower(token),
		tokenTitle: titleToken(token),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
		now:        time.Now,
	}
}

// WithClock overrides the time source. Test hook.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithSeed makes template selection deterministic. Test hook.
func (g *Generator) WithSeed(seed int64) *Generator {
	g.rng = rand.New(rand.NewSource(seed))
	return g
}

// Reply composes a reply for a detected offer. The second return is false
// when the rate limiter suppressed the reply; callers must treat that as
// "skip", not as an error. amt may be nil. highConfidence makes an
// intensifier more likely.
func (g *Generator) Reply(amt *detector.Amount, highConfidence bool) (string, bool) {
	now := g.now()
	if !g.limiter.TryAcquire(now) {
		return "", false
	}

	var reply string
	switch {
	case amt != nil && g.rng.Float64() < 0.7:
		tmpl := amountReplies[g.rng.Intn(len(amountReplies))]
		reply = strings.ReplaceAll(tmpl, "{amount}", amt.Display())
	case g.rng.Float64() < 0.3:
		pool := timeReplies[dayPeriod(now)]
		reply = pool[g.rng.Intn(len(pool))]
	default:
		reply = baseReplies[g.rng.Intn(len(baseReplies))]
	}

	if g.rng.Float64() < 0.4 {
		reply = g.addExpression(reply)
	}

	intensifierChance := 0.3
	if highConfidence {
		intensifierChance = 0.6
	}
	if g.rng.Float64() < intensifierChance {
		reply = g.addIntensifier(reply)
	}

	reply = g.applyToken(reply)

	// Defensive only: the pools satisfy the invariant by construction, but a
	// reply without the self token and a buying verb must never leave this
	// package.
	if !g.Validate(reply) {
		reply = g.Fallback()
	}
	return reply, true
}

// Fallback returns the guaranteed-valid reply for the configured token. The
// session controller retries failed sends with it.
func (g *Generator) Fallback() string {
	return g.applyToken(FallbackReply)
}

// applyToken rewrites the default-token wording of the template pools to the
// configured self token. No-op when the default token is configured.
func (g *Generator) applyToken(s string) string {
	if g.tokenLower == defaultToken {
		return s
	}
	s = strings.ReplaceAll(s, titleToken(defaultToken), g.tokenTitle)
	return strings.ReplaceAll(s, defaultToken, g.token)
}

// titleToken upper-cases the leading rune for sentence-initial template slots.
func titleToken(token string) string {
	r := []rune(token)
	if len(r) == 0 {
		return token
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// Validate reports whether a reply carries the bot's self token and at least
// one buying-intent verb.
func (g *Generator) Validate(reply string) bool {
	lower := strings.ToLower(reply)
	if !strings.Contains(lower, g.tokenLower) {
		return false
	}
	for _, verb := range buyingVerbs {
		if strings.Contains(lower, verb) {
			return true
		}
	}
	return false
}

func (g *Generator) addExpression(reply string) string {
	expr := expressions[g.rng.Intn(len(expressions))]
	if g.rng.Float64() < 0.5 {
		r := []rune(reply)
		return expr + ", " + strings.ToLower(string(r[:1])) + string(r[1:])
	}
	return reply + ", " + expr
}

func (g *Generator) addIntensifier(reply string) string {
	in := intensifiers[g.rng.Intn(len(intensifiers))]
	// Punctuation goes in front, emoji at the end.
	if strings.HasPrefix(in, "¡") {
		return in + reply
	}
	return reply + " " + in
}

// dayPeriod buckets an instant into the time-of-day reply pools.
func dayPeriod(now time.Time) string {
	switch h := now.Hour(); {
	case h >= 6 && h < 12:
		return "morning"
	case h >= 12 && h < 18:
		return "afternoon"
	default:
		return "evening"
	}
}
