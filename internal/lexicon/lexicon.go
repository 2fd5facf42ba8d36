// Package lexicon provides the canonical category vocabulary used by the
// budget engine. The vocabulary is data, not code: it is decoded from a
// versioned TOML document so it can be replaced and tested independently of
// the algorithms that consume it.
package lexicon

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-budget/internal/model"
)

// Names of categories the frameworks create on their own.
const (
	EmergencyFund     = "Emergency Fund"
	Retirement        = "Retirement"
	GoalsSavings      = "Goals Savings"
	ExtraDebtPayment  = "Extra Debt Payment"
	DebtPayments      = "Debt Payments"
	Savings           = "Savings"
	SavingsInvestment = "Savings/Investment"
	Healthcare        = "Healthcare"

	EnvelopeEntertainmentDining = "Entertainment & Dining"
	EnvelopeShoppingClothing    = "Shopping & Clothing"
	EnvelopePersonalWellness    = "Personal & Wellness"
)

// ErrInvalidLexicon is returned when a vocabulary document cannot be used.
var ErrInvalidLexicon = errors.New("invalid lexicon")

//go:embed default.toml
var defaultDocument []byte

// Entry is one canonical category.
type Entry struct {
	Name         string   `toml:"name"`
	Priority     string   `toml:"priority"`
	Envelope     string   `toml:"envelope"`
	Keywords     []string `toml:"keywords"`
	WholeWords   []string `toml:"whole_words"`
	FloorPercent float64  `toml:"floor_percent"`
	MinAmount    float64  `toml:"min_amount"`
}

type document struct {
	FallbackCategory string   `toml:"fallback_category"`
	DefaultEnvelope  string   `toml:"default_envelope"`
	IncomeKeywords   []string `toml:"income_keywords"`
	Categories       []Entry  `toml:"categories"`
	Version          int      `toml:"version"`
}

type compiledEntry struct {
	pattern  *regexp.Regexp
	priority model.Priority
	Entry
}

// Lexicon is an immutable, compiled category vocabulary.
type Lexicon struct {
	income          *regexp.Regexp
	byName          map[string]int
	fallback        string
	defaultEnvelope string
	entries         []compiledEntry
	version         int
}

// Default returns the vocabulary embedded in the binary.
func Default() *Lexicon {
	lex, err := Parse(defaultDocument)
	if err != nil {
		panic(fmt.Sprintf("embedded lexicon is invalid: %v", err))
	}
	return lex
}

// Load reads a vocabulary document from disk.
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading lexicon: %w", err)
	}
	return Parse(data)
}

// Parse decodes and compiles a TOML vocabulary document.
func Parse(data []byte) (*Lexicon, error) {
	var doc document
	if _, err := toml.Decode(string(data), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLexicon, err)
	}
	if len(doc.Categories) == 0 {
		return nil, fmt.Errorf("%w: no categories defined", ErrInvalidLexicon)
	}

	lex := &Lexicon{
		version:         doc.Version,
		fallback:        strings.TrimSpace(doc.FallbackCategory),
		defaultEnvelope: strings.TrimSpace(doc.DefaultEnvelope),
		byName:          make(map[string]int, len(doc.Categories)),
	}
	if lex.fallback == "" {
		lex.fallback = "Miscellaneous"
	}
	if lex.defaultEnvelope == "" {
		lex.defaultEnvelope = EnvelopePersonalWellness
	}

	for _, e := range doc.Categories {
		e.Name = strings.TrimSpace(e.Name)
		if e.Name == "" {
			return nil, fmt.Errorf("%w: category without a name", ErrInvalidLexicon)
		}
		key := strings.ToLower(e.Name)
		if _, dup := lex.byName[key]; dup {
			return nil, fmt.Errorf("%w: duplicate category %q", ErrInvalidLexicon, e.Name)
		}

		priority, err := model.ParsePriority(e.Priority)
		if err != nil {
			return nil, fmt.Errorf("%w: category %q: %v", ErrInvalidLexicon, e.Name, err)
		}
		if e.FloorPercent < 0 || e.FloorPercent > 1 {
			return nil, fmt.Errorf("%w: category %q floor_percent out of range", ErrInvalidLexicon, e.Name)
		}
		if e.MinAmount < 0 {
			return nil, fmt.Errorf("%w: category %q min_amount is negative", ErrInvalidLexicon, e.Name)
		}

		compiled := compiledEntry{Entry: e, priority: priority}
		if priority != model.PrioritySavings {
			compiled.pattern, err = compileKeywords(append([]string{e.Name}, e.Keywords...), e.WholeWords)
			if err != nil {
				return nil, fmt.Errorf("%w: category %q: %v", ErrInvalidLexicon, e.Name, err)
			}
		}

		lex.byName[key] = len(lex.entries)
		lex.entries = append(lex.entries, compiled)
	}

	if len(doc.IncomeKeywords) > 0 {
		pattern, err := compileKeywords(doc.IncomeKeywords, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: income keywords: %v", ErrInvalidLexicon, err)
		}
		lex.income = pattern
	}

	return lex, nil
}

// compileKeywords builds one case-insensitive pattern. Keywords match at a
// word start, so "pharma" matches "Pharmacy" but not "biopharma". Whole words
// must also end at a word boundary, so "rent" matches "Rent Payment" but not
// "Car Rental".
func compileKeywords(keywords, wholeWords []string) (*regexp.Regexp, error) {
	var alternatives []string
	if prefixes := quoteAll(keywords); prefixes != "" {
		alternatives = append(alternatives, `\b(?:`+prefixes+`)`)
	}
	if words := quoteAll(wholeWords); words != "" {
		alternatives = append(alternatives, `\b(?:`+words+`)\b`)
	}
	if len(alternatives) == 0 {
		return nil, errors.New("no keywords")
	}
	return regexp.Compile(`(?i)` + strings.Join(alternatives, "|"))
}

func quoteAll(keywords []string) string {
	quoted := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		if kw = strings.TrimSpace(kw); kw != "" {
			quoted = append(quoted, regexp.QuoteMeta(strings.ToLower(kw)))
		}
	}
	return strings.Join(quoted, "|")
}

// Version returns the vocabulary document version.
func (l *Lexicon) Version() int {
	return l.version
}

// Fallback returns the catch-all category name.
func (l *Lexicon) Fallback() string {
	return l.fallback
}

// Entries returns the categories in document order.
func (l *Lexicon) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.Entry
	}
	return out
}

// Lookup finds a category by name, case-insensitively.
func (l *Lexicon) Lookup(name string) (Entry, bool) {
	i, ok := l.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Entry{}, false
	}
	return l.entries[i].Entry, true
}

// Match maps free text to a canonical category name.
func (l *Lexicon) Match(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	for _, e := range l.entries {
		if e.pattern != nil && e.pattern.MatchString(text) {
			return e.Name, true
		}
	}
	return "", false
}

// Normalize maps a transaction to its canonical category. The raw category is
// tried first, then the description. Unmatched raw categories pass through
// unless closed is set, in which case they become the fallback category.
func (l *Lexicon) Normalize(txn model.Transaction, closed bool) string {
	if name, ok := l.Match(txn.Category); ok {
		return name
	}
	if name, ok := l.Match(txn.MerchantName + " " + txn.Name); ok {
		return name
	}
	if raw := strings.TrimSpace(txn.Category); raw != "" && !closed {
		return raw
	}
	return l.fallback
}

// PriorityOf returns the priority of a category; unknown categories are
// discretionary.
func (l *Lexicon) PriorityOf(name string) model.Priority {
	i, ok := l.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return model.PriorityDiscretionary
	}
	return l.entries[i].priority
}

// IsEssential reports whether a category belongs to the essentials set.
func (l *Lexicon) IsEssential(name string) bool {
	return l.PriorityOf(name) == model.PriorityEssential
}

// RequiredEssentials returns the essentials that carry an income floor, in
// document order. These are funded even without spending history.
func (l *Lexicon) RequiredEssentials() []Entry {
	var out []Entry
	for _, e := range l.entries {
		if e.priority == model.PriorityEssential && e.FloorPercent > 0 {
			out = append(out, e.Entry)
		}
	}
	return out
}

// FloorPercent returns the income share reserved for an essential category.
func (l *Lexicon) FloorPercent(name string) float64 {
	e, ok := l.Lookup(name)
	if !ok {
		return 0
	}
	return e.FloorPercent
}

// MinimumAmount returns the adjuster's dollar floor for a category.
func (l *Lexicon) MinimumAmount(name string) (decimal.Decimal, bool) {
	e, ok := l.Lookup(name)
	if !ok || e.MinAmount <= 0 {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(e.MinAmount), true
}

// EnvelopeFor returns the coarse envelope a discretionary category rolls into.
func (l *Lexicon) EnvelopeFor(name string) string {
	if e, ok := l.Lookup(name); ok && e.Envelope != "" {
		return e.Envelope
	}
	return l.defaultEnvelope
}

// IsIncome reports whether a transaction looks like an income signal. Only
// inflows qualify.
func (l *Lexicon) IsIncome(txn model.Transaction) bool {
	if l.income == nil || !txn.IsInflow() {
		return false
	}
	return l.income.MatchString(txn.Category) ||
		l.income.MatchString(txn.MerchantName+" "+txn.Name)
}
