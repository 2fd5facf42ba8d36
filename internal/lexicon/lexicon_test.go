package lexicon

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/spice-budget/internal/model"
)

func TestDefault_Parses(t *testing.T) {
	lex := Default()

	assert.Equal(t, 1, lex.Version())
	assert.Equal(t, "Miscellaneous", lex.Fallback())
	assert.NotEmpty(t, lex.Entries())
}

func TestLexicon_Normalize(t *testing.T) {
	lex := Default()

	tests := []struct {
		name   string
		want   string
		txn    model.Transaction
		closed bool
	}{
		{
			name: "raw category keyword",
			txn:  model.Transaction{Category: "Rent"},
			want: "Housing",
		},
		{
			name: "canonical name matches itself",
			txn:  model.Transaction{Category: "groceries"},
			want: "Groceries",
		},
		{
			name: "merchant keyword when category is empty",
			txn:  model.Transaction{MerchantName: "LYFT *RIDE 1234"},
			want: "Transportation",
		},
		{
			name: "uber eats is dining, not transportation",
			txn:  model.Transaction{Name: "UBER EATS ORDER"},
			want: "Food & Dining",
		},
		{
			name: "streaming service",
			txn:  model.Transaction{MerchantName: "NETFLIX.COM"},
			want: "Subscriptions",
		},
		{
			name: "gas station",
			txn:  model.Transaction{Name: "Corner Gas Station #42"},
			want: "Transportation",
		},
		{
			name: "insurance wins over healthcare",
			txn:  model.Transaction{Category: "Health Insurance"},
			want: "Insurance",
		},
		{
			name: "raw category beats description",
			txn:  model.Transaction{Category: "Groceries", MerchantName: "Target"},
			want: "Groceries",
		},
		{
			name: "word boundary prevents false match",
			txn:  model.Transaction{Category: "Current Account Fee"},
			want: "Current Account Fee",
		},
		{
			name: "rent as a word is housing",
			txn:  model.Transaction{Name: "JUNE RENT - UNIT 4B"},
			want: "Housing",
		},
		{
			name: "car rental is travel, not housing",
			txn:  model.Transaction{Category: "Car Rental"},
			want: "Travel",
		},
		{
			name: "rentals do not match rent",
			txn:  model.Transaction{Category: "Car and Truck Rentals"},
			want: "Car and Truck Rentals",
		},
		{
			name: "unmatched passes through",
			txn:  model.Transaction{Category: "Hobbies", Name: "Model trains"},
			want: "Hobbies",
		},
		{
			name:   "unmatched falls back when closed",
			txn:    model.Transaction{Category: "Hobbies", Name: "Model trains"},
			closed: true,
			want:   "Miscellaneous",
		},
		{
			name: "nothing to match",
			txn:  model.Transaction{},
			want: "Miscellaneous",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lex.Normalize(tt.txn, tt.closed))
		})
	}
}

func TestLexicon_Membership(t *testing.T) {
	lex := Default()

	assert.True(t, lex.IsEssential("housing"))
	assert.True(t, lex.IsEssential("Debt Payments"))
	assert.False(t, lex.IsEssential("Food & Dining"))
	assert.False(t, lex.IsEssential("Something Unknown"))

	assert.Equal(t, model.PrioritySavings, lex.PriorityOf("Emergency Fund"))
	assert.Equal(t, model.PriorityDiscretionary, lex.PriorityOf("Hobbies"))

	assert.InDelta(t, 0.25, lex.FloorPercent("Housing"), 1e-9)
	assert.Zero(t, lex.FloorPercent("Debt Payments"))

	var required []string
	for _, e := range lex.RequiredEssentials() {
		required = append(required, e.Name)
	}
	assert.Equal(t, []string{"Housing", "Utilities", "Groceries", "Insurance", "Healthcare", "Transportation"}, required)
}

func TestLexicon_MinimumAmount(t *testing.T) {
	lex := Default()

	min, ok := lex.MinimumAmount("Food & Dining")
	require.True(t, ok)
	assert.True(t, min.Equal(decimal.NewFromInt(200)))

	min, ok = lex.MinimumAmount("groceries")
	require.True(t, ok)
	assert.True(t, min.Equal(decimal.NewFromInt(150)))

	_, ok = lex.MinimumAmount("Housing")
	assert.False(t, ok)
}

func TestLexicon_EnvelopeFor(t *testing.T) {
	lex := Default()

	assert.Equal(t, EnvelopeEntertainmentDining, lex.EnvelopeFor("Food & Dining"))
	assert.Equal(t, EnvelopeShoppingClothing, lex.EnvelopeFor("Clothing"))
	assert.Equal(t, EnvelopePersonalWellness, lex.EnvelopeFor("Fitness"))
	assert.Equal(t, EnvelopePersonalWellness, lex.EnvelopeFor("Hobbies"))
}

func TestLexicon_IsIncome(t *testing.T) {
	lex := Default()

	tests := []struct {
		name string
		txn  model.Transaction
		want bool
	}{
		{
			name: "payroll inflow",
			txn:  model.Transaction{Name: "ACME CORP PAYROLL", Amount: decimal.NewFromInt(-2500)},
			want: true,
		},
		{
			name: "category hint",
			txn:  model.Transaction{Category: "Direct Deposit", Amount: decimal.NewFromInt(-900)},
			want: true,
		},
		{
			name: "payroll outflow is not income",
			txn:  model.Transaction{Name: "PAYROLL SERVICE FEE", Amount: decimal.NewFromInt(45)},
			want: false,
		},
		{
			name: "refund inflow without income keyword",
			txn:  model.Transaction{Name: "AMAZON REFUND", Amount: decimal.NewFromInt(-30)},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, lex.IsIncome(tt.txn))
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "not toml", doc: "this is = = not toml"},
		{name: "no categories", doc: "version = 2\n"},
		{name: "bad priority", doc: "[[categories]]\nname = \"X\"\npriority = \"luxury\"\n"},
		{name: "missing name", doc: "[[categories]]\npriority = \"essential\"\n"},
		{name: "duplicate", doc: "[[categories]]\nname = \"X\"\npriority = \"essential\"\n[[categories]]\nname = \"x\"\npriority = \"essential\"\n"},
		{name: "floor out of range", doc: "[[categories]]\nname = \"X\"\npriority = \"essential\"\nfloor_percent = 1.5\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalidLexicon)
		})
	}
}

func TestParse_WholeWords(t *testing.T) {
	doc := `
[[categories]]
name = "Rent"
priority = "essential"
whole_words = ["apt"]
`
	lex, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "Rent", lex.Normalize(model.Transaction{Name: "Apt 12 payment"}, true))
	assert.Equal(t, "Miscellaneous", lex.Normalize(model.Transaction{Name: "Aptitude test"}, true))
	assert.Equal(t, "Rent", lex.Normalize(model.Transaction{Name: "rental deposit"}, true), "the category name still matches as a prefix")
}

func TestLoad_Override(t *testing.T) {
	doc := `
version = 7
fallback_category = "Other"

[[categories]]
name = "Rent"
priority = "essential"
floor_percent = 0.3
keywords = ["landlord"]
`
	path := filepath.Join(t.TempDir(), "lexicon.toml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	lex, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7, lex.Version())
	assert.Equal(t, "Rent", lex.Normalize(model.Transaction{Name: "Landlord LLC"}, true))
	assert.Equal(t, "Other", lex.Normalize(model.Transaction{Name: "Coffee"}, true))
}
