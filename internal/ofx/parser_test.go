package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>USD
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-25.50
<FITID>2024011501
<NAME>STARBUCKS STORE #1234
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.00
<FITID>2024012001
<NAME>Whole Foods Market
</STMTTRN>
<STMTTRN>
<TRNTYPE>DIRECTDEP
<DTPOSTED>20240131120000[0:GMT]
<TRNAMT>2500.00
<FITID>2024013101
<NAME>ACME CORP PAYROLL
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

const sampleCreditCardOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<CREDITCARDMSGSRSV1>
<CCSTMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<CCSTMTRS>
<CURDEF>USD
<CCACCTFROM>
<ACCTID>4111111111111111
</CCACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240110120000[0:GMT]
<TRNAMT>-45.99
<FITID>CC2024011001
<NAME>AMAZON.COM*RT4Y7HG2
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>-15.00
<FITID>CC2024011501
<NAME>NETFLIX.COM
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>-500.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</CCSTMTRS>
</CCSTMTTRNRS>
</CREDITCARDMSGSRSV1>
</OFX>`

func TestParseFile(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		wantAccounts  []string
		expectedCount int
		expectedError bool
	}{
		{
			name:          "valid bank statement",
			ofxData:       sampleBankOFX,
			expectedCount: 4,
			wantAccounts:  []string{"1234567890"},
		},
		{
			name:          "valid credit card statement",
			ofxData:       sampleCreditCardOFX,
			expectedCount: 2,
			wantAccounts:  []string{"4111111111111111"},
		},
		{
			name:          "invalid OFX data",
			ofxData:       "not valid OFX",
			expectedError: true,
		},
		{
			name:          "empty OFX",
			ofxData:       "",
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := NewParser().ParseFile(context.Background(), strings.NewReader(tt.ofxData), "user-1")

			if tt.expectedError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, stmt.Transactions, tt.expectedCount)
			assert.Equal(t, tt.wantAccounts, stmt.Accounts)
		})
	}
}

func TestParseBankTransactions(t *testing.T) {
	stmt, err := NewParser().ParseFile(context.Background(), strings.NewReader(sampleBankOFX), "user-1")
	require.NoError(t, err)
	require.Len(t, stmt.Transactions, 4)

	byID := make(map[string]int)
	for i, txn := range stmt.Transactions {
		byID[txn.ID] = i
		assert.Equal(t, "user-1", txn.UserID)
		assert.Equal(t, "1234567890", txn.AccountID)
		assert.NotEmpty(t, txn.Hash)
	}

	coffee := stmt.Transactions[byID["1234567890-2024011501"]]
	assert.Equal(t, "STARBUCKS STORE #1234", coffee.Name)
	assert.Equal(t, "STARBUCKS STORE #1234", coffee.MerchantName)
	assert.True(t, coffee.Amount.Equal(decimal.RequireFromString("25.50")), coffee.Amount.String())
	assert.True(t, coffee.IsOutflow(), "debits are outflows")
	assert.Equal(t, 2024, coffee.Date.Year())
	assert.Equal(t, time.January, coffee.Date.Month())
	assert.Equal(t, 15, coffee.Date.Day())

	groceries := stmt.Transactions[byID["1234567890-2024012001"]]
	assert.True(t, groceries.Amount.Equal(decimal.NewFromInt(125)))

	pay := stmt.Transactions[byID["1234567890-2024013101"]]
	assert.True(t, pay.IsInflow(), "deposits are inflows")
	assert.True(t, pay.Amount.Equal(decimal.NewFromInt(-2500)))
	assert.Equal(t, "Direct Deposit", pay.Category)

	check := stmt.Transactions[byID["1234567890-2024012501"]]
	assert.Equal(t, "CHECK #1234", check.Name)
	assert.True(t, check.Amount.Equal(decimal.NewFromInt(500)))
}

func TestParseCreditCardTransactions(t *testing.T) {
	stmt, err := NewParser().ParseFile(context.Background(), strings.NewReader(sampleCreditCardOFX), "user-1")
	require.NoError(t, err)
	require.Len(t, stmt.Transactions, 2)

	amazon := stmt.Transactions[0]
	assert.Equal(t, "4111111111111111-CC2024011001", amazon.ID)
	assert.Equal(t, "AMAZON.COM*RT4Y7HG2", amazon.Name)
	assert.True(t, amazon.Amount.Equal(decimal.RequireFromString("45.99")))
	assert.Equal(t, "4111111111111111", amazon.AccountID)

	netflix := stmt.Transactions[1]
	assert.Equal(t, "NETFLIX.COM", netflix.MerchantName)
	assert.True(t, netflix.Amount.Equal(decimal.NewFromInt(15)))
}

func TestParseFile_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewParser().ParseFile(ctx, strings.NewReader(sampleBankOFX), "user-1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseFile_RepairsSloppyFormatting(t *testing.T) {
	sloppy := "\n\n  " + sampleCreditCardOFX

	stmt, err := NewParser().ParseFile(context.Background(), strings.NewReader(sloppy), "user-1")
	require.NoError(t, err)
	assert.Len(t, stmt.Transactions, 2)
}

func TestMerchantName(t *testing.T) {
	tests := []struct {
		name     string
		tx       ofxgo.Transaction
		expected string
	}{
		{
			name:     "remove POS prefix",
			tx:       ofxgo.Transaction{Name: "POS PURCHASE STARBUCKS"},
			expected: "STARBUCKS",
		},
		{
			name:     "remove DEBIT CARD prefix",
			tx:       ofxgo.Transaction{Name: "DEBIT CARD PURCHASE WHOLE FOODS"},
			expected: "WHOLE FOODS",
		},
		{
			name:     "strip leading date",
			tx:       ofxgo.Transaction{Name: "03/14 SHELL OIL 5744"},
			expected: "SHELL OIL 5744",
		},
		{
			name:     "generic name falls back to memo",
			tx:       ofxgo.Transaction{Name: "PURCHASE", Memo: "TRADER JOE'S #552"},
			expected: "TRADER JOE'S #552",
		},
		{
			name:     "payee wins",
			tx:       ofxgo.Transaction{Name: "ACH DEBIT 8812", Payee: &ofxgo.Payee{Name: "City Water"}},
			expected: "City Water",
		},
		{
			name:     "trim whitespace",
			tx:       ofxgo.Transaction{Name: "  AMAZON.COM  "},
			expected: "AMAZON.COM",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, merchantName(tt.tx))
		})
	}
}

func TestCategoryHint(t *testing.T) {
	assert.Equal(t, "Direct Deposit", categoryHint(ofxgo.TrnTypeDirectDep))
	assert.Equal(t, "Interest Income", categoryHint(ofxgo.TrnTypeInt))
	assert.Equal(t, "Bank Fees", categoryHint(ofxgo.TrnTypeFee))
	assert.Empty(t, categoryHint(ofxgo.TrnTypeDebit))
}

func TestParseFile_HashesAreStable(t *testing.T) {
	parser := NewParser()
	first, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX), "user-1")
	require.NoError(t, err)
	second, err := parser.ParseFile(context.Background(), strings.NewReader(sampleBankOFX), "user-1")
	require.NoError(t, err)

	for i := range first.Transactions {
		assert.Equal(t, first.Transactions[i].Hash, second.Transactions[i].Hash)
	}
}
