// Package ofx imports OFX/QFX bank and credit card statements into the
// ledger.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-budget/internal/model"
)

var (
	severityPattern = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	openTagPattern  = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	datePrefix      = regexp.MustCompile(`^\d{2}/\d{2}\s+`)
)

var purchasePrefixes = []string{
	"POS PURCHASE ",
	"PURCHASE AUTHORIZED ON ",
	"DEBIT CARD PURCHASE ",
	"ACH DEBIT ",
	"CHECK CARD ",
	"VISA PURCHASE ",
	"MC PURCHASE ",
	"DEBIT PURCHASE ",
}

// Statement is the content of one OFX file.
type Statement struct {
	Accounts     []string
	Transactions []model.Transaction
}

// Parser reads OFX/QFX files.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// normalize fixes formatting quirks some banks emit that ofxgo rejects.
func normalize(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityPattern.ReplaceAllStringFunc(content, strings.ToUpper)
	return openTagPattern.ReplaceAllString(content, "$1>")
}

// ParseFile parses a statement for userID. Amounts are converted to the
// ledger convention: money leaving the account is positive.
func (p *Parser) ParseFile(ctx context.Context, reader io.Reader, userID string) (*Statement, error) {
	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(normalize(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	stmt := &Statement{}
	accounts := make(map[string]struct{})
	add := func(accountID string, list *ofxgo.TransactionList) {
		if accountID != "" {
			accounts[accountID] = struct{}{}
		}
		if list == nil {
			return
		}
		for _, ofxTx := range list.Transactions {
			txn, err := p.convertTransaction(ofxTx, accountID, userID)
			if err != nil {
				slog.Warn("Skipping OFX transaction",
					"account", accountID,
					"fitid", string(ofxTx.FiTID),
					"error", err)
				continue
			}
			stmt.Transactions = append(stmt.Transactions, txn)
		}
	}

	var bankStmts, ccStmts int
	for _, msg := range resp.Bank {
		if s, ok := msg.(*ofxgo.StatementResponse); ok {
			bankStmts++
			add(string(s.BankAcctFrom.AcctID), s.BankTranList)
		}
	}
	for _, msg := range resp.CreditCard {
		if s, ok := msg.(*ofxgo.CCStatementResponse); ok {
			ccStmts++
			add(string(s.CCAcctFrom.AcctID), s.BankTranList)
		}
	}

	for acct := range accounts {
		stmt.Accounts = append(stmt.Accounts, acct)
	}
	sort.Strings(stmt.Accounts)

	slog.Info("Parsed OFX file",
		"transactions", len(stmt.Transactions),
		"bank_statements", bankStmts,
		"cc_statements", ccStmts)

	return stmt, nil
}

func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, accountID, userID string) (model.Transaction, error) {
	// OFX reports debits as negative amounts.
	amount, err := decimal.NewFromString(ofxTx.TrnAmt.Rat.FloatString(2))
	if err != nil {
		return model.Transaction{}, fmt.Errorf("invalid amount: %w", err)
	}

	txn := model.Transaction{
		ID:           accountID + "-" + string(ofxTx.FiTID),
		UserID:       userID,
		Date:         ofxTx.DtPosted.Time,
		Name:         strings.TrimSpace(string(ofxTx.Name)),
		MerchantName: merchantName(ofxTx),
		Category:     categoryHint(ofxTx.TrnType),
		Amount:       amount.Neg(),
		AccountID:    accountID,
	}
	if txn.Name == "" {
		txn.Name = txn.MerchantName
	}
	txn.Hash = txn.GenerateHash()

	return txn, nil
}

// categoryHint maps the few OFX transaction types that imply a category.
// ofxgo does not export its transaction-type type, so t is taken as any.
func categoryHint(t any) string {
	switch t {
	case ofxgo.TrnTypeDirectDep:
		return "Direct Deposit"
	case ofxgo.TrnTypeInt, ofxgo.TrnTypeDiv:
		return "Interest Income"
	case ofxgo.TrnTypeFee, ofxgo.TrnTypeSrvChg:
		return "Bank Fees"
	case ofxgo.TrnTypeATM:
		return "Cash & ATM"
	default:
		return ""
	}
}

func merchantName(tx ofxgo.Transaction) string {
	if tx.Payee != nil && tx.Payee.Name != "" {
		return strings.TrimSpace(string(tx.Payee.Name))
	}

	name := strings.TrimSpace(string(tx.Name))
	if tx.Memo != "" && isGenericDescription(name) {
		name = strings.TrimSpace(string(tx.Memo))
	}

	upper := strings.ToUpper(name)
	for _, prefix := range purchasePrefixes {
		if strings.HasPrefix(upper, prefix) {
			name = name[len(prefix):]
			break
		}
	}

	return strings.TrimSpace(datePrefix.ReplaceAllString(name, ""))
}

func isGenericDescription(name string) bool {
	switch strings.ToUpper(name) {
	case "DEBIT", "CREDIT", "PURCHASE", "PAYMENT", "POS TRANSACTION", "CARD PURCHASE":
		return true
	default:
		return false
	}
}
