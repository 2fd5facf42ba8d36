package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-budget/internal/model"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr bool
	}{
		{
			name: "valid context",
			ctx:  context.Background(),
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: true,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateContext() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTransaction(t *testing.T) {
	valid := model.Transaction{
		ID:     "txn-1",
		UserID: "user-1",
		Date:   time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		Name:   "Coffee",
		Amount: decimal.NewFromFloat(4.5),
	}

	tests := []struct {
		mutate  func(*model.Transaction)
		wantErr error
		name    string
	}{
		{name: "valid", mutate: func(*model.Transaction) {}},
		{name: "missing id", mutate: func(txn *model.Transaction) { txn.ID = "" }, wantErr: ErrInvalidTransaction},
		{name: "missing user", mutate: func(txn *model.Transaction) { txn.UserID = "" }, wantErr: ErrInvalidTransaction},
		{name: "zero date", mutate: func(txn *model.Transaction) { txn.Date = time.Time{} }, wantErr: ErrInvalidTransaction},
		{name: "missing name", mutate: func(txn *model.Transaction) { txn.Name = "" }, wantErr: ErrInvalidTransaction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			txn := valid
			tt.mutate(&txn)
			err := validateTransaction(&txn)
			if tt.wantErr == nil && err != nil {
				t.Errorf("validateTransaction() unexpected error = %v", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("validateTransaction() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if err := validateTransaction(nil); !errors.Is(err, ErrNilParameter) {
		t.Errorf("validateTransaction(nil) error = %v, want %v", err, ErrNilParameter)
	}
}

func TestValidateRecurringIncome(t *testing.T) {
	from := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	before := from.AddDate(0, -1, 0)

	tests := []struct {
		income  *model.RecurringIncome
		name    string
		wantErr bool
	}{
		{
			name: "valid",
			income: &model.RecurringIncome{
				UserID: "u", Source: "Acme", Frequency: model.FrequencyMonthly, GrossAmount: decimal.NewFromInt(1),
			},
		},
		{
			name: "zero gross",
			income: &model.RecurringIncome{
				UserID: "u", Source: "Acme", Frequency: model.FrequencyMonthly,
			},
			wantErr: true,
		},
		{
			name: "negative net",
			income: &model.RecurringIncome{
				UserID: "u", Source: "Acme", Frequency: model.FrequencyMonthly, GrossAmount: decimal.NewFromInt(1),
				NetAmount: decimal.NewNullDecimal(decimal.NewFromInt(-1)),
			},
			wantErr: true,
		},
		{
			name: "range ends before it starts",
			income: &model.RecurringIncome{
				UserID: "u", Source: "Acme", Frequency: model.FrequencyMonthly, GrossAmount: decimal.NewFromInt(1),
				EffectiveFrom: from, EffectiveTo: &before,
			},
			wantErr: true,
		},
		{
			name:    "nil",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateRecurringIncome(tt.income)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateRecurringIncome() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
