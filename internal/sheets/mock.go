package sheets

import (
	"context"
	"sync"
)

// MockWriter records reports instead of publishing them.
type MockWriter struct {
	WriteFunc     func(ctx context.Context, report Report) (string, error)
	Reports       []Report
	SpreadsheetID string
	mu            sync.Mutex
}

// NewMockWriter creates a new mock writer.
func NewMockWriter() *MockWriter {
	return &MockWriter{SpreadsheetID: "mock-spreadsheet"}
}

// Write implements BudgetWriter.
func (m *MockWriter) Write(ctx context.Context, report Report) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Reports = append(m.Reports, report)
	if m.WriteFunc != nil {
		return m.WriteFunc(ctx, report)
	}
	return m.SpreadsheetID, nil
}

// LastReport returns the most recent report, if any.
func (m *MockWriter) LastReport() (Report, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.Reports) == 0 {
		return Report{}, false
	}
	return m.Reports[len(m.Reports)-1], true
}
