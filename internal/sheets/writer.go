package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/Veraticus/spice-budget/internal/common"
	"github.com/Veraticus/spice-budget/internal/service"
)

// BudgetWriter publishes a budget report and returns the spreadsheet ID.
type BudgetWriter interface {
	Write(ctx context.Context, report Report) (string, error)
}

var _ BudgetWriter = (*Writer)(nil)

// Writer writes budget reports to Google Sheets.
type Writer struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

// NewWriter creates a new Google Sheets budget writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	srv, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Writer{
		config:  config,
		service: srv,
		logger:  logger,
	}, nil
}

// Write replaces the spreadsheet contents with the report.
func (w *Writer) Write(ctx context.Context, report Report) (string, error) {
	w.logger.Info("starting budget export",
		"framework", report.Framework,
		"categories", len(report.Categories))

	spreadsheetID, err := w.getOrCreateSpreadsheet(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrExportFailed, err)
	}

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	if err := common.WithRetry(ctx, func() error {
		return classifyAPIError(w.clearSheet(ctx, spreadsheetID))
	}, retryOpts); err != nil {
		return "", fmt.Errorf("%w: failed to clear sheet: %v", common.ErrExportFailed, err)
	}

	layout := prepareBudgetRows(report)
	if err := common.WithRetry(ctx, func() error {
		return classifyAPIError(w.writeData(ctx, spreadsheetID, layout.values))
	}, retryOpts); err != nil {
		return "", fmt.Errorf("%w: failed to write data: %v", common.ErrExportFailed, err)
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return classifyAPIError(w.applyFormatting(ctx, spreadsheetID, layout))
		}, retryOpts)
		if err != nil {
			// Unformatted data is still a usable export.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("budget export completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(layout.values))

	return spreadsheetID, nil
}

// classifyAPIError maps throttling to common.ErrRateLimit and marks other
// client errors as permanent so they are not retried.
func classifyAPIError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", common.ErrRateLimit, err)
	case apiErr.Code >= 400 && apiErr.Code < 500:
		return &common.RetryableError{Err: err, Retryable: false}
	default:
		return err
	}
}

func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		cfg := oauthConfig(config.ClientID, config.ClientSecret, "")
		tokenSource = cfg.TokenSource(ctx, &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		})
	}

	srv, err := sheets.NewService(ctx, option.WithHTTPClient(oauth2.NewClient(ctx, tokenSource)))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return srv, nil
}

func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		if _, err := w.service.Spreadsheets.Get(w.config.SpreadsheetID).Context(ctx).Do(); err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return w.config.SpreadsheetID, nil
	}

	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    w.config.SpreadsheetName,
			TimeZone: w.config.TimeZone,
		},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: "Budget"}},
		},
	}

	created, err := w.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet",
		"id", created.SpreadsheetId,
		"url", created.SpreadsheetUrl)

	return created.SpreadsheetId, nil
}

func (w *Writer) clearSheet(ctx context.Context, spreadsheetID string) error {
	_, err := w.service.Spreadsheets.Values.Clear(spreadsheetID, "A:Z", &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

// layout is the rendered sheet plus the rows that need emphasis.
type layout struct {
	values         [][]any
	sectionRows    []int
	tableHeaderRow []int
}

func (l *layout) section(title string) {
	l.sectionRows = append(l.sectionRows, len(l.values))
	l.values = append(l.values, []any{title})
}

func (l *layout) header(cells ...any) {
	l.tableHeaderRow = append(l.tableHeaderRow, len(l.values))
	l.values = append(l.values, cells)
}

func (l *layout) row(cells ...any) {
	l.values = append(l.values, cells)
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

// prepareBudgetRows lays the report out top to bottom. Money always sits in
// the third column so a single currency format covers it.
func prepareBudgetRows(r Report) layout {
	var l layout

	l.row("Monthly Budget", r.Framework, r.Generated.Format("Jan 2, 2006"))
	l.row()

	l.section("Summary")
	l.row("Monthly Income", "", money(r.MonthlyIncome))
	l.row("Total Budget", "", money(r.TotalBudget))
	l.row("Unallocated", "", money(r.Unallocated))
	if r.Stability != "" {
		l.row("Income Stability", r.Stability)
	}
	l.row()

	l.section("Categories")
	l.header("Category", "Priority", "Amount", "% of Income", "Fixed", "Notes")
	for _, c := range r.Categories {
		fixed := ""
		if c.Fixed {
			fixed = "yes"
		}
		l.row(c.Category, c.Priority, money(c.Amount), c.ShareOfIncome.InexactFloat64(), fixed, c.Notes)
	}

	if len(r.Income) > 0 {
		l.row()
		l.section("Income Streams")
		l.header("Source", "Frequency", "Monthly", "Declared")
		for _, s := range r.Income {
			declared := "detected"
			if s.Declared {
				declared = "declared"
			}
			l.row(s.Source, s.Frequency, money(s.Monthly), declared)
		}
	}

	if len(r.Insights) > 0 {
		l.row()
		l.section("Insights")
		for _, s := range r.Insights {
			l.row(s)
		}
	}

	if len(r.Warnings) > 0 {
		l.row()
		l.section("Warnings")
		for _, s := range r.Warnings {
			l.row(s)
		}
	}

	return l
}

func (w *Writer) writeData(ctx context.Context, spreadsheetID string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))
		batch := values[i:end]

		_, err := w.service.Spreadsheets.Values.Update(spreadsheetID, fmt.Sprintf("A%d", i+1), &sheets.ValueRange{Values: batch}).
			ValueInputOption("USER_ENTERED").
			Context(ctx).
			Do()
		if err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "start_row", i+1, "rows", len(batch))
	}
	return nil
}

func boldRow(row int, size int64) *sheets.Request {
	format := &sheets.TextFormat{Bold: true}
	if size > 0 {
		format.FontSize = size
	}
	return &sheets.Request{
		RepeatCell: &sheets.RepeatCellRequest{
			Range: &sheets.GridRange{
				SheetId:          0,
				StartRowIndex:    int64(row),
				EndRowIndex:      int64(row + 1),
				StartColumnIndex: 0,
				EndColumnIndex:   6,
			},
			Cell:   &sheets.CellData{UserEnteredFormat: &sheets.CellFormat{TextFormat: format}},
			Fields: "userEnteredFormat.textFormat",
		},
	}
}

// formattingRequests builds the batch update for a laid-out report.
func formattingRequests(l layout) []*sheets.Request {
	requests := []*sheets.Request{boldRow(0, 16)}
	for _, row := range l.sectionRows {
		requests = append(requests, boldRow(row, 12))
	}
	for _, row := range l.tableHeaderRow {
		requests = append(requests, boldRow(row, 0))
	}

	requests = append(requests,
		&sheets.Request{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          0,
					StartRowIndex:    1,
					EndRowIndex:      int64(len(l.values)),
					StartColumnIndex: 2,
					EndColumnIndex:   3,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						NumberFormat: &sheets.NumberFormat{Type: "CURRENCY", Pattern: "$#,##0.00"},
					},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		},
		&sheets.Request{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    0,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   6,
				},
			},
		},
		&sheets.Request{
			UpdateSheetProperties: &sheets.UpdateSheetPropertiesRequest{
				Properties: &sheets.SheetProperties{
					SheetId:        0,
					GridProperties: &sheets.GridProperties{FrozenRowCount: 1},
				},
				Fields: "gridProperties.frozenRowCount",
			},
		},
	)
	return requests
}

func (w *Writer) applyFormatting(ctx context.Context, spreadsheetID string, l layout) error {
	_, err := w.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: formattingRequests(l),
	}).Context(ctx).Do()
	return err
}
