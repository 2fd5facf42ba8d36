package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/spice-budget/internal/model"
)

var hundred = decimal.NewFromInt(100)

// newTable builds a table with the shared border and header styling. Columns
// listed in amountCols are right-aligned.
func newTable(headers []string, rows [][]string, amountCols ...int) *table.Table {
	right := make(map[int]bool, len(amountCols))
	for _, c := range amountCols {
		right[c] = true
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(BorderColor)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return TableHeaderStyle
			case right[col]:
				return AmountCellStyle
			default:
				return TableCellStyle
			}
		})
}

func percentOf(part, whole decimal.Decimal) string {
	if !whole.IsPositive() {
		return "-"
	}
	return part.Div(whole).Mul(hundred).StringFixed(1) + "%"
}

func bulletList(b *strings.Builder, title string, style lipgloss.Style, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString("\n" + SubtitleStyle.Render(title) + "\n")
	for _, item := range items {
		b.WriteString(style.Render("  • "+item) + "\n")
	}
}

// RenderBudget formats a budget with its categories, insights and warnings.
func RenderBudget(budget *model.Budget) string {
	var b strings.Builder

	b.WriteString(FormatTitle(fmt.Sprintf("Monthly Budget (%s)", budget.Framework)) + "\n")
	if !budget.CreatedAt.IsZero() {
		b.WriteString(SubtleStyle.Render("Created "+budget.CreatedAt.Format("Jan 2, 2006")) + "\n")
	}

	unallocated := decimal.Max(decimal.Zero, budget.MonthlyIncome.Sub(budget.TotalBudget))
	b.WriteString(fmt.Sprintf("Monthly income: %s\n", BoldStyle.Render(model.FormatMoney(budget.MonthlyIncome))))
	b.WriteString(fmt.Sprintf("Total budget:   %s (%s of income)\n",
		BoldStyle.Render(model.FormatMoney(budget.TotalBudget)),
		percentOf(budget.TotalBudget, budget.MonthlyIncome)))
	if unallocated.IsPositive() {
		b.WriteString(fmt.Sprintf("Unallocated:    %s\n", model.FormatMoney(unallocated)))
	}

	if len(budget.Categories) > 0 {
		rows := make([][]string, 0, len(budget.Categories))
		for _, c := range budget.Categories {
			name := c.Category
			if c.IsFixed {
				name += " (fixed)"
			}
			rows = append(rows, []string{
				name,
				PriorityStyle(c.Priority).Render(string(c.Priority)),
				model.FormatMoney(c.Amount),
				percentOf(c.Amount, budget.MonthlyIncome),
				c.Notes,
			})
		}
		b.WriteString("\n" + newTable([]string{"Category", "Priority", "Amount", "Share", "Notes"}, rows, 2, 3).String() + "\n")
	}

	bulletList(&b, ChartIcon+" Insights", InfoStyle, budget.Insights)
	bulletList(&b, WarningIcon+" Warnings", WarningStyle, budget.Warnings)

	return b.String()
}

// RenderIncome formats an income analysis.
func RenderIncome(analysis model.IncomeAnalysis) string {
	var b strings.Builder

	b.WriteString(FormatTitle("Income Analysis") + "\n")
	if !analysis.HasIncome() {
		b.WriteString(FormatWarning("No income detected. Add a recurring income source with 'spice income add'.") + "\n")
		return b.String()
	}

	b.WriteString(fmt.Sprintf("Monthly income: %s\n", BoldStyle.Render(model.FormatMoney(analysis.MonthlyIncome))))
	b.WriteString(fmt.Sprintf("Stability:      %s\n", analysis.Stability))

	rows := make([][]string, 0, len(analysis.Streams))
	for _, s := range analysis.Streams {
		origin := "detected"
		if s.Declared {
			origin = "declared"
		}
		stable := ""
		if s.IsStable {
			stable = SuccessIcon
		}
		rows = append(rows, []string{s.Source, string(s.Frequency), model.FormatMoney(s.MonthlyAmount), origin, stable})
	}
	b.WriteString("\n" + newTable([]string{"Source", "Frequency", "Monthly", "Origin", "Stable"}, rows, 2).String() + "\n")

	return b.String()
}

// RenderPatterns formats spending patterns, largest first as given.
func RenderPatterns(patterns []model.SpendingPattern) string {
	var b strings.Builder

	b.WriteString(FormatTitle("Spending Patterns") + "\n")
	if len(patterns) == 0 {
		b.WriteString(FormatInfo("No spending in the lookback window.") + "\n")
		return b.String()
	}

	total := decimal.Zero
	rows := make([][]string, 0, len(patterns))
	for _, p := range patterns {
		total = total.Add(p.MonthlyAverage)
		kind := string(model.PriorityDiscretionary)
		if p.IsEssential {
			kind = string(model.PriorityEssential)
		}
		rows = append(rows, []string{
			p.Category,
			model.FormatMoney(p.MonthlyAverage),
			fmt.Sprintf("%d", p.TransactionCount),
			TrendIcon(p.Trend) + " " + string(p.Trend),
			kind,
		})
	}
	b.WriteString(newTable([]string{"Category", "Monthly Avg", "Txns", "Trend", "Type"}, rows, 1, 2).String() + "\n")
	b.WriteString(fmt.Sprintf("Average monthly spending: %s\n", BoldStyle.Render(model.FormatMoney(total))))

	return b.String()
}

// RenderAdjustment formats the proposed or applied changes of an adjustment.
func RenderAdjustment(result model.AdjustmentResult, applied bool) string {
	var b strings.Builder

	title := "Proposed Budget Adjustments"
	if applied {
		title = "Budget Adjusted"
	}
	b.WriteString(FormatTitle(title) + "\n")

	changed := result.Changed()
	if len(changed) == 0 {
		b.WriteString(FormatSuccess("Budget is on track; no adjustments needed.") + "\n")
	} else {
		rows := make([][]string, 0, len(changed))
		for _, c := range changed {
			current := model.FormatMoney(c.Amount)
			if c.IsNew {
				current = "new"
			}
			delta := c.SuggestedAmount.Sub(c.Amount)
			sign := "+"
			if delta.IsNegative() {
				sign = "-"
			}
			rows = append(rows, []string{
				c.Category,
				current,
				model.FormatMoney(c.SuggestedAmount),
				sign + model.FormatMoney(delta.Abs()),
				c.AdjustmentReason,
			})
		}
		b.WriteString(newTable([]string{"Category", "Current", "Suggested", "Change", "Reason"}, rows, 1, 2, 3).String() + "\n")
	}

	b.WriteString(fmt.Sprintf("Total: %s → %s (income %s)\n",
		model.FormatMoney(result.TotalBefore),
		BoldStyle.Render(model.FormatMoney(result.TotalAfter)),
		model.FormatMoney(result.MonthlyIncome)))

	bulletList(&b, ChartIcon+" Recommendations", InfoStyle, result.Recommendations)
	bulletList(&b, WarningIcon+" Warnings", WarningStyle, result.Warnings)

	return b.String()
}

// RenderRecurringIncome formats declared income records.
func RenderRecurringIncome(records []model.RecurringIncome) string {
	if len(records) == 0 {
		return FormatInfo("No recurring income declared.") + "\n"
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		net := "-"
		if r.NetAmount.Valid {
			net = model.FormatMoney(r.NetAmount.Decimal)
		}
		until := "ongoing"
		if r.EffectiveTo != nil {
			until = r.EffectiveTo.Format("2006-01-02")
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", r.ID),
			r.Source,
			string(r.Frequency),
			model.FormatMoney(r.GrossAmount),
			net,
			model.FormatMoney(r.MonthlyAmount()),
			r.EffectiveFrom.Format("2006-01-02"),
			until,
		})
	}
	return newTable([]string{"ID", "Source", "Frequency", "Gross", "Net", "Monthly", "From", "Until"}, rows, 3, 4, 5).String() + "\n"
}

// RenderAccounts formats accounts and the debt they carry.
func RenderAccounts(accounts []model.Account) string {
	if len(accounts) == 0 {
		return FormatInfo("No accounts recorded.") + "\n"
	}

	debt := decimal.Zero
	rows := make([][]string, 0, len(accounts))
	for _, a := range accounts {
		if a.Type.IsDebt() {
			debt = debt.Add(a.Balance.Abs())
		}
		rows = append(rows, []string{a.ID, a.Name, string(a.Type), model.FormatMoney(a.Balance)})
	}

	var b strings.Builder
	b.WriteString(newTable([]string{"ID", "Name", "Type", "Balance"}, rows, 3).String() + "\n")
	if debt.IsPositive() {
		b.WriteString(fmt.Sprintf("Outstanding debt: %s\n", ErrorStyle.Render(model.FormatMoney(debt))))
	}
	return b.String()
}

// RenderGoals formats savings goals.
func RenderGoals(goals []model.Goal) string {
	if len(goals) == 0 {
		return FormatInfo("No savings goals recorded.") + "\n"
	}

	rows := make([][]string, 0, len(goals))
	for _, g := range goals {
		due := "-"
		if g.TargetDate != nil {
			due = g.TargetDate.Format("2006-01-02")
		}
		rows = append(rows, []string{fmt.Sprintf("%d", g.ID), g.Name, model.FormatMoney(g.TargetAmount), due})
	}
	return newTable([]string{"ID", "Goal", "Target", "Due"}, rows, 2).String() + "\n"
}

// RenderPreferences formats stored preferences.
func RenderPreferences(prefs *model.Preferences) string {
	framework := string(model.DefaultFramework) + " (default)"
	savings := "framework default"
	if prefs != nil {
		if prefs.BudgetFramework != "" {
			framework = prefs.BudgetFramework
		}
		if rate, ok := prefs.TargetSavingsRate(); ok {
			savings = fmt.Sprintf("%.1f%%", rate*100)
		}
	}

	return RenderBox("Preferences", fmt.Sprintf("Framework:      %s\nTarget savings: %s", framework, savings)) + "\n"
}
