package services

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// LifeBufferInput carries the monthly figures as exact decimals.
type LifeBufferInput struct {
	NetWorth        decimal.Decimal `json:"net_worth"`
	MonthlyIncome   decimal.Decimal `json:"monthly_income"`
	MonthlyExpenses decimal.Decimal `json:"monthly_expenses"`
}

// LifeBufferResult expresses net worth as a duration of runway.
type LifeBufferResult struct {
	BufferMonths decimal.Decimal `json:"buffer_months"`
	Years        int64           `json:"years"`
	Months       int64           `json:"months"`
	SavingsRate  decimal.Decimal `json:"savings_rate_percent"`
	Label        string          `json:"label"`
}

// ComputeLifeBuffer converts money into units of time: how long the current
// net worth sustains the current monthly burn. Zero or negative expenses
// yield a zero buffer rather than a division error, and a negative net worth
// reads as no buffer at all.
func ComputeLifeBuffer(in LifeBufferInput) LifeBufferResult {
	out := LifeBufferResult{
		BufferMonths: decimal.Zero,
		SavingsRate:  decimal.Zero,
	}

	if in.MonthlyExpenses.IsPositive() {
		months := in.NetWorth.Div(in.MonthlyExpenses)
		if months.IsNegative() {
			months = decimal.Zero
		}
		out.BufferMonths = months.Round(1)
		whole := months.IntPart()
		out.Years = whole / 12
		out.Months = whole % 12
	}

	if in.MonthlyIncome.IsPositive() {
		out.SavingsRate = in.MonthlyIncome.
			Sub(in.MonthlyExpenses).
			Div(in.MonthlyIncome).
			Mul(decimal.NewFromInt(100)).
			Round(1)
	}

	out.Label = bufferLabel(out.Years, out.Months)
	return out
}

func bufferLabel(years, months int64) string {
	switch {
	case years > 0 && months > 0:
		return fmt.Sprintf("%d years, %d months of breathing room", years, months)
	case years > 0:
		return fmt.Sprintf("%d years of breathing room", years)
	case months > 0:
		return fmt.Sprintf("%d months of breathing room", months)
	default:
		return "less than a month of breathing room"
	}
}
