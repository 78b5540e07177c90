package payroll_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/quizworks/league-engine/accounts"
	"github.com/quizworks/league-engine/payroll"
)

// =============================================================================
// HOST EVENT PAY TESTS
// =============================================================================

func TestHostEventPay_DefaultRates(t *testing.T) {
	// Default host curve: $50 covers up to 5 teams, $2 per team over.
	rates := accounts.DefaultHostRates()

	tests := []struct {
		teams int
		want  string
	}{
		{0, "50"},
		{3, "50"},
		{5, "50"},
		{6, "52"},
		{10, "60"},
	}
	for _, tt := range tests {
		got := payroll.HostEventPay(tt.teams, rates)
		assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
			"%d teams: want %s, got %s", tt.teams, tt.want, got)
	}
}

func TestHostEventPay_CustomCurve(t *testing.T) {
	// GIVEN: a host paid $50 base for 5 teams plus $5 per extra team
	// WHEN: 10 teams show up
	// THEN: pay is 50 + (10-5)*5 = 75; a small night still pays the base

	rates := accounts.RateSchedule{
		BaseTeams:        5,
		BaseRate:         decimal.NewFromInt(50),
		IncrementalTeams: 1,
		IncrementalRate:  decimal.NewFromInt(5),
	}

	assert.True(t, payroll.HostEventPay(10, rates).Equal(decimal.NewFromInt(75)))
	assert.True(t, payroll.HostEventPay(3, rates).Equal(decimal.NewFromInt(50)))
}

func TestHostEventPay_RoundsToCents(t *testing.T) {
	rates := accounts.RateSchedule{
		BaseTeams:        5,
		BaseRate:         decimal.RequireFromString("50.10"),
		IncrementalTeams: 1,
		IncrementalRate:  decimal.RequireFromString("2.333"),
	}
	got := payroll.HostEventPay(8, rates)
	assert.True(t, got.Equal(decimal.RequireFromString("57.10")), "got %s", got)
}

// =============================================================================
// SALARY PAY TESTS
// =============================================================================

func TestSalaryPay_FullWeek(t *testing.T) {
	// Monday through Saturday covers 5 business days: the full weekly pay.
	monday := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	weekly := decimal.NewFromInt(950)

	got := payroll.SalaryPay(monday, monday.AddDate(0, 0, 5), weekly)
	assert.True(t, got.Equal(decimal.NewFromInt(950)), "got %s", got)
}

func TestSalaryPay_PartialWeek(t *testing.T) {
	// GIVEN: a manager on $950/week
	// WHEN: the span covers only 2 business days
	// THEN: pay is 950/5*2 = 380

	thursday := time.Date(2025, time.March, 13, 0, 0, 0, 0, time.UTC)
	weekly := decimal.NewFromInt(950)

	got := payroll.SalaryPay(thursday, thursday.AddDate(0, 0, 2), weekly)
	assert.True(t, got.Equal(decimal.NewFromInt(380)), "thu+fri = 2 days, got %s", got)
}

func TestSalaryPay_WeekendOnlySpanIsZero(t *testing.T) {
	saturday := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	weekly := decimal.NewFromInt(950)

	got := payroll.SalaryPay(saturday, saturday.AddDate(0, 0, 2), weekly)
	assert.True(t, got.IsZero(), "got %s", got)
}

func TestSalaryPay_RoundsToCents(t *testing.T) {
	monday := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	weekly := decimal.NewFromInt(1000)

	// 3 days of 1000/5 = 600; 1 day of 950/5 = 190; odd weekly pay rounds
	got := payroll.SalaryPay(monday, monday.AddDate(0, 0, 1), decimal.RequireFromString("333.33"))
	assert.True(t, got.Equal(decimal.RequireFromString("66.67")), "got %s", got)

	got = payroll.SalaryPay(monday, monday.AddDate(0, 0, 3), weekly)
	assert.True(t, got.Equal(decimal.NewFromInt(600)), "got %s", got)
}
