/*
rates.go - Pure pay calculators

PURPOSE:
  The two functions that turn business inputs into gross amounts. Both are
  pure: no clock, no store, decimal in, decimal out. Everything else in the
  engine is plumbing around these.

PRECISION:
  All money math uses decimal.Decimal. Floats never touch an amount.
*/
package payroll

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/quizworks/league-engine/accounts"
	"github.com/quizworks/league-engine/calendar"
)

var five = decimal.NewFromInt(5)

// HostEventPay computes a host's gross for one occurrence from the team
// count. At or above BaseTeams the pay is BaseRate plus IncrementalRate per
// team over base; below base the BaseRate is a floor, not prorated.
//
// The increment applies per single team. RateSchedule.IncrementalTeams is
// carried on the profile but deliberately not used as a step divisor; the
// pay curve has always stepped team-by-team.
func HostEventPay(teams int, r accounts.RateSchedule) decimal.Decimal {
	if teams >= r.BaseTeams {
		over := decimal.NewFromInt(int64(teams - r.BaseTeams))
		return r.BaseRate.Add(over.Mul(r.IncrementalRate)).Round(2)
	}
	return r.BaseRate
}

// SalaryPay prorates a weekly salary by business days worked. The range is
// inclusive of weekStart and exclusive of weekEnd: a Monday-through-Friday
// week is entered as Monday/Saturday and counts five days. Weekends never
// count; the daily rate is always one fifth of the weekly pay.
func SalaryPay(weekStart, weekEnd time.Time, weeklyPay decimal.Decimal) decimal.Decimal {
	days := calendar.BusinessDaysBetween(weekStart, weekEnd)
	daily := weeklyPay.Div(five)
	return daily.Mul(decimal.NewFromInt(int64(days))).Round(2)
}
