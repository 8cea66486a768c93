package payroll

import (
	"time"

	"github.com/warp/household-payroll/generic"
)

// PaymentDueBusinessDay is the business day of the month the salary is due on.
const PaymentDueBusinessDay = 5

// NthBusinessDay walks forward from the 1st and returns the day on which the
// nth weekday is counted. Only Saturdays and Sundays are skipped; there is no
// holiday calendar. Assumes a valid month and n >= 1; n beyond the month's
// business days continues into the following month.
func NthBusinessDay(month, year, n int) generic.Date {
	d := generic.StartOfMonth(year, time.Month(month))
	count := 0
	for {
		if d.IsBusinessDay() {
			count++
			if count >= n {
				return d
			}
		}
		d = d.AddDays(1)
	}
}

// PaymentDueDate is the monthly salary due date: the 5th business day.
func PaymentDueDate(month, year int) generic.Date {
	return NthBusinessDay(month, year, PaymentDueBusinessDay)
}
