package payroll

import (
	"github.com/warp/household-payroll/generic"
)

// =============================================================================
// EARNINGS CALCULATOR
// =============================================================================

// Earnings are the totals for one period.
//
// GrandTotal = AttendanceTotal + LaundryTotal. Transport is tracked on its own
// and never folded into GrandTotal.
type Earnings struct {
	HeavyDays          int           `json:"heavy_days"`
	LightDays          int           `json:"light_days"`
	IronedWeeks        int           `json:"ironed_weeks"`
	WashedWeeks        int           `json:"washed_weeks"`
	AttendanceTotal    generic.Money `json:"attendance_total"`
	LaundryTotal       generic.Money `json:"laundry_total"`
	TransportPaidTotal generic.Money `json:"transport_paid_total"`
	GrandTotal         generic.Money `json:"grand_total"`
}

// ComputeEarnings sums attendance and laundry rows at the given prices.
//
//	attendance = heavyPresent * heavy + lightPresent * light
//	laundry    = sum over weeks of (ironed ? ironing : 0) + (washed ? washing : 0)
//	transport  = sum of transport_fee over weeks with a service AND paid_at set
//
// Rows with present=false and weeks with no service contribute nothing.
func ComputeEarnings(attendance []AttendanceRecord, laundry []LaundryWeek, prices Prices) Earnings {
	var e Earnings

	for _, a := range attendance {
		if !a.Present {
			continue
		}
		switch a.DayType {
		case HeavyCleaning:
			e.HeavyDays++
		case LightCleaning:
			e.LightDays++
		}
	}
	e.AttendanceTotal = prices.HeavyCleaning.MulInt(e.HeavyDays).Add(prices.LightCleaning.MulInt(e.LightDays))

	e.LaundryTotal = generic.ZeroMoney()
	e.TransportPaidTotal = generic.ZeroMoney()
	for _, w := range laundry {
		e.LaundryTotal = e.LaundryTotal.Add(WeekServicesTotal(w, prices))
		if w.Ironed {
			e.IronedWeeks++
		}
		if w.Washed {
			e.WashedWeeks++
		}
		e.TransportPaidTotal = e.TransportPaidTotal.Add(TransportPaid(w))
	}

	e.GrandTotal = e.AttendanceTotal.Add(e.LaundryTotal)
	return e
}

// WeekServicesTotal is the laundry amount for one week, transport excluded.
func WeekServicesTotal(w LaundryWeek, prices Prices) generic.Money {
	total := generic.ZeroMoney()
	if w.Ironed {
		total = total.Add(prices.Ironing)
	}
	if w.Washed {
		total = total.Add(prices.Washing)
	}
	return total
}

// TransportDue is the transport fee owed for a week: zero without any service,
// whatever fee is stored.
func TransportDue(w LaundryWeek) generic.Money {
	if !w.HasService() || w.TransportFee.IsNegative() {
		return generic.ZeroMoney()
	}
	return w.TransportFee
}

// TransportPaid is TransportDue once the week is marked paid, zero before.
func TransportPaid(w LaundryWeek) generic.Money {
	if w.PaidAt == nil {
		return generic.ZeroMoney()
	}
	return TransportDue(w)
}
