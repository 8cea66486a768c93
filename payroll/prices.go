package payroll

import (
	"github.com/shopspring/decimal"
	"github.com/warp/household-payroll/generic"
)

// =============================================================================
// CONFIGURATION KEYS
// =============================================================================

const (
	KeyHeavyCleaning = "heavy_cleaning"
	KeyLightCleaning = "light_cleaning"
	KeyWashing       = "washing"
	KeyIroning       = "ironing"
	KeyTransport     = "transport"
	KeyMonthlySalary = "monthly_salary"
	KeyAdminPIN      = "admin_pin"
)

// Defaults is the single table of fallback values, used by the calculator and by
// any screen that previews prices before configuration loads.
var Defaults = map[string]generic.Money{
	KeyHeavyCleaning: generic.NewMoneyFromInt(250),
	KeyLightCleaning: generic.NewMoneyFromInt(150),
	KeyWashing:       generic.NewMoneyFromInt(75),
	KeyIroning:       generic.NewMoneyFromInt(50),
	KeyTransport:     generic.NewMoneyFromInt(30),
	KeyMonthlySalary: generic.NewMoneyFromInt(2000),
}

// PriceKeys lists the keys an administrator may edit, in display order.
var PriceKeys = []string{
	KeyHeavyCleaning, KeyLightCleaning, KeyWashing, KeyIroning, KeyTransport, KeyMonthlySalary,
}

// =============================================================================
// PRICES
// =============================================================================

// Prices are the unit prices applied to one worker's period.
type Prices struct {
	HeavyCleaning generic.Money `json:"heavy_cleaning"`
	LightCleaning generic.Money `json:"light_cleaning"`
	Washing       generic.Money `json:"washing"`
	Ironing       generic.Money `json:"ironing"`
	Transport     generic.Money `json:"transport"`
	MonthlySalary generic.Money `json:"monthly_salary"`
}

// DefaultPrices returns Defaults as a Prices value.
func DefaultPrices() Prices {
	return ResolvePrices(nil, nil)
}

// ResolvePrices layers per-worker overrides over household config over Defaults.
// A missing or zero value at one layer falls through to the next.
func ResolvePrices(config map[string]decimal.Decimal, worker *Worker) Prices {
	pick := func(key string, override generic.Money) generic.Money {
		if override.IsPositive() {
			return override
		}
		if v, ok := config[key]; ok && v.IsPositive() {
			return generic.Money{Value: v}
		}
		return Defaults[key]
	}

	var o PriceOverrides
	if worker != nil {
		o = worker.Prices
	}
	return Prices{
		HeavyCleaning: pick(KeyHeavyCleaning, o.HeavyCleaning),
		LightCleaning: pick(KeyLightCleaning, o.LightCleaning),
		Washing:       pick(KeyWashing, o.Washing),
		Ironing:       pick(KeyIroning, o.Ironing),
		Transport:     pick(KeyTransport, generic.Money{}),
		MonthlySalary: pick(KeyMonthlySalary, generic.Money{}),
	}
}

// DayPrice is the unit price for one attended day of the given type.
func (p Prices) DayPrice(t DayType) generic.Money {
	switch t {
	case HeavyCleaning:
		return p.HeavyCleaning
	case LightCleaning:
		return p.LightCleaning
	}
	return generic.ZeroMoney()
}
