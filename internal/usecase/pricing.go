package usecase

import (
	"rental-booking/internal/data/entity"

	"github.com/shopspring/decimal"
)

var daysPerMonth = decimal.NewFromInt(30)

// EstimateAmount prices a stay at a linear day rate of rentPerMonth / 30.
func EstimateAmount(rentPerMonth decimal.Decimal, stay entity.DateRange) decimal.Decimal {
	nights := stay.Nights()
	if nights <= 0 {
		return decimal.Zero
	}
	return rentPerMonth.Mul(decimal.NewFromInt(int64(nights))).Div(daysPerMonth).Round(2)
}
