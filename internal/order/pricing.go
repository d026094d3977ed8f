package order

import "github.com/shopspring/decimal"

var (
	taxRate               = decimal.New(1, -1)
	freeShippingThreshold = decimal.NewFromInt(100)
	flatShipping          = decimal.NewFromInt(10)
)

type Pricing struct {
	ItemsPrice    decimal.Decimal
	TaxPrice      decimal.Decimal
	ShippingPrice decimal.Decimal
	TotalPrice    decimal.Decimal
}

// CalculatePricing applies 10% tax and flat shipping that is waived above 100.
func CalculatePricing(itemsPrice decimal.Decimal) Pricing {
	tax := itemsPrice.Mul(taxRate).Round(2)

	shipping := flatShipping
	if itemsPrice.GreaterThan(freeShippingThreshold) {
		shipping = decimal.Zero
	}

	return Pricing{
		ItemsPrice:    itemsPrice,
		TaxPrice:      tax,
		ShippingPrice: shipping,
		TotalPrice:    itemsPrice.Add(tax).Add(shipping),
	}
}
