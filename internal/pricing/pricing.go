// Package pricing applies contract-customer discounts to service prices.
package pricing

// ApplyDiscount returns the unit price after a percentage discount.
// discountPercent is expected to be clamped to [0,100] by the caller;
// this function performs no clamping and has no side effects.
func ApplyDiscount(unitPrice, discountPercent float64) float64 {
	return unitPrice * (1 - discountPercent/100)
}

// LineTotal is the discounted price for a service line.
func LineTotal(unitPrice, discountPercent float64, quantity int) float64 {
	return ApplyDiscount(unitPrice, discountPercent) * float64(quantity)
}
