package balance

import "github.com/shopspring/decimal"

// DefaultPlatformFeeRate is the platform's cut of each purchase
var DefaultPlatformFeeRate = decimal.NewFromFloat(0.10)

// PlatformFee returns the platform's cut of a purchase amount
func PlatformFee(amount, feeRate decimal.Decimal) decimal.Decimal {
	return amount.Mul(feeRate).Round(2)
}

// SellerShare returns what the seller receives after the platform fee
func SellerShare(amount, feeRate decimal.Decimal) decimal.Decimal {
	return amount.Sub(PlatformFee(amount, feeRate))
}
