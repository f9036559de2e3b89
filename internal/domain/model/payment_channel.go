package model

import "github.com/shopspring/decimal"

// PaymentChannel is one method the customer can pay with, with its fee rule.
type PaymentChannel struct {
	Code       string          `json:"code"`
	Name       string          `json:"name"`
	FeeType    string          `json:"fee_type"` // who bears the fee: customer|merchant
	FeeFlat    int64           `json:"fee"`
	FeePercent decimal.Decimal `json:"fee_percent"`
	IconURL    string          `json:"icon_url,omitempty"`
}

// Fee returns flat + ceil(amount * percent / 100).
func (c PaymentChannel) Fee(amount int64) int64 {
	fee := c.FeeFlat
	if c.FeePercent.IsPositive() {
		pct := decimal.NewFromInt(amount).Mul(c.FeePercent).Div(decimal.NewFromInt(100)).Ceil()
		fee += pct.IntPart()
	}
	return fee
}

// Total is amount plus the channel fee.
func (c PaymentChannel) Total(amount int64) int64 { return amount + c.Fee(amount) }
