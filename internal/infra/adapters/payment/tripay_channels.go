package payment

import (
	"github.com/shopspring/decimal"

	"apivro/internal/domain/model"
)

const tripayIconBase = "https://tripay.co.id/images/payment_icon/"

func tripayChannel(code, name string, flat int64, pct string) model.PaymentChannel {
	return model.PaymentChannel{
		Code:       code,
		Name:       name,
		FeeType:    "customer",
		FeeFlat:    flat,
		FeePercent: decimal.RequireFromString(pct),
		IconURL:    tripayIconBase + code + ".png",
	}
}

// tripayChannels is the catalogue we expose. Fees mirror the merchant's Tripay
// dashboard and are borne by the customer.
var tripayChannels = []model.PaymentChannel{
	tripayChannel("QRIS", "QRIS", 750, "0.7"),
	tripayChannel("MANDIRIVA", "Mandiri Virtual Account", 4250, "0"),
	tripayChannel("BRIVA", "BRI Virtual Account", 4250, "0"),
	tripayChannel("BNIVA", "BNI Virtual Account", 4250, "0"),
	tripayChannel("BSIVA", "BSI Virtual Account", 4250, "0"),
}

func findChannel(list []model.PaymentChannel, code string) (model.PaymentChannel, bool) {
	for _, ch := range list {
		if ch.Code == code {
			return ch, true
		}
	}
	return model.PaymentChannel{}, false
}

func copyChannels(list []model.PaymentChannel) []model.PaymentChannel {
	out := make([]model.PaymentChannel, len(list))
	copy(out, list)
	return out
}
