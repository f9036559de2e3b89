package model

import (
	"strconv"
	"strings"
)

// FormatRupiah renders 150000 as "Rp 150.000".
func FormatRupiah(amount int64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := strconv.FormatInt(amount, 10)
	var groups []string
	for len(s) > 3 {
		groups = append([]string{s[len(s)-3:]}, groups...)
		s = s[:len(s)-3]
	}
	groups = append([]string{s}, groups...)
	out := "Rp " + strings.Join(groups, ".")
	if neg {
		out = "-" + out
	}
	return out
}
