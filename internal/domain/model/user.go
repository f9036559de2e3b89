package model

import (
	"strings"
	"time"
)

// Profile is the account owner. TotalMessagesSent is a lifetime counter.
type Profile struct {
	ID                string
	Email             string
	FullName          string
	TotalMessagesSent int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// DisplayName prefers the full name, then the email local part.
func (p *Profile) DisplayName() string {
	if p == nil {
		return "Customer"
	}
	if n := strings.TrimSpace(p.FullName); n != "" {
		return n
	}
	if i := strings.IndexByte(p.Email, '@'); i > 0 {
		return p.Email[:i]
	}
	return "Customer"
}
