package model

import (
	"time"

	"apivro/internal/domain"
)

// Plan is a purchasable tier. Reference data, read-only to the core.
type Plan struct {
	ID           string
	Name         string
	MessageLimit int
	PriceMonthly int64 // whole rupiah
	IsActive     bool
	CreatedAt    time.Time
}

func (p *Plan) IsZero() bool { return p == nil || p.ID == "" }

// NewPlan validates and constructs a plan.
func NewPlan(id, name string, messageLimit int, priceMonthly int64) (*Plan, error) {
	if id == "" || name == "" || messageLimit <= 0 || priceMonthly < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Plan{
		ID:           id,
		Name:         name,
		MessageLimit: messageLimit,
		PriceMonthly: priceMonthly,
		IsActive:     true,
		CreatedAt:    time.Now(),
	}, nil
}
