package models

import "time"

// DefaultServiceDuration is used when a service has no duration of its own,
// both for pricing and slot generation.
const DefaultServiceDuration = 60

// Service is one offering in a vendor's catalogue.
type Service struct {
	ID        string    `bson:"id" json:"id"`
	VendorID  string    `bson:"vendor_id" json:"vendorId"`
	Name      string    `bson:"name" json:"name"`
	Duration  int       `bson:"duration" json:"duration"` // minutes; 0 means DefaultServiceDuration
	BasePrice float64   `bson:"base_price" json:"basePrice"`
	Currency  string    `bson:"currency,omitempty" json:"currency,omitempty"`
	Active    bool      `bson:"active" json:"active"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// EffectiveDuration returns the service duration, defaulting when unset.
func (s Service) EffectiveDuration() int {
	if s.Duration <= 0 {
		return DefaultServiceDuration
	}
	return s.Duration
}
