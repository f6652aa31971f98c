package booking

import (
	"vendly/models"
	"vendly/utils"
)

// depositRate is the upfront share of the total collected at creation.
const depositRate = 0.30

// ComputePrice derives the booking total from the service's per-minute rate
// and the requested duration, plus the 30% deposit. A service duration of
// zero falls back to the default so the rate never divides by zero.
func ComputePrice(svc models.Service, requestedDuration int) (total, deposit float64) {
	perMinute := svc.BasePrice / float64(svc.EffectiveDuration())
	total = utils.Round2(perMinute * float64(requestedDuration))
	deposit = utils.Round2(depositRate * total)
	return total, deposit
}

// RefundRate returns the refund tier for a cancellation with the given hours
// of notice before the scheduled time: a full day keeps the customer whole,
// half a day halves it, anything less forfeits the paid amount.
func RefundRate(hoursNotice float64) float64 {
	switch {
	case hoursNotice >= 24:
		return 1.0
	case hoursNotice >= 12:
		return 0.5
	default:
		return 0
	}
}
