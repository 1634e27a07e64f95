package services

import (
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
)

// fallbackETA is used when the driver reports no usable speed. A stationary
// driver (traffic light, pickup stop) would otherwise yield an infinite ETA.
const fallbackETA = 30 * time.Minute

// Estimate is the result of an arrival computation: an absolute arrival
// timestamp plus the remaining great-circle distance in meters. The timestamp
// is absolute rather than a duration so staleness is observable by callers.
type Estimate struct {
	ArrivalAt         time.Time
	RemainingDistance float64
}

// EtaEstimator is a domain service computing arrival estimates from driver
// position reports.
//
// The estimate uses the last instantaneous speed sample as reported by the
// driver app. A moving average over recent samples would be less noisy, but
// the per-report recomputation deliberately tracks the latest fix: each report
// fully replaces the previous estimate.
type EtaEstimator struct{}

// NewEtaEstimator creates a new EtaEstimator instance.
func NewEtaEstimator() EtaEstimator {
	return EtaEstimator{}
}

// Estimate computes the arrival estimate for a position report heading to
// destination. With a positive reported speed the ETA is
// now + distance/speed; with zero speed it falls back to now + 30 minutes.
// The remaining distance is the haversine great-circle distance.
func (e EtaEstimator) Estimate(
	pos order.Position,
	destination kernel.GeoPoint,
	now time.Time,
) (Estimate, error) {
	if err := pos.Validate(); err != nil {
		return Estimate{}, err
	}

	distance, err := pos.Point().DistanceTo(destination)
	if err != nil {
		return Estimate{}, err
	}

	if pos.Speed() <= 0 {
		return Estimate{
			ArrivalAt:         now.Add(fallbackETA),
			RemainingDistance: distance,
		}, nil
	}

	travel := time.Duration(distance / pos.Speed() * float64(time.Second))
	return Estimate{
		ArrivalAt:         now.Add(travel),
		RemainingDistance: distance,
	}, nil
}
