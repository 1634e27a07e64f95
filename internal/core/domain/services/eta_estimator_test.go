package services_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func makePosition(t *testing.T, lat, lon, speed float64) order.Position {
	t.Helper()

	point, err := kernel.NewGeoPoint(lat, lon)
	require.NoError(t, err)

	pos, err := order.NewPosition(point, 5, 0, speed, now)
	require.NoError(t, err)
	return pos
}

func TestEtaEstimator_Estimate(t *testing.T) {
	estimator := services.NewEtaEstimator()

	t.Run("zero_speed_falls_back_to_thirty_minutes", func(t *testing.T) {
		destination, _ := kernel.NewGeoPoint(55.76, 37.62)
		pos := makePosition(t, 55.75, 37.61, 0)

		estimate, err := estimator.Estimate(pos, destination, now)

		require.NoError(t, err)
		assert.Equal(t, now.Add(30*time.Minute), estimate.ArrivalAt)
		assert.Positive(t, estimate.RemainingDistance)
	})

	t.Run("eta_is_consistent_with_distance_over_speed", func(t *testing.T) {
		// One degree of latitude is ~111195 m on the reference sphere.
		destination, _ := kernel.NewGeoPoint(1, 0)
		pos := makePosition(t, 0, 0, 10) // 10 m/s

		estimate, err := estimator.Estimate(pos, destination, now)

		require.NoError(t, err)
		assert.InDelta(t, 111195, estimate.RemainingDistance, 100)

		expectedTravel := time.Duration(estimate.RemainingDistance / 10 * float64(time.Second))
		assert.Equal(t, now.Add(expectedTravel), estimate.ArrivalAt)
	})

	t.Run("at_destination_with_speed_arrives_now", func(t *testing.T) {
		destination, _ := kernel.NewGeoPoint(55.75, 37.61)
		pos := makePosition(t, 55.75, 37.61, 8)

		estimate, err := estimator.Estimate(pos, destination, now)

		require.NoError(t, err)
		assert.Equal(t, now, estimate.ArrivalAt)
		assert.Zero(t, estimate.RemainingDistance)
	})

	t.Run("rejects_unconstructed_position", func(t *testing.T) {
		destination, _ := kernel.NewGeoPoint(55.75, 37.61)

		_, err := estimator.Estimate(order.Position{}, destination, now)

		require.Error(t, err)
	})

	t.Run("rejects_unconstructed_destination", func(t *testing.T) {
		pos := makePosition(t, 55.75, 37.61, 8)
		var destination kernel.GeoPoint

		_, err := estimator.Estimate(pos, destination, now)

		require.Error(t, err)
	})
}
