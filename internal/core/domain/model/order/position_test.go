package order_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPosition(t *testing.T) {
	point, err := kernel.NewGeoPoint(55.7558, 37.6173)
	require.NoError(t, err)

	t.Run("valid_position", func(t *testing.T) {
		pos, err := order.NewPosition(point, 5, 180, 12.5, testTime)

		require.NoError(t, err)
		assert.Equal(t, point, pos.Point())
		assert.InEpsilon(t, 5.0, pos.Accuracy(), 1e-9)
		assert.InEpsilon(t, 180.0, pos.Heading(), 1e-9)
		assert.InEpsilon(t, 12.5, pos.Speed(), 1e-9)
		assert.Equal(t, testTime, pos.ReportedAt())
	})

	t.Run("zero_speed_is_valid", func(t *testing.T) {
		pos, err := order.NewPosition(point, 5, 0, 0, testTime)

		require.NoError(t, err)
		assert.Zero(t, pos.Speed())
	})

	t.Run("rejects_negative_accuracy", func(t *testing.T) {
		_, err := order.NewPosition(point, -1, 0, 0, testTime)
		require.Error(t, err)
	})

	t.Run("rejects_heading_out_of_range", func(t *testing.T) {
		_, err := order.NewPosition(point, 5, 360, 0, testTime)
		require.Error(t, err)

		_, err = order.NewPosition(point, 5, -1, 0, testTime)
		require.Error(t, err)
	})

	t.Run("rejects_negative_speed", func(t *testing.T) {
		_, err := order.NewPosition(point, 5, 0, -3, testTime)
		require.Error(t, err)
	})

	t.Run("rejects_unconstructed_point", func(t *testing.T) {
		var zero kernel.GeoPoint
		_, err := order.NewPosition(zero, 5, 0, 0, testTime)
		require.Error(t, err)
	})

	t.Run("rejects_zero_report_time", func(t *testing.T) {
		_, err := order.NewPosition(point, 5, 0, 0, time.Time{})
		require.Error(t, err)
	})
}

func TestPosition_Validate(t *testing.T) {
	var pos order.Position
	require.ErrorIs(t, pos.Validate(), order.ErrPositionIsNotConstructed)
}
