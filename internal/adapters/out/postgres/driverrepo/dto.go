// Package driverrepo provides data transfer objects and mapping functions for
// driver persistence.
package driverrepo

import (
	"encoding/json"

	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// DriverDTO represents the database structure for persisting driver aggregates.
// Device tokens live in a jsonb column: they are only ever read back as a
// whole set by the notification fan-out.
type DriverDTO struct {
	ID                  uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name                string
	State               int `gorm:"index"`
	CompletedDeliveries int
	DeviceTokens        []byte `gorm:"type:jsonb"`
}

// TableName specifies the database table name for driver entities.
func (DriverDTO) TableName() string {
	return "drivers"
}

// fromDomain converts a driver aggregate to its database representation.
func fromDomain(aggregate *driver.Driver) (DriverDTO, error) {
	tokens := aggregate.DeviceTokens()
	if tokens == nil {
		tokens = []string{}
	}
	tokensRaw, err := json.Marshal(tokens)
	if err != nil {
		return DriverDTO{}, err
	}

	return DriverDTO{
		ID:                  aggregate.ID().Bytes(),
		Name:                aggregate.Name(),
		State:               int(aggregate.State()),
		CompletedDeliveries: aggregate.CompletedDeliveries(),
		DeviceTokens:        tokensRaw,
	}, nil
}

// toDomain converts a database row to a driver aggregate using RestoreDriver.
func toDomain(dto DriverDTO) (*driver.Driver, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var tokens []string
	if len(dto.DeviceTokens) > 0 {
		if err = json.Unmarshal(dto.DeviceTokens, &tokens); err != nil {
			return nil, err
		}
	}

	return driver.RestoreDriver(id, dto.Name, driver.State(dto.State), dto.CompletedDeliveries, tokens)
}
