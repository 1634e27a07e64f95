package orderrepo

import (
	"context"
	"errors"

	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormOrderRepository implements OrderRepository using GORM.
// It remembers the status each order carried when it was loaded and uses it
// as an optimistic precondition on the next write, so a writer holding a
// stale view of the lifecycle loses instead of silently overwriting a
// transition that landed in between.
type GormOrderRepository struct {
	db           *gorm.DB
	tracker      aggregateTracker
	loadedStatus map[uuid.UUID]int
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:           db,
		tracker:      tracker,
		loadedStatus: make(map[uuid.UUID]int),
	}
}

// Add saves a new order to the database.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves an existing order to the database.
// Writes every column, including ones reset to their zero value, so cleared
// fields like a payment failure reason do not survive the update.
// When the order was loaded through this repository the write re-checks the
// status it was loaded with inside the UPDATE itself; a concurrent transition
// that moved the order in between makes the predicate miss and the stale
// writer gets a conflict instead of erasing the committed state.
func (r *GormOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto, err := fromDomain(aggregate)
	if err != nil {
		return err
	}

	query := r.db.WithContext(ctx).Model(&OrderDTO{}).Where("id = ?", dto.ID)
	baseline, loaded := r.loadedStatus[dto.ID]
	if loaded {
		query = query.Where("status = ?", baseline)
	}

	result := query.Select("*").Updates(&dto)
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		if !loaded {
			return gorm.ErrRecordNotFound
		}

		var count int64
		if err := r.db.WithContext(ctx).Model(&OrderDTO{}).
			Where("id = ?", dto.ID).
			Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
		return errs.NewConflictError("order was changed concurrently")
	}

	r.loadedStatus[dto.ID] = dto.Status
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves an order by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	r.loadedStatus[dto.ID] = dto.Status
	return toDomain(dto)
}

// GetByTransactionID retrieves the order holding the given payment transaction.
func (r *GormOrderRepository) GetByTransactionID(ctx context.Context, transactionID string) (*order.Order, error) {
	if transactionID == "" {
		return nil, errs.NewValueIsRequiredError("transaction id")
	}

	var dto OrderDTO
	if err := r.db.WithContext(ctx).First(&dto, "transaction_id = ?", transactionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("transaction", transactionID)
		}
		return nil, err
	}

	r.loadedStatus[dto.ID] = dto.Status
	return toDomain(dto)
}

// GetAllReadyUnassigned retrieves all Ready orders with no driver bound.
func (r *GormOrderRepository) GetAllReadyUnassigned(ctx context.Context) ([]*order.Order, error) {
	var dtos []OrderDTO
	if err := r.db.WithContext(ctx).
		Find(&dtos, "status = ? AND driver_id IS NULL", int(order.Ready)).Error; err != nil {
		return nil, err
	}

	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}

	return orders, nil
}

// BindDriver atomically assigns a driver with one conditional UPDATE.
// The WHERE clause re-checks the claimable state inside the statement, so
// with any number of concurrent claimants the database lets exactly one
// through. Losers are told why: order.ErrDriverAlreadyAssigned when another
// driver holds the order, order.ErrOrderNotReady when it is not claimable,
// errs.ObjectNotFoundError when it does not exist.
func (r *GormOrderRepository) BindDriver(ctx context.Context, orderID, driverID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	if err := driverID.Validate(); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).Model(&OrderDTO{}).
		Where("id = ? AND driver_id IS NULL AND status = ?", orderID.Bytes(), int(order.Ready)).
		Update("driver_id", driverID.Bytes())
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		// Re-read to tell the caller which precondition failed.
		var dto OrderDTO
		err := r.db.WithContext(ctx).First(&dto, "id = ?", orderID.Bytes()).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errs.NewObjectNotFoundError("order", orderID.String())
		}
		if err != nil {
			return err
		}
		if dto.DriverID != nil {
			return order.ErrDriverAlreadyAssigned
		}
		return order.ErrOrderNotReady
	}

	return nil
}
