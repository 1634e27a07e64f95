package cmd

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"fulfillment/internal/adapters/out/eventbus"
	"fulfillment/internal/adapters/out/postgres"
	"fulfillment/internal/adapters/out/postgres/driverrepo"
	"fulfillment/internal/adapters/out/push"
	"fulfillment/internal/adapters/out/redisbus"
	"fulfillment/internal/adapters/out/refundgw"
	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/services"
	"fulfillment/internal/core/ports"
	"fulfillment/internal/notifications"
	"fulfillment/internal/pkg/throttle"

	"gorm.io/gorm"
)

const defaultLocationBroadcastWindow = 120 * time.Second

type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory

	bus       *eventbus.InMemoryEventBus
	publisher ports.EventPublisher
	redisPub  *redisbus.Publisher

	estimator services.EtaEstimator
	cadence   *throttle.KeyedLimiter
	refunds   ports.RefundGateway
	logger    *slog.Logger
}

// NewCompositionRoot wires the adapters and shared collaborators. The Redis
// mirror is attached only when an address is configured; without it events
// stay in-process.
func NewCompositionRoot(configs Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	bus := eventbus.New(logger)

	var publisher ports.EventPublisher = bus
	var redisPub *redisbus.Publisher
	if configs.RedisAddr != "" {
		redisDB := 0
		if configs.RedisDB != "" {
			parsed, err := strconv.Atoi(configs.RedisDB)
			if err != nil {
				return nil, fmt.Errorf("invalid REDIS_DB value %q: %w", configs.RedisDB, err)
			}
			redisDB = parsed
		}

		var err error
		redisPub, err = redisbus.NewPublisher(configs.RedisAddr, configs.RedisPassword, redisDB)
		if err != nil {
			return nil, err
		}
		publisher = eventbus.NewTeePublisher(bus, redisPub)
	}

	window := defaultLocationBroadcastWindow
	if configs.LocationBroadcastSeconds != "" {
		seconds, err := strconv.Atoi(configs.LocationBroadcastSeconds)
		if err != nil {
			return nil, fmt.Errorf("invalid LOCATION_BROADCAST_SECONDS value %q: %w", configs.LocationBroadcastSeconds, err)
		}
		window = time.Duration(seconds) * time.Second
	}

	var refunds ports.RefundGateway = refundgw.NewLogGateway(logger)
	if configs.RefundProviderURL != "" {
		refunds = refundgw.NewHTTPGateway(configs.RefundProviderURL)
	}

	return &CompositionRoot{
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		bus:        bus,
		publisher:  publisher,
		redisPub:   redisPub,
		estimator:  services.NewEtaEstimator(),
		cadence:    throttle.NewKeyedLimiter(window),
		refunds:    refunds,
		logger:     logger,
	}, nil
}

// Bus exposes the in-process bus for subscriber registration.
func (c *CompositionRoot) Bus() *eventbus.InMemoryEventBus {
	return c.bus
}

// Close releases external connections held by the root.
func (c *CompositionRoot) Close() error {
	if c.redisPub != nil {
		return c.redisPub.Close()
	}
	return nil
}

func (c *CompositionRoot) CreateChangeOrderStatusCommandHandler() commands.ChangeOrderStatusCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewChangeOrderStatusCommandHandler(f, c.publisher, c.refunds, c.logger)
}

func (c *CompositionRoot) CreateClaimOrderCommandHandler() commands.ClaimOrderCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewClaimOrderCommandHandler(f, c.publisher, c.logger)
}

func (c *CompositionRoot) CreateStartDeliveryCommandHandler() commands.StartDeliveryCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewStartDeliveryCommandHandler(f, c.publisher, c.logger)
}

func (c *CompositionRoot) CreateCompleteDeliveryCommandHandler() commands.CompleteDeliveryCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewCompleteDeliveryCommandHandler(f, c.publisher, c.logger)
}

func (c *CompositionRoot) CreateReportLocationCommandHandler() commands.ReportLocationCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewReportLocationCommandHandler(f, c.estimator, c.cadence, c.publisher, c.logger)
}

func (c *CompositionRoot) CreateRecordPaymentEventCommandHandler() commands.RecordPaymentEventCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRecordPaymentEventCommandHandler(f, c.publisher, c.logger)
}

func (c *CompositionRoot) CreateOfferReadyOrdersCommandHandler() commands.OfferReadyOrdersCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewOfferReadyOrdersCommandHandler(f, c.publisher, c.logger)
}

func (c *CompositionRoot) CreateGetTrackingSnapshotQueryHandler() queries.GetTrackingSnapshotQueryHandler {
	return queries.NewGetTrackingSnapshotQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetAvailableOrdersQueryHandler() queries.GetAvailableOrdersQueryHandler {
	return queries.NewGetAvailableOrdersQueryHandler(c.gormDB)
}

// CreateNotificationDispatcher builds the push dispatcher over a standalone
// driver repository. Token pruning commits outside any unit of work.
func (c *CompositionRoot) CreateNotificationDispatcher() *notifications.Dispatcher {
	drivers := driverrepo.NewGormDriverRepository(c.gormDB, noopTracker{})
	return notifications.NewDispatcher(drivers, push.NewLogNotifier(c.logger), c.logger)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

// noopTracker satisfies the repositories' aggregate tracking hook for
// repositories used outside a unit of work.
type noopTracker struct{}

func (noopTracker) TrackAggregate(kernel.UUID, any) {}
