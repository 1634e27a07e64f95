package orderrepo_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"fulfillment/internal/adapters/out/postgres/orderrepo"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockAggregateTracker is a mock implementation of the aggregateTracker interface.
type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

// noopTracker ignores tracking calls. Used where call counts are irrelevant,
// like the concurrent claim test.
type noopTracker struct{}

func (noopTracker) TrackAggregate(kernel.UUID, any) {}

// OrderRepositoryIntegrationTestSuite verifies order persistence behavior
// against a real PostgreSQL container.
type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	container  *postgres.PostgresContainer
	db         *gorm.DB
	repository *orderrepo.GormOrderRepository
	tracker    *MockAggregateTracker
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	suite.Require().NoError(db.AutoMigrate(&orderrepo.OrderDTO{}))
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE orders").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.repository = orderrepo.NewGormOrderRepository(suite.db, suite.tracker)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_ValidOrder_Success() {
	ctx := context.Background()

	testOrder := suite.createTestOrder()
	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Once()

	err := suite.repository.Add(ctx, testOrder)
	suite.Require().NoError(err)

	suite.assertOrderCount(1)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_RoundTripPreservesState() {
	ctx := context.Background()

	testOrder := suite.createTestOrder()
	suite.advanceToOutForDelivery(testOrder)
	testOrder.MarkPaid("txn-77", time.Date(2025, 6, 1, 12, 5, 0, 0, time.UTC))

	point, err := kernel.NewGeoPoint(52.36, 4.89)
	suite.Require().NoError(err)
	pos, err := order.NewPosition(point, 8, 120, 6.5, time.Date(2025, 6, 1, 12, 10, 0, 0, time.UTC))
	suite.Require().NoError(err)
	suite.Require().NoError(testOrder.RecordPosition(pos))
	suite.Require().NoError(testOrder.SetETA(time.Date(2025, 6, 1, 12, 40, 0, 0, time.UTC), 3200))

	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Once()
	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	restored, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)

	suite.Equal(testOrder.Number(), restored.Number())
	suite.Equal(order.OutForDelivery, restored.Status())
	suite.Equal(order.PaymentPaid, restored.PaymentStatus())
	suite.Equal("txn-77", restored.TransactionID())
	suite.Require().NotNil(restored.Driver())
	suite.True(restored.Driver().IsEqual(*testOrder.Driver()))
	suite.Require().NotNil(restored.CurrentPosition())
	suite.InDelta(52.36, restored.CurrentPosition().Point().Latitude(), 1e-9)
	suite.Len(restored.PositionHistory(), 1)
	suite.Require().NotNil(restored.ETA())
	suite.True(restored.ETA().Equal(time.Date(2025, 6, 1, 12, 40, 0, 0, time.UTC)))
	suite.InDelta(3200, restored.RemainingDistance(), 1e-9)

	enteredAt, ok := restored.StatusEnteredAt(order.Ready)
	suite.True(ok)
	suite.False(enteredAt.IsZero())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_NonExistentOrder_ReturnsNotFoundError() {
	ctx := context.Background()

	_, err := suite.repository.Get(ctx, kernel.NewUUID())

	suite.Require().Error(err)
	var notFound *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_ClearsResetFields() {
	ctx := context.Background()

	testOrder := suite.createTestOrder()
	testOrder.MarkPaymentFailed("card declined")

	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Twice()
	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	// capture retry succeeds; the failure reason must not survive
	testOrder.MarkPaid("txn-13", time.Now().UTC())
	suite.Require().NoError(suite.repository.Update(ctx, testOrder))

	restored, err := suite.repository.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.PaymentPaid, restored.PaymentStatus())
	suite.Empty(restored.PaymentFailureReason())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_NonExistentOrder_ReturnsError() {
	ctx := context.Background()

	testOrder := suite.createTestOrder()

	err := suite.repository.Update(ctx, testOrder)

	suite.Require().ErrorIs(err, gorm.ErrRecordNotFound)
}

// TestUpdate_StaleStatusViewIsRejected interleaves two writers that both
// loaded the order in Ready. The first transition wins; the second write
// carries a stale status precondition and must fail with a conflict instead
// of overwriting the committed transition and its timestamp stamp.
func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_StaleStatusViewIsRejected() {
	ctx := context.Background()

	testOrder := suite.createTestOrder()
	suite.advanceTo(testOrder, order.Ready)

	seedRepo := orderrepo.NewGormOrderRepository(suite.db, noopTracker{})
	suite.Require().NoError(seedRepo.Add(ctx, testOrder))

	repoA := orderrepo.NewGormOrderRepository(suite.db, noopTracker{})
	repoB := orderrepo.NewGormOrderRepository(suite.db, noopTracker{})

	driverID := kernel.NewUUID()
	viewA, err := repoA.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	viewB, err := repoB.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)

	// writer A starts the delivery and commits first
	suite.Require().NoError(viewA.AssignDriver(driverID))
	suite.Require().NoError(viewA.StartDelivery(driverID, time.Now().UTC()))
	suite.Require().NoError(repoA.Update(ctx, viewA))

	// writer B cancels on its stale Ready view
	suite.Require().NoError(viewB.Cancel("changed my mind", "customer", time.Now().UTC()))
	err = repoB.Update(ctx, viewB)

	var conflict *errs.ConflictError
	suite.Require().ErrorAs(err, &conflict)

	restored, err := seedRepo.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.OutForDelivery, restored.Status())
	_, stamped := restored.StatusEnteredAt(order.OutForDelivery)
	suite.True(stamped)
	suite.False(restored.IsCancelled())
}

// TestUpdate_FreshViewAfterConflictSucceeds is the retry path: after losing
// the optimistic check a writer reloads and the next write goes through.
func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_FreshViewAfterConflictSucceeds() {
	ctx := context.Background()

	testOrder := suite.createTestOrder()
	suite.advanceTo(testOrder, order.Ready)

	seedRepo := orderrepo.NewGormOrderRepository(suite.db, noopTracker{})
	suite.Require().NoError(seedRepo.Add(ctx, testOrder))

	repoB := orderrepo.NewGormOrderRepository(suite.db, noopTracker{})
	viewB, err := repoB.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)

	driverID := kernel.NewUUID()
	viewA, err := seedRepo.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Require().NoError(viewA.AssignDriver(driverID))
	suite.Require().NoError(viewA.StartDelivery(driverID, time.Now().UTC()))
	suite.Require().NoError(seedRepo.Update(ctx, viewA))

	suite.Require().NoError(viewB.Cancel("changed my mind", "customer", time.Now().UTC()))
	var conflict *errs.ConflictError
	suite.Require().ErrorAs(repoB.Update(ctx, viewB), &conflict)

	fresh, err := repoB.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Require().NoError(fresh.Cancel("changed my mind", "customer", time.Now().UTC()))
	suite.Require().NoError(repoB.Update(ctx, fresh))

	restored, err := repoB.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Cancelled, restored.Status())
	_, stamped := restored.StatusEnteredAt(order.OutForDelivery)
	suite.True(stamped)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetByTransactionID() {
	ctx := context.Background()

	testOrder := suite.createTestOrder()
	testOrder.MarkPaid("txn-lookup", time.Now().UTC())

	suite.tracker.On("TrackAggregate", testOrder.ID(), testOrder).Once()
	suite.Require().NoError(suite.repository.Add(ctx, testOrder))

	found, err := suite.repository.GetByTransactionID(ctx, "txn-lookup")
	suite.Require().NoError(err)
	suite.True(found.ID().IsEqual(testOrder.ID()))

	_, err = suite.repository.GetByTransactionID(ctx, "txn-unknown")
	var notFound *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGetAllReadyUnassigned() {
	ctx := context.Background()
	repo := orderrepo.NewGormOrderRepository(suite.db, noopTracker{})

	ready := suite.createTestOrder()
	suite.advanceTo(ready, order.Ready)

	claimed := suite.createTestOrder()
	suite.advanceTo(claimed, order.Ready)
	suite.Require().NoError(claimed.AssignDriver(kernel.NewUUID()))

	pending := suite.createTestOrder()

	for _, o := range []*order.Order{ready, claimed, pending} {
		suite.Require().NoError(repo.Add(ctx, o))
	}

	found, err := repo.GetAllReadyUnassigned(ctx)
	suite.Require().NoError(err)
	suite.Require().Len(found, 1)
	suite.True(found[0].ID().IsEqual(ready.ID()))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestBindDriver_NotFoundAndConflict() {
	ctx := context.Background()
	repo := orderrepo.NewGormOrderRepository(suite.db, noopTracker{})

	err := repo.BindDriver(ctx, kernel.NewUUID(), kernel.NewUUID())
	var notFound *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFound)

	testOrder := suite.createTestOrder()
	suite.advanceTo(testOrder, order.Ready)
	suite.Require().NoError(repo.Add(ctx, testOrder))

	suite.Require().NoError(repo.BindDriver(ctx, testOrder.ID(), kernel.NewUUID()))

	err = repo.BindDriver(ctx, testOrder.ID(), kernel.NewUUID())
	suite.Require().ErrorIs(err, order.ErrDriverAlreadyAssigned)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestBindDriver_RejectsNonReadyOrder() {
	ctx := context.Background()
	repo := orderrepo.NewGormOrderRepository(suite.db, noopTracker{})

	testOrder := suite.createTestOrder() // still Pending
	suite.Require().NoError(repo.Add(ctx, testOrder))

	err := repo.BindDriver(ctx, testOrder.ID(), kernel.NewUUID())

	suite.Require().ErrorIs(err, order.ErrOrderNotReady)
}

// TestBindDriver_ConcurrentClaims is the claim race: many drivers fire
// BindDriver for the same order at once and exactly one may win.
func (suite *OrderRepositoryIntegrationTestSuite) TestBindDriver_ConcurrentClaims() {
	ctx := context.Background()
	repo := orderrepo.NewGormOrderRepository(suite.db, noopTracker{})

	testOrder := suite.createTestOrder()
	suite.advanceTo(testOrder, order.Ready)
	suite.Require().NoError(repo.Add(ctx, testOrder))

	const claimants = 10

	var wg sync.WaitGroup
	results := make([]error, claimants)
	start := make(chan struct{})

	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			<-start
			results[n] = repo.BindDriver(ctx, testOrder.ID(), kernel.NewUUID())
		}(i)
	}
	close(start)
	wg.Wait()

	winners, conflicts := 0, 0
	for _, err := range results {
		switch {
		case err == nil:
			winners++
		default:
			suite.Require().ErrorIs(err, order.ErrDriverAlreadyAssigned)
			conflicts++
		}
	}
	suite.Equal(1, winners)
	suite.Equal(claimants-1, conflicts)

	bound, err := repo.Get(ctx, testOrder.ID())
	suite.Require().NoError(err)
	suite.Require().NotNil(bound.Driver())
}

func (suite *OrderRepositoryIntegrationTestSuite) createTestOrder() *order.Order {
	destination, err := kernel.NewGeoPoint(52.3676, 4.9041)
	suite.Require().NoError(err)

	o, err := order.NewOrder(
		kernel.NewUUID(),
		"ORD-"+kernel.NewUUID().String()[:8],
		kernel.NewUUID(),
		destination,
		time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	)
	suite.Require().NoError(err)
	return o
}

func (suite *OrderRepositoryIntegrationTestSuite) advanceTo(o *order.Order, target order.Status) {
	at := time.Date(2025, 6, 1, 12, 30, 0, 0, time.UTC)
	for _, next := range []order.Status{order.Confirmed, order.Preparing, order.Ready} {
		if o.Status() == target {
			return
		}
		suite.Require().NoError(o.TransitionTo(next, at))
		at = at.Add(time.Minute)
	}
}

func (suite *OrderRepositoryIntegrationTestSuite) advanceToOutForDelivery(o *order.Order) {
	suite.advanceTo(o, order.Ready)
	suite.Require().NoError(o.AssignDriver(kernel.NewUUID()))
	suite.Require().NoError(o.StartDelivery(*o.Driver(), time.Date(2025, 6, 1, 12, 35, 0, 0, time.UTC)))
}

func (suite *OrderRepositoryIntegrationTestSuite) assertOrderCount(expected int) {
	var count int64
	suite.Require().NoError(suite.db.Model(&orderrepo.OrderDTO{}).Count(&count).Error)
	suite.Equal(int64(expected), count)
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
