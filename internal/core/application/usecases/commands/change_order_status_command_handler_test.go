package commands_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/order"
	"fulfillment/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestChangeOrderStatusCommandHandler_Handle_ForwardTransition(t *testing.T) {
	ctx := t.Context()

	testOrder := newTestOrder(t)
	cmd, err := commands.NewChangeOrderStatusCommand(testOrder.ID(), order.Confirmed, "merchant", "")
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Get", ctx, testOrder.ID()).Return(testOrder, nil).Once(),
		orderRepo.On("Update", ctx, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	publisher := new(MockEventPublisher)
	publisher.On("Publish", ctx, mock.AnythingOfType("events.OrderStatusChanged")).Return(nil).Once()

	refunds := new(MockRefundGateway)

	handler := commands.NewChangeOrderStatusCommandHandler(factory, publisher, refunds, newTestLogger())
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Confirmed, testOrder.Status())
	orderRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
	publisher.AssertExpectations(t)
	refunds.AssertNotCalled(t, "RequestRefund")
}

func TestChangeOrderStatusCommandHandler_Handle_CancelPaidOrderRequestsRefund(t *testing.T) {
	ctx := t.Context()

	testOrder := newTestOrder(t)
	testOrder.MarkPaid("txn-42", time.Now().UTC())
	advanceTo(t, testOrder, order.Preparing)

	cmd, err := commands.NewChangeOrderStatusCommand(testOrder.ID(), order.Cancelled, "customer", "address unreachable")
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Get", ctx, testOrder.ID()).Return(testOrder, nil).Once(),
		orderRepo.On("Update", ctx, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	publisher := new(MockEventPublisher)
	publisher.On("Publish", ctx, mock.AnythingOfType("events.OrderStatusChanged")).Return(nil).Once()

	refunds := new(MockRefundGateway)
	refunds.On("RequestRefund", ctx, testOrder.ID(), "txn-42").Return(nil).Once()

	handler := commands.NewChangeOrderStatusCommandHandler(factory, publisher, refunds, newTestLogger())
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Cancelled, testOrder.Status())
	assert.Equal(t, order.PaymentRefunded, testOrder.PaymentStatus())
	assert.Equal(t, order.RefundPending, testOrder.RefundStatus())
	refunds.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestChangeOrderStatusCommandHandler_Handle_InvalidTransition(t *testing.T) {
	ctx := t.Context()

	testOrder := newTestOrder(t) // still Pending
	cmd, err := commands.NewChangeOrderStatusCommand(testOrder.ID(), order.Ready, "merchant", "")
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Get", ctx, testOrder.ID()).Return(testOrder, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(uow).Once()

	publisher := new(MockEventPublisher)
	refunds := new(MockRefundGateway)

	handler := commands.NewChangeOrderStatusCommandHandler(factory, publisher, refunds, newTestLogger())
	err = handler.Handle(ctx, cmd)

	require.Error(t, err)
	var invalid *errs.ValueIsInvalidError
	require.ErrorAs(t, err, &invalid)
	orderRepo.AssertNotCalled(t, "Update")
	uow.AssertNotCalled(t, "Commit")
	publisher.AssertNotCalled(t, "Publish")
}

func TestChangeOrderStatusCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()

	factory := new(MockOrderUoWFactory)
	handler := commands.NewChangeOrderStatusCommandHandler(
		factory, new(MockEventPublisher), new(MockRefundGateway), newTestLogger())

	err := handler.Handle(ctx, commands.ChangeOrderStatusCommand{})

	require.ErrorIs(t, err, commands.ErrChangeOrderStatusCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}
