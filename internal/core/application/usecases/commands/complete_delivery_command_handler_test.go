package commands_test

import (
	"testing"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/domain/model/driver"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCompleteDeliveryCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()

	courier, err := driver.NewDriver(kernel.NewUUID(), "Dana")
	require.NoError(t, err)

	testOrder := newTestOrder(t)
	advanceTo(t, testOrder, order.Ready)
	require.NoError(t, testOrder.AssignDriver(courier.ID()))
	require.NoError(t, testOrder.StartDelivery(courier.ID(), time.Now().UTC()))
	require.NoError(t, courier.StartDelivery())

	cmd, err := commands.NewCompleteDeliveryCommand(testOrder.ID(), courier.ID(), "left at the reception")
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	driverRepo := new(MockDriverRepository)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Get", ctx, testOrder.ID()).Return(testOrder, nil).Once(),
		uow.On("DriverRepository").Return(driverRepo).Once(),
		driverRepo.On("Get", ctx, courier.ID()).Return(courier, nil).Once(),
		orderRepo.On("Update", ctx, mock.AnythingOfType("*order.Order")).Return(nil).Once(),
		driverRepo.On("Update", ctx, mock.AnythingOfType("*driver.Driver")).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	publisher := new(MockEventPublisher)
	publisher.On("Publish", ctx, mock.AnythingOfType("events.OrderStatusChanged")).Return(nil).Once()

	handler := commands.NewCompleteDeliveryCommandHandler(factory, publisher, newTestLogger())
	err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, order.Delivered, testOrder.Status())
	assert.Contains(t, testOrder.DeliveryNotes(), "left at the reception")
	assert.Equal(t, driver.Available, courier.State())
	assert.Equal(t, 1, courier.CompletedDeliveries())
	orderRepo.AssertExpectations(t)
	driverRepo.AssertExpectations(t)
	publisher.AssertExpectations(t)
}

func TestCompleteDeliveryCommandHandler_Handle_DriverMismatch(t *testing.T) {
	ctx := t.Context()

	courier, err := driver.NewDriver(kernel.NewUUID(), "Dana")
	require.NoError(t, err)
	require.NoError(t, courier.StartDelivery())

	testOrder := newTestOrder(t)
	advanceTo(t, testOrder, order.OutForDelivery)

	cmd, err := commands.NewCompleteDeliveryCommand(testOrder.ID(), courier.ID(), "")
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	driverRepo := new(MockDriverRepository)
	uow := new(MockUoW)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OrderRepository").Return(orderRepo).Once(),
		orderRepo.On("Get", ctx, testOrder.ID()).Return(testOrder, nil).Once(),
		uow.On("DriverRepository").Return(driverRepo).Once(),
		driverRepo.On("Get", ctx, courier.ID()).Return(courier, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockUoWFactory)
	factory.On("Create").Return(uow).Once()

	handler := commands.NewCompleteDeliveryCommandHandler(factory, new(MockEventPublisher), newTestLogger())
	err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, order.ErrDriverNotBound)
	assert.Equal(t, 0, courier.CompletedDeliveries())
	uow.AssertNotCalled(t, "Commit")
}

func TestCompleteDeliveryCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()

	factory := new(MockUoWFactory)
	handler := commands.NewCompleteDeliveryCommandHandler(factory, new(MockEventPublisher), newTestLogger())

	err := handler.Handle(ctx, commands.CompleteDeliveryCommand{})

	require.ErrorIs(t, err, commands.ErrCompleteDeliveryCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}
