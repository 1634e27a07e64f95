// Package http is the inbound HTTP adapter. It binds echo routes to the
// application command and query handlers and owns the error taxonomy
// clients see.
package http

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"fulfillment/internal/core/application/usecases/commands"
	"fulfillment/internal/core/application/usecases/queries"
	"fulfillment/internal/core/domain/model/kernel"
	"fulfillment/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
)

// headerDriverID carries the authenticated driver identity. Authentication
// itself happens upstream (gateway); this adapter trusts the header.
const headerDriverID = "X-Driver-ID"

// headerActorID identifies the staff member behind a status change.
const headerActorID = "X-Actor-ID"

// Server wires HTTP requests into application use cases.
type Server struct {
	// Command handlers
	changeOrderStatusHandler  commands.ChangeOrderStatusCommandHandler
	claimOrderHandler         commands.ClaimOrderCommandHandler
	startDeliveryHandler      commands.StartDeliveryCommandHandler
	completeDeliveryHandler   commands.CompleteDeliveryCommandHandler
	reportLocationHandler     commands.ReportLocationCommandHandler
	recordPaymentEventHandler commands.RecordPaymentEventCommandHandler

	// Query handlers
	getTrackingSnapshotHandler queries.GetTrackingSnapshotQueryHandler
	getAvailableOrdersHandler  queries.GetAvailableOrdersQueryHandler

	stream *EventStream
	logger *slog.Logger
}

// NewServer creates the HTTP server over the given use-case handlers.
func NewServer(
	changeOrderStatusHandler commands.ChangeOrderStatusCommandHandler,
	claimOrderHandler commands.ClaimOrderCommandHandler,
	startDeliveryHandler commands.StartDeliveryCommandHandler,
	completeDeliveryHandler commands.CompleteDeliveryCommandHandler,
	reportLocationHandler commands.ReportLocationCommandHandler,
	recordPaymentEventHandler commands.RecordPaymentEventCommandHandler,
	getTrackingSnapshotHandler queries.GetTrackingSnapshotQueryHandler,
	getAvailableOrdersHandler queries.GetAvailableOrdersQueryHandler,
	stream *EventStream,
	logger *slog.Logger,
) *Server {
	return &Server{
		changeOrderStatusHandler:   changeOrderStatusHandler,
		claimOrderHandler:          claimOrderHandler,
		startDeliveryHandler:       startDeliveryHandler,
		completeDeliveryHandler:    completeDeliveryHandler,
		reportLocationHandler:      reportLocationHandler,
		recordPaymentEventHandler:  recordPaymentEventHandler,
		getTrackingSnapshotHandler: getTrackingSnapshotHandler,
		getAvailableOrdersHandler:  getAvailableOrdersHandler,
		stream:                     stream,
		logger:                     logger.With("component", "http_server"),
	}
}

// RegisterRoutes attaches all routes to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api/v1")

	api.PATCH("/orders/:id/status", s.ChangeOrderStatus)
	api.POST("/orders/:id/claim", s.ClaimOrder)
	api.POST("/orders/:id/assign", s.AssignDriver)
	api.POST("/orders/:id/start", s.StartDelivery)
	api.POST("/orders/:id/complete", s.CompleteDelivery)
	api.POST("/orders/:id/location", s.ReportLocation)
	api.GET("/orders/:id/tracking", s.GetTracking)
	api.GET("/orders/available", s.GetAvailableOrders)
	api.POST("/payments/webhook", s.PaymentWebhook)
	api.GET("/events", s.StreamEvents)

	e.GET("/health", s.Health)
}

// ChangeOrderStatus handles PATCH /api/v1/orders/:id/status.
func (s *Server) ChangeOrderStatus(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return respondBadRequest(ctx, "invalid order id")
	}

	var body changeStatusRequest
	if err := ctx.Bind(&body); err != nil {
		return respondBadRequest(ctx, "invalid request body")
	}

	target, err := order.StatusFromString(body.Status)
	if err != nil {
		return respondError(ctx, err)
	}

	actor := ctx.Request().Header.Get(headerActorID)
	if actor == "" {
		return respondBadRequest(ctx, "missing "+headerActorID+" header")
	}

	cmd, err := commands.NewChangeOrderStatusCommand(orderID, target, actor, body.Notes)
	if err != nil {
		return respondBadRequest(ctx, err.Error())
	}

	if err := s.changeOrderStatusHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// ClaimOrder handles POST /api/v1/orders/:id/claim. The first driver whose
// claim lands wins; losers receive 409 order_already_assigned.
func (s *Server) ClaimOrder(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return respondBadRequest(ctx, "invalid order id")
	}

	driverID, err := driverIdentity(ctx)
	if err != nil {
		return respondBadRequest(ctx, err.Error())
	}

	cmd, err := commands.NewClaimOrderCommand(orderID, driverID)
	if err != nil {
		return respondBadRequest(ctx, err.Error())
	}

	if err := s.claimOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// AssignDriver handles POST /api/v1/orders/:id/assign: staff dispatch of a
// specific driver to a ready order. It runs the same binding as the
// driver's own claim, so a dispatch racing a claim still has exactly one
// winner.
func (s *Server) AssignDriver(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return respondBadRequest(ctx, "invalid order id")
	}

	var body assignDriverRequest
	if err := ctx.Bind(&body); err != nil {
		return respondBadRequest(ctx, "invalid request body")
	}

	driverID, err := kernel.UUIDFromString(body.DriverID)
	if err != nil {
		return respondBadRequest(ctx, "invalid driver id")
	}

	cmd, err := commands.NewClaimOrderCommand(orderID, driverID)
	if err != nil {
		return respondBadRequest(ctx, err.Error())
	}

	if err := s.claimOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// StartDelivery handles POST /api/v1/orders/:id/start.
func (s *Server) StartDelivery(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return respondBadRequest(ctx, "invalid order id")
	}

	driverID, err := driverIdentity(ctx)
	if err != nil {
		return respondBadRequest(ctx, err.Error())
	}

	cmd, err := commands.NewStartDeliveryCommand(orderID, driverID)
	if err != nil {
		return respondBadRequest(ctx, err.Error())
	}

	if err := s.startDeliveryHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// CompleteDelivery handles POST /api/v1/orders/:id/complete.
func (s *Server) CompleteDelivery(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return respondBadRequest(ctx, "invalid order id")
	}

	driverID, err := driverIdentity(ctx)
	if err != nil {
		return respondBadRequest(ctx, err.Error())
	}

	var body completeDeliveryRequest
	if err := ctx.Bind(&body); err != nil {
		return respondBadRequest(ctx, "invalid request body")
	}

	cmd, err := commands.NewCompleteDeliveryCommand(orderID, driverID, body.Notes)
	if err != nil {
		return respondBadRequest(ctx, err.Error())
	}

	if err := s.completeDeliveryHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// ReportLocation handles POST /api/v1/orders/:id/location. Coordinate
// validation errors surface as 400 invalid_coordinates.
func (s *Server) ReportLocation(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return respondBadRequest(ctx, "invalid order id")
	}

	driverID, err := driverIdentity(ctx)
	if err != nil {
		return respondBadRequest(ctx, err.Error())
	}

	var body locationReportRequest
	if err := ctx.Bind(&body); err != nil {
		return respondBadRequest(ctx, "invalid request body")
	}

	cmd, err := commands.NewReportLocationCommand(
		orderID, driverID,
		body.Latitude, body.Longitude, body.Accuracy, body.Heading, body.Speed,
		time.Now().UTC(),
	)
	if err != nil {
		return respondError(ctx, err)
	}

	if err := s.reportLocationHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return respondError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetTracking handles GET /api/v1/orders/:id/tracking.
func (s *Server) GetTracking(ctx echo.Context) error {
	orderID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return respondBadRequest(ctx, "invalid order id")
	}

	query, err := queries.NewGetTrackingSnapshotQuery(orderID)
	if err != nil {
		return respondBadRequest(ctx, err.Error())
	}

	snapshot, err := s.getTrackingSnapshotHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, err)
	}

	response := trackingResponse{
		OrderID:       snapshot.OrderID.String(),
		Number:        snapshot.Number,
		Status:        snapshot.Status,
		PaymentStatus: snapshot.PaymentStatus,
		Destination: geoPointResponse{
			Latitude:  snapshot.DestinationLat,
			Longitude: snapshot.DestinationLon,
		},
		ETA:               snapshot.ETA,
		RemainingDistance: snapshot.RemainingDistance,
		Cancelled:         snapshot.Cancelled,
		CancellationNote:  snapshot.CancellationReason,
		StatusTimeline:    snapshot.StatusTimeline,
	}
	if snapshot.DriverID != nil {
		driverID := snapshot.DriverID.String()
		response.DriverID = &driverID
	}
	if snapshot.Position != nil {
		response.Position = &positionResponse{
			Latitude:   snapshot.Position.Latitude,
			Longitude:  snapshot.Position.Longitude,
			Accuracy:   snapshot.Position.Accuracy,
			Heading:    snapshot.Position.Heading,
			Speed:      snapshot.Position.Speed,
			ReportedAt: snapshot.Position.ReportedAt,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetAvailableOrders handles GET /api/v1/orders/available.
func (s *Server) GetAvailableOrders(ctx echo.Context) error {
	query := queries.NewGetAvailableOrdersQuery()

	orders, err := s.getAvailableOrdersHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return respondError(ctx, err)
	}

	response := make([]availableOrderResponse, len(orders))
	for i, available := range orders {
		response[i] = availableOrderResponse{
			OrderID: available.OrderID.String(),
			Number:  available.Number,
			Destination: geoPointResponse{
				Latitude:  available.DestinationLat,
				Longitude: available.DestinationLon,
			},
			ReadySince: available.ReadySince,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// PaymentWebhook handles POST /api/v1/payments/webhook. The provider
// retries on non-2xx, so every handled anomaly acknowledges with 200;
// only a payload we cannot parse gets a 400. Internal failures are
// logged and never leaked into the response.
func (s *Server) PaymentWebhook(ctx echo.Context) error {
	var body paymentWebhookRequest
	if err := ctx.Bind(&body); err != nil {
		return respondBadRequest(ctx, "invalid request body")
	}

	orderID := kernel.UUID{}
	if body.OrderID != "" {
		parsed, err := kernel.UUIDFromString(body.OrderID)
		if err != nil {
			return respondBadRequest(ctx, "invalid order id")
		}
		orderID = parsed
	}

	cmd, err := commands.NewRecordPaymentEventCommand(
		body.EventID,
		commands.PaymentEventKind(body.EventType),
		orderID,
		body.TransactionID,
		body.Amount,
		body.Reason,
	)
	if err != nil {
		return respondBadRequest(ctx, err.Error())
	}

	if err := s.recordPaymentEventHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		s.logger.Error("payment webhook processing failed",
			"event_id", body.EventID,
			"transaction_id", body.TransactionID,
			"event_type", body.EventType,
			"error", err)
	}

	return ctx.NoContent(http.StatusOK)
}

// StreamEvents handles GET /api/v1/events: a server-sent-event stream of
// broadcast events. The connection stays open until the client goes away.
func (s *Server) StreamEvents(ctx echo.Context) error {
	resp := ctx.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	client := s.stream.subscribe()
	defer s.stream.unsubscribe(client)

	for {
		select {
		case <-ctx.Request().Context().Done():
			return nil
		case frame := <-client:
			if _, err := fmt.Fprintf(resp, "event: %s\ndata: %s\n\n", frame.eventType, frame.payload); err != nil {
				return nil
			}
			resp.Flush()
		}
	}
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// driverIdentity extracts the authenticated driver id from the request.
func driverIdentity(ctx echo.Context) (kernel.UUID, error) {
	raw := ctx.Request().Header.Get(headerDriverID)
	if raw == "" {
		return kernel.UUID{}, fmt.Errorf("missing %s header", headerDriverID)
	}

	driverID, err := kernel.UUIDFromString(raw)
	if err != nil {
		return kernel.UUID{}, fmt.Errorf("invalid %s header", headerDriverID)
	}

	return driverID, nil
}
