package http

import "time"

// changeStatusRequest is the body of PATCH /api/v1/orders/:id/status.
// Notes doubles as the cancellation reason when Status is "cancelled".
type changeStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

// locationReportRequest is the body of POST /api/v1/orders/:id/location.
type locationReportRequest struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Accuracy  float64 `json:"accuracy"`
	Heading   float64 `json:"heading"`
	Speed     float64 `json:"speed"`
}

// completeDeliveryRequest is the body of POST /api/v1/orders/:id/complete.
type completeDeliveryRequest struct {
	Notes string `json:"notes"`
}

// paymentWebhookRequest is the payment provider callback payload. The
// provider addresses orders by its own transaction id; order_id is a
// convenience field some providers fill and some leave empty.
type paymentWebhookRequest struct {
	EventID       string `json:"event_id"`
	EventType     string `json:"event_type"`
	OrderID       string `json:"order_id"`
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
	Reason        string `json:"reason"`
}

// assignDriverRequest is the body of POST /api/v1/orders/:id/assign, the
// staff dispatch counterpart of the driver's self-service claim.
type assignDriverRequest struct {
	DriverID string `json:"driver_id"`
}

// trackingResponse is the customer-facing tracking snapshot.
type trackingResponse struct {
	OrderID           string               `json:"order_id"`
	Number            string               `json:"number"`
	Status            string               `json:"status"`
	PaymentStatus     string               `json:"payment_status"`
	Destination       geoPointResponse     `json:"destination"`
	DriverID          *string              `json:"driver_id,omitempty"`
	Position          *positionResponse    `json:"position,omitempty"`
	ETA               *time.Time           `json:"eta,omitempty"`
	RemainingDistance float64              `json:"remaining_distance_meters"`
	Cancelled         bool                 `json:"cancelled"`
	CancellationNote  string               `json:"cancellation_reason,omitempty"`
	StatusTimeline    map[string]time.Time `json:"status_timeline"`
}

type geoPointResponse struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

type positionResponse struct {
	Latitude   float64   `json:"lat"`
	Longitude  float64   `json:"lon"`
	Accuracy   float64   `json:"accuracy"`
	Heading    float64   `json:"heading"`
	Speed      float64   `json:"speed"`
	ReportedAt time.Time `json:"reported_at"`
}

// availableOrderResponse is one row of the driver claim feed.
type availableOrderResponse struct {
	OrderID     string           `json:"order_id"`
	Number      string           `json:"number"`
	Destination geoPointResponse `json:"destination"`
	ReadySince  time.Time        `json:"ready_since"`
}
