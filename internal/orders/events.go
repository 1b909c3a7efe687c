package orders

import (
	"encoding/json"
	"time"

	"github.com/cloudclutches/storefront/internal/money"
	"github.com/google/uuid"
)

const (
	EventOrderCreated       = "OrderCreated"
	EventOrderStatusChanged = "OrderStatusChanged"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "storefront-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload tipe per event ----

type ItemLine struct {
	ProductID int64        `json:"product_id"`
	Quantity  int          `json:"quantity"`
	Price     money.Amount `json:"price"`
}

type OrderCreatedPayload struct {
	OrderID          int64        `json:"order_id"`
	CustomerName     string       `json:"customer_name"`
	MobileNumber     string       `json:"mobile_number"`
	TotalAmount      money.Amount `json:"total_amount"`
	UPITransactionID string       `json:"upi_transaction_id"`
	Items            []ItemLine   `json:"items"`
	CreatedAt        time.Time    `json:"created_at"`
}

type OrderStatusChangedPayload struct {
	OrderID   int64     `json:"order_id"`
	From      Status    `json:"from"`
	To        Status    `json:"to"`
	ChangedAt time.Time `json:"changed_at"`
}

func newEnvelope(eventType, producer, traceID string, orderID int64, payload any) Envelope {
	b, err := json.Marshal(payload)
	if err != nil {
		panic(err)
	}
	return Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      producer,
		TraceID:       traceID,
		CorrelationID: string(PartitionKey(orderID)),
		Payload:       b,
	}
}

func NewOrderCreatedEvent(producer, traceID string, o OrderResponse) Envelope {
	lines := make([]ItemLine, 0, len(o.Items))
	for _, it := range o.Items {
		lines = append(lines, ItemLine{ProductID: it.ProductID, Quantity: it.Quantity, Price: it.Price})
	}
	return newEnvelope(EventOrderCreated, producer, traceID, o.ID, OrderCreatedPayload{
		OrderID:          o.ID,
		CustomerName:     o.CustomerName,
		MobileNumber:     o.MobileNumber,
		TotalAmount:      o.TotalAmount,
		UPITransactionID: o.UPITransactionID,
		Items:            lines,
		CreatedAt:        o.CreatedAt,
	})
}

func NewStatusChangedEvent(producer, traceID string, o Order, from Status) Envelope {
	return newEnvelope(EventOrderStatusChanged, producer, traceID, o.ID, OrderStatusChangedPayload{
		OrderID:   o.ID,
		From:      from,
		To:        o.Status,
		ChangedAt: time.Now().UTC(),
	})
}
