// Package notifier turns order events into the status audit trail and admin alerts.
package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	kafkax "github.com/cloudclutches/storefront/internal/kafka"
	"github.com/cloudclutches/storefront/internal/orders"
	"github.com/cloudclutches/storefront/internal/redisx"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

type HistoryAppender interface {
	Append(ctx context.Context, orderID int64, s orders.Status, at time.Time, eventID string) (bool, error)
}

type Service struct {
	History HistoryAppender
	Redis   redis.Cmdable
	Name    string // dedup namespace
}

// Handle dipasang sebagai handler consumer untuk kedua topic order.
func (s *Service) Handle(ctx context.Context, m kafkago.Message) error {
	var env orders.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		// never decodable, so commit past it
		log.Printf("notifier: drop undecodable message topic=%s offset=%d: %v", m.Topic, m.Offset, err)
		return nil
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, s.Name, env.EventID)
	if seen, _ := redisx.Exists(ctx, s.Redis, dkey); seen {
		return nil
	}

	var err error
	switch env.EventType {
	case orders.EventOrderCreated:
		err = s.orderCreated(ctx, env)
	case orders.EventOrderStatusChanged:
		err = s.statusChanged(ctx, env)
	default:
		return nil
	}
	if err != nil {
		return err
	}

	// marked only after the write so a failed event is retried
	if _, err := redisx.Claim(ctx, s.Redis, dkey, redisx.TTLDedup); err != nil {
		log.Printf("notifier: dedup mark %s: %v", env.EventID, err)
	}
	return nil
}

func (s *Service) orderCreated(ctx context.Context, env orders.Envelope) error {
	p, err := kafkax.UnwrapPayload[orders.OrderCreatedPayload](env.Payload)
	if err != nil {
		log.Printf("notifier: drop %s: %v", env.EventID, err)
		return nil
	}
	at := p.CreatedAt
	if at.IsZero() {
		at = env.OccurredAt
	}
	if _, err := s.History.Append(ctx, p.OrderID, orders.StatusPending, at, env.EventID); err != nil {
		return err
	}
	log.Printf("ADMIN ALERT: new order #%d from %s (%s), total %s, UPI txn %s awaiting verification",
		p.OrderID, p.CustomerName, p.MobileNumber, p.TotalAmount, p.UPITransactionID)
	return nil
}

func (s *Service) statusChanged(ctx context.Context, env orders.Envelope) error {
	p, err := kafkax.UnwrapPayload[orders.OrderStatusChangedPayload](env.Payload)
	if err != nil {
		log.Printf("notifier: drop %s: %v", env.EventID, err)
		return nil
	}
	at := p.ChangedAt
	if at.IsZero() {
		at = env.OccurredAt
	}
	if _, err := s.History.Append(ctx, p.OrderID, p.To, at, env.EventID); err != nil {
		return err
	}
	log.Printf("notifier: order #%d %s -> %s", p.OrderID, p.From, p.To)
	return nil
}
