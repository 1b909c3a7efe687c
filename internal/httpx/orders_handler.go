package httpx

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	kafkax "github.com/cloudclutches/storefront/internal/kafka"
	"github.com/cloudclutches/storefront/internal/orders"
	"github.com/cloudclutches/storefront/internal/redisx"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

const HeaderIdempotencyKey = "Idempotency-Key"

type OrderStore interface {
	CreateOrderTx(ctx context.Context, req orders.CreateOrderRequest) (orders.OrderResponse, error)
	ListOrders(ctx context.Context) ([]orders.OrderResponse, error)
	GetOrder(ctx context.Context, id int64) (orders.OrderResponse, error)
	UpdateStatus(ctx context.Context, id int64, status string) (orders.Order, orders.Status, error)
	Stats(ctx context.Context) (orders.Stats, error)
}

type HistoryStore interface {
	ForOrder(ctx context.Context, orderID int64) ([]orders.HistoryEntry, error)
}

type OrdersHandler struct {
	Store    OrderStore
	History  HistoryStore
	Producer kafkax.Publisher
	Redis    redis.Cmdable
	Service  string
	Timeout  time.Duration
}

type statusReq struct {
	Status string `json:"status"`
}

func (h *OrdersHandler) Register(r chi.Router, gate func(http.Handler) http.Handler) {
	r.Post("/api/orders", h.createOrder)
	r.Group(func(r chi.Router) {
		r.Use(gate)
		r.Get("/api/orders", h.listOrders)
		r.Get("/api/orders/export", h.exportOrders)
		r.Get("/api/orders/{id}", h.getOrder)
		r.Get("/api/orders/{id}/history", h.orderHistory)
		r.Patch("/api/orders/{id}/status", h.updateStatus)
		r.Get("/api/admin/stats", h.stats)
	})
}

func (h *OrdersHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req orders.CreateOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	// a replayed checkout gets the order its first attempt created
	idemKey := ""
	if k := strings.TrimSpace(r.Header.Get(HeaderIdempotencyKey)); k != "" {
		idemKey = fmt.Sprintf(redisx.KeyIdemOrderCreate, k)
		if id, err := h.Redis.Get(ctx, idemKey).Int64(); err == nil {
			o, err := h.Store.GetOrder(ctx, id)
			if err == nil {
				writeJSON(w, http.StatusCreated, o)
				return
			}
			if !errors.Is(err, orders.ErrNotFound) {
				writeError(w, err)
				return
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Printf("idempotency lookup: %v", err)
		}
	}

	o, err := h.Store.CreateOrderTx(ctx, req)
	if err != nil {
		writeError(w, err)
		return
	}

	if idemKey != "" {
		if err := h.Redis.Set(ctx, idemKey, o.ID, redisx.TTLIdempotency).Err(); err != nil {
			log.Printf("idempotency store order=%d: %v", o.ID, err)
		}
	}

	h.publish(orders.TopicOrderCreated, o.ID, orders.NewOrderCreatedEvent(h.Service, middleware.GetReqID(r.Context()), o))
	writeJSON(w, http.StatusCreated, o)
}

func (h *OrdersHandler) publish(topic string, orderID int64, ev orders.Envelope) {
	h.Producer.Publish(topic, orders.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: kafkax.HeaderEventType, Value: []byte(ev.EventType)},
		kafkago.Header{Key: kafkax.HeaderEventVersion, Value: []byte("1")},
	)
}

func (h *OrdersHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	list, err := h.Store.ListOrders(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *OrdersHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, orders.ErrNotFound)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	o, err := h.Store.GetOrder(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, orders.ErrNotFound)
	if err != nil {
		writeError(w, err)
		return
	}
	var req statusReq
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	o, from, err := h.Store.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		writeError(w, err)
		return
	}
	h.publish(orders.TopicOrderStatusChanged, o.ID, orders.NewStatusChangedEvent(h.Service, middleware.GetReqID(r.Context()), o, from))
	writeJSON(w, http.StatusOK, o)
}

func (h *OrdersHandler) orderHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, orders.ErrNotFound)
	if err != nil {
		writeError(w, err)
		return
	}

	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	if _, err := h.Store.GetOrder(ctx, id); err != nil {
		writeError(w, err)
		return
	}
	hist, err := h.History.ForOrder(ctx, id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, hist)
}

func (h *OrdersHandler) exportOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	list, err := h.Store.ListOrders(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	var buf bytes.Buffer
	if err := orders.WriteXLSX(&buf, list); err != nil {
		writeError(w, err)
		return
	}
	name := fmt.Sprintf("orders-%s.xlsx", time.Now().UTC().Format("20060102"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *OrdersHandler) stats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := withTimeout(r, h.Timeout)
	defer cancel()

	s, err := h.Store.Stats(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}
