package httpx

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/cloudclutches/storefront/internal/auth"
	"github.com/cloudclutches/storefront/internal/catalog"
	"github.com/cloudclutches/storefront/internal/orders"
	"github.com/cloudclutches/storefront/internal/redisx"
	"github.com/go-chi/chi/v5"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/mock"
)

const goodToken = "good-token"

const spaOrigin = "http://localhost:5173"

type mockAuth struct{ mock.Mock }

func (m *mockAuth) Login(ctx context.Context, username, password string) (string, error) {
	args := m.Called(ctx, username, password)
	return args.String(0), args.Error(1)
}

func (m *mockAuth) Logout(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *mockAuth) Authenticate(ctx context.Context, token string) (auth.Session, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(auth.Session), args.Error(1)
}

func (m *mockAuth) Me(ctx context.Context, s auth.Session, token string) (string, error) {
	args := m.Called(ctx, s, token)
	return args.String(0), args.Error(1)
}

type mockProducts struct{ mock.Mock }

func (m *mockProducts) List(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *mockProducts) Get(ctx context.Context, id int64) (catalog.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(catalog.Product), args.Error(1)
}

func (m *mockProducts) Create(ctx context.Context, in catalog.ProductInput) (catalog.Product, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(catalog.Product), args.Error(1)
}

func (m *mockProducts) Update(ctx context.Context, id int64, p catalog.ProductPatch) (catalog.Product, error) {
	args := m.Called(ctx, id, p)
	return args.Get(0).(catalog.Product), args.Error(1)
}

func (m *mockProducts) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

type mockOrders struct{ mock.Mock }

func (m *mockOrders) CreateOrderTx(ctx context.Context, req orders.CreateOrderRequest) (orders.OrderResponse, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(orders.OrderResponse), args.Error(1)
}

func (m *mockOrders) ListOrders(ctx context.Context) ([]orders.OrderResponse, error) {
	args := m.Called(ctx)
	return args.Get(0).([]orders.OrderResponse), args.Error(1)
}

func (m *mockOrders) GetOrder(ctx context.Context, id int64) (orders.OrderResponse, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(orders.OrderResponse), args.Error(1)
}

func (m *mockOrders) UpdateStatus(ctx context.Context, id int64, status string) (orders.Order, orders.Status, error) {
	args := m.Called(ctx, id, status)
	return args.Get(0).(orders.Order), args.Get(1).(orders.Status), args.Error(2)
}

func (m *mockOrders) Stats(ctx context.Context) (orders.Stats, error) {
	args := m.Called(ctx)
	return args.Get(0).(orders.Stats), args.Error(1)
}

type mockHistory struct{ mock.Mock }

func (m *mockHistory) ForOrder(ctx context.Context, id int64) ([]orders.HistoryEntry, error) {
	args := m.Called(ctx, id)
	return args.Get(0).([]orders.HistoryEntry), args.Error(1)
}

type published struct {
	topic   string
	key     []byte
	value   []byte
	headers []kafkago.Header
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []published
}

func (p *recordingPublisher) Publish(topic string, key, value []byte, headers ...kafkago.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{topic: topic, key: key, value: value, headers: headers})
}

func (p *recordingPublisher) sent() []published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]published(nil), p.msgs...)
}

type fixture struct {
	router   *chi.Mux
	auth     *mockAuth
	products *mockProducts
	orders   *mockOrders
	history  *mockHistory
	pub      *recordingPublisher
	redis    *miniredis.Miniredis
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redisx.New(mr.Addr())
	t.Cleanup(func() { _ = rdb.Close() })

	f := &fixture{
		router:   NewRouter([]string{spaOrigin}),
		auth:     &mockAuth{},
		products: &mockProducts{},
		orders:   &mockOrders{},
		history:  &mockHistory{},
		pub:      &recordingPublisher{},
		redis:    mr,
	}
	f.auth.On("Authenticate", mock.Anything, goodToken).
		Return(auth.Session{UserID: 1, Username: "admin@123"}, nil).Maybe()
	f.auth.On("Authenticate", mock.Anything, mock.Anything).
		Return(auth.Session{}, auth.ErrNoSession).Maybe()

	ah := &AuthHandler{Auth: f.auth, Cookies: auth.Cookies{TTL: time.Hour}}
	ah.Register(f.router)
	(&ProductsHandler{Store: f.products}).Register(f.router, ah.RequireAuth)
	(&OrdersHandler{
		Store:    f.orders,
		History:  f.history,
		Producer: f.pub,
		Redis:    rdb,
		Service:  "storefront-api",
	}).Register(f.router, ah.RequireAuth)
	return f
}

func (f *fixture) do(method, path, body string, authed bool, headers ...string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	if authed {
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: goodToken})
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}
