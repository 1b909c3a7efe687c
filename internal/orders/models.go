package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/cloudclutches/storefront/internal/apperr"
	"github.com/cloudclutches/storefront/internal/catalog"
	"github.com/cloudclutches/storefront/internal/money"
	"github.com/cloudclutches/storefront/internal/validate"
)

type Order struct {
	ID               int64        `json:"id"`
	CustomerName     string       `json:"customerName"`
	Address          string       `json:"address"`
	MobileNumber     string       `json:"mobileNumber"`
	TotalAmount      money.Amount `json:"totalAmount"`
	UPITransactionID string       `json:"upiTransactionId"`
	ScreenshotURL    *string      `json:"screenshotUrl"`
	Status           Status       `json:"status"`
	CreatedAt        time.Time    `json:"createdAt"`
}

// OrderItem.Price is the price captured when the order was placed.
type OrderItem struct {
	ID        int64        `json:"id"`
	OrderID   int64        `json:"orderId"`
	ProductID int64        `json:"productId"`
	Quantity  int          `json:"quantity"`
	Price     money.Amount `json:"price"`
}

// ItemWithProduct joins an item to the live catalog row. Product is nil once
// the product has been deleted.
type ItemWithProduct struct {
	OrderItem
	Product *catalog.Product `json:"product"`
}

type OrderResponse struct {
	Order
	Items []ItemWithProduct `json:"items"`
}

type ItemInput struct {
	ProductID int64         `json:"productId" validate:"gt=0"`
	Quantity  int           `json:"quantity" validate:"gt=0"`
	Price     *money.Amount `json:"price" validate:"required"`
}

// CreateOrderRequest is trusted as submitted: totalAmount and item prices are
// stored as given, never recomputed from the catalog.
type CreateOrderRequest struct {
	CustomerName     string        `json:"customerName" validate:"required,notblank"`
	Address          string        `json:"address" validate:"required,notblank"`
	MobileNumber     string        `json:"mobileNumber" validate:"required,notblank"`
	TotalAmount      *money.Amount `json:"totalAmount" validate:"required"`
	UPITransactionID string        `json:"upiTransactionId" validate:"required,notblank"`
	ScreenshotURL    *string       `json:"screenshotUrl"`
	Items            []ItemInput   `json:"items" validate:"required,min=1,dive"`
}

func (r *CreateOrderRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if err := r.TotalAmount.Check(); err != nil {
		return apperr.Invalid("totalAmount", "totalAmount %v", err)
	}
	for i, it := range r.Items {
		if err := it.Price.Check(); err != nil {
			field := fmt.Sprintf("items[%d].price", i)
			return apperr.Invalid(field, "%s %v", field, err)
		}
	}
	// the checkout form posts "" when no screenshot was attached
	if r.ScreenshotURL != nil && strings.TrimSpace(*r.ScreenshotURL) == "" {
		r.ScreenshotURL = nil
	}
	return nil
}

func (r *CreateOrderRequest) productIDs() []int64 {
	seen := make(map[int64]bool, len(r.Items))
	ids := make([]int64, 0, len(r.Items))
	for _, it := range r.Items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			ids = append(ids, it.ProductID)
		}
	}
	return ids
}

type Stats struct {
	TotalRevenue  money.Amount `json:"totalRevenue"`
	PendingOrders int          `json:"pendingOrders"`
	TotalOrders   int          `json:"totalOrders"`
	TotalProducts int          `json:"totalProducts"`
}

var ErrNotFound = fmt.Errorf("order %w", apperr.ErrNotFound)
