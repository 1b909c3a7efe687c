package catalog

import (
	"encoding/json"
	"fmt"

	"github.com/cloudclutches/storefront/internal/apperr"
	"github.com/cloudclutches/storefront/internal/money"
	"github.com/cloudclutches/storefront/internal/validate"
)

type Product struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Description *string      `json:"description"`
	Price       money.Amount `json:"price"`
	ImageURL    string       `json:"imageUrl"`
}

// ProductInput is the body of a create.
type ProductInput struct {
	Name        string        `json:"name" validate:"required,notblank"`
	Description *string       `json:"description"`
	Price       *money.Amount `json:"price" validate:"required"`
	ImageURL    string        `json:"imageUrl" validate:"required,notblank"`
}

func (in ProductInput) Validate() error {
	if err := validate.Struct(in); err != nil {
		return err
	}
	return checkPrice(*in.Price)
}

// ProductPatch carries only the fields the client sent.
type ProductPatch struct {
	Name        *string        `json:"name" validate:"omitnil,notblank"`
	Description OptionalString `json:"description"`
	Price       *money.Amount  `json:"price"`
	ImageURL    *string        `json:"imageUrl" validate:"omitnil,notblank"`
}

// OptionalString tells an absent field apart from an explicit null, so a
// patch can clear description.
type OptionalString struct {
	Set   bool
	Value *string
}

func (o *OptionalString) UnmarshalJSON(b []byte) error {
	o.Set = true
	if string(b) == "null" {
		o.Value = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	o.Value = &s
	return nil
}

func (p ProductPatch) Validate() error {
	if err := validate.Struct(p); err != nil {
		return err
	}
	if p.Price != nil {
		return checkPrice(*p.Price)
	}
	return nil
}

func (p ProductPatch) Empty() bool {
	return p.Name == nil && !p.Description.Set && p.Price == nil && p.ImageURL == nil
}

func checkPrice(a money.Amount) error {
	if err := a.Check(); err != nil {
		return apperr.Invalid("price", "price %v", err)
	}
	return nil
}

var ErrNotFound = fmt.Errorf("product %w", apperr.ErrNotFound)
