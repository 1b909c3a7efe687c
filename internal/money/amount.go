// Package money is a fixed-point currency amount with two fractional digits on the wire.
package money

import (
	"database/sql/driver"
	"fmt"

	"github.com/shopspring/decimal"
)

const Scale = 2

type Amount struct {
	d decimal.Decimal
}

var Zero = Amount{}

func New(d decimal.Decimal) Amount { return Amount{d: d} }

// Parse accepts a plain decimal string such as "15" or "24.50".
func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("invalid amount %q", s)
	}
	return Amount{d: d}, nil
}

func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Amount) Decimal() decimal.Decimal { return a.d }
func (a Amount) IsNegative() bool         { return a.d.IsNegative() }
func (a Amount) Add(b Amount) Amount      { return Amount{d: a.d.Add(b.d)} }
func (a Amount) Mul(n int) Amount         { return Amount{d: a.d.Mul(decimal.NewFromInt(int64(n)))} }
func (a Amount) Equal(b Amount) bool      { return a.d.Equal(b.d) }

// String always renders two fractional digits.
func (a Amount) String() string { return a.d.StringFixed(Scale) }

// Check rejects negative values and values finer than a paisa.
func (a Amount) Check() error {
	if a.d.IsNegative() {
		return fmt.Errorf("must not be negative")
	}
	if !a.d.Equal(a.d.Truncate(Scale)) {
		return fmt.Errorf("must have at most %d decimal places", Scale)
	}
	return nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON accepts both "15.00" and 15.00.
func (a *Amount) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return fmt.Errorf("amount must not be null")
	}
	var d decimal.Decimal
	if err := d.UnmarshalJSON(b); err != nil {
		return fmt.Errorf("invalid amount %s", string(b))
	}
	a.d = d
	return nil
}

func (a *Amount) Scan(src any) error { return a.d.Scan(src) }

func (a Amount) Value() (driver.Value, error) { return a.String(), nil }
