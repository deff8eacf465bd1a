package valueobject

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	VND Currency = "VND" // Vietnamese Dong (default)
	USD Currency = "USD"
	EUR Currency = "EUR"
)

// DefaultCurrency is the default currency for room billing
const DefaultCurrency = VND

// Scale returns the number of decimal places of the currency's smallest unit
func (c Currency) Scale() int32 {
	switch c {
	case VND:
		return 0
	default:
		return 2
	}
}

// Money is a value object representing monetary amounts.
// It is immutable - all operations return new Money instances.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// MustMoney creates Money and panics on an empty currency
func MustMoney(amount decimal.Decimal, currency Currency) Money {
	m, err := NewMoney(amount, currency)
	if err != nil {
		panic(err)
	}
	return m
}

// NewMoneyFromInt creates Money from an int64 value
func NewMoneyFromInt(amount int64, currency Currency) (Money, error) {
	return NewMoney(decimal.NewFromInt(amount), currency)
}

// NewMoneyFromString creates Money from a string representation
func NewMoneyFromString(amount string, currency Currency) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return NewMoney(d, currency)
}

// Zero returns a zero-value Money in the specified currency
func Zero(currency Currency) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Currency returns the currency code
func (m Money) Currency() Currency {
	return m.currency
}

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsNegative returns true if the amount is negative
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// Add returns a new Money with the sum of both amounts.
// Returns error if currencies don't match.
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("cannot add money with different currencies: %s and %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Multiply returns a new Money multiplied by the given factor
func (m Money) Multiply(factor decimal.Decimal) Money {
	return Money{amount: m.amount.Mul(factor), currency: m.currency}
}

// Percentage returns percent% of m rounded half-up to the currency's smallest unit
func (m Money) Percentage(percent decimal.Decimal) Money {
	return Money{
		amount:   m.amount.Mul(percent).Div(decimal.NewFromInt(100)),
		currency: m.currency,
	}.RoundToUnit()
}

// RoundToUnit rounds half-up to the currency's smallest unit.
// decimal.Round rounds half away from zero, which is half-up for the
// non-negative amounts billed here.
func (m Money) RoundToUnit() Money {
	return Money{amount: m.amount.Round(m.currency.Scale()), currency: m.currency}
}

// Equals returns true if both Money values are equal (same amount and currency)
func (m Money) Equals(other Money) bool {
	return m.currency == other.currency && m.amount.Equal(other.amount)
}

// String returns a string representation of the Money
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(m.currency.Scale()), m.currency)
}

// MarshalJSON implements json.Marshaler
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}{
		Amount:   m.amount.String(),
		Currency: m.currency,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (m *Money) UnmarshalJSON(data []byte) error {
	var v struct {
		Amount   string   `json:"amount"`
		Currency Currency `json:"currency"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	amount, err := decimal.NewFromString(v.Amount)
	if err != nil {
		return fmt.Errorf("invalid amount: %w", err)
	}
	if v.Currency == "" {
		v.Currency = DefaultCurrency
	}
	m.amount = amount
	m.currency = v.Currency
	return nil
}
