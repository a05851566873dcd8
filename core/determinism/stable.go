// Package determinism holds the helpers that keep a calculation repeatable:
// ordered map iteration, a canonical input hash and exact dollar amounts.
package determinism

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// ContentHash is the SHA-256 of a canonical encoding
type ContentHash [32]byte

// HashJSON hashes the canonical JSON encoding of v.
// encoding/json sorts map keys, so equal values hash equally.
func HashJSON(v interface{}) (ContentHash, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return ContentHash{}, err
	}
	return sha256.Sum256(data), nil
}

// Hex returns the hash as a hex string
func (h ContentHash) Hex() string {
	return hex.EncodeToString(h[:])
}

// String implements Stringer
func (h ContentHash) String() string {
	return h.Hex()[:16] + "..."
}

// Money is an exact amount in one currency. Results carry float64 dollars;
// Money is used where amounts are split or compared and must not drift.
type Money struct {
	amount   decimal.Decimal
	currency string
}

// USD creates US dollar money from a float
func USD(amount float64) Money {
	return Money{amount: decimal.NewFromFloat(amount), currency: "USD"}
}

// NewMoneyFromDecimal creates Money from decimal
func NewMoneyFromDecimal(amount decimal.Decimal, currency string) Money {
	return Money{amount: amount, currency: currency}
}

// Zero creates zero money
func Zero(currency string) Money {
	return Money{amount: decimal.Zero, currency: currency}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal {
	return m.amount
}

// Add adds two amounts of the same currency
func (m Money) Add(other Money) Money {
	m.mustMatch(other)
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}
}

// Sub subtracts two amounts of the same currency
func (m Money) Sub(other Money) Money {
	m.mustMatch(other)
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}
}

func (m Money) mustMatch(other Money) {
	if m.currency != other.currency {
		panic(fmt.Sprintf("currency mismatch: %s and %s", m.currency, other.currency))
	}
}

// Split divides the amount into n parts that sum exactly to the original.
// Parts are truncated to cents; the remainder lands on the last part.
func (m Money) Split(n int) []Money {
	if n <= 0 {
		return nil
	}
	part := m.amount.Div(decimal.NewFromInt(int64(n))).Truncate(2)
	parts := make([]Money, n)
	allocated := decimal.Zero
	for i := 0; i < n-1; i++ {
		parts[i] = Money{amount: part, currency: m.currency}
		allocated = allocated.Add(part)
	}
	parts[n-1] = Money{amount: m.amount.Sub(allocated), currency: m.currency}
	return parts
}

// IsZero reports whether the amount is zero
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsNegative reports whether the amount is below zero
func (m Money) IsNegative() bool {
	return m.amount.IsNegative()
}

// String returns the amount to cents with its currency
func (m Money) String() string {
	return m.amount.StringFixed(2) + " " + m.currency
}

// StringFixed returns the amount rounded to places, without currency
func (m Money) StringFixed(places int32) string {
	return m.amount.StringFixed(places)
}

// MarshalJSON encodes the amount as a decimal string
func (m Money) MarshalJSON() ([]byte, error) {
	return m.amount.MarshalJSON()
}

// Float64 converts for reporting; never accumulate on the result
func (m Money) Float64() float64 {
	return m.amount.InexactFloat64()
}

// SortedKeys returns the map keys in ascending order of their printed form
func SortedKeys[K comparable, V any](m map[K]V) []K {
	keys := make([]K, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return fmt.Sprint(keys[i]) < fmt.Sprint(keys[j])
	})
	return keys
}
