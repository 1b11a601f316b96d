package types

import (
	"bytes"
	"errors"
	"fmt"
	"math/big"
	"strconv"
)

// ErrNegativeMoney is returned when a cost below zero is decoded.
var ErrNegativeMoney = errors.New("money: negative amount")

// Money is a non-negative amount held in hundredths so sums are exact.
type Money int64

// Cents builds a Money from hundredths.
func Cents(c int64) Money { return Money(c) }

// Units builds a Money from whole units.
func Units(u int64) Money { return Money(u * 100) }

// ParseMoney parses a decimal literal such as "12.5" or "1e3". Digits beyond
// the hundredths are rounded half away from zero.
func ParseMoney(s string) (Money, error) {
	r, ok := new(big.Rat).SetString(s)
	if !ok {
		return 0, fmt.Errorf("money: invalid amount %q", s)
	}
	if r.Sign() < 0 {
		return 0, ErrNegativeMoney
	}
	r.Mul(r, big.NewRat(100, 1))
	q, m := new(big.Int).QuoRem(r.Num(), r.Denom(), new(big.Int))
	if m.Sign() != 0 && new(big.Int).Mul(m, big.NewInt(2)).Cmp(r.Denom()) >= 0 {
		q.Add(q, big.NewInt(1))
	}
	if !q.IsInt64() {
		return 0, fmt.Errorf("money: amount %q out of range", s)
	}
	return Money(q.Int64()), nil
}

// Cents returns the amount in hundredths.
func (m Money) Cents() int64 { return int64(m) }

// Float returns the amount as a float for display only.
func (m Money) Float() float64 { return float64(m) / 100 }

// String renders the amount with two decimals, e.g. "550.00".
func (m Money) String() string {
	return fmt.Sprintf("%d.%02d", int64(m)/100, int64(m)%100)
}

// MarshalJSON writes the amount as a JSON number.
func (m Money) MarshalJSON() ([]byte, error) {
	if m%100 == 0 {
		return []byte(strconv.FormatInt(int64(m)/100, 10)), nil
	}
	return []byte(m.String()), nil
}

// UnmarshalJSON reads a JSON number (quoted numbers are tolerated). null and
// empty strings decode to zero.
func (m *Money) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = 0
		return nil
	}
	s := string(bytes.Trim(b, `"`))
	if s == "" {
		*m = 0
		return nil
	}
	v, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}
