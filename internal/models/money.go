package models

import (
	"bytes"
	"fmt"
	"strconv"
)

// Money is a decimal amount. The backend serializes decimals as strings,
// older endpoints as numbers; both decode.
type Money float64

func (m Money) Float() float64 { return float64(m) }

func (m Money) String() string { return strconv.FormatFloat(float64(m), 'f', 2, 64) }

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(m.String())), nil
}

func (m *Money) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("money: %w", err)
		}
		if s == "" {
			*m = 0
			return nil
		}
		data = []byte(s)
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("money: %w", err)
	}
	*m = Money(v)
	return nil
}
