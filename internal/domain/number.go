package domain

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a float that never fails to decode. JSON numbers and numeric
// strings keep their value; anything else (malformed text, booleans, NaN)
// becomes 0.
type Number float64

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(b []byte) error {
	raw := strings.TrimSpace(string(b))
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}
	*n = Number(ParseNumber(raw))
	return nil
}

// Float returns n as a float64.
func (n Number) Float() float64 { return float64(n) }

// ParseNumber parses s as a finite float, returning 0 when it cannot.
func ParseNumber(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Coordinates is a WGS84 position. Values are stored as given.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// UnmarshalJSON coerces malformed coordinates to 0 like Number.
func (c *Coordinates) UnmarshalJSON(b []byte) error {
	var aux struct {
		Lat Number `json:"lat"`
		Lng Number `json:"lng"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	c.Lat, c.Lng = aux.Lat.Float(), aux.Lng.Float()
	return nil
}
