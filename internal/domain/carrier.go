package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CarrierID is a server-supplied identifier that may arrive as a JSON string or number.
type CarrierID struct {
	Value   string
	Numeric bool
}

func (id *CarrierID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = CarrierID{}
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return fmt.Errorf("carrier id: %w", err)
		}
		*id = CarrierID{Value: s}
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("carrier id: %w", err)
	}
	*id = CarrierID{Value: n.String(), Numeric: true}
	return nil
}

func (id CarrierID) MarshalJSON() ([]byte, error) {
	if id.Numeric {
		return []byte(id.Value), nil
	}
	return json.Marshal(id.Value)
}

func (id CarrierID) String() string { return id.Value }

// A shipping company operating on a route, as returned by the search API.
// TrucksPerDay is any JSON number; fractional values pass through unchanged.
type Carrier struct {
	ID           *CarrierID `json:"id,omitempty"`
	Name         string     `json:"name"`
	TrucksPerDay float64    `json:"trucks_per_day"`
}

// Key identifies the carrier: its id when present, else its name.
func (c Carrier) Key() string {
	if c.ID != nil && c.ID.Value != "" {
		return "id:" + c.ID.Value
	}
	return "name:" + c.Name
}
