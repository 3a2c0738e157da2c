package inventory

import (
	"encoding/json"
	"errors"
	"fmt"
)

// LocationState is the estadoUbicacion of a tracked asset.
type LocationState string

const (
	StateAvailable     LocationState = "available"
	StateInUse         LocationState = "in_use"
	StateMaintenance   LocationState = "maintenance"
	StateAuthorizedOut LocationState = "authorized_out"
	StateRetired       LocationState = "retired"
)

// Valid reports whether s is a known state.
func (s LocationState) Valid() bool {
	switch s {
	case StateAvailable, StateInUse, StateMaintenance, StateAuthorizedOut, StateRetired:
		return true
	}
	return false
}

// Product is a tracked physical item: a VR headset, a controller, lab hardware.
// Only the fields needed to check transitions are decoded; the rest of the
// backend document is relayed untouched.
type Product struct {
	ID              string        `json:"_id"`
	Name            string        `json:"name,omitempty"`
	Category        string        `json:"category,omitempty"`
	SerialNumber    string        `json:"serialNumber,omitempty"`
	HexValue        string        `json:"hexValue,omitempty"`
	EstadoUbicacion LocationState `json:"estadoUbicacion"`
}

var ErrUnknownState = errors.New("unknown product location state")

// DecodeProduct reads a product from a backend body, either bare or wrapped
// under "data" or "product".
func DecodeProduct(body []byte) (Product, error) {
	var env struct {
		Data    *Product `json:"data"`
		Product *Product `json:"product"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return Product{}, fmt.Errorf("failed to decode product: %w", err)
	}

	var p Product
	switch {
	case env.Data != nil:
		p = *env.Data
	case env.Product != nil:
		p = *env.Product
	default:
		if err := json.Unmarshal(body, &p); err != nil {
			return Product{}, fmt.Errorf("failed to decode product: %w", err)
		}
	}

	if !p.EstadoUbicacion.Valid() {
		return p, fmt.Errorf("%w: %q", ErrUnknownState, p.EstadoUbicacion)
	}
	return p, nil
}
