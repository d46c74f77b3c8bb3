package models

import "time"

// Material is a raw-material inventory line (cement, sand, aggregate, ...).
type Material struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Unit             string    `json:"unit"` // "kg", "t", "m3"
	StockLevel       float64   `json:"stockLevel"`
	ReorderThreshold float64   `json:"reorderThreshold"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// BelowThreshold reports whether the material needs reordering.
func (m *Material) BelowThreshold() bool {
	return m.StockLevel < m.ReorderThreshold
}
