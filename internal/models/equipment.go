package models

import "time"

// Equipment statuses.
const (
	EquipmentOperational = "operational"
	EquipmentMaintenance = "maintenance"
	EquipmentRetired     = "retired"
)

// Equipment is a machine on the plant floor (block press, mixer, curing rack).
type Equipment struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Kind           string    `json:"kind"`
	Status         string    `json:"status"`
	MaintenanceLog []string  `json:"maintenanceLog"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
