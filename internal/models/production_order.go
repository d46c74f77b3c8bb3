package models

import "time"

// Production order statuses.
const (
	OrderStatusPending    = "pending"
	OrderStatusInProgress = "in_progress"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
)

// ProductionOrder is a customer order for a batch of concrete blocks.
type ProductionOrder struct {
	ID               string     `json:"id"`
	OrderNumber      string     `json:"orderNumber"`
	BlockType        string     `json:"blockType"`
	QuantityOrdered  int        `json:"quantityOrdered"`
	QuantityProduced int        `json:"quantityProduced"`
	Status           string     `json:"status"`
	DueDate          *time.Time `json:"dueDate,omitempty"`
	CreatedBy        *string    `json:"createdBy,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// orderTransitions describes the allowed status state machine.
var orderTransitions = map[string][]string{
	OrderStatusPending:    {OrderStatusInProgress, OrderStatusCancelled},
	OrderStatusInProgress: {OrderStatusCompleted, OrderStatusCancelled},
}

// CanTransition reports whether an order may move from its current status to next.
func (o *ProductionOrder) CanTransition(next string) bool {
	for _, s := range orderTransitions[o.Status] {
		if s == next {
			return true
		}
	}
	return false
}
