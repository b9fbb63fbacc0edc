package types

import (
	"time"

	"github.com/google/uuid"
)

// ShipmentEvent is an append-only history row. No updates, no deletes.
type ShipmentEvent struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ShipmentID uuid.UUID `gorm:"index;not null;column:shipment_id" json:"shipment_id"`
	Status     string    `gorm:"not null;column:status" json:"status"`
	Location   *string   `gorm:"column:location" json:"location"`
	Timestamp  time.Time `gorm:"not null;default:now();column:timestamp" json:"timestamp"`
}

func (ShipmentEvent) TableName() string {
	return "shipment_event"
}
