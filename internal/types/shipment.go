package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Shipment struct {
	gorm.Model
	ID                 uuid.UUID       `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	TrackingNumber     string          `gorm:"uniqueIndex;not null;column:tracking_number" json:"tracking_number"`
	UserID             uuid.UUID       `gorm:"index;not null;column:user_id" json:"user_id"`
	Owner              *Profile        `gorm:"foreignKey:UserID;references:ID" json:"owner,omitempty"`
	Status             ShipmentStatus  `gorm:"not null;default:'pending';column:status" json:"status"`
	WeightKG           *float64        `gorm:"column:weight_kg" json:"weight_kg"`
	Dimensions         datatypes.JSON  `gorm:"column:dimensions" json:"dimensions,omitempty"`
	ArrivalPhotoURL    *string         `gorm:"column:arrival_photo_url" json:"arrival_photo_url"`
	VerificationStatus bool            `gorm:"not null;default:false;column:verification_status" json:"verification_status"`
	AdminNotes         *string         `gorm:"column:admin_notes" json:"admin_notes"`
	IsConsolidated     bool            `gorm:"not null;default:false;column:is_consolidated" json:"is_consolidated"`
	ParentShipmentID   *uuid.UUID      `gorm:"index;column:parent_shipment_id" json:"parent_shipment_id"`
	Parent             *Shipment       `gorm:"foreignKey:ParentShipmentID;references:ID" json:"-"`
	Events             []ShipmentEvent `gorm:"foreignKey:ShipmentID;references:ID" json:"events,omitempty"`
	CreatedAt          time.Time       `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt          time.Time       `gorm:"not null;default:now()" json:"updated_at"`
}

func (Shipment) TableName() string {
	return "shipment"
}
