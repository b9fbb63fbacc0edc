package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Daniel-Osman/nfd-express/internal/logger"
	"github.com/Daniel-Osman/nfd-express/internal/types"
)

// ShipmentEventRepo is append-only. There is deliberately no update or
// delete method on it.
type ShipmentEventRepo interface {
	Append(ctx context.Context, tx *gorm.DB, events []*types.ShipmentEvent) ([]*types.ShipmentEvent, error)
	GetByShipmentIDs(ctx context.Context, tx *gorm.DB, shipmentIDs []uuid.UUID) ([]*types.ShipmentEvent, error)
	GetLatestByShipmentID(ctx context.Context, tx *gorm.DB, shipmentID uuid.UUID) (*types.ShipmentEvent, error)
}

type shipmentEventRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewShipmentEventRepo(db *gorm.DB, baseLog *logger.Logger) ShipmentEventRepo {
	repoLog := baseLog.With("repo", "ShipmentEventRepo")
	return &shipmentEventRepo{db: db, log: repoLog}
}

func (er *shipmentEventRepo) Append(ctx context.Context, tx *gorm.DB, events []*types.ShipmentEvent) ([]*types.ShipmentEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	if len(events) == 0 {
		return []*types.ShipmentEvent{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (er *shipmentEventRepo) GetByShipmentIDs(ctx context.Context, tx *gorm.DB, shipmentIDs []uuid.UUID) ([]*types.ShipmentEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	var results []*types.ShipmentEvent
	if len(shipmentIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("shipment_id IN ?", shipmentIDs).
		Order("timestamp DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (er *shipmentEventRepo) GetLatestByShipmentID(ctx context.Context, tx *gorm.DB, shipmentID uuid.UUID) (*types.ShipmentEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = er.db
	}

	var results []*types.ShipmentEvent
	if err := transaction.WithContext(ctx).
		Where("shipment_id = ?", shipmentID).
		Order("timestamp DESC").
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}
