package repos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Daniel-Osman/nfd-express/internal/logger"
	"github.com/Daniel-Osman/nfd-express/internal/types"
)

type ShipmentRepo interface {
	Create(ctx context.Context, tx *gorm.DB, shipments []*types.Shipment) ([]*types.Shipment, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, shipmentIDs []uuid.UUID) ([]*types.Shipment, error)
	GetByTrackingNumbers(ctx context.Context, tx *gorm.DB, trackingNumbers []string) ([]*types.Shipment, error)
	GetByOwnerIDs(ctx context.Context, tx *gorm.DB, ownerIDs []uuid.UUID) ([]*types.Shipment, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Shipment, error)
	SearchByTrackingNumber(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*types.Shipment, error)
	TrackingNumberExists(ctx context.Context, tx *gorm.DB, trackingNumber string) (bool, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, shipmentID uuid.UUID, status types.ShipmentStatus) error
	UpdatePhoto(ctx context.Context, tx *gorm.DB, shipmentID uuid.UUID, photoURL string, status types.ShipmentStatus) error
	UpdateVerification(ctx context.Context, tx *gorm.DB, shipmentID uuid.UUID, notes string) error
	ReparentForConsolidation(ctx context.Context, tx *gorm.DB, shipmentIDs []uuid.UUID, parentID uuid.UUID) error
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	CountByStatuses(ctx context.Context, tx *gorm.DB, statuses []types.ShipmentStatus) (int64, error)
}

type shipmentRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewShipmentRepo(db *gorm.DB, baseLog *logger.Logger) ShipmentRepo {
	repoLog := baseLog.With("repo", "ShipmentRepo")
	return &shipmentRepo{db: db, log: repoLog}
}

func (sr *shipmentRepo) Create(ctx context.Context, tx *gorm.DB, shipments []*types.Shipment) ([]*types.Shipment, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if len(shipments) == 0 {
		return []*types.Shipment{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&shipments).Error; err != nil {
		return nil, err
	}
	return shipments, nil
}

func (sr *shipmentRepo) GetByIDs(ctx context.Context, tx *gorm.DB, shipmentIDs []uuid.UUID) ([]*types.Shipment, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.Shipment
	if len(shipmentIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", shipmentIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *shipmentRepo) GetByTrackingNumbers(ctx context.Context, tx *gorm.DB, trackingNumbers []string) ([]*types.Shipment, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.Shipment
	if len(trackingNumbers) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Owner").
		Where("tracking_number IN ?", trackingNumbers).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *shipmentRepo) GetByOwnerIDs(ctx context.Context, tx *gorm.DB, ownerIDs []uuid.UUID) ([]*types.Shipment, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.Shipment
	if len(ownerIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Preload("Events", func(db *gorm.DB) *gorm.DB {
			return db.Order("timestamp DESC")
		}).
		Where("user_id IN ?", ownerIDs).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *shipmentRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Shipment, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.Shipment
	if err := transaction.WithContext(ctx).
		Preload("Owner").
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// Tracking numbers are stored upper case, so a case-folded LIKE works the
// same on postgres and on the sqlite test databases.
func (sr *shipmentRepo) SearchByTrackingNumber(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*types.Shipment, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var results []*types.Shipment
	query = strings.ToUpper(strings.TrimSpace(query))
	if query == "" {
		return results, nil
	}
	if limit <= 0 {
		limit = 20
	}

	if err := transaction.WithContext(ctx).
		Preload("Owner").
		Where("tracking_number LIKE ?", "%"+query+"%").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (sr *shipmentRepo) TrackingNumberExists(ctx context.Context, tx *gorm.DB, trackingNumber string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Shipment{}).
		Where("tracking_number = ?", trackingNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (sr *shipmentRepo) UpdateStatus(ctx context.Context, tx *gorm.DB, shipmentID uuid.UUID, status types.ShipmentStatus) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Shipment{}).
		Where("id = ?", shipmentID).
		Update("status", status).Error
}

func (sr *shipmentRepo) UpdatePhoto(ctx context.Context, tx *gorm.DB, shipmentID uuid.UUID, photoURL string, status types.ShipmentStatus) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Shipment{}).
		Where("id = ?", shipmentID).
		Updates(map[string]interface{}{
			"arrival_photo_url": photoURL,
			"status":            status,
		}).Error
}

func (sr *shipmentRepo) UpdateVerification(ctx context.Context, tx *gorm.DB, shipmentID uuid.UUID, notes string) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Shipment{}).
		Where("id = ?", shipmentID).
		Updates(map[string]interface{}{
			"admin_notes":         notes,
			"verification_status": true,
		}).Error
}

func (sr *shipmentRepo) ReparentForConsolidation(ctx context.Context, tx *gorm.DB, shipmentIDs []uuid.UUID, parentID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	if len(shipmentIDs) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.Shipment{}).
		Where("id IN ?", shipmentIDs).
		Updates(map[string]interface{}{
			"parent_shipment_id": parentID,
			"status":             types.StatusConsolidating,
		}).Error
}

func (sr *shipmentRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Shipment{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (sr *shipmentRepo) CountByStatuses(ctx context.Context, tx *gorm.DB, statuses []types.ShipmentStatus) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = sr.db
	}

	var count int64
	if len(statuses) == 0 {
		return 0, nil
	}

	if err := transaction.WithContext(ctx).
		Model(&types.Shipment{}).
		Where("status IN ?", statuses).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
