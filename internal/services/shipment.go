package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Daniel-Osman/nfd-express/internal/clients/gcs"
	"github.com/Daniel-Osman/nfd-express/internal/logger"
	"github.com/Daniel-Osman/nfd-express/internal/normalization"
	"github.com/Daniel-Osman/nfd-express/internal/repos"
	"github.com/Daniel-Osman/nfd-express/internal/types"
)

const (
	locationSystem       = "System"
	locationUAEWarehouse = "UAE Warehouse"
	locationDefault      = "NFD Express"
)

type CreateShipmentInput struct {
	TrackingNumber string
	OwnerID        uuid.UUID
	WeightKG       *float64
	Dimensions     datatypes.JSON
}

type ShipmentService interface {
	CreateShipment(ctx context.Context, input CreateShipmentInput) (*types.Shipment, error)
	UpdateStatus(ctx context.Context, shipmentID uuid.UUID, target types.ShipmentStatus, location *string) error
	UploadProofPhoto(ctx context.Context, shipmentID uuid.UUID, photo []byte, fileExt string) (string, error)
	AddVerificationNote(ctx context.Context, shipmentID uuid.UUID, note string) error
	GetByTrackingNumber(ctx context.Context, trackingNumber string) (*types.Shipment, error)
	GetAll(ctx context.Context) ([]*types.Shipment, error)
	Search(ctx context.Context, query string) ([]*types.Shipment, error)
}

type shipmentService struct {
	db            *gorm.DB
	log           *logger.Logger
	shipmentRepo  repos.ShipmentRepo
	eventRepo     repos.ShipmentEventRepo
	profileRepo   repos.ProfileRepo
	bucketService gcs.BucketService
}

func NewShipmentService(
	db *gorm.DB,
	log *logger.Logger,
	shipmentRepo repos.ShipmentRepo,
	eventRepo repos.ShipmentEventRepo,
	profileRepo repos.ProfileRepo,
	bucketService gcs.BucketService,
) ShipmentService {
	serviceLog := log.With("service", "ShipmentService")
	return &shipmentService{
		db:            db,
		log:           serviceLog,
		shipmentRepo:  shipmentRepo,
		eventRepo:     eventRepo,
		profileRepo:   profileRepo,
		bucketService: bucketService,
	}
}

func (ss *shipmentService) CreateShipment(ctx context.Context, input CreateShipmentInput) (*types.Shipment, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	trackingNumber := normalization.ParseTrackingNumber(input.TrackingNumber)
	if trackingNumber == "" {
		return nil, fmt.Errorf("A tracking number is required")
	}
	if input.OwnerID == uuid.Nil {
		return nil, fmt.Errorf("An owner is required")
	}

	var shipment *types.Shipment
	if err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, eErr := ss.shipmentRepo.TrackingNumberExists(ctx, tx, trackingNumber)
		if eErr != nil {
			return fmt.Errorf("Failed to check tracking number: %w", eErr)
		}
		if exists {
			return fmt.Errorf("Tracking number %s already exists", trackingNumber)
		}
		owners, oErr := ss.profileRepo.GetByIDs(ctx, tx, []uuid.UUID{input.OwnerID})
		if oErr != nil {
			return fmt.Errorf("Failed to load owner profile: %w", oErr)
		}
		if len(owners) == 0 || owners[0] == nil {
			return fmt.Errorf("Owner profile does not exist")
		}
		shipment = &types.Shipment{
			ID:             uuid.New(),
			TrackingNumber: trackingNumber,
			UserID:         input.OwnerID,
			Status:         types.StatusPending,
			WeightKG:       input.WeightKG,
			Dimensions:     input.Dimensions,
		}
		if _, cErr := ss.shipmentRepo.Create(ctx, tx, []*types.Shipment{shipment}); cErr != nil {
			return fmt.Errorf("Failed to create shipment: %w", cErr)
		}
		if aErr := ss.appendEvent(ctx, tx, shipment.ID, "Shipment Created", locationSystem); aErr != nil {
			return aErr
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return shipment, nil
}

// UpdateStatus accepts any known target status. Warehouse corrections and
// rescans arrive out of order, so the canonical path is not enforced here.
func (ss *shipmentService) UpdateStatus(ctx context.Context, shipmentID uuid.UUID, target types.ShipmentStatus, location *string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	if !target.Valid() {
		return fmt.Errorf("Unknown shipment status %q", target)
	}

	eventLocation := locationDefault
	if location != nil && normalization.TrimInputString(*location) != "" {
		eventLocation = normalization.TrimInputString(*location)
	}

	return ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, fErr := ss.shipmentRepo.GetByIDs(ctx, tx, []uuid.UUID{shipmentID})
		if fErr != nil {
			return fmt.Errorf("Failed to load shipment: %w", fErr)
		}
		if len(found) == 0 || found[0] == nil {
			return fmt.Errorf("Shipment does not exist")
		}
		if uErr := ss.shipmentRepo.UpdateStatus(ctx, tx, shipmentID, target); uErr != nil {
			return fmt.Errorf("Failed to update shipment status: %w", uErr)
		}
		return ss.appendEvent(ctx, tx, shipmentID, target.Label(), eventLocation)
	})
}

// UploadProofPhoto stores the photo first, then flips the shipment to
// received_uae and records the proof event in one transaction. A storage
// failure therefore leaves the shipment untouched.
func (ss *shipmentService) UploadProofPhoto(ctx context.Context, shipmentID uuid.UUID, photo []byte, fileExt string) (string, error) {
	if err := requireAdmin(ctx); err != nil {
		return "", err
	}
	if len(photo) == 0 {
		return "", fmt.Errorf("Empty photo upload")
	}
	if ss.bucketService == nil {
		return "", fmt.Errorf("Bucket service not configured")
	}

	found, fErr := ss.shipmentRepo.GetByIDs(ctx, nil, []uuid.UUID{shipmentID})
	if fErr != nil {
		return "", fmt.Errorf("Failed to load shipment: %w", fErr)
	}
	if len(found) == 0 || found[0] == nil {
		return "", fmt.Errorf("Shipment does not exist")
	}

	if fileExt == "" {
		fileExt = "jpg"
	}
	key := fmt.Sprintf("shipment-proofs/%s-%d.%s", shipmentID.String(), time.Now().UnixMilli(), fileExt)
	if uErr := ss.bucketService.UploadBytes(ctx, key, photo); uErr != nil {
		return "", fmt.Errorf("Failed to upload proof photo: %w", uErr)
	}
	photoURL := ss.bucketService.GetPublicURL(key)

	if err := ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if uErr := ss.shipmentRepo.UpdatePhoto(ctx, tx, shipmentID, photoURL, types.StatusReceivedUAE); uErr != nil {
			return fmt.Errorf("Failed to record proof photo: %w", uErr)
		}
		return ss.appendEvent(ctx, tx, shipmentID, "Proof of Arrival Uploaded", locationUAEWarehouse)
	}); err != nil {
		return "", err
	}
	return photoURL, nil
}

func (ss *shipmentService) AddVerificationNote(ctx context.Context, shipmentID uuid.UUID, note string) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	note = normalization.TrimInputString(note)
	if note == "" {
		return fmt.Errorf("A verification note is required")
	}

	return ss.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, fErr := ss.shipmentRepo.GetByIDs(ctx, tx, []uuid.UUID{shipmentID})
		if fErr != nil {
			return fmt.Errorf("Failed to load shipment: %w", fErr)
		}
		if len(found) == 0 || found[0] == nil {
			return fmt.Errorf("Shipment does not exist")
		}
		if uErr := ss.shipmentRepo.UpdateVerification(ctx, tx, shipmentID, note); uErr != nil {
			return fmt.Errorf("Failed to record verification note: %w", uErr)
		}
		return ss.appendEvent(ctx, tx, shipmentID, "Content Verified by Admin", locationUAEWarehouse)
	})
}

func (ss *shipmentService) GetByTrackingNumber(ctx context.Context, trackingNumber string) (*types.Shipment, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	trackingNumber = normalization.ParseTrackingNumber(trackingNumber)
	found, err := ss.shipmentRepo.GetByTrackingNumbers(ctx, nil, []string{trackingNumber})
	if err != nil {
		return nil, fmt.Errorf("Failed to look up tracking number: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, nil
	}
	return found[0], nil
}

func (ss *shipmentService) GetAll(ctx context.Context) ([]*types.Shipment, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return ss.shipmentRepo.GetAll(ctx, nil)
}

func (ss *shipmentService) Search(ctx context.Context, query string) ([]*types.Shipment, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return ss.shipmentRepo.SearchByTrackingNumber(ctx, nil, query, 20)
}

func (ss *shipmentService) appendEvent(ctx context.Context, tx *gorm.DB, shipmentID uuid.UUID, status, location string) error {
	event := &types.ShipmentEvent{
		ID:         uuid.New(),
		ShipmentID: shipmentID,
		Status:     status,
		Location:   &location,
		Timestamp:  time.Now().UTC(),
	}
	if _, err := ss.eventRepo.Append(ctx, tx, []*types.ShipmentEvent{event}); err != nil {
		return fmt.Errorf("Failed to append shipment event: %w", err)
	}
	return nil
}
