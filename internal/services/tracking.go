package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Daniel-Osman/nfd-express/internal/clients/redis"
	"github.com/Daniel-Osman/nfd-express/internal/logger"
	"github.com/Daniel-Osman/nfd-express/internal/normalization"
	"github.com/Daniel-Osman/nfd-express/internal/repos"
	"github.com/Daniel-Osman/nfd-express/internal/requestdata"
	"github.com/Daniel-Osman/nfd-express/internal/types"
)

type TrackingService interface {
	PublicTracking(ctx context.Context, trackingNumber string) (*types.PublicTrackingInfo, error)
	ShipmentDetails(ctx context.Context, shipmentID uuid.UUID) (*types.ShipmentDetails, error)
	ShipmentsForCaller(ctx context.Context) ([]*types.ShipmentDetails, error)
}

type trackingService struct {
	db           *gorm.DB
	log          *logger.Logger
	shipmentRepo repos.ShipmentRepo
	eventRepo    repos.ShipmentEventRepo
	profileRepo  repos.ProfileRepo
	cache        redis.TrackingCache
}

func NewTrackingService(
	db *gorm.DB,
	log *logger.Logger,
	shipmentRepo repos.ShipmentRepo,
	eventRepo repos.ShipmentEventRepo,
	profileRepo repos.ProfileRepo,
	cache redis.TrackingCache,
) TrackingService {
	serviceLog := log.With("service", "TrackingService")
	return &trackingService{
		db:           db,
		log:          serviceLog,
		shipmentRepo: shipmentRepo,
		eventRepo:    eventRepo,
		profileRepo:  profileRepo,
		cache:        cache,
	}
}

// PublicTracking returns the minimal-disclosure shape for the public page.
// Unknown tracking numbers and private records look identical: both come
// back nil.
func (ts *trackingService) PublicTracking(ctx context.Context, trackingNumber string) (*types.PublicTrackingInfo, error) {
	trackingNumber = normalization.ParseTrackingNumber(trackingNumber)
	if trackingNumber == "" {
		return nil, nil
	}

	if ts.cache != nil {
		info, hit, err := ts.cache.Get(ctx, trackingNumber)
		if err != nil {
			ts.log.Warn("Tracking cache read failed (falling through to db)", "error", err)
		} else if hit {
			return info, nil
		}
	}

	found, err := ts.shipmentRepo.GetByTrackingNumbers(ctx, nil, []string{trackingNumber})
	if err != nil {
		return nil, fmt.Errorf("Failed to look up tracking number: %w", err)
	}
	var info *types.PublicTrackingInfo
	if len(found) > 0 && found[0] != nil {
		shipment := found[0]
		info = &types.PublicTrackingInfo{
			TrackingNumber: shipment.TrackingNumber,
			Status:         shipment.Status,
		}
		latest, eErr := ts.eventRepo.GetLatestByShipmentID(ctx, nil, shipment.ID)
		if eErr != nil {
			return nil, fmt.Errorf("Failed to load latest event: %w", eErr)
		}
		if latest != nil {
			status := latest.Status
			info.LastEvent = &status
			info.LastLocation = latest.Location
		}
	}

	if ts.cache != nil {
		if err := ts.cache.Set(ctx, trackingNumber, info); err != nil {
			ts.log.Warn("Tracking cache write failed (ignored)", "error", err)
		}
	}
	return info, nil
}

func (ts *trackingService) ShipmentDetails(ctx context.Context, shipmentID uuid.UUID) (*types.ShipmentDetails, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("Not authenticated")
	}
	tier, err := ts.callerTier(ctx)
	if err != nil {
		return nil, err
	}

	found, fErr := ts.shipmentRepo.GetByIDs(ctx, nil, []uuid.UUID{shipmentID})
	if fErr != nil {
		return nil, fmt.Errorf("Failed to load shipment: %w", fErr)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, nil
	}
	shipment := found[0]
	// Someone else's shipment looks exactly like a missing one.
	if shipment.UserID != rd.UserID && !rd.IsAdmin {
		return nil, nil
	}

	events, eErr := ts.eventRepo.GetByShipmentIDs(ctx, nil, []uuid.UUID{shipment.ID})
	if eErr != nil {
		return nil, fmt.Errorf("Failed to load shipment events: %w", eErr)
	}
	flat := make([]types.ShipmentEvent, 0, len(events))
	for _, e := range events {
		flat = append(flat, *e)
	}

	return projectShipment(shipment, flat, tier), nil
}

func (ts *trackingService) ShipmentsForCaller(ctx context.Context) ([]*types.ShipmentDetails, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("Not authenticated")
	}
	tier, err := ts.callerTier(ctx)
	if err != nil {
		return nil, err
	}

	shipments, sErr := ts.shipmentRepo.GetByOwnerIDs(ctx, nil, []uuid.UUID{rd.UserID})
	if sErr != nil {
		return nil, fmt.Errorf("Failed to load shipments: %w", sErr)
	}
	out := make([]*types.ShipmentDetails, 0, len(shipments))
	for _, s := range shipments {
		out = append(out, projectShipment(s, s.Events, tier))
	}
	return out, nil
}

func (ts *trackingService) callerTier(ctx context.Context) (types.SubscriptionTier, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return "", fmt.Errorf("Not authenticated")
	}
	profiles, err := ts.profileRepo.GetByIDs(ctx, nil, []uuid.UUID{rd.UserID})
	if err != nil {
		return "", fmt.Errorf("Failed to load caller profile: %w", err)
	}
	if len(profiles) == 0 || profiles[0] == nil {
		return "", fmt.Errorf("Caller profile does not exist")
	}
	return profiles[0].SubscriptionTier, nil
}

// projectShipment is the one place tier gating is applied to a shipment.
// Every read path, list or single, goes through here; the flags are always
// re-derived from the tier policy and never taken from the client.
func projectShipment(shipment *types.Shipment, events []types.ShipmentEvent, tier types.SubscriptionTier) *types.ShipmentDetails {
	caps := tier.Capabilities()

	filtered := *shipment
	filtered.Owner = nil
	filtered.Events = nil
	if !caps.CanViewPhoto {
		filtered.ArrivalPhotoURL = nil
	}
	if !caps.CanViewVerification {
		filtered.VerificationStatus = false
		filtered.AdminNotes = nil
	}

	if events == nil {
		events = []types.ShipmentEvent{}
	}

	return &types.ShipmentDetails{
		Shipment:                filtered,
		Events:                  events,
		PhotoAccessible:         caps.CanViewPhoto,
		VerificationAccessible:  caps.CanViewVerification,
		ConsolidationAccessible: caps.CanConsolidate,
	}
}
