package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Daniel-Osman/nfd-express/internal/logger"
	"github.com/Daniel-Osman/nfd-express/internal/repos"
	"github.com/Daniel-Osman/nfd-express/internal/types"
)

type ConsolidationService interface {
	Consolidate(ctx context.Context, shipmentIDs []uuid.UUID) (*types.Shipment, error)
}

type consolidationService struct {
	db           *gorm.DB
	log          *logger.Logger
	shipmentRepo repos.ShipmentRepo
	eventRepo    repos.ShipmentEventRepo
}

func NewConsolidationService(db *gorm.DB, log *logger.Logger, shipmentRepo repos.ShipmentRepo, eventRepo repos.ShipmentEventRepo) ConsolidationService {
	serviceLog := log.With("service", "ConsolidationService")
	return &consolidationService{
		db:           db,
		log:          serviceLog,
		shipmentRepo: shipmentRepo,
		eventRepo:    eventRepo,
	}
}

// Consolidate merges the given shipments into one new master record. All
// validation happens before any write, and the master create, the child
// re-parenting and the history event share one transaction so a failure
// cannot leave a half-consolidated set behind.
//
// Only shipments that already sit under a parent are rejected. A master
// from an earlier run has a nil parent and may itself be merged again;
// repeated warehouse consolidations stack that way.
func (cs *consolidationService) Consolidate(ctx context.Context, shipmentIDs []uuid.UUID) (*types.Shipment, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{}, len(shipmentIDs))
	ids := make([]uuid.UUID, 0, len(shipmentIDs))
	for _, id := range shipmentIDs {
		if id == uuid.Nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	var master *types.Shipment
	if err := cs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		shipments, fErr := cs.shipmentRepo.GetByIDs(ctx, tx, ids)
		if fErr != nil {
			return fmt.Errorf("Failed to load shipments: %w", fErr)
		}
		if len(shipments) != len(ids) {
			return fmt.Errorf("One or more shipments do not exist")
		}

		owners := make(map[uuid.UUID]struct{}, 1)
		for _, s := range shipments {
			owners[s.UserID] = struct{}{}
			if s.ParentShipmentID != nil {
				return fmt.Errorf("Shipment %s is already consolidated", s.TrackingNumber)
			}
		}
		if len(owners) > 1 {
			return fmt.Errorf("All shipments must belong to the same user")
		}
		if len(shipments) < 2 {
			return fmt.Errorf("Need at least 2 shipments to consolidate")
		}

		var totalWeight float64
		for _, s := range shipments {
			if s.WeightKG != nil {
				totalWeight += *s.WeightKG
			}
		}

		// The random suffix keeps back-to-back consolidations from
		// colliding on the tracking number index.
		masterTrackingNumber := fmt.Sprintf("NFD-CONS-%d-%s", time.Now().UnixMilli(), strings.ToUpper(uuid.NewString()[:8]))
		master = &types.Shipment{
			ID:             uuid.New(),
			TrackingNumber: masterTrackingNumber,
			UserID:         shipments[0].UserID,
			Status:         types.StatusConsolidating,
			WeightKG:       &totalWeight,
			IsConsolidated: true,
		}
		if _, cErr := cs.shipmentRepo.Create(ctx, tx, []*types.Shipment{master}); cErr != nil {
			return fmt.Errorf("Failed to create master shipment: %w", cErr)
		}

		if rErr := cs.shipmentRepo.ReparentForConsolidation(ctx, tx, ids, master.ID); rErr != nil {
			return fmt.Errorf("Failed to re-parent source shipments: %w", rErr)
		}

		location := "UAE Warehouse"
		event := &types.ShipmentEvent{
			ID:         uuid.New(),
			ShipmentID: master.ID,
			Status:     fmt.Sprintf("Consolidated %d packages", len(shipments)),
			Location:   &location,
			Timestamp:  time.Now().UTC(),
		}
		if _, aErr := cs.eventRepo.Append(ctx, tx, []*types.ShipmentEvent{event}); aErr != nil {
			return fmt.Errorf("Failed to append consolidation event: %w", aErr)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return master, nil
}
