package services

import (
	"context"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/Daniel-Osman/nfd-express/internal/logger"
	"github.com/Daniel-Osman/nfd-express/internal/repos"
	"github.com/Daniel-Osman/nfd-express/internal/types"
)

type AdminStats struct {
	TotalShipments     int64 `json:"total_shipments"`
	PendingShipments   int64 `json:"pending_shipments"`
	InTransitShipments int64 `json:"in_transit_shipments"`
	DeliveredShipments int64 `json:"delivered_shipments"`
	TotalUsers         int64 `json:"total_users"`
}

type StatsService interface {
	Stats(ctx context.Context) (*AdminStats, error)
}

type statsService struct {
	db           *gorm.DB
	log          *logger.Logger
	shipmentRepo repos.ShipmentRepo
	profileRepo  repos.ProfileRepo
}

func NewStatsService(db *gorm.DB, log *logger.Logger, shipmentRepo repos.ShipmentRepo, profileRepo repos.ProfileRepo) StatsService {
	serviceLog := log.With("service", "StatsService")
	return &statsService{db: db, log: serviceLog, shipmentRepo: shipmentRepo, profileRepo: profileRepo}
}

func (st *statsService) Stats(ctx context.Context) (*AdminStats, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}

	var stats AdminStats
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := st.shipmentRepo.Count(gctx, nil)
		stats.TotalShipments = n
		return err
	})
	g.Go(func() error {
		n, err := st.shipmentRepo.CountByStatuses(gctx, nil, []types.ShipmentStatus{types.StatusPending})
		stats.PendingShipments = n
		return err
	})
	g.Go(func() error {
		n, err := st.shipmentRepo.CountByStatuses(gctx, nil, []types.ShipmentStatus{
			types.StatusReceivedUAE,
			types.StatusConsolidating,
			types.StatusShipped,
			types.StatusArrivedLeb,
		})
		stats.InTransitShipments = n
		return err
	})
	g.Go(func() error {
		n, err := st.shipmentRepo.CountByStatuses(gctx, nil, []types.ShipmentStatus{types.StatusDelivered})
		stats.DeliveredShipments = n
		return err
	})
	g.Go(func() error {
		n, err := st.profileRepo.Count(gctx, nil)
		stats.TotalUsers = n
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &stats, nil
}
