package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Daniel-Osman/nfd-express/internal/repos"
	"github.com/Daniel-Osman/nfd-express/internal/types"
)

func TestStats_CountsByLifecycleBucket(t *testing.T) {
	db := openTestDB(t)
	log := testLogger()
	shipmentRepo := repos.NewShipmentRepo(db, log)
	profileRepo := repos.NewProfileRepo(db, log)
	svc := NewStatsService(db, log, shipmentRepo, profileRepo)

	owner := seedProfile(t, db, types.TierFree, false)
	seedProfile(t, db, types.TierGold, false)

	statuses := []types.ShipmentStatus{
		types.StatusPending,
		types.StatusPending,
		types.StatusReceivedUAE,
		types.StatusShipped,
		types.StatusDelivered,
	}
	for i, status := range statuses {
		shipment := &types.Shipment{
			ID:             uuid.New(),
			TrackingNumber: "NFD-00" + string(rune('1'+i)),
			UserID:         owner.ID,
			Status:         status,
		}
		require.NoError(t, db.Create(shipment).Error)
	}

	stats, err := svc.Stats(adminCtx(uuid.New()))
	require.NoError(t, err)
	require.EqualValues(t, 5, stats.TotalShipments)
	require.EqualValues(t, 2, stats.PendingShipments)
	require.EqualValues(t, 2, stats.InTransitShipments)
	require.EqualValues(t, 1, stats.DeliveredShipments)
	require.EqualValues(t, 2, stats.TotalUsers)
}

func TestStats_RequiresAdmin(t *testing.T) {
	db := openTestDB(t)
	log := testLogger()
	svc := NewStatsService(db, log, repos.NewShipmentRepo(db, log), repos.NewProfileRepo(db, log))

	_, err := svc.Stats(userCtx(uuid.New()))
	require.Error(t, err)
	require.Equal(t, "Not authorized", err.Error())
}
