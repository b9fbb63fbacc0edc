package services

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Daniel-Osman/nfd-express/internal/repos"
	"github.com/Daniel-Osman/nfd-express/internal/types"
)

type consolidationFixture struct {
	db           *gorm.DB
	svc          ConsolidationService
	shipmentRepo repos.ShipmentRepo
	eventRepo    repos.ShipmentEventRepo
	owner        *types.Profile
}

func newConsolidationFixture(t *testing.T) *consolidationFixture {
	t.Helper()
	db := openTestDB(t)
	log := testLogger()
	shipmentRepo := repos.NewShipmentRepo(db, log)
	eventRepo := repos.NewShipmentEventRepo(db, log)
	return &consolidationFixture{
		db:           db,
		svc:          NewConsolidationService(db, log, shipmentRepo, eventRepo),
		shipmentRepo: shipmentRepo,
		eventRepo:    eventRepo,
		owner:        seedProfile(t, db, types.TierGold, false),
	}
}

func (cf *consolidationFixture) seedShipment(t *testing.T, ownerID uuid.UUID, trackingNumber string, weight *float64) *types.Shipment {
	t.Helper()
	shipment := &types.Shipment{
		ID:             uuid.New(),
		TrackingNumber: trackingNumber,
		UserID:         ownerID,
		Status:         types.StatusReceivedUAE,
		WeightKG:       weight,
	}
	require.NoError(t, cf.db.Create(shipment).Error)
	return shipment
}

func floatPtr(v float64) *float64 { return &v }

func TestConsolidate_MergesShipmentsUnderMaster(t *testing.T) {
	cf := newConsolidationFixture(t)
	ctx := adminCtx(uuid.New())

	a := cf.seedShipment(t, cf.owner.ID, "NFD-001", floatPtr(2.5))
	b := cf.seedShipment(t, cf.owner.ID, "NFD-002", floatPtr(3.0))

	master, err := cf.svc.Consolidate(ctx, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(master.TrackingNumber, "NFD-CONS-"))
	require.Equal(t, types.StatusConsolidating, master.Status)
	require.True(t, master.IsConsolidated)
	require.Equal(t, cf.owner.ID, master.UserID)
	require.NotNil(t, master.WeightKG)
	require.InDelta(t, 5.5, *master.WeightKG, 0.0001)

	children, err := cf.shipmentRepo.GetByIDs(ctx, nil, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	require.Len(t, children, 2)
	for _, child := range children {
		require.NotNil(t, child.ParentShipmentID)
		require.Equal(t, master.ID, *child.ParentShipmentID)
		require.Equal(t, types.StatusConsolidating, child.Status)
	}

	events, err := cf.eventRepo.GetByShipmentIDs(ctx, nil, []uuid.UUID{master.ID})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "Consolidated 2 packages", events[0].Status)
	require.Equal(t, "UAE Warehouse", *events[0].Location)
}

func TestConsolidate_BackToBackRunsGetDistinctTrackingNumbers(t *testing.T) {
	cf := newConsolidationFixture(t)
	ctx := adminCtx(uuid.New())

	a := cf.seedShipment(t, cf.owner.ID, "NFD-001", nil)
	b := cf.seedShipment(t, cf.owner.ID, "NFD-002", nil)
	c := cf.seedShipment(t, cf.owner.ID, "NFD-003", nil)
	d := cf.seedShipment(t, cf.owner.ID, "NFD-004", nil)

	// No sleep between runs: both can land in the same millisecond and
	// must still get unique tracking numbers.
	first, err := cf.svc.Consolidate(ctx, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	second, err := cf.svc.Consolidate(ctx, []uuid.UUID{c.ID, d.ID})
	require.NoError(t, err)
	require.NotEqual(t, first.TrackingNumber, second.TrackingNumber)
}

func TestConsolidate_MasterCanBeMergedAgain(t *testing.T) {
	cf := newConsolidationFixture(t)
	ctx := adminCtx(uuid.New())

	a := cf.seedShipment(t, cf.owner.ID, "NFD-001", nil)
	b := cf.seedShipment(t, cf.owner.ID, "NFD-002", nil)
	firstMaster, err := cf.svc.Consolidate(ctx, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)

	c := cf.seedShipment(t, cf.owner.ID, "NFD-003", nil)
	secondMaster, err := cf.svc.Consolidate(ctx, []uuid.UUID{firstMaster.ID, c.ID})
	require.NoError(t, err)

	found, err := cf.shipmentRepo.GetByIDs(ctx, nil, []uuid.UUID{firstMaster.ID})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.NotNil(t, found[0].ParentShipmentID)
	require.Equal(t, secondMaster.ID, *found[0].ParentShipmentID)
}

func TestConsolidate_TreatsMissingWeightAsZero(t *testing.T) {
	cf := newConsolidationFixture(t)
	ctx := adminCtx(uuid.New())

	a := cf.seedShipment(t, cf.owner.ID, "NFD-001", floatPtr(4.0))
	b := cf.seedShipment(t, cf.owner.ID, "NFD-002", nil)

	master, err := cf.svc.Consolidate(ctx, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)
	require.InDelta(t, 4.0, *master.WeightKG, 0.0001)
}

func TestConsolidate_RejectsMixedOwnersWithoutMutation(t *testing.T) {
	cf := newConsolidationFixture(t)
	ctx := adminCtx(uuid.New())

	other := seedProfile(t, cf.db, types.TierGold, false)
	a := cf.seedShipment(t, cf.owner.ID, "NFD-001", nil)
	b := cf.seedShipment(t, other.ID, "NFD-002", nil)

	_, err := cf.svc.Consolidate(ctx, []uuid.UUID{a.ID, b.ID})
	require.Error(t, err)
	require.Equal(t, "All shipments must belong to the same user", err.Error())

	// The failed attempt must leave both shipments untouched.
	found, gErr := cf.shipmentRepo.GetByIDs(ctx, nil, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, gErr)
	for _, s := range found {
		require.Nil(t, s.ParentShipmentID)
		require.Equal(t, types.StatusReceivedUAE, s.Status)
	}

	var count int64
	require.NoError(t, cf.db.Model(&types.Shipment{}).Count(&count).Error)
	require.EqualValues(t, 2, count)
}

func TestConsolidate_RequiresAtLeastTwoShipments(t *testing.T) {
	cf := newConsolidationFixture(t)
	ctx := adminCtx(uuid.New())

	a := cf.seedShipment(t, cf.owner.ID, "NFD-001", nil)

	_, err := cf.svc.Consolidate(ctx, []uuid.UUID{a.ID, a.ID})
	require.Error(t, err)
	require.Equal(t, "Need at least 2 shipments to consolidate", err.Error())
}

func TestConsolidate_RejectsUnknownShipment(t *testing.T) {
	cf := newConsolidationFixture(t)
	ctx := adminCtx(uuid.New())

	a := cf.seedShipment(t, cf.owner.ID, "NFD-001", nil)

	_, err := cf.svc.Consolidate(ctx, []uuid.UUID{a.ID, uuid.New()})
	require.Error(t, err)
	require.Equal(t, "One or more shipments do not exist", err.Error())
}

func TestConsolidate_RejectsAlreadyConsolidatedShipment(t *testing.T) {
	cf := newConsolidationFixture(t)
	ctx := adminCtx(uuid.New())

	a := cf.seedShipment(t, cf.owner.ID, "NFD-001", nil)
	b := cf.seedShipment(t, cf.owner.ID, "NFD-002", nil)
	_, err := cf.svc.Consolidate(ctx, []uuid.UUID{a.ID, b.ID})
	require.NoError(t, err)

	c := cf.seedShipment(t, cf.owner.ID, "NFD-003", nil)
	_, err = cf.svc.Consolidate(ctx, []uuid.UUID{a.ID, c.ID})
	require.Error(t, err)
	require.Contains(t, err.Error(), "already consolidated")
}

func TestConsolidate_RejectsNonAdminCaller(t *testing.T) {
	cf := newConsolidationFixture(t)

	a := cf.seedShipment(t, cf.owner.ID, "NFD-001", nil)
	b := cf.seedShipment(t, cf.owner.ID, "NFD-002", nil)

	_, err := cf.svc.Consolidate(userCtx(cf.owner.ID), []uuid.UUID{a.ID, b.ID})
	require.Error(t, err)
	require.Equal(t, "Not authorized", err.Error())
}
