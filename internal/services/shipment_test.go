package services

import (
	"context"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Daniel-Osman/nfd-express/internal/repos"
	"github.com/Daniel-Osman/nfd-express/internal/types"
)

type fakeBucket struct {
	uploads map[string][]byte
}

func newFakeBucket() *fakeBucket {
	return &fakeBucket{uploads: map[string][]byte{}}
}

func (fb *fakeBucket) UploadFile(ctx context.Context, key string, file io.Reader) error {
	data, err := io.ReadAll(file)
	if err != nil {
		return err
	}
	fb.uploads[key] = data
	return nil
}

func (fb *fakeBucket) UploadBytes(ctx context.Context, key string, data []byte) error {
	fb.uploads[key] = data
	return nil
}

func (fb *fakeBucket) DeleteFile(ctx context.Context, key string) error {
	delete(fb.uploads, key)
	return nil
}

func (fb *fakeBucket) GetPublicURL(key string) string {
	return "https://cdn.test/" + key
}

func newShipmentFixture(t *testing.T) (ShipmentService, repos.ShipmentRepo, repos.ShipmentEventRepo, *types.Profile, *fakeBucket) {
	t.Helper()
	db := openTestDB(t)
	log := testLogger()
	shipmentRepo := repos.NewShipmentRepo(db, log)
	eventRepo := repos.NewShipmentEventRepo(db, log)
	profileRepo := repos.NewProfileRepo(db, log)
	bucket := newFakeBucket()
	svc := NewShipmentService(db, log, shipmentRepo, eventRepo, profileRepo, bucket)
	owner := seedProfile(t, db, types.TierFree, false)
	return svc, shipmentRepo, eventRepo, owner, bucket
}

func TestCreateShipment_NormalizesTrackingAndRecordsCreationEvent(t *testing.T) {
	svc, _, eventRepo, owner, _ := newShipmentFixture(t)
	ctx := adminCtx(uuid.New())

	weight := 2.5
	shipment, err := svc.CreateShipment(ctx, CreateShipmentInput{
		TrackingNumber: "  nfd-001 ",
		OwnerID:        owner.ID,
		WeightKG:       &weight,
	})
	require.NoError(t, err)
	require.Equal(t, "NFD-001", shipment.TrackingNumber)
	require.Equal(t, types.StatusPending, shipment.Status)
	require.Equal(t, owner.ID, shipment.UserID)

	events, err := eventRepo.GetByShipmentIDs(ctx, nil, []uuid.UUID{shipment.ID})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.Equal(t, "Shipment Created", events[0].Status)
	require.NotNil(t, events[0].Location)
	require.Equal(t, "System", *events[0].Location)
}

func TestCreateShipment_RejectsDuplicateTrackingNumber(t *testing.T) {
	svc, _, _, owner, _ := newShipmentFixture(t)
	ctx := adminCtx(uuid.New())

	_, err := svc.CreateShipment(ctx, CreateShipmentInput{TrackingNumber: "NFD-001", OwnerID: owner.ID})
	require.NoError(t, err)
	_, err = svc.CreateShipment(ctx, CreateShipmentInput{TrackingNumber: "nfd-001", OwnerID: owner.ID})
	require.Error(t, err)
	require.Contains(t, err.Error(), "already exists")
}

func TestCreateShipment_RejectsNonAdminCaller(t *testing.T) {
	svc, _, _, owner, _ := newShipmentFixture(t)

	_, err := svc.CreateShipment(userCtx(owner.ID), CreateShipmentInput{TrackingNumber: "NFD-001", OwnerID: owner.ID})
	require.Error(t, err)
	require.Equal(t, "Not authorized", err.Error())
}

func TestCreateShipment_RejectsUnknownOwner(t *testing.T) {
	svc, _, _, _, _ := newShipmentFixture(t)

	_, err := svc.CreateShipment(adminCtx(uuid.New()), CreateShipmentInput{TrackingNumber: "NFD-002", OwnerID: uuid.New()})
	require.Error(t, err)
	require.Contains(t, err.Error(), "Owner profile does not exist")
}

func TestUpdateStatus_AppendsLabeledEventWithDefaultLocation(t *testing.T) {
	svc, shipmentRepo, eventRepo, owner, _ := newShipmentFixture(t)
	ctx := adminCtx(uuid.New())

	shipment, err := svc.CreateShipment(ctx, CreateShipmentInput{TrackingNumber: "NFD-001", OwnerID: owner.ID})
	require.NoError(t, err)

	require.NoError(t, svc.UpdateStatus(ctx, shipment.ID, types.StatusShipped, nil))

	found, err := shipmentRepo.GetByIDs(ctx, nil, []uuid.UUID{shipment.ID})
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, types.StatusShipped, found[0].Status)

	events, err := eventRepo.GetByShipmentIDs(ctx, nil, []uuid.UUID{shipment.ID})
	require.NoError(t, err)
	require.Len(t, events, 2)
	// Newest first.
	require.Equal(t, "Shipped to Lebanon", events[0].Status)
	require.Equal(t, "NFD Express", *events[0].Location)
	require.Equal(t, "Shipment Created", events[1].Status)
}

func TestUpdateStatus_UsesProvidedLocation(t *testing.T) {
	svc, _, eventRepo, owner, _ := newShipmentFixture(t)
	ctx := adminCtx(uuid.New())

	shipment, err := svc.CreateShipment(ctx, CreateShipmentInput{TrackingNumber: "NFD-001", OwnerID: owner.ID})
	require.NoError(t, err)

	location := "Beirut Port"
	require.NoError(t, svc.UpdateStatus(ctx, shipment.ID, types.StatusArrivedLeb, &location))

	events, err := eventRepo.GetByShipmentIDs(ctx, nil, []uuid.UUID{shipment.ID})
	require.NoError(t, err)
	require.Equal(t, "Arrived in Lebanon", events[0].Status)
	require.Equal(t, "Beirut Port", *events[0].Location)
}

func TestUpdateStatus_RejectsUnknownStatus(t *testing.T) {
	svc, _, _, owner, _ := newShipmentFixture(t)
	ctx := adminCtx(uuid.New())

	shipment, err := svc.CreateShipment(ctx, CreateShipmentInput{TrackingNumber: "NFD-001", OwnerID: owner.ID})
	require.NoError(t, err)

	err = svc.UpdateStatus(ctx, shipment.ID, types.ShipmentStatus("teleported"), nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "Unknown shipment status")
}

func TestUploadProofPhoto_StoresPhotoAndMovesToReceived(t *testing.T) {
	svc, shipmentRepo, eventRepo, owner, bucket := newShipmentFixture(t)
	ctx := adminCtx(uuid.New())

	shipment, err := svc.CreateShipment(ctx, CreateShipmentInput{TrackingNumber: "NFD-001", OwnerID: owner.ID})
	require.NoError(t, err)

	photoURL, err := svc.UploadProofPhoto(ctx, shipment.ID, []byte("jpeg-bytes"), "jpg")
	require.NoError(t, err)
	require.Contains(t, photoURL, "shipment-proofs/")
	require.Len(t, bucket.uploads, 1)

	found, err := shipmentRepo.GetByIDs(ctx, nil, []uuid.UUID{shipment.ID})
	require.NoError(t, err)
	require.Equal(t, types.StatusReceivedUAE, found[0].Status)
	require.NotNil(t, found[0].ArrivalPhotoURL)
	require.Equal(t, photoURL, *found[0].ArrivalPhotoURL)

	events, err := eventRepo.GetByShipmentIDs(ctx, nil, []uuid.UUID{shipment.ID})
	require.NoError(t, err)
	require.Equal(t, "Proof of Arrival Uploaded", events[0].Status)
	require.Equal(t, "UAE Warehouse", *events[0].Location)
}

func TestAddVerificationNote_MarksVerifiedAndKeepsNote(t *testing.T) {
	svc, shipmentRepo, eventRepo, owner, _ := newShipmentFixture(t)
	ctx := adminCtx(uuid.New())

	shipment, err := svc.CreateShipment(ctx, CreateShipmentInput{TrackingNumber: "NFD-001", OwnerID: owner.ID})
	require.NoError(t, err)

	require.NoError(t, svc.AddVerificationNote(ctx, shipment.ID, " Contents match invoice "))

	found, err := shipmentRepo.GetByIDs(ctx, nil, []uuid.UUID{shipment.ID})
	require.NoError(t, err)
	require.True(t, found[0].VerificationStatus)
	require.NotNil(t, found[0].AdminNotes)
	require.Equal(t, "Contents match invoice", *found[0].AdminNotes)

	events, err := eventRepo.GetByShipmentIDs(ctx, nil, []uuid.UUID{shipment.ID})
	require.NoError(t, err)
	require.Equal(t, "Content Verified by Admin", events[0].Status)
}

func TestSearch_MatchesCaseInsensitively(t *testing.T) {
	svc, _, _, owner, _ := newShipmentFixture(t)
	ctx := adminCtx(uuid.New())

	for _, tn := range []string{"NFD-100", "NFD-101", "ABC-200"} {
		_, err := svc.CreateShipment(ctx, CreateShipmentInput{TrackingNumber: tn, OwnerID: owner.ID})
		require.NoError(t, err)
	}

	found, err := svc.Search(ctx, "nfd-10")
	require.NoError(t, err)
	require.Len(t, found, 2)
}

func TestGetByTrackingNumber_ReturnsNilOnMiss(t *testing.T) {
	svc, _, _, _, _ := newShipmentFixture(t)

	shipment, err := svc.GetByTrackingNumber(adminCtx(uuid.New()), "NFD-404")
	require.NoError(t, err)
	require.Nil(t, shipment)
}
