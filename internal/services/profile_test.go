package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Daniel-Osman/nfd-express/internal/repos"
	"github.com/Daniel-Osman/nfd-express/internal/types"
)

func newProfileFixture(t *testing.T) (ProfileService, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	log := testLogger()
	return NewProfileService(db, log, repos.NewProfileRepo(db, log)), db
}

func TestGetMe_ReturnsCallerProfile(t *testing.T) {
	svc, db := newProfileFixture(t)
	owner := seedProfile(t, db, types.TierSilver, false)

	me, err := svc.GetMe(userCtx(owner.ID))
	require.NoError(t, err)
	require.Equal(t, owner.ID, me.ID)
	require.Equal(t, types.TierSilver, me.SubscriptionTier)
}

func TestUpdateContactFields_KeepsUntouchedField(t *testing.T) {
	svc, db := newProfileFixture(t)
	owner := seedProfile(t, db, types.TierFree, false)

	updated, err := svc.UpdateContactFields(userCtx(owner.ID), " New Name ", "")
	require.NoError(t, err)
	require.Equal(t, "New Name", updated.FullName)
	require.Equal(t, owner.PhoneNumber, updated.PhoneNumber)
}

func TestUpdateContactFields_RejectsEmptyUpdate(t *testing.T) {
	svc, db := newProfileFixture(t)
	owner := seedProfile(t, db, types.TierFree, false)

	_, err := svc.UpdateContactFields(userCtx(owner.ID), "  ", "")
	require.Error(t, err)
}

func TestUpdateTier_ChangesProjectionForUser(t *testing.T) {
	svc, db := newProfileFixture(t)
	owner := seedProfile(t, db, types.TierFree, false)

	require.NoError(t, svc.UpdateTier(adminCtx(uuid.New()), owner.ID, types.TierGold))

	me, err := svc.GetMe(userCtx(owner.ID))
	require.NoError(t, err)
	require.Equal(t, types.TierGold, me.SubscriptionTier)
}

func TestUpdateTier_RejectsUnknownTier(t *testing.T) {
	svc, db := newProfileFixture(t)
	owner := seedProfile(t, db, types.TierFree, false)

	err := svc.UpdateTier(adminCtx(uuid.New()), owner.ID, types.SubscriptionTier("platinum"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid subscription tier")
}

func TestUpdateTier_RequiresAdmin(t *testing.T) {
	svc, db := newProfileFixture(t)
	owner := seedProfile(t, db, types.TierFree, false)

	err := svc.UpdateTier(userCtx(owner.ID), owner.ID, types.TierGold)
	require.Error(t, err)
	require.Equal(t, "Not authorized", err.Error())
}

func TestGetByMailboxID_IsCaseInsensitiveAndNilOnMiss(t *testing.T) {
	svc, db := newProfileFixture(t)
	owner := seedProfile(t, db, types.TierFree, false)
	ctx := adminCtx(uuid.New())

	found, err := svc.GetByMailboxID(ctx, " "+owner.MailboxID+" ")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, owner.ID, found.ID)

	missing, err := svc.GetByMailboxID(ctx, "NFD-999999")
	require.NoError(t, err)
	require.Nil(t, missing)
}
