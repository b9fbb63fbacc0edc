package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Daniel-Osman/nfd-express/internal/logger"
	"github.com/Daniel-Osman/nfd-express/internal/normalization"
	"github.com/Daniel-Osman/nfd-express/internal/repos"
	"github.com/Daniel-Osman/nfd-express/internal/requestdata"
	"github.com/Daniel-Osman/nfd-express/internal/types"
)

type ProfileService interface {
	GetMe(ctx context.Context) (*types.Profile, error)
	UpdateContactFields(ctx context.Context, fullName, phoneNumber string) (*types.Profile, error)
	GetAll(ctx context.Context) ([]*types.Profile, error)
	GetByMailboxID(ctx context.Context, mailboxID string) (*types.Profile, error)
	UpdateTier(ctx context.Context, profileID uuid.UUID, tier types.SubscriptionTier) error
}

type profileService struct {
	db          *gorm.DB
	log         *logger.Logger
	profileRepo repos.ProfileRepo
}

func NewProfileService(db *gorm.DB, log *logger.Logger, profileRepo repos.ProfileRepo) ProfileService {
	serviceLog := log.With("service", "ProfileService")
	return &profileService{db: db, log: serviceLog, profileRepo: profileRepo}
}

func (ps *profileService) GetMe(ctx context.Context) (*types.Profile, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}
	found, err := ps.profileRepo.GetByIDs(ctx, nil, []uuid.UUID{rd.UserID})
	if err != nil {
		return nil, fmt.Errorf("error fetching profile: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, fmt.Errorf("profile does not exist")
	}
	return found[0], nil
}

func (ps *profileService) UpdateContactFields(ctx context.Context, fullName, phoneNumber string) (*types.Profile, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, fmt.Errorf("unauthorized")
	}

	fullName = normalization.TrimInputString(fullName)
	phoneNumber = normalization.TrimInputString(phoneNumber)
	if fullName == "" && phoneNumber == "" {
		return nil, fmt.Errorf("no profile updates provided")
	}

	var out *types.Profile
	if err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ps.profileRepo.UpdateContactFields(ctx, tx, rd.UserID, fullName, phoneNumber); err != nil {
			return err
		}
		found, err := ps.profileRepo.GetByIDs(ctx, tx, []uuid.UUID{rd.UserID})
		if err != nil || len(found) == 0 {
			return fmt.Errorf("failed to reload profile")
		}
		out = found[0]
		return nil
	}); err != nil {
		return nil, err
	}
	return out, nil
}

func (ps *profileService) GetAll(ctx context.Context) ([]*types.Profile, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return ps.profileRepo.GetAll(ctx, nil)
}

func (ps *profileService) GetByMailboxID(ctx context.Context, mailboxID string) (*types.Profile, error) {
	if err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	mailboxID = normalization.ParseTrackingNumber(mailboxID)
	found, err := ps.profileRepo.GetByMailboxIDs(ctx, nil, []string{mailboxID})
	if err != nil {
		return nil, fmt.Errorf("error fetching profile by mailbox id: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return nil, nil
	}
	return found[0], nil
}

func (ps *profileService) UpdateTier(ctx context.Context, profileID uuid.UUID, tier types.SubscriptionTier) error {
	if err := requireAdmin(ctx); err != nil {
		return err
	}
	if !tier.Valid() {
		return fmt.Errorf("invalid subscription tier %q", tier)
	}
	found, err := ps.profileRepo.GetByIDs(ctx, nil, []uuid.UUID{profileID})
	if err != nil {
		return fmt.Errorf("error fetching profile: %w", err)
	}
	if len(found) == 0 || found[0] == nil {
		return fmt.Errorf("profile does not exist")
	}
	return ps.profileRepo.UpdateTier(ctx, nil, profileID, tier)
}

// requireAdmin rejects before any read or write happens.
func requireAdmin(ctx context.Context) error {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return fmt.Errorf("Not authenticated")
	}
	if !rd.IsAdmin {
		return fmt.Errorf("Not authorized")
	}
	return nil
}
