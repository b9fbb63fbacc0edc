package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Daniel-Osman/nfd-express/internal/logger"
	"github.com/Daniel-Osman/nfd-express/internal/types"
)

type ProfileRepo interface {
	Create(ctx context.Context, tx *gorm.DB, profiles []*types.Profile) ([]*types.Profile, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, profileIDs []uuid.UUID) ([]*types.Profile, error)
	GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.Profile, error)
	GetByMailboxIDs(ctx context.Context, tx *gorm.DB, mailboxIDs []string) ([]*types.Profile, error)
	GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Profile, error)
	EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error)
	MailboxIDExists(ctx context.Context, tx *gorm.DB, mailboxID string) (bool, error)
	UpdateContactFields(ctx context.Context, tx *gorm.DB, profileID uuid.UUID, fullName, phoneNumber string) error
	UpdateTier(ctx context.Context, tx *gorm.DB, profileID uuid.UUID, tier types.SubscriptionTier) error
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
}

type profileRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	repoLog := baseLog.With("repo", "ProfileRepo")
	return &profileRepo{db: db, log: repoLog}
}

func (pr *profileRepo) Create(ctx context.Context, tx *gorm.DB, profiles []*types.Profile) ([]*types.Profile, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	if len(profiles) == 0 {
		return []*types.Profile{}, nil
	}

	if err := transaction.WithContext(ctx).Create(&profiles).Error; err != nil {
		return nil, err
	}

	return profiles, nil
}

func (pr *profileRepo) GetByIDs(ctx context.Context, tx *gorm.DB, profileIDs []uuid.UUID) ([]*types.Profile, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.Profile

	if len(profileIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("id IN ?", profileIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *profileRepo) GetByEmails(ctx context.Context, tx *gorm.DB, emails []string) ([]*types.Profile, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.Profile
	if len(emails) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("email IN ?", emails).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *profileRepo) GetByMailboxIDs(ctx context.Context, tx *gorm.DB, mailboxIDs []string) ([]*types.Profile, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.Profile
	if len(mailboxIDs) == 0 {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("uae_mailbox_id IN ?", mailboxIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *profileRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*types.Profile, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var results []*types.Profile
	if err := transaction.WithContext(ctx).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (pr *profileRepo) EmailExists(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var count int64

	if err := transaction.WithContext(ctx).
		Model(&types.Profile{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (pr *profileRepo) MailboxIDExists(ctx context.Context, tx *gorm.DB, mailboxID string) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var count int64

	if err := transaction.WithContext(ctx).
		Model(&types.Profile{}).
		Where("uae_mailbox_id = ?", mailboxID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (pr *profileRepo) UpdateContactFields(ctx context.Context, tx *gorm.DB, profileID uuid.UUID, fullName, phoneNumber string) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	updates := map[string]interface{}{}
	if fullName != "" {
		updates["full_name"] = fullName
	}
	if phoneNumber != "" {
		updates["phone_number"] = phoneNumber
	}
	if len(updates) == 0 {
		return nil
	}

	return transaction.WithContext(ctx).
		Model(&types.Profile{}).
		Where("id = ?", profileID).
		Updates(updates).Error
}

func (pr *profileRepo) UpdateTier(ctx context.Context, tx *gorm.DB, profileID uuid.UUID, tier types.SubscriptionTier) error {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	return transaction.WithContext(ctx).
		Model(&types.Profile{}).
		Where("id = ?", profileID).
		Update("subscription_tier", tier).Error
}

func (pr *profileRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = pr.db
	}

	var count int64
	if err := transaction.WithContext(ctx).
		Model(&types.Profile{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
