package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Profile struct {
	gorm.Model
	ID               uuid.UUID        `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Email            string           `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password         string           `gorm:"not null;column:password" json:"-"`
	FullName         string           `gorm:"not null;column:full_name" json:"full_name"`
	PhoneNumber      string           `gorm:"column:phone_number" json:"phone_number"`
	SubscriptionTier SubscriptionTier `gorm:"not null;default:'free';column:subscription_tier" json:"subscription_tier"`
	MailboxID        string           `gorm:"uniqueIndex;not null;column:uae_mailbox_id" json:"uae_mailbox_id"`
	IsAdmin          bool             `gorm:"not null;default:false;column:is_admin" json:"is_admin"`
	AvatarBucketKey  string           `gorm:"column:avatar_bucket_key" json:"avatar_bucket_key"`
	AvatarURL        string           `gorm:"column:avatar_url" json:"avatar_url"`
	CreatedAt        time.Time        `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt        time.Time        `gorm:"not null;default:now()" json:"updated_at"`
}

func (Profile) TableName() string {
	return "profile"
}
