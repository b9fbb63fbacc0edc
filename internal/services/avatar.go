package services

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"gorm.io/gorm"

	"github.com/Daniel-Osman/nfd-express/internal/clients/gcs"
	"github.com/Daniel-Osman/nfd-express/internal/logger"
	"github.com/Daniel-Osman/nfd-express/internal/types"
)

type AvatarService interface {
	CreateAndUploadProfileAvatar(ctx context.Context, tx *gorm.DB, profile *types.Profile) error
	GenerateProfileAvatar(profile *types.Profile) (bytes.Buffer, error)
}

type avatarService struct {
	db            *gorm.DB
	log           *logger.Logger
	bucketService gcs.BucketService
	bgColors      []color.NRGBA
	fontFace      font.Face
}

var avatarPalette = []color.NRGBA{
	{R: 0x2F, G: 0x6F, B: 0xED, A: 0xFF},
	{R: 0xC0, G: 0x4A, B: 0x3A, A: 0xFF},
	{R: 0x2E, G: 0x8B, B: 0x57, A: 0xFF},
	{R: 0x8E, G: 0x44, B: 0xAD, A: 0xFF},
	{R: 0xD4, G: 0x8A, B: 0x1F, A: 0xFF},
	{R: 0x16, G: 0x7D, B: 0x7F, A: 0xFF},
}

func NewAvatarService(db *gorm.DB, log *logger.Logger, bucketService gcs.BucketService) (AvatarService, error) {
	serviceLog := log.With("service", "AvatarService")

	if bucketService == nil {
		return nil, fmt.Errorf("avatar service needs a bucket service")
	}

	fontPath := os.Getenv("AVATAR_FONT")
	if strings.TrimSpace(fontPath) == "" {
		return nil, fmt.Errorf("Env var AVATAR_FONT is empty")
	}
	serviceLog.Info("Loading avatar font", "font", fontPath)

	face, err := loadFontFace(fontPath, 206)
	if err != nil {
		return nil, fmt.Errorf("could not load avatar font: %w", err)
	}

	return &avatarService{
		db:            db,
		log:           serviceLog,
		bucketService: bucketService,
		bgColors:      avatarPalette,
		fontFace:      face,
	}, nil
}

func (as *avatarService) CreateAndUploadProfileAvatar(ctx context.Context, tx *gorm.DB, profile *types.Profile) error {
	buf, err := as.GenerateProfileAvatar(profile)
	if err != nil {
		return err
	}

	oldKey := strings.TrimSpace(profile.AvatarBucketKey)

	// Versioned key so CDN caches never serve a stale avatar.
	newKey := fmt.Sprintf("profile_avatar/%s/%d.png", profile.ID.String(), time.Now().UnixNano())

	if err := as.bucketService.UploadBytes(ctx, newKey, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to upload profile avatar: %w", err)
	}

	profile.AvatarBucketKey = newKey
	profile.AvatarURL = as.bucketService.GetPublicURL(newKey)

	if oldKey != "" && oldKey != newKey {
		if err := as.bucketService.DeleteFile(ctx, oldKey); err != nil {
			as.log.Warn("failed to delete old avatar (ignored)", "oldKey", oldKey, "error", err)
		}
	}

	return nil
}

func (as *avatarService) GenerateProfileAvatar(profile *types.Profile) (bytes.Buffer, error) {
	const size = 512
	var buf bytes.Buffer

	dc := gg.NewContext(size, size)

	dc.DrawCircle(float64(size)/2, float64(size)/2, float64(size)/2)
	dc.Clip()

	base := as.pickColor(profile)
	dc.SetColor(base)
	dc.DrawRectangle(0, 0, float64(size), float64(size))
	dc.Fill()

	dc.SetFontFace(as.fontFace)
	dc.SetColor(color.White)
	dc.DrawStringAnchored(initialsFor(profile.FullName), float64(size)/2, float64(size)/2, 0.5, 0.5)

	if err := dc.EncodePNG(&buf); err != nil {
		return buf, fmt.Errorf("failed to encode avatar png: %w", err)
	}
	return buf, nil
}

// pickColor is stable per profile so regenerating the avatar keeps the
// same background.
func (as *avatarService) pickColor(profile *types.Profile) color.NRGBA {
	var sum int
	for _, b := range profile.ID {
		sum += int(b)
	}
	return as.bgColors[sum%len(as.bgColors)]
}

func initialsFor(fullName string) string {
	parts := strings.Fields(strings.TrimSpace(fullName))
	if len(parts) == 0 {
		return "?"
	}
	initials := firstRune(parts[0])
	if len(parts) > 1 {
		initials += firstRune(parts[len(parts)-1])
	}
	return initials
}

// firstRune takes a whole rune, not a byte. Slicing bytes would mangle
// non-ASCII names.
func firstRune(s string) string {
	r, _ := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return "?"
	}
	return strings.ToUpper(string(r))
}

func loadFontFace(path string, points float64) (font.Face, error) {
	fontBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font file: %w", err)
	}
	f, err := truetype.Parse(fontBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font: %w", err)
	}
	return truetype.NewFace(f, &truetype.Options{Size: points}), nil
}
