package utils

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/Daniel-Osman/nfd-express/internal/logger"
	"github.com/Daniel-Osman/nfd-express/internal/normalization"
	"github.com/Daniel-Osman/nfd-express/internal/repos"
	"github.com/Daniel-Osman/nfd-express/internal/types"
)

func InputValidation(ctx context.Context, ffor string, profileRepo repos.ProfileRepo, log *logger.Logger, profile *types.Profile, email, password string) error {
	validatedFor := normalization.ParseInputString(ffor)
	if validatedFor == "" {
		return fmt.Errorf("For string is nil, needs to be login or registration")
	}
	switch validatedFor {
	case "registration":
		if err := handleRegisterInputValidation(ctx, profileRepo, log, profile); err != nil {
			return err
		}
	case "login":
		if err := handleLoginInputValidation(ctx, log, email, password); err != nil {
			return err
		}
	}
	return nil
}

func handleRegisterInputValidation(ctx context.Context, profileRepo repos.ProfileRepo, log *logger.Logger, profile *types.Profile) error {
	if profile == nil {
		return fmt.Errorf("No profile given, cannot proceed with registration")
	}
	if profile.Email == "" {
		return fmt.Errorf("An email is required to register")
	}
	emailExists, err := profileRepo.EmailExists(ctx, nil, profile.Email)
	if err != nil {
		return fmt.Errorf("Failed to check profile email")
	}
	if emailExists {
		return fmt.Errorf("Email is already in use")
	}
	if profile.Password == "" {
		return fmt.Errorf("A password is required to register")
	}
	if profile.FullName == "" {
		return fmt.Errorf("A full name is required to register")
	}
	return nil
}

func handleLoginInputValidation(ctx context.Context, log *logger.Logger, email, password string) error {
	if email == "" {
		return fmt.Errorf("Email is required to login")
	}
	if password == "" {
		return fmt.Errorf("Password is required to login")
	}
	return nil
}

func HashPassword(ctx context.Context, log *logger.Logger, profile *types.Profile) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(profile.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("Failed to hash password")
	}
	profile.Password = string(hashedPassword)
	return nil
}

func NormalizeProfileFields(ctx context.Context, profile *types.Profile) {
	profile.Email = normalization.ParseInputString(profile.Email)
	profile.FullName = normalization.TrimInputString(profile.FullName)
	profile.PhoneNumber = normalization.TrimInputString(profile.PhoneNumber)
}
