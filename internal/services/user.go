package services

import (
	"context"
	"strings"

	"github.com/ecocycle/connect/internal/validation"
	"github.com/ecocycle/connect/types"
)

const minPasswordLength = 6

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.Account, error)
	GetByEmail(ctx context.Context, email string) (types.Account, error)
	Create(ctx context.Context, account types.Account) (types.Account, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	CountUsers(ctx context.Context, role types.Role) (int, error)
	RecentUsers(ctx context.Context, limit int) ([]types.Identity, error)
}

// InputError is a request problem reported to the caller verbatim.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

func inputError(message string) error {
	return &InputError{Message: message}
}

// UserService encapsulates account use-cases.
type UserService struct {
	repo     UserRepository
	validate *validation.Validator
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo, validate: validation.New()}
}

func (s *UserService) GetByID(ctx context.Context, id string) (types.Account, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.Account, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) Create(ctx context.Context, account types.Account) (types.Account, error) {
	return s.repo.Create(ctx, account)
}

func (s *UserService) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return s.repo.UpdatePassword(ctx, id, passwordHash)
}

// NormalizeRegistration trims data in place and applies the registration rules
// in the order the first failure is reported.
func (s *UserService) NormalizeRegistration(data *types.RegisterData) error {
	data.Email = strings.TrimSpace(data.Email)
	data.Name = strings.TrimSpace(data.Name)
	data.CompanyName = strings.TrimSpace(data.CompanyName)
	data.GSTNumber = strings.ToUpper(strings.TrimSpace(data.GSTNumber))
	data.Location = strings.TrimSpace(data.Location)

	required := []struct {
		name  string
		value string
	}{
		{"email", data.Email},
		{"password", data.Password},
		{"role", string(data.Role)},
		{"name", data.Name},
	}
	for _, field := range required {
		if field.value == "" {
			return inputError(field.name + " is required")
		}
	}

	if !s.validate.IsEmail(data.Email) {
		return inputError("Invalid email format")
	}
	if len(data.Password) < minPasswordLength {
		return inputError("Password must be at least 6 characters long")
	}

	switch data.Role {
	case types.RoleIndustry:
		if data.CompanyName == "" {
			return inputError("Company name is required for industries")
		}
		if data.GSTNumber == "" {
			return inputError("GST number is required for industries")
		}
		if !validation.IsValidGSTIN(data.GSTNumber) {
			return inputError("Invalid GST number format")
		}
		data.Location = ""
	case types.RoleArtisan:
		if data.Location == "" {
			return inputError("Location is required for artisans")
		}
		data.CompanyName = ""
		data.GSTNumber = ""
	default:
		return inputError("Invalid role")
	}
	return nil
}
