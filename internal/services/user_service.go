package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"fintechapi/internal/auth"
	"fintechapi/internal/core"
	applog "fintechapi/internal/log"
	"fintechapi/internal/storage"
)

// UserService owns registration, credential checks and user CRUD.
type UserService struct {
	repo   *storage.Repository
	hasher *auth.Hasher
}

func NewUserService(repo *storage.Repository, hasher *auth.Hasher) *UserService {
	return &UserService{repo: repo, hasher: hasher}
}

// RegisterInput carries the registration payload. Exactly one profile must
// be present, matching Kind.
type RegisterInput struct {
	Kind         core.AccountKind
	Email        string
	Password     string
	Individual   *core.IndividualProfile
	Organization *core.OrganizationProfile
}

// UpdateInput is a partial user update. Zero-valued fields are left as is.
type UpdateInput struct {
	ID           int64
	Email        string
	Password     string
	Individual   *core.IndividualProfile
	Organization *core.OrganizationProfile
}

// Register validates the payload, hashes the password and persists the user
// with its profile as one unit.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (core.User, error) {
	user := core.User{
		Kind:         in.Kind,
		Email:        strings.TrimSpace(in.Email),
		CreatedAt:    time.Now(),
		Individual:   in.Individual,
		Organization: in.Organization,
	}
	if err := user.Validate(); err != nil {
		return core.User{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return core.User{}, err
	}
	user.PasswordHash = hash

	taken, err := s.repo.EmailExists(ctx, user.Email)
	if err != nil {
		return core.User{}, fmt.Errorf("check email: %w", err)
	}
	if taken {
		return core.User{}, core.Duplicatef("email já cadastrado: %s", user.Email)
	}

	switch user.Kind {
	case core.AccountIndividual:
		taken, err := s.repo.TaxIDExists(ctx, user.Individual.TaxID)
		if err != nil {
			return core.User{}, fmt.Errorf("check cpf: %w", err)
		}
		if taken {
			return core.User{}, core.Duplicatef("cpf já cadastrado: %s", user.Individual.TaxID)
		}
	case core.AccountOrganization:
		taken, err := s.repo.RegistrationIDExists(ctx, user.Organization.RegistrationID)
		if err != nil {
			return core.User{}, fmt.Errorf("check cnpj: %w", err)
		}
		if taken {
			return core.User{}, core.Duplicatef("cnpj já cadastrado: %s", user.Organization.RegistrationID)
		}
	}

	created, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		return core.User{}, fmt.Errorf("register user: %w", err)
	}
	// The hash is a persistence detail; it never travels back to callers.
	created.PasswordHash = ""

	slog.InfoContext(ctx, "User registered",
		applog.FieldUserID, created.ID,
		applog.FieldAccountKind, string(created.Kind),
		applog.FieldComponent, applog.ComponentUser,
		applog.FieldOperation, applog.OpRegister)
	return created, nil
}

// Authenticate verifies email+password. A missing user and a wrong password
// both surface as ErrInvalidCredentials so the caller cannot probe accounts.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (core.User, error) {
	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return core.User{}, core.ErrInvalidCredentials
		}
		return core.User{}, fmt.Errorf("load user: %w", err)
	}

	if err := s.hasher.Verify(user.PasswordHash, password); err != nil {
		return core.User{}, err
	}
	return user, nil
}

// GetByID loads one user with its profile.
func (s *UserService) GetByID(ctx context.Context, id int64) (core.User, error) {
	return s.repo.GetUser(ctx, id)
}

// GetByEmail loads one user with its profile.
func (s *UserService) GetByEmail(ctx context.Context, email string) (core.User, error) {
	return s.repo.GetUserByEmail(ctx, email)
}

// List returns every user.
func (s *UserService) List(ctx context.Context) ([]core.User, error) {
	return s.repo.ListUsers(ctx)
}

// Update applies a partial update. Email and profile unique keys are
// re-checked when they change; a supplied password is re-hashed.
func (s *UserService) Update(ctx context.Context, in UpdateInput) (core.User, error) {
	if in.ID == 0 {
		return core.User{}, core.Invalidf("ID do usuário é obrigatório para atualização")
	}

	existing, err := s.repo.GetUser(ctx, in.ID)
	if err != nil {
		return core.User{}, err
	}

	if email := strings.TrimSpace(in.Email); email != "" && email != existing.Email {
		taken, err := s.repo.EmailExists(ctx, email)
		if err != nil {
			return core.User{}, fmt.Errorf("check email: %w", err)
		}
		if taken {
			return core.User{}, core.Duplicatef("email já cadastrado: %s", email)
		}
		existing.Email = email
	}

	if strings.TrimSpace(in.Password) != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return core.User{}, err
		}
		existing.PasswordHash = hash
	}

	if in.Individual != nil && existing.Kind == core.AccountIndividual {
		if err := s.applyIndividual(ctx, &existing, in.Individual); err != nil {
			return core.User{}, err
		}
	}
	if in.Organization != nil && existing.Kind == core.AccountOrganization {
		if err := s.applyOrganization(ctx, &existing, in.Organization); err != nil {
			return core.User{}, err
		}
	}

	if err := s.repo.UpdateUser(ctx, existing); err != nil {
		return core.User{}, fmt.Errorf("update user: %w", err)
	}

	slog.InfoContext(ctx, "User updated",
		applog.FieldUserID, existing.ID,
		applog.FieldComponent, applog.ComponentUser,
		applog.FieldOperation, applog.OpUpdate)
	return s.repo.GetUser(ctx, existing.ID)
}

func (s *UserService) applyIndividual(ctx context.Context, existing *core.User, in *core.IndividualProfile) error {
	current := existing.Individual
	if current == nil {
		current = &core.IndividualProfile{UserID: existing.ID}
		existing.Individual = current
	}

	if strings.TrimSpace(in.Name) != "" {
		current.Name = in.Name
	}
	if in.BirthDate != nil {
		current.BirthDate = in.BirthDate
	}
	if taxID := strings.TrimSpace(in.TaxID); taxID != "" && taxID != current.TaxID {
		taken, err := s.repo.TaxIDExists(ctx, taxID)
		if err != nil {
			return fmt.Errorf("check cpf: %w", err)
		}
		if taken {
			return core.Duplicatef("cpf já cadastrado: %s", taxID)
		}
		current.TaxID = taxID
	}
	return nil
}

func (s *UserService) applyOrganization(ctx context.Context, existing *core.User, in *core.OrganizationProfile) error {
	current := existing.Organization
	if current == nil {
		current = &core.OrganizationProfile{UserID: existing.ID}
		existing.Organization = current
	}

	if strings.TrimSpace(in.LegalName) != "" {
		current.LegalName = in.LegalName
	}
	if regID := strings.TrimSpace(in.RegistrationID); regID != "" && regID != current.RegistrationID {
		taken, err := s.repo.RegistrationIDExists(ctx, regID)
		if err != nil {
			return fmt.Errorf("check cnpj: %w", err)
		}
		if taken {
			return core.Duplicatef("cnpj já cadastrado: %s", regID)
		}
		current.RegistrationID = regID
	}
	return nil
}

// Delete removes a user; the profile and ledger records cascade.
func (s *UserService) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteUser(ctx, id)
}
