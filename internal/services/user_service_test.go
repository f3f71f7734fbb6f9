package services

import (
	"context"
	"errors"
	"testing"

	"fintechapi/internal/core"
)

func TestUserRegisterValidation(t *testing.T) {
	_, users, _ := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   RegisterInput
		wantErr error
	}{
		{
			name: "valid individual",
			input: RegisterInput{
				Kind: core.AccountIndividual, Email: "pf@example.com", Password: "secret123",
				Individual: &core.IndividualProfile{Name: "Maria", TaxID: "111.111.111-11"},
			},
		},
		{
			name: "valid organization",
			input: RegisterInput{
				Kind: core.AccountOrganization, Email: "pj@example.com", Password: "secret123",
				Organization: &core.OrganizationProfile{RegistrationID: "11.111.111/0001-11", LegalName: "Acme Ltda"},
			},
		},
		{
			name: "invalid kind",
			input: RegisterInput{
				Kind: "XX", Email: "x@example.com", Password: "secret123",
				Individual: &core.IndividualProfile{Name: "Maria", TaxID: "111.111.111-11"},
			},
			wantErr: core.ErrInvalidInput,
		},
		{
			name: "blank email",
			input: RegisterInput{
				Kind: core.AccountIndividual, Email: "  ", Password: "secret123",
				Individual: &core.IndividualProfile{Name: "Maria", TaxID: "111.111.111-11"},
			},
			wantErr: core.ErrInvalidInput,
		},
		{
			name: "individual without profile",
			input: RegisterInput{
				Kind: core.AccountIndividual, Email: "no-profile@example.com", Password: "secret123",
			},
			wantErr: core.ErrInvalidInput,
		},
		{
			name: "individual with organization payload",
			input: RegisterInput{
				Kind: core.AccountIndividual, Email: "mixed@example.com", Password: "secret123",
				Organization: &core.OrganizationProfile{RegistrationID: "11.111.111/0001-11", LegalName: "Acme Ltda"},
			},
			wantErr: core.ErrInvalidInput,
		},
		{
			name: "blank password",
			input: RegisterInput{
				Kind: core.AccountIndividual, Email: "nopass@example.com", Password: "",
				Individual: &core.IndividualProfile{Name: "Maria", TaxID: "333.333.333-33"},
			},
			wantErr: core.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := users.Register(ctx, tt.input)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Register = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Register: %v", err)
			}
			if u.ID == 0 {
				t.Fatal("registered user must have an id")
			}
			if u.PasswordHash != "" {
				t.Fatal("password hash must not surface on registration")
			}
		})
	}
}

func TestUserRegisterDuplicates(t *testing.T) {
	_, users, _ := newTestEnv(t)
	ctx := context.Background()

	registerUser(t, users, "dup@example.com", "111.111.111-11")

	_, err := users.Register(ctx, RegisterInput{
		Kind: core.AccountIndividual, Email: "dup@example.com", Password: "secret123",
		Individual: &core.IndividualProfile{Name: "Other", TaxID: "222.222.222-22"},
	})
	if !errors.Is(err, core.ErrDuplicateData) {
		t.Fatalf("duplicate email should be ErrDuplicateData, got %v", err)
	}

	_, err = users.Register(ctx, RegisterInput{
		Kind: core.AccountIndividual, Email: "other@example.com", Password: "secret123",
		Individual: &core.IndividualProfile{Name: "Other", TaxID: "111.111.111-11"},
	})
	if !errors.Is(err, core.ErrDuplicateData) {
		t.Fatalf("duplicate cpf should be ErrDuplicateData, got %v", err)
	}
}

func TestUserAuthenticate(t *testing.T) {
	_, users, _ := newTestEnv(t)
	ctx := context.Background()

	u := registerUser(t, users, "login@example.com", "111.111.111-11")

	got, err := users.Authenticate(ctx, "login@example.com", "secret123")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("authenticated id = %d, want %d", got.ID, u.ID)
	}

	if _, err := users.Authenticate(ctx, "login@example.com", "wrong"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("wrong password should be ErrInvalidCredentials, got %v", err)
	}
	if _, err := users.Authenticate(ctx, "ghost@example.com", "secret123"); !errors.Is(err, core.ErrInvalidCredentials) {
		t.Fatalf("unknown email should be ErrInvalidCredentials, got %v", err)
	}
}

func TestUserGetByEmail(t *testing.T) {
	_, users, _ := newTestEnv(t)
	ctx := context.Background()

	u := registerUser(t, users, "lookup@example.com", "222.222.222-22")

	got, err := users.GetByEmail(ctx, "lookup@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("id = %d, want %d", got.ID, u.ID)
	}
	if got.Individual == nil || got.Individual.TaxID != "222.222.222-22" {
		t.Fatalf("profile not loaded: %+v", got.Individual)
	}

	if _, err := users.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("unknown email should be ErrNotFound, got %v", err)
	}
}

func TestUserUpdate(t *testing.T) {
	_, users, _ := newTestEnv(t)
	ctx := context.Background()

	u := registerUser(t, users, "upd@example.com", "111.111.111-11")
	other := registerUser(t, users, "taken@example.com", "222.222.222-22")

	updated, err := users.Update(ctx, UpdateInput{
		ID:         u.ID,
		Email:      "new@example.com",
		Individual: &core.IndividualProfile{Name: "Renamed"},
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Email != "new@example.com" {
		t.Fatalf("email = %q, want new@example.com", updated.Email)
	}
	if updated.Individual == nil || updated.Individual.Name != "Renamed" {
		t.Fatalf("profile name not applied: %+v", updated.Individual)
	}
	if updated.Individual.TaxID != "111.111.111-11" {
		t.Fatal("omitted cpf must be preserved")
	}

	if _, err := users.Update(ctx, UpdateInput{ID: u.ID, Email: other.Email}); !errors.Is(err, core.ErrDuplicateData) {
		t.Fatalf("taking another user's email should be ErrDuplicateData, got %v", err)
	}
	if _, err := users.Update(ctx, UpdateInput{ID: 9999, Email: "x@example.com"}); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("unknown user should be ErrNotFound, got %v", err)
	}
}

func TestUserDelete(t *testing.T) {
	_, users, _ := newTestEnv(t)
	ctx := context.Background()

	u := registerUser(t, users, "del@example.com", "111.111.111-11")
	if err := users.Delete(ctx, u.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := users.GetByID(ctx, u.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("deleted user should be ErrNotFound, got %v", err)
	}
	if err := users.Delete(ctx, u.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("second delete should be ErrNotFound, got %v", err)
	}
}
