package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fintechapi/internal/core"
)

func openTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedUser(t *testing.T, repo *Repository, email, taxID string) core.User {
	t.Helper()
	u, err := repo.CreateUser(context.Background(), core.User{
		Kind:         core.AccountIndividual,
		Email:        email,
		PasswordHash: "$2a$04$fakehash",
		CreatedAt:    time.Now(),
		Individual:   &core.IndividualProfile{Name: "Test User", TaxID: taxID},
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedRecord(t *testing.T, repo *Repository, kind core.RecordKind, ownerID int64, date core.Date, pending bool, categoryID *int64) core.LedgerRecord {
	t.Helper()
	rec, err := repo.CreateRecord(context.Background(), core.LedgerRecord{
		Kind:       kind,
		OwnerID:    ownerID,
		Amount:     decimal.RequireFromString("100.00"),
		Date:       date,
		Pending:    pending,
		CategoryID: categoryID,
		CreatedAt:  time.Now(),
	})
	if err != nil {
		t.Fatalf("seed record: %v", err)
	}
	return rec
}

func TestCreateAndGetUser(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	created := seedUser(t, repo, "maria@example.com", "111.222.333-44")
	if created.ID == 0 {
		t.Fatal("expected a generated user id")
	}

	got, err := repo.GetUser(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Email != "maria@example.com" || got.Kind != core.AccountIndividual {
		t.Fatalf("unexpected user: %+v", got)
	}
	if got.Individual == nil || got.Individual.TaxID != "111.222.333-44" {
		t.Fatalf("profile not loaded: %+v", got.Individual)
	}

	byEmail, err := repo.GetUserByEmail(ctx, "maria@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if byEmail.ID != created.ID {
		t.Fatalf("id mismatch: %d != %d", byEmail.ID, created.ID)
	}

	if _, err := repo.GetUser(ctx, 9999); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("missing user should be ErrNotFound, got %v", err)
	}
}

func TestDuplicateEmailConstraint(t *testing.T) {
	repo := openTestRepo(t)

	seedUser(t, repo, "dup@example.com", "111.111.111-11")
	_, err := repo.CreateUser(context.Background(), core.User{
		Kind:         core.AccountIndividual,
		Email:        "dup@example.com",
		PasswordHash: "x",
		CreatedAt:    time.Now(),
		Individual:   &core.IndividualProfile{Name: "Other", TaxID: "222.222.222-22"},
	})
	if !errors.Is(err, core.ErrDuplicateData) {
		t.Fatalf("duplicate email should map to ErrDuplicateData, got %v", err)
	}
}

func TestDeleteUserCascadesProfile(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	u := seedUser(t, repo, "gone@example.com", "333.333.333-33")
	if err := repo.DeleteUser(ctx, u.ID); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	if _, err := repo.GetUser(ctx, u.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("deleted user should be gone, got %v", err)
	}
	exists, err := repo.TaxIDExists(ctx, "333.333.333-33")
	if err != nil {
		t.Fatalf("TaxIDExists: %v", err)
	}
	if exists {
		t.Fatal("profile should cascade on user deletion")
	}

	if err := repo.DeleteUser(ctx, u.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("double delete should be ErrNotFound, got %v", err)
	}
}

func TestCategoryCascadeAndUniqueness(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	cat, err := repo.CreateCategory(ctx, core.Category{Name: "Salário", Kind: core.CategoryIncome})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	// Same name under the other kind is allowed; same pair is not.
	if _, err := repo.CreateCategory(ctx, core.Category{Name: "Salário", Kind: core.CategoryExpense}); err != nil {
		t.Fatalf("same name, different kind: %v", err)
	}
	if _, err := repo.CreateCategory(ctx, core.Category{Name: "Salário", Kind: core.CategoryIncome}); !errors.Is(err, core.ErrDuplicateData) {
		t.Fatalf("duplicate pair should be ErrDuplicateData, got %v", err)
	}

	sub, err := repo.CreateSubcategory(ctx, core.Subcategory{CategoryID: cat.ID, Name: "Mensal"})
	if err != nil {
		t.Fatalf("CreateSubcategory: %v", err)
	}
	if _, err := repo.CreateSubcategory(ctx, core.Subcategory{CategoryID: cat.ID, Name: "Mensal"}); !errors.Is(err, core.ErrDuplicateData) {
		t.Fatalf("duplicate subcategory name should be ErrDuplicateData, got %v", err)
	}

	if err := repo.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}
	if _, err := repo.GetSubcategory(ctx, sub.ID); !errors.Is(err, core.ErrNotFound) {
		t.Fatalf("subcategory should cascade with its category, got %v", err)
	}
}

func TestLedgerFilters(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	owner := seedUser(t, repo, "owner@example.com", "444.444.444-44")
	other := seedUser(t, repo, "other@example.com", "555.555.555-55")

	cat, err := repo.CreateCategory(ctx, core.Category{Name: "Casa", Kind: core.CategoryExpense})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	janFirst := core.NewDate(2025, 1, 1)
	febFirst := core.NewDate(2025, 2, 1)
	marFirst := core.NewDate(2025, 3, 1)

	seedRecord(t, repo, core.RecordExpense, owner.ID, janFirst, false, &cat.ID)
	seedRecord(t, repo, core.RecordExpense, owner.ID, febFirst, true, nil)
	seedRecord(t, repo, core.RecordExpense, owner.ID, marFirst, true, &cat.ID)
	seedRecord(t, repo, core.RecordExpense, other.ID, febFirst, true, nil)
	seedRecord(t, repo, core.RecordIncome, owner.ID, febFirst, false, nil)

	t.Run("owner predicate always applied", func(t *testing.T) {
		records, err := repo.ListRecords(ctx, core.RecordExpense, owner.ID, core.LedgerFilter{})
		if err != nil {
			t.Fatalf("ListRecords: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("got %d records, want 3", len(records))
		}
		for _, rec := range records {
			if rec.OwnerID != owner.ID {
				t.Fatalf("record %d belongs to %d", rec.ID, rec.OwnerID)
			}
		}
	})

	t.Run("kind separates the ledgers", func(t *testing.T) {
		records, err := repo.ListRecords(ctx, core.RecordIncome, owner.ID, core.LedgerFilter{})
		if err != nil {
			t.Fatalf("ListRecords: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("got %d income records, want 1", len(records))
		}
	})

	t.Run("inclusive date range", func(t *testing.T) {
		records, err := repo.ListRecords(ctx, core.RecordExpense, owner.ID,
			core.LedgerFilter{Start: &janFirst, End: &febFirst})
		if err != nil {
			t.Fatalf("ListRecords: %v", err)
		}
		if len(records) != 2 {
			t.Fatalf("got %d records in range, want 2", len(records))
		}
	})

	t.Run("conjunction of predicates", func(t *testing.T) {
		pending := true
		records, err := repo.ListRecords(ctx, core.RecordExpense, owner.ID,
			core.LedgerFilter{CategoryID: &cat.ID, Pending: &pending})
		if err != nil {
			t.Fatalf("ListRecords: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("got %d records, want 1", len(records))
		}
		if !records[0].Date.Equal(marFirst.Time) {
			t.Fatalf("wrong record matched: %v", records[0].Date)
		}
	})

	t.Run("ordered by date descending", func(t *testing.T) {
		records, err := repo.ListRecords(ctx, core.RecordExpense, owner.ID, core.LedgerFilter{})
		if err != nil {
			t.Fatalf("ListRecords: %v", err)
		}
		for i := 1; i < len(records); i++ {
			if records[i].Date.After(records[i-1].Date) {
				t.Fatalf("records not in descending date order: %v before %v",
					records[i-1].Date, records[i].Date)
			}
		}
	})

	t.Run("pagination with total", func(t *testing.T) {
		page, err := repo.ListRecordsPage(ctx, core.RecordExpense, owner.ID, core.LedgerFilter{}, 0, 2)
		if err != nil {
			t.Fatalf("ListRecordsPage: %v", err)
		}
		if page.Total != 3 || len(page.Items) != 2 || page.Page != 0 || page.Size != 2 {
			t.Fatalf("unexpected page: total=%d items=%d page=%d size=%d",
				page.Total, len(page.Items), page.Page, page.Size)
		}

		last, err := repo.ListRecordsPage(ctx, core.RecordExpense, owner.ID, core.LedgerFilter{}, 1, 2)
		if err != nil {
			t.Fatalf("ListRecordsPage: %v", err)
		}
		if len(last.Items) != 1 {
			t.Fatalf("last page should hold 1 item, got %d", len(last.Items))
		}
	})
}

func TestUpdateRecordPreservesOwner(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	owner := seedUser(t, repo, "owner@example.com", "666.666.666-66")
	rec := seedRecord(t, repo, core.RecordExpense, owner.ID, core.NewDate(2025, 1, 10), false, nil)

	rec.Pending = true
	rec.Amount = decimal.RequireFromString("250.50")
	if err := repo.UpdateRecord(ctx, rec); err != nil {
		t.Fatalf("UpdateRecord: %v", err)
	}

	got, err := repo.GetRecord(ctx, core.RecordExpense, rec.ID)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if !got.Pending || !got.Amount.Equal(decimal.RequireFromString("250.50")) {
		t.Fatalf("update not persisted: %+v", got)
	}
	if got.OwnerID != owner.ID {
		t.Fatalf("owner changed on update: %d", got.OwnerID)
	}
}

func TestDeleteCategoryNullsLedgerReference(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	owner := seedUser(t, repo, "owner@example.com", "777.777.777-77")
	cat, err := repo.CreateCategory(ctx, core.Category{Name: "Viagem", Kind: core.CategoryExpense})
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	rec := seedRecord(t, repo, core.RecordExpense, owner.ID, core.NewDate(2025, 5, 1), false, &cat.ID)

	if err := repo.DeleteCategory(ctx, cat.ID); err != nil {
		t.Fatalf("DeleteCategory: %v", err)
	}

	got, err := repo.GetRecord(ctx, core.RecordExpense, rec.ID)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	if got.CategoryID != nil {
		t.Fatalf("category reference should be nulled, got %v", *got.CategoryID)
	}
}
