package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"fintechapi/internal/core"
	applog "fintechapi/internal/log"
	"fintechapi/internal/storage"
)

// LedgerService is the record-ownership and filtered-query access layer
// shared by the expense and income resources. One instance serves one
// record kind; both ledgers get identical semantics from the same code.
type LedgerService struct {
	repo *storage.Repository
	kind core.RecordKind
}

func NewLedgerService(repo *storage.Repository, kind core.RecordKind) *LedgerService {
	return &LedgerService{repo: repo, kind: kind}
}

// Kind returns the record kind this instance serves.
func (s *LedgerService) Kind() core.RecordKind {
	return s.kind
}

// RecordInput carries a creation payload. Nil flags default to false.
type RecordInput struct {
	Description   string
	Amount        decimal.Decimal
	Date          core.Date
	Recurring     *bool
	Pending       *bool
	CategoryID    *int64
	SubcategoryID *int64
}

// RefChange distinguishes "absent" from "explicit null" in a partial
// update: Set=false leaves the link untouched, Set=true with a nil ID
// clears it, Set=true with an ID re-points it.
type RefChange struct {
	Set bool
	ID  *int64
}

// RecordUpdate is a partial record update; nil fields are left untouched.
type RecordUpdate struct {
	Description *string
	Amount      *decimal.Decimal
	Date        *core.Date
	Recurring   *bool
	Pending     *bool
	Category    RefChange
	Subcategory RefChange
}

// Create validates the payload and referenced entities, then persists the
// record owned by ownerID.
func (s *LedgerService) Create(ctx context.Context, ownerID int64, in RecordInput) (core.LedgerRecord, error) {
	rec := core.LedgerRecord{
		Kind:          s.kind,
		OwnerID:       ownerID,
		Description:   in.Description,
		Amount:        in.Amount,
		Date:          in.Date,
		CategoryID:    in.CategoryID,
		SubcategoryID: in.SubcategoryID,
		CreatedAt:     time.Now(),
	}
	if in.Recurring != nil {
		rec.Recurring = *in.Recurring
	}
	if in.Pending != nil {
		rec.Pending = *in.Pending
	}

	if err := rec.Validate(); err != nil {
		return core.LedgerRecord{}, err
	}

	exists, err := s.repo.UserExists(ctx, ownerID)
	if err != nil {
		return core.LedgerRecord{}, fmt.Errorf("check owner: %w", err)
	}
	if !exists {
		return core.LedgerRecord{}, core.NotFoundf("usuário não encontrado com ID: %d", ownerID)
	}

	if err := s.resolveReferences(ctx, rec.CategoryID, rec.SubcategoryID); err != nil {
		return core.LedgerRecord{}, err
	}

	created, err := s.repo.CreateRecord(ctx, rec)
	if err != nil {
		return core.LedgerRecord{}, fmt.Errorf("create record: %w", err)
	}
	return created, nil
}

// GetByID loads a record and enforces ownership. The check runs here, on
// every read and write path, not only at the HTTP boundary.
func (s *LedgerService) GetByID(ctx context.Context, id, requesterID int64) (core.LedgerRecord, error) {
	rec, err := s.repo.GetRecord(ctx, s.kind, id)
	if err != nil {
		return core.LedgerRecord{}, err
	}
	if rec.OwnerID != requesterID {
		slog.WarnContext(ctx, "Ownership check failed",
			applog.FieldRecordID, id,
			applog.FieldRecordKind, string(s.kind),
			applog.FieldOwnerID, rec.OwnerID,
			applog.FieldRequesterID, requesterID,
			applog.FieldComponent, applog.ComponentLedger)
		return core.LedgerRecord{}, core.Forbiddenf("você não tem permissão para acessar este registro")
	}
	return rec, nil
}

// ListByOwner returns all of the owner's records in persistence order.
func (s *LedgerService) ListByOwner(ctx context.Context, ownerID int64) ([]core.LedgerRecord, error) {
	return s.repo.ListRecordsByOwner(ctx, s.kind, ownerID)
}

// ListByPeriod returns records whose date falls within [start, end]. Both
// bounds are required here, unlike the optional filter listing.
func (s *LedgerService) ListByPeriod(ctx context.Context, ownerID int64, start, end core.Date) ([]core.LedgerRecord, error) {
	if start.IsZero() || end.IsZero() {
		return nil, core.Invalidf("data início e data fim são obrigatórias")
	}
	if start.After(end) {
		return nil, core.Invalidf("data início não pode ser maior que data fim")
	}
	return s.repo.ListRecords(ctx, s.kind, ownerID, core.LedgerFilter{Start: &start, End: &end})
}

// ListPending returns the owner's records flagged pending.
func (s *LedgerService) ListPending(ctx context.Context, ownerID int64) ([]core.LedgerRecord, error) {
	pending := true
	return s.repo.ListRecords(ctx, s.kind, ownerID, core.LedgerFilter{Pending: &pending})
}

// ListWithFilters returns the conjunction of the supplied predicates,
// ordered by the date field descending. The owner predicate is mandatory.
func (s *LedgerService) ListWithFilters(ctx context.Context, ownerID int64, f core.LedgerFilter) ([]core.LedgerRecord, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return s.repo.ListRecords(ctx, s.kind, ownerID, f)
}

// ListWithFiltersPaged is ListWithFilters with pagination bounds enforced.
func (s *LedgerService) ListWithFiltersPaged(ctx context.Context, ownerID int64, f core.LedgerFilter, page, size int) (core.LedgerPage, error) {
	if err := f.Validate(); err != nil {
		return core.LedgerPage{}, err
	}
	if err := core.ValidatePageRequest(page, size); err != nil {
		return core.LedgerPage{}, err
	}
	return s.repo.ListRecordsPage(ctx, s.kind, ownerID, f, page, size)
}

// Update re-validates ownership, applies the partial payload and persists.
// For the category/subcategory links an absent field leaves the link
// unchanged while an explicit null clears it.
func (s *LedgerService) Update(ctx context.Context, ownerID, id int64, in RecordUpdate) (core.LedgerRecord, error) {
	if id == 0 {
		return core.LedgerRecord{}, core.Invalidf("ID do registro é obrigatório para atualização")
	}

	existing, err := s.GetByID(ctx, id, ownerID)
	if err != nil {
		return core.LedgerRecord{}, err
	}

	if in.Amount != nil {
		if in.Amount.Sign() <= 0 {
			return core.LedgerRecord{}, core.Invalidf("valor deve ser maior que zero")
		}
		existing.Amount = *in.Amount
	}
	if in.Description != nil {
		existing.Description = *in.Description
	}
	if in.Date != nil {
		if in.Date.IsZero() {
			return core.LedgerRecord{}, core.Invalidf("data é obrigatória")
		}
		existing.Date = *in.Date
	}
	if in.Recurring != nil {
		existing.Recurring = *in.Recurring
	}
	if in.Pending != nil {
		existing.Pending = *in.Pending
	}
	if in.Category.Set {
		existing.CategoryID = in.Category.ID
	}
	if in.Subcategory.Set {
		existing.SubcategoryID = in.Subcategory.ID
	}

	if err := existing.Validate(); err != nil {
		return core.LedgerRecord{}, err
	}
	if err := s.resolveReferences(ctx, existing.CategoryID, existing.SubcategoryID); err != nil {
		return core.LedgerRecord{}, err
	}

	if err := s.repo.UpdateRecord(ctx, existing); err != nil {
		return core.LedgerRecord{}, fmt.Errorf("update record: %w", err)
	}

	slog.InfoContext(ctx, "Ledger record updated",
		applog.FieldRecordID, existing.ID,
		applog.FieldRecordKind, string(s.kind),
		applog.FieldUserID, ownerID,
		applog.FieldComponent, applog.ComponentLedger,
		applog.FieldOperation, applog.OpUpdate)
	return existing, nil
}

// Delete re-validates ownership, then removes the record.
func (s *LedgerService) Delete(ctx context.Context, ownerID, id int64) error {
	if _, err := s.GetByID(ctx, id, ownerID); err != nil {
		return err
	}
	return s.repo.DeleteRecord(ctx, s.kind, id)
}

// resolveReferences checks that referenced catalog entries exist and that a
// subcategory, when present alongside a category, belongs to it.
func (s *LedgerService) resolveReferences(ctx context.Context, categoryID, subcategoryID *int64) error {
	if categoryID != nil {
		if _, err := s.repo.GetCategory(ctx, *categoryID); err != nil {
			return err
		}
	}
	if subcategoryID != nil {
		sub, err := s.repo.GetSubcategory(ctx, *subcategoryID)
		if err != nil {
			return err
		}
		if categoryID != nil && sub.CategoryID != *categoryID {
			return core.Invalidf("subcategoria %d não pertence à categoria %d", *subcategoryID, *categoryID)
		}
	}
	return nil
}
