package http

import (
	"context"
	"net/http"

	"github.com/shopspring/decimal"

	"fintechapi/internal/core"
	"fintechapi/internal/services"
)

// ledgerHandler serves one ledger (expenses or incomes). The two ledgers
// differ only in the record kind behind the service and in two wire field
// names: the id key and the date key (due date vs entry date).
type ledgerHandler struct {
	ledger    *services.LedgerService
	catalog   *services.CatalogService
	idField   string
	dateField string
}

// recordPayload accepts both date keys; only the one matching the handler's
// ledger is honored. idCategoria and idSubcategoria distinguish an absent
// key from an explicit null.
type recordPayload struct {
	Descricao      *string          `json:"descricao"`
	Valor          *decimal.Decimal `json:"valor"`
	DataVencimento *core.Date       `json:"dataVencimento"`
	DataEntrada    *core.Date       `json:"dataEntrada"`
	Recorrente     *bool            `json:"recorrente"`
	Pendente       *bool            `json:"pendente"`
	IDCategoria    optionalID       `json:"idCategoria"`
	IDSubcategoria optionalID       `json:"idSubcategoria"`
}

func (h *ledgerHandler) payloadDate(p recordPayload) *core.Date {
	if h.dateField == "dataVencimento" {
		return p.DataVencimento
	}
	return p.DataEntrada
}

func (h *ledgerHandler) label() string {
	if h.ledger.Kind() == core.RecordExpense {
		return "Despesa"
	}
	return "Receita"
}

// refLookup caches catalog names for embedding categoria/subcategoria
// blocks in record projections. Reference data is small, so one load per
// request is fine even for list responses.
type refLookup struct {
	categories    map[int64]categoryRef
	subcategories map[int64]subcategoryRef
}

func (h *ledgerHandler) loadRefs(ctx context.Context) (refLookup, error) {
	refs := refLookup{
		categories:    make(map[int64]categoryRef),
		subcategories: make(map[int64]subcategoryRef),
	}

	categories, err := h.catalog.ListCategories(ctx, "")
	if err != nil {
		return refLookup{}, err
	}
	for _, c := range categories {
		refs.categories[c.ID] = categoryRef{
			IDCategoria:   c.ID,
			NomeCategoria: c.Name,
			TipoCategoria: c.Kind,
		}
	}

	subcategories, err := h.catalog.ListSubcategories(ctx)
	if err != nil {
		return refLookup{}, err
	}
	for _, sub := range subcategories {
		refs.subcategories[sub.ID] = subcategoryRef{
			IDSubcategoria: sub.ID,
			NomeSubcat:     sub.Name,
		}
	}
	return refs, nil
}

// view projects a record with the per-kind field names. Dangling category
// references (deleted after the record was written) are omitted rather than
// failing the response.
func (h *ledgerHandler) view(rec core.LedgerRecord, refs refLookup) map[string]any {
	v := map[string]any{
		h.idField:    rec.ID,
		"descricao":  rec.Description,
		"valor":      rec.Amount,
		h.dateField:  rec.Date,
		"recorrente": rec.Recurring,
		"pendente":   rec.Pending,
		"criadoEm":   rec.CreatedAt,
	}
	if rec.CategoryID != nil {
		if ref, ok := refs.categories[*rec.CategoryID]; ok {
			v["categoria"] = ref
		}
	}
	if rec.SubcategoryID != nil {
		if ref, ok := refs.subcategories[*rec.SubcategoryID]; ok {
			v["subcategoria"] = ref
		}
	}
	return v
}

func (h *ledgerHandler) views(records []core.LedgerRecord, refs refLookup) []map[string]any {
	out := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		out = append(out, h.view(rec, refs))
	}
	return out
}

func (h *ledgerHandler) handleList(w http.ResponseWriter, r *http.Request) {
	sess, ok := principalFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrInvalidCredentials)
		return
	}

	start, err := queryDate(r, "dataInicio")
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := queryDate(r, "dataFim")
	if err != nil {
		writeError(w, r, err)
		return
	}
	categoryID, err := queryInt64(r, "idCategoria")
	if err != nil {
		writeError(w, r, err)
		return
	}
	pending, err := queryBool(r, "pendente")
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, size, paged, err := queryPage(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	filter := core.LedgerFilter{Start: start, End: end, CategoryID: categoryID, Pending: pending}
	hasFilter := start != nil || end != nil || categoryID != nil || pending != nil

	refs, err := h.loadRefs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	switch {
	case paged:
		result, err := h.ledger.ListWithFiltersPaged(r.Context(), sess.UserID, filter, page, size)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"items": h.views(result.Items, refs),
			"total": result.Total,
			"page":  result.Page,
			"size":  result.Size,
		})
	case hasFilter:
		records, err := h.ledger.ListWithFilters(r.Context(), sess.UserID, filter)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, h.views(records, refs))
	default:
		records, err := h.ledger.ListByOwner(r.Context(), sess.UserID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, h.views(records, refs))
	}
}

func (h *ledgerHandler) handleListByPeriod(w http.ResponseWriter, r *http.Request) {
	sess, ok := principalFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrInvalidCredentials)
		return
	}

	start, err := queryDate(r, "dataInicio")
	if err != nil {
		writeError(w, r, err)
		return
	}
	end, err := queryDate(r, "dataFim")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var startDate, endDate core.Date
	if start != nil {
		startDate = *start
	}
	if end != nil {
		endDate = *end
	}

	records, err := h.ledger.ListByPeriod(r.Context(), sess.UserID, startDate, endDate)
	if err != nil {
		writeError(w, r, err)
		return
	}

	refs, err := h.loadRefs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.views(records, refs))
}

func (h *ledgerHandler) handleListPending(w http.ResponseWriter, r *http.Request) {
	sess, ok := principalFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrInvalidCredentials)
		return
	}

	records, err := h.ledger.ListPending(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	refs, err := h.loadRefs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.views(records, refs))
}

func (h *ledgerHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	sess, ok := principalFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrInvalidCredentials)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	rec, err := h.ledger.GetByID(r.Context(), id, sess.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	refs, err := h.loadRefs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, h.view(rec, refs))
}

func (h *ledgerHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	sess, ok := principalFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrInvalidCredentials)
		return
	}

	var p recordPayload
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, r, err)
		return
	}

	in := services.RecordInput{
		Recurring:     p.Recorrente,
		Pending:       p.Pendente,
		CategoryID:    p.IDCategoria.Value,
		SubcategoryID: p.IDSubcategoria.Value,
	}
	if p.Descricao != nil {
		in.Description = *p.Descricao
	}
	if p.Valor != nil {
		in.Amount = *p.Valor
	}
	if d := h.payloadDate(p); d != nil {
		in.Date = *d
	}

	rec, err := h.ledger.Create(r.Context(), sess.UserID, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	refs, err := h.loadRefs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	view := h.view(rec, refs)
	view["message"] = h.label() + " criada com sucesso"
	writeJSON(w, http.StatusCreated, view)
}

func (h *ledgerHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	sess, ok := principalFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrInvalidCredentials)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var p recordPayload
	if err := decodeJSON(r, &p); err != nil {
		writeError(w, r, err)
		return
	}

	in := services.RecordUpdate{
		Description: p.Descricao,
		Amount:      p.Valor,
		Date:        h.payloadDate(p),
		Recurring:   p.Recorrente,
		Pending:     p.Pendente,
		Category:    services.RefChange{Set: p.IDCategoria.Set, ID: p.IDCategoria.Value},
		Subcategory: services.RefChange{Set: p.IDSubcategoria.Set, ID: p.IDSubcategoria.Value},
	}

	rec, err := h.ledger.Update(r.Context(), sess.UserID, id, in)
	if err != nil {
		writeError(w, r, err)
		return
	}

	refs, err := h.loadRefs(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	view := h.view(rec, refs)
	view["message"] = h.label() + " atualizada com sucesso"
	writeJSON(w, http.StatusOK, view)
}

func (h *ledgerHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	sess, ok := principalFrom(r.Context())
	if !ok {
		writeError(w, r, core.ErrInvalidCredentials)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.ledger.Delete(r.Context(), sess.UserID, id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
