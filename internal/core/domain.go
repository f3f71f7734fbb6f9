package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	AccountIndividual   AccountKind = "PF"
	AccountOrganization AccountKind = "PJ"

	CategoryExpense CategoryKind = "DESPESA"
	CategoryIncome  CategoryKind = "RECEITA"

	RecordExpense RecordKind = "despesa"
	RecordIncome  RecordKind = "receita"
)

// MaxPageSize caps paginated ledger listings.
const MaxPageSize = 100

type (
	// AccountKind distinguishes individual (PF) from organization (PJ) accounts.
	AccountKind string

	// CategoryKind distinguishes expense categories from income categories.
	CategoryKind string

	// RecordKind identifies which ledger a record belongs to. The two ledgers
	// share one record shape; only the meaning of the date field differs
	// (due date for expenses, entry date for incomes).
	RecordKind string

	// Date is a civil date without a time component.
	Date struct {
		time.Time
	}

	// IndividualProfile holds the person data attached to a PF account.
	IndividualProfile struct {
		ID        int64
		UserID    int64
		Name      string
		TaxID     string
		BirthDate *Date
	}

	// OrganizationProfile holds the company data attached to a PJ account.
	OrganizationProfile struct {
		ID             int64
		UserID         int64
		RegistrationID string
		LegalName      string
	}

	// User is an account with exactly one profile matching its kind.
	User struct {
		ID           int64
		Kind         AccountKind
		Email        string
		PasswordHash string
		CreatedAt    time.Time
		Individual   *IndividualProfile
		Organization *OrganizationProfile
	}

	// Category is reference data shared by all users.
	Category struct {
		ID            int64
		Name          string
		Kind          CategoryKind
		Subcategories []Subcategory
	}

	// Subcategory nests exactly one level under a Category.
	Subcategory struct {
		ID         int64
		CategoryID int64
		Name       string
	}

	// LedgerRecord is a user-owned monetary entry. OwnerID never changes
	// after creation.
	LedgerRecord struct {
		ID            int64
		Kind          RecordKind
		OwnerID       int64
		Description   string
		Amount        decimal.Decimal
		Date          Date
		Recurring     bool
		Pending       bool
		CategoryID    *int64
		SubcategoryID *int64
		CreatedAt     time.Time
	}

	// LedgerFilter holds the optional predicates of a filtered listing.
	// The owner predicate is always applied separately and is mandatory.
	LedgerFilter struct {
		Start      *Date
		End        *Date
		CategoryID *int64
		Pending    *bool
	}

	// LedgerPage is the result of a paginated listing.
	LedgerPage struct {
		Items []LedgerRecord
		Total int64
		Page  int
		Size  int
	}
)

// NewDate creates a Date from year, month, day in UTC.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// MarshalJSON renders the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON accepts a "YYYY-MM-DD" string.
func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool {
	return d.Time.After(other.Time)
}

func (k AccountKind) Valid() bool {
	return k == AccountIndividual || k == AccountOrganization
}

func (k CategoryKind) Valid() bool {
	return k == CategoryExpense || k == CategoryIncome
}

func (k RecordKind) Valid() bool {
	return k == RecordExpense || k == RecordIncome
}

// Validate checks the registration invariants: valid kind, non-blank email,
// and a complete profile matching the account kind.
func (u User) Validate() error {
	if !u.Kind.Valid() {
		return Invalidf("tipo de usuário inválido: %q", string(u.Kind))
	}
	if strings.TrimSpace(u.Email) == "" {
		return Invalidf("email é obrigatório")
	}
	switch u.Kind {
	case AccountIndividual:
		if u.Organization != nil {
			return Invalidf("usuário PF não pode ter dados de pessoa jurídica")
		}
		if u.Individual == nil {
			return Invalidf("dados de pessoa física são obrigatórios")
		}
		if strings.TrimSpace(u.Individual.Name) == "" {
			return Invalidf("nome é obrigatório")
		}
		if strings.TrimSpace(u.Individual.TaxID) == "" {
			return Invalidf("cpf é obrigatório")
		}
	case AccountOrganization:
		if u.Individual != nil {
			return Invalidf("usuário PJ não pode ter dados de pessoa física")
		}
		if u.Organization == nil {
			return Invalidf("dados de pessoa jurídica são obrigatórios")
		}
		if strings.TrimSpace(u.Organization.RegistrationID) == "" {
			return Invalidf("cnpj é obrigatório")
		}
		if strings.TrimSpace(u.Organization.LegalName) == "" {
			return Invalidf("razão social é obrigatória")
		}
	}
	return nil
}

// Validate checks the creation invariants of a ledger record.
func (r LedgerRecord) Validate() error {
	if !r.Kind.Valid() {
		return Invalidf("tipo de registro inválido: %q", string(r.Kind))
	}
	if r.OwnerID <= 0 {
		return Invalidf("usuário dono é obrigatório")
	}
	if r.Amount.Sign() <= 0 {
		return Invalidf("valor deve ser maior que zero")
	}
	if r.Date.IsZero() {
		return Invalidf("data é obrigatória")
	}
	if len(r.Description) > 255 {
		return Invalidf("descrição muito longa (máximo 255 caracteres)")
	}
	return nil
}

// Validate rejects an inverted date range. Each predicate is independently
// optional; only the combination of both bounds is checked.
func (f LedgerFilter) Validate() error {
	if f.Start != nil && f.End != nil && f.Start.After(*f.End) {
		return Invalidf("data início não pode ser maior que data fim")
	}
	return nil
}

// ValidatePageRequest enforces the pagination bounds shared by both ledgers.
func ValidatePageRequest(page, size int) error {
	if page < 0 {
		return Invalidf("número da página não pode ser negativo")
	}
	if size <= 0 {
		return Invalidf("tamanho da página deve ser maior que zero")
	}
	if size > MaxPageSize {
		return Invalidf("tamanho da página não pode ser maior que %d", MaxPageSize)
	}
	return nil
}
