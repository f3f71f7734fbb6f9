package log

// Common field names for structured logging
const (
	FieldComponent     = "component"
	FieldOperation     = "operation"
	FieldError         = "error"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldUserID        = "user_id"
	FieldAccountKind   = "account_kind"
	FieldRecordID      = "record_id"
	FieldRecordKind    = "record_kind"
	FieldOwnerID       = "owner_id"
	FieldRequesterID   = "requester_id"
	FieldCategoryID    = "category_id"
	FieldSubcategoryID = "subcategory_id"
)

// Components defines standard component names
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentAuth    = "auth"
	ComponentUser    = "user"
	ComponentCatalog = "catalog"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
)

// Operations defines standard operation names
const (
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
	OpRegister = "register"
	OpLogin    = "login"
)
