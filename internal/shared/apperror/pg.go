package apperror

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

type constraintRule struct {
	field   string
	code    string
	message string
}

// Constraint names come from the migrations in internal/infrastructure/database/migrations.
var constraintRules = map[string]constraintRule{
	"authors_email_key":                {"email", CodeUnique, "Author with this email already exists."},
	"categories_name_lower_key":        {"name", CodeUnique, "Category with this name already exists."},
	"books_isbn_key":                   {"isbn", CodeUnique, "A book with this ISBN already exists"},
	"books_isbn_length_check":          {"isbn", CodeInvalid, "ISBN must be 13 characters long"},
	"books_price_positive_check":       {"price", CodeInvalid, "Price must be greater than zero"},
	"books_author_id_fkey":             {"author_id", CodeNotFound, "Author with this ID does not exist."},
	"book_categories_category_id_fkey": {"category_id", CodeNotFound, "Category with this ID does not exist."},
	"book_categories_pkey":             {"category_id", CodeUnique, "Category is already assigned to this book."},
}

// FromPG translates constraint violations raised by PostgreSQL into the same
// ValidationError the application pre-checks produce. ok is false when err
// is not a known constraint violation.
func FromPG(err error) (error, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err, false
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation, pgerrcode.ForeignKeyViolation, pgerrcode.CheckViolation:
	default:
		return err, false
	}

	rule, ok := constraintRules[pgErr.ConstraintName]
	if !ok {
		return err, false
	}
	return Invalid(rule.field, rule.code, rule.message), true
}

// TranslatePG returns the translated error when err is a known constraint
// violation, err otherwise.
func TranslatePG(err error) error {
	mapped, _ := FromPG(err)
	return mapped
}
