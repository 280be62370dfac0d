package errors

import (
	"errors"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Postgres SQLSTATE codes we translate
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqNotNullViolation    = "23502"
	pqCheckViolation      = "23514"
)

// ErrorInfo is a client-safe code and message for an internal error
type ErrorInfo struct {
	Code    string
	Message string
}

// ParseError maps storage errors to a client-safe code and message.
// context is a short description of the operation, e.g. "create product".
func ParseError(err error, context string) ErrorInfo {
	if err == nil {
		return ErrorInfo{Code: InternalServerError, Message: "Something went wrong"}
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFoundInfo(context)
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		detail := pqErr.Constraint + " " + pqErr.Column + " " + pqErr.Message
		switch string(pqErr.Code) {
		case pqUniqueViolation:
			return duplicateInfo(detail)
		case pqForeignKeyViolation:
			return foreignKeyInfo(detail, context)
		case pqNotNullViolation:
			return ErrorInfo{Code: ValidationRequired, Message: requiredMessage(detail)}
		case pqCheckViolation:
			return ErrorInfo{Code: ValidationInvalidInput, Message: "Some values are not valid"}
		}
	}

	// Drivers without typed errors (sqlite in tests) still report through the message.
	errStr := err.Error()
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(lower, "duplicate key") || strings.Contains(lower, "unique constraint"):
		return duplicateInfo(errStr)
	case strings.Contains(lower, "foreign key constraint"):
		return foreignKeyInfo(errStr, context)
	case strings.Contains(lower, "not-null constraint") || strings.Contains(lower, "not null constraint"):
		return ErrorInfo{Code: ValidationRequired, Message: requiredMessage(errStr)}
	case strings.Contains(lower, "check constraint"):
		return ErrorInfo{Code: ValidationInvalidInput, Message: "Some values are not valid"}
	case strings.Contains(lower, "connection refused") ||
		strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "timeout"):
		return ErrorInfo{
			Code:    InternalExternalAPI,
			Message: "A backing service is unavailable. Please try again shortly",
		}
	}

	return ErrorInfo{Code: InternalServerError, Message: defaultMessage(context)}
}

func duplicateInfo(detail string) ErrorInfo {
	lower := strings.ToLower(detail)

	switch {
	case strings.Contains(lower, "slug"):
		return ErrorInfo{Code: SlugAlreadyExists, Message: "That slug is already in use"}
	case strings.Contains(lower, "order_number"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "Order number already exists"}
	case strings.Contains(lower, "email"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "That email is already registered"}
	case strings.Contains(lower, "product_tags"):
		return ErrorInfo{Code: ResourceAlreadyExists, Message: "Tag is already attached to the product"}
	}
	return ErrorInfo{Code: ResourceAlreadyExists, Message: "A record with the same values already exists"}
}

func foreignKeyInfo(detail, context string) ErrorInfo {
	lower := strings.ToLower(detail)

	if strings.Contains(lower, "still referenced") {
		return ErrorInfo{Code: ResourceInUse, Message: "It is still in use and cannot be deleted"}
	}
	switch {
	case strings.Contains(lower, "subcategor"):
		return ErrorInfo{Code: SubcategoryNotFound, Message: "Subcategory does not exist"}
	case strings.Contains(lower, "categor"):
		return ErrorInfo{Code: CategoryNotFound, Message: "Category does not exist"}
	case strings.Contains(lower, "tag"):
		return ErrorInfo{Code: TagNotFound, Message: "Tag does not exist"}
	case strings.Contains(lower, "product"):
		return ErrorInfo{Code: ProductNotFound, Message: "Product does not exist"}
	}
	return ErrorInfo{Code: ResourceNotFound, Message: "A referenced record does not exist"}
}

func requiredMessage(detail string) string {
	lower := strings.ToLower(detail)
	for _, field := range []string{"title", "slug", "price", "name", "phone", "address"} {
		if strings.Contains(lower, field) {
			return strings.ToUpper(field[:1]) + field[1:] + " is required"
		}
	}
	return "A required field is missing"
}

func notFoundInfo(context string) ErrorInfo {
	lower := strings.ToLower(context)

	switch {
	case strings.Contains(lower, "subcategor"):
		return ErrorInfo{Code: SubcategoryNotFound, Message: "Subcategory not found"}
	case strings.Contains(lower, "categor"):
		return ErrorInfo{Code: CategoryNotFound, Message: "Category not found"}
	case strings.Contains(lower, "tag"):
		return ErrorInfo{Code: TagNotFound, Message: "Tag not found"}
	case strings.Contains(lower, "product"):
		return ErrorInfo{Code: ProductNotFound, Message: "Product not found"}
	case strings.Contains(lower, "order"):
		return ErrorInfo{Code: OrderNotFound, Message: "Order not found"}
	}
	return ErrorInfo{Code: ResourceNotFound, Message: "The requested record was not found"}
}

func defaultMessage(context string) string {
	lower := strings.ToLower(context)

	switch {
	case strings.Contains(lower, "create"):
		return "Could not save. Please try again"
	case strings.Contains(lower, "update"):
		return "Could not update. Please try again"
	case strings.Contains(lower, "delete"):
		return "Could not delete. Please try again"
	}
	return "Something went wrong. Please try again"
}
