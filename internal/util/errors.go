package util

import (
	"context"
	"errors"
	"net/http"

	"travel-ledger/internal/ledger"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// FailWith maps broad error categories onto friendly localized messages.
// Raw driver detail and stack traces never reach end users; anything
// unrecognized falls back to a generic message.
func FailWith(c *gin.Context, err error) {
	var insufficient *ledger.InsufficientBalanceError
	switch {
	case errors.Is(err, ledger.ErrModifiedByAnotherUser):
		Error(c, http.StatusConflict, CodeConflict,
			"This record was modified by another user. Please reload and try again.")
	case errors.Is(err, ledger.ErrDeletedByAnotherUser):
		Error(c, http.StatusConflict, CodeConflict,
			"This record was deleted by another user. Please refresh the page.")
	case errors.Is(err, ledger.ErrCashBoxNotFound):
		Error(c, http.StatusNotFound, CodeNotFound, "Cash box not found.")
	case errors.Is(err, ledger.ErrTransactionNotFound):
		Error(c, http.StatusNotFound, CodeNotFound, "Transaction not found.")
	case errors.As(err, &insufficient):
		Error(c, http.StatusUnprocessableEntity, CodeBusiness,
			"Insufficient balance: this operation would make the cash box balance negative.")
	case errors.Is(err, ledger.ErrInvalidAmount):
		Error(c, http.StatusBadRequest, CodeInvalidParam, "Amount must be greater than zero.")
	case errors.Is(err, gorm.ErrDuplicatedKey):
		Error(c, http.StatusConflict, CodeConflict, "A record with the same unique value already exists.")
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		Error(c, http.StatusConflict, CodeConflict, "The record is referenced by other data and cannot be changed.")
	case errors.Is(err, context.DeadlineExceeded):
		Error(c, http.StatusGatewayTimeout, CodeServerErr, "The operation timed out. Please try again.")
	default:
		Error(c, http.StatusInternalServerError, CodeServerErr,
			"An unexpected error occurred. Please contact support.")
	}
}
