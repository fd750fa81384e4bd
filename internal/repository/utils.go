package repository

import (
	"context"
	"errors"

	"github.com/osse101/RespawnQueue_Go/internal/domain"
	"github.com/osse101/RespawnQueue_Go/internal/logger"
)

// SafeRollback rolls tx back, staying quiet when it was already committed
// or rolled back. Deferring it after every Begin is safe.
func SafeRollback(ctx context.Context, tx Tx) {
	err := tx.Rollback(ctx)
	if err == nil || isTxClosed(err) {
		return
	}
	logger.FromContext(ctx).Error(LogMsgRollbackFailed, "error", err)
}

// isTxClosed matches the driver's closed-transaction error anywhere in the chain
func isTxClosed(err error) bool {
	for ; err != nil; err = errors.Unwrap(err) {
		if err.Error() == domain.ErrMsgTxClosed {
			return true
		}
	}
	return false
}
