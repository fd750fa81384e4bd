package repository

import "context"

// Tx defines the interface for transactional operations
type Tx interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// LogMsgRollbackFailed is logged when a rollback fails for a reason other than a closed tx
const LogMsgRollbackFailed = "Failed to rollback transaction"
