package usecase

import "time"

// DefaultTransactionTimeout bounds every mutating database transaction.
const DefaultTransactionTimeout = 30 * time.Second
