package postgres

import (
	"context"
	"errors"
	"fmt"
)

const ledgerTableQuery = `SELECT to_regclass('wallet.transactions') IS NOT NULL`

// HealthCheck reports the Postgres ledger as healthy only when the database
// answers and the transactions table exists.
type HealthCheck struct {
	pool Pool
}

func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

func (h *HealthCheck) Ping(ctx context.Context) error {
	var exists bool
	if err := h.pool.QueryRow(ctx, ledgerTableQuery).Scan(&exists); err != nil {
		return fmt.Errorf("query ledger table: %w", err)
	}
	if !exists {
		return errors.New("wallet.transactions missing, run migrations")
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "postgresql"
}
