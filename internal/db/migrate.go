package db

import (
	"context"
	"fmt"
)

// Migrate creates the given tables (idempotently) after running the dialect preamble.
// All statements run in one transaction.
func Migrate(ctx context.Context, s Store, tables []*TableDefinition) error {
	d := s.Dialect()
	err := s.InTx(ctx, func(tx Execer) error {
		for _, stmt := range d.Preamble() {
			if err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("preamble: %w", err)
			}
		}
		for _, t := range tables {
			if err := t.Validate(); err != nil {
				return fmt.Errorf("table %s: %w", t.Name, err)
			}
			for _, stmt := range t.Statements(d) {
				if err := tx.Exec(ctx, stmt); err != nil {
					return fmt.Errorf("table %s: %w", t.Name, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return &Error{Op: OpMigrate, Err: err}
	}
	return nil
}
