package dao

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/lk2023060901/xdooria-arena/pkg/database/postgres"
)

//go:embed schema.sql
var schema string

// Migrate 建表，可重复执行
func Migrate(ctx context.Context, q postgres.Querier) error {
	if _, err := q.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}
	return nil
}
