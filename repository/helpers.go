package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/HuyaneMatsu/hata-sub016/database"
	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/pkg"
)

// nullableID, 0 snowflake'i SQL NULL olarak yazar.
// guild_id NULL → private kanal; FK constraint'leri 0'ı geçersiz referans sayar.
func nullableID(id models.Snowflake) any {
	if id == 0 {
		return nil
	}
	return int64(id)
}

// isForeignKeyViolation, SQLite FK hatasını tanır.
// modernc driver'ı typed error sunmadığı için mesaj üzerinden kontrol edilir.
func isForeignKeyViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "FOREIGN KEY constraint failed")
}

// requireAffected, DELETE/UPDATE'in en az bir satırı etkilediğini kontrol eder.
// Etkilenmediyse pkg.ErrNotFound döner (handler 404'e çevirir).
func requireAffected(result sql.Result, what string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", pkg.ErrNotFound, what)
	}
	return nil
}

// execAll, aynı statement'ı her argüman seti için çalıştırır.
func execAll(ctx context.Context, db database.TxQuerier, query string, argSets [][]any) error {
	for _, args := range argSets {
		if _, err := db.ExecContext(ctx, query, args...); err != nil {
			return err
		}
	}
	return nil
}
