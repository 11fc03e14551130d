// Package database, SQLite bağlantısını ve migration sistemini yönetir.
//
// Registry in-memory'dir; SQLite onun kalıcı kopyasıdır. Process başlarken
// GuildService.Load tüm kayıtları buradan okuyup registry'yi doldurur.
//
// Driver: modernc.org/sqlite (pure-Go, CGO gerektirmez). Blank import ile
// "sqlite" adıyla database/sql'e kayıt olur.
package database

import (
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

// recoverableErrors, migration tekrar çalıştırıldığında güvenle atlanabilen hata pattern'ları.
var recoverableErrors = []string{
	"duplicate column name",
	"already exists",
}

// bootstrapTable, schema_migrations kaydı olmadan var olan bir kurulumu tanımak için bakılan tablo.
const bootstrapTable = "guilds"

// DB, *sql.DB connection pool'unu saran struct.
type DB struct {
	Conn *sql.DB
}

// New, SQLite dosyasını açar (gerekirse dizinini oluşturur) ve migration'ları uygular.
//
// dbPath ":memory:" ise dosya oluşturulmaz: testler ve `hata resolve` gibi
// tek seferlik komutlar için.
func New(dbPath string, migrationsFS fs.FS) (*DB, error) {
	dsn := dbPath
	if dbPath != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = "file:" + dbPath
	}

	// foreign_keys: SQLite'ta varsayılan KAPALI, ON DELETE CASCADE için gerekli.
	// busy_timeout: WAL modunda eşzamanlı yazmalar "database is locked" yerine bekler.
	conn, err := sql.Open("sqlite", dsn+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// :memory: DB'si bağlantı başınadır: pool birden fazla bağlantı açarsa
	// her biri boş bir DB görür.
	if dbPath == ":memory:" {
		conn.SetMaxOpenConns(1)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &DB{Conn: conn}
	if err := db.runMigrations(migrationsFS); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Printf("[database] opened %s", dbPath)
	return db, nil
}

// Close, bağlantı havuzunu kapatır.
func (db *DB) Close() error {
	return db.Conn.Close()
}

// runMigrations, migrations/ altındaki .sql dosyalarını isim sırasıyla uygular.
// Uygulanan dosyalar schema_migrations tablosuna yazılır ve bir daha çalıştırılmaz.
func (db *DB) runMigrations(migrationsFS fs.FS) error {
	if _, err := db.Conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename   TEXT PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}

	files, err := migrationFiles(migrationsFS)
	if err != nil {
		return err
	}

	applied, err := db.appliedMigrations()
	if err != nil {
		return err
	}

	// schema_migrations boş ama tablolar var: eski bir kurulum, dosyaları uygulanmış say
	if len(applied) == 0 {
		var count int
		if err := db.Conn.QueryRow(
			"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?", bootstrapTable,
		).Scan(&count); err != nil {
			return fmt.Errorf("failed to check existing tables: %w", err)
		}

		if count > 0 {
			for _, file := range files {
				if err := db.recordMigration(file); err != nil {
					return err
				}
			}
			log.Printf("[database] bootstrapped %d existing migrations", len(files))
			return nil
		}
	}

	for _, file := range files {
		if applied[file] {
			continue
		}

		content, err := fs.ReadFile(migrationsFS, file)
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file, err)
		}

		if err := db.execStatements(file, string(content)); err != nil {
			return err
		}
		if err := db.recordMigration(file); err != nil {
			return err
		}

		log.Printf("[database] migration applied: %s", file)
	}

	return nil
}

// migrationFiles, FS kökündeki .sql dosyalarını sıralı döner.
func migrationFiles(migrationsFS fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(migrationsFS, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	sort.Strings(files)
	return files, nil
}

func (db *DB) appliedMigrations() (map[string]bool, error) {
	rows, err := db.Conn.Query("SELECT filename FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to query schema_migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan migration row: %w", err)
		}
		applied[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate migration rows: %w", err)
	}
	return applied, nil
}

func (db *DB) recordMigration(file string) error {
	if _, err := db.Conn.Exec("INSERT INTO schema_migrations (filename) VALUES (?)", file); err != nil {
		return fmt.Errorf("failed to record migration %s: %w", file, err)
	}
	return nil
}

// execStatements, migration'ı statement-by-statement çalıştırır; recoverableErrors atlanır.
func (db *DB) execStatements(filename, content string) error {
	for i, stmt := range splitStatements(content) {
		if _, err := db.Conn.Exec(stmt); err != nil {
			if isRecoverable(err) {
				log.Printf("[database] %s: statement %d skipped (%v)", filename, i+1, err)
				continue
			}
			return fmt.Errorf("failed to execute migration %s (statement %d): %w", filename, i+1, err)
		}
	}
	return nil
}

func isRecoverable(err error) bool {
	msg := err.Error()
	for _, pattern := range recoverableErrors {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// splitStatements, SQL metnini ';' ile böler. Tek tırnaklı string'lerin içindeki
// ';' karakterleri ve "--" satır yorumları bölmeyi etkilemez.
func splitStatements(sql string) []string {
	var statements []string
	var current strings.Builder
	inString := false

	flush := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			statements = append(statements, s)
		}
		current.Reset()
	}

	for i := 0; i < len(sql); i++ {
		ch := sql[i]

		// Satır yorumu: satır sonuna kadar atla
		if !inString && ch == '-' && i+1 < len(sql) && sql[i+1] == '-' {
			for i < len(sql) && sql[i] != '\n' {
				i++
			}
			current.WriteByte('\n')
			continue
		}

		if ch == '\'' {
			if inString && i+1 < len(sql) && sql[i+1] == '\'' {
				current.WriteString("''")
				i++
				continue
			}
			inString = !inString
		}

		if ch == ';' && !inString {
			flush()
			continue
		}

		current.WriteByte(ch)
	}
	flush()

	return statements
}
