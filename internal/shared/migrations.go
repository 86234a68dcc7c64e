package shared

import (
	"database/sql"
	"embed"
	"fmt"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// migrationName matches "0001_create_reports_up.sql" and its "_down" pair.
var migrationName = regexp.MustCompile(`^(\d+)_[a-z0-9_]+_(up|down)\.sql$`)

// Migration represents a database migration with up and down SQL.
type Migration struct {
	Version int
	Up      string
	Down    string
}

// loadMigrations reads all migration files from the embedded filesystem and returns them sorted by version.
func loadMigrations() ([]Migration, error) {
	entries, err := migrationFiles.ReadDir("sql")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}

	byVersion := make(map[int]*Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		m := migrationName.FindStringSubmatch(entry.Name())
		if m == nil {
			continue
		}

		version, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}

		content, err := migrationFiles.ReadFile(path.Join("sql", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		if byVersion[version] == nil {
			byVersion[version] = &Migration{Version: version}
		}
		switch m[2] {
		case "up":
			byVersion[version].Up = string(content)
		case "down":
			byVersion[version].Down = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, migration := range byVersion {
		if migration.Up == "" || migration.Down == "" {
			return nil, fmt.Errorf("incomplete migration for version %d", migration.Version)
		}
		migrations = append(migrations, *migration)
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// RunMigrations executes all pending migrations on the database.
// Creates a schema_migrations table to track applied migrations.
func RunMigrations(db *sql.DB) error {
	migrations, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	if err := createMigrationsTable(db); err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	current, err := CurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to check migration status: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= current {
			continue
		}
		record := func(tx *sql.Tx) error {
			_, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", migration.Version)
			return err
		}
		if err := execMigration(db, migration.Up, record); err != nil {
			return fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// RollbackMigration rolls back the most recent migration.
func RollbackMigration(db *sql.DB) error {
	migrations, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}

	current, err := CurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}
	if current == 0 {
		return fmt.Errorf("no migrations to rollback")
	}

	for _, migration := range migrations {
		if migration.Version != current {
			continue
		}
		forget := func(tx *sql.Tx) error {
			_, err := tx.Exec("DELETE FROM schema_migrations WHERE version = ?", migration.Version)
			return err
		}
		if err := execMigration(db, migration.Down, forget); err != nil {
			return fmt.Errorf("failed to rollback migration %d: %w", migration.Version, err)
		}
		return nil
	}

	return fmt.Errorf("migration version %d not found", current)
}

// CurrentVersion returns the highest applied migration version, or 0 when none are applied.
func CurrentVersion(db *sql.DB) (int, error) {
	if err := createMigrationsTable(db); err != nil {
		return 0, err
	}

	var version int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version); err != nil {
		return 0, err
	}
	return version, nil
}

func createMigrationsTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	return err
}

// execMigration runs each statement of script and then bookkeeping inside one transaction.
func execMigration(db *sql.DB, script string, bookkeeping func(*sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(script) {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute statement: %w\nStatement: %s", err, stmt)
		}
	}

	if err := bookkeeping(tx); err != nil {
		return err
	}

	return tx.Commit()
}

// splitStatements strips "--" comments and splits script on semicolons, dropping empty statements.
func splitStatements(script string) []string {
	var lines []string
	for _, line := range strings.Split(script, "\n") {
		if idx := strings.Index(line, "--"); idx >= 0 {
			line = line[:idx]
		}
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}

	var statements []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			statements = append(statements, stmt)
		}
	}
	return statements
}
