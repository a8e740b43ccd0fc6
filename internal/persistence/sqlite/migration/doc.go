// Package migration applies versioned SQL migrations to SQLite databases.
//
// Migration files live in an fs.FS (usually an embed.FS compiled into the
// binary) and follow the naming convention {version}_{description}.sql, e.g.
// "001_initial_schema.sql". Applied versions are tracked in the
// schema_migrations table together with the checksum of the file that was
// applied, so an edited migration is reported instead of silently skipped.
//
// Example usage:
//
//	manager := NewMigrationManager(NewFileScanner(fsys, "migrations"), NewSQLiteExecutor(db), logger)
//	if err := manager.RunMigrations(ctx); err != nil {
//		return fmt.Errorf("migrate: %w", err)
//	}
package migration
