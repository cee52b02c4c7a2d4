package metrics

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/mutker/powerhald/internal/errors"
	"codeberg.org/mutker/powerhald/internal/logger"
)

// journalTables lists every table the schema owns, dependents first.
var journalTables = []string{"events", "schema_versions"}

// migrateSchema brings db to SchemaVersion. The journal holds no state
// the daemon needs to restart, so a version mismatch is resolved by
// snapshotting the old file into backupDir and starting over.
func migrateSchema(db *sql.DB, backupDir string, log logger.Logger) error {
	found, err := GetSchemaVersion(db)
	if err != nil {
		return errors.New().Wrap(ErrSchemaRead, err)
	}

	switch found {
	case SchemaVersion:
		log.Debug().Int("version", found).Msg("Journal schema is current")
		return nil
	case 0:
		log.Debug().Msg("Journal is empty, creating schema")
	default:
		log.Warn().
			Int("found", found).
			Int("want", SchemaVersion).
			Msg("Journal schema version mismatch, rebuilding")

		if _, err := snapshotJournal(db, found, backupDir, log); err != nil {
			return err
		}
		if err := clearJournal(db); err != nil {
			return err
		}
	}

	return InitSchema(db, log)
}

// snapshotJournal copies the live database into backupDir. VACUUM INTO
// cannot run inside a transaction.
func snapshotJournal(db *sql.DB, version int, backupDir string, log logger.Logger) (string, error) {
	if err := os.MkdirAll(backupDir, defaultDirPerm); err != nil {
		return "", errors.New().WithData(ErrSchemaRebuild, fmt.Sprintf("backup dir %s: %v", backupDir, err))
	}

	name := fmt.Sprintf("journal_v%d_%s.db", version, time.Now().UTC().Format("20060102T150405Z"))
	dest := filepath.Join(backupDir, name)

	if _, err := db.Exec("VACUUM INTO ?", dest); err != nil {
		return "", errors.New().WithData(ErrSchemaRebuild, fmt.Sprintf("snapshot %s: %v", dest, err))
	}

	log.Info().Str("path", dest).Int("version", version).Msg("Saved old journal")

	return dest, nil
}

func clearJournal(db *sql.DB) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return errors.New().Wrap(ErrSchemaRebuild, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, table := range journalTables {
		if _, err = tx.Exec("DROP TABLE IF EXISTS " + table); err != nil {
			return errors.New().WithData(ErrSchemaRebuild, fmt.Sprintf("drop %s: %v", table, err))
		}
	}

	if err = tx.Commit(); err != nil {
		return errors.New().Wrap(ErrSchemaRebuild, err)
	}

	return nil
}
