package sqlite

import (
	"context"
	"database/sql"

	"github.com/openscriptures/sfmkit/core/errors"
	"github.com/openscriptures/sfmkit/core/esfm"
	"github.com/openscriptures/sfmkit/core/sfm"
	"github.com/openscriptures/sfmkit/internal/logging"
)

const schema = `
CREATE TABLE IF NOT EXISTS records (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	source     TEXT NOT NULL,
	key_marker TEXT NOT NULL,
	key_value  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS fields (
	record_id INTEGER NOT NULL REFERENCES records(id),
	position  INTEGER NOT NULL,
	marker    TEXT NOT NULL,
	value     TEXT NOT NULL,
	PRIMARY KEY (record_id, position)
);
CREATE TABLE IF NOT EXISTS occurrences (
	kind    TEXT NOT NULL,
	tag     TEXT NOT NULL,
	content TEXT NOT NULL,
	book    TEXT NOT NULL,
	chapter INTEGER NOT NULL,
	verse   INTEGER NOT NULL,
	word    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_records_key ON records(key_marker, key_value);
CREATE INDEX IF NOT EXISTS idx_occurrences_entry ON occurrences(kind, tag, content);
`

// InitSchema creates the export tables if they do not exist.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "creating export schema")
	}
	return nil
}

// ExportRecords writes a grouped record set under the given source label.
// The whole set goes in one transaction; on any failure nothing is written.
func ExportRecords(ctx context.Context, db *sql.DB, source string, records sfm.RecordSet) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning export transaction")
	}
	defer tx.Rollback()

	insRecord, err := tx.PrepareContext(ctx,
		`INSERT INTO records (source, key_marker, key_value) VALUES (?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "preparing record insert")
	}
	defer insRecord.Close()

	insField, err := tx.PrepareContext(ctx,
		`INSERT INTO fields (record_id, position, marker, value) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "preparing field insert")
	}
	defer insField.Close()

	var fieldCount int
	for _, rec := range records {
		key := rec.Key()
		res, err := insRecord.ExecContext(ctx, source, key.Marker, key.Value)
		if err != nil {
			return errors.Wrapf(err, "inserting record %s %s", key.Marker, key.Value)
		}
		recordID, err := res.LastInsertId()
		if err != nil {
			return errors.Wrap(err, "reading record id")
		}
		for pos, f := range rec {
			if _, err := insField.ExecContext(ctx, recordID, pos, f.Marker, f.Value); err != nil {
				return errors.Wrapf(err, "inserting field %s of record %s", f.Marker, key.Value)
			}
			fieldCount++
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing export transaction")
	}
	logging.Info("exported records", "source", source, "records", len(records), "fields", fieldCount)
	return nil
}

// ExportDict writes every occurrence recorded in a resolved dictionary.
func ExportDict(ctx context.Context, db *sql.DB, dict *esfm.Dict) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning export transaction")
	}
	defer tx.Rollback()

	ins, err := tx.PrepareContext(ctx,
		`INSERT INTO occurrences (kind, tag, content, book, chapter, verse, word) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "preparing occurrence insert")
	}
	defer ins.Close()

	var count int
	var insErr error
	insert := func(kind, tag, content string, occs []esfm.Occurrence) {
		if insErr != nil {
			return
		}
		for _, occ := range occs {
			if _, err := ins.ExecContext(ctx, kind, tag, content,
				occ.Book, occ.Chapter, occ.Verse, occ.Word); err != nil {
				insErr = errors.Wrapf(err, "inserting %s occurrence %s %s", kind, tag, content)
				return
			}
			count++
		}
	}
	dict.EachSemantic(func(tag, content string, occs []esfm.Occurrence) {
		insert("sem", tag, content, occs)
	})
	dict.EachStrongs(func(language, number string, occs []esfm.Occurrence) {
		insert("str", language, number, occs)
	})
	if insErr != nil {
		return insErr
	}

	if err := tx.Commit(); err != nil {
		return errors.Wrap(err, "committing export transaction")
	}
	logging.Info("exported occurrences", "count", count)
	return nil
}
