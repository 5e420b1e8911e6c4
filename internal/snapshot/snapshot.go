// Package snapshot persists parsed documents in SQLite, keyed by the digest
// of the source bytes they were parsed from.
package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	stberrors "github.com/FocuswithJustin/stbview/core/errors"
	"github.com/FocuswithJustin/stbview/core/sqlite"
	"github.com/FocuswithJustin/stbview/core/stb"
	"github.com/FocuswithJustin/stbview/internal/logging"
)

// migrations are applied in order; PRAGMA user_version records how many
// have run.
var migrations = []string{
	`CREATE TABLE snapshots (
		digest     TEXT PRIMARY KEY,
		version    TEXT NOT NULL,
		nodes      INTEGER NOT NULL,
		members    INTEGER NOT NULL,
		sections   INTEGER NOT NULL,
		document   BLOB NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX idx_snapshots_created ON snapshots(created_at)`,
}

// Info describes a stored snapshot without decoding it.
type Info struct {
	Digest    string    `json:"digest"`
	Version   string    `json:"version"`
	Nodes     int       `json:"nodes"`
	Members   int       `json:"members"`
	Sections  int       `json:"sections"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is a snapshot database. It is safe for concurrent use.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the store at path and brings its schema up to date.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sqlite.Open(path)
	if err != nil {
		return nil, stberrors.NewIO("open", path, err)
	}
	s := &Store{db: db, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, stberrors.NewIO("migrate", path, err)
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&version); err != nil {
		return err
	}
	if version > len(migrations) {
		return fmt.Errorf("schema version %d is newer than this build (%d)", version, len(migrations))
	}
	for i := version; i < len(migrations); i++ {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		// PRAGMA does not take bound parameters.
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, i+1)); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		logging.Debug("snapshot schema migrated", "version", i+1, "driver", sqlite.DriverType())
	}
	return nil
}

// Put stores doc under digest, replacing any earlier snapshot.
func (s *Store) Put(ctx context.Context, digest string, doc *stb.Document) error {
	data, err := json.Marshal(doc)
	if err != nil {
		return stberrors.Wrapf(err, "encode snapshot %s", digest)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (digest, version, document, created_at, nodes, members, sections)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(digest) DO UPDATE SET
		   version = excluded.version, document = excluded.document,
		   created_at = excluded.created_at, nodes = excluded.nodes,
		   members = excluded.members, sections = excluded.sections`,
		digest, doc.Version, data, s.now().UTC().Format(time.RFC3339Nano),
		len(doc.Model.Nodes), doc.Model.Members.Len(), doc.Model.Sections.Len())
	if err != nil {
		return stberrors.Wrapf(err, "store snapshot %s", digest)
	}
	return nil
}

// Get loads the snapshot stored under digest. ok is false when there is none.
func (s *Store) Get(ctx context.Context, digest string) (doc *stb.Document, ok bool, err error) {
	var data []byte
	err = s.db.QueryRowContext(ctx, `SELECT document FROM snapshots WHERE digest = ?`, digest).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, stberrors.Wrapf(err, "load snapshot %s", digest)
	}
	doc = &stb.Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, false, &stberrors.ParseError{Format: "JSON", Path: digest, Message: err.Error(), Err: err}
	}
	return doc, true, nil
}

// List returns every stored snapshot, newest first.
func (s *Store) List(ctx context.Context) ([]Info, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT digest, version, nodes, members, sections, created_at
		 FROM snapshots ORDER BY created_at DESC, digest`)
	if err != nil {
		return nil, stberrors.Wrap(err, "list snapshots")
	}
	defer rows.Close()

	var out []Info
	for rows.Next() {
		var (
			info    Info
			created string
		)
		if err := rows.Scan(&info.Digest, &info.Version, &info.Nodes, &info.Members, &info.Sections, &created); err != nil {
			return nil, stberrors.Wrap(err, "list snapshots")
		}
		if info.CreatedAt, err = time.Parse(time.RFC3339Nano, created); err != nil {
			return nil, stberrors.Wrapf(err, "snapshot %s timestamp", info.Digest)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

// Delete removes the snapshot stored under digest. Deleting a missing
// snapshot returns a NotFoundError.
func (s *Store) Delete(ctx context.Context, digest string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM snapshots WHERE digest = ?`, digest)
	if err != nil {
		return stberrors.Wrapf(err, "delete snapshot %s", digest)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return stberrors.NewNotFound("snapshot", digest)
	}
	return nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}
