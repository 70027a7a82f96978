package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/aussiebroadwan/daftar/internal/licensing/domain"
	"github.com/aussiebroadwan/daftar/internal/licensing/store"
	"github.com/aussiebroadwan/daftar/internal/licensing/store/drivers/sqlite/gen"
	_ "modernc.org/sqlite"
)

type Store struct {
	db  *sql.DB
	q   *gen.Queries
	dsn string
}

// FileDSN builds the DSN for an on-disk database. Writers wait on the busy
// timeout instead of failing, and transactions take the write lock up front
// so a read-then-write never has to upgrade.
func FileDSN(path string) string {
	return "file:" + path +
		"?_pragma=busy_timeout(5000)" +
		"&_pragma=journal_mode(WAL)" +
		"&_pragma=foreign_keys(1)" +
		"&_txlock=immediate"
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Every connection to an in-memory database sees its own empty schema,
	// so pin the pool to one connection.
	if strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		q:   gen.New(db),
		dsn: dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}

func (s *Store) Licenses() store.Licenses       { return &licensesRepo{q: s.q} }
func (s *Store) AlertStates() store.AlertStates { return &alertStatesRepo{q: s.q} }
func (s *Store) Activity() store.Activity       { return &activityRepo{q: s.q} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapAffected turns a zero-row update into ErrNotFound.
func mapAffected(n int64, err error) error {
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func mapNullStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		val := ns.String
		return &val
	}
	return nil
}

// mapDeviceID treats legacy empty-string bindings as unbound.
func mapDeviceID(ns sql.NullString) *string {
	if ns.String == "" {
		return nil
	}
	return mapNullStringPtr(ns)
}

func mapOptionalString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}

func mapNullTimePtr(nt sql.NullTime) *time.Time {
	if nt.Valid {
		val := nt.Time.UTC()
		return &val
	}
	return nil
}

func mapOptionalTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{Valid: false}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func mapLicense(row gen.License) domain.License {
	return domain.License{
		ID:           row.ID,
		Key:          row.LicenseKey,
		Status:       domain.ParseStatus(row.Status),
		Plan:         row.Plan,
		CustomerName: mapNullStringPtr(row.CustomerName),
		ExpiresAt:    row.ExpiresAt.UTC(),
		DeviceID:     mapDeviceID(row.DeviceID),
		ActivatedAt:  mapNullTimePtr(row.ActivatedAt),
		CreatedAt:    row.CreatedAt.UTC(),
		UpdatedAt:    row.UpdatedAt.UTC(),
	}
}

func mapActivity(row gen.ActivityLog) domain.ActivityEntry {
	details := map[string]string{}
	if row.Details != "" {
		// Details are written by this package; a corrupt row still shows up
		// with an empty map rather than failing the listing.
		_ = json.Unmarshal([]byte(row.Details), &details)
	}
	return domain.ActivityEntry{
		ID:          row.ID,
		Kind:        row.Kind,
		LicenseMask: row.LicenseMask,
		LicenseHash: row.LicenseHash,
		Actor:       row.Actor,
		Details:     details,
		CreatedAt:   row.CreatedAt.UTC(),
	}
}
