package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/daftar/internal/licensing/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers implement this and
// expose sub-repositories to keep concerns tidy and testable. A Tx-scoped
// store refuses to start a nested transaction.
type Store interface {
	Licenses() Licenses
	AlertStates() AlertStates
	Activity() Activity

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Licenses interface {
	// GetLicenseByKey returns ErrNotFound when no record exists.
	GetLicenseByKey(ctx context.Context, key string) (domain.License, error)

	// CreateLicense inserts a new record. ErrAlreadyExists if the key is taken.
	CreateLicense(ctx context.Context, l domain.License) error

	// ListLicenses returns every record, newest first.
	ListLicenses(ctx context.Context) ([]domain.License, error)

	// ListLicensesByStatus returns records whose status is one of statuses.
	ListLicensesByStatus(ctx context.Context, statuses ...domain.Status) ([]domain.License, error)

	// BindDevice is a compare-and-swap: it binds deviceID only when the
	// record is still unbound and in a usable status, setting status LOCKED
	// and activated_at. It reports whether this call won the binding.
	BindDevice(ctx context.Context, key, deviceID string, customerName *string, at time.Time) (bool, error)

	// PromoteToLocked moves ACTIVE or USED records still bound to deviceID
	// to LOCKED. Anything else is left alone.
	PromoteToLocked(ctx context.Context, key, deviceID string) error

	// SetStatus overwrites the status label.
	SetStatus(ctx context.Context, key string, status domain.Status) error

	// ResetBinding clears device and activation time and forces ACTIVE.
	ResetBinding(ctx context.Context, key string) error

	// UpdateExpiry sets the authoritative expiry.
	UpdateExpiry(ctx context.Context, key string, expiresAt time.Time) error
}

// AlertStates persists alert dedup entries keyed by their composite key.
type AlertStates interface {
	// GetAlertLastSent returns ErrNotFound when the key was never marked.
	GetAlertLastSent(ctx context.Context, key string) (time.Time, error)

	// UpsertAlertLastSent sets the last-sent time for key.
	UpsertAlertLastSent(ctx context.Context, key string, at time.Time) error
}

type Activity interface {
	AppendActivity(ctx context.Context, e domain.ActivityEntry) error

	// ListRecentActivity returns up to limit entries, newest first.
	ListRecentActivity(ctx context.Context, limit int) ([]domain.ActivityEntry, error)

	// ListActivityForLicense returns entries for the given license hash, newest first.
	ListActivityForLicense(ctx context.Context, licenseHash string, limit int) ([]domain.ActivityEntry, error)
}
