// Package files persists classified scans.
package files

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/harrylevesque/qrscan/internal/models"
)

var (
	// ErrNotFound is returned when no scan has the requested ID.
	ErrNotFound = errors.New("scan not found")
	// ErrDuplicate is returned when the same payload is saved again within
	// the store's dedup window.
	ErrDuplicate = errors.New("duplicate scan")
)

// ListOptions filters List results. Zero values mean no filter.
type ListOptions struct {
	Kind  models.Kind
	Limit int
}

// ScanStore is the scan history. Save assigns ID and CreatedAt.
type ScanStore interface {
	Save(ctx context.Context, scan *models.Scan) error
	Get(ctx context.Context, id string) (*models.Scan, error)
	List(ctx context.Context, opts ListOptions) ([]models.Scan, error)
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
	Close() error
}

func newScanID() string {
	return "scan--" + uuid.NewString()
}

// isDuplicate reports whether raw repeats the latest scan inside window.
func isDuplicate(latest *models.Scan, raw string, now time.Time, window time.Duration) bool {
	if latest == nil || window <= 0 {
		return false
	}
	return latest.Raw == raw && now.Sub(latest.CreatedAt) < window
}
