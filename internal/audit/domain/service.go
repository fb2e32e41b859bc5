package domain

import (
	"context"
	"time"
)

type Service interface {
	// Record appends an entry. Failures are logged by the
	// implementation, never surfaced to the caller's request path.
	Record(ctx context.Context, entry Entry)
	List(ctx context.Context, filter ListFilter) ([]AuditLog, error)
	Export(ctx context.Context, req ExportRequest) (*ExportResult, error)
}

// Entry is what callers provide; id and timestamp are assigned on
// insert.
type Entry struct {
	ActorID   string
	Action    string
	Entity    string
	EntityID  string
	Metadata  map[string]any
	IPAddress string
	UserAgent string
}

type ListFilter struct {
	ActorID string
	Action  string
	Entity  string
	Since   time.Time
	Until   time.Time
}

type ExportFormat string

const (
	ExportFormatCSV  ExportFormat = "csv"
	ExportFormatJSON ExportFormat = "json"
)

type ExportRequest struct {
	StartDate time.Time
	EndDate   time.Time
	Format    ExportFormat
	Actions   []string
}

// ExportResult carries the rendered export plus a checksum for
// integrity verification.
type ExportResult struct {
	Data     []byte
	Checksum string
	Format   ExportFormat
	Count    int
}
