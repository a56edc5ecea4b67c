package reports

import (
	"time"

	"github.com/google/uuid"
)

// Report is the export artifact attached to a persisted comparison.
type Report struct {
	ID        uuid.UUID
	Format    string // "pdf" or "csv"
	ObjectKey *string
	SizeBytes int64
	Status    string // "ready" or "failed"
	Error     *string
	CreatedAt time.Time
	UpdatedAt time.Time
	Data      []byte // only populated in memory mode
}

// CreateReportRequest asks for a PDF/CSV export of an already-planned
// bundle comparison.
type CreateReportRequest struct {
	ComparisonID uuid.UUID `json:"comparison_id"`
	Format       string    `json:"format"`
}

// ReportDTO is the response representation of a report.
type ReportDTO struct {
	ID          uuid.UUID `json:"id"`
	Format      string    `json:"format"`
	DownloadURL string    `json:"download_url"`
	SizeBytes   int64     `json:"size_bytes"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// ReportsResponse is the list response.
type ReportsResponse struct {
	Reports []ReportDTO `json:"reports"`
}

const (
	FormatPDF = "pdf"
	FormatCSV = "csv"

	StatusReady  = "ready"
	StatusFailed = "failed"
)
