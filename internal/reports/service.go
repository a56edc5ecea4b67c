package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fdg312/health-hub/internal/blob"
	"github.com/fdg312/health-hub/internal/bundle"
	"github.com/fdg312/health-hub/internal/storage"
	"github.com/fdg312/health-hub/internal/userctx"
	"github.com/google/uuid"
)

// Service turns a persisted comparison into a downloadable PDF/CSV export.
type Service struct {
	storage         storage.ComparisonsStorage
	generator       *Generator
	blobStore       blob.Store
	presignTTL      int
	localMode       bool
	publicBaseURL   string
	preferPublicURL bool
}

func NewService(store storage.ComparisonsStorage, blobStore blob.Store, presignTTL int, publicBaseURL string, preferPublicURL bool) *Service {
	return &Service{
		storage:         store,
		generator:       NewGenerator(),
		blobStore:       blobStore,
		presignTTL:      presignTTL,
		localMode:       blobStore == nil,
		publicBaseURL:   publicBaseURL,
		preferPublicURL: preferPublicURL,
	}
}

// CreateReport renders and stores an export for an already-planned
// comparison, then returns its updated metadata.
func (s *Service) CreateReport(ctx context.Context, req CreateReportRequest) (*Report, error) {
	if req.Format != FormatPDF && req.Format != FormatCSV {
		return nil, ErrInvalidFormat
	}

	rec, err := s.storage.GetComparison(ctx, req.ComparisonID)
	if err != nil {
		return nil, ErrComparisonNotFound
	}
	if err := ensureOwnerAccess(ctx, rec); err != nil {
		return nil, err
	}

	var cmp bundle.Comparison
	if err := json.Unmarshal(rec.ResultPayload, &cmp); err != nil {
		return nil, fmt.Errorf("decode stored comparison: %w", err)
	}

	data, err := s.generator.GenerateReport(ctx, cmp, req.Format)
	if err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}

	export := storage.ExportUpdate{
		Format:    req.Format,
		SizeBytes: int64(len(data)),
		Status:    StatusReady,
	}

	if s.localMode {
		export.Data = data
	} else {
		objectKey := fmt.Sprintf("reports/%s/%s.%s", rec.ID, uuid.New().String(), req.Format)
		if _, err := s.blobStore.PutObject(ctx, objectKey, data, contentTypeFor(req.Format)); err != nil {
			return nil, fmt.Errorf("upload report: %w", err)
		}
		export.ObjectKey = &objectKey
	}

	if err := s.storage.SetComparisonExport(ctx, rec.ID, export); err != nil {
		return nil, fmt.Errorf("save export metadata: %w", err)
	}

	updated, err := s.storage.GetComparison(ctx, rec.ID)
	if err != nil {
		return nil, fmt.Errorf("reload comparison: %w", err)
	}
	return toReport(updated), nil
}

// GetReport returns a report's metadata by comparison ID.
func (s *Service) GetReport(ctx context.Context, id uuid.UUID) (*Report, error) {
	rec, err := s.storage.GetComparison(ctx, id)
	if err != nil {
		return nil, ErrReportNotFound
	}
	if err := ensureOwnerAccess(ctx, rec); err != nil {
		return nil, ErrReportNotFound
	}
	if rec.Format == "" {
		return nil, ErrReportNotFound
	}
	return toReport(rec), nil
}

// ListReports returns the comparisons that carry a generated export,
// newest first.
func (s *Service) ListReports(ctx context.Context, limit, offset int) ([]Report, error) {
	// Pull every comparison so ownership filtering and the "has an export"
	// filter run before limit/offset are applied below.
	recs, err := s.storage.ListComparisons(ctx, maxListScan, 0)
	if err != nil {
		return nil, fmt.Errorf("list comparisons: %w", err)
	}

	var withExport []storage.ComparisonRecord
	for _, rec := range recs {
		if rec.Format == "" {
			continue
		}
		if err := ensureOwnerAccess(ctx, &rec); err != nil {
			continue
		}
		withExport = append(withExport, rec)
	}

	start := offset
	if start > len(withExport) {
		return nil, nil
	}
	end := start + limit
	if end > len(withExport) || limit <= 0 {
		end = len(withExport)
	}

	out := make([]Report, 0, end-start)
	for _, rec := range withExport[start:end] {
		r := rec
		out = append(out, *toReport(&r))
	}
	return out, nil
}

// DeleteReport removes the comparison record and, if present, its S3
// object.
func (s *Service) DeleteReport(ctx context.Context, id uuid.UUID) error {
	rec, err := s.storage.GetComparison(ctx, id)
	if err != nil {
		return ErrReportNotFound
	}
	if err := ensureOwnerAccess(ctx, rec); err != nil {
		return ErrReportNotFound
	}

	if !s.localMode && rec.ObjectKey != nil {
		if err := s.blobStore.DeleteObject(ctx, *rec.ObjectKey); err != nil {
			fmt.Printf("warning: failed to delete S3 object: %v\n", err)
		}
	}

	if err := s.storage.DeleteComparison(ctx, id); err != nil {
		return fmt.Errorf("delete comparison: %w", err)
	}
	return nil
}

// GetReportDownloadURL returns a URL the client can GET the export from.
func (s *Service) GetReportDownloadURL(ctx context.Context, id uuid.UUID, baseURL string) (string, error) {
	rec, err := s.storage.GetComparison(ctx, id)
	if err != nil {
		return "", ErrReportNotFound
	}
	if err := ensureOwnerAccess(ctx, rec); err != nil {
		return "", ErrReportNotFound
	}

	if s.localMode {
		return fmt.Sprintf("%s/v1/reports/%s/download", strings.TrimSuffix(baseURL, "/"), id.String()), nil
	}

	if rec.ObjectKey == nil {
		return "", fmt.Errorf("object key is missing")
	}

	if s.preferPublicURL && s.publicBaseURL != "" {
		return strings.TrimSuffix(s.publicBaseURL, "/") + "/" + *rec.ObjectKey, nil
	}

	presignedURL, err := s.blobStore.PresignGet(ctx, *rec.ObjectKey, s.presignTTL)
	if err != nil {
		return "", fmt.Errorf("generate presigned URL: %w", err)
	}
	return presignedURL, nil
}

// GetReportData returns the raw export bytes, for local-mode downloads.
func (s *Service) GetReportData(ctx context.Context, id uuid.UUID) ([]byte, string, error) {
	rec, err := s.storage.GetComparison(ctx, id)
	if err != nil {
		return nil, "", ErrReportNotFound
	}
	if err := ensureOwnerAccess(ctx, rec); err != nil {
		return nil, "", ErrReportNotFound
	}

	contentType := contentTypeFor(rec.Format)
	if s.localMode {
		return rec.Data, contentType, nil
	}

	if rec.ObjectKey == nil {
		return nil, "", fmt.Errorf("object key is missing")
	}
	data, err := s.blobStore.GetObject(ctx, *rec.ObjectKey)
	if err != nil {
		return nil, "", fmt.Errorf("fetch object: %w", err)
	}
	return data, contentType, nil
}

func toReport(rec *storage.ComparisonRecord) *Report {
	return &Report{
		ID:        rec.ID,
		Format:    rec.Format,
		ObjectKey: rec.ObjectKey,
		SizeBytes: rec.SizeBytes,
		Status:    rec.Status,
		Error:     rec.Error,
		CreatedAt: rec.CreatedAt,
		UpdatedAt: rec.UpdatedAt,
		Data:      rec.Data,
	}
}

func contentTypeFor(format string) string {
	if format == FormatCSV {
		return "text/csv"
	}
	return "application/pdf"
}

// ensureOwnerAccess mirrors the teacher's profile-ownership check: when a
// request carries an authenticated subject, it must match the comparison's
// RequestedBy, or the caller sees 404 rather than 403 so existence is not
// leaked.
func ensureOwnerAccess(ctx context.Context, rec *storage.ComparisonRecord) error {
	userID, ok := userctx.GetUserID(ctx)
	if !ok || strings.TrimSpace(userID) == "" {
		return nil
	}
	if rec.RequestedBy != "" && rec.RequestedBy != userID {
		return ErrReportNotFound
	}
	return nil
}

// maxListScan bounds the single unfiltered ListComparisons call ListReports
// makes before applying ownership/export filters and pagination in memory.
const maxListScan = 10000

var (
	ErrInvalidFormat      = fmt.Errorf("invalid format")
	ErrComparisonNotFound = fmt.Errorf("comparison not found")
	ErrReportNotFound     = fmt.Errorf("report not found")
)
