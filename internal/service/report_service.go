package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/duty-attendance/internal/domain"
	"github.com/spec-kit/duty-attendance/internal/repository"
	apperrors "github.com/spec-kit/duty-attendance/pkg/util"
)

// Report messages.
const (
	ReportDatesRequired = "Please select both start date and end date"
	ReportFailedMessage = "Failed to generate report"
	InvalidTeacherID    = "Invalid teacher id"
	reportFileMode      = 0o644
	reportDirectoryMode = 0o755
)

// Report is a downloaded teacher report.
type Report struct {
	Filename string
	Content  []byte
}

// ReportService downloads teacher attendance reports.
type ReportService struct {
	reports   repository.ReportRepository
	outputDir string
	logger    *zap.Logger
}

// ReportDependencies bundles collaborators.
type ReportDependencies struct {
	ReportRepo repository.ReportRepository
	OutputDir  string
	Logger     *zap.Logger
}

// NewReportService creates the service.
func NewReportService(deps ReportDependencies) *ReportService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	dir := deps.OutputDir
	if dir == "" {
		dir = "."
	}
	return &ReportService{reports: deps.ReportRepo, outputDir: dir, logger: logger}
}

// ReportFilename is the name a report is saved under. It never contains a
// path separator.
func ReportFilename(teacherID domain.ID, start, end time.Time) string {
	name := fmt.Sprintf("report_%s_%s_%s.pdf", teacherID, start.Format(domain.DateLayout), end.Format(domain.DateLayout))
	return filepath.Base(strings.ReplaceAll(name, `\`, "_"))
}

// validReportID rejects IDs that would name a file outside the output
// directory.
func validReportID(id domain.ID) bool {
	value := id.String()
	return value != "" && !strings.ContainsAny(value, `/\`) && !strings.Contains(value, "..")
}

// Download fetches the report for a teacher over [start, end]. Both dates
// are required.
func (s *ReportService) Download(ctx context.Context, teacherID domain.ID, start, end time.Time) (*Report, error) {
	if !validReportID(teacherID) {
		return nil, apperrors.NewValidationError(InvalidTeacherID, map[string]any{"teacher_id": teacherID.String()})
	}
	if start.IsZero() || end.IsZero() {
		return nil, apperrors.NewValidationError(ReportDatesRequired, nil)
	}
	content, err := s.reports.TeacherPDF(ctx, teacherID, start, end)
	if err != nil {
		return nil, relabel(err, ReportFailedMessage)
	}
	return &Report{Filename: ReportFilename(teacherID, start, end), Content: content}, nil
}

// Save downloads the report and writes it under the output directory,
// returning the written path.
func (s *ReportService) Save(ctx context.Context, teacherID domain.ID, start, end time.Time) (string, error) {
	report, err := s.Download(ctx, teacherID, start, end)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(s.outputDir, reportDirectoryMode); err != nil {
		return "", relabel(apperrors.NewInternalError(err), ReportFailedMessage)
	}
	path := filepath.Join(s.outputDir, report.Filename)
	if err := os.WriteFile(path, report.Content, reportFileMode); err != nil {
		return "", relabel(apperrors.NewInternalError(err), ReportFailedMessage)
	}
	s.logger.Info("report saved", zap.String("teacher_id", teacherID.String()), zap.String("path", path), zap.Int("bytes", len(report.Content)))
	return path, nil
}
