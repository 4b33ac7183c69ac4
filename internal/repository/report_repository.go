package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/spec-kit/duty-attendance/internal/domain"
	"github.com/spec-kit/duty-attendance/internal/gateway"
)

// ReportRepository fetches generated reports as opaque bytes.
type ReportRepository interface {
	TeacherPDF(ctx context.Context, teacherID domain.ID, start, end time.Time) ([]byte, error)
}

type reportRepository struct {
	api *gateway.Gateway
}

// NewReportRepository instantiates the repository.
func NewReportRepository(api *gateway.Gateway) ReportRepository {
	return &reportRepository{api: api}
}

func (r *reportRepository) TeacherPDF(ctx context.Context, teacherID domain.ID, start, end time.Time) ([]byte, error) {
	query := url.Values{}
	query.Set("start_date", start.Format(domain.DateLayout))
	query.Set("end_date", end.Format(domain.DateLayout))

	resp, err := r.api.Do(ctx, gateway.Request{
		Method: http.MethodGet,
		Path:   fmt.Sprintf("report/teacher/%s/pdf/", url.PathEscape(teacherID.String())),
		Query:  query,
		Accept: "application/pdf",
	})
	if err != nil {
		return nil, err
	}
	if err := resp.Err(""); err != nil {
		return nil, err
	}
	return resp.Body, nil
}
