package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/spec-kit/duty-attendance/internal/domain"
	"github.com/spec-kit/duty-attendance/internal/gateway"
	apperrors "github.com/spec-kit/duty-attendance/pkg/util"
)

// InvalidDataFormatMessage is used when a 400 carries no readable detail.
const InvalidDataFormatMessage = "Invalid data format"

// DutyRepository covers duty periods and assignments.
type DutyRepository interface {
	ListPeriods(ctx context.Context) ([]domain.DutyPeriod, error)
	CreatePeriod(ctx context.Context, start, end time.Time) error
	Assign(ctx context.Context, periodID domain.ID) (domain.AssignResult, error)
	ListAssignments(ctx context.Context) ([]domain.DutyAssignment, error)
	ListMine(ctx context.Context) ([]domain.DutyAssignment, error)
}

type dutyRepository struct {
	api *gateway.Gateway
}

// NewDutyRepository instantiates the repository.
func NewDutyRepository(api *gateway.Gateway) DutyRepository {
	return &dutyRepository{api: api}
}

type createPeriodRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func (r *dutyRepository) ListPeriods(ctx context.Context) ([]domain.DutyPeriod, error) {
	var periods []domain.DutyPeriod
	err := r.api.List(ctx, gateway.Request{Method: http.MethodGet, Path: "duties/periods/"}, &periods, "", "periods")
	if err != nil {
		return nil, err
	}
	return periods, nil
}

// CreatePeriod submits the period. A 400 comes back as a validation error
// whose message flattens the backend's field errors.
func (r *dutyRepository) CreatePeriod(ctx context.Context, start, end time.Time) error {
	resp, err := r.api.Do(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   "duties/periods/create/",
		Body: createPeriodRequest{
			StartDate: start.Format(domain.DateLayout),
			EndDate:   end.Format(domain.DateLayout),
		},
	})
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusBadRequest {
		message, err := gateway.ValidationDetail(resp.Body)
		if err != nil {
			message = InvalidDataFormatMessage
		}
		return apperrors.NewValidationError(message, nil)
	}
	return resp.Err("")
}

// Assign runs the backend's assignment for a period. A 2xx answer is
// returned as is, including success:false; the caller decides.
func (r *dutyRepository) Assign(ctx context.Context, periodID domain.ID) (domain.AssignResult, error) {
	resp, err := r.api.Do(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   fmt.Sprintf("duties/assign/%s/", url.PathEscape(periodID.String())),
	})
	if err != nil {
		return domain.AssignResult{}, err
	}
	if err := resp.Err(""); err != nil {
		return domain.AssignResult{}, err
	}
	var result domain.AssignResult
	if err := resp.DecodeJSON(&result); err != nil {
		return domain.AssignResult{}, err
	}
	return result, nil
}

func (r *dutyRepository) ListAssignments(ctx context.Context) ([]domain.DutyAssignment, error) {
	var assignments []domain.DutyAssignment
	err := r.api.List(ctx, gateway.Request{Method: http.MethodGet, Path: "duties/assignments/"}, &assignments, "", "assignments")
	if err != nil {
		return nil, err
	}
	return assignments, nil
}

func (r *dutyRepository) ListMine(ctx context.Context) ([]domain.DutyAssignment, error) {
	var assignments []domain.DutyAssignment
	err := r.api.List(ctx, gateway.Request{Method: http.MethodGet, Path: "duties/my/"}, &assignments, "", "assignments", "duties")
	if err != nil {
		return nil, err
	}
	return assignments, nil
}
