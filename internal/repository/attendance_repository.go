package repository

import (
	"context"
	"net/http"

	"github.com/spec-kit/duty-attendance/internal/domain"
	"github.com/spec-kit/duty-attendance/internal/gateway"
)

// AttendanceRepository covers the signed-in teacher's own attendance.
type AttendanceRepository interface {
	CheckIn(ctx context.Context) (string, error)
	CheckOut(ctx context.Context) (string, error)
	ListMine(ctx context.Context) ([]domain.AttendanceRecord, error)
}

type attendanceRepository struct {
	api *gateway.Gateway
}

// NewAttendanceRepository instantiates the repository.
func NewAttendanceRepository(api *gateway.Gateway) AttendanceRepository {
	return &attendanceRepository{api: api}
}

type messageResponse struct {
	Message string `json:"message"`
}

// CheckIn returns the backend's confirmation message.
func (r *attendanceRepository) CheckIn(ctx context.Context) (string, error) {
	var out messageResponse
	err := r.api.JSON(ctx, gateway.Request{Method: http.MethodPost, Path: "attendance/check-in/"}, &out, "")
	return out.Message, err
}

// CheckOut returns the backend's confirmation message.
func (r *attendanceRepository) CheckOut(ctx context.Context) (string, error) {
	var out messageResponse
	err := r.api.JSON(ctx, gateway.Request{Method: http.MethodPost, Path: "attendance/check-out/"}, &out, "")
	return out.Message, err
}

func (r *attendanceRepository) ListMine(ctx context.Context) ([]domain.AttendanceRecord, error) {
	var records []domain.AttendanceRecord
	err := r.api.List(ctx, gateway.Request{Method: http.MethodGet, Path: "attendance/my/"}, &records, "", "attendance", "records")
	if err != nil {
		return nil, err
	}
	return records, nil
}
