package service

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/duty-attendance/internal/domain"
	"github.com/spec-kit/duty-attendance/internal/events"
	"github.com/spec-kit/duty-attendance/internal/gateway"
	"github.com/spec-kit/duty-attendance/internal/repository"
	apperrors "github.com/spec-kit/duty-attendance/pkg/util"
)

// Attendance messages.
const (
	CheckInRejectedPrefix   = "Already checked in or error occurred: "
	CheckedInMessage        = "Checked in successfully!"
	CheckedOutMessage       = "Checked out successfully!"
	NoActiveSessionMessage  = "No active session found for checkout"
	InvalidCheckoutMessage  = "Invalid checkout request"
	attendanceFetchFallback = "Failed to fetch attendance records"
)

// AttendanceService drives the signed-in teacher's check-in and check-out
// and holds the last loaded copy of their attendance records.
type AttendanceService struct {
	attendance repository.AttendanceRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger

	mu      sync.RWMutex
	records []domain.AttendanceRecord
}

// AttendanceDependencies bundles collaborators.
type AttendanceDependencies struct {
	AttendanceRepo repository.AttendanceRepository
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewAttendanceService creates the service.
func NewAttendanceService(deps AttendanceDependencies) *AttendanceService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{
		attendance: deps.AttendanceRepo,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Records returns the last loaded attendance records.
func (s *AttendanceService) Records() []domain.AttendanceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.AttendanceRecord(nil), s.records...)
}

// Reload fetches the records from the backend and replaces the cached copy.
func (s *AttendanceService) Reload(ctx context.Context) ([]domain.AttendanceRecord, error) {
	records, err := s.attendance.ListMine(ctx)
	if err != nil {
		return nil, relabel(err, attendanceFetchFallback)
	}
	s.mu.Lock()
	s.records = records
	s.mu.Unlock()
	return append([]domain.AttendanceRecord(nil), records...), nil
}

// CheckIn opens an attendance session. The client does not check for an
// open session first; the backend decides.
func (s *AttendanceService) CheckIn(ctx context.Context) (string, error) {
	message, err := s.attendance.CheckIn(ctx)
	if err != nil {
		if invalidated(err) {
			return "", err
		}
		return "", relabel(err, CheckInRejectedPrefix+rejectionDetail(err))
	}
	if message == "" {
		message = CheckedInMessage
	}

	publishEvent(ctx, s.dispatcher, s.logger, events.EventAttendanceChanged, "", events.AttendanceChangedPayload{Action: "check_in"})
	s.reloadQuietly(ctx)
	return message, nil
}

// CheckOut closes the open attendance session. The records are reloaded
// whatever the outcome, unless the session itself was invalidated.
func (s *AttendanceService) CheckOut(ctx context.Context) (string, error) {
	message, err := s.attendance.CheckOut(ctx)
	if invalidated(err) {
		return "", err
	}
	defer s.reloadQuietly(ctx)

	if err != nil {
		return "", checkoutError(err)
	}
	if message == "" {
		message = CheckedOutMessage
	}
	publishEvent(ctx, s.dispatcher, s.logger, events.EventAttendanceChanged, "", events.AttendanceChangedPayload{Action: "check_out"})
	return message, nil
}

func (s *AttendanceService) reloadQuietly(ctx context.Context) {
	if _, err := s.Reload(ctx); err != nil {
		s.logger.Warn("reload attendance", zap.Error(err))
	}
}

func checkoutError(err error) error {
	de := apperrors.ToDomainError(err)
	switch de.Kind {
	case apperrors.KindNetwork:
		return relabel(err, gateway.NetworkErrorMessage)
	case apperrors.KindServer:
		fallback := fmt.Sprintf("Server error: %d", de.HTTPStatus)
		switch de.HTTPStatus {
		case http.StatusNotFound:
			fallback = NoActiveSessionMessage
		case http.StatusBadRequest:
			fallback = InvalidCheckoutMessage
		}
		return detailOr(err, fallback)
	default:
		return err
	}
}

// rejectionDetail is the part of a check-in rejection worth showing: the
// backend's explanation, or a description of what went wrong.
func rejectionDetail(err error) string {
	de := apperrors.ToDomainError(err)
	if de.Message != "" {
		return de.Message
	}
	if de.HTTPStatus != 0 {
		return fmt.Sprintf("Request failed with status code %d", de.HTTPStatus)
	}
	return err.Error()
}
