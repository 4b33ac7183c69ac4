package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/duty-attendance/internal/domain"
	"github.com/spec-kit/duty-attendance/internal/events"
	"github.com/spec-kit/duty-attendance/internal/repository"
	apperrors "github.com/spec-kit/duty-attendance/pkg/util"
)

// Duty messages.
const (
	PeriodOrderMessage       = "End date must be after start date"
	CreatePeriodFailed       = "Failed to create duty period"
	AssignFailedMessage      = "Failed to assign duty"
	DutiesAssignedMessage    = "Duties assigned successfully"
	periodsFetchFallback     = "Failed to fetch duty periods"
	assignmentsFetchFallback = "Failed to fetch assignments"
	myDutiesFetchFallback    = "Failed to fetch duty assignments"
)

// TeacherReloader refreshes the teacher collection after an assignment run
// changes eligibility and last-assigned dates.
type TeacherReloader interface {
	Reload(ctx context.Context) ([]domain.Teacher, error)
}

// DutyService manages duty periods and assignments.
type DutyService struct {
	duties     repository.DutyRepository
	teachers   TeacherReloader
	dispatcher events.Dispatcher
	logger     *zap.Logger

	mu          sync.RWMutex
	periods     []domain.DutyPeriod
	assignments []domain.DutyAssignment
	myDuties    []domain.DutyAssignment
}

// DutyDependencies bundles collaborators.
type DutyDependencies struct {
	DutyRepo   repository.DutyRepository
	Teachers   TeacherReloader
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewDutyService creates the service.
func NewDutyService(deps DutyDependencies) *DutyService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DutyService{
		duties:     deps.DutyRepo,
		teachers:   deps.Teachers,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// Periods returns the last loaded duty periods.
func (s *DutyService) Periods() []domain.DutyPeriod {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.DutyPeriod(nil), s.periods...)
}

// Assignments returns the last loaded assignments.
func (s *DutyService) Assignments() []domain.DutyAssignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.DutyAssignment(nil), s.assignments...)
}

// MyDuties returns the last loaded duties of the signed-in teacher.
func (s *DutyService) MyDuties() []domain.DutyAssignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.DutyAssignment(nil), s.myDuties...)
}

// LoadPeriods fetches duty periods.
func (s *DutyService) LoadPeriods(ctx context.Context) ([]domain.DutyPeriod, error) {
	periods, err := s.duties.ListPeriods(ctx)
	if err != nil {
		return nil, relabel(err, periodsFetchFallback)
	}
	s.mu.Lock()
	s.periods = periods
	s.mu.Unlock()
	return append([]domain.DutyPeriod(nil), periods...), nil
}

// LoadAssignments fetches every duty assignment.
func (s *DutyService) LoadAssignments(ctx context.Context) ([]domain.DutyAssignment, error) {
	assignments, err := s.duties.ListAssignments(ctx)
	if err != nil {
		return nil, relabel(err, assignmentsFetchFallback)
	}
	s.mu.Lock()
	s.assignments = assignments
	s.mu.Unlock()
	return append([]domain.DutyAssignment(nil), assignments...), nil
}

// LoadMyDuties fetches the signed-in teacher's own assignments.
func (s *DutyService) LoadMyDuties(ctx context.Context) ([]domain.DutyAssignment, error) {
	duties, err := s.duties.ListMine(ctx)
	if err != nil {
		return nil, relabel(err, myDutiesFetchFallback)
	}
	s.mu.Lock()
	s.myDuties = duties
	s.mu.Unlock()
	return append([]domain.DutyAssignment(nil), duties...), nil
}

// CreatePeriod submits a new duty period. end must fall after start; that
// is checked here before anything is sent.
func (s *DutyService) CreatePeriod(ctx context.Context, start, end time.Time) error {
	if !end.After(start) {
		return apperrors.NewValidationError(PeriodOrderMessage, map[string]any{
			"start_date": start.Format(domain.DateLayout),
			"end_date":   end.Format(domain.DateLayout),
		})
	}

	if err := s.duties.CreatePeriod(ctx, start, end); err != nil {
		if apperrors.KindOf(err) == apperrors.KindValidation {
			return err
		}
		return relabel(err, CreatePeriodFailed)
	}

	if _, err := s.LoadPeriods(ctx); err != nil {
		s.logger.Warn("reload duty periods", zap.Error(err))
	}
	return nil
}

// Assign asks the backend to staff a period. Who gets assigned is decided
// server-side; on any 2xx both the assignment and teacher collections are
// reloaded. A backend error, including an explicit success:false, is
// returned with the backend's own wording; a 2xx without the key succeeds.
func (s *DutyService) Assign(ctx context.Context, periodID domain.ID) (string, error) {
	result, err := s.duties.Assign(ctx, periodID)
	if err != nil {
		return "", detailOr(err, AssignFailedMessage)
	}

	s.reloadAfterAssign(ctx)

	if result.Failed() {
		message := result.Error
		if message == "" {
			message = AssignFailedMessage
		}
		return "", apperrors.NewDomainError(apperrors.KindServer, "ASSIGN_FAILED", message, 0, map[string]any{"period_id": periodID.String()})
	}

	message := result.Message
	if message == "" {
		message = DutiesAssignedMessage
	}
	publishEvent(ctx, s.dispatcher, s.logger, events.EventDutiesAssigned, "", events.DutiesAssignedPayload{PeriodID: periodID, Message: message})
	return message, nil
}

func (s *DutyService) reloadAfterAssign(ctx context.Context) {
	if _, err := s.LoadAssignments(ctx); err != nil {
		s.logger.Warn("reload assignments", zap.Error(err))
	}
	if s.teachers == nil {
		return
	}
	if _, err := s.teachers.Reload(ctx); err != nil {
		s.logger.Warn("reload teachers", zap.Error(err))
	}
}
