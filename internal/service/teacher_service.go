package service

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/spec-kit/duty-attendance/internal/domain"
	"github.com/spec-kit/duty-attendance/internal/repository"
	apperrors "github.com/spec-kit/duty-attendance/pkg/util"
)

// Teacher messages.
const (
	teachersFetchFallback = "Failed to fetch teachers"
	teacherFetchFallback  = "Failed to fetch teacher details"
	teacherCreateFallback = "Failed to create a new teacher"
	teacherUpdateFallback = "Failed to update teacher"
	teacherDeleteFallback = "Failed to delete the teacher"
)

// TeacherService manages teacher records for administrators.
type TeacherService struct {
	teachers repository.TeacherRepository
	logger   *zap.Logger

	mu    sync.RWMutex
	cache []domain.Teacher
}

// TeacherDependencies bundles collaborators.
type TeacherDependencies struct {
	TeacherRepo repository.TeacherRepository
	Logger      *zap.Logger
}

// NewTeacherService creates the service.
func NewTeacherService(deps TeacherDependencies) *TeacherService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherService{teachers: deps.TeacherRepo, logger: logger}
}

// Teachers returns the last loaded teachers.
func (s *TeacherService) Teachers() []domain.Teacher {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Teacher(nil), s.cache...)
}

// Reload fetches every teacher and replaces the cached copy.
func (s *TeacherService) Reload(ctx context.Context) ([]domain.Teacher, error) {
	teachers, err := s.teachers.List(ctx)
	if err != nil {
		return nil, relabel(err, teachersFetchFallback)
	}
	s.mu.Lock()
	s.cache = teachers
	s.mu.Unlock()
	return append([]domain.Teacher(nil), teachers...), nil
}

// Search filters the cached teachers by staff ID, ignoring case.
func (s *TeacherService) Search(term string) []domain.Teacher {
	return FilterByStaffID(s.Teachers(), term)
}

// FilterByStaffID keeps teachers whose staff ID contains term, ignoring
// case. An empty term keeps everyone.
func FilterByStaffID(teachers []domain.Teacher, term string) []domain.Teacher {
	needle := strings.ToLower(strings.TrimSpace(term))
	if needle == "" {
		return teachers
	}
	var matched []domain.Teacher
	for _, teacher := range teachers {
		if strings.Contains(strings.ToLower(teacher.StaffID), needle) {
			matched = append(matched, teacher)
		}
	}
	return matched
}

// Get fetches one teacher.
func (s *TeacherService) Get(ctx context.Context, id domain.ID) (*domain.Teacher, error) {
	if id == "" {
		return nil, apperrors.NewValidationError("teacher id is required", nil)
	}
	teacher, err := s.teachers.GetByID(ctx, id)
	if err != nil {
		return nil, relabel(err, teacherFetchFallback)
	}
	return teacher, nil
}

// Create registers a teacher account with its staff profile.
func (s *TeacherService) Create(ctx context.Context, account domain.TeacherAccount, profile domain.TeacherProfile) error {
	missing := map[string]any{}
	for field, value := range map[string]string{
		"username": account.Username,
		"email":    account.Email,
		"password": account.Password,
		"staff_id": profile.StaffID,
	} {
		if strings.TrimSpace(value) == "" {
			missing[field] = "required"
		}
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("username, email, password and staff ID are required", missing)
	}
	if profile.Status == "" {
		profile.Status = domain.TeacherStatusActive
	}

	if err := s.teachers.Create(ctx, account, profile); err != nil {
		return relabel(err, teacherCreateFallback)
	}
	s.logger.Info("teacher created", zap.String("username", account.Username), zap.String("staff_id", profile.StaffID))
	s.reloadQuietly(ctx)
	return nil
}

// Update replaces the editable profile of a teacher.
func (s *TeacherService) Update(ctx context.Context, id domain.ID, profile domain.TeacherProfile) error {
	if id == "" {
		return apperrors.NewValidationError("teacher id is required", nil)
	}
	if err := s.teachers.Update(ctx, id, profile); err != nil {
		return relabel(err, teacherUpdateFallback)
	}
	s.reloadQuietly(ctx)
	return nil
}

// Delete removes a teacher.
func (s *TeacherService) Delete(ctx context.Context, id domain.ID) error {
	if id == "" {
		return apperrors.NewValidationError("teacher id is required", nil)
	}
	if err := s.teachers.Delete(ctx, id); err != nil {
		return relabel(err, teacherDeleteFallback)
	}
	s.logger.Info("teacher deleted", zap.String("teacher_id", id.String()))
	s.reloadQuietly(ctx)
	return nil
}

func (s *TeacherService) reloadQuietly(ctx context.Context) {
	if _, err := s.Reload(ctx); err != nil {
		s.logger.Warn("reload teachers", zap.Error(err))
	}
}
