package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/duty-attendance/internal/api/dto"
	"github.com/spec-kit/duty-attendance/internal/auth"
	"github.com/spec-kit/duty-attendance/internal/domain"
	"github.com/spec-kit/duty-attendance/internal/service"
	apperrors "github.com/spec-kit/duty-attendance/pkg/util"
)

// AdminHandler exposes the administrator surface.
type AdminHandler struct {
	teachers *service.TeacherService
	duties   *service.DutyService
	reports  *service.ReportService
}

// NewAdminHandler constructs handler.
func NewAdminHandler(teachers *service.TeacherService, duties *service.DutyService, reports *service.ReportService) *AdminHandler {
	return &AdminHandler{teachers: teachers, duties: duties, reports: reports}
}

// Dashboard handles GET /admin.
func (h *AdminHandler) Dashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	teachers, err := h.teachers.Reload(ctx)
	if err != nil {
		return err
	}
	periods, err := h.duties.LoadPeriods(ctx)
	if err != nil {
		return err
	}
	assignments, err := h.duties.LoadAssignments(ctx)
	if err != nil {
		return err
	}

	identity, _ := auth.IdentityFromContext(c)
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user":        dto.NewIdentityResponse(identity),
			"teachers":    dto.NewTeacherListResponse(teachers),
			"periods":     dto.NewPeriodListResponse(periods),
			"assignments": dto.NewAssignmentListResponse(assignments),
		},
	})
}

// ListTeachers handles GET /admin/teachers?search=.
func (h *AdminHandler) ListTeachers(c *fiber.Ctx) error {
	teachers, err := h.teachers.Reload(c.UserContext())
	if err != nil {
		return err
	}
	filtered := service.FilterByStaffID(teachers, c.Query("search"))
	return c.JSON(fiber.Map{"data": dto.NewTeacherListResponse(filtered)})
}

// GetTeacher handles GET /admin/teachers/:id.
func (h *AdminHandler) GetTeacher(c *fiber.Ctx) error {
	teacher, err := h.teachers.Get(c.UserContext(), domain.ID(c.Params("id")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTeacherResponse(*teacher)})
}

// CreateTeacher handles POST /admin/teachers.
func (h *AdminHandler) CreateTeacher(c *fiber.Ctx) error {
	var req dto.TeacherCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.teachers.Create(c.UserContext(), req.Account(), req.Profile()); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": dto.NewTeacherListResponse(h.teachers.Teachers()),
	})
}

// UpdateTeacher handles PUT /admin/teachers/:id.
func (h *AdminHandler) UpdateTeacher(c *fiber.Ctx) error {
	var req dto.TeacherUpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	ctx := c.UserContext()
	id := domain.ID(c.Params("id"))
	current, err := h.teachers.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := h.teachers.Update(ctx, id, req.Apply(domain.ProfileOf(*current))); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewTeacherListResponse(h.teachers.Teachers())})
}

// DeleteTeacher handles DELETE /admin/teachers/:id.
func (h *AdminHandler) DeleteTeacher(c *fiber.Ctx) error {
	if err := h.teachers.Delete(c.UserContext(), domain.ID(c.Params("id"))); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListPeriods handles GET /admin/periods.
func (h *AdminHandler) ListPeriods(c *fiber.Ctx) error {
	periods, err := h.duties.LoadPeriods(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewPeriodListResponse(periods)})
}

// CreatePeriod handles POST /admin/periods.
func (h *AdminHandler) CreatePeriod(c *fiber.Ctx) error {
	var req dto.PeriodCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	start, err := parseDate("start_date", req.StartDate)
	if err != nil {
		return err
	}
	end, err := parseDate("end_date", req.EndDate)
	if err != nil {
		return err
	}
	if err := h.duties.CreatePeriod(c.UserContext(), start, end); err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NewPeriodListResponse(h.duties.Periods())})
}

// AssignPeriod handles POST /admin/periods/:id/assign.
func (h *AdminHandler) AssignPeriod(c *fiber.Ctx) error {
	message, err := h.duties.Assign(c.UserContext(), domain.ID(c.Params("id")))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"message":     message,
			"assignments": dto.NewAssignmentListResponse(h.duties.Assignments()),
		},
	})
}

// ListAssignments handles GET /admin/assignments.
func (h *AdminHandler) ListAssignments(c *fiber.Ctx) error {
	assignments, err := h.duties.LoadAssignments(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAssignmentListResponse(assignments)})
}

// TeacherReport handles GET /admin/teachers/:id/report?start_date&end_date
// and streams the PDF as an attachment.
func (h *AdminHandler) TeacherReport(c *fiber.Ctx) error {
	start, err := parseOptionalDate("start_date", c.Query("start_date"))
	if err != nil {
		return err
	}
	end, err := parseOptionalDate("end_date", c.Query("end_date"))
	if err != nil {
		return err
	}
	report, err := h.reports.Download(c.UserContext(), domain.ID(c.Params("id")), start, end)
	if err != nil {
		return err
	}
	c.Attachment(report.Filename)
	c.Set(fiber.HeaderContentType, "application/pdf")
	return c.Send(report.Content)
}

func parseDate(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, apperrors.NewValidationError(field+" is required", map[string]any{field: "required"})
	}
	return parseOptionalDate(field, value)
}

func parseOptionalDate(field, value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(field+" must be a date (YYYY-MM-DD)", map[string]any{field: value})
	}
	return parsed, nil
}
