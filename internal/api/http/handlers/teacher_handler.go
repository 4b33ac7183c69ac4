package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/duty-attendance/internal/api/dto"
	"github.com/spec-kit/duty-attendance/internal/auth"
	"github.com/spec-kit/duty-attendance/internal/service"
)

// TeacherHandler exposes the teacher surface: attendance and own duties.
type TeacherHandler struct {
	attendance *service.AttendanceService
	duties     *service.DutyService
}

// NewTeacherHandler constructs handler.
func NewTeacherHandler(attendance *service.AttendanceService, duties *service.DutyService) *TeacherHandler {
	return &TeacherHandler{attendance: attendance, duties: duties}
}

// Dashboard handles GET /teacher.
func (h *TeacherHandler) Dashboard(c *fiber.Ctx) error {
	ctx := c.UserContext()
	records, err := h.attendance.Reload(ctx)
	if err != nil {
		return err
	}
	duties, err := h.duties.LoadMyDuties(ctx)
	if err != nil {
		return err
	}

	identity, _ := auth.IdentityFromContext(c)
	attendance, summary := dto.NewAttendanceListResponse(records)
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"user":       dto.NewIdentityResponse(identity),
			"attendance": attendance,
			"summary":    summary,
			"duties":     dto.NewAssignmentListResponse(duties),
		},
	})
}

// CheckIn handles POST /teacher/check-in.
func (h *TeacherHandler) CheckIn(c *fiber.Ctx) error {
	message, err := h.attendance.CheckIn(c.UserContext())
	if err != nil {
		return err
	}
	return h.attendanceResult(c, message)
}

// CheckOut handles POST /teacher/check-out.
func (h *TeacherHandler) CheckOut(c *fiber.Ctx) error {
	message, err := h.attendance.CheckOut(c.UserContext())
	if err != nil {
		return err
	}
	return h.attendanceResult(c, message)
}

// Attendance handles GET /teacher/attendance.
func (h *TeacherHandler) Attendance(c *fiber.Ctx) error {
	records, err := h.attendance.Reload(c.UserContext())
	if err != nil {
		return err
	}
	attendance, summary := dto.NewAttendanceListResponse(records)
	return c.JSON(fiber.Map{"data": attendance, "summary": summary})
}

// Duties handles GET /teacher/duties.
func (h *TeacherHandler) Duties(c *fiber.Ctx) error {
	duties, err := h.duties.LoadMyDuties(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAssignmentListResponse(duties)})
}

func (h *TeacherHandler) attendanceResult(c *fiber.Ctx, message string) error {
	attendance, summary := dto.NewAttendanceListResponse(h.attendance.Records())
	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"message":    message,
			"attendance": attendance,
			"summary":    summary,
		},
	})
}
