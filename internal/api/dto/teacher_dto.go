package dto

import (
	"time"

	"github.com/spec-kit/duty-attendance/internal/domain"
)

// TeacherCreateRequest payload for a new teacher.
type TeacherCreateRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	StaffID         string `json:"staff_id"`
	Department      string `json:"department"`
	Subject         string `json:"subject"`
	Status          string `json:"status"`
	DutyEligibility *bool  `json:"duty_eligibility"`
}

// Account returns the login half of the request.
func (r TeacherCreateRequest) Account() domain.TeacherAccount {
	return domain.TeacherAccount{Username: r.Username, Email: r.Email, Password: r.Password}
}

// Profile returns the staff half, defaulting unset fields.
func (r TeacherCreateRequest) Profile() domain.TeacherProfile {
	profile := domain.NewTeacherProfile()
	profile.StaffID = r.StaffID
	profile.Department = r.Department
	profile.Subject = r.Subject
	if r.Status != "" {
		profile.Status = domain.TeacherStatus(r.Status)
	}
	if r.DutyEligibility != nil {
		profile.DutyEligibility = *r.DutyEligibility
	}
	return profile
}

// TeacherUpdateRequest payload for profile edits. Unset fields keep their
// current value.
type TeacherUpdateRequest struct {
	StaffID         *string `json:"staff_id"`
	Department      *string `json:"department"`
	Subject         *string `json:"subject"`
	Status          *string `json:"status"`
	DutyEligibility *bool   `json:"duty_eligibility"`
}

// Apply overlays the set fields on profile.
func (r TeacherUpdateRequest) Apply(profile domain.TeacherProfile) domain.TeacherProfile {
	if r.StaffID != nil {
		profile.StaffID = *r.StaffID
	}
	if r.Department != nil {
		profile.Department = *r.Department
	}
	if r.Subject != nil {
		profile.Subject = *r.Subject
	}
	if r.Status != nil {
		profile.Status = domain.TeacherStatus(*r.Status)
	}
	if r.DutyEligibility != nil {
		profile.DutyEligibility = *r.DutyEligibility
	}
	return profile
}

// TeacherResponse describes a teacher.
type TeacherResponse struct {
	ID              domain.ID            `json:"id"`
	Username        string               `json:"username"`
	Email           string               `json:"email,omitempty"`
	StaffID         string               `json:"staff_id"`
	Department      string               `json:"department,omitempty"`
	Subject         string               `json:"subject,omitempty"`
	Status          domain.TeacherStatus `json:"status,omitempty"`
	DutyEligibility bool                 `json:"duty_eligibility"`
	LastAssignedAt  *time.Time           `json:"last_assigned_at,omitempty"`
}

// NewTeacherResponse maps a teacher.
func NewTeacherResponse(t domain.Teacher) TeacherResponse {
	return TeacherResponse{
		ID:              t.ID,
		Username:        t.Username,
		Email:           t.Email,
		StaffID:         t.StaffID,
		Department:      t.Department,
		Subject:         t.Subject,
		Status:          t.Status,
		DutyEligibility: t.DutyEligibility,
		LastAssignedAt:  t.LastAssignedAt,
	}
}

// NewTeacherListResponse maps teachers.
func NewTeacherListResponse(teachers []domain.Teacher) []TeacherResponse {
	out := make([]TeacherResponse, 0, len(teachers))
	for _, t := range teachers {
		out = append(out, NewTeacherResponse(t))
	}
	return out
}
