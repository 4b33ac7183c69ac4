package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// TeacherStatus is the employment status the backend tracks.
type TeacherStatus string

const (
	TeacherStatusActive   TeacherStatus = "active"
	TeacherStatusInactive TeacherStatus = "inactive"
)

// Teacher is a staff record as listed for administrators.
type Teacher struct {
	ID              ID
	Username        string
	Email           string
	StaffID         string
	Department      string
	Subject         string
	Status          TeacherStatus
	DutyEligibility bool
	// LastAssignedAt is set by the backend whenever an assignment run picks the teacher.
	LastAssignedAt *time.Time
}

type teacherWire struct {
	ID              ID            `json:"id"`
	Username        string        `json:"username"`
	Email           string        `json:"email"`
	StaffID         string        `json:"staff_id"`
	Department      string        `json:"department"`
	Subject         string        `json:"subject"`
	Status          TeacherStatus `json:"status"`
	DutyEligibility bool          `json:"duty_eligibility"`
	LastAssignedAt  *string       `json:"last_assigned_at"`
	User            *struct {
		Username string `json:"username"`
		Email    string `json:"email"`
	} `json:"user"`
}

// UnmarshalJSON decodes a teacher, reading username/email from a nested
// user object when the backend sends one.
func (t *Teacher) UnmarshalJSON(data []byte) error {
	var wire teacherWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	lastAssigned, err := parseOptionalTime(wire.LastAssignedAt)
	if err != nil {
		return fmt.Errorf("last_assigned_at: %w", err)
	}
	*t = Teacher{
		ID:              wire.ID,
		Username:        wire.Username,
		Email:           wire.Email,
		StaffID:         wire.StaffID,
		Department:      wire.Department,
		Subject:         wire.Subject,
		Status:          wire.Status,
		DutyEligibility: wire.DutyEligibility,
		LastAssignedAt:  lastAssigned,
	}
	if wire.User != nil {
		if t.Username == "" {
			t.Username = wire.User.Username
		}
		if t.Email == "" {
			t.Email = wire.User.Email
		}
	}
	return nil
}

// TeacherAccount is the login half of a new teacher.
type TeacherAccount struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TeacherProfile is the editable staff half of a teacher.
type TeacherProfile struct {
	StaffID         string        `json:"staff_id"`
	Department      string        `json:"department"`
	Subject         string        `json:"subject"`
	Status          TeacherStatus `json:"status"`
	DutyEligibility bool          `json:"duty_eligibility"`
}

// NewTeacherProfile returns the defaults a blank form starts from.
func NewTeacherProfile() TeacherProfile {
	return TeacherProfile{Status: TeacherStatusActive, DutyEligibility: true}
}

// ProfileOf copies the editable fields of t.
func ProfileOf(t Teacher) TeacherProfile {
	return TeacherProfile{
		StaffID:         t.StaffID,
		Department:      t.Department,
		Subject:         t.Subject,
		Status:          t.Status,
		DutyEligibility: t.DutyEligibility,
	}
}
