package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DutyPeriod is an administrator-defined window open for staffing.
type DutyPeriod struct {
	ID        ID
	StartDate time.Time
	EndDate   time.Time
}

type dutyPeriodWire struct {
	ID        ID      `json:"id"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
}

// UnmarshalJSON decodes a period whose dates may be date-only or full timestamps.
func (p *DutyPeriod) UnmarshalJSON(data []byte) error {
	var wire dutyPeriodWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	start, err := parseOptionalTime(wire.StartDate)
	if err != nil {
		return fmt.Errorf("start_date: %w", err)
	}
	end, err := parseOptionalTime(wire.EndDate)
	if err != nil {
		return fmt.Errorf("end_date: %w", err)
	}
	*p = DutyPeriod{ID: wire.ID}
	if start != nil {
		p.StartDate = *start
	}
	if end != nil {
		p.EndDate = *end
	}
	return nil
}

// Valid reports whether the period ends strictly after it starts.
func (p DutyPeriod) Valid() bool {
	return p.EndDate.After(p.StartDate)
}

// Length is the span of the period.
func (p DutyPeriod) Length() time.Duration {
	return p.EndDate.Sub(p.StartDate)
}

// TeacherRef is the teacher side of an assignment. The backend sends either
// a bare id or a nested teacher object, and some listings flatten the
// username and staff id next to it.
type TeacherRef struct {
	ID       ID
	Username string
	StaffID  string
}

// UnmarshalJSON accepts an id or an object.
func (t *TeacherRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var wire struct {
			ID       ID     `json:"id"`
			Username string `json:"username"`
			StaffID  string `json:"staff_id"`
		}
		if err := json.Unmarshal(data, &wire); err != nil {
			return err
		}
		*t = TeacherRef{ID: wire.ID, Username: wire.Username, StaffID: wire.StaffID}
		return nil
	}
	var id ID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	*t = TeacherRef{ID: id}
	return nil
}

// DutyPeriodRef is the period side of an assignment: an id, or the full period.
type DutyPeriodRef struct {
	ID     ID
	Period *DutyPeriod
}

// UnmarshalJSON accepts an id or an object.
func (p *DutyPeriodRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		var period DutyPeriod
		if err := json.Unmarshal(data, &period); err != nil {
			return err
		}
		*p = DutyPeriodRef{ID: period.ID, Period: &period}
		return nil
	}
	var id ID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	*p = DutyPeriodRef{ID: id}
	return nil
}

// DutyAssignment links a teacher to a duty period.
type DutyAssignment struct {
	ID      ID
	Teacher TeacherRef
	Period  DutyPeriodRef
}

type dutyAssignmentWire struct {
	ID              ID             `json:"id"`
	Teacher         *TeacherRef    `json:"teacher"`
	TeacherUsername string         `json:"teacher_username"`
	TeacherStaffID  string         `json:"teacher_staff_id"`
	DutyPeriod      *DutyPeriodRef `json:"duty_period"`
}

// UnmarshalJSON folds the flattened teacher_* fields into Teacher.
func (a *DutyAssignment) UnmarshalJSON(data []byte) error {
	var wire dutyAssignmentWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*a = DutyAssignment{ID: wire.ID}
	if wire.Teacher != nil {
		a.Teacher = *wire.Teacher
	}
	if a.Teacher.Username == "" {
		a.Teacher.Username = wire.TeacherUsername
	}
	if a.Teacher.StaffID == "" {
		a.Teacher.StaffID = wire.TeacherStaffID
	}
	if wire.DutyPeriod != nil {
		a.Period = *wire.DutyPeriod
	}
	return nil
}

// AssignResult is the backend's answer to an assignment run. Success is
// nil when the backend left the key out.
type AssignResult struct {
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Failed reports whether the backend explicitly answered success:false.
func (r AssignResult) Failed() bool {
	return r.Success != nil && !*r.Success
}
