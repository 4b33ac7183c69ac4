package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/pflag"

	"github.com/spec-kit/duty-attendance/internal/api/dto"
	"github.com/spec-kit/duty-attendance/internal/domain"
)

const timestampLayout = "2006-01-02 15:04"

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printUsage(w io.Writer, global *pflag.FlagSet) {
	fmt.Fprintln(w, "Usage: dutyctl [global flags] <command> [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	table := newTable(w)
	for _, cmd := range commands {
		scope := string(cmd.role)
		if cmd.public {
			scope = "any"
		}
		fmt.Fprintf(table, "  %s %s\t%s\t[%s]\n", cmd.name, cmd.args, cmd.summary, scope)
	}
	_ = table.Flush()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Global flags:")
	fmt.Fprint(w, global.FlagUsages())
}

func printIdentity(w io.Writer, user *domain.Identity) {
	table := newTable(w)
	fmt.Fprintf(table, "Username:\t%s\n", user.Username)
	fmt.Fprintf(table, "User ID:\t%s\n", user.SubjectID)
	fmt.Fprintf(table, "Role:\t%s\n", user.Role)
	if !user.Expiry.IsZero() {
		fmt.Fprintf(table, "Token expires:\t%s\n", user.Expiry.Local().Format(timestampLayout))
	}
	_ = table.Flush()
}

func printTeachers(w io.Writer, teachers []domain.Teacher) {
	if len(teachers) == 0 {
		fmt.Fprintln(w, "No teachers found.")
		return
	}
	table := newTable(w)
	fmt.Fprintln(table, "ID\tUSERNAME\tSTAFF ID\tDEPARTMENT\tSTATUS\tDUTY ELIGIBLE")
	for _, t := range teachers {
		fmt.Fprintf(table, "%s\t%s\t%s\t%s\t%s\t%t\n", t.ID, t.Username, t.StaffID, t.Department, t.Status, t.DutyEligibility)
	}
	_ = table.Flush()
}

func printTeacher(w io.Writer, t domain.Teacher) {
	table := newTable(w)
	fmt.Fprintf(table, "ID:\t%s\n", t.ID)
	fmt.Fprintf(table, "Username:\t%s\n", t.Username)
	fmt.Fprintf(table, "Email:\t%s\n", t.Email)
	fmt.Fprintf(table, "Staff ID:\t%s\n", t.StaffID)
	fmt.Fprintf(table, "Department:\t%s\n", t.Department)
	fmt.Fprintf(table, "Subject:\t%s\n", t.Subject)
	fmt.Fprintf(table, "Status:\t%s\n", t.Status)
	fmt.Fprintf(table, "Duty eligible:\t%t\n", t.DutyEligibility)
	fmt.Fprintf(table, "Last assigned:\t%s\n", formatTimestamp(t.LastAssignedAt))
	_ = table.Flush()
}

func printPeriods(w io.Writer, periods []domain.DutyPeriod) {
	if len(periods) == 0 {
		fmt.Fprintln(w, "No duty periods.")
		return
	}
	table := newTable(w)
	fmt.Fprintln(table, "ID\tSTART\tEND")
	for _, p := range dto.NewPeriodListResponse(periods) {
		fmt.Fprintf(table, "%s\t%s\t%s\n", p.ID, p.StartDate, p.EndDate)
	}
	_ = table.Flush()
}

func printAssignments(w io.Writer, assignments []domain.DutyAssignment) {
	if len(assignments) == 0 {
		fmt.Fprintln(w, "No duty assignments.")
		return
	}
	table := newTable(w)
	fmt.Fprintln(table, "ID\tTEACHER\tSTAFF ID\tPERIOD")
	for _, a := range dto.NewAssignmentListResponse(assignments) {
		period := a.PeriodID.String()
		if a.Period != nil {
			period = fmt.Sprintf("%s to %s", a.Period.StartDate, a.Period.EndDate)
		}
		fmt.Fprintf(table, "%s\t%s\t%s\t%s\n", a.ID, a.TeacherUsername, a.TeacherStaffID, period)
	}
	_ = table.Flush()
}

func printAttendance(w io.Writer, records []domain.AttendanceRecord) {
	rows, summary := dto.NewAttendanceListResponse(records)
	if len(rows) == 0 {
		fmt.Fprintln(w, "No attendance records.")
		return
	}
	table := newTable(w)
	fmt.Fprintln(table, "ID\tCHECK IN\tCHECK OUT\tSTATUS\tDURATION")
	for _, r := range rows {
		fmt.Fprintf(table, "%s\t%s\t%s\t%s\t%s\n", r.ID, formatTimestamp(r.CheckIn), formatTimestamp(r.CheckOut), r.Status, r.Duration)
	}
	_ = table.Flush()
	fmt.Fprintf(w, "\n%d records, %d completed, %d active\n", summary.Total, summary.Completed, summary.Active)
}

func formatTimestamp(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(timestampLayout)
}
