package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/term"

	"github.com/spec-kit/duty-attendance/internal/api/dto"
	"github.com/spec-kit/duty-attendance/internal/domain"
	"github.com/spec-kit/duty-attendance/internal/gateway"
	"github.com/spec-kit/duty-attendance/internal/service"
	apperrors "github.com/spec-kit/duty-attendance/pkg/util"
)

type command struct {
	name    string
	args    string
	summary string
	// role is the role the session must hold. Public commands skip the check.
	role   domain.Role
	public bool
	run    func(ctx context.Context, e *env, args []string) error
}

var commands = []command{
	{name: "login", args: "[username] [--password-stdin]", summary: "log in and store the token pair", public: true, run: runLogin},
	{name: "logout", summary: "clear the stored session", public: true, run: runLogout},
	{name: "whoami", summary: "show the logged-in user", public: true, run: runWhoami},

	{name: "check-in", summary: "start today's attendance", role: domain.RoleTeacher, run: runCheckIn},
	{name: "check-out", summary: "close the open attendance session", role: domain.RoleTeacher, run: runCheckOut},
	{name: "attendance", summary: "list your attendance records", role: domain.RoleTeacher, run: runAttendance},
	{name: "my-duties", summary: "list your duty assignments", role: domain.RoleTeacher, run: runMyDuties},

	{name: "teachers", args: "[--search staff-id]", summary: "list teachers", role: domain.RoleAdmin, run: runTeachers},
	{name: "teacher", args: "<id>", summary: "show one teacher", role: domain.RoleAdmin, run: runTeacher},
	{name: "teacher-create", args: "--username u --email e --password p --staff-id s", summary: "create a teacher", role: domain.RoleAdmin, run: runTeacherCreate},
	{name: "teacher-update", args: "<id> [--staff-id|--department|--subject|--status|--duty-eligible]", summary: "edit a teacher's profile", role: domain.RoleAdmin, run: runTeacherUpdate},
	{name: "teacher-delete", args: "<id>", summary: "delete a teacher", role: domain.RoleAdmin, run: runTeacherDelete},
	{name: "periods", summary: "list duty periods", role: domain.RoleAdmin, run: runPeriods},
	{name: "period-create", args: "--start YYYY-MM-DD --end YYYY-MM-DD", summary: "create a duty period", role: domain.RoleAdmin, run: runPeriodCreate},
	{name: "assign", args: "<period-id>", summary: "assign duties for a period", role: domain.RoleAdmin, run: runAssign},
	{name: "assignments", summary: "list duty assignments", role: domain.RoleAdmin, run: runAssignments},
	{name: "report", args: "<teacher-id> --start YYYY-MM-DD --end YYYY-MM-DD", summary: "download a teacher's attendance PDF", role: domain.RoleAdmin, run: runReport},
}

func lookupCommand(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

func newFlagSet(name string) *pflag.FlagSet {
	flagSet := pflag.NewFlagSet(name, pflag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	return flagSet
}

func parseFlags(flagSet *pflag.FlagSet, args []string) ([]string, error) {
	if err := flagSet.Parse(args); err != nil {
		return nil, fmt.Errorf("%s: %w", flagSet.Name(), err)
	}
	return flagSet.Args(), nil
}

func requireArgs(name string, args []string, n int, usage string) error {
	if len(args) != n {
		return fmt.Errorf("usage: dutyctl %s %s", name, usage)
	}
	return nil
}

func runLogin(ctx context.Context, e *env, args []string) error {
	flagSet := newFlagSet("login")
	username := flagSet.StringP("username", "u", "", "account username")
	passwordStdin := flagSet.Bool("password-stdin", false, "read the password from standard input")
	rest, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	if *username == "" && len(rest) > 0 {
		*username = rest[0]
	}
	if *username == "" {
		return errors.New("usage: dutyctl login <username> [--password-stdin]")
	}

	password, err := readPassword(e.stdin, e.stderr, *passwordStdin)
	if err != nil {
		return err
	}
	if !e.app.Sessions.Login(ctx, *username, password) {
		return errors.New(gateway.InvalidCredentialsMessage)
	}
	user := e.app.Sessions.CurrentUser()
	fmt.Fprintf(e.stdout, "Logged in as %s (%s)\n", user.Username, user.Role)
	return nil
}

// readPassword prompts on the terminal with echo disabled, or reads one line
// from stdin when fromStdin is set.
func readPassword(stdin io.Reader, stderr io.Writer, fromStdin bool) (string, error) {
	if fromStdin {
		line, err := bufio.NewReader(stdin).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	file, ok := stdin.(*os.File)
	if !ok || !term.IsTerminal(int(file.Fd())) {
		return "", errors.New("no terminal available for password prompt (use --password-stdin)")
	}
	fmt.Fprint(stderr, "Password: ")
	password, err := term.ReadPassword(int(file.Fd()))
	fmt.Fprintln(stderr)
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(password), nil
}

func runLogout(ctx context.Context, e *env, _ []string) error {
	e.app.Sessions.Logout(ctx)
	fmt.Fprintln(e.stdout, "Logged out")
	return nil
}

func runWhoami(_ context.Context, e *env, _ []string) error {
	user := e.app.Sessions.CurrentUser()
	if user == nil {
		fmt.Fprintln(e.stdout, "Not logged in")
		return nil
	}
	printIdentity(e.stdout, user)
	return nil
}

func runCheckIn(ctx context.Context, e *env, _ []string) error {
	message, err := e.app.Attendance.CheckIn(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, message)
	return nil
}

func runCheckOut(ctx context.Context, e *env, _ []string) error {
	message, err := e.app.Attendance.CheckOut(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, message)
	return nil
}

func runAttendance(ctx context.Context, e *env, _ []string) error {
	records, err := e.app.Attendance.Reload(ctx)
	if err != nil {
		return err
	}
	printAttendance(e.stdout, records)
	return nil
}

func runMyDuties(ctx context.Context, e *env, _ []string) error {
	duties, err := e.app.Duties.LoadMyDuties(ctx)
	if err != nil {
		return err
	}
	printAssignments(e.stdout, duties)
	return nil
}

func runTeachers(ctx context.Context, e *env, args []string) error {
	flagSet := newFlagSet("teachers")
	search := flagSet.StringP("search", "s", "", "filter by staff ID (case-insensitive substring)")
	if _, err := parseFlags(flagSet, args); err != nil {
		return err
	}
	teachers, err := e.app.Teachers.Reload(ctx)
	if err != nil {
		return err
	}
	printTeachers(e.stdout, service.FilterByStaffID(teachers, *search))
	return nil
}

func runTeacher(ctx context.Context, e *env, args []string) error {
	if err := requireArgs("teacher", args, 1, "<id>"); err != nil {
		return err
	}
	teacher, err := e.app.Teachers.Get(ctx, domain.ID(args[0]))
	if err != nil {
		return err
	}
	printTeacher(e.stdout, *teacher)
	return nil
}

func runTeacherCreate(ctx context.Context, e *env, args []string) error {
	flagSet := newFlagSet("teacher-create")
	var req dto.TeacherCreateRequest
	flagSet.StringVar(&req.Username, "username", "", "login name")
	flagSet.StringVar(&req.Email, "email", "", "email address")
	flagSet.StringVar(&req.Password, "password", "", "initial password")
	flagSet.StringVar(&req.StaffID, "staff-id", "", "staff identifier")
	flagSet.StringVar(&req.Department, "department", "", "department")
	flagSet.StringVar(&req.Subject, "subject", "", "subject taught")
	flagSet.StringVar(&req.Status, "status", "", "active or inactive (default active)")
	eligible := flagSet.Bool("duty-eligible", true, "whether the teacher can be assigned duties")
	if _, err := parseFlags(flagSet, args); err != nil {
		return err
	}
	if flagSet.Changed("duty-eligible") {
		req.DutyEligibility = eligible
	}

	if err := e.app.Teachers.Create(ctx, req.Account(), req.Profile()); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Teacher %s created\n", req.Username)
	return nil
}

func runTeacherUpdate(ctx context.Context, e *env, args []string) error {
	flagSet := newFlagSet("teacher-update")
	staffID := flagSet.String("staff-id", "", "staff identifier")
	department := flagSet.String("department", "", "department")
	subject := flagSet.String("subject", "", "subject taught")
	status := flagSet.String("status", "", "active or inactive")
	eligible := flagSet.Bool("duty-eligible", true, "whether the teacher can be assigned duties")
	rest, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	if err := requireArgs("teacher-update", rest, 1, "<id> [flags]"); err != nil {
		return err
	}

	var req dto.TeacherUpdateRequest
	if flagSet.Changed("staff-id") {
		req.StaffID = staffID
	}
	if flagSet.Changed("department") {
		req.Department = department
	}
	if flagSet.Changed("subject") {
		req.Subject = subject
	}
	if flagSet.Changed("status") {
		req.Status = status
	}
	if flagSet.Changed("duty-eligible") {
		req.DutyEligibility = eligible
	}

	id := domain.ID(rest[0])
	current, err := e.app.Teachers.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := e.app.Teachers.Update(ctx, id, req.Apply(domain.ProfileOf(*current))); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Teacher %s updated\n", id)
	return nil
}

func runTeacherDelete(ctx context.Context, e *env, args []string) error {
	if err := requireArgs("teacher-delete", args, 1, "<id>"); err != nil {
		return err
	}
	id := domain.ID(args[0])
	if err := e.app.Teachers.Delete(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Teacher %s deleted\n", id)
	return nil
}

func runPeriods(ctx context.Context, e *env, _ []string) error {
	periods, err := e.app.Duties.LoadPeriods(ctx)
	if err != nil {
		return err
	}
	printPeriods(e.stdout, periods)
	return nil
}

func runPeriodCreate(ctx context.Context, e *env, args []string) error {
	flagSet := newFlagSet("period-create")
	startFlag := flagSet.String("start", "", "first day (YYYY-MM-DD)")
	endFlag := flagSet.String("end", "", "last day (YYYY-MM-DD)")
	if _, err := parseFlags(flagSet, args); err != nil {
		return err
	}
	start, err := parseDay("start", *startFlag, true)
	if err != nil {
		return err
	}
	end, err := parseDay("end", *endFlag, true)
	if err != nil {
		return err
	}
	if err := e.app.Duties.CreatePeriod(ctx, start, end); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Duty period %s to %s created\n", *startFlag, *endFlag)
	return nil
}

func runAssign(ctx context.Context, e *env, args []string) error {
	if err := requireArgs("assign", args, 1, "<period-id>"); err != nil {
		return err
	}
	message, err := e.app.Duties.Assign(ctx, domain.ID(args[0]))
	if err != nil {
		return err
	}
	fmt.Fprintln(e.stdout, message)
	return nil
}

func runAssignments(ctx context.Context, e *env, _ []string) error {
	assignments, err := e.app.Duties.LoadAssignments(ctx)
	if err != nil {
		return err
	}
	printAssignments(e.stdout, assignments)
	return nil
}

func runReport(ctx context.Context, e *env, args []string) error {
	flagSet := newFlagSet("report")
	startFlag := flagSet.String("start", "", "first day (YYYY-MM-DD)")
	endFlag := flagSet.String("end", "", "last day (YYYY-MM-DD)")
	rest, err := parseFlags(flagSet, args)
	if err != nil {
		return err
	}
	if err := requireArgs("report", rest, 1, "<teacher-id> --start YYYY-MM-DD --end YYYY-MM-DD"); err != nil {
		return err
	}
	// Missing dates are left zero so the report service reports them.
	start, err := parseDay("start", *startFlag, false)
	if err != nil {
		return err
	}
	end, err := parseDay("end", *endFlag, false)
	if err != nil {
		return err
	}
	path, err := e.app.Reports.Save(ctx, domain.ID(rest[0]), start, end)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "Saved %s\n", path)
	return nil
}

func parseDay(flag, value string, required bool) (time.Time, error) {
	if value == "" {
		if required {
			return time.Time{}, apperrors.NewValidationError("--"+flag+" is required", nil)
		}
		return time.Time{}, nil
	}
	day, err := time.Parse(domain.DateLayout, value)
	if err != nil {
		return time.Time{}, apperrors.NewValidationError(fmt.Sprintf("--%s must be a date (YYYY-MM-DD), got %q", flag, value), nil)
	}
	return day, nil
}
