// Command dutyctl drives the duty and attendance backend from a terminal.
// It shares the console's session, so a login here is visible there when
// both point at the same session store.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/spec-kit/duty-attendance/internal/app"
	"github.com/spec-kit/duty-attendance/internal/auth"
	"github.com/spec-kit/duty-attendance/internal/config"
	"github.com/spec-kit/duty-attendance/internal/domain"
	"github.com/spec-kit/duty-attendance/internal/observability"
	"github.com/spec-kit/duty-attendance/internal/service"
	apperrors "github.com/spec-kit/duty-attendance/pkg/util"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if message := errorMessage(err); message != "" {
			fmt.Fprintf(os.Stderr, "dutyctl: %s\n", message)
		}
		stop()
		os.Exit(1)
	}
}

// env is what a command runs against.
type env struct {
	app    *app.App
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	flagSet := pflag.NewFlagSet("dutyctl", pflag.ContinueOnError)
	flagSet.SetInterspersed(false)
	flagSet.SetOutput(io.Discard)
	apiURL := flagSet.String("api", "", "backend base URL (overrides API_BASE_URL)")
	sessionFile := flagSet.String("session-file", "", "session file path (overrides SESSION_FILE)")
	outDir := flagSet.String("out", "", "directory for downloaded reports (overrides REPORT_OUTPUT_DIR)")
	verbose := flagSet.BoolP("verbose", "v", false, "log debug output to stderr")
	help := flagSet.BoolP("help", "h", false, "show usage")

	if err := flagSet.Parse(args); err != nil {
		return fmt.Errorf("%w\n\nRun 'dutyctl --help' for usage.", err)
	}
	rest := flagSet.Args()
	if *help || len(rest) == 0 {
		printUsage(stdout, flagSet)
		return nil
	}

	cmd, ok := lookupCommand(rest[0])
	if !ok {
		return fmt.Errorf("unknown command %q\n\nRun 'dutyctl --help' for usage.", rest[0])
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if flagSet.Changed("api") {
		cfg.API.BaseURL = *apiURL
	}
	if flagSet.Changed("session-file") {
		cfg.Session.FilePath = *sessionFile
	}
	if flagSet.Changed("out") {
		cfg.Report.OutputDir = *outDir
	}
	switch {
	case *verbose:
		cfg.Logger.Level = "debug"
	case os.Getenv("LOG_LEVEL") == "":
		cfg.Logger.Level = "warn"
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	a, err := app.New(cfg, logger, app.Options{
		Notices: []service.NoticeFunc{func(_ context.Context, message string) {
			fmt.Fprintln(stderr, message)
		}},
	})
	if err != nil {
		return err
	}
	defer a.Close()

	a.Sessions.Initialize(ctx)
	if !cmd.public {
		verdict, user := a.Sessions.Admit(cmd.role)
		if verdict != auth.RenderChildren {
			return errors.New(verdictMessage(verdict, user, cmd.role))
		}
	}

	return cmd.run(ctx, &env{app: a, stdin: stdin, stdout: stdout, stderr: stderr}, rest[1:])
}

// verdictMessage explains why a command did not run.
func verdictMessage(verdict auth.Verdict, user *domain.Identity, role domain.Role) string {
	switch verdict {
	case auth.Wait:
		return "session is still loading, try again"
	case auth.RedirectLogin:
		return "not logged in; run 'dutyctl login' first"
	case auth.RedirectOwnDashboard:
		return fmt.Sprintf("this command is for %s accounts; you are logged in as %s (%s)", role, user.Username, user.Role)
	default:
		return "You do not have permission to run this command."
	}
}

// errorMessage returns the text printed for err. A session invalidation has
// already been announced by the notice hook.
func errorMessage(err error) string {
	if errors.Is(err, apperrors.ErrSessionInvalidated) {
		return ""
	}
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Message
	}
	return err.Error()
}
