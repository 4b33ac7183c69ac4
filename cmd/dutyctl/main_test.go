package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spec-kit/duty-attendance/internal/auth/authtest"
	"github.com/spec-kit/duty-attendance/internal/domain"
)

type cliHarness struct {
	backend     *httptest.Server
	sessionFile string
	outDir      string
}

func newCLI(t *testing.T, backend http.Handler) *cliHarness {
	t.Helper()
	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)
	t.Setenv("SESSION_BACKEND", "file")
	t.Setenv("SESSION_PASSPHRASE", "")
	t.Setenv("LOG_LEVEL", "error")
	dir := t.TempDir()
	return &cliHarness{
		backend:     srv,
		sessionFile: filepath.Join(dir, "session.json"),
		outDir:      filepath.Join(dir, "reports"),
	}
}

func (h *cliHarness) run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--api", h.backend.URL, "--session-file", h.sessionFile, "--out", h.outDir}, args...)
	err := run(context.Background(), full, strings.NewReader(stdin), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func loginHandler(t *testing.T, role domain.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "s3cret" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"detail": "No active account"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"access":  authtest.Valid(t, body["username"], role),
			"refresh": "refresh-" + body["username"],
		})
	}
}

func TestCommandsRequireLogin(t *testing.T) {
	var calls atomic.Int32
	backend := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusOK, []any{})
	})
	h := newCLI(t, backend)

	_, _, err := h.run(t, "", "teachers")
	if err == nil || !strings.Contains(err.Error(), "not logged in") {
		t.Fatalf("err = %v, want not logged in", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("backend calls = %d, want 0", calls.Load())
	}
}

func TestLoginPersistsAcrossInvocations(t *testing.T) {
	backend := http.NewServeMux()
	backend.HandleFunc("POST /login/", loginHandler(t, domain.RoleAdmin))
	backend.HandleFunc("GET /teachers/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"id": 1, "user": map[string]any{"username": "alice"}, "staff_id": "MATH-1"},
			{"id": 2, "user": map[string]any{"username": "bob"}, "staff_id": "SCI-2"},
		})
	})
	h := newCLI(t, backend)

	stdout, _, err := h.run(t, "s3cret\n", "login", "root", "--password-stdin")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !strings.Contains(stdout, "Logged in as root (admin)") {
		t.Fatalf("login stdout = %q", stdout)
	}

	stdout, _, err = h.run(t, "", "teachers", "--search", "sci")
	if err != nil {
		t.Fatalf("teachers: %v", err)
	}
	if !strings.Contains(stdout, "bob") || strings.Contains(stdout, "alice") {
		t.Fatalf("teachers stdout = %q", stdout)
	}

	if _, _, err := h.run(t, "", "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}
	stdout, _, err = h.run(t, "", "whoami")
	if err != nil || !strings.Contains(stdout, "Not logged in") {
		t.Fatalf("whoami after logout: %q, %v", stdout, err)
	}
}

func TestLoginRejectedLeavesNoSession(t *testing.T) {
	backend := http.NewServeMux()
	backend.HandleFunc("POST /login/", loginHandler(t, domain.RoleAdmin))
	h := newCLI(t, backend)

	_, _, err := h.run(t, "wrong\n", "login", "root", "--password-stdin")
	if err == nil || errorMessage(err) != "Invalid credentials!" {
		t.Fatalf("err = %v, want invalid credentials", err)
	}
	if _, statErr := os.Stat(h.sessionFile); !os.IsNotExist(statErr) {
		t.Fatalf("session file should not exist, stat err = %v", statErr)
	}
}

func TestTeacherCannotRunAdminCommands(t *testing.T) {
	backend := http.NewServeMux()
	backend.HandleFunc("POST /login/", loginHandler(t, domain.RoleTeacher))
	backend.HandleFunc("POST /attendance/check-in/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusCreated, map[string]any{"message": "Checked in"})
	})
	backend.HandleFunc("GET /attendance/my/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []any{})
	})
	h := newCLI(t, backend)

	if _, _, err := h.run(t, "s3cret\n", "login", "tina", "--password-stdin"); err != nil {
		t.Fatalf("login: %v", err)
	}

	_, _, err := h.run(t, "", "periods")
	if err == nil || !strings.Contains(err.Error(), "logged in as tina (teacher)") {
		t.Fatalf("err = %v, want role refusal", err)
	}

	stdout, _, err := h.run(t, "", "check-in")
	if err != nil {
		t.Fatalf("check-in: %v", err)
	}
	if strings.TrimSpace(stdout) == "" {
		t.Fatal("check-in should print a message")
	}
}

func TestReportSavedToOutDir(t *testing.T) {
	backend := http.NewServeMux()
	backend.HandleFunc("POST /login/", loginHandler(t, domain.RoleAdmin))
	backend.HandleFunc("GET /report/teacher/{id}/pdf/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 " + r.PathValue("id")))
	})
	h := newCLI(t, backend)
	if _, _, err := h.run(t, "s3cret\n", "login", "root", "--password-stdin"); err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, _, err := h.run(t, "", "report", "7", "--start", "2024-01-01"); err == nil {
		t.Fatal("report without --end should fail")
	}

	stdout, _, err := h.run(t, "", "report", "7", "--start", "2024-01-01", "--end", "2024-01-31")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	path := filepath.Join(h.outDir, "report_7_2024-01-01_2024-01-31.pdf")
	if !strings.Contains(stdout, path) {
		t.Fatalf("stdout = %q, want %s", stdout, path)
	}
	content, err := os.ReadFile(path)
	if err != nil || string(content) != "%PDF-1.4 7" {
		t.Fatalf("report content = %q, %v", content, err)
	}
}

func TestUnknownCommand(t *testing.T) {
	h := newCLI(t, http.NotFoundHandler())
	if _, _, err := h.run(t, "", "frobnicate"); err == nil || !strings.Contains(err.Error(), `unknown command "frobnicate"`) {
		t.Fatalf("err = %v", err)
	}
	stdout, _, err := h.run(t, "", "--help")
	if err != nil || !strings.Contains(stdout, "period-create") {
		t.Fatalf("help = %q, %v", stdout, err)
	}
}
