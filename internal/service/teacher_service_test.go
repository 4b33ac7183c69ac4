package service

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spec-kit/duty-attendance/internal/domain"
	"github.com/spec-kit/duty-attendance/internal/repository"
	apperrors "github.com/spec-kit/duty-attendance/pkg/util"
)

func TestFilterByStaffIDIgnoresCase(t *testing.T) {
	teachers := []domain.Teacher{
		{ID: "1", StaffID: "MATH-001"},
		{ID: "2", StaffID: "sci-002"},
		{ID: "3", StaffID: "Math-003"},
	}
	got := FilterByStaffID(teachers, "math")
	if len(got) != 2 || got[0].ID != "1" || got[1].ID != "3" {
		t.Fatalf("FilterByStaffID = %+v", got)
	}
	if len(FilterByStaffID(teachers, "  ")) != 3 {
		t.Fatal("blank term should keep everyone")
	}
}

func TestCreateTeacherSendsNestedPayload(t *testing.T) {
	var lists atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("POST /teachers/create/", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			User    map[string]any `json:"user"`
			Teacher map[string]any `json:"teacher"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.User["username"] != "carol" || body.Teacher["staff_id"] != "T-09" || body.Teacher["status"] != "active" {
			t.Errorf("body = %+v", body)
		}
		writeJSON(w, http.StatusCreated, map[string]any{"id": 9})
	})
	mux.HandleFunc("GET /teachers/", counted(&lists, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{{"id": 9, "user": map[string]any{"username": "carol"}, "staff_id": "T-09"}})
	}))
	svc := NewTeacherService(TeacherDependencies{TeacherRepo: repository.NewTeacherRepository(newHarness(t, mux, nil).gateway)})

	profile := domain.TeacherProfile{StaffID: "T-09", Department: "Science", DutyEligibility: true}
	err := svc.Create(context.Background(), domain.TeacherAccount{Username: "carol", Email: "carol@example.test", Password: "pw"}, profile)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if lists.Load() != 1 {
		t.Fatalf("reloads = %d, want 1", lists.Load())
	}
	if got := svc.Search("t-09"); len(got) != 1 || got[0].Username != "carol" {
		t.Fatalf("Search = %+v", got)
	}
}

func TestCreateTeacherRequiresFields(t *testing.T) {
	var calls atomic.Int32
	svc := NewTeacherService(TeacherDependencies{TeacherRepo: repository.NewTeacherRepository(
		newHarness(t, counted(&calls, func(w http.ResponseWriter, r *http.Request) {}), nil).gateway)})

	err := svc.Create(context.Background(), domain.TeacherAccount{Username: "carol"}, domain.NewTeacherProfile())
	if apperrors.KindOf(err) != apperrors.KindValidation {
		t.Fatalf("kind = %q, want validation", apperrors.KindOf(err))
	}
	if calls.Load() != 0 {
		t.Fatal("invalid input must not reach the backend")
	}
}

func TestDeleteTeacherFailureMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("DELETE /teachers/4/delete/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})
	svc := NewTeacherService(TeacherDependencies{TeacherRepo: repository.NewTeacherRepository(newHarness(t, mux, nil).gateway)})

	err := svc.Delete(context.Background(), "4")
	if got := apperrors.UserMessage(err); got != teacherDeleteFallback {
		t.Fatalf("message = %q", got)
	}
	if apperrors.StatusOf(err) != http.StatusForbidden {
		t.Fatalf("status = %d", apperrors.StatusOf(err))
	}
}

func TestReportSaveWritesNamedFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /report/teacher/4/pdf/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start_date") != "2024-01-01" || r.URL.Query().Get("end_date") != "2024-01-31" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		if r.Header.Get("Accept") != "application/pdf" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4 fake"))
	})
	dir := t.TempDir()
	svc := NewReportService(ReportDependencies{
		ReportRepo: repository.NewReportRepository(newHarness(t, mux, nil).gateway),
		OutputDir:  dir,
	})

	path, err := svc.Save(context.Background(), "4", date(t, "2024-01-01"), date(t, "2024-01-31"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if want := filepath.Join(dir, "report_4_2024-01-01_2024-01-31.pdf"); path != want {
		t.Fatalf("path = %q, want %q", path, want)
	}
	data, err := os.ReadFile(path)
	if err != nil || string(data) != "%PDF-1.4 fake" {
		t.Fatalf("file = %q, %v", data, err)
	}
}

func TestReportRequiresBothDates(t *testing.T) {
	var calls atomic.Int32
	svc := NewReportService(ReportDependencies{ReportRepo: repository.NewReportRepository(
		newHarness(t, counted(&calls, func(w http.ResponseWriter, r *http.Request) {}), nil).gateway)})

	_, err := svc.Download(context.Background(), "4", date(t, "2024-01-01"), time.Time{})
	if got := apperrors.UserMessage(err); got != ReportDatesRequired {
		t.Fatalf("message = %q", got)
	}
	if calls.Load() != 0 {
		t.Fatal("missing dates must not reach the backend")
	}
}

func TestReportSaveRejectsPathLikeIDs(t *testing.T) {
	var calls atomic.Int32
	dir := t.TempDir()
	svc := NewReportService(ReportDependencies{
		ReportRepo: repository.NewReportRepository(newHarness(t, counted(&calls, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("%PDF-1.4 fake"))
		}), nil).gateway),
		OutputDir: filepath.Join(dir, "reports"),
	})

	for _, id := range []domain.ID{"../x", `..\x`, "a/b", "..", ""} {
		_, err := svc.Save(context.Background(), id, date(t, "2024-01-01"), date(t, "2024-01-31"))
		if apperrors.KindOf(err) != apperrors.KindValidation || apperrors.UserMessage(err) != InvalidTeacherID {
			t.Fatalf("Save(%q) err = %v, want %q", id, err, InvalidTeacherID)
		}
	}
	if calls.Load() != 0 {
		t.Fatalf("backend calls = %d, want 0", calls.Load())
	}
	entries, err := os.ReadDir(dir)
	if err != nil || len(entries) != 0 {
		t.Fatalf("entries = %v, %v, want nothing written", entries, err)
	}
}

func TestReportFilenameHasNoSeparator(t *testing.T) {
	name := ReportFilename("../../etc/x", date(t, "2024-01-01"), date(t, "2024-01-31"))
	if strings.ContainsAny(name, `/\`) {
		t.Fatalf("ReportFilename = %q contains a separator", name)
	}
}

func TestReportFailureMessage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /report/teacher/4/pdf/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found."})
	})
	svc := NewReportService(ReportDependencies{ReportRepo: repository.NewReportRepository(newHarness(t, mux, nil).gateway)})

	_, err := svc.Download(context.Background(), "4", date(t, "2024-01-01"), date(t, "2024-01-31"))
	if got := apperrors.UserMessage(err); got != ReportFailedMessage {
		t.Fatalf("message = %q", got)
	}
}
