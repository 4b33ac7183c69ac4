package gateway

import (
	"testing"

	"github.com/spec-kit/duty-attendance/internal/domain"
)

func TestDecodeListShapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want []domain.ID
	}{
		{"array", `[{"id":1},{"id":2}]`, []domain.ID{"1", "2"}},
		{"wrapped", `{"assignments":[{"id":3}]}`, []domain.ID{"3"}},
		{"results", `{"count":1,"results":[{"id":4}]}`, []domain.ID{"4"}},
		{"keyed", `{"10":{"id":10},"2":{"id":2},"note":"x"}`, []domain.ID{"2", "10"}},
		{"empty", ``, nil},
		{"null", `null`, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out []domain.DutyAssignment
			if err := DecodeList([]byte(tc.body), &out, "assignments"); err != nil {
				t.Fatalf("DecodeList: %v", err)
			}
			if len(out) != len(tc.want) {
				t.Fatalf("len = %d, want %d", len(out), len(tc.want))
			}
			for i, id := range tc.want {
				if out[i].ID != id {
					t.Errorf("out[%d].ID = %q, want %q", i, out[i].ID, id)
				}
			}
		})
	}
}

func TestDecodeListRejectsScalars(t *testing.T) {
	var out []domain.DutyAssignment
	if err := DecodeList([]byte(`42`), &out); err == nil {
		t.Fatal("expected error for scalar payload")
	}
}

func TestErrorDetail(t *testing.T) {
	cases := map[string]string{
		`{"error":"Already checked in today"}`: "Already checked in today",
		`{"detail":"Not found."}`:              "Not found.",
		`{"message":"bad"}`:                    "bad",
		`"plain"`:                              "plain",
		`<html>`:                               "",
		``:                                     "",
	}
	for body, want := range cases {
		if got := ErrorDetail([]byte(body)); got != want {
			t.Errorf("ErrorDetail(%q) = %q, want %q", body, got, want)
		}
	}
}

func TestValidationDetailFlattensFieldErrors(t *testing.T) {
	got, err := ValidationDetail([]byte(`{"start_date":["required"],"end_date":["must be after start","invalid"]}`))
	if err != nil {
		t.Fatalf("ValidationDetail: %v", err)
	}
	want := "Validation errors: end_date: must be after start, invalid. start_date: required. "
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}

	if _, err := ValidationDetail([]byte(`[]`)); err != ErrNoValidationDetail {
		t.Fatalf("err = %v, want ErrNoValidationDetail", err)
	}
}
