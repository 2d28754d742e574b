package studentids

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/ugoscholars/scholardb"
	"github.com/ugoscholars/scholardb/internal/cmd/application"
	"github.com/ugoscholars/scholardb/internal/store/memory"
	"github.com/ugoscholars/scholardb/pkg/errors"
	"github.com/ugoscholars/scholardb/pkg/records"
	"github.com/ugoscholars/scholardb/pkg/studentid"
)

func mockApp(s *memory.Store) *application.Mock {
	return &application.Mock{
		ClientFunc: func(ctx context.Context, opts ...scholardb.Option) (scholardb.Client, error) {
			return scholardb.New(ctx, append(opts, scholardb.WithStore(s))...)
		},
		OutputFormatFunc: func() string { return "json" },
	}
}

func seeded() *memory.Store {
	return memory.New("scholars", records.FromValues("Master_Database", [][]string{
		{"id", "Full_Name", "Source_Sheet", "Student_ID"},
		{"1", "Ram Thapa", "C2", ""},
		{"2", "Sita Rai", "Database", ""},
		{"3", "Hari Karki", "C1", "UGO_C1_007"},
	}))
}

func run(t *testing.T, s *memory.Store, args ...string) (*studentid.Report, error) {
	t.Helper()
	cmd := NewCommand(mockApp(s))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		return nil, err
	}
	var report studentid.Report
	if err := json.Unmarshal(out.Bytes(), &report); err != nil {
		t.Fatalf("Output is not JSON: %v\n%s", err, out.String())
	}
	return &report, nil
}

func TestStudentIDs(t *testing.T) {
	s := seeded()
	report, err := run(t, s)
	if err != nil {
		t.Fatalf("student-ids failed: %v", err)
	}
	if report.Updated != 2 || report.Sequence != 9 {
		t.Errorf("Expected 2 updated up to sequence 9, got %+v", report)
	}
	if len(report.Defaulted) != 1 || report.Defaulted[0].Name != "Sita Rai" {
		t.Errorf("Expected Sita Rai to default, got %+v", report.Defaulted)
	}

	master, err := s.Read(context.Background(), "Master_Database")
	if err != nil {
		t.Fatalf("Failed to read master: %v", err)
	}
	if got := master.Rows[0]["Student_ID"]; got != "UGO_C2_008" {
		t.Errorf("Expected UGO_C2_008, got %q", got)
	}
}

func TestStudentIDsStrict(t *testing.T) {
	s := seeded()
	_, err := run(t, s, "--strict")
	if !errors.IsValidationError(err) {
		t.Fatalf("Expected validation error, got %v", err)
	}
	if s.Writes() != 0 {
		t.Errorf("Strict failure wrote the store")
	}
}

func TestStudentIDsResetDryRun(t *testing.T) {
	s := seeded()
	report, err := run(t, s, "--reset", "--dry-run")
	if err != nil {
		t.Fatalf("student-ids failed: %v", err)
	}
	if report.Updated != 3 || report.Sequence != 3 {
		t.Errorf("Expected reset to renumber 3 rows, got %+v", report)
	}
	if s.Writes() != 0 {
		t.Errorf("Dry run wrote the store")
	}
}
