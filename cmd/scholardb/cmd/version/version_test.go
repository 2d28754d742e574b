package version

import (
	"bytes"
	"encoding/json"
	"runtime"
	"strings"
	"testing"

	"github.com/ugoscholars/scholardb/internal/cmd/application"
)

func TestVersionText(t *testing.T) {
	cmd := NewCommand(&application.Mock{VersionFunc: func() string { return "1.2.3" }})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}
	if !strings.Contains(out.String(), "scholardb version 1.2.3") {
		t.Errorf("Unexpected output:\n%s", out.String())
	}
}

func TestVersionJSON(t *testing.T) {
	cmd := NewCommand(&application.Mock{OutputFormatFunc: func() string { return "json" }})
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(nil)
	if err := cmd.Execute(); err != nil {
		t.Fatalf("version failed: %v", err)
	}

	var info Info
	if err := json.Unmarshal(out.Bytes(), &info); err != nil {
		t.Fatalf("Output is not JSON: %v", err)
	}
	if info.Version != "dev" || info.GoVersion != runtime.Version() {
		t.Errorf("Unexpected info %+v", info)
	}
}
