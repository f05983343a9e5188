package output

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrinter_PlainOutput(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinterWithWriters(&out, &errOut, false, false)

	p.Success("logged in as %s", "a@b.com")
	p.Warning("session expired")
	p.Error("boom")
	p.Field("Role", "artisan")

	if got := out.String(); !strings.Contains(got, "[OK] logged in as a@b.com") {
		t.Errorf("stdout = %q, want success line", got)
	}
	if got := out.String(); !strings.Contains(got, "Role:        artisan") {
		t.Errorf("stdout = %q, want aligned field", got)
	}
	if got := errOut.String(); !strings.Contains(got, "[WARN] session expired") || !strings.Contains(got, "[ERROR] boom") {
		t.Errorf("stderr = %q, want warning and error", got)
	}
}

func TestPrinter_QuietKeepsErrors(t *testing.T) {
	var out, errOut bytes.Buffer
	p := NewPrinterWithWriters(&out, &errOut, false, true)

	p.Info("hidden")
	p.Header("hidden")
	p.Error("shown")

	if out.Len() != 0 {
		t.Errorf("quiet printer wrote %q to stdout", out.String())
	}
	if !strings.Contains(errOut.String(), "shown") {
		t.Errorf("quiet printer must still print errors, got %q", errOut.String())
	}
}

func TestColorsEnabled(t *testing.T) {
	t.Setenv("TERM", "xterm")
	if !ColorsEnabled(true) {
		t.Error("ColorsEnabled(true) should be true without NO_COLOR")
	}

	t.Setenv("NO_COLOR", "")
	if ColorsEnabled(true) {
		t.Error("NO_COLOR must disable colours")
	}
}

func TestTable_Render(t *testing.T) {
	var out bytes.Buffer
	p := NewPrinterWithWriters(&out, &out, false, false)
	table := NewPrinterTable(p, []string{"Stat", "Value"})
	table.AddRow("Requests", "5")
	table.AddRow("Accepted", "3")

	if err := table.Render(); err != nil {
		t.Fatalf("render: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", table.Len())
	}
	for _, want := range []string{"Requests", "Accepted", "5"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("table output %q missing %q", out.String(), want)
		}
	}
}

func TestStatusBadgePlain(t *testing.T) {
	p := NewPrinterWithWriters(&bytes.Buffer{}, &bytes.Buffer{}, false, false)
	if got := p.Status("pending"); got != "[pending]" {
		t.Errorf("Status(pending) = %q", got)
	}
}
