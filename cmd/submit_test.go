package cmd

import (
	"strings"
	"testing"

	"github.com/PavelKondratiev/zos-connector-plugin/internal/jes"
)

func TestPrintableCode(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		waited bool
		want   string
	}{
		{"no wait forces clean code", "", false, "0000"},
		{"numeric rc", "0008", true, "0008"},
		{"abend", "ABEND_S0C7", true, "ABEND_S0C7"},
		{"spaces squeezed out", "NO_RC - JESINTERFACELEVEL_IS_1", true, "NO_RC-JESINTERFACELEVEL_IS_1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := printableCode(tt.code, tt.waited)
			if got != tt.want {
				t.Errorf("printableCode(%q, %v) = %q, want %q", tt.code, tt.waited, got, tt.want)
			}
		})
	}
}

func TestAcceptResult(t *testing.T) {
	done := func(cc string) jes.Result {
		return jes.Result{Success: true, JobID: "JOB00001", JobName: "MYJOB", CompletionCode: cc}
	}

	tests := []struct {
		name      string
		res       jes.Result
		level1    bool
		waited    bool
		threshold string
		want      bool
	}{
		{"clean waited run", done("0000"), false, true, "0000", true},
		{"rc above threshold", done("0008"), false, true, "0000", false},
		{"rc within raised threshold", done("0008"), false, true, "8", true},
		{"abend rejected at any threshold", done("ABEND_S0C7"), false, true, "9999", false},
		{"jcl error rejected", done(jes.CodeJCLError), false, true, "9999", false},
		{"level1 run taken at face value", done(jes.CodeNoRCLevel1), true, true, "0000", true},
		{"fire and forget taken at face value", done(""), false, false, "0000", true},
		{
			name:      "failed submission never accepted",
			res:       jes.Result{Success: false, CompletionCode: jes.CodeCouldNotConnect},
			threshold: "9999",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := acceptResult(tt.res, tt.level1, tt.waited, tt.threshold)
			if got != tt.want {
				t.Errorf("acceptResult(%+v, %v, %v, %q) = %v, want %v",
					tt.res, tt.level1, tt.waited, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestReportLine(t *testing.T) {
	done := func(cc string) jes.Result {
		return jes.Result{Success: true, JobID: "JOB00001", JobName: "MYJOB", CompletionCode: cc}
	}

	tests := []struct {
		name       string
		res        jes.Result
		printable  string
		wantText   string
		wantFailed bool
	}{
		{
			name:      "numeric rc reads as finished",
			res:       done("0000"),
			printable: "0000",
			wantText:  "processing finished. Captured RC = [0000]",
		},
		{
			name:       "abend gets the abend line",
			res:        done("ABEND_S0C7"),
			printable:  "ABEND_S0C7",
			wantText:   "ABnormally ENDed. ABEND code = [ABEND_S0C7]",
			wantFailed: true,
		},
		{
			name:       "jcl error reads as failure",
			res:        done(jes.CodeJCLError),
			printable:  jes.CodeJCLError,
			wantText:   "processing failed. Reason: [JCL_ERROR]",
			wantFailed: true,
		},
		{
			name:       "non-numeric status reads as failure",
			res:        done("FLUSHED"),
			printable:  "FLUSHED",
			wantText:   "processing failed. Reason: [FLUSHED]",
			wantFailed: true,
		},
		{
			name:       "connector-level code reads as failure",
			res:        jes.Result{CompletionCode: jes.CodeCouldNotConnect},
			printable:  jes.CodeCouldNotConnect,
			wantText:   "processing failed. Reason: [COULD_NOT_CONNECT]",
			wantFailed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			line, failed := reportLine(tt.res, tt.printable)
			if !strings.Contains(line, tt.wantText) {
				t.Errorf("reportLine() = %q, want it to contain %q", line, tt.wantText)
			}
			if failed != tt.wantFailed {
				t.Errorf("reportLine() failed = %v, want %v", failed, tt.wantFailed)
			}
		})
	}
}

func TestSubmitRejectsNegativeTimeout(t *testing.T) {
	old := submitTimeout
	submitTimeout = -5
	defer func() { submitTimeout = old }()

	err := runSubmit(submitCmd, []string{"job.jcl"})
	if err == nil || !strings.Contains(err.Error(), "--timeout") {
		t.Errorf("runSubmit error = %v, want a --timeout usage error", err)
	}
}

func TestLogFileName(t *testing.T) {
	got := logFileName("zos.example.com", jes.Result{JobID: "JOB01234", JobName: "NIGHTLY"}, "0000")
	want := "NIGHTLY [0000] (zos.example.com - JOB01234).log"
	if got != want {
		t.Errorf("logFileName() = %q, want %q", got, want)
	}

	got = logFileName("zos.example.com", jes.Result{JobID: "JOB01234"}, "ABEND_S0C7")
	want = "UNKNOWN [ABEND_S0C7] (zos.example.com - JOB01234).log"
	if got != want {
		t.Errorf("logFileName() without a name = %q, want %q", got, want)
	}
}
