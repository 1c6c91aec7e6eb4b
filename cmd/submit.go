package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/PavelKondratiev/zos-connector-plugin/internal/config"
	"github.com/PavelKondratiev/zos-connector-plugin/internal/dataset"
	"github.com/PavelKondratiev/zos-connector-plugin/internal/jes"
)

var (
	submitWait         bool
	submitTimeout      int
	submitMaxCC        string
	submitDelete       bool
	submitLogToConsole bool
	submitSaveLog      bool
	submitOutputDir    string
	submitExpandEnv    bool
)

var submitCmd = &cobra.Command{
	Use:   "submit <jcl-file> | <dataset(member)> | -",
	Short: "Submit JCL for execution",
	Long: `Submit a job from a local file, a PDS member, or stdin ("-").

With --wait the command polls JES until the job completes, captures the job
log, and fails (non-zero exit) unless the captured return code passes
--max-cc. Without --wait the command returns right after JES assigns a job
ID.`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().BoolVarP(&submitWait, "wait", "w", false, "wait for the job to complete")
	submitCmd.Flags().IntVar(&submitTimeout, "timeout", 0, "wait limit in minutes (0 = wait forever)")
	submitCmd.Flags().StringVar(&submitMaxCC, "max-cc", "0000", "highest return code accepted as success")
	submitCmd.Flags().BoolVar(&submitDelete, "delete", false, "purge the job from the spool after a successful run")
	submitCmd.Flags().BoolVar(&submitLogToConsole, "log-to-console", false, "print the captured job log")
	submitCmd.Flags().BoolVar(&submitSaveLog, "save-log", false, "save the captured job log to a file")
	submitCmd.Flags().StringVar(&submitOutputDir, "output-dir", ".", "directory for saved job logs")
	submitCmd.Flags().BoolVar(&submitExpandEnv, "expand-env", false, "expand ${VAR} references in the job text before submission")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	if submitTimeout < 0 {
		return fmt.Errorf("--timeout must be zero or positive, got %d", submitTimeout)
	}

	server, conn, err := openConnector(jes.WithLogPrefix(runPrefix()))
	if err != nil {
		return err
	}
	defer conn.Close()

	jcl, err := loadJCL(args[0], server)
	if err != nil {
		return err
	}
	if submitExpandEnv {
		jcl = os.ExpandEnv(jcl)
	}

	// SIGINT/SIGTERM abort the wait, reported as WAIT_INTERRUPTED.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var jobLog bytes.Buffer
	res := conn.Submit(ctx, jes.Request{
		JCL:       strings.NewReader(jcl),
		Wait:      submitWait,
		WaitLimit: time.Duration(submitTimeout) * time.Minute,
		DeleteLog: submitDelete,
		Log:       &jobLog,
	})

	printable := printableCode(res.CompletionCode, submitWait)
	reportOutcome(res, printable)

	if submitLogToConsole && jobLog.Len() > 0 {
		fmt.Print(jobLog.String())
	}
	if submitSaveLog && jobLog.Len() > 0 {
		if err := saveJobLog(server.Host, res, printable, jobLog.Bytes()); err != nil {
			logger.Errorf("failed to save job log: %v", err)
		}
	}

	if !acceptResult(res, server.InterfaceLevel1, submitWait, submitMaxCC) {
		return fmt.Errorf("z/OS job failed with CC %s", printable)
	}
	return nil
}

// runPrefix tags connector log lines with a short per-run ID.
func runPrefix() string {
	return fmt.Sprintf("[%s] ", uuid.NewString()[:8])
}

// loadJCL resolves the job text: "-" reads stdin, an existing path reads a
// local file, anything else must be a DATASET(MEMBER) reference fetched over
// plain FTP.
func loadJCL(source string, p *config.Profile) (string, error) {
	if source == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read job text from stdin: %w", err)
		}
		return string(data), nil
	}

	if _, err := os.Stat(source); err == nil {
		data, err := os.ReadFile(source)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", source, err)
		}
		return string(data), nil
	}

	dsn, member, err := dataset.ParseDSN(source)
	if err != nil {
		return "", err
	}

	client := dataset.NewClient(p.Host, p.Port, p.User, p.Password)
	if err := client.Connect(); err != nil {
		return "", err
	}
	defer client.Close()

	data, err := client.ReadMember(dsn, member)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// printableCode renders the completion code for reports and file names. A
// submission without --wait never captures a code and reports "0000";
// whitespace inside a code is squeezed out.
func printableCode(code string, waited bool) string {
	if !waited {
		return "0000"
	}
	return strings.Join(strings.Fields(code), "")
}

func reportOutcome(res jes.Result, printable string) {
	line, failed := reportLine(res, printable)
	if failed {
		logger.Error(line)
	} else {
		logger.Info(line)
	}
}

// reportLine renders the end-of-run report. Only a numeric captured RC counts
// as finished; abends get their own line and everything else, connector-level
// codes included, reads as a failure. failed says the line belongs on the
// error stream.
func reportLine(res jes.Result, printable string) (line string, failed bool) {
	name := res.JobName
	if name == "" {
		name = "UNKNOWN"
	}
	switch {
	case strings.HasPrefix(printable, jes.AbendPrefix):
		return fmt.Sprintf("z/OS job %s [%s] ABnormally ENDed. ABEND code = [%s]",
			name, res.JobID, printable), true
	case jes.IsNumeric(printable):
		return fmt.Sprintf("z/OS job %s [%s] processing finished. Captured RC = [%s]",
			name, res.JobID, printable), false
	default:
		return fmt.Sprintf("z/OS job %s [%s] processing failed. Reason: [%s]",
			name, res.JobID, printable), true
	}
}

// acceptResult decides whether the pipeline step passes. Level-1 gateways
// cannot report a code, so a successful run is taken at face value; so is a
// fire-and-forget submission.
func acceptResult(res jes.Result, level1, waited bool, threshold string) bool {
	if !res.Success {
		return false
	}
	if level1 || !waited {
		return true
	}
	return jes.Accepted(threshold, printableCode(res.CompletionCode, waited))
}

func logFileName(server string, res jes.Result, printable string) string {
	name := res.JobName
	if name == "" {
		name = "UNKNOWN"
	}
	return fmt.Sprintf("%s [%s] (%s - %s).log", name, printable, server, res.JobID)
}

func saveJobLog(server string, res jes.Result, printable string, content []byte) error {
	if err := os.MkdirAll(submitOutputDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", submitOutputDir, err)
	}
	path := filepath.Join(submitOutputDir, logFileName(server, res, printable))
	if err := os.WriteFile(path, content, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	logger.Infof("job log saved to %s", path)
	return nil
}
