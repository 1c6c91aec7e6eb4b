package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/PavelKondratiev/zos-connector-plugin/internal/jes"
)

var jobsOutput bool

var jobsCmd = &cobra.Command{
	Use:   "jobs [jobid]",
	Short: "List jobs or show job status/output",
	Long: `List the JES queue for the logged-in user, or show the status or
spool output of a specific job.`,
	RunE: runJobs,
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.Flags().BoolVarP(&jobsOutput, "output", "o", false, "print job output (requires jobid)")
}

func runJobs(cmd *cobra.Command, args []string) error {
	_, conn, err := openConnector()
	if err != nil {
		return err
	}
	defer conn.Close()

	if len(args) > 0 {
		jobid := args[0]

		if jobsOutput {
			return conn.FetchLog(jobid, os.Stdout)
		}

		job, err := conn.GetJobStatus(jobid)
		if err != nil {
			return err
		}
		printJobDetail(job)
		return nil
	}

	if jobsOutput {
		return fmt.Errorf("--output requires a jobid")
	}

	jobs, err := conn.ListJobs()
	if err != nil {
		return err
	}

	if len(jobs) == 0 {
		fmt.Println("No jobs found")
		return nil
	}

	printJobList(jobs)
	return nil
}

func printJobList(jobs []jes.JobStatus) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "JOBNAME\tJOBID\tOWNER\tSTATUS\tRC")
	for _, j := range jobs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", j.JobName, j.JobID, j.Owner, j.Status, j.RetCode)
	}
	w.Flush()
}

func printJobDetail(job *jes.JobStatus) {
	fmt.Printf("Job ID:    %s\n", job.JobID)
	fmt.Printf("Job Name:  %s\n", job.JobName)
	fmt.Printf("Owner:     %s\n", job.Owner)
	fmt.Printf("Status:    %s\n", job.Status)
	if job.RetCode != "" {
		fmt.Printf("Return:    %s\n", job.RetCode)
	}
	if job.Class != "" {
		fmt.Printf("Class:     %s\n", job.Class)
	}
}
