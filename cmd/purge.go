package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var purgeCmd = &cobra.Command{
	Use:   "purge <jobid>",
	Short: "Delete a job and its output from the spool",
	Args:  cobra.ExactArgs(1),
	RunE:  runPurge,
}

func init() {
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) error {
	_, conn, err := openConnector()
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := conn.PurgeJob(args[0]); err != nil {
		return fmt.Errorf("failed to purge %s: %w", args[0], err)
	}

	fmt.Printf("Job %s purged\n", args[0])
	return nil
}
