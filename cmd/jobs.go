/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/valpere/peredoc/internal/store"
)

var jobsDBPath string

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect recorded translation jobs",
	Long: `Inspect the job history recorded with "translate --db".

Each translate run saves one job row plus per-chunk diagnostics (which
backend served the chunk, how many attempts, latency, error if any).`,
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded jobs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(jobsDBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		jobs, err := db.ListJobs(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list jobs: %w", err)
		}
		if len(jobs) == 0 {
			fmt.Println("No jobs recorded")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tFILE\tLANGS\tSTATUS\tCHUNKS\tFAILED\tCREATED")
		for _, j := range jobs {
			fmt.Fprintf(w, "%s\t%s\t%s->%s\t%s\t%d\t%d\t%s\n",
				j.ID, j.InputFile, j.SourceLang, j.TargetLang, j.Status,
				j.ChunkCount, j.FailedChunks, j.CreatedAt.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show per-chunk diagnostics for a job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := store.New(jobsDBPath)
		if err != nil {
			return err
		}
		defer db.Close()

		chunks, err := db.GetChunkResults(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("failed to load chunk results: %w", err)
		}
		if len(chunks) == 0 {
			fmt.Printf("No chunk records for job %s\n", args[0])
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
		fmt.Fprintln(w, "CHUNK\tBACKEND\tATTEMPTS\tLATENCY\tERROR")
		for _, c := range chunks {
			backend := c.Backend
			if backend == "" {
				backend = "-"
			}
			errMsg := c.Error
			if errMsg == "" {
				errMsg = "-"
			}
			fmt.Fprintf(w, "%d\t%s\t%d\t%dms\t%s\n", c.Index, backend, c.Attempts, c.LatencyMs, errMsg)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsShowCmd)

	jobsCmd.PersistentFlags().StringVar(&jobsDBPath, "db", "peredoc.db", "SQLite path for job history")
}
