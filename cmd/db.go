package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mevzuatgpt/mevzuatctl/internal/utils"
	"github.com/mevzuatgpt/mevzuatctl/pkg/storage"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Interact with the local scan history database",
}

// dbPathCmd represents the path command
var dbPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the resolved database path",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return err
		}
		fmt.Println(dbPath)
		return nil
	},
}

// shellCmd represents the shell command
var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive shell to the database",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return err
		}

		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return fmt.Errorf("database file not found: %s", dbPath)
		}

		// Check if sqlite3 is in PATH
		sqlitePath, err := exec.LookPath("sqlite3")
		if err != nil {
			return fmt.Errorf("sqlite3 command not found in your PATH. Please install it to use the db shell")
		}

		// Print schema first
		fmt.Println("--> Database schema:")
		schemaCmd := exec.Command(sqlitePath, dbPath, ".schema")
		schemaCmd.Stdout = os.Stdout
		schemaCmd.Stderr = os.Stderr
		if err := schemaCmd.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: couldn't retrieve schema: %v\n", err)
		}
		fmt.Println("\n--> Starting interactive shell... (Ctrl+D to exit)")

		c := exec.Command(sqlitePath, dbPath)
		c.Stdin = os.Stdin
		c.Stdout = os.Stdout
		c.Stderr = os.Stderr

		return c.Run()
	},
}

// historyCmd represents the history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List saved scan runs, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		db, err := openHistoryDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.ListRuns(context.Background(), limit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No saved scans. Run 'mevzuatctl scan --save' first.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "RUN\tINSTITUTION\tDATE\tSECTIONS\tITEMS\tUPLOADED")
		for _, r := range runs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
				r.ID, r.InstitutionID, r.StartedAt.Format("2006-01-02 15:04"),
				r.TotalSections, r.TotalItems, r.UploadedCount)
		}
		return w.Flush()
	},
}

// dbStatsCmd represents the stats command
var dbStatsCmd = &cobra.Command{
	Use:   "stats [run-id]",
	Short: "Print per-section statistics of a saved run (latest by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openHistoryDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		var runID string
		if len(args) == 1 {
			runID = args[0]
		} else {
			latest, err := db.LatestRun(context.Background())
			if errors.Is(err, sql.ErrNoRows) {
				fmt.Println("No saved scans. Run 'mevzuatctl scan --save' first.")
				return nil
			}
			if err != nil {
				return err
			}
			runID = latest.ID
		}

		stats, err := db.RunStats(context.Background(), runID)
		if err != nil {
			return err
		}
		if len(stats) == 0 {
			return fmt.Errorf("no items recorded for run %s", runID)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
		fmt.Fprintln(w, "SECTION\tTOTAL\tUPLOADED\tMISSING\t")

		var total, uploaded, missing int
		for _, s := range stats {
			fmt.Fprintf(w, "%s\t%d\t%d\t%d\t\n", s.Title, s.Total, s.Uploaded, s.NotUploaded)
			total += s.Total
			uploaded += s.Uploaded
			missing += s.NotUploaded
		}

		fmt.Fprintln(w, " \t \t \t \t")
		fmt.Fprintf(w, "TOTAL\t%d\t%d\t%d\t\n", total, uploaded, missing)

		return w.Flush()
	},
}

func resolveDBPath(cmd *cobra.Command) (string, error) {
	flagPath, _ := dbCmd.PersistentFlags().GetString("dbpath")
	if flagPath != "" {
		return utils.GetAbsDBPath(flagPath)
	}
	return utils.GetAbsDBPath(viper.GetString("db.path"))
}

func openHistoryDB(cmd *cobra.Command) (*storage.DB, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("database file not found: %s", dbPath)
	}
	return storage.Open(dbPath)
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbPathCmd)
	dbCmd.AddCommand(shellCmd)
	dbCmd.AddCommand(historyCmd)
	dbCmd.AddCommand(dbStatsCmd)
	dbCmd.PersistentFlags().String("dbpath", "", "Path to SQLite DB file (overrides db.path from the config)")

	historyCmd.Flags().Int("limit", 20, "Maximum number of runs to list")
}
