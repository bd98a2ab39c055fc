package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mevzuatgpt/mevzuatctl/internal/utils"
	"github.com/mevzuatgpt/mevzuatctl/pkg/mevzuat"
	"github.com/mevzuatgpt/mevzuatctl/pkg/mgapi"
	"github.com/mevzuatgpt/mevzuatctl/pkg/scanner"
	"github.com/mevzuatgpt/mevzuatctl/pkg/storage"
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan an institution and reconcile against both stores",
	Long: `Enumerates an institution's documents on mevzuat.gov.tr and marks each
one as present or missing in the MevzuatGPT and portal stores.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		institution, _ := cmd.Flags().GetString("institution")
		detsis, _ := cmd.Flags().GetString("detsis")
		docType, _ := cmd.Flags().GetString("type")
		asJSON, _ := cmd.Flags().GetBool("json")
		save, _ := cmd.Flags().GetBool("save")
		missingOnly, _ := cmd.Flags().GetBool("missing-only")

		if institution == "" {
			return fmt.Errorf("please provide the institution id (-i flag)")
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		sc := scanner.New(client, client, newPortal())
		res, err := sc.Run(context.Background(), mgapi.ScanRequest{
			InstitutionID: institution,
			Detsis:        detsis,
			Type:          docType,
		})
		if err != nil {
			return err
		}

		if save {
			if err := saveRun(institution, detsis, docType, res); err != nil {
				return err
			}
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		printResult(res, missingOnly)
		return nil
	},
}

func printResult(res *mevzuat.ScanResult, missingOnly bool) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "SECTION\tID\tTITLE\tMEVZUATGPT\tPORTAL")
	for _, sec := range res.Sections {
		for _, it := range sec.Items {
			if missingOnly && it.MevzuatGPT && it.Portal {
				continue
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				sec.Title, it.ID, it.Title, mark(it.MevzuatGPT), mark(it.Portal))
		}
	}
	w.Flush()

	fmt.Println()
	w = tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "SECTION\tTOTAL\tUPLOADED\tMISSING\t")
	for _, st := range res.Stats {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t\n", st.Title, st.Total, st.Uploaded, st.NotUploaded)
	}
	fmt.Fprintln(w, " \t \t \t \t")
	fmt.Fprintf(w, "TOTAL\t%d\t%d\t%d\t\n", res.TotalItems, res.UploadedCount, res.TotalItems-res.UploadedCount)
	w.Flush()
}

func mark(present bool) string {
	if present {
		return "yes"
	}
	return "MISSING"
}

// saveRun persists the reconciled result to the local history database,
// holding the cross-process lock for the duration of the write.
func saveRun(institution, detsis, docType string, res *mevzuat.ScanResult) error {
	dbPath, err := utils.GetAbsDBPath(viper.GetString("db.path"))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return err
	}

	lock, err := utils.NewDBLock(dbPath)
	if err != nil {
		return err
	}
	if err := lock.Lock(); err != nil {
		return err
	}
	defer lock.Unlock()

	db, err := storage.Open(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	runID, err := db.SaveRun(context.Background(), institution, detsis, docType, res)
	if err != nil {
		return err
	}
	utils.Log.Infof("scan saved as run %s", runID)
	return nil
}

func init() {
	rootCmd.AddCommand(scanCmd)

	scanCmd.Flags().StringP("institution", "i", "", "Institution id to scan")
	scanCmd.Flags().StringP("detsis", "d", "", "DETSİS number of the institution")
	scanCmd.Flags().StringP("type", "t", "", "Institution type (e.g. bakanlik)")
	scanCmd.Flags().BoolP("json", "j", false, "Print the reconciled result as JSON")
	scanCmd.Flags().BoolP("save", "s", false, "Save the run to the local history database")
	scanCmd.Flags().BoolP("missing-only", "m", false, "Only list items missing from at least one store")
}
