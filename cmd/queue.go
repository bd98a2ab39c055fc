package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mevzuatgpt/mevzuatctl/pkg/bulk"
	"github.com/mevzuatgpt/mevzuatctl/pkg/mevzuat"
	"github.com/mevzuatgpt/mevzuatctl/pkg/mgapi"
	"github.com/mevzuatgpt/mevzuatctl/pkg/scanner"
)

// queueCmd represents the queue command
var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Interact with the remote bulk-upload queue",
}

var queueSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Scan an institution and queue selected documents for upload",
	Long: `Runs a scan, picks documents, and submits them as one batch to the
remote ingestion queue. Items are picked with repeatable --select
"SECTION:ID" flags, or --all-missing for everything absent from the
MevzuatGPT store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		institution, _ := cmd.Flags().GetString("institution")
		detsis, _ := cmd.Flags().GetString("detsis")
		docType, _ := cmd.Flags().GetString("type")
		category, _ := cmd.Flags().GetString("category")
		selects, _ := cmd.Flags().GetStringArray("select")
		allMissing, _ := cmd.Flags().GetBool("all-missing")

		if institution == "" {
			return fmt.Errorf("please provide the institution id (-i flag)")
		}
		if len(selects) == 0 && !allMissing {
			return fmt.Errorf("nothing selected (use --select or --all-missing)")
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

		sel := bulk.NewSelection()
		for _, s := range selects {
			key, err := parseItemKey(s)
			if err != nil {
				return err
			}
			sel.Toggle(key)
		}
		if allMissing {
			for _, sec := range res.Sections {
				for _, it := range sec.Items {
					if !it.MevzuatGPT {
						sel.Toggle(mevzuat.ItemKey{Section: sec.Title, ID: it.ID})
					}
				}
			}
		}

		payload := bulk.BuildPayload(sel, res, bulk.Institution{
			ID:       institution,
			Detsis:   detsis,
			Type:     docType,
			Category: category,
		})
		if len(payload.Items) == 0 {
			fmt.Println("Nothing to queue.")
			return nil
		}

		ack, err := bulk.Submit(context.Background(), client, payload)
		if err != nil {
			return err
		}
		if !ack.OK {
			return fmt.Errorf("queue rejected the batch: %s", ack.Message)
		}
		fmt.Printf("Queued %d documents (batch %s)\n", len(payload.Items), payload.BatchID)
		if ack.Message != "" {
			fmt.Println(ack.Message)
		}
		return nil
	},
}

var queueStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the remote queue state",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newAPIClient()
		if err != nil {
			return err
		}
		snap, err := client.QueueStatus(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("pending: %d\nactive: %d\ncompleted: %d\nfailed: %d\n",
			snap.Pending, snap.Active, snap.Completed, snap.Failed)
		return nil
	},
}

var queueClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the remote queue",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			fmt.Print("This clears the remote queue for every client. Continue? [y/N] ")
			answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
			if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
				fmt.Println("Aborted.")
				return nil
			}
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}
		ack, err := client.ClearQueue(context.Background())
		if err != nil {
			return err
		}
		if !ack.OK {
			return fmt.Errorf("clear failed: %s", ack.Message)
		}
		fmt.Println("Queue cleared.")
		return nil
	},
}

// parseItemKey parses "SECTION:ID". Section titles may themselves contain
// colons, so the split is on the last one.
func parseItemKey(s string) (mevzuat.ItemKey, error) {
	i := strings.LastIndex(s, ":")
	if i <= 0 || i == len(s)-1 {
		return mevzuat.ItemKey{}, fmt.Errorf("invalid selection %q (want SECTION:ID)", s)
	}
	return mevzuat.ItemKey{Section: s[:i], ID: s[i+1:]}, nil
}

func init() {
	rootCmd.AddCommand(queueCmd)
	queueCmd.AddCommand(queueSubmitCmd)
	queueCmd.AddCommand(queueStatusCmd)
	queueCmd.AddCommand(queueClearCmd)

	queueSubmitCmd.Flags().StringP("institution", "i", "", "Institution id to scan")
	queueSubmitCmd.Flags().StringP("detsis", "d", "", "DETSİS number of the institution")
	queueSubmitCmd.Flags().StringP("type", "t", "", "Institution type (e.g. bakanlik)")
	queueSubmitCmd.Flags().StringP("category", "c", "mevzuat", "Document category for every queued job")
	queueSubmitCmd.Flags().StringArrayP("select", "s", nil, `Select one item as "SECTION:ID" (repeatable)`)
	queueSubmitCmd.Flags().Bool("all-missing", false, "Select every item missing from the MevzuatGPT store")

	queueClearCmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
}
