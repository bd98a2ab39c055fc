package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mevzuatgpt/mevzuatctl/internal/utils"
	"github.com/mevzuatgpt/mevzuatctl/pkg/mevzuat"
	"github.com/mevzuatgpt/mevzuatctl/pkg/mgapi"
	"github.com/mevzuatgpt/mevzuatctl/pkg/storage"
	"github.com/mevzuatgpt/mevzuatctl/pkg/uploader"
)

// uploadCmd represents the upload command
var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Upload a single document to one or both stores",
	Long: `Submits one document for ingestion. The mode flag selects the target:
m (MevzuatGPT only), p (portal only) or t (both stores).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		institution, _ := cmd.Flags().GetString("institution")
		detsis, _ := cmd.Flags().GetString("detsis")
		docType, _ := cmd.Flags().GetString("type")
		link, _ := cmd.Flags().GetString("link")
		name, _ := cmd.Flags().GetString("name")
		category, _ := cmd.Flags().GetString("category")
		modeString, _ := cmd.Flags().GetString("mode")
		useOcr, _ := cmd.Flags().GetBool("ocr")
		logAttempt, _ := cmd.Flags().GetBool("log")
		section, _ := cmd.Flags().GetString("section")
		itemID, _ := cmd.Flags().GetString("id")

		if institution == "" {
			return fmt.Errorf("please provide the institution id (-i flag)")
		}
		if link == "" || name == "" {
			return fmt.Errorf("please provide the document link and name (--link, --name)")
		}

		mode, err := uploader.ParseMode(modeString)
		if err != nil {
			return err
		}

		client, err := newAPIClient()
		if err != nil {
			return err
		}

		up := uploader.New(client)
		item := &mevzuat.ScanItem{ID: itemID, Title: name, Link: link}
		msg, err := up.Submit(context.Background(), item, mode, mgapi.UploadRequest{
			InstitutionID: institution,
			Link:          link,
			Category:      category,
			DocumentName:  name,
			Detsis:        detsis,
			Type:          docType,
			UseOcr:        useOcr,
		})

		if logAttempt {
			if logErr := logUpload(section, itemID, string(mode), err == nil, resultMessage(msg, err)); logErr != nil {
				utils.Log.Warnf("could not record upload attempt: %v", logErr)
			}
		}
		if err != nil {
			return err
		}

		if msg == "" {
			msg = "upload completed"
		}
		fmt.Println(msg)
		return nil
	},
}

func resultMessage(msg string, err error) string {
	if err != nil {
		return err.Error()
	}
	return msg
}

// logUpload appends one attempt to the local audit log.
func logUpload(section, itemID, mode string, success bool, message string) error {
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

	return db.LogUpload(context.Background(), section, itemID, mode, success, message)
}

func init() {
	rootCmd.AddCommand(uploadCmd)

	uploadCmd.Flags().StringP("institution", "i", "", "Institution id")
	uploadCmd.Flags().StringP("detsis", "d", "", "DETSİS number of the institution")
	uploadCmd.Flags().StringP("type", "t", "", "Institution type (e.g. bakanlik)")
	uploadCmd.Flags().String("link", "", "Document URL on mevzuat.gov.tr")
	uploadCmd.Flags().String("name", "", "Document name as it should be stored")
	uploadCmd.Flags().StringP("category", "c", "mevzuat", "Document category")
	uploadCmd.Flags().StringP("mode", "m", "t", "Target store: m, p or t")
	uploadCmd.Flags().Bool("ocr", false, "Force OCR during ingestion")
	uploadCmd.Flags().Bool("log", false, "Record the attempt in the local audit log")
	uploadCmd.Flags().String("section", "", "Section title, used only for the audit log")
	uploadCmd.Flags().String("id", "", "Item id, used only for the audit log")
}
