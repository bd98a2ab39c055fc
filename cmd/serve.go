package cmd

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mevzuatgpt/mevzuatctl/internal/server"
	"github.com/mevzuatgpt/mevzuatctl/internal/utils"
	"github.com/mevzuatgpt/mevzuatctl/pkg/mgapi"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scan history dashboard",
	Long: `Starts a local web server over the saved scan history, with a proxy to
the remote queue status when the API is configured.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		listenAddr, _ := cmd.Flags().GetString("listen")

		db, err := openHistoryDB(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		// The queue proxy is optional; the dashboard works without it.
		var queue *mgapi.Client
		if client, err := newAPIClient(); err == nil {
			queue = client
		} else {
			utils.Log.Debugf("queue proxy disabled: %v", err)
		}

		srv := server.New(db, queue,
			viper.GetString("server.username"),
			viper.GetString("server.password"))
		return srv.Start(listenAddr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("listen", "127.0.0.1:8080", "HTTP listen address")
}
