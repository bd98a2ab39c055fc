package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mevzuatgpt/mevzuatctl/internal/utils"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `                                      _        _   _
  _ __ ___   _____   _______   _  __ _| |_ ___| |_| |
 | '_ ` + "`" + ` _ \ / _ \ \ / /_  / | | |/ _` + "`" + ` | __/ __| __| |
 | | | | | |  __/\ V / / /| |_| | (_| | || (__| |_| |
 |_| |_| |_|\___| \_/ /___|\__,_|\__,_|\__\___|\__|_|

`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mevzuatctl",
	Short: "Scan and reconciliation tooling for the MevzuatGPT document stores.",
	Long: LOGO + `mevzuatctl enumerates an institution's documents on mevzuat.gov.tr,
reconciles them against the MevzuatGPT and portal stores, and drives
single or bulk uploads for whatever is missing.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.mevzuatctl.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")

}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".mevzuatctl")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.mevzuatctl.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Set default empty values for all keys
	viper.SetDefault("api.url", "")
	viper.SetDefault("api.token", "")
	viper.SetDefault("portal.url", "")
	viper.SetDefault("portal.apikey", "")
	viper.SetDefault("server.username", "")
	viper.SetDefault("server.password", "")
	viper.SetDefault("db.path", "")

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)

}
