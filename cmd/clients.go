package cmd

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/mevzuatgpt/mevzuatctl/pkg/mgapi"
	"github.com/mevzuatgpt/mevzuatctl/pkg/whttp"
)

// newAPIClient builds the backend client from config, honoring the global
// proxy flag.
func newAPIClient() (*mgapi.Client, error) {
	if proxy, _ := rootCmd.PersistentFlags().GetString("proxy"); proxy != "" {
		if err := whttp.SetProxy(proxy); err != nil {
			return nil, err
		}
	}

	baseURL := viper.GetString("api.url")
	if baseURL == "" {
		return nil, fmt.Errorf("no API URL configured (set api.url in ~/.mevzuatctl.yaml)")
	}
	return mgapi.NewClient(baseURL, mgapi.StaticToken(viper.GetString("api.token"))), nil
}

// newPortal builds the portal metadata client, or nil when not configured.
// A missing portal store degrades scans, it does not block them.
func newPortal() *mgapi.Portal {
	baseURL := viper.GetString("portal.url")
	if baseURL == "" {
		return nil
	}
	return mgapi.NewPortal(baseURL, viper.GetString("portal.apikey"))
}
