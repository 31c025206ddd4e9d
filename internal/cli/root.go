// Package cli implements the epc command line interface.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/epcdata/epc-client/pkg/auth"
	"github.com/epcdata/epc-client/pkg/client"
	"github.com/epcdata/epc-client/pkg/logging"
)

// NewRootCmd creates the root cobra command and wires up the subcommands.
func NewRootCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "epc",
		Short:   "Client for the EPC open data API",
		Long:    "epc searches, retrieves and downloads Energy Performance Certificate open data.",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			level, _ := cmd.Flags().GetString("log-level")
			pretty, _ := cmd.Flags().GetBool("pretty")
			logging.Setup(logging.Config{
				Level:  logging.LogLevel(level),
				Pretty: pretty,
				Output: os.Stderr,
			})
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().String("config", "", "path to the YAML config file (default ~/.epc/config.yaml)")
	cmd.PersistentFlags().String("base-url", client.DefaultBaseURL, "API base URL")
	cmd.PersistentFlags().String("redis", "", "Redis address for caching and shared pacing (optional)")
	cmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	cmd.PersistentFlags().Bool("pretty", false, "human-readable log output")

	cmd.AddCommand(
		newSearchCmd(),
		newCertificateCmd(),
		newRecommendationsCmd(),
		newFilesCmd(),
		newDownloadCmd(),
		newSchemaCmd(),
	)

	return cmd
}

// newClient builds an API client from the persistent flags.
func newClient(cmd *cobra.Command) (*client.Client, error) {
	configPath, _ := cmd.Flags().GetString("config")
	creds, err := auth.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load credentials (set %s/%s or a config file): %w",
			auth.EnvEmail, auth.EnvAPIKey, err)
	}

	cfg := client.DefaultConfig(creds)
	if baseURL, _ := cmd.Flags().GetString("base-url"); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if addr, _ := cmd.Flags().GetString("redis"); addr != "" {
		cfg.Redis = redis.NewClient(&redis.Options{Addr: addr})
	}

	return client.New(cfg)
}

// loadCredentials resolves credentials for commands that do not need a full
// client (bulk downloads).
func loadCredentials(cmd *cobra.Command) (auth.Credentials, error) {
	configPath, _ := cmd.Flags().GetString("config")
	return auth.Load(configPath)
}

// parseRecordType validates the record-type positional argument.
func parseRecordType(arg string) (client.RecordType, error) {
	rt := client.RecordType(strings.ToLower(arg))
	if !rt.Valid() {
		return "", fmt.Errorf("unknown record type %q (want domestic, non-domestic or display)", arg)
	}
	return rt, nil
}

// parseFilters converts repeated --filter key=value flags to a filter map.
func parseFilters(pairs []string) (map[string]string, error) {
	filters := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid filter %q (want key=value)", pair)
		}
		filters[key] = value
	}
	return filters, nil
}
