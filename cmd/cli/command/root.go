package command

// root.go defines the root command for blogctl and its global flags.

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"bloghub/cmd/cli/authentication"
	"bloghub/cmd/cli/command/client"
)

var (
	apiURL string // global flag for API server URL
	token  string // bearer token; falls back to the keyring
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "blogctl",
	Short: "blogctl - bloghub administration tool",
	Long: `blogctl manages a bloghub installation.

Database commands (migrate, seed, reap) read the same environment as the API
server (DATABASE_URL, ADMIN_EMAIL, REAPER_MAX_AGE, ...).
API commands (login, comments) talk to a running server.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", "", "access token (defaults to the one saved by login)")
}

// GetAuthenticatedClient returns an API client carrying the flag token or
// the stored one.
func GetAuthenticatedClient() (*client.HTTPClient, error) {
	httpClient := client.NewHTTPClient(apiURL)
	if token != "" {
		httpClient.SetToken(token)
		return httpClient, nil
	}
	session, err := authentication.Load(apiURL, time.Now())
	if err != nil {
		return nil, fmt.Errorf("%w (run blogctl login or pass --token)", err)
	}
	httpClient.SetToken(session.AccessToken)
	return httpClient, nil
}
