package command

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"bloghub/cmd/cli/authentication"
	"bloghub/cmd/cli/command/client"
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login and store the access token in the system keyring",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		httpClient := client.NewHTTPClient(apiURL)
		response, err := httpClient.Login(&client.LoginRequest{Email: email, Password: password})
		if err != nil {
			return fmt.Errorf("login process failed: %w", err)
		}

		session := authentication.NewSession(response.AccessToken, email, response.ExpiresIn, time.Now())
		if err := authentication.Save(apiURL, session); err != nil {
			return fmt.Errorf("store token: %w", err)
		}

		fmt.Println("✓ Successfully logged in!")
		if response.User != nil {
			fmt.Printf("Role: %s\n", response.User.Role)
		}
		fmt.Printf("Session valid until %s\n", session.ExpiresAt.Local().Format("2006-01-02 15:04"))
		return nil
	},
}

// logoutCmd represents the logout command
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored access token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := authentication.Forget(apiURL); err != nil {
			return fmt.Errorf("delete token: %w", err)
		}
		fmt.Println("✓ Successfully logged out.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)

	loginCmd.Flags().StringP("email", "e", "", "Account email")
	loginCmd.Flags().StringP("password", "p", "", "Account password")
	loginCmd.MarkFlagRequired("email")
	loginCmd.MarkFlagRequired("password")
}
