package commands

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/metagrid-io/console-client/internal/auth"
	"github.com/metagrid-io/console-client/internal/constants"
	"github.com/metagrid-io/console-client/internal/http"
)

// ErrLoginRejected is returned when the server denies the credentials.
var ErrLoginRejected = errors.New("login rejected")

// loginResponse is the wire shape of the auth endpoint's answer.
type loginResponse struct {
	Result string `json:"result"`
	Token  string `json:"token"`
	Error  string `json:"error,omitempty"`
}

// NewLoginCommand creates the login command.
func NewLoginCommand() *cobra.Command {
	var (
		apiEndpoint   string
		authenticator string
		username      string
		password      string
	)

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Login to the administration console",
		Long:  "Authenticate against the console REST API and store the session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiEndpoint == "" {
				apiEndpoint = viper.GetString("api")
			}

			if apiEndpoint == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("REST endpoint: ")
				apiEndpoint, _ = reader.ReadString('\n')
				apiEndpoint = strings.TrimSpace(apiEndpoint)
			}

			if apiEndpoint == "" {
				return ErrEndpointRequired
			}

			if username == "" {
				reader := bufio.NewReader(os.Stdin)
				fmt.Print("Username: ")
				username, _ = reader.ReadString('\n')
				username = strings.TrimSpace(username)
			}

			if username == "" {
				return ErrUsernameRequired
			}

			if password == "" {
				fmt.Print("Password: ")

				bytePassword, err := term.ReadPassword(int(syscall.Stdin))
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}

				password = string(bytePassword)

				fmt.Println()
			}

			token, err := login(apiEndpoint, authenticator, username, password)
			if err != nil {
				return err
			}

			err = persistSession(apiEndpoint, token)
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stdout, "Successfully logged in to %s\n", apiEndpoint)

			return nil
		},
	}

	cmd.Flags().StringVarP(&apiEndpoint, "api", "a", "", "REST endpoint URL")
	cmd.Flags().StringVar(&authenticator, "auth", "admin", "authenticator to log in through")
	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "password (prompted when omitted)")

	return cmd
}

// login posts the credentials to the auth endpoint and returns the session
// token. The request itself is unauthenticated.
func login(endpoint, authenticator, username, password string) (string, error) {
	httpClient := http.NewClient(endpoint, auth.NewStaticTokenManager(""))

	resp, err := httpClient.Post(context.Background(), "auth/login", map[string]string{
		"auth":     authenticator,
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}

	var result loginResponse

	err = json.Unmarshal(resp.Body, &result)
	if err != nil {
		return "", fmt.Errorf("parsing login response: %w", err)
	}

	if result.Result != "ok" || result.Token == "" {
		if result.Error != "" {
			return "", fmt.Errorf("%w: %s", ErrLoginRejected, result.Error)
		}

		return "", ErrLoginRejected
	}

	return result.Token, nil
}

// persistSession stores the endpoint and token in the config file.
func persistSession(endpoint, token string) error {
	viper.Set("api", endpoint)
	viper.Set("token", token)

	path := viper.ConfigFileUsed()
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("finding home directory: %w", err)
		}

		path = filepath.Join(home, ".admctl", "config.yml")
	}

	err := viper.WriteConfigAs(path)
	if err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	err = os.Chmod(path, constants.ConfigFilePerm)
	if err != nil {
		return fmt.Errorf("restricting config permissions: %w", err)
	}

	return nil
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the stored session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			endpoint := viper.GetString("api")

			err := persistSession(endpoint, "")
			if err != nil {
				return err
			}

			_, _ = os.Stdout.WriteString("Logged out\n")

			return nil
		},
	}
}
