package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/spice-budget/internal/cli"
	"github.com/Veraticus/spice-budget/internal/config"
	"github.com/Veraticus/spice-budget/internal/sheets"
)

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Authenticate with external services",
	}
	cmd.AddCommand(authSheetsCmd())
	return cmd
}

func authSheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Authenticate with Google Sheets",
		Long: `Authenticate with Google Sheets using OAuth2.

This opens a consent page, saves the resulting token next to your config
and records the refresh token in the config file so 'spice budget export'
can use it.`,
		RunE: runAuthSheets,
	}

	cmd.Flags().String("client-id", "", "OAuth2 Client ID (overrides config)")
	cmd.Flags().String("client-secret", "", "OAuth2 Client Secret (overrides config)")

	return cmd
}

func runAuthSheets(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	clientID := firstSet(cmd, "client-id", "sheets.client_id", "GOOGLE_SHEETS_CLIENT_ID")
	clientSecret := firstSet(cmd, "client-secret", "sheets.client_secret", "GOOGLE_SHEETS_CLIENT_SECRET")
	if clientID == "" || clientSecret == "" {
		return fmt.Errorf("OAuth2 credentials not found; set sheets.client_id and sheets.client_secret or pass --client-id and --client-secret")
	}

	dir, err := config.Dir()
	if err != nil {
		return err
	}
	tokenFile := filepath.Join(dir, "sheets-token.json")
	slog.Info("starting Google Sheets authentication", "token_file", tokenFile)

	token, err := sheets.GetOrCreateToken(ctx, sheets.OAuth2Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenFile:    tokenFile,
	})
	if err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	out := cmd.OutOrStdout()
	viper.Set("sheets.refresh_token", token.RefreshToken)
	if err := saveConfig(dir); err != nil {
		slog.Warn("failed to update config file with refresh token", "error", err)
		fmt.Fprintln(out, cli.FormatWarning("Could not save the refresh token; add it to config.yaml under sheets.refresh_token."))
		return nil
	}

	fmt.Fprintln(out, cli.FormatSuccess("Google Sheets is configured. Run 'spice budget export' to publish your budget."))
	return nil
}

// firstSet returns the flag value, then the viper key, then the environment
// variable, whichever is non-empty first.
func firstSet(cmd *cobra.Command, flag, key, env string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	if v := viper.GetString(key); v != "" {
		return v
	}
	return os.Getenv(env)
}

func saveConfig(dir string) error {
	configFile := viper.ConfigFileUsed()
	if configFile == "" {
		configFile = filepath.Join(dir, "config.yaml")
	}
	if err := os.MkdirAll(filepath.Dir(configFile), 0o750); err != nil {
		return err
	}
	return viper.WriteConfigAs(configFile)
}
