// Package config implements the config command for validating client
// configuration files.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cloudlens/advisor/internal/config"
	"github.com/cloudlens/advisor/pkg/pathutil"
)

var configFile string

// NewConfigCommand creates the config command.
func NewConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate configuration files",
	}

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Validate a client configuration file",
		Example: `  advisor config validate --config configs/acme.yaml`,
		RunE:    runValidate,
	}
	validate.Flags().StringVarP(&configFile, "config", "c", "", "Configuration file to validate (required)")
	_ = validate.MarkFlagRequired("config")

	cmd.AddCommand(validate)

	return cmd
}

func runValidate(cmd *cobra.Command, args []string) error {
	validPath, err := pathutil.ValidateConfigPath(configFile)
	if err != nil {
		return fmt.Errorf("invalid config path: %w", err)
	}

	fmt.Printf("🔍 Validating configuration: %s\n\n", validPath) //nolint:forbidigo

	cfg, err := config.LoadConfig(validPath)
	if err != nil {
		return fmt.Errorf("configuration is invalid: %w", err)
	}

	printValidationResults(cfg)

	fmt.Println("\n✅ Configuration is valid!") //nolint:forbidigo
	return nil
}

//nolint:forbidigo // Validation results go straight to the terminal.
func printValidationResults(cfg *config.Config) {
	// Client information
	fmt.Println("📋 Client Information:")
	fmt.Printf("   Name: %s\n", cfg.Client.Name)
	fmt.Printf("   Environment: %s\n", cfg.Client.Environment)

	// Ingest settings
	fmt.Println("\n📥 Ingest Settings:")
	fmt.Printf("   Default currency: %s\n", cfg.Ingest.DefaultCurrency)
	fmt.Printf("   Top recommendations: %d\n", cfg.Ingest.TopN)
	if len(cfg.Ingest.Encodings) > 0 {
		fmt.Printf("   Encodings: %s\n", strings.Join(cfg.Ingest.Encodings, ", "))
	}

	// Header aliases
	if len(cfg.HeaderAliases) > 0 {
		fmt.Printf("\n🏷️  Header Aliases: %d configured\n", len(cfg.HeaderAliases))
		for field, aliases := range cfg.HeaderAliases {
			fmt.Printf("   %s: %s\n", field, strings.Join(aliases, ", "))
		}
	}

	// Storage locations
	fmt.Println("\n💾 Storage:")
	fmt.Printf("   Data directory: %s\n", cfg.Storage.DataDir)
	fmt.Printf("   Database: %s\n", cfg.Database.Path)

	// Archive configuration
	if cfg.Archive != nil {
		fmt.Println("\n☁️  Archive:")
		fmt.Printf("   Bucket: %s\n", cfg.Archive.Bucket)
		if cfg.Archive.Prefix != "" {
			fmt.Printf("   Prefix: %s\n", cfg.Archive.Prefix)
		}
		if cfg.Archive.Region != "" {
			fmt.Printf("   Region: %s\n", cfg.Archive.Region)
		}
		if cfg.Archive.Endpoint != "" {
			fmt.Printf("   Endpoint: %s\n", cfg.Archive.Endpoint)
		}
	}
}
