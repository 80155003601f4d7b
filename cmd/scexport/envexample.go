package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

func generateEnvExample(cmd *cobra.Command) error {
	fmt.Println("Generating .env.example file from current configuration...")

	content := generateEnvExampleContent(cmd)

	if err := os.WriteFile(".env.example", []byte(content), 0600); err != nil {
		return fmt.Errorf("failed to write .env.example: %w", err)
	}

	fmt.Println("✅ Successfully generated .env.example file")
	return nil
}

func generateEnvExampleContent(cmd *cobra.Command) string {
	var content strings.Builder

	content.WriteString("# =============================================================================\n")
	content.WriteString("# scexport Configuration\n")
	content.WriteString("# =============================================================================\n")
	content.WriteString("#\n")
	content.WriteString("# Copy this file to .env and update with your values\n")
	content.WriteString("# All environment variables have CLI flag equivalents (use --help to see them)\n")
	content.WriteString("#\n")
	content.WriteString("# Format: SCEXPORT_<SECTION>_<SETTING>=value\n")
	content.WriteString("# CLI equivalent: --<section>-<setting>\n")
	content.WriteString("#\n\n")

	generateSection(&content, cmd, "Browser - live Chrome tab used by 'scexport watch'",
		"browser-headless", "browser-exec-path", "browser-sync-interval-ms")
	generateSection(&content, cmd, "Buttons - mount retries and gestures",
		"retry-schedule", "long-press-ms", "press-limit-per-minute", "language")
	generateSection(&content, cmd, "Storage - settings and collection",
		"storage-path")
	generateSection(&content, cmd, "HTTP Server - health, metrics and collection",
		"server-enabled", "server-host", "server-port")
	generateSection(&content, cmd, "Logging",
		"log-level", "log-format")

	return content.String()
}

func generateSection(content *strings.Builder, cmd *cobra.Command, title string, flagNames ...string) {
	content.WriteString("# -----------------------------------------------------------------------------\n")
	fmt.Fprintf(content, "# %s\n", title)
	content.WriteString("# -----------------------------------------------------------------------------\n")
	fmt.Fprintf(content, "# CLI: --%s\n", strings.Join(flagNames, ", --"))

	for _, name := range flagNames {
		f := cmd.PersistentFlags().Lookup(name)
		if f == nil {
			continue
		}
		fmt.Fprintf(content, "%s=%s    # %s (default: %s)\n", flagToEnvVar(name), f.DefValue, f.Usage, f.DefValue)
	}
	content.WriteString("\n")
}

func flagToEnvVar(flagName string) string {
	return envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}
