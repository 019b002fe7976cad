package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	httpcmd "github.com/paneworks/glassdesk_backend/cmd/http"
	systemcmd "github.com/paneworks/glassdesk_backend/cmd/system"
	workercmd "github.com/paneworks/glassdesk_backend/cmd/worker"
)

var (
	cfgFile string
)

var rootCmd = &cobra.Command{
	Use:   "glassdesk",
	Short: "GlassDesk back office for windshield repair businesses.",
	Long: `GlassDesk is the back office service for windshield repair businesses.
It tracks repairs, technicians and customers, and keeps everyone informed
through email, SMS and in-app notifications.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global config flag, available for all commands.
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "config file path")

	// Attach top-level command trees.
	rootCmd.AddCommand(systemcmd.NewSystemCommand())
	rootCmd.AddCommand(httpcmd.NewHTTPCommand())
	rootCmd.AddCommand(workercmd.NewWorkerCommand())
}
