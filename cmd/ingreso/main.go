package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/modcar/ingreso/internal/app"
)

var version = "0.1.0"

var rootOpts app.Options

var rootCmd = &cobra.Command{
	Use:   "ingreso",
	Short: "Terminal intake form for the repair shop",
	Long: "ingreso records a vehicle intake: pick components from the checklist or the diagram, " +
		"choose the labour actions for each, attach parts and save the intake to the workshop API.",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return app.Run(cmd.Context(), rootOpts)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ingreso %s\n", version)
	},
}

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&rootOpts.ConfigPath, "config", "", "config file (default ~/.config/ingreso/config.toml)")
	flags.StringVar(&rootOpts.PrefsPath, "prefs", "", "preferences file (default ~/.config/ingreso/prefs.toml)")
	flags.StringVar(&rootOpts.BaseURL, "url", "", "workshop API base URL")
	flags.StringVarP(&rootOpts.DiagnosticoID, "diagnostico", "d", "", "diagnostic id the intake belongs to")
	flags.StringSliceVarP(&rootOpts.Preselect, "preselect", "p", nil, "component ids or diagram codes selected at start")
	flags.StringVar(&rootOpts.PartsJSON, "repuestos-json", "", "parts already attached, as a repuestos_json array")
	flags.BoolVar(&rootOpts.PromptVehicle, "vehiculo", false, "ask for the vehicle before starting")
	flags.StringVar(&rootOpts.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(stubCmd)
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "ingreso: %v\n", err)
		return 1
	}
	return 0
}
