package main

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/modcar/ingreso/internal/stubapi"
)

var (
	stubAddr      string
	stubFixtures  string
	stubDelay     time.Duration
	stubSlashless bool
)

var stubCmd = &cobra.Command{
	Use:   "stub",
	Short: "Serve a fake workshop API from fixtures",
	Long: "stub serves the catalog, lookup, parts and intake routes from a YAML fixture file " +
		"so the form can be used without a workshop server.",
	RunE: func(cmd *cobra.Command, args []string) error {
		fx, err := loadStubFixtures(stubFixtures)
		if err != nil {
			return err
		}

		log, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("init logging: %w", err)
		}
		defer func() { _ = log.Sync() }()

		gin.SetMode(gin.ReleaseMode)
		srv := stubapi.New(fx, stubapi.Options{Delay: stubDelay, SlashlessActions: stubSlashless}, log)
		return srv.ListenAndServe(cmd.Context(), stubAddr)
	},
}

func loadStubFixtures(path string) (stubapi.Fixtures, error) {
	if path == "" {
		return stubapi.DefaultFixtures()
	}
	return stubapi.LoadFixtures(path)
}

func init() {
	stubCmd.Flags().StringVar(&stubAddr, "addr", "127.0.0.1:8000", "listen address")
	stubCmd.Flags().StringVar(&stubFixtures, "fixtures", "", "fixture YAML file (default: built-in fixtures)")
	stubCmd.Flags().DurationVar(&stubDelay, "delay", 0, "delay added to every catalog answer")
	stubCmd.Flags().BoolVar(&stubSlashless, "slashless", false, "route the action catalog only without trailing slash")
}
