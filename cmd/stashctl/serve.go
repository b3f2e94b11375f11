package main

import (
	"github.com/danmuck/stashctl/internal/admin"
	"github.com/danmuck/stashctl/internal/host/sim"
	"github.com/danmuck/stashctl/internal/saveload"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newServeCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin server over a simulated host",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadAppConfig(*configPath)
			if err != nil {
				return err
			}
			log.Info().Str("path", *configPath).Str("key", cfg.Manager.Key).Msg("loaded stashctl config")

			host := sim.New(cfg.Sim)
			m, err := saveload.New(host, cfg.Manager)
			if err != nil {
				return err
			}
			host.OnCycleStart(m.OnCycleStart)

			return admin.New(cfg.AdminID, cfg.AdminAddr, cfg.CorsOrigins, m, host).Serve()
		},
	}
}
