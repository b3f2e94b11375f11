package main

import (
	"context"
	"fmt"

	"github.com/danmuck/stashctl/internal/host/sim"
	"github.com/danmuck/stashctl/internal/saveload"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const simulateCycleLimit = 100000

func newSimulateCmd(configPath *string) *cobra.Command {
	var payload string
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Save a payload and load it back through a simulated host",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadAppConfig(*configPath)
			if err != nil {
				return err
			}
			got, err := simulate(cmd.Context(), cfg, payload)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), got)
			if got != payload {
				return fmt.Errorf("round trip mismatch: got %q want %q", got, payload)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&payload, "payload", "hello", "payload to persist")
	return cmd
}

func simulate(ctx context.Context, cfg appConfig, payload string) (string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	host := sim.New(cfg.Sim)
	m, err := saveload.New(host, cfg.Manager)
	if err != nil {
		return "", err
	}
	host.OnCycleStart(m.OnCycleStart)

	saved, err := m.Save(payload)
	if err != nil {
		return "", err
	}
	n, err := host.RunUntilIdle(ctx, simulateCycleLimit)
	if err != nil {
		return "", fmt.Errorf("save: %w", err)
	}
	if _, err := saved.Wait(ctx); err != nil {
		return "", err
	}
	log.Info().Int("cycles", n).Str("root", host.Files().Root()).Msg("save complete")

	loaded, err := m.Load()
	if err != nil {
		return "", err
	}
	n, err = host.RunUntilIdle(ctx, simulateCycleLimit)
	if err != nil {
		return "", fmt.Errorf("load: %w", err)
	}
	got, err := loaded.Wait(ctx)
	if err != nil {
		return "", err
	}
	log.Info().Int("cycles", n).Int("bytes", len(got)).Msg("load complete")
	return got, nil
}
