package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danmuck/stashctl/internal/codec"
	"github.com/spf13/cobra"
)

func newCodecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codec",
		Short: "Pack text into channel units or unpack units back to text",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "encode <text>",
			Short: "Print the packed units for text",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				fmt.Fprintln(cmd.OutOrStdout(), formatUnits(codec.PackText(args[0])))
				return nil
			},
		},
		&cobra.Command{
			Use:   "decode <unit>...",
			Short: "Print the text carried by packed units",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				units, err := parseUnits(args)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), codec.UnpackText(units...))
				return nil
			},
		},
	)
	return cmd
}

func formatUnits(units []int64) string {
	parts := make([]string, len(units))
	for i, u := range units {
		parts[i] = strconv.FormatInt(u, 10)
	}
	return strings.Join(parts, " ")
}

func parseUnits(args []string) ([]int64, error) {
	units := make([]int64, 0, len(args))
	for _, arg := range args {
		for _, field := range strings.FieldsFunc(arg, func(r rune) bool { return r == ',' || r == ' ' }) {
			v, err := strconv.ParseInt(field, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse unit %q: %w", field, err)
			}
			units = append(units, v)
		}
	}
	return units, nil
}
