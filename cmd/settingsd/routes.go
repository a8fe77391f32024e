package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/horockey/settingsapp/internal/gateway/view_modules/embedded_view_modules"
	"github.com/horockey/settingsapp/internal/router"
	"github.com/horockey/settingsapp/internal/routes"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func NewRoutesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "routes",
		Short: "Print settings route table",
		Args:  cobra.NoArgs,
		RunE:  runRoutes,
	}

	cmd.Flags().Bool("json", false, "Output in JSON format")
	return cmd
}

func runRoutes(cmd *cobra.Command, _ []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	nav, err := router.New(routes.Settings(), embedded_view_modules.New(), zerolog.Nop())
	if err != nil {
		return fmt.Errorf("compiling routes: %w", err)
	}

	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(nav.Routes()); err != nil {
			return fmt.Errorf("encoding routes: %w", err)
		}
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0) //nolint: mnd
	fmt.Fprintln(tw, "PATH\tNAME\tMODULES")
	for _, rt := range nav.Routes() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", rt.Path, rt.Name, strings.Join(rt.Modules, " > "))
	}
	return tw.Flush()
}
