package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/horockey/settingsapp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func NewStampCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stamp [key=value ...]",
		Short: "Record store update time",
		Long:  `Writes current time under the "updated" key of the store and prints it paired with given data.`,
		RunE:  runStamp,
	}

	cmd.Flags().String("badger-dir", "./badger", "Badger root dir")
	return cmd
}

func runStamp(cmd *cobra.Command, args []string) (resErr error) {
	dir, _ := cmd.Flags().GetString("badger-dir")

	data, err := parseData(args)
	if err != nil {
		return err
	}

	app, err := settingsapp.NewApp(
		settingsapp.WithBadgerDir(dir),
		settingsapp.WithLogger(zerolog.Nop()),
	)
	if err != nil {
		return fmt.Errorf("creating app: %w", err)
	}
	defer func() {
		resErr = errors.Join(resErr, app.Close())
	}()

	res, err := app.UpdateStore(cmd.Context(), data)
	if err != nil {
		return fmt.Errorf("updating store: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	return nil
}

// No args means omitted data.
func parseData(args []string) (map[string]any, error) {
	if len(args) == 0 {
		return nil, nil
	}

	data := make(map[string]any, len(args))
	for _, arg := range args {
		k, v, found := strings.Cut(arg, "=")
		if !found || k == "" {
			return nil, fmt.Errorf("invalid pair %q, expected key=value", arg)
		}
		data[k] = v
	}

	return data, nil
}
