package main

import (
	"context"
	"encoding/json"
	"os"

	"github.com/spf13/cobra"
)

var trainCmd = &cobra.Command{
	Use:   "train [commodity]",
	Short: "Fit and store models without starting the server",
	Long: `Fits the forecasting model for one commodity (substring match, like POST /train/{commodity})
or, without an argument, for every commodity (like POST /train-all). The result is printed as JSON.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		c, err := build(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer c.Close()

		var result interface{}
		if len(args) == 1 {
			result, err = c.training.Train(ctx, args[0])
		} else {
			result, err = c.training.TrainAll(ctx)
		}
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}
