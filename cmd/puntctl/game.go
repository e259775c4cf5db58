package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tyler180/punt-outcomes/internal/ingest"
	"github.com/tyler180/punt-outcomes/internal/store"
)

var gameKey int

var gameCmd = &cobra.Command{
	Use:   "game",
	Short: "Print the stored outcomes for one game",
	Long: `Reads every play of --game-key back from the OUTCOMES_TABLE DynamoDB
table and prints them as outcome CSV.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.OutcomesTable == "" {
			return fmt.Errorf("game needs OUTCOMES_TABLE")
		}
		clients, err := loadAWS(cmd.Context())
		if err != nil {
			return err
		}
		plays, err := store.LoadGameOutcomes(cmd.Context(), clients.DDB, cfg.OutcomesTable, gameKey)
		if err != nil {
			return err
		}
		if len(plays) == 0 {
			return fmt.Errorf("no outcomes stored for game %d", gameKey)
		}
		return ingest.WriteOutcomesCSV(cmd.OutOrStdout(), plays)
	},
}

func init() {
	gameCmd.Flags().IntVar(&gameKey, "game-key", 0, "league game key")
	_ = gameCmd.MarkFlagRequired("game-key")
}
