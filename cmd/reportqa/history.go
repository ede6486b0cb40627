package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raporgen/reportqa/internal/config"
	"github.com/raporgen/reportqa/internal/state"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent QA runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		db, err := state.Open(config.GetHistoryPath(cfg))
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer db.Close()

		runs, err := db.ListRuns(historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("no recorded runs")
			return nil
		}

		fmt.Printf("%-10s %-12s %-10s %-10s %-10s %-10s %s\n",
			"RUN", "SECTOR", "SECTIONS", "IMPROVED", "AVG", "VALID", "WHEN")
		for _, r := range runs {
			fmt.Printf("%-10s %-12s %-10d %-10d %-10.1f %-10d %s\n",
				r.ID, r.Sector, r.SectionCount, r.ImprovedCount, r.AverageScore,
				r.ValidationScore, r.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list")
}
