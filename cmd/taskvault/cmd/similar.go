package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var similarLimit int

var similarCmd = &cobra.Command{
	Use:     "similar <query>",
	Aliases: []string{"search"},
	Short:   "Find tasks similar to a query",
	Long: `Find tasks similar to a query. With an embedding provider configured
results are ordered by cosine distance (closest first); otherwise this is a
substring search on task names ordered by recency.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func init() {
	similarCmd.Flags().IntVarP(&similarLimit, "limit", "k", 5, "Maximum number of results")
	rootCmd.AddCommand(similarCmd)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	tasks, err := s.FindSimilar(context.Background(), args[0], similarLimit)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("No matching tasks")
		return nil
	}

	for _, t := range tasks {
		if t.SimilarityDistance != nil {
			fmt.Printf("%4d  (distance %.4f)  %s\n", t.ID, *t.SimilarityDistance, t.Name)
		} else {
			fmt.Printf("%4d  %s\n", t.ID, t.Name)
		}
	}
	return nil
}
