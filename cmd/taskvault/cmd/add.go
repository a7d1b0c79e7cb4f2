package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskvault/taskvault/core"
	"github.com/taskvault/taskvault/store"
)

var (
	addPriority int
	addDue      string
	addContext  string
	addForce    bool
)

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a task, skipping near-duplicates",
	Long: `Add a task. Before inserting, the store is searched for a similar
existing task; when one is found within the duplicate threshold the new task
is skipped. Use --force to insert regardless.

Examples:
  taskvault add "Reply to Bob about budget" --priority 1 --due 2026-09-01
  taskvault add "Submit report" --context "From: alice@example.com" --force`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().IntVarP(&addPriority, "priority", "p", int(core.PriorityMedium), "Priority: 1=high, 2=medium, 3=low")
	addCmd.Flags().StringVar(&addDue, "due", "", "Due date (YYYY-MM-DD)")
	addCmd.Flags().StringVar(&addContext, "context", "", "Email or other context text")
	addCmd.Flags().BoolVarP(&addForce, "force", "f", false, "Insert even if a near-duplicate exists")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	ctx := context.Background()
	task := core.TaskInput{
		Name:     args[0],
		Priority: core.Priority(addPriority),
		DueDate:  addDue,
	}

	if addForce {
		rec, err := s.Add(ctx, task, addContext)
		if err != nil {
			return err
		}
		fmt.Printf("Added task %d: %s (%s)\n", rec.ID, rec.Name, rec.Priority)
		return nil
	}

	res, err := store.NewDeduper(s).Ingest(ctx, task, addContext)
	if err != nil {
		return err
	}
	if res.Skipped {
		fmt.Printf("Skipped duplicate of task %d: %s (distance %.4f)\n",
			res.DuplicateOf.ID, res.DuplicateOf.Name, *res.DuplicateOf.SimilarityDistance)
		return nil
	}

	fmt.Printf("Added task %d: %s (%s)\n", res.Record.ID, res.Record.Name, res.Record.Priority)
	return nil
}
