package cmd

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a task by id",
	Args:    cobra.ExactArgs(1),
	RunE:    runDelete,
}

var completeCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Complete (remove) a task by id",
	Long: `Complete a task. Tasks carry no completion status, so completing a
task removes it from the store.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(completeCmd)
}

func runDelete(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid task id %q", args[0])
	}

	s, err := openStore()
	if err != nil {
		return err
	}
	defer s.Close()

	existed, err := s.Delete(context.Background(), id)
	if err != nil {
		return err
	}
	if !existed {
		return fmt.Errorf("no task with id %d", id)
	}

	fmt.Printf("Removed task %d\n", id)
	return nil
}
