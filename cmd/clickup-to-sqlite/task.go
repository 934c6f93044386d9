package main

import (
	"encoding/json"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/spf13/cobra"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Inspect single tasks",
}

var taskShowCmd = &cobra.Command{
	Use:   "show TASK_ID",
	Short: "Fetch a task and print it as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		subtasks, _ := cmd.Flags().GetBool("subtasks")

		token, err := resolveToken()
		if err != nil {
			return err
		}
		client, err := newClient(token)
		if err != nil {
			return err
		}

		task, err := client.GetTask(cmd.Context(), args[0], subtasks)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(task); err != nil {
			return goerr.Wrap(err, "failed to encode task", goerr.V("task_id", args[0]))
		}
		return nil
	},
}

func init() {
	taskShowCmd.Flags().Bool("subtasks", false, "include subtasks")

	taskCmd.AddCommand(taskShowCmd)
	rootCmd.AddCommand(taskCmd)
}
