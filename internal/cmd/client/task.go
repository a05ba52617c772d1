package client

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	taskdclient "github.com/jona62/taskd/pkg/client"
)

// NewTaskCommand constructs the `task` command group and subcommands.
func NewTaskCommand() *cobra.Command {
	taskCmd := &cobra.Command{
		Use:   "task",
		Short: "Task operations (queue, inspect, delete, redrive)",
		Long: `Task operations against a running taskd instance.

Task Lifecycle:
  pending → [worker] → processing → completed
                          ↓ (fail, retries left)
                        pending
                          ↓ (fail, retries exhausted)
                        failed → [redrive] → pending

Commands:
  queue     Submit a new task
  get       Show one task by id
  list      List recent tasks
  delete    Remove a task in any state
  redrive   Reset a failed task to pending`,
	}

	taskCmd.AddCommand(
		newTaskQueueCommand(),
		newTaskGetCommand(),
		newTaskListCommand(),
		newTaskDeleteCommand(),
		newTaskRedriveCommand(),
	)
	return taskCmd
}

// newTaskQueueCommand constructs the `task queue` subcommand.
func newTaskQueueCommand() *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Queue a new task",
		RunE: func(cmd *cobra.Command, _ []string) error {
			taskType, _ := cmd.Flags().GetString("type")
			rawData, _ := cmd.Flags().GetString("data")

			data := map[string]any{}
			if rawData != "" {
				if err := json.Unmarshal([]byte(rawData), &data); err != nil {
					return fmt.Errorf("invalid --data: %w", err)
				}
			}

			return withClient(cmd.Context(), func(cli *taskdclient.Client) error {
				id, err := cli.QueueTask(cmd.Context(), taskType, data)
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "task_id:", id)
				return nil
			})
		},
	}
	queueCmd.Flags().StringP("type", "t", "", "Task type")
	queueCmd.Flags().StringP("data", "d", "", "Task payload as a JSON object")
	_ = queueCmd.MarkFlagRequired("type")
	return queueCmd
}

// newTaskGetCommand constructs the `task get` subcommand.
func newTaskGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id: %s", args[0])
			}
			return withClient(cmd.Context(), func(cli *taskdclient.Client) error {
				task, err := cli.GetTask(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), task)
			})
		},
	}
}

// newTaskListCommand constructs the `task list` subcommand.
func newTaskListCommand() *cobra.Command {
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List recent tasks",
		RunE: func(cmd *cobra.Command, _ []string) error {
			limit, _ := cmd.Flags().GetInt("limit")
			return withClient(cmd.Context(), func(cli *taskdclient.Client) error {
				tasks, err := cli.ListTasks(cmd.Context(), limit)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), tasks)
			})
		},
	}
	listCmd.Flags().Int("limit", 20, "Maximum tasks to return")
	return listCmd
}

// newTaskDeleteCommand constructs the `task delete` subcommand.
func newTaskDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id: %s", args[0])
			}
			return withClient(cmd.Context(), func(cli *taskdclient.Client) error {
				if err := cli.DeleteTask(cmd.Context(), id); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "deleted:", id)
				return nil
			})
		},
	}
}

// newTaskRedriveCommand constructs the `task redrive` subcommand.
func newTaskRedriveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "redrive <id>",
		Short: "Reset a failed task to pending",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid task id: %s", args[0])
			}
			return withClient(cmd.Context(), func(cli *taskdclient.Client) error {
				if err := cli.RedriveTask(cmd.Context(), id); err != nil {
					return err
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "redriven:", id)
				return nil
			})
		},
	}
}
