package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/viant/gator"
	"github.com/viant/gator/service/coordinator"
)

// newRuntime assembles a runtime from the persistent flags. Commands sharing
// a --db path also share the action state across invocations.
func newRuntime(cmd *cobra.Command) (*gator.Runtime, error) {
	config := gator.DefaultConfig()
	if db := cmd.Flag("db").Value.String(); db != "" {
		config.Store.Driver = gator.StoreSQLite
		config.Store.Location = db
	}
	if journal := cmd.Flag("journal").Value.String(); journal != "" {
		config.Events.JournalURL = journal
	}
	service, err := gator.NewFromConfig(config)
	if err != nil {
		return nil, err
	}
	return service.Runtime(), nil
}

func askCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Propose and execute tool actions for a question",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}
	cmd.Flags().String("actor", "cli", "actor identifier")
	cmd.Flags().String("role", "operator", "actor role (viewer, operator, admin)")
	cmd.Flags().String("trace", "", "trace identifier; generated when empty")
	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	runtime, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer runtime.Close()

	actor, _ := cmd.Flags().GetString("actor")
	role, _ := cmd.Flags().GetString("role")
	trace, _ := cmd.Flags().GetString("trace")
	response, err := runtime.Ask(cmd.Context(), &coordinator.AskRequest{
		Question: strings.Join(args, " "),
		TraceID:  trace,
		ActorID:  actor,
		Role:     role,
	})
	if err != nil {
		return err
	}
	return printJSON(cmd, response)
}

func approveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve [action-id]",
		Short: "Approve, reject or retry a pending action",
		Args:  cobra.ExactArgs(1),
		RunE:  runApprove,
	}
	cmd.Flags().String("by", "cli", "approver identifier")
	cmd.Flags().String("as", "", "approver role")
	cmd.Flags().Bool("reject", false, "reject instead of approving")
	cmd.Flags().Bool("retry", false, "retry a failed action")
	cmd.Flags().Bool("force", false, "reclaim a stale running action")
	return cmd
}

func runApprove(cmd *cobra.Command, args []string) error {
	runtime, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer runtime.Close()

	by, _ := cmd.Flags().GetString("by")
	as, _ := cmd.Flags().GetString("as")
	reject, _ := cmd.Flags().GetBool("reject")
	retry, _ := cmd.Flags().GetBool("retry")
	force, _ := cmd.Flags().GetBool("force")
	approve := !reject
	response, err := runtime.Approve(cmd.Context(), &coordinator.ApproveRequest{
		ActionID:     args[0],
		ApprovedBy:   by,
		ApprovedRole: as,
		Approve:      &approve,
		Retry:        retry,
		Force:        force,
	})
	if err != nil {
		return err
	}
	return printJSON(cmd, response)
}

func actionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "actions",
		Short: "List actions, optionally scoped to a trace",
		Args:  cobra.NoArgs,
		RunE:  runActions,
	}
	cmd.Flags().String("trace", "", "trace identifier filter")
	return cmd
}

func runActions(cmd *cobra.Command, args []string) error {
	runtime, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer runtime.Close()

	trace, _ := cmd.Flags().GetString("trace")
	actions, err := runtime.Actions(cmd.Context(), trace)
	if err != nil {
		return err
	}
	return printJSON(cmd, actions)
}

func printJSON(cmd *cobra.Command, payload interface{}) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}
