package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewTriggerCmd создаёт группу команд для управления triggers.
func NewTriggerCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trigger",
		Short: "Manage cron triggers",
	}

	cmd.AddCommand(
		newTriggerListCmd(clientFn, outputFn),
		newTriggerCreateCmd(clientFn, outputFn),
		newTriggerShowCmd(clientFn, outputFn),
		newTriggerUpdateCmd(clientFn, outputFn),
		newTriggerDeleteCmd(clientFn, outputFn),
		newTriggerEnableCmd(clientFn, outputFn),
		newTriggerDisableCmd(clientFn, outputFn),
	)

	return cmd
}

func newTriggerListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List triggers",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			triggers, err := client.ListTriggers()
			if err != nil {
				return err
			}

			headers := []string{"ID", "NAME", "CRON", "INTERVAL", "BRANCH", "ENABLED", "NEXT_DUE"}
			rows := make([][]string, len(triggers))
			for i, t := range triggers {
				rows[i] = []string{
					t.ID, t.Name, t.CronExpr, formatInterval(t.IntervalSec),
					t.Branch, strconv.FormatBool(t.Enabled), t.NextDueAt,
				}
			}

			out.Print(headers, rows, triggers)
			return nil
		},
	}
}

func newTriggerCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name string
	var cronExpr string
	var intervalSec int
	var timezone string
	var branch string
	var descriptorFile string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a cron trigger",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := CreateTriggerRequest{
				Name:        name,
				CronExpr:    cronExpr,
				IntervalSec: intervalSec,
				Timezone:    timezone,
				Branch:      branch,
				Enabled:     true,
			}

			if descriptorFile != "" {
				descriptor, err := readDescriptorFile(descriptorFile)
				if err != nil {
					return err
				}
				req.Descriptor = descriptor
			}

			trigger, err := client.CreateTrigger(req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Trigger created: %s", trigger.ID))
			out.Print(
				[]string{"ID", "NAME", "CRON", "INTERVAL", "BRANCH", "ENABLED"},
				[][]string{{
					trigger.ID, trigger.Name, trigger.CronExpr,
					formatInterval(trigger.IntervalSec), trigger.Branch,
					strconv.FormatBool(trigger.Enabled),
				}},
				trigger,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "Trigger name (required)")
	cmd.Flags().StringVar(&cronExpr, "cron", "", "Cron expression (e.g. '0 4 * * *')")
	cmd.Flags().IntVar(&intervalSec, "interval", 0, "Interval in seconds")
	cmd.Flags().StringVar(&timezone, "timezone", "", "Timezone (e.g. 'Europe/Moscow')")
	cmd.Flags().StringVar(&branch, "branch", "", "Branch for created pipelines (mainline if not specified)")
	cmd.Flags().StringVar(&descriptorFile, "descriptor-file", "", "Path to descriptor file (YAML or JSON)")
	cmd.MarkFlagRequired("name")

	return cmd
}

func newTriggerShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show trigger details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			trigger, err := client.GetTrigger(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "NAME", "CRON", "INTERVAL", "TIMEZONE", "BRANCH", "ENABLED", "NEXT_DUE"},
				[][]string{{
					trigger.ID, trigger.Name, trigger.CronExpr,
					formatInterval(trigger.IntervalSec), trigger.Timezone,
					trigger.Branch, strconv.FormatBool(trigger.Enabled), trigger.NextDueAt,
				}},
				trigger,
			)
			return nil
		},
	}
}

func newTriggerUpdateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name string
	var cronExpr string
	var intervalSec int
	var timezone string
	var branch string
	var descriptorFile string

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update a trigger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := UpdateTriggerRequest{}
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("cron") {
				req.CronExpr = &cronExpr
			}
			if cmd.Flags().Changed("interval") {
				req.IntervalSec = &intervalSec
			}
			if cmd.Flags().Changed("timezone") {
				req.Timezone = &timezone
			}
			if cmd.Flags().Changed("branch") {
				req.Branch = &branch
			}
			if descriptorFile != "" {
				descriptor, err := readDescriptorFile(descriptorFile)
				if err != nil {
					return err
				}
				req.Descriptor = descriptor
			}

			trigger, err := client.UpdateTrigger(args[0], req)
			if err != nil {
				return err
			}

			out.Success("Trigger updated")
			out.Print(
				[]string{"ID", "NAME", "CRON", "INTERVAL", "BRANCH", "ENABLED"},
				[][]string{{
					trigger.ID, trigger.Name, trigger.CronExpr,
					formatInterval(trigger.IntervalSec), trigger.Branch,
					strconv.FormatBool(trigger.Enabled),
				}},
				trigger,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New trigger name")
	cmd.Flags().StringVar(&cronExpr, "cron", "", "New cron expression")
	cmd.Flags().IntVar(&intervalSec, "interval", 0, "New interval in seconds")
	cmd.Flags().StringVar(&timezone, "timezone", "", "New timezone")
	cmd.Flags().StringVar(&branch, "branch", "", "New branch")
	cmd.Flags().StringVar(&descriptorFile, "descriptor-file", "", "Path to new descriptor file (YAML or JSON)")

	return cmd
}

func newTriggerDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a trigger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteTrigger(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Trigger deleted: %s", args[0]))
			return nil
		},
	}
}

func newTriggerEnableCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "enable ID",
		Short: "Enable a trigger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if _, err := client.EnableTrigger(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Trigger enabled: %s", args[0]))
			return nil
		},
	}
}

func newTriggerDisableCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "disable ID",
		Short: "Disable a trigger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if _, err := client.DisableTrigger(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Trigger disabled: %s", args[0]))
			return nil
		},
	}
}

func formatInterval(sec int) string {
	if sec <= 0 {
		return ""
	}
	return strconv.Itoa(sec) + "s"
}
