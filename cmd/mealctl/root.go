package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pageza/mealplanner/backend/internal/command"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	vocabulary string
	today      string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "mealctl",
		Short:         "Meal planner command tools",
		Long:          "mealctl shows how the meal planner understands plain-English commands without touching any data.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.vocabulary, "vocabulary", "", "YAML vocabulary file replacing the built-in tables")
	root.PersistentFlags().StringVar(&opts.today, "today", "", "resolve relative dates against this day (YYYY-MM-DD)")

	root.AddCommand(newInterpretCommand(opts))
	root.AddCommand(newSuggestCommand())
	root.AddCommand(newRulesCommand(opts))
	return root
}

func (o *rootOptions) interpreter() (*command.Interpreter, error) {
	var opts []command.Option
	if o.vocabulary != "" {
		vocab, err := command.LoadVocabulary(o.vocabulary)
		if err != nil {
			return nil, err
		}
		opts = append(opts, command.WithVocabulary(vocab))
	}
	if o.today != "" {
		day, err := time.Parse(command.DateLayout, o.today)
		if err != nil {
			return nil, fmt.Errorf("invalid --today %q: expected YYYY-MM-DD", o.today)
		}
		opts = append(opts, command.WithClock(func() time.Time { return day }))
	}
	return command.New(opts...), nil
}

func newInterpretCommand(opts *rootOptions) *cobra.Command {
	var compact bool
	cmd := &cobra.Command{
		Use:   "interpret <command...>",
		Short: "Print the intent a command is understood as",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := opts.interpreter()
			if err != nil {
				return err
			}
			text := strings.Join(args, " ")
			intent, err := in.Interpret(text)
			if errors.Is(err, command.ErrCommandNotRecognized) {
				for _, hint := range command.Suggestions(text) {
					fmt.Fprintln(cmd.ErrOrStderr(), "try:", hint)
				}
				return err
			}
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if !compact {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(command.Wrap(intent))
		},
	}
	cmd.Flags().BoolVar(&compact, "compact", false, "print JSON on a single line")
	return cmd
}

func newSuggestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <command...>",
		Short: "Print usage hints for a command",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hints := command.Suggestions(strings.Join(args, " "))
			if len(hints) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no suggestions; mention a recipe or your inventory")
				return nil
			}
			for _, hint := range hints {
				fmt.Fprintln(cmd.OutOrStdout(), hint)
			}
			return nil
		},
	}
}

func newRulesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the interpretation rules in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := opts.interpreter()
			if err != nil {
				return err
			}
			for i, action := range in.Rules() {
				fmt.Fprintf(cmd.OutOrStdout(), "%2d  %s\n", i+1, action)
			}
			return nil
		},
	}
}
