package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"fieldinspect/internal/api"
)

func parseReturnID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid return id %q", arg)
	}
	return id, nil
}

func newInitCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "init <return-id>",
		Short: "Create the inspection checklist for a planting return",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			returnID, err := parseReturnID(args[0])
			if err != nil {
				return err
			}
			return ctx.withBackend(cmd, func(c context.Context, backend inspectionBackend) error {
				resp, err := backend.Initialize(c, returnID)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Return #%d: %s\n", returnID, resp.Message)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func newSubmitCommand(ctx *commandContext) *cobra.Command {
	var (
		typeID     int64
		taskID     int64
		decision   string
		comment    string
		inputPairs []string
		inputsJSON string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:   "submit <return-id>",
		Short: "Record a stage decision",
		Long: `Record a decision for one inspection stage of a return.

Decisions are accepted, rejected, provisional, or skipped. The final stage
only takes accepted or rejected. Field data is passed with repeated
--input key=value flags or as a JSON object with --inputs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			returnID, err := parseReturnID(args[0])
			if err != nil {
				return err
			}
			req := api.SubmitStageRequest{
				TaskID:           taskID,
				InspectionTypeID: typeID,
				Decision:         strings.TrimSpace(decision),
			}
			if cmd.Flags().Changed("comment") {
				req.Comment = &comment
			}
			inputs, err := parseInputs(inputsJSON, inputPairs)
			if err != nil {
				return err
			}
			req.Inputs = inputs

			return ctx.withBackend(cmd, func(c context.Context, backend inspectionBackend) error {
				resp, err := backend.Submit(c, returnID, req)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, resp)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Return #%d: %s\n", returnID, resp.Message)
				fmt.Fprintf(out, "Stage %d recommendation: %s\n", resp.StageID, label(resp.Recommendation))
				return nil
			})
		},
	}

	cmd.Flags().Int64Var(&typeID, "type", 0, "Inspection type (stage template) id")
	cmd.Flags().Int64Var(&taskID, "task", 0, "Stage instance id, when known")
	cmd.Flags().StringVarP(&decision, "decision", "d", "", "Decision: accepted, rejected, provisional, or skipped")
	cmd.Flags().StringVarP(&comment, "comment", "m", "", "Inspector comment")
	cmd.Flags().StringArrayVarP(&inputPairs, "input", "i", nil, "Field value as key=value (repeatable)")
	cmd.Flags().StringVar(&inputsJSON, "inputs", "", "Field values as a JSON object")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("decision")
	return cmd
}

// parseInputs merges a JSON object with key=value pairs; pairs win. It
// returns nil when neither is given so stored inputs are kept.
func parseInputs(raw string, pairs []string) (map[string]any, error) {
	if strings.TrimSpace(raw) == "" && len(pairs) == 0 {
		return nil, nil
	}
	inputs := map[string]any{}
	if strings.TrimSpace(raw) != "" {
		if err := json.Unmarshal([]byte(raw), &inputs); err != nil {
			return nil, fmt.Errorf("parse --inputs: %w", err)
		}
	}
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --input %q (want key=value)", pair)
		}
		inputs[key] = value
	}
	return inputs, nil
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <return-id>",
		Short: "Display a return's inspection checklist",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			returnID, err := parseReturnID(args[0])
			if err != nil {
				return err
			}
			return ctx.withBackend(cmd, func(c context.Context, backend inspectionBackend) error {
				view, err := backend.Inspection(c, returnID)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, view)
				}
				fmt.Fprint(cmd.OutOrStdout(), renderInspection(view))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func renderInspection(view api.InspectionView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Return #%d\n", view.ParentReturnID)
	switch {
	case !view.Initialized:
		b.WriteString("Checklist not initialized\n")
		return b.String()
	case view.Resolved:
		b.WriteString("All stages resolved\n")
	case view.FirstActionableOrder != nil:
		fmt.Fprintf(&b, "Next actionable order: %d\n", *view.FirstActionableOrder)
	}

	headers := []string{"ID", "Type", "Order", "Stage", "Status", "Due", "Submitted", "Editable", "Decisions", "Recommendation"}
	rows := make([][]string, 0, len(view.Stages))
	for _, stage := range view.Stages {
		order := "-"
		if stage.Order != nil {
			order = strconv.Itoa(*stage.Order)
		}
		rows = append(rows, []string{
			strconv.FormatInt(stage.ID, 10),
			strconv.FormatInt(stage.InspectionTypeID, 10),
			order,
			orDash(stage.StageName),
			label(stage.Status),
			orDash(stage.DueDate),
			orDash(stage.SubmittedAt),
			yesNo(stage.Editable),
			orDash(strings.Join(stage.AllowedDecisions, ", ")),
			label(stage.Recommendation),
		})
	}
	b.WriteString(renderTable(headers, rows, []columnAlignment{alignRight, alignRight, alignRight}))
	b.WriteString("\n")
	return b.String()
}

func newRecommendationCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "recommendation <return-id>",
		Short: "Show the recommendation signal for the approval workflow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			returnID, err := parseReturnID(args[0])
			if err != nil {
				return err
			}
			return ctx.withBackend(cmd, func(c context.Context, backend inspectionBackend) error {
				rec, err := backend.Recommendation(c, returnID)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, rec)
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Return #%d recommendation: %s\n", returnID, label(rec.Recommendation))
				if rec.StageID != 0 {
					fmt.Fprintf(out, "From stage %d (%s) decided %s at %s\n",
						rec.StageID, orDash(rec.StageName), rec.Decision, rec.SubmittedAt)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
