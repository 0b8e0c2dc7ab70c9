package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/asaramis/scenario-planning-app/internal/model"
	"github.com/asaramis/scenario-planning-app/internal/service/calculator"
	"github.com/asaramis/scenario-planning-app/internal/service/planner"
	"github.com/asaramis/scenario-planning-app/internal/util"
)

func newTableCmd(configPath *string) *cobra.Command {
	var (
		target float64
		edits  []string
	)

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the funnel table, optionally solved for a target and edited",
		Example: `  scenarioplan table --target 55000
  scenarioplan table --edit "Customize band=50%"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _ := loadConfig(*configPath)
			log := newLogger(cfg)
			p, err := buildPlanner(cfg, log)
			if err != nil {
				return err
			}

			view, err := runTable(p, target, edits, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return printTable(cmd.OutOrStdout(), view)
		},
	}

	cmd.Flags().Float64Var(&target, "target", 0, "收入目标，大于 0 时先按目标回算")
	cmd.Flags().StringArrayVar(&edits, "edit", nil, "步骤转化率修改，格式 name=pct，可重复")
	return cmd
}

// runTable 在新场景上依次执行回算与修改；无变化的修改只提示不报错
func runTable(p *planner.Planner, target float64, edits []string, warn io.Writer) (*model.ScenarioView, error) {
	view := p.Create()
	id := view.ID
	defer p.Delete(id)

	var err error
	if target > 0 {
		if _, err = p.SetRevenueTarget(id, target); err != nil {
			return nil, err
		}
		if view, err = p.Solve(id); err != nil {
			return nil, err
		}
	}

	for _, e := range edits {
		name, pct, ok := strings.Cut(e, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --edit %q, want name=pct", e)
		}
		if _, err = p.SelectStep(id, name); err != nil {
			return nil, err
		}
		if _, err = p.SetNewConversionPct(id, pct); err != nil {
			return nil, err
		}
		next, err := p.ApplyStepEdit(id)
		if errors.Is(err, calculator.ErrNoOpChange) {
			fmt.Fprintf(warn, "skip %q: %v\n", e, err)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("apply %q: %w", e, err)
		}
		view = next
	}
	return view, nil
}

func printTable(out io.Writer, view *model.ScenarioView) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Step\tValue\t% of Start\tvs. Previous\tvs. Baseline\t")
	for _, s := range view.Steps {
		delta := ""
		if s.BaselineConversion != nil {
			delta = util.FormatDelta(s.ConversionVsPrevious - *s.BaselineConversion)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			s.Name,
			util.FormatCount(s.Value),
			util.FormatPercent(s.PercentOfStart),
			util.FormatPercent(s.ConversionVsPrevious),
			delta,
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "\nRevenue: %s\n", util.FormatCurrency(view.TotalRevenue))
	return err
}
