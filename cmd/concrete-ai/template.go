package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/yomijipsa-art/concrete-ai/internal/core/report"
)

func newTemplateCmd(a *app) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Write a blank template matching the configured layout",
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := a.schema()
			if err != nil {
				return err
			}
			f, err := report.NewBlankTemplate(schema)
			if err != nil {
				return fmt.Errorf("build template: %w", err)
			}
			defer func() { _ = f.Close() }()
			if err := f.SaveAs(out); err != nil {
				return fmt.Errorf("save template: %w", err)
			}
			a.logger.Info("template.written", "path", out, "min_sheets", schema.MinSheets())
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().StringVar(&out, "out", "template.xlsx", "Output path")
	return cmd
}
