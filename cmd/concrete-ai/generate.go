package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yomijipsa-art/concrete-ai/internal/core/report"
)

type generateCmd struct {
	app    *app
	photo1 string
	photo2 string
	out    string
}

func newGenerateCmd(a *app) *cobra.Command {
	gc := &generateCmd{app: a}
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Build one report from two photos",
		Long: "Reads the pour ticket in --photo2 with the vision model, fills the template\n" +
			"and embeds both photos. Without --out the report is written to the current\n" +
			"directory under its generated name.",
		RunE: gc.run,
	}
	cmd.Flags().StringVar(&gc.photo1, "photo1", "", "Site photo (slot 1)")
	cmd.Flags().StringVar(&gc.photo2, "photo2", "", "Pour ticket photo (slot 2, analyzed)")
	cmd.Flags().StringVar(&gc.out, "out", "", "Output file or directory")
	_ = cmd.MarkFlagRequired("photo1")
	_ = cmd.MarkFlagRequired("photo2")
	return cmd
}

func (gc *generateCmd) run(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	photos := make([]report.Photo, 0, 2)
	for _, p := range []string{gc.photo1, gc.photo2} {
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read photo: %w", err)
		}
		photos = append(photos, report.Photo{Filename: filepath.Base(p), Data: data})
	}

	asm, err := gc.app.assembler(ctx)
	if err != nil {
		return err
	}
	res, err := asm.Assemble(ctx, photos)
	if err != nil {
		return err
	}

	path := outputPath(gc.out, res.Filename)
	if err := os.WriteFile(path, res.Data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if len(res.Missing) > 0 {
		gc.app.logger.Warn("report.fields.missing", "fields", res.Missing)
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), path)
	return err
}

// outputPath resolves --out: empty means the generated name in the working
// directory, an existing directory receives the generated name.
func outputPath(out, generated string) string {
	if out == "" {
		return generated
	}
	if st, err := os.Stat(out); err == nil && st.IsDir() {
		return filepath.Join(out, generated)
	}
	return out
}
