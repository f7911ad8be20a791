package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yomijipsa-art/concrete-ai/internal/common"
	"github.com/yomijipsa-art/concrete-ai/internal/core/imaging"
	"github.com/yomijipsa-art/concrete-ai/internal/core/llm/provider"
	"github.com/yomijipsa-art/concrete-ai/internal/core/report"
	"github.com/yomijipsa-art/concrete-ai/internal/layout"
)

// app carries what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	logFormat  string
	logLevel   string

	cfg    *common.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:           "concrete-ai",
		Short:         "Build concrete pour site reports from two photos",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}
	cmd.PersistentFlags().StringVar(&a.configPath, "config", "", "Path to a YAML config file")
	cmd.PersistentFlags().StringVar(&a.logFormat, "log-format", "text", "Log format: text or json")
	cmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "Log level: debug, info, warn, error")

	cmd.AddCommand(newGenerateCmd(a))
	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newTemplateCmd(a))
	return cmd
}

func (a *app) init(logOut io.Writer) error {
	var level slog.Level
	if err := level.UnmarshalText([]byte(a.logLevel)); err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", a.logLevel, err)
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(a.logFormat) {
	case "json":
		a.logger = slog.New(slog.NewJSONHandler(logOut, opts))
	case "text", "":
		a.logger = slog.New(slog.NewTextHandler(logOut, opts))
	default:
		return fmt.Errorf("invalid --log-format %q: want text or json", a.logFormat)
	}
	slog.SetDefault(a.logger)

	cfg, err := common.LoadConfig(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

func (a *app) schema() (*layout.Schema, error) {
	s, err := layout.Load(a.cfg.Report.LayoutFile)
	if err != nil {
		return nil, fmt.Errorf("load layout: %w", err)
	}
	return s, nil
}

// assembler wires the configured provider, normalizer and layout.
func (a *app) assembler(ctx context.Context) (*report.Assembler, error) {
	if err := a.cfg.Validate(); err != nil {
		return nil, err
	}
	schema, err := a.schema()
	if err != nil {
		return nil, err
	}
	extractor, err := provider.New(ctx, a.cfg.LLM, a.logger)
	if err != nil {
		return nil, err
	}
	normalizer := imaging.NewNormalizer(
		imaging.WithHEICConverter(a.cfg.Imaging.HeicConverter),
		imaging.WithDisplaySize(schema.DisplayWidth(), schema.DisplayHeight()),
		imaging.WithLogger(a.logger),
	)
	return report.NewAssembler(a.logger, extractor, normalizer, schema, a.cfg.Report.TemplateFile, a.cfg.Imaging.ScratchDir), nil
}
