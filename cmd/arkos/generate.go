package main

import (
	"github.com/spf13/cobra"

	"github.com/arkos-run/arkos/internal/config"
	"github.com/arkos-run/arkos/internal/generate"
)

func generateCmd() *cobra.Command {
	var (
		model string
		path  string
	)

	cmd := &cobra.Command{
		Use:       "generate [controller|service|router|types]",
		Aliases:   []string{"gen", "g"},
		Short:     "Generate application components",
		ValidArgs: []string{"controller", "service", "router", "types"},
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		Long: `Generate a component from its template.

Components are scaffolded into app/<model>/ by default; existing
files are never overwritten.

Examples:
  arkos generate controller --model user
  arkos generate service --model blog_post --path internal/blog
  arkos generate types`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(args[0], model, path)
		},
	}

	cmd.Flags().StringVarP(&model, "model", "m", "", "Model name the component is generated for")
	cmd.Flags().StringVar(&path, "path", "", "Output directory relative to the project root")

	return cmd
}

func runGenerate(kind, model, path string) error {
	cfg, err := config.LoadFromWorkingDir()
	if err != nil {
		return err
	}

	log := newLogger(false)
	defer log.Sync()

	written, err := generate.Component(kind, generate.Options{
		Config: cfg,
		Logger: log,
		Model:  model,
		Path:   path,
	})
	if err != nil {
		return err
	}

	success("Generated %s", written)
	return nil
}
