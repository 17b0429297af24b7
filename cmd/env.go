package cmd

import (
	"os"

	"github.com/mattsolo1/grove-stack/pkg/config"
	"github.com/mattsolo1/grove-stack/pkg/gitx"
	"github.com/mattsolo1/grove-stack/pkg/workspace"
)

// env bundles what every subcommand resolves up front: the repository
// context, the effective configuration, and a version-control adapter
// rooted at the repository. It is constructed per invocation and passed
// explicitly; there is no process-wide cache.
type env struct {
	ctx     *workspace.Context
	cfg     *config.Config
	adapter gitx.Adapter
}

func loadEnv() (*env, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	ctx, err := workspace.Detect(wd)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(ctx.RepoRoot)
	if err != nil {
		return nil, err
	}
	return &env{
		ctx:     ctx,
		cfg:     cfg,
		adapter: gitx.NewCLI(ctx.RepoRoot),
	}, nil
}
