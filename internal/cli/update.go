package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/matzehuels/pinbump/internal/config"
	"github.com/matzehuels/pinbump/pkg/bump"
	"github.com/matzehuels/pinbump/pkg/errors"
	"github.com/matzehuels/pinbump/pkg/integrations/pypi"
	"github.com/matzehuels/pinbump/pkg/manifest"
	"github.com/matzehuels/pinbump/pkg/project"
)

// update validates subdir, then runs every manifest updater against it in
// order. The first error aborts the run.
func (c *CLI) update(ctx context.Context, cfg *config.Config, subdir string) error {
	logger := loggerFromContext(ctx)

	wd, err := os.Getwd()
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "get working directory")
	}
	cwd, err := project.Resolve(wd, "")
	if err != nil {
		return err
	}
	dir, err := project.Resolve(cwd, subdir)
	if err != nil {
		return err
	}

	ui := newPrinter(c.out)
	ui.evaluating(dir)

	client := pypi.NewClient(pypi.Options{
		BaseURL:        cfg.IndexURL,
		ConnectTimeout: cfg.ConnectTimeout,
		ReadTimeout:    cfg.ReadTimeout,
		Attempts:       cfg.Retries,
		RetryDelay:     cfg.RetryDelay,
		Logger:         logger,
	})
	bumper := bump.New(client, bump.ReporterFunc(ui.result))
	opts := manifest.Options{
		DryRun:    cfg.DryRun,
		OnSection: ui.section,
		Logger:    logger,
	}

	stats := &runStats{}
	defer stats.register()()

	prog := newProgress(logger)
	checked := 0
	for _, u := range manifest.Updaters(opts) {
		path := filepath.Join(dir, u.Filename())
		rel := project.Rel(cwd, path)
		if !project.Exists(path) {
			ui.missing(rel)
			continue
		}

		ui.file(rel)
		report, err := u.Update(ctx, dir, bumper)
		if err != nil {
			return err
		}
		if report.Skipped {
			ui.missing(rel)
			continue
		}
		if len(report.Results) > 0 {
			ui.summary(report, cfg.DryRun)
		}
		checked += len(report.Results)
	}

	logger.Debug("index traffic", "requests", client.Requests(), "failures", stats.failures)
	prog.done(fmt.Sprintf("Checked %d requirements: %d index requests, %d cached", checked, stats.requests, stats.cached))
	return nil
}
