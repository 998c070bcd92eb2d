package acewriter

import (
	"context"

	out "github.com/n2code/acewriter/internal/output"
	"github.com/n2code/acewriter/internal/watch"
	"go.uber.org/zap"
)

func (a *aceWriter) Watch(ctx context.Context) error {
	pass := func(ctx context.Context) error {
		if err := a.Reload(); err != nil {
			return err
		}
		_, err := a.Save(false, nil)
		return err
	}

	if err := pass(ctx); err != nil {
		a.printer.Out(out.Error, "%s\n", err)
	}

	targets := []string{a.settings.Project}
	if a.settings.File != "" {
		targets = append(targets, a.settings.File)
	}
	watcher, err := watch.New(targets, watch.DefaultDebounce, pass, a.log)
	if err != nil {
		return newCommandError("watcher setup failed", err)
	}
	if err := watcher.Start(ctx); err != nil {
		watcher.Stop()
		return newCommandError("watching project failed", err)
	}
	a.printer.Out(out.Normal, "Watching %s for changes\n", a.settings.Project)

	<-ctx.Done()
	watcher.Stop()
	a.log.Info("watch ended", zap.Int("passes", watcher.Passes()))
	return nil
}
