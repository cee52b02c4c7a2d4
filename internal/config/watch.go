package config

import (
	"context"
	"path/filepath"

	"codeberg.org/mutker/powerhald/internal/errors"
	"codeberg.org/mutker/powerhald/internal/logger"
	"github.com/fsnotify/fsnotify"
)

// Watch reloads the configuration whenever its file changes and hands
// the new Config to callback. The directory is watched so that editors
// replacing the file by rename are seen. Invalid reloads are logged and
// skipped. Watch returns once the watcher is running.
func (c *Config) Watch(ctx context.Context, callback func(*Config)) error {
	errFactory := errors.New()

	if c.file == "" {
		return errFactory.WithMessage(errors.ErrWatchConfig, "no configuration file to watch")
	}

	path, err := filepath.Abs(c.file)
	if err != nil {
		return errFactory.Wrap(errors.ErrWatchConfig, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errFactory.Wrap(errors.ErrWatchConfig, err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return errFactory.Wrap(errors.ErrWatchConfig, err)
	}

	opts := append(append([]Option{}, c.opts...), WithConfigFile(path))

	go func() {
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != path || (!event.Has(fsnotify.Write) && !event.Has(fsnotify.Create)) {
					continue
				}

				logger.Debug().Str("op", event.Op.String()).Str("file", event.Name).Msg("Config change detected")

				cfg, err := Load(c.flags, opts...)
				if err != nil {
					logger.Warn().Err(err).Str("file", path).Msg("Failed to reload config, keeping previous")
					continue
				}
				callback(cfg)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn().Err(err).Msg("Config watcher error")
			}
		}
	}()

	return nil
}
