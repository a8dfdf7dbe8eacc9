package main

import (
	"log/slog"
	"strings"
	"sync"

	"clipforge/internal/config"
	"clipforge/internal/logging"
	"clipforge/internal/manager"
	"clipforge/internal/queue"
	"clipforge/internal/render"
	"clipforge/internal/upload"
	"clipforge/internal/upload/youtube"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.New(logging.Options{
			Level:            cfg.Logging.Level,
			Format:           cfg.Logging.Format,
			OutputPaths:      []string{"stderr"},
			ErrorOutputPaths: []string{"stderr"},
		})
		if err != nil {
			c.loggerErr = err
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) queueStore() (*queue.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return queue.NewStore(cfg.QueuePath(), logger), nil
}

// newManager assembles the full processing pipeline: command-backed narrator
// and renderer, the YouTube transport behind the retrying orchestrator, and
// the queue manager on top. The returned closer releases the upload ledger.
func (c *commandContext) newManager(dryRun bool) (*manager.Manager, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}
	store, err := c.queueStore()
	if err != nil {
		return nil, nil, err
	}

	producer := render.NewProducer(
		render.NewCommandNarrator(cfg, logger),
		render.NewCommandRenderer(cfg, logger),
		cfg.Paths.StagingDir,
		logger,
	)

	uploader, closeLedger, err := c.newOrchestrator(dryRun)
	if err != nil {
		return nil, nil, err
	}

	return manager.New(cfg, store, producer, uploader, logger), closeLedger, nil
}

// newOrchestrator builds the upload orchestrator with its idempotency ledger.
// A ledger open failure degrades to no ledger rather than blocking uploads.
func (c *commandContext) newOrchestrator(dryRun bool) (*upload.Orchestrator, func(), error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, nil, err
	}

	opts := []upload.Option{upload.WithDryRun(dryRun)}
	closer := func() {}
	ledger, err := upload.OpenLedger(cfg.LedgerPath())
	if err != nil {
		logger.Warn("upload ledger unavailable", logging.Error(err))
	} else {
		opts = append(opts, upload.WithLedger(ledger))
		closer = func() {
			if err := ledger.Close(); err != nil {
				logger.Warn("close upload ledger", logging.Error(err))
			}
		}
	}

	orch, err := upload.NewOrchestrator(cfg, youtube.NewClient(cfg, logger), logger, opts...)
	if err != nil {
		closer()
		return nil, nil, err
	}
	return orch, closer, nil
}
