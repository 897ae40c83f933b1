package main

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/satriahrh/farsisub/internal/config"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	devFlag      *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *zap.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string, devFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		devFlag:      devFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*zap.Logger, error) {
	c.loggerOnce.Do(func() {
		level := "info"
		if c.logLevelFlag != nil {
			level = *c.logLevelFlag
		}
		dev := c.devFlag != nil && *c.devFlag
		c.logger, c.loggerErr = newLogger(level, dev)
	})
	return c.logger, c.loggerErr
}

func warnIgnoredKeys(cfg *config.Config, logger *zap.Logger) {
	for _, k := range cfg.IgnoredKeys() {
		logger.Warn("Ignoring config key from an older version",
			zap.String("key", k.Key),
			zap.String("useInstead", k.UseInstead))
	}
}

// newLogger builds a production JSON logger, or a console logger with dev set
func newLogger(level string, dev bool) (*zap.Logger, error) {
	atom, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	if dev {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = atom
	return cfg.Build()
}
