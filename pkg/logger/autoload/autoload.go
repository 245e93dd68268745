// Package autoload initializes the global logger from LOGGER_* environment
// variables as a side effect of being imported.
package autoload

import (
	configx "github.com/pharmesol/salesline/pkg/config"
	logx "github.com/pharmesol/salesline/pkg/logger"
)

func init() {
	logx.Init(*configx.MustNew[logx.Config]("LOGGER"))
}
