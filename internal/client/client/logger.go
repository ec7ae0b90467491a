package client

import (
	"context"

	"github.com/dmitrijs2005/qrscan/internal/logging"
	"github.com/hashicorp/go-retryablehttp"
)

// leveledLogger routes transport logs into logging.Logger.
type leveledLogger struct {
	l logging.Logger
}

var _ retryablehttp.LeveledLogger = leveledLogger{}

func (a leveledLogger) Error(msg string, kv ...interface{}) { a.l.Error(context.Background(), msg, kv...) }
func (a leveledLogger) Info(msg string, kv ...interface{})  { a.l.Debug(context.Background(), msg, kv...) }
func (a leveledLogger) Debug(msg string, kv ...interface{}) { a.l.Debug(context.Background(), msg, kv...) }
func (a leveledLogger) Warn(msg string, kv ...interface{})  { a.l.Warn(context.Background(), msg, kv...) }
