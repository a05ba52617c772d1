// Package log provides taskd's structured logging facade.
//
// # Overview
//
// The package exposes a small Logger interface with leveled methods and a
// Field type for structured context. Entries flow through a Formatter (text
// or JSON) and one or more Outputs. Components receive a Logger via
// construction and tag it with a component name:
//
//	l := log.NewLogger(
//	    log.WithLevel(log.InfoLevel),
//	    log.WithFormatter(&log.TextFormatter{}),
//	    log.WithOutput(log.NewConsoleOutput()),
//	)
//	l = l.With(log.Component("worker"))
//	l.Info("worker started", log.Int("workers", 4))
//
// # Configuration
//
// Use ApplyConfig to build a logger from a declarative Config supporting
// text or JSON formatting. To integrate with libraries expecting the
// standard library logger, use RedirectStdLog.
package log
