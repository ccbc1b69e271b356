// Package logging provides structured logging for the nspid address book
// server.
//
// # Overview
//
// Logger is a small key-value interface implemented on top of
// go.uber.org/zap. It supports:
//
//   - Multiple log levels (debug, info, warn, error)
//   - Console and JSON output formats
//   - Request ID tracking for HTTP requests
//   - Field-based contextual logging
//
// # Creating a Logger
//
//	logger := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	    Output: "/var/log/nspid/nspid.log",
//	})
//
// For testing, use a no-op logger:
//
//	logger := logging.NewNop()
//
// # Structured Logging
//
//	logger.Info("resolve names",
//	    "container", 0,
//	    "inputs", 5,
//	    "code", "Success",
//	)
//
// Output (JSON format):
//
//	{"level":"info","ts":"2026-02-18T10:30:00.000Z","msg":"resolve names","container":0,"inputs":5,"code":"Success"}
//
// # Request ID Tracking
//
//	requestID := logging.GenerateRequestID()
//	reqLogger := logger.WithRequestID(requestID)
//
// # Output Destinations
//
//	logging.Config{Output: "stdout"}             // Standard output
//	logging.Config{Output: "stderr"}             // Standard error
//	logging.Config{Output: "/var/log/nspid.log"} // File path
package logging
