// Package server implements the NSPI operation facade.
//
// Server exposes one method per address book operation. Each method takes
// a request struct and returns a result struct that embeds Result; outputs
// are set only when the code is Success or ErrorsReturned, and every STAT
// returned with a failure code equals the STAT the caller sent.
//
// Protocol outcomes travel as nspi.ErrorCode values. Infrastructure faults,
// such as a failing persistence write, are logged and reported as
// GeneralFailure.
//
// The server keeps no cursor state. A Session records only what Bind
// established; STATs and explicit tables travel with every request, so
// sessions never interfere with each other.
package server
