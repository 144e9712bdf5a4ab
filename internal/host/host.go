// Package host defines the boundary to the extension host: the harness
// sends commands and awaits responses, and the host may call back with
// queries that the harness must answer.
package host

import (
	"context"

	"github.com/plugtrace/plugtrace/internal/command"
)

// ExtensionInfo describes one extension discovered by the host.
type ExtensionInfo struct {
	PackageName string `json:"packageName"`
	Active      bool   `json:"active"`
}

// Responder answers an inbound query from the host. It must always return
// a response; the host blocks awaiting the answer.
type Responder func(query command.Descriptor) command.Descriptor

// Host is the harness-side view of an extension host session.
type Host interface {
	// ListInstalledExtensions returns the extensions the host has discovered
	// and whether each reports active status.
	ListInstalledExtensions(ctx context.Context) ([]ExtensionInfo, error)

	// SendCommand dispatches one command and awaits the host's response
	// value tree.
	SendCommand(ctx context.Context, cmd command.Descriptor) (any, error)

	// Close terminates the host session.
	Close() error
}
