// Package bridge exposes the engine to a host application over a plain C
// ABI, the calling convention Unity uses for native plugins. The host loads
// the shared library, pushes commands through the exported entry points and
// reads back small JSON replies.
package bridge

/*
#include <stdlib.h>
#include <stdio.h>
#include <string.h>
*/
import "C"

import (
	"github.com/geohunt/arcoin/internal/dispatcher"
)

// configStruct is the central configuration used by this library.
type configStruct struct {
	// version is the value returned when the plugin is first probed
	version string

	// dispatcher handles command routing
	dispatcher *dispatcher.Dispatcher
}

func (c *configStruct) init() {
	c.version = "no version set"
}

// SetVersion sets the version string returned to the host on probe.
func SetVersion(version string) {
	cfg.version = version
}

// SetDispatcher sets the command dispatcher for handling host calls.
func SetDispatcher(d *dispatcher.Dispatcher) {
	cfg.dispatcher = d
}

// GetDispatcher returns the configured dispatcher, or nil if not set.
func GetDispatcher() *dispatcher.Dispatcher {
	return cfg.dispatcher
}
