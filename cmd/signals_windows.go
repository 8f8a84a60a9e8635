//go:build windows

package main

import "os"

// Windows has no user signals; use the control API to pause and continue.
var (
	pauseSignal    os.Signal
	continueSignal os.Signal
)

func lifecycleSignals() []os.Signal { return nil }
