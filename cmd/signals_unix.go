//go:build !windows

package main

import (
	"os"
	"syscall"
)

var (
	pauseSignal    os.Signal = syscall.SIGUSR1
	continueSignal os.Signal = syscall.SIGUSR2
)

func lifecycleSignals() []os.Signal {
	return []os.Signal{pauseSignal, continueSignal}
}
