//go:build !windows

// Package console decides whether padmux runs in a terminal and delivers
// Ctrl+C reliably while SDL owns a locked OS thread.
package console

// Interactive reports true: outside Windows a process always has its
// terminal or none at all, and neither needs fixing up.
func Interactive() bool {
	return true
}

// OnInterrupt does nothing outside Windows, where os/signal already sees
// SIGINT regardless of SDL.
func OnInterrupt(ch chan<- struct{}) (rearm func()) {
	return func() {}
}
