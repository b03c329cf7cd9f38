package shutdown

import (
	"os"
	"os/signal"
	"syscall"
)

// defaultSignals are the OS signals that trigger shutdown. Ctrl+C arrives as os.Interrupt.
var defaultSignals = []os.Signal{os.Interrupt, syscall.SIGINT, syscall.SIGTERM}

// signalListener relays OS signals until stopped.
type signalListener struct {
	ch chan os.Signal
}

// listen immediately starts capturing sigs.
func listen(sigs ...os.Signal) *signalListener {
	l := &signalListener{ch: make(chan os.Signal, 1)}
	signal.Notify(l.ch, sigs...)
	return l
}

// C delivers the first captured signal.
func (l *signalListener) C() <-chan os.Signal {
	return l.ch
}

// Stop permanently stops the listener.
func (l *signalListener) Stop() {
	signal.Stop(l.ch)
}
