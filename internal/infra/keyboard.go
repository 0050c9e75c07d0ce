package infra

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Keyboard delivers single keystrokes without line buffering or echo.
// Open switches stdin to cbreak mode (canonical mode and echo off,
// signals untouched) and a reader goroutine queues bytes; Poll consumes
// at most one per call and never blocks. Restore must run on every exit
// path, the caller holds it under a defer.
type Keyboard struct {
	fd    int
	old   unix.Termios
	keys  chan byte
	armed bool
}

// OpenKeyboard puts stdin into cbreak mode. It fails when stdin is not
// a terminal; the caller can then run without hotkeys.
func OpenKeyboard() (*Keyboard, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("stdin is not a terminal")
	}

	tio, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return nil, fmt.Errorf("read terminal attributes: %w", err)
	}

	k := &Keyboard{fd: fd, old: *tio, keys: make(chan byte, 64)}

	raw := *tio
	raw.Lflag &^= unix.ICANON | unix.ECHO
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, unix.TCSETSF, &raw); err != nil {
		return nil, fmt.Errorf("set terminal attributes: %w", err)
	}
	k.armed = true

	go k.read()
	return k, nil
}

// Poll returns one pending keystroke without blocking.
func (k *Keyboard) Poll() (byte, bool) {
	select {
	case b := <-k.keys:
		return b, true
	default:
		return 0, false
	}
}

// Restore puts the terminal back into its prior buffered, echoing mode.
// Safe to call more than once.
func (k *Keyboard) Restore() {
	if !k.armed {
		return
	}
	k.armed = false
	_ = unix.IoctlSetTermios(k.fd, unix.TCSETSF, &k.old)
}

func (k *Keyboard) read() {
	buf := make([]byte, 1)
	for {
		n, err := os.Stdin.Read(buf)
		if err != nil {
			return
		}
		if n == 0 {
			continue
		}
		// Blocking send: queued keys carry over to later ticks, one
		// consumed per iteration, none dropped.
		k.keys <- buf[0]
	}
}
