//go:build unix && !fdpass_sysv

package rendezvous

import (
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func TestSocketpair_ConnectedPair(t *testing.T) {
	a, b, err := Socketpair()
	if err != nil {
		t.Fatalf("Socketpair: %v", err)
	}
	defer a.Close()
	defer b.Close()

	if _, err := a.Write([]byte("x")); err != nil {
		t.Fatalf("write: %v", err)
	}
	buf := make([]byte, 1)
	if _, err := b.Read(buf); err != nil {
		t.Fatalf("read: %v", err)
	}
	if buf[0] != 'x' {
		t.Fatalf("got %q, want x", buf)
	}
}

func TestServerAcceptConnect(t *testing.T) {
	sockPath := filepath.Join(t.TempDir(), "fdpass.sock")
	l, err := Server(sockPath, 0)
	if err != nil {
		t.Fatalf("Server: %v", err)
	}
	defer l.Close()

	if err := unix.SetNonblock(int(l.Fd()), true); err != nil {
		t.Fatalf("SetNonblock: %v", err)
	}

	connected := make(chan error, 1)
	go func() {
		time.Sleep(20 * time.Millisecond)
		c, err := Connect(sockPath)
		if err != nil {
			connected <- err
			return
		}
		defer c.Close()
		connected <- nil
	}()

	accepted := false
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		f, err := Accept(l)
		if err == nil {
			f.Close()
			accepted = true
			break
		}
		time.Sleep(5 * time.Millisecond)
	}
	if !accepted {
		t.Fatal("Accept never succeeded")
	}
	if err := <-connected; err != nil {
		t.Fatalf("Connect: %v", err)
	}
}
