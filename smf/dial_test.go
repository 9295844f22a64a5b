package smf_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/smfrpc/smf-go/cmn/cos"
	"github.com/smfrpc/smf-go/smf"
)

// TestConnectRoundTrip exercises the public create_connection operation of
// spec.md §6 end to end over a real TCP loopback listener: dial, let the
// driver tune TCP_NODELAY/SO_KEEPALIVE, then run a basic call through it.
func TestConnectRoundTrip(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	go func() {
		peer, err := ln.Accept()
		if err != nil {
			return
		}
		echoServer(t, peer, false)
	}()

	conn, err := smf.Connect(context.Background(), ln.Addr().String(), smf.Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	payload, meta, err := conn.Call(context.Background(), []byte("hello"), 42)
	if err != nil {
		t.Fatal(err)
	}
	if string(payload) != "hello" || meta != 42 {
		t.Fatalf("got (%q, %d), want (\"hello\", 42)", payload, meta)
	}
}

func TestConnectRejectsInvalidTimeout(t *testing.T) {
	_, err := smf.Connect(context.Background(), "127.0.0.1:1", smf.Config{Timeout: -time.Second})
	if err != cos.ErrInvalidTimeout {
		t.Fatalf("err = %v, want ErrInvalidTimeout", err)
	}
}

func TestConnectRejectsInvalidAddress(t *testing.T) {
	for _, addr := range []string{"", "localhost", "localhost:abc", "localhost:0"} {
		_, err := smf.Connect(context.Background(), addr, smf.Config{})
		if err != cos.ErrInvalidAddress {
			t.Fatalf("address %q: err = %v, want ErrInvalidAddress", addr, err)
		}
	}
}
