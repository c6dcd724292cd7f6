package websocket

import (
	"net"
	"testing"
)

func TestStartFailsWhenPortTaken(t *testing.T) {
	ln, err := net.Listen("tcp", ":0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	s := NewLogServer(port)
	if err := s.Start(); err == nil {
		s.Stop()
		t.Fatal("expected an error binding an occupied port")
	}
}

func TestStartAndStop(t *testing.T) {
	s := NewLogServer(0)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestBroadcastWithoutClients(t *testing.T) {
	s := NewLogServer(0)
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	// No connected observers; the broadcast must not block or panic.
	s.BroadcastLog("coordinator listening")
}
