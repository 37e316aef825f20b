package main

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/janisto/hola-starter/internal/app"
	"github.com/janisto/hola-starter/internal/config"
	"github.com/janisto/hola-starter/internal/http/root"
)

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	if err := ln.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return port
}

func waitForServer(t *testing.T, base string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(base + "/")
		if err == nil {
			resp.Body.Close()
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("server at %s did not come up", base)
}

func TestRunServesUntilSignal(t *testing.T) {
	cfg := config.Config{Host: "127.0.0.1", Port: freePort(t), Factory: config.DefaultFactory, Version: "test"}
	base := "http://" + cfg.Addr()

	done := make(chan error, 1)
	go func() { done <- run(context.Background(), cfg) }()
	waitForServer(t, base)

	resp, err := http.Get(base + "/")
	if err != nil {
		t.Fatalf("get /: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if string(body) != root.Greeting {
		t.Fatalf("expected %q, got %q", root.Greeting, body)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/plain") {
		t.Fatalf("expected text/plain, got %q", ct)
	}

	resp, err = http.Get(base + "/tasks")
	if err != nil {
		t.Fatalf("get /tasks: %v", err)
	}
	body, _ = io.ReadAll(resp.Body)
	resp.Body.Close()
	if string(body) == root.Greeting {
		t.Fatal("expected /tasks not to return the greeting")
	}

	resp, err = http.Post(base+"/", "text/plain", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("post /: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}

	if err := syscall.Kill(syscall.Getpid(), syscall.SIGTERM); err != nil {
		t.Fatalf("signal: %v", err)
	}
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean exit, got %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("run did not return after SIGTERM")
	}
}

func TestRunFailsWhenPortInUse(t *testing.T) {
	taken, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer taken.Close()

	cfg := config.Config{
		Host:    "127.0.0.1",
		Port:    taken.Addr().(*net.TCPAddr).Port,
		Factory: config.DefaultFactory,
	}
	err = run(context.Background(), cfg)
	if err == nil {
		t.Fatal("expected start failure on a port in use")
	}
	if !strings.Contains(err.Error(), "start") {
		t.Fatalf("expected start error, got %v", err)
	}
}

func TestRunUnknownFactory(t *testing.T) {
	cfg := config.Config{Host: "127.0.0.1", Port: 0, Factory: "flask"}
	if err := run(context.Background(), cfg); !errors.Is(err, app.ErrUnknownFactory) {
		t.Fatalf("expected ErrUnknownFactory, got %v", err)
	}
}

func TestRealMainExitCodes(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"invalid port", map[string]string{config.EnvPort: "not-a-port"}},
		{"port out of range", map[string]string{config.EnvPort: strconv.Itoa(70000)}},
		{"invalid debug", map[string]string{config.EnvDebug: "maybe"}},
		{"unknown factory", map[string]string{config.EnvFactory: "flask", config.EnvPort: "0"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if code := realMain(); code != 1 {
				t.Fatalf("expected exit code 1, got %d", code)
			}
		})
	}
}

func TestErrExitMessage(t *testing.T) {
	if got := errExit(3).Error(); got != "exit code 3" {
		t.Fatalf("unexpected message %q", got)
	}
}
