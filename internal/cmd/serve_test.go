package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/runger/histmcp/internal/config"
	"github.com/runger/histmcp/internal/history"
	"github.com/runger/histmcp/internal/logging"
)

// syncBuffer is a bytes.Buffer safe for a logger writing from another goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testSettings() *settings {
	return &settings{
		cfg:    config.DefaultConfig(),
		logger: logging.New(&logging.Config{Output: io.Discard}),
	}
}

func TestServe_RejectsStdinHistory(t *testing.T) {
	isolateEnv(t)

	_, _, err := runCLI(t, "", "--histfile", "-", "serve")
	if err == nil || !strings.Contains(err.Error(), "stdin carries the MCP transport") {
		t.Errorf("err = %v, want stdin conflict", err)
	}
}

func TestServe_SnapshotLatestWithEmptyDB(t *testing.T) {
	isolateEnv(t)
	dbPath := filepath.Join(t.TempDir(), "snap.db")

	_, _, err := runCLI(t, "", "serve", "--snapshot", "latest", "--db", dbPath)
	if err == nil || !strings.Contains(err.Error(), "no snapshots") {
		t.Errorf("err = %v, want no snapshots", err)
	}
}

func TestServeSource_RestoresSnapshot(t *testing.T) {
	isolateEnv(t)
	path := writeHistory(t, "ls", "pwd")
	dbPath := filepath.Join(t.TempDir(), "snap.db")
	snap := exportSnapshot(t, dbPath, "--histfile", path)

	for _, id := range []string{snap.LoadID, latestSnapshot} {
		t.Run(id, func(t *testing.T) {
			serveSnapshot, serveDB = id, dbPath
			t.Cleanup(func() { serveSnapshot, serveDB = "", "" })

			source, err := serveSource(context.Background(), serveCmd, testSettings())
			if err != nil {
				t.Fatalf("serveSource failed: %v", err)
			}
			store := source.Store()
			if store.LoadID() != snap.LoadID {
				t.Errorf("load id = %s, want %s", store.LoadID(), snap.LoadID)
			}
			if rec, ok := store.Get(1); !ok || rec.Command != "pwd" {
				t.Errorf("Get(1) = %+v, %v", rec, ok)
			}
		})
	}
}

func TestServeSource_MissingFileIsUsable(t *testing.T) {
	isolateEnv(t)
	s := testSettings()
	s.cfg.History.File = filepath.Join(t.TempDir(), "missing")

	source, err := serveSource(context.Background(), serveCmd, s)
	if err != nil {
		t.Fatalf("a missing history file should not stop the server: %v", err)
	}
	if source.Store().Len() != 0 {
		t.Errorf("expected an empty store, got %d records", source.Store().Len())
	}
}

func TestReloadOnSignal(t *testing.T) {
	path := writeHistory(t, "ls")
	source, err := history.NewSource(path)
	if err != nil {
		t.Fatal(err)
	}

	var logs syncBuffer
	logger := logging.New(&logging.Config{Output: &logs})

	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	done := make(chan struct{})
	go func() {
		reloadOnSignal(ctx, sig, source, logger)
		close(done)
	}()

	if err := os.WriteFile(path, []byte("ls\npwd\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	sig <- syscall.SIGHUP

	deadline := time.Now().Add(5 * time.Second)
	for source.Store().Len() != 2 {
		if time.Now().After(deadline) {
			t.Fatal("store was not reloaded")
		}
		time.Sleep(10 * time.Millisecond)
	}

	// A failed reload keeps the current store and is logged.
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}
	if err := os.Mkdir(path, 0o700); err != nil {
		t.Fatal(err)
	}
	sig <- syscall.SIGHUP

	for !strings.Contains(logs.String(), "history reload failed") {
		if time.Now().After(deadline) {
			t.Fatalf("reload failure not logged:\n%s", logs.String())
		}
		time.Sleep(10 * time.Millisecond)
	}
	if source.Store().Len() != 2 {
		t.Errorf("failed reload replaced the store")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("reloadOnSignal did not stop after cancel")
	}
	if !strings.Contains(logs.String(), `"msg":"history loaded"`) {
		t.Errorf("successful reload not logged:\n%s", logs.String())
	}
}
