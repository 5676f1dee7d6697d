package cmd

import (
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/runger/histmcp/internal/storage"
)

func exportSnapshot(t *testing.T, dbPath string, args ...string) storage.Snapshot {
	t.Helper()
	args = append(args, "export", "--db", dbPath, "--json")
	stdout, _, err := runCLI(t, "", args...)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	var snap storage.Snapshot
	if err := json.Unmarshal([]byte(stdout), &snap); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout, err)
	}
	return snap
}

func TestExport(t *testing.T) {
	isolateEnv(t)
	path := writeHistory(t, "ls", "", "pwd")
	dbPath := filepath.Join(t.TempDir(), "snap.db")

	snap := exportSnapshot(t, dbPath, "--histfile", path)
	if snap.LoadID == "" {
		t.Error("snapshot should carry a load id")
	}
	if snap.RecordCount != 2 || snap.LineCount != 3 {
		t.Errorf("snapshot = %+v, want 2 records of 3 lines", snap)
	}
	if snap.SourcePath != path {
		t.Errorf("source path = %s, want %s", snap.SourcePath, path)
	}
}

func TestExport_Text(t *testing.T) {
	isolateEnv(t)
	dbPath := filepath.Join(t.TempDir(), "snap.db")

	stdout, _, err := runCLI(t, "ls\n", "--histfile", "-", "--color", "never", "export", "--db", dbPath)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if !strings.HasPrefix(stdout, "Exported 1 commands from stdin\n") {
		t.Errorf("stdout = %q", stdout)
	}
	if !strings.Contains(stdout, dbPath) {
		t.Errorf("stdout should name the database, got %q", stdout)
	}
}

func TestExport_MissingHistoryFails(t *testing.T) {
	isolateEnv(t)
	dbPath := filepath.Join(t.TempDir(), "snap.db")

	_, _, err := runCLI(t, "", "--histfile", filepath.Join(t.TempDir(), "missing"), "export", "--db", dbPath)
	if err == nil || !strings.Contains(err.Error(), "nothing to export") {
		t.Errorf("err = %v, want nothing to export", err)
	}
}

func TestExport_Redacted(t *testing.T) {
	isolateEnv(t)
	path := writeHistory(t, "mysql -uroot -psecretpw appdb")
	dbPath := filepath.Join(t.TempDir(), "snap.db")

	snap := exportSnapshot(t, dbPath, "--histfile", path, "--redact")

	stdout, _, err := runCLI(t, "", "snapshots", "show", snap.LoadID, "--db", dbPath, "--json")
	if err != nil {
		t.Fatalf("snapshots show failed: %v", err)
	}
	if strings.Contains(stdout, "secretpw") {
		t.Errorf("snapshot stored the raw password: %s", stdout)
	}
}

func TestSnapshots_Lifecycle(t *testing.T) {
	isolateEnv(t)
	path := writeHistory(t, "ls", "pwd")
	dbPath := filepath.Join(t.TempDir(), "snap.db")
	snap := exportSnapshot(t, dbPath, "--histfile", path)

	stdout, _, err := runCLI(t, "", "snapshots", "--db", dbPath, "--json")
	if err != nil {
		t.Fatalf("snapshots failed: %v", err)
	}
	var listed []storage.Snapshot
	if err := json.Unmarshal([]byte(stdout), &listed); err != nil {
		t.Fatalf("invalid JSON %q: %v", stdout, err)
	}
	if len(listed) != 1 || listed[0].LoadID != snap.LoadID {
		t.Fatalf("listed = %+v, want one snapshot %s", listed, snap.LoadID)
	}

	stdout, _, err = runCLI(t, "", "--color", "never", "snapshots", "show", snap.LoadID, "--db", dbPath)
	if err != nil {
		t.Fatalf("snapshots show failed: %v", err)
	}
	if !strings.Contains(stdout, "Snapshot "+snap.LoadID) || !strings.HasSuffix(stdout, "[0] ls\n[1] pwd\n") {
		t.Errorf("unexpected show output %q", stdout)
	}

	stdout, _, err = runCLI(t, "", "snapshots", "delete", snap.LoadID, "--db", dbPath)
	if err != nil {
		t.Fatalf("snapshots delete failed: %v", err)
	}
	if stdout != "Deleted snapshot "+snap.LoadID+"\n" {
		t.Errorf("stdout = %q", stdout)
	}

	stdout, _, err = runCLI(t, "", "--color", "never", "snapshots", "list", "--db", dbPath)
	if err != nil {
		t.Fatalf("snapshots list failed: %v", err)
	}
	if stdout != "No snapshots.\n" {
		t.Errorf("stdout = %q", stdout)
	}

	_, _, err = runCLI(t, "", "snapshots", "delete", snap.LoadID, "--db", dbPath)
	if err == nil || !strings.Contains(err.Error(), "no snapshot with load id") {
		t.Errorf("err = %v, want no snapshot with load id", err)
	}
}

func TestSnapshots_ShowUnknown(t *testing.T) {
	isolateEnv(t)
	dbPath := filepath.Join(t.TempDir(), "snap.db")

	_, _, err := runCLI(t, "", "snapshots", "show", "nope", "--db", dbPath)
	if err == nil {
		t.Error("showing an unknown snapshot should fail")
	}
}

func TestSnapshotDBPath(t *testing.T) {
	dir := isolateEnv(t)

	if got := snapshotDBPath("/tmp/x.db"); got != "/tmp/x.db" {
		t.Errorf("explicit path = %s", got)
	}
	want := filepath.Join(dir, "data", "histmcp", "history.db")
	if got := snapshotDBPath(""); got != want {
		t.Errorf("default path = %s, want %s", got, want)
	}
}

func TestSnapshots_LogsSchemaVersionAtDebug(t *testing.T) {
	isolateEnv(t)
	dbPath := filepath.Join(t.TempDir(), "snap.db")

	_, stderr, err := runCLI(t, "", "--log-level", "debug", "snapshots", "list", "--db", dbPath)
	if err != nil {
		t.Fatalf("snapshots list failed: %v", err)
	}
	if !strings.Contains(stderr, `"msg":"snapshot database opened"`) || !strings.Contains(stderr, `"schema_version":1`) {
		t.Errorf("stderr = %q, want schema version logged", stderr)
	}

	_, stderr, err = runCLI(t, "", "snapshots", "list", "--db", dbPath)
	if err != nil {
		t.Fatalf("snapshots list failed: %v", err)
	}
	if strings.Contains(stderr, "snapshot database opened") {
		t.Errorf("stderr = %q, want no debug output at info level", stderr)
	}
}
