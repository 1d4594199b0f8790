package lockfile

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/mitchellh/go-ps"

	"habitgrid/internal/constants"
)

type stubProcess struct {
	pid        int
	executable string
}

func (p stubProcess) Pid() int           { return p.pid }
func (p stubProcess) PPid() int          { return 0 }
func (p stubProcess) Executable() string { return p.executable }

func withProcess(t *testing.T, pid int, executable string) {
	t.Helper()
	orig := findProcessFunc
	findProcessFunc = func(query int) (ps.Process, error) {
		if query == pid {
			return stubProcess{pid: pid, executable: executable}, nil
		}
		return nil, nil
	}
	t.Cleanup(func() { findProcessFunc = orig })
}

func TestAcquireAndRelease(t *testing.T) {
	withProcess(t, -1, "")
	dir := t.TempDir()

	lock, err := Acquire(dir)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, constants.LockFileName))
	if err != nil {
		t.Fatalf("read lockfile: %v", err)
	}
	if got, _ := strconv.Atoi(string(raw)); got != os.Getpid() {
		t.Errorf("lockfile pid = %d, want %d", got, os.Getpid())
	}

	if err := lock.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if held, _ := Check(dir); held {
		t.Error("lock should be free after release")
	}
}

func TestAcquireRejectsLiveHolder(t *testing.T) {
	dir := t.TempDir()
	withProcess(t, 4242, constants.AppName)
	path := filepath.Join(dir, constants.LockFileName)
	if err := os.WriteFile(path, []byte("4242"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Acquire(dir); err == nil {
		t.Error("acquire should fail while another session holds the lock")
	}

	held, pid := Check(dir)
	if !held || pid != 4242 {
		t.Errorf("Check = (%v, %d), want (true, 4242)", held, pid)
	}
}

func TestAcquireReplacesStaleLock(t *testing.T) {
	dir := t.TempDir()
	// PID exists but belongs to an unrelated executable.
	withProcess(t, 4242, "vim")
	path := filepath.Join(dir, constants.LockFileName)
	if err := os.WriteFile(path, []byte("4242"), 0600); err != nil {
		t.Fatal(err)
	}

	lock, err := Acquire(dir)
	if err != nil {
		t.Fatalf("acquire over stale lock: %v", err)
	}
	defer lock.Release()

	raw, _ := os.ReadFile(path)
	if got, _ := strconv.Atoi(string(raw)); got != os.Getpid() {
		t.Errorf("lockfile pid = %d, want %d", got, os.Getpid())
	}
}
