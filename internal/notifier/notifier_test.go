package notifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/activities/internal/constants"
)

type mockProcess struct {
	pid        int
	executable string
}

func (m *mockProcess) Pid() int           { return m.pid }
func (m *mockProcess) PPid() int          { return 0 }
func (m *mockProcess) Executable() string { return m.executable }

func stubConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	old := userConfigDirFunc
	t.Cleanup(func() { userConfigDirFunc = old })
	userConfigDirFunc = func() (string, error) { return dir, nil }
	return dir
}

func stubProcess(t *testing.T, executable string) {
	t.Helper()
	old := findProcessFunc
	t.Cleanup(func() { findProcessFunc = old })
	findProcessFunc = func(pid int) (ps.Process, error) {
		if executable == "" {
			return nil, nil
		}
		return &mockProcess{pid: pid, executable: executable}, nil
	}
}

func TestTrayConfigDir(t *testing.T) {
	base := stubConfigDir(t)

	dir, err := TrayConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := filepath.Join(base, constants.TrayAppIdentifier)
	if dir != want {
		t.Errorf("expected %s, got %s", want, dir)
	}

	if err := os.MkdirAll(want, 0755); err != nil {
		t.Fatal(err)
	}
	custom := "/custom/activities/dir"
	settings := fmt.Sprintf(`{"settings": {"lockfile_dir": %q}}`, custom)
	if err := os.WriteFile(filepath.Join(want, "settings.json"), []byte(settings), 0644); err != nil {
		t.Fatal(err)
	}

	dir, err = TrayConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != custom {
		t.Errorf("expected %s, got %s", custom, dir)
	}
}

func TestReadLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), constants.NotifierLockfileName)

	if _, err := readLock(path); !errors.Is(err, ErrTrayNotRunning) {
		t.Errorf("missing lockfile: got %v, want ErrTrayNotRunning", err)
	}

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"two parts", "8080|12345", "malformed"},
		{"garbage", "invalid", "malformed"},
		{"empty secret", "8080|12345|", "secret"},
		{"empty port", "|12345|s3cret", "port"},
		{"port out of range", "99999|12345|s3cret", "range"},
		{"bad pid", "8080|abc|s3cret", "process ID"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := os.WriteFile(path, []byte(tt.content), 0644); err != nil {
				t.Fatal(err)
			}
			_, err := readLock(path)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("readLock(%q) = %v, want error containing %q", tt.content, err, tt.wantErr)
			}
		})
	}

	if err := os.WriteFile(path, []byte("8080|12345|s3cret\n"), 0644); err != nil {
		t.Fatal(err)
	}
	l, err := readLock(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.port != 8080 || l.pid != 12345 || l.secret != "s3cret" {
		t.Errorf("readLock() = %+v", l)
	}
}

func TestVerifyProcess(t *testing.T) {
	stubProcess(t, "")
	if err := verifyProcess(1); !errors.Is(err, ErrTrayNotRunning) {
		t.Errorf("missing process: got %v", err)
	}

	stubProcess(t, "other-app")
	if err := verifyProcess(1); err == nil {
		t.Error("expected error for wrong executable")
	}

	stubProcess(t, constants.TrayExecutablePrefix)
	if err := verifyProcess(1); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestTrayNotify(t *testing.T) {
	var got WebhookPayload
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(secretHeader) != "test-secret" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte("Unauthorized"))
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if got.Text == "fail" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatal(err)
	}
	port, _ := strconv.Atoi(u.Port())

	base := stubConfigDir(t)
	stubProcess(t, constants.TrayExecutablePrefix+"-bin")
	dir := filepath.Join(base, constants.TrayAppIdentifier)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	writeLock := func(secret string) {
		content := fmt.Sprintf("%d|4242|%s", port, secret)
		if err := os.WriteFile(filepath.Join(dir, constants.NotifierLockfileName), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}

	tray := NewTray()

	writeLock("test-secret")
	if err := tray.Notify(constants.SubmitErrorMessage); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Text != constants.SubmitErrorMessage || got.DurationMs != constants.NotificationDurationMs {
		t.Errorf("payload = %+v", got)
	}

	if err := tray.Notify("fail"); err == nil {
		t.Error("expected error for server failure")
	}

	writeLock("wrong-secret")
	if err := tray.Notify("hello"); err == nil || !strings.Contains(err.Error(), "401") {
		t.Errorf("expected 401 error, got %v", err)
	}
}

type senderFunc func(string) error

func (f senderFunc) Notify(text string) error { return f(text) }

func TestChain(t *testing.T) {
	var calls []string
	failing := senderFunc(func(text string) error {
		calls = append(calls, "failing")
		return errors.New("down")
	})
	working := senderFunc(func(text string) error {
		calls = append(calls, "working")
		return nil
	})
	unreached := senderFunc(func(text string) error {
		calls = append(calls, "unreached")
		return nil
	})

	if err := NewChain(nil, failing, working, unreached).Notify("hi"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Join(calls, ",") != "failing,working" {
		t.Errorf("calls = %v", calls)
	}
}

func TestChainLogsWhenAllFail(t *testing.T) {
	var buf strings.Builder
	l := log.New(&buf)

	failing := senderFunc(func(string) error { return errors.New("down") })
	if err := NewChain(l, failing).Notify(constants.SubmitErrorMessage); err != nil {
		t.Fatalf("Chain.Notify() = %v, want nil", err)
	}
	if !strings.Contains(buf.String(), constants.SubmitErrorMessage) {
		t.Errorf("log output %q does not contain the message", buf.String())
	}
}
