// Package notifier delivers user-visible messages outside the terminal, via
// the desktop tray companion when it is running.
package notifier

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-ps"

	"github.com/julianstephens/activities/internal/constants"
)

var (
	userConfigDirFunc = os.UserConfigDir
	findProcessFunc   = ps.FindProcess

	// ErrTrayNotRunning means no live tray process owns the lockfile.
	ErrTrayNotRunning = errors.New(constants.TrayExecutablePrefix + " is not running")
)

const secretHeader = "X-Activities-Secret"

type WebhookPayload struct {
	Text       string `json:"text"`
	DurationMs uint32 `json:"duration_ms"`
}

// lock is the parsed content of the tray lockfile: port|pid|secret.
type lock struct {
	port   int
	pid    int
	secret string
}

// Tray posts notifications to the tray companion's local webhook.
type Tray struct {
	client *http.Client
}

func NewTray() *Tray {
	return &Tray{client: &http.Client{Timeout: 2 * time.Second}}
}

func (t *Tray) Notify(text string) error {
	dir, err := TrayConfigDir()
	if err != nil {
		return err
	}

	l, err := readLock(filepath.Join(dir, constants.NotifierLockfileName))
	if err != nil {
		return err
	}
	if err := verifyProcess(l.pid); err != nil {
		return err
	}

	return t.send(l, WebhookPayload{Text: text, DurationMs: constants.NotificationDurationMs})
}

// TrayConfigDir returns the directory holding the tray lockfile. The tray's
// settings.json may point it elsewhere via settings.lockfile_dir.
func TrayConfigDir() (string, error) {
	configDir, err := userConfigDirFunc()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	dir := filepath.Join(configDir, constants.TrayAppIdentifier)

	data, err := os.ReadFile(filepath.Join(dir, "settings.json"))
	if err != nil {
		return dir, nil
	}
	var settings struct {
		Settings struct {
			LockfileDir string `json:"lockfile_dir"`
		} `json:"settings"`
	}
	if err := json.Unmarshal(data, &settings); err == nil && settings.Settings.LockfileDir != "" {
		return settings.Settings.LockfileDir, nil
	}
	return dir, nil
}

func readLock(path string) (lock, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return lock{}, ErrTrayNotRunning
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return lock{}, errors.New("lockfile is malformed")
	}

	port, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return lock{}, errors.New("invalid port number in lockfile")
	}
	if port < 1 || port > 65535 {
		return lock{}, fmt.Errorf("port number %d is outside valid range (1-65535)", port)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return lock{}, errors.New("invalid process ID in lockfile")
	}

	secret := strings.TrimSpace(parts[2])
	if secret == "" {
		return lock{}, errors.New("secret in lockfile is empty")
	}
	return lock{port: port, pid: pid, secret: secret}, nil
}

// verifyProcess guards against a stale lockfile whose pid was reused.
func verifyProcess(pid int) error {
	process, err := findProcessFunc(pid)
	if err != nil || process == nil {
		return ErrTrayNotRunning
	}
	if !strings.HasPrefix(process.Executable(), constants.TrayExecutablePrefix) {
		return fmt.Errorf("process with PID %d is not %s (is %s)", pid, constants.TrayExecutablePrefix, process.Executable())
	}
	return nil
}

func (t *Tray) send(l lock, payload WebhookPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("http://127.0.0.1:%d", l.port), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(secretHeader, l.secret)

	res, err := t.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}
	msg, _ := io.ReadAll(res.Body)
	return fmt.Errorf("notification failed with status %d: %s", res.StatusCode, string(msg))
}

// Sender is anything that can show a message. store.Notifier satisfies it.
type Sender interface {
	Notify(text string) error
}

// Chain tries each sender in order and stops at the first success. When every
// sender fails the message is logged at warn level and nil is returned.
type Chain struct {
	senders []Sender
	log     *log.Logger
}

func NewChain(l *log.Logger, senders ...Sender) *Chain {
	return &Chain{senders: senders, log: l}
}

func (c *Chain) Notify(text string) error {
	var errs []error
	for _, s := range c.senders {
		err := s.Notify(text)
		if err == nil {
			return nil
		}
		errs = append(errs, err)
	}
	if c.log != nil {
		c.log.Warn(text, "delivery", errors.Join(errs...))
	}
	return nil
}
