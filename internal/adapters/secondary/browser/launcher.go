package browser

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"runtime"

	"github.com/fredcamaral/slidiff/internal/domain/ports"
)

// Launcher opens the diff report in a local browser
type Launcher struct {
	browsers []Browser
	lookPath func(file string) (string, error)
	start    func(name string, args ...string) error
	logger   *slog.Logger
}

// Browser represents a browser configuration
type Browser struct {
	Name    string
	Command string
	Args    func(url string) []string
}

// NewLauncher creates a launcher for the browsers known on this platform
func NewLauncher(logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}

	return &Launcher{
		browsers: platformBrowsers(runtime.GOOS),
		lookPath: exec.LookPath,
		start:    startDetached,
		logger:   logger.With("component", "browser"),
	}
}

// Launch opens a URL in the first available browser
func (l *Launcher) Launch(rawURL string, noOpen bool) error {
	if noOpen {
		return nil
	}

	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("refusing to open %q: not an http(s) URL", rawURL)
	}

	browser, err := l.selectBrowser()
	if err != nil {
		return fmt.Errorf("browser selection: %w", err)
	}

	if err := l.start(browser.Command, browser.Args(u.String())...); err != nil {
		return fmt.Errorf("launching %s: %w", browser.Name, err)
	}

	l.logger.Debug("Browser launched", "browser", browser.Name, "url", u.String())
	return nil
}

// Detect returns the name of the browser Launch would use
func (l *Launcher) Detect() (string, error) {
	browser, err := l.selectBrowser()
	if err != nil {
		return "", err
	}
	return browser.Name, nil
}

// selectBrowser returns the first browser whose executable is in PATH
func (l *Launcher) selectBrowser() (*Browser, error) {
	if len(l.browsers) == 0 {
		return nil, errors.New("no browsers available")
	}

	for _, candidate := range l.browsers {
		if _, err := l.lookPath(candidate.Command); err == nil {
			return &candidate, nil
		}
	}

	return nil, errors.New("no supported browsers found on this system")
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...) // #nosec G204 - command comes from the fixed browser table
	if err := cmd.Start(); err != nil {
		return err
	}

	// Don't wait for browser to close
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func urlArg(url string) []string {
	return []string{url}
}

// platformBrowsers lists browser candidates in preference order for goos
func platformBrowsers(goos string) []Browser {
	switch goos {
	case "darwin":
		return []Browser{
			{Name: "Default", Command: "open", Args: urlArg},
			{
				Name:    "Safari",
				Command: "open",
				Args: func(url string) []string {
					return []string{"-a", "Safari", url}
				},
			},
		}
	case "linux", "freebsd", "openbsd", "netbsd":
		return []Browser{
			{Name: "xdg-open", Command: "xdg-open", Args: urlArg},
			{Name: "sensible-browser", Command: "sensible-browser", Args: urlArg},
			{Name: "Firefox", Command: "firefox", Args: urlArg},
			{Name: "Chrome", Command: "google-chrome", Args: urlArg},
		}
	case "windows":
		return []Browser{
			{
				Name:    "Default",
				Command: "rundll32",
				Args: func(url string) []string {
					return []string{"url.dll,FileProtocolHandler", url}
				},
			},
		}
	default:
		return []Browser{}
	}
}

// Ensure Launcher implements ports.BrowserLauncher
var _ ports.BrowserLauncher = (*Launcher)(nil)
