// Package browser opens image and help links outside the terminal.
package browser

import (
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

func defaultCommand(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

// command is swapped in tests.
var command = defaultCommand

// Open opens an http or https URL in the user's default browser.
func Open(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("browser.Open: not a web URL: %q", rawURL)
	}
	switch runtime.GOOS {
	case "darwin":
		return command("open", u.String())
	case "linux":
		return command("xdg-open", u.String())
	case "windows":
		return command("rundll32", "url.dll,FileProtocolHandler", u.String())
	default:
		return fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}
}

// Resolve turns an asset reference from the API into an absolute URL.
// Absolute references are returned unchanged; paths such as
// "uploads/a.jpg" are served from the API host root, not under its /api
// prefix.
func Resolve(apiBase, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if r, err := url.Parse(ref); err == nil && r.IsAbs() {
		return ref
	}
	base, err := url.Parse(apiBase)
	if err != nil || base.Host == "" {
		return ref
	}
	origin := &url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/"}
	r, err := url.Parse(strings.TrimPrefix(ref, "/"))
	if err != nil {
		return ref
	}
	return origin.ResolveReference(r).String()
}
