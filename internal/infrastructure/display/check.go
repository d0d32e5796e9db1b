package display

import (
	"context"
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"browser-use-gologin/internal/application/port/output"
)

var _ output.ReadinessCheck = (*X11Check)(nil)

const x11BasePort = 6000

// X11Check reports whether an X server is accepting connections for a DISPLAY value.
type X11Check struct {
	display   string
	socketDir string
	timeout   time.Duration
	dialer    func(ctx context.Context, network, address string) (net.Conn, error)
}

func NewX11Check(display string) *X11Check {
	d := &net.Dialer{}
	return &X11Check{
		display:   display,
		socketDir: "/tmp/.X11-unix",
		timeout:   500 * time.Millisecond,
		dialer:    d.DialContext,
	}
}

func (c *X11Check) Check(ctx context.Context) error {
	network, address, err := c.endpoint()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	conn, err := c.dialer(ctx, network, address)
	if err != nil {
		return fmt.Errorf("display %s not ready: %w", c.display, err)
	}
	return conn.Close()
}

// endpoint maps ":99" to the unix socket X99 and "host:1" to TCP port 6001.
func (c *X11Check) endpoint() (string, string, error) {
	host, num, err := parseDisplay(c.display)
	if err != nil {
		return "", "", err
	}
	if host == "" || host == "unix" {
		return "unix", filepath.Join(c.socketDir, "X"+strconv.Itoa(num)), nil
	}
	return "tcp", net.JoinHostPort(host, strconv.Itoa(x11BasePort+num)), nil
}

func parseDisplay(display string) (string, int, error) {
	i := strings.LastIndex(display, ":")
	if i < 0 {
		return "", 0, fmt.Errorf("invalid DISPLAY %q", display)
	}
	host := display[:i]
	rest := display[i+1:]
	if dot := strings.Index(rest, "."); dot >= 0 {
		rest = rest[:dot]
	}
	num, err := strconv.Atoi(rest)
	if err != nil || num < 0 {
		return "", 0, fmt.Errorf("invalid DISPLAY %q", display)
	}
	return host, num, nil
}
