package rod

import (
	"context"
	"fmt"
	"time"

	"browser-use-gologin/internal/application/port/output"
	"browser-use-gologin/internal/domain/entity"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

var _ output.BrowserFactory = (*Factory)(nil)

const defaultTimeout = 15 * time.Second

type Config struct {
	// Timeout bounds single page operations such as lookups and navigation.
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{Timeout: defaultTimeout}
}

// Factory attaches drivers to profile browsers that are already running.
type Factory struct {
	cfg    Config
	jar    output.CookieJar
	logger output.LoggerPort
}

func NewFactory(cfg Config, jar output.CookieJar, logger output.LoggerPort) *Factory {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Factory{cfg: cfg, jar: jar, logger: logger}
}

// Connect attaches to the DevTools endpoint at address (host:port or ws URL).
// The connection lives until Close, independent of ctx. A non-nil auth is
// answered to every proxy challenge while connected.
func (f *Factory) Connect(ctx context.Context, address, cookiesPath string, auth *entity.ProxyAuth) (output.BrowserPort, error) {
	controlURL, err := launcher.ResolveURL(address)
	if err != nil {
		return nil, fmt.Errorf("resolve devtools endpoint %s: %w", address, err)
	}

	connCtx, disconnect := context.WithCancel(context.WithoutCancel(ctx))

	browser := rod.New().ControlURL(controlURL).Context(connCtx).NoDefaultDevice()
	if err := browser.Connect(); err != nil {
		disconnect()
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	if auth != nil {
		if err := handleProxyAuth(browser, auth, f.logger); err != nil {
			disconnect()
			return nil, err
		}
	}

	page, err := firstPage(browser)
	if err != nil {
		disconnect()
		return nil, err
	}

	f.logger.Debug("Browser driver connected",
		"address", address,
		"cookies_path", cookiesPath,
		"proxy_auth", auth != nil)

	return &BrowserAdapter{
		browser:     browser,
		disconnect:  disconnect,
		jar:         f.jar,
		cookiesPath: cookiesPath,
		timeout:     f.cfg.Timeout,
		logger:      f.logger,
		page:        page,
		elements:    map[int]entity.UIElement{},
	}, nil
}

func firstPage(browser *rod.Browser) (*rod.Page, error) {
	pages, err := browser.Pages()
	if err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	if !pages.Empty() {
		return pages.First(), nil
	}
	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("open page: %w", err)
	}
	return page, nil
}

// SeedCookies loads cookies into the browser at controlURL and disconnects.
func SeedCookies(ctx context.Context, controlURL string, cookies []entity.Cookie) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	browser := rod.New().ControlURL(controlURL).Context(ctx).NoDefaultDevice()
	if err := browser.Connect(); err != nil {
		return fmt.Errorf("connect to browser: %w", err)
	}
	if err := browser.SetCookies(ToCookieParams(cookies)); err != nil {
		return fmt.Errorf("set cookies: %w", err)
	}
	return nil
}
