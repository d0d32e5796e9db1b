package gologin

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"

	"browser-use-gologin/internal/application/port/output"
	"browser-use-gologin/internal/domain/entity"

	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

var _ output.ProfileService = (*Service)(nil)

// CookieSeeder loads cookies into a freshly launched browser at controlURL.
type CookieSeeder func(ctx context.Context, controlURL string, cookies []entity.Cookie) error

type ServiceConfig struct {
	// ProfilesDir holds the per-run user data dirs; defaults to the OS temp dir.
	ProfilesDir string
}

// Service starts a local Orbita/Chromium bound to a GoLogin profile.
type Service struct {
	client *Client
	seed   CookieSeeder
	logger output.LoggerPort
	cfg    ServiceConfig
}

func NewService(client *Client, seed CookieSeeder, logger output.LoggerPort, cfg ServiceConfig) *Service {
	return &Service{
		client: client,
		seed:   seed,
		logger: logger,
		cfg:    cfg,
	}
}

func (s *Service) Start(ctx context.Context, opts entity.LaunchOptions) (output.Session, error) {
	log := s.logger.WithField("profile_id", opts.ProfileID)

	profile, err := s.client.Profile(ctx, opts.ProfileID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	proxy, err := resolveProxy(profile)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", opts.ProfileID, err)
	}

	var cookies []entity.Cookie
	if opts.WriteCookiesFromServer {
		cookies, err = s.client.Cookies(ctx, opts.ProfileID)
		if err != nil {
			return nil, fmt.Errorf("load profile cookies: %w", err)
		}
	}

	dir, err := os.MkdirTemp(s.cfg.ProfilesDir, "gologin_"+sanitize(opts.ProfileID)+"_")
	if err != nil {
		return nil, fmt.Errorf("create user data dir: %w", err)
	}

	l := s.launcher(opts, profile, proxy, dir).Context(ctx)

	controlURL, err := l.Launch()
	if err != nil {
		os.RemoveAll(dir)
		return nil, fmt.Errorf("launch browser %s: %w", opts.ExecPath, err)
	}

	u, err := url.Parse(controlURL)
	if err != nil {
		stopLauncher(l)
		return nil, fmt.Errorf("parse control url: %w", err)
	}

	session := newSession(opts.ProfileID, u.Host, proxy.auth(), func() error {
		stopLauncher(l)
		return nil
	})

	log.Info("Profile browser started",
		"address", session.Address(),
		"pid", l.PID(),
		"profile_name", profile.Name,
		"proxy", proxy.server())

	if len(cookies) > 0 && s.seed != nil {
		if err := s.seed(ctx, controlURL, cookies); err != nil {
			_ = session.Stop(ctx)
			return nil, fmt.Errorf("preload cookies: %w", err)
		}
		log.Debug("Cookies preloaded", "count", len(cookies))
	}

	return session, nil
}

func (s *Service) UploadCookies(ctx context.Context, profileID string, cookies []entity.Cookie) error {
	if err := s.client.UploadCookies(ctx, profileID, cookies); err != nil {
		return fmt.Errorf("upload cookies: %w", err)
	}
	s.logger.Debug("Cookies uploaded", "profile_id", profileID, "count", len(cookies))
	return nil
}

// launcher builds the command line. DISPLAY goes to the child env only.
func (s *Service) launcher(opts entity.LaunchOptions, profile *Profile, proxy *proxyConfig, dir string) *launcher.Launcher {
	bin := opts.ExecPath
	if bin == "" {
		bin, _ = launcher.LookPath()
	}

	l := launcher.New().
		Bin(bin).
		Headless(opts.Headless).
		UserDataDir(dir).
		Delete("no-startup-window").
		Delete("enable-automation").
		Set("window-size", strconv.Itoa(opts.WindowWidth)+","+strconv.Itoa(opts.WindowHeight)).
		Set("window-position", "0,0")

	for _, arg := range append(append([]string{}, entity.SandboxArgs...), opts.ExtraArgs...) {
		name, value, hasValue := strings.Cut(strings.TrimPrefix(arg, "--"), "=")
		if hasValue {
			l.Set(flags.Flag(name), value)
		} else {
			l.Set(flags.Flag(name))
		}
	}

	if ua := profile.Navigator.UserAgent; ua != "" {
		l.Set("user-agent", ua)
	}
	if lang := profile.Navigator.Language; lang != "" {
		l.Set("lang", strings.SplitN(lang, ",", 2)[0])
	}
	if proxy != nil {
		l.Proxy(proxy.server())
	}

	env := os.Environ()
	if opts.Display != "" {
		env = append(env, "DISPLAY="+opts.Display)
	}
	return l.Env(env...)
}

type proxyConfig struct {
	scheme   string
	host     string
	port     int
	username string
	password string
}

func (p *proxyConfig) server() string {
	if p == nil {
		return ""
	}
	return p.scheme + "://" + p.host + ":" + strconv.Itoa(p.port)
}

func (p *proxyConfig) auth() *entity.ProxyAuth {
	if p == nil || p.username == "" {
		return nil
	}
	return &entity.ProxyAuth{Username: p.username, Password: p.password}
}

// resolveProxy returns nil when the profile browses directly. A proxy the
// browser cannot use is an error, never a silent direct connection.
func resolveProxy(profile *Profile) (*proxyConfig, error) {
	mode := strings.ToLower(strings.TrimSpace(profile.Proxy.Mode))
	switch mode {
	case "", "none":
		return nil, nil
	case "http", "https", "socks4", "socks5":
		p := profile.Proxy
		if p.Host == "" || p.Port <= 0 {
			return nil, fmt.Errorf("%s proxy has no host or port", mode)
		}
		cfg := &proxyConfig{scheme: mode, host: p.Host, port: p.Port, username: p.Username, password: p.Password}
		if strings.HasPrefix(mode, "socks") && cfg.username != "" {
			return nil, fmt.Errorf("%s proxy with credentials is not supported by the browser", mode)
		}
		return cfg, nil
	case "gologin", "tor":
		if profile.AutoProxyServer == "" {
			return nil, fmt.Errorf("%s proxy has no autoProxyServer", mode)
		}
		server := profile.AutoProxyServer
		if !strings.Contains(server, "://") {
			server = "http://" + server
		}
		u, err := url.Parse(server)
		if err != nil || u.Hostname() == "" || u.Port() == "" {
			return nil, fmt.Errorf("%s proxy: invalid autoProxyServer %q", mode, profile.AutoProxyServer)
		}
		port, err := strconv.Atoi(u.Port())
		if err != nil {
			return nil, fmt.Errorf("%s proxy: invalid port in %q", mode, profile.AutoProxyServer)
		}
		return &proxyConfig{
			scheme:   u.Scheme,
			host:     u.Hostname(),
			port:     port,
			username: profile.AutoProxyUsername,
			password: profile.AutoProxyPassword,
		}, nil
	default:
		return nil, fmt.Errorf("unsupported proxy mode %q", profile.Proxy.Mode)
	}
}

func stopLauncher(l *launcher.Launcher) {
	l.Kill()
	l.Cleanup()
}

func sanitize(s string) string {
	result := make([]rune, 0, len(s))
	for _, r := range s {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			result = append(result, r)
		} else {
			result = append(result, '_')
		}
	}
	if len(result) == 0 {
		return "profile"
	}
	if len(result) > 40 {
		result = result[:40]
	}
	return string(result)
}
