package runtask

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"browser-use-gologin/internal/application/port/output"
	"browser-use-gologin/internal/domain/entity"
	"browser-use-gologin/internal/infrastructure/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	events []string
}

func (r *recorder) add(e string) { r.events = append(r.events, e) }

type fakeGate struct {
	rec *recorder
	err error
}

func (g *fakeGate) Wait(context.Context) error {
	g.rec.add("gate")
	return g.err
}

type fakeSession struct {
	rec   *recorder
	stops int
	ctxOK bool
	auth  *entity.ProxyAuth
}

func (s *fakeSession) ProfileID() string            { return "p1" }
func (s *fakeSession) Address() string              { return "127.0.0.1:9222" }
func (s *fakeSession) ProxyAuth() *entity.ProxyAuth { return s.auth }

func (s *fakeSession) Stop(ctx context.Context) error {
	s.stops++
	s.ctxOK = ctx.Err() == nil
	s.rec.add("stop")
	return nil
}

type fakeProfiles struct {
	rec       *recorder
	session   *fakeSession
	startErr  error
	uploadErr error
	starts    int
	opts      entity.LaunchOptions
	uploaded  []entity.Cookie
}

func (p *fakeProfiles) Start(_ context.Context, opts entity.LaunchOptions) (output.Session, error) {
	p.starts++
	p.opts = opts
	p.rec.add("start")
	if p.startErr != nil {
		return nil, p.startErr
	}
	return p.session, nil
}

func (p *fakeProfiles) UploadCookies(_ context.Context, profileID string, cookies []entity.Cookie) error {
	p.rec.add("upload:" + profileID)
	p.uploaded = cookies
	return p.uploadErr
}

type fakeBrowser struct {
	output.BrowserPort
	rec    *recorder
	closes int
}

func (b *fakeBrowser) Close(context.Context) error {
	b.closes++
	b.rec.add("close")
	return nil
}

type fakeBrowsers struct {
	rec     *recorder
	browser *fakeBrowser
	address string
	path    string
	auth    *entity.ProxyAuth
	err     error
}

func (f *fakeBrowsers) Connect(_ context.Context, address, cookiesPath string, auth *entity.ProxyAuth) (output.BrowserPort, error) {
	f.rec.add("connect")
	f.address, f.path, f.auth = address, cookiesPath, auth
	if f.err != nil {
		return nil, f.err
	}
	return f.browser, nil
}

type fakeLLMs struct {
	rec *recorder
	cfg output.LLMConfig
}

func (f *fakeLLMs) New(cfg output.LLMConfig) (output.LLMPort, error) {
	f.rec.add("llm")
	f.cfg = cfg
	return nil, nil
}

type fakeAgent struct {
	rec      *recorder
	history  *entity.History
	err      error
	task     string
	maxSteps int
}

func (a *fakeAgent) New(output.BrowserPort, output.LLMPort, output.LoggerPort) output.AgentPort {
	return a
}

func (a *fakeAgent) Run(_ context.Context, task string, maxSteps int) (*entity.History, error) {
	a.rec.add("agent")
	a.task, a.maxSteps = task, maxSteps
	return a.history, a.err
}

type fakeJar struct {
	rec     *recorder
	cookies []entity.Cookie
	err     error
}

func (j *fakeJar) Read(string) ([]entity.Cookie, error) {
	j.rec.add("read")
	return j.cookies, j.err
}

func (j *fakeJar) Write(string, []entity.Cookie) error { return nil }

type harness struct {
	rec      *recorder
	gate     *fakeGate
	session  *fakeSession
	profiles *fakeProfiles
	browsers *fakeBrowsers
	llms     *fakeLLMs
	agent    *fakeAgent
	jar      *fakeJar
	cfg      Config
}

func twoActionHistory() *entity.History {
	h := &entity.History{}
	h.Add(entity.Step{
		Number:  1,
		URL:     "about:blank",
		Actions: []entity.Action{{Name: "go_to_url", Params: map[string]any{"url": "https://example.com"}}},
		Results: []entity.ActionResult{{ExtractedContent: "Navigated to https://example.com", Success: true}},
	})
	h.Add(entity.Step{
		Number:  2,
		URL:     "https://example.com/",
		Actions: []entity.Action{{Name: "done", Params: map[string]any{"text": "Example Domain"}}},
		Results: []entity.ActionResult{{ExtractedContent: "Example Domain", IsDone: true, Success: true}},
	})
	return h
}

func newHarness() *harness {
	rec := &recorder{}
	session := &fakeSession{rec: rec}
	return &harness{
		rec:      rec,
		gate:     &fakeGate{rec: rec},
		session:  session,
		profiles: &fakeProfiles{rec: rec, session: session},
		browsers: &fakeBrowsers{rec: rec, browser: &fakeBrowser{rec: rec}},
		llms:     &fakeLLMs{rec: rec},
		agent:    &fakeAgent{rec: rec, history: twoActionHistory()},
		jar:      &fakeJar{rec: rec, cookies: []entity.Cookie{{Name: "sid", Value: "1", Domain: ".example.com", Path: "/"}}},
		cfg: Config{
			LLM:           output.LLMConfig{Model: "gpt-4o-mini", APIKey: "sk", Temperature: 0.7},
			GoLoginAPIKey: "gl",
			ExecPath:      "/usr/bin/orbita-browser/chrome",
			Display:       ":99",
			WindowWidth:   1920,
			WindowHeight:  1080,
			CookiesPath:   "./cookies.json",
		},
	}
}

func (h *harness) useCase() *UseCase {
	uc := New(h.cfg, h.gate, h.profiles, h.browsers, h.llms, h.agent, h.jar, logger.NewNop())
	uc.newID = func() string { return "task-1" }
	return uc
}

func request() entity.TaskRequest {
	return entity.TaskRequest{ProfileID: "p1", Task: "open example.com and read the title", MaxSteps: 3}
}

func TestRun_Success(t *testing.T) {
	h := newHarness()

	summary, err := h.useCase().Run(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, []string{"gate", "start", "connect", "llm", "agent", "close", "read", "upload:p1", "stop"}, h.rec.events)
	assert.Equal(t, 2, summary.Steps)
	assert.True(t, summary.IsDone)
	assert.Empty(t, summary.Errors)
	assert.Equal(t, 1, h.session.stops)
	assert.Equal(t, 1, h.browsers.browser.closes)
	assert.Equal(t, h.jar.cookies, h.profiles.uploaded)
	assert.Equal(t, 3, h.agent.maxSteps)
	assert.Equal(t, "open example.com and read the title", h.agent.task)

	data, err := json.Marshal(summary)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"steps":2`)
	assert.Contains(t, string(data), `"is_done":true`)
	assert.Contains(t, string(data), `"errors":[]`)
}

func TestRun_LaunchOptionsAndWiring(t *testing.T) {
	h := newHarness()

	_, err := h.useCase().Run(context.Background(), request())
	require.NoError(t, err)

	opts := h.profiles.opts
	assert.Equal(t, "p1", opts.ProfileID)
	assert.False(t, opts.Headless)
	assert.True(t, opts.WriteCookiesFromServer)
	assert.Equal(t, []string{"--no-sandbox", "--disable-setuid-sandbox"}, opts.ExtraArgs)
	assert.Equal(t, 1920, opts.WindowWidth)
	assert.Equal(t, 1080, opts.WindowHeight)
	assert.Equal(t, ":99", opts.Display)
	assert.Equal(t, "/usr/bin/orbita-browser/chrome", opts.ExecPath)

	assert.Equal(t, "127.0.0.1:9222", h.browsers.address)
	assert.Equal(t, "./cookies.json", h.browsers.path)
	assert.Equal(t, "gpt-4o-mini", h.llms.cfg.Model)
	assert.InDelta(t, 0.7, h.llms.cfg.Temperature, 1e-6)
	assert.Nil(t, h.browsers.auth)
}

func TestRun_ProxyAuthReachesDriver(t *testing.T) {
	h := newHarness()
	h.session.auth = &entity.ProxyAuth{Username: "u", Password: "p"}

	_, err := h.useCase().Run(context.Background(), request())
	require.NoError(t, err)

	assert.Equal(t, &entity.ProxyAuth{Username: "u", Password: "p"}, h.browsers.auth)
}

func TestRun_DefaultMaxSteps(t *testing.T) {
	h := newHarness()
	req := request()
	req.MaxSteps = 0

	_, err := h.useCase().Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 10, h.agent.maxSteps)
}

func TestRun_MissingArguments(t *testing.T) {
	for name, req := range map[string]entity.TaskRequest{
		"no task":    {ProfileID: "p1"},
		"no profile": {Task: "x"},
		"blank task": {ProfileID: "p1", Task: "   "},
		"negative":   {ProfileID: "p1", Task: "x", MaxSteps: -1},
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarness()

			_, err := h.useCase().Run(context.Background(), req)

			assert.ErrorIs(t, err, entity.ErrArgument)
			assert.Zero(t, h.profiles.starts)
			assert.Empty(t, h.rec.events)
		})
	}
}

func TestRun_MissingCredentials(t *testing.T) {
	h := newHarness()
	h.cfg.LLM.APIKey = ""

	_, err := h.useCase().Run(context.Background(), request())
	assert.ErrorIs(t, err, entity.ErrConfig)
	assert.EqualError(t, err, "LLM_API_KEY environment variable is required")
	assert.Empty(t, h.rec.events)

	h = newHarness()
	h.cfg.GoLoginAPIKey = ""

	_, err = h.useCase().Run(context.Background(), request())
	assert.ErrorIs(t, err, entity.ErrConfig)
	assert.Empty(t, h.rec.events)
}

func TestRun_CredentialsCheckedBeforeArguments(t *testing.T) {
	h := newHarness()
	h.cfg.GoLoginAPIKey = ""

	_, err := h.useCase().Run(context.Background(), entity.TaskRequest{})
	assert.ErrorIs(t, err, entity.ErrConfig)
}

func TestRun_ReadinessFailure(t *testing.T) {
	h := newHarness()
	h.gate.err = entity.NewReadinessError(errors.New("display not ready after 10 attempts: dial unix: no such file"))

	_, err := h.useCase().Run(context.Background(), request())

	assert.ErrorIs(t, err, entity.ErrReadiness)
	assert.Equal(t, []string{"gate"}, h.rec.events)
}

func TestRun_StartFailureDoesNotStop(t *testing.T) {
	h := newHarness()
	h.profiles.startErr = errors.New("profile not found")

	_, err := h.useCase().Run(context.Background(), request())

	assert.ErrorIs(t, err, entity.ErrOrchestration)
	assert.EqualError(t, err, "error processing task: start profile p1: profile not found")
	assert.Zero(t, h.session.stops)
}

func TestRun_ReleasedOnceOnEveryFailure(t *testing.T) {
	cases := map[string]func(h *harness){
		"connect": func(h *harness) { h.browsers.err = errors.New("connection refused") },
		"agent":   func(h *harness) { h.agent.err = errors.New("boom") },
		"read":    func(h *harness) { h.jar.err = errors.New("no such file") },
		"upload":  func(h *harness) { h.profiles.uploadErr = errors.New("401 unauthorized") },
	}
	for name, breakIt := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness()
			breakIt(h)

			summary, err := h.useCase().Run(context.Background(), request())

			assert.Nil(t, summary)
			assert.ErrorIs(t, err, entity.ErrOrchestration)
			assert.Equal(t, 1, h.session.stops)
			assert.Equal(t, "stop", h.rec.events[len(h.rec.events)-1])
		})
	}
}

func TestRun_AgentFailureClosesBrowserAndSkipsUpload(t *testing.T) {
	h := newHarness()
	h.agent.err = errors.New("boom")

	_, err := h.useCase().Run(context.Background(), request())

	assert.EqualError(t, err, "error processing task: agent run: boom")
	assert.Equal(t, 1, h.browsers.browser.closes)
	assert.Nil(t, h.profiles.uploaded)
	assert.NotContains(t, h.rec.events, "read")
}

func TestRun_ReleaseSurvivesCancelledContext(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.agent.err = context.Canceled

	uc := h.useCase()
	uc.agents = &cancellingAgent{fakeAgent: h.agent, cancel: cancel}

	_, err := uc.Run(ctx, request())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, h.session.stops)
	assert.True(t, h.session.ctxOK)
}

type cancellingAgent struct {
	*fakeAgent
	cancel context.CancelFunc
}

func (a *cancellingAgent) New(output.BrowserPort, output.LLMPort, output.LoggerPort) output.AgentPort {
	return a
}

func (a *cancellingAgent) Run(ctx context.Context, task string, maxSteps int) (*entity.History, error) {
	a.cancel()
	return a.fakeAgent.Run(ctx, task, maxSteps)
}

func TestRun_SerializesRuns(t *testing.T) {
	h := newHarness()
	uc := h.useCase()
	uc.sem <- struct{}{}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := uc.Run(ctx, request())

	assert.ErrorIs(t, err, entity.ErrOrchestration)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, h.profiles.starts)
}
