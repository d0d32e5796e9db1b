package gologin

import (
	"context"
	"sync"

	"browser-use-gologin/internal/application/port/output"
	"browser-use-gologin/internal/domain/entity"
)

var _ output.Session = (*Session)(nil)

type Session struct {
	profileID string
	address   string
	proxyAuth *entity.ProxyAuth
	stop      func() error

	once sync.Once
	err  error
}

func newSession(profileID, address string, proxyAuth *entity.ProxyAuth, stop func() error) *Session {
	return &Session{profileID: profileID, address: address, proxyAuth: proxyAuth, stop: stop}
}

func (s *Session) ProfileID() string {
	return s.profileID
}

// Address is the host:port of the DevTools endpoint.
func (s *Session) Address() string {
	return s.address
}

func (s *Session) ProxyAuth() *entity.ProxyAuth {
	return s.proxyAuth
}

// Stop kills the browser and removes its user data dir. Later calls return the first result.
func (s *Session) Stop(ctx context.Context) error {
	s.once.Do(func() {
		done := make(chan error, 1)
		go func() { done <- s.stop() }()
		select {
		case s.err = <-done:
		case <-ctx.Done():
			s.err = ctx.Err()
		}
	})
	return s.err
}
