package rod

import (
	"fmt"

	"browser-use-gologin/internal/application/port/output"
	"browser-use-gologin/internal/domain/entity"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// handleProxyAuth answers every proxy auth challenge until the browser context ends.
// rod's Browser.HandleAuth covers a single request, so the Fetch events are handled here.
func handleProxyAuth(browser *rod.Browser, auth *entity.ProxyAuth, logger output.LoggerPort) error {
	err := proto.FetchEnable{HandleAuthRequests: true}.Call(browser)
	if err != nil {
		return fmt.Errorf("enable proxy auth: %w", err)
	}

	wait := browser.EachEvent(
		func(e *proto.FetchRequestPaused) {
			go func() {
				if err := (proto.FetchContinueRequest{RequestID: e.RequestID}).Call(browser); err != nil {
					logger.Debug("Continue request failed", "error", err)
				}
			}()
		},
		func(e *proto.FetchAuthRequired) {
			go func() {
				resp := proxyChallengeResponse(e, auth)
				if err := (proto.FetchContinueWithAuth{RequestID: e.RequestID, AuthChallengeResponse: resp}).Call(browser); err != nil {
					logger.Debug("Proxy auth failed", "error", err)
				}
			}()
		},
	)
	go wait()
	return nil
}

// proxyChallengeResponse only hands the credentials to proxy challenges.
func proxyChallengeResponse(e *proto.FetchAuthRequired, auth *entity.ProxyAuth) *proto.FetchAuthChallengeResponse {
	if e.AuthChallenge == nil || e.AuthChallenge.Source != proto.FetchAuthChallengeSourceProxy {
		return &proto.FetchAuthChallengeResponse{Response: proto.FetchAuthChallengeResponseResponseDefault}
	}
	return &proto.FetchAuthChallengeResponse{
		Response: proto.FetchAuthChallengeResponseResponseProvideCredentials,
		Username: auth.Username,
		Password: auth.Password,
	}
}
