package scraper

import (
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
)

// proxyAuth answers Fetch events for the lifetime of a browser. Fetch is
// enabled at browser level with auth handling on, so every request pauses:
// each one is continued and every auth challenge gets the credentials.
type proxyAuth struct {
	client   proto.Client
	username string
	password string
}

func (a proxyAuth) continueRequest(e *proto.FetchRequestPaused) error {
	return proto.FetchContinueRequest{RequestID: e.RequestID}.Call(a.client)
}

func (a proxyAuth) provideCredentials(e *proto.FetchAuthRequired) error {
	return proto.FetchContinueWithAuth{
		RequestID: e.RequestID,
		AuthChallengeResponse: &proto.FetchAuthChallengeResponse{
			Response: proto.FetchAuthChallengeResponseResponseProvideCredentials,
			Username: a.username,
			Password: a.password,
		},
	}.Call(a.client)
}

// armProxyAuth subscribes the handlers and enables the Fetch domain. The
// listener stops when the browser context is canceled.
func armProxyAuth(browser *rod.Browser, username, password string) error {
	a := proxyAuth{client: browser, username: username, password: password}

	wait := browser.EachEvent(
		func(e *proto.FetchRequestPaused) {
			go func() {
				if err := a.continueRequest(e); err != nil {
					slog.Debug("continue paused request failed", "error", err)
				}
			}()
		},
		func(e *proto.FetchAuthRequired) {
			go func() {
				if err := a.provideCredentials(e); err != nil {
					slog.Debug("proxy auth response failed", "error", err)
				}
			}()
		},
	)
	go wait()

	return proto.FetchEnable{HandleAuthRequests: true}.Call(browser)
}
