package scraper

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/go-rod/rod/lib/proto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcess struct {
	pid   int
	steps []string
}

func (p *fakeProcess) PID() int { return p.pid }
func (p *fakeProcess) Kill()    { p.steps = append(p.steps, "kill") }
func (p *fakeProcess) Cleanup() { p.steps = append(p.steps, "cleanup") }

func TestDiscardProcess_KillsThenRemovesProfile(t *testing.T) {
	p := &fakeProcess{pid: 4242}
	discardProcess(p)
	assert.Equal(t, []string{"kill", "cleanup"}, p.steps)
}

func TestDiscardProcess_NeverStarted(t *testing.T) {
	p := &fakeProcess{}
	discardProcess(p)
	assert.Empty(t, p.steps)
}

type cdpCall struct {
	method string
	params []byte
}

// recordingClient captures CDP calls instead of sending them.
type recordingClient struct {
	calls []cdpCall
}

func (c *recordingClient) Call(_ context.Context, _, method string, params interface{}) ([]byte, error) {
	b, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	c.calls = append(c.calls, cdpCall{method: method, params: b})
	return []byte("{}"), nil
}

func TestProxyAuth_AnswersEveryChallenge(t *testing.T) {
	client := &recordingClient{}
	a := proxyAuth{client: client, username: "user", password: "pass"}

	for _, id := range []proto.FetchRequestID{"1", "2"} {
		require.NoError(t, a.continueRequest(&proto.FetchRequestPaused{RequestID: id}))
		require.NoError(t, a.provideCredentials(&proto.FetchAuthRequired{RequestID: id}))
	}

	require.Len(t, client.calls, 4)
	for i, call := range client.calls {
		if i%2 == 0 {
			assert.Equal(t, "Fetch.continueRequest", call.method)
			continue
		}
		assert.Equal(t, "Fetch.continueWithAuth", call.method)

		var got proto.FetchContinueWithAuth
		require.NoError(t, json.Unmarshal(call.params, &got))
		require.NotNil(t, got.AuthChallengeResponse)
		assert.Equal(t, proto.FetchAuthChallengeResponseResponseProvideCredentials, got.AuthChallengeResponse.Response)
		assert.Equal(t, "user", got.AuthChallengeResponse.Username)
		assert.Equal(t, "pass", got.AuthChallengeResponse.Password)
	}

	var paused proto.FetchContinueRequest
	require.NoError(t, json.Unmarshal(client.calls[2].params, &paused))
	assert.Equal(t, proto.FetchRequestID("2"), paused.RequestID)
}
