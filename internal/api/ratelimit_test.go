package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_SlidingWindow(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Limit: 2, Window: time.Minute, KeyFunc: VoterKey})
	defer rl.Stop()

	req := httptest.NewRequest(http.MethodPost, "/api/polls/1/votes", nil)
	req.Header.Set(voterHeader, "u1")

	assert.True(t, rl.Allow(req))
	assert.True(t, rl.Allow(req))
	assert.False(t, rl.Allow(req))

	other := httptest.NewRequest(http.MethodPost, "/api/polls/1/votes", nil)
	other.Header.Set(voterHeader, "u2")
	assert.True(t, rl.Allow(other), "limits are per voter")
}

func TestVoterKey(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:4411"
	assert.Equal(t, "ip:203.0.113.9", VoterKey(req))

	req.Header.Set(voterHeader, "abc")
	assert.Equal(t, "voter:abc", VoterKey(req))
}

func TestRateLimiter_StopIsIdempotent(t *testing.T) {
	rls := NewRateLimiters()
	rls.Stop()
	rls.Stop()
}
