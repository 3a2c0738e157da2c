package security

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestLimiter(max int, limits map[string]int) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)}
	l := NewRateLimiter(60*time.Second, max, limits)
	l.now = clock.Now
	return l, clock
}

func TestRateLimiter_WindowAndReset(t *testing.T) {
	l, clock := newTestLimiter(100, nil)

	for i := 1; i <= 100; i++ {
		ok, _ := l.Check("10.0.0.1", "api")
		require.True(t, ok, "request %d should pass", i)
	}

	ok, retry := l.Check("10.0.0.1", "api")
	assert.False(t, ok, "request 101 inside the window should be rejected")
	assert.Equal(t, 60*time.Second, retry)

	clock.Advance(61 * time.Second)
	ok, _ = l.Check("10.0.0.1", "api")
	assert.True(t, ok, "first request after the window should pass")
}

func TestRateLimiter_KeysAndIPsAreIndependent(t *testing.T) {
	l, _ := newTestLimiter(2, map[string]int{"login": 1})

	ok, _ := l.Check("10.0.0.1", "login")
	assert.True(t, ok)
	ok, _ = l.Check("10.0.0.1", "login")
	assert.False(t, ok)

	ok, _ = l.Check("10.0.0.1", "api")
	assert.True(t, ok)
	ok, _ = l.Check("10.0.0.2", "login")
	assert.True(t, ok)

	assert.Equal(t, 1, l.Limit("login"))
	assert.Equal(t, 2, l.Limit("api"))
}

func TestRateLimiter_SweepsExpiredWindows(t *testing.T) {
	l, clock := newTestLimiter(5, nil)
	for i := 0; i < 10; i++ {
		l.Check(fmt.Sprintf("10.0.0.%d", i), "api")
	}
	assert.Equal(t, 10, l.Tracked())

	clock.Advance(2 * time.Minute)
	l.Check("10.0.1.1", "api")
	assert.Equal(t, 1, l.Tracked())
}

func TestRateLimiter_Concurrent(t *testing.T) {
	l, _ := newTestLimiter(50, nil)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Check("10.0.0.9", "api"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, allowed)
}

func TestContentFilter(t *testing.T) {
	f, err := NewContentFilter([]string{`(?i)drop\s+table`})
	require.NoError(t, err)

	suspicious := []string{
		`{"purpose":"<script>alert(1)</script>"}`,
		`{"notes":"< SCRIPT src=x>"}`,
		`{"__proto__":{"admin":true}}`,
		`{"a":{"constructor":{"prototype":{}}}, "b": "constructor.prototype"}`,
		`{"link":"javascript:alert(1)"}`,
		`{"img":"<img onerror=alert(1)>"}`,
		`{"x":"eval (document.cookie)"}`,
		`{"q":"1; DROP TABLE users"}`,
	}
	for _, body := range suspicious {
		_, hit := f.Match([]byte(body))
		assert.True(t, hit, body)
	}

	clean := []string{
		`{"purpose":"proyecto de realidad virtual","software":["Unity"]}`,
		`{"description":"Script de Python para el laboratorio"}`,
		`{"notes":"prototype of the headset mount"}`,
		``,
	}
	for _, body := range clean {
		_, hit := f.Match([]byte(body))
		assert.False(t, hit, body)
	}

	_, err = NewContentFilter([]string{`(`})
	assert.Error(t, err)
}

func TestGuard(t *testing.T) {
	l, _ := newTestLimiter(3, nil)
	f, err := NewContentFilter(nil)
	require.NoError(t, err)
	g := NewGuard(l, f, NewBlockList())

	t.Run("Clean Body Passes", func(t *testing.T) {
		require.True(t, g.Admit("10.0.0.1", "api").Allowed)
		assert.True(t, g.Scan("10.0.0.1", []byte(`{"purpose":"clase"}`)).Allowed)
	})

	t.Run("Suspicious Body Blocks IP For Good", func(t *testing.T) {
		require.True(t, g.Admit("10.0.0.3", "api").Allowed)
		v := g.Scan("10.0.0.3", []byte(`{"x":"<script>"}`))
		assert.False(t, v.Allowed)
		assert.Equal(t, KindSuspicious, v.Kind)
		assert.True(t, v.NewlyBlocked)
		assert.True(t, v.Report)

		v = g.Admit("10.0.0.3", "other")
		assert.Equal(t, KindBlockedRequest, v.Kind)
		assert.True(t, v.Report)
		for i := 0; i < 5; i++ {
			v = g.Admit("10.0.0.3", "other")
			assert.False(t, v.Allowed)
			assert.Equal(t, KindBlockedRequest, v.Kind)
			assert.False(t, v.Report, "repeat blocked requests inside the window are not reported")
		}
		assert.True(t, g.BlockList().IsBlocked("10.0.0.3"))
		require.Len(t, g.BlockList().List(), 1)
		assert.Equal(t, "10.0.0.3", g.BlockList().List()[0].IP)
	})

	t.Run("Prototype Pollution Body", func(t *testing.T) {
		v := g.Scan("10.0.0.7", []byte(`{"__proto__":{"admin":true},"x":"<script>"}`))
		assert.False(t, v.Allowed)
		assert.True(t, v.NewlyBlocked)
		assert.False(t, g.Admit("10.0.0.7", "admin").Allowed)
	})

	t.Run("Blocked List Entry Reported Once", func(t *testing.T) {
		require.True(t, g.BlockList().Block("10.0.0.8", "manual", time.Now()))
		first := g.Admit("10.0.0.8", "api")
		assert.Equal(t, KindBlockedRequest, first.Kind)
		assert.True(t, first.Report)
		assert.False(t, g.Admit("10.0.0.8", "api").Report)
	})

	t.Run("Rate Limit", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			assert.True(t, g.Admit("10.0.0.4", "api").Allowed)
		}
		v := g.Admit("10.0.0.4", "api")
		assert.False(t, v.Allowed)
		assert.Equal(t, KindRateLimited, v.Kind)
		assert.Positive(t, v.RetryAfter)
		assert.True(t, v.Report)
		assert.False(t, g.Admit("10.0.0.4", "api").Report)
		assert.False(t, g.BlockList().IsBlocked("10.0.0.4"))
	})
}

func TestBlockList_AddOnce(t *testing.T) {
	b := NewBlockList()
	now := time.Now()
	assert.True(t, b.Block("10.1.1.1", "test", now))
	assert.False(t, b.Block("10.1.1.1", "again", now))
	assert.True(t, b.IsBlocked("10.1.1.1"))
	assert.False(t, b.IsBlocked("10.1.1.2"))
}
