package chat_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-pkce-chat/chat"
	"github.com/stretchr/testify/require"
)

const (
	testToken     = "access-token-123"
	secondTimeout = 2 * time.Second
	pollInterval  = 5 * time.Millisecond
)

var errUseOfClosed = errors.New("use of closed connection")

// fakeTokens plays the part of the auth session.
type fakeTokens struct {
	mu    sync.Mutex
	token string
}

func (f *fakeTokens) AccessToken() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.token != ""
}

func (f *fakeTokens) logout() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.token = ""
}

// fakeConn is a connection whose inbound frames are pushed by the test.
type fakeConn struct {
	frames  chan string
	failure chan error
	closed  chan struct{}

	mu        sync.Mutex
	written   []string
	writeErr  error
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		frames:  make(chan string, 64),
		failure: make(chan error, 1),
		closed:  make(chan struct{}),
	}
}

func (c *fakeConn) Read(ctx context.Context) (string, error) {
	select {
	case frame := <-c.frames:
		return frame, nil
	case err := <-c.failure:
		return "", err
	case <-c.closed:
		return "", errUseOfClosed
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

func (c *fakeConn) Write(_ context.Context, frame string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.written = append(c.written, frame)
	return nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) push(frames ...string) {
	for _, f := range frames {
		c.frames <- f
	}
}

func (c *fakeConn) writes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.written...)
}

func (c *fakeConn) isClosed() bool {
	select {
	case <-c.closed:
		return true
	default:
		return false
	}
}

// fakeDialer hands out fresh fakeConns and records every dial.
type fakeDialer struct {
	mu       sync.Mutex
	conns    []*fakeConn
	tokens   []string
	dialErr  error
	gate     chan struct{}
	greeting []string
}

// hold makes the next dials block until the returned release func is called.
func (d *fakeDialer) hold(t *testing.T) (release func()) {
	t.Helper()
	gate := make(chan struct{})
	d.mu.Lock()
	d.gate = gate
	d.mu.Unlock()

	var once sync.Once
	release = func() { once.Do(func() { close(gate) }) }
	t.Cleanup(release)
	return release
}

func (d *fakeDialer) Dial(ctx context.Context, token string) (chat.Conn, error) {
	d.mu.Lock()
	d.tokens = append(d.tokens, token)
	gate := d.gate
	d.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.dialErr != nil {
		return nil, d.dialErr
	}
	conn := newFakeConn()
	conn.push(d.greeting...)
	d.conns = append(d.conns, conn)
	return conn, nil
}

func (d *fakeDialer) dialCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.tokens)
}

func (d *fakeDialer) conn(t *testing.T) *fakeConn {
	t.Helper()
	d.mu.Lock()
	defer d.mu.Unlock()
	require.NotEmpty(t, d.conns)
	return d.conns[len(d.conns)-1]
}

// recorder collects observer notifications.
type recorder struct {
	mu    sync.Mutex
	notes []chat.Notification
}

func (r *recorder) observe(n chat.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notes = append(r.notes, n)
}

func (r *recorder) all() []chat.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]chat.Notification(nil), r.notes...)
}

func (r *recorder) of(kind chat.NotificationKind) []chat.Notification {
	var out []chat.Notification
	for _, n := range r.all() {
		if n.Kind == kind {
			out = append(out, n)
		}
	}
	return out
}

func (r *recorder) states() []chat.ConnectionState {
	var out []chat.ConnectionState
	for _, n := range r.of(chat.StateChanged) {
		out = append(out, n.State)
	}
	return out
}

// waitFor blocks until a notification of kind has been seen and returns the first one.
func (r *recorder) waitFor(t *testing.T, kind chat.NotificationKind) chat.Notification {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(r.of(kind)) > 0
	}, secondTimeout, pollInterval, "no %s notification", kind)
	return r.of(kind)[0]
}

// testFixture holds all test dependencies
type testFixture struct {
	dialer   *fakeDialer
	tokens   *fakeTokens
	recorder *recorder
	session  *chat.Session
}

// setupTestFixture creates an authenticated, closed session over a fake dialer
func setupTestFixture(t *testing.T, options ...chat.SessionOption) *testFixture {
	t.Helper()

	f := &testFixture{
		dialer:   &fakeDialer{},
		tokens:   &fakeTokens{token: testToken},
		recorder: &recorder{},
	}
	options = append([]chat.SessionOption{chat.WithObserver(f.recorder.observe)}, options...)
	session, err := chat.NewSession(f.dialer, f.tokens, options...)
	require.NoError(t, err)
	f.session = session
	t.Cleanup(func() { _ = session.Close() })
	return f
}

// open opens the session and returns the connection it dialed.
func (f *testFixture) open(t *testing.T) *fakeConn {
	t.Helper()
	require.NoError(t, f.session.Open(context.Background()))
	return f.dialer.conn(t)
}
