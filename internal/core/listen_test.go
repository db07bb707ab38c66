package core

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"shout/internal/capability"
	"shout/internal/errors"
	"shout/internal/metrics"
	"shout/internal/session"
	"shout/util"
)

// startServer runs a ListenMode with an Echo capability on a free port
// and returns the port. The server stops when the test ends.
func startServer(t *testing.T, maxClients int, m *metrics.Collector) int {
	t.Helper()

	port, err := util.FindFreePort()
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	mode := &ListenMode{
		Address:    fmt.Sprintf("127.0.0.1:%d", port),
		MaxClients: maxClients,
		Capability: &capability.Echo{Metrics: m},
		Logger:     util.NewLogger(0),
		Metrics:    m,
	}

	done := make(chan error, 1)
	go func() { done <- mode.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Error("server did not shut down in time")
		}
	})

	return port
}

// dialSession opens a client session to the test server, retrying the
// dial briefly so tests need not race the listener coming up.
func dialSession(t *testing.T, port int) *session.Session {
	t.Helper()
	addr := fmt.Sprintf("127.0.0.1:%d", port)

	var conn net.Conn
	var err error
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		conn, err = net.DialTimeout("tcp", addr, 500*time.Millisecond)
		if err == nil {
			break
		}
		time.Sleep(20 * time.Millisecond)
	}
	if err != nil {
		t.Fatalf("dial %s: %v", addr, err)
	}
	sess := session.New(conn, nil)
	t.Cleanup(func() { sess.Close() })
	return sess
}

func TestListenMode_BindFailureIsFatal(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer ln.Close()

	mode := &ListenMode{
		Address:    ln.Addr().String(), // already taken
		MaxClients: 1,
		Capability: &capability.Echo{},
		Logger:     util.NewLogger(0),
	}

	err = mode.Run(context.Background())
	if err == nil {
		t.Fatal("expected bind failure")
	}
	var ne *errors.NetworkError
	if !errors.As(err, &ne) || ne.Op != "listen" {
		t.Errorf("err = %v, want NetworkError with Op=listen", err)
	}
}

// TestListenMode_Scenario walks the canonical exchange: hello → HELLO,
// sentinel closes the session, and a fresh client can then connect and
// get abc → ABC.
func TestListenMode_Scenario(t *testing.T) {
	port := startServer(t, 4, nil)

	first := dialSession(t, port)
	if err := first.Send("hello"); err != nil {
		t.Fatal(err)
	}
	got, err := first.Receive()
	if err != nil {
		t.Fatal(err)
	}
	if got != "HELLO" {
		t.Errorf("got %q, want HELLO", got)
	}

	if err := first.Send("exit"); err != nil {
		t.Fatal(err)
	}
	if _, err := first.Receive(); !errors.IsClosed(err) {
		t.Errorf("after sentinel, Receive = %v, want closed", err)
	}

	// The accept loop must still be serving.
	second := dialSession(t, port)
	if err := second.Send("abc"); err != nil {
		t.Fatal(err)
	}
	got, err = second.Receive()
	if err != nil {
		t.Fatal(err)
	}
	if got != "ABC" {
		t.Errorf("got %q, want ABC", got)
	}
}

// TestListenMode_SessionIsolation verifies a message on session A never
// surfaces on session B.
func TestListenMode_SessionIsolation(t *testing.T) {
	port := startServer(t, 4, nil)

	a := dialSession(t, port)
	b := dialSession(t, port)

	if err := a.Send("from a"); err != nil {
		t.Fatal(err)
	}
	if err := b.Send("from b"); err != nil {
		t.Fatal(err)
	}

	gotA, err := a.Receive()
	if err != nil {
		t.Fatal(err)
	}
	gotB, err := b.Receive()
	if err != nil {
		t.Fatal(err)
	}

	if gotA != "FROM A" {
		t.Errorf("session a got %q, want FROM A", gotA)
	}
	if gotB != "FROM B" {
		t.Errorf("session b got %q, want FROM B", gotB)
	}
}

// TestListenMode_ErrorIsolation verifies one broken session does not
// disturb a concurrent healthy one or the accept loop.
func TestListenMode_ErrorIsolation(t *testing.T) {
	port := startServer(t, 4, nil)

	healthy := dialSession(t, port)

	// Feed the server a truncated frame and hang up.
	broken, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		t.Fatal(err)
	}
	broken.Write([]byte{0x00, 0x40, 'x'}) //nolint:errcheck
	broken.Close()

	if err := healthy.Send("still here"); err != nil {
		t.Fatal(err)
	}
	got, err := healthy.Receive()
	if err != nil {
		t.Fatal(err)
	}
	if got != "STILL HERE" {
		t.Errorf("got %q, want STILL HERE", got)
	}
}

// TestListenMode_AdmissionLimit verifies connections beyond MaxClients
// are rejected rather than queued.
func TestListenMode_AdmissionLimit(t *testing.T) {
	m := metrics.New()
	port := startServer(t, 1, m)

	keeper := dialSession(t, port)
	if err := keeper.Send("hold"); err != nil {
		t.Fatal(err)
	}
	if _, err := keeper.Receive(); err != nil {
		t.Fatal(err)
	}

	// The slot is taken; the next connection must be closed on us.
	rejected := dialSession(t, port)
	if _, err := rejected.Receive(); !errors.IsClosed(err) {
		t.Errorf("rejected session Receive = %v, want closed", err)
	}

	waitFor(t, func() bool { return m.RejectedSessions() == 1 })

	// Releasing the slot lets a new client in.
	if err := keeper.Send("exit"); err != nil {
		t.Fatal(err)
	}
	waitFor(t, func() bool { return m.ActiveSessions() == 0 })

	next := dialSession(t, port)
	if err := next.Send("back"); err != nil {
		t.Fatal(err)
	}
	got, err := next.Receive()
	if err != nil {
		t.Fatal(err)
	}
	if got != "BACK" {
		t.Errorf("got %q, want BACK", got)
	}
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestListenMode_MetricsTracked(t *testing.T) {
	m := metrics.New()
	port := startServer(t, 4, m)

	sess := dialSession(t, port)
	if err := sess.Send("count me"); err != nil {
		t.Fatal(err)
	}
	if _, err := sess.Receive(); err != nil {
		t.Fatal(err)
	}
	if err := sess.Send("exit"); err != nil {
		t.Fatal(err)
	}

	waitFor(t, func() bool { return m.ActiveSessions() == 0 })

	if got := m.TotalSessions(); got != 1 {
		t.Errorf("TotalSessions = %d, want 1", got)
	}
	if got := m.MessagesIn(); got < 2 {
		t.Errorf("MessagesIn = %d, want at least 2", got)
	}
	if got := m.MessagesOut(); got != 1 {
		t.Errorf("MessagesOut = %d, want 1", got)
	}
}
