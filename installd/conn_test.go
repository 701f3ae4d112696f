package installd

import (
	"bufio"
	"context"
	"errors"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// pipeDaemon answers the legacy protocol over in-memory pipes.
type pipeDaemon struct {
	mu        sync.Mutex
	received  []string
	pings     int
	failDials int
	replies   map[string]string
}

func (d *pipeDaemon) dial(ctx context.Context) (net.Conn, error) {
	d.mu.Lock()
	if d.failDials > 0 {
		d.failDials--
		d.mu.Unlock()
		return nil, errors.New("connect: connection refused")
	}
	d.mu.Unlock()

	client, server := net.Pipe()
	go d.serve(server)
	return client, nil
}

func (d *pipeDaemon) serve(conn net.Conn) {
	defer conn.Close()
	r := bufio.NewReader(conn)
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return
		}
		line = strings.TrimSuffix(line, "\n")
		cmd := strings.SplitN(line, " ", 2)[0]

		d.mu.Lock()
		var reply string
		if cmd == cmdPing {
			d.pings++
			reply = statusOK
		} else {
			d.received = append(d.received, line)
			reply = d.replies[cmd]
			if reply == "" {
				reply = "-1"
			}
		}
		d.mu.Unlock()

		if _, err := conn.Write([]byte(reply + "\n")); err != nil {
			return
		}
	}
}

func (d *pipeDaemon) pingCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pings
}

func testConn(d *pipeDaemon) *Conn {
	c := NewConn(ConnConfig{
		SocketPath:    "/nonexistent/installd.sock",
		ReadyInterval: time.Millisecond,
	})
	c.dial = d.dial
	return c
}

func TestWaitReadyIdempotent(t *testing.T) {
	daemon := &pipeDaemon{}
	c := testConn(daemon)
	defer c.Close()

	require.NoError(t, c.WaitReady(context.Background()))
	require.NoError(t, c.WaitReady(context.Background()))
	assert.Equal(t, 1, daemon.pingCount())
}

func TestWaitReadyRetriesUntilDaemonAnswers(t *testing.T) {
	daemon := &pipeDaemon{failDials: 3}
	c := testConn(daemon)
	defer c.Close()

	require.NoError(t, c.WaitReady(context.Background()))
	assert.Equal(t, 1, daemon.pingCount())
}

func TestWaitReadyHonorsContext(t *testing.T) {
	daemon := &pipeDaemon{failDials: 1 << 30}
	c := testConn(daemon)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := c.WaitReady(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExecuteFormatsCommandLine(t *testing.T) {
	daemon := &pipeDaemon{replies: map[string]string{"get_app_size": "0 1 2 3"}}
	c := testConn(daemon)
	defer c.Close()

	fields, err := c.Execute(context.Background(), "get_app_size",
		"vol-1", "com.example.app", 0, 4, int64(98304), "/data/app/com.example.app-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1", "2", "3"}, fields)

	daemon.mu.Lock()
	defer daemon.mu.Unlock()
	require.Len(t, daemon.received, 1)
	assert.Equal(t, "get_app_size vol-1 com.example.app 0 4 98304 /data/app/com.example.app-1", daemon.received[0])
	// Execute blocked on readiness first.
	assert.Equal(t, 1, daemon.pings)
}

func TestExecuteOKStatusFailure(t *testing.T) {
	daemon := &pipeDaemon{replies: map[string]string{"dexopt": "-1 out of space"}}
	c := testConn(daemon)
	defer c.Close()

	err := c.ExecuteOK(context.Background(), "dexopt", "/data/app/base.apk")
	require.Error(t, err)
	var status *StatusError
	require.True(t, errors.As(err, &status))
	assert.Equal(t, "dexopt", status.Op)
	assert.Contains(t, status.Message, "out of space")
}

func TestExecuteAfterClose(t *testing.T) {
	daemon := &pipeDaemon{}
	c := testConn(daemon)
	require.NoError(t, c.WaitReady(context.Background()))
	require.NoError(t, c.Close())

	_, err := c.Execute(context.Background(), "get_app_size", "vol-1")
	require.Error(t, err)
}

func TestEncodeArg(t *testing.T) {
	tests := []struct {
		arg  interface{}
		want string
	}{
		{"com.example.app", "com.example.app"},
		{"", "!"},
		{42, "42"},
		{int64(-1), "-1"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, encodeArg(tt.arg))
	}
}
