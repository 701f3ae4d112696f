package installd

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	cmdPing  = "ping"
	statusOK = "0"

	// nullArg encodes an absent optional argument on the wire.
	nullArg = "!"
)

// Defaults for Conn when the zero values are given.
const (
	DefaultDialTimeout   = 10 * time.Second
	DefaultReadyInterval = 1 * time.Second
)

// Conn is the legacy text-protocol client: one persistent connection to
// installd's command socket, carrying line-oriented commands with
// space-separated arguments and space-separated replies.
//
// The connection starts out not ready. WaitReady dials the socket and
// exchanges a ping, retrying until the daemon answers; the exchange happens
// at most once for the life of the Conn. There is no reconnect if the daemon
// restarts afterwards.
type Conn struct {
	socketPath    string
	dialTimeout   time.Duration
	readyInterval time.Duration

	// dial is swapped out by tests.
	dial func(ctx context.Context) (net.Conn, error)

	readyOnce sync.Once
	readyErr  error

	// mu pairs each command write with its reply read.
	mu   sync.Mutex
	sock net.Conn
	r    *bufio.Reader
}

// ConnConfig configures a Conn. Zero durations fall back to the defaults.
type ConnConfig struct {
	SocketPath    string
	DialTimeout   time.Duration
	ReadyInterval time.Duration
}

// NewConn returns a Conn for the daemon socket named by cfg. No I/O happens
// until WaitReady or the first Execute.
func NewConn(cfg ConnConfig) *Conn {
	c := &Conn{
		socketPath:    cfg.SocketPath,
		dialTimeout:   cfg.DialTimeout,
		readyInterval: cfg.ReadyInterval,
	}
	if c.dialTimeout <= 0 {
		c.dialTimeout = DefaultDialTimeout
	}
	if c.readyInterval <= 0 {
		c.readyInterval = DefaultReadyInterval
	}
	c.dial = func(ctx context.Context) (net.Conn, error) {
		d := net.Dialer{Timeout: c.dialTimeout}
		return d.DialContext(ctx, "unix", c.socketPath)
	}
	return c
}

// WaitReady blocks until installd answers a ping on the command socket.
// Subsequent calls return the recorded outcome without another exchange.
func (c *Conn) WaitReady(ctx context.Context) error {
	c.readyOnce.Do(func() {
		c.readyErr = c.establish(ctx)
	})
	return c.readyErr
}

func (c *Conn) establish(ctx context.Context) error {
	for {
		err := c.tryPing(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("waiting for installd: %w", ctx.Err())
		case <-time.After(c.readyInterval):
		}
	}
}

func (c *Conn) tryPing(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sock == nil {
		sock, err := c.dial(ctx)
		if err != nil {
			return err
		}
		c.sock = sock
		c.r = bufio.NewReader(sock)
	}

	fields, err := c.exchange(ctx, cmdPing)
	if err != nil {
		c.closeLocked()
		return err
	}
	if len(fields) == 0 || fields[0] != statusOK {
		c.closeLocked()
		return fmt.Errorf("installd ping answered %q", strings.Join(fields, " "))
	}
	return nil
}

// Execute sends a command with its arguments and returns the reply split on
// spaces. Position 0 of the reply is the daemon's status field; callers that
// only care about success should use ExecuteOK. Blocks until the connection
// is ready.
func (c *Conn) Execute(ctx context.Context, cmd string, args ...interface{}) ([]string, error) {
	if err := c.WaitReady(ctx); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sock == nil {
		return nil, fmt.Errorf("installd connection is closed")
	}
	return c.exchange(ctx, buildCommand(cmd, args...))
}

// ExecuteOK runs Execute and fails unless the reply status field is 0.
func (c *Conn) ExecuteOK(ctx context.Context, cmd string, args ...interface{}) error {
	fields, err := c.Execute(ctx, cmd, args...)
	if err != nil {
		return err
	}
	if len(fields) == 0 || fields[0] != statusOK {
		return &StatusError{Op: cmd, Message: strings.Join(fields, " ")}
	}
	return nil
}

// exchange writes one command line and reads one reply line. Caller holds mu.
func (c *Conn) exchange(ctx context.Context, line string) ([]string, error) {
	if dl, ok := ctx.Deadline(); ok {
		_ = c.sock.SetDeadline(dl)
		defer c.sock.SetDeadline(time.Time{})
	}

	if _, err := c.sock.Write([]byte(line + "\n")); err != nil {
		return nil, fmt.Errorf("installd write failed: %w", err)
	}
	resp, err := c.r.ReadString('\n')
	if err != nil {
		return nil, fmt.Errorf("installd read failed: %w", err)
	}
	return strings.Split(strings.TrimSuffix(resp, "\n"), " "), nil
}

// Close tears the connection down. Pending calls fail; there is no reopening.
func (c *Conn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closeLocked()
}

func (c *Conn) closeLocked() error {
	if c.sock == nil {
		return nil
	}
	err := c.sock.Close()
	c.sock = nil
	c.r = nil
	return err
}

func buildCommand(cmd string, args ...interface{}) string {
	var b strings.Builder
	b.WriteString(cmd)
	for _, a := range args {
		b.WriteByte(' ')
		b.WriteString(encodeArg(a))
	}
	return b.String()
}

func encodeArg(a interface{}) string {
	switch v := a.(type) {
	case string:
		if v == "" {
			return nullArg
		}
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}
