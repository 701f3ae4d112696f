package installer

import (
	"bufio"
	"context"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithepner/pkgmanager/installd"
	"github.com/mithepner/pkgmanager/internal/logging"
)

// fakeInstalldSocket speaks the daemon side of the legacy text protocol on a
// unix socket. Pings are answered with status 0; every other command pops
// the next scripted reply for its name.
type fakeInstalldSocket struct {
	t  *testing.T
	ln net.Listener

	mu       sync.Mutex
	received []string
	replies  map[string][]string
	pings    int
}

func startFakeInstalldSocket(t *testing.T, replies map[string][]string) (*fakeInstalldSocket, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "installd.sock")
	ln, err := net.Listen("unix", path)
	require.NoError(t, err)

	f := &fakeInstalldSocket{t: t, ln: ln, replies: replies}
	go f.serve()
	t.Cleanup(func() { ln.Close() })
	return f, path
}

func (f *fakeInstalldSocket) serve() {
	for {
		conn, err := f.ln.Accept()
		if err != nil {
			return
		}
		go f.handle(conn)
	}
}

func (f *fakeInstalldSocket) handle(conn net.Conn) {
	defer conn.Close()
	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		line := scanner.Text()
		cmd := strings.SplitN(line, " ", 2)[0]

		f.mu.Lock()
		var reply string
		if cmd == "ping" {
			f.pings++
			reply = "0"
		} else {
			f.received = append(f.received, line)
			queue := f.replies[cmd]
			if len(queue) == 0 {
				reply = "-1"
			} else {
				reply = queue[0]
				f.replies[cmd] = queue[1:]
			}
		}
		f.mu.Unlock()

		if _, err := conn.Write([]byte(reply + "\n")); err != nil {
			return
		}
	}
}

func (f *fakeInstalldSocket) commandCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.received)
}

func (f *fakeInstalldSocket) command(i int) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.received[i]
}

func newLegacyInstaller(t *testing.T, replies map[string][]string) (*Installer, *fakeInstalldSocket) {
	t.Helper()
	fake, path := startFakeInstalldSocket(t, replies)
	conn := installd.NewConn(installd.ConnConfig{SocketPath: path})
	t.Cleanup(func() { conn.Close() })
	in := New(&fakeDaemon{}, conn, Options{Logger: logging.Nop()})
	require.NoError(t, in.Start(context.Background()))
	return in, fake
}

func TestGetAppSizeAccumulates(t *testing.T) {
	in, fake := newLegacyInstaller(t, map[string][]string{
		"get_app_size": {"0 10 20 30", "0 5 5 5"},
	})
	ctx := context.Background()
	volume := uuid.NewString()

	var stats PackageStats
	require.NoError(t, in.GetAppSize(ctx, volume, "com.example.app", 0, 0, 12345, "/data/app/com.example.app-1", &stats))
	require.NoError(t, in.GetAppSize(ctx, volume, "com.example.app", 0, 0, 12345, "/data/app/com.example.app-1", &stats))

	assert.Equal(t, int64(15), stats.CodeSize)
	assert.Equal(t, int64(25), stats.DataSize)
	assert.Equal(t, int64(35), stats.CacheSize)

	require.Equal(t, 2, fake.commandCount())
	assert.Equal(t, "get_app_size "+volume+" com.example.app 0 0 12345 /data/app/com.example.app-1", fake.command(0))
}

func TestGetAppSizeShortReply(t *testing.T) {
	in, _ := newLegacyInstaller(t, map[string][]string{
		"get_app_size": {"0"},
	})

	stats := PackageStats{CodeSize: 7}
	err := in.GetAppSize(context.Background(), "", "com.example.app", 0, 0, 0, "/data/app", &stats)
	require.Error(t, err)
	assert.True(t, IsMalformedResponse(err))
	// Accumulator untouched on failure.
	assert.Equal(t, int64(7), stats.CodeSize)
}

func TestGetAppSizeNonNumericReply(t *testing.T) {
	in, _ := newLegacyInstaller(t, map[string][]string{
		"get_app_size": {"0 ten twenty thirty"},
	})

	var stats PackageStats
	err := in.GetAppSize(context.Background(), "", "com.example.app", 0, 0, 0, "/data/app", &stats)
	require.Error(t, err)
	assert.True(t, IsMalformedResponse(err))
}

func TestDexoptEncodesOptionalArguments(t *testing.T) {
	in, fake := newLegacyInstaller(t, map[string][]string{
		"dexopt": {"0"},
	})

	require.NoError(t, in.Dexopt(context.Background(), "/data/app/base.apk", 10012, "com.example.app",
		"arm64", 1, "", DexoptBootComplete, "speed", "", ""))

	require.Equal(t, 1, fake.commandCount())
	assert.Equal(t, "dexopt /data/app/base.apk 10012 com.example.app arm64 1 ! 16 speed ! !", fake.command(0))
}

func TestDexoptStatusFailure(t *testing.T) {
	in, _ := newLegacyInstaller(t, map[string][]string{
		"dexopt": {"-1 dex2oat crashed"},
	})

	err := in.Dexopt(context.Background(), "/data/app/base.apk", 10012, "com.example.app",
		"arm64", 1, "/data/dalvik-cache", 0, "speed", "", "")
	require.Error(t, err)
	assert.True(t, IsRemoteOperationFailed(err))
	assert.Contains(t, err.Error(), "dex2oat crashed")
}

func TestStartIsIdempotent(t *testing.T) {
	in, fake := newLegacyInstaller(t, nil)

	require.NoError(t, in.Start(context.Background()))
	require.NoError(t, in.Start(context.Background()))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Equal(t, 1, fake.pings)
}
