// Package installer is the trusted boundary between the package-management
// service and the installd daemon. It validates requests, forwards them over
// one of the daemon's two protocols, and translates every lower-level
// failure into a single error type. It never touches the filesystem itself.
package installer

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/mithepner/pkgmanager/installd"
	"github.com/mithepner/pkgmanager/internal/config"
	"github.com/mithepner/pkgmanager/internal/logging"
	"github.com/mithepner/pkgmanager/internal/metrics"
)

// LockToken identifies a lock that must not be held while calling into the
// installer: daemon calls can be slow, and blocking on one while holding a
// hot lock is a known deadlock hazard. The owning service marks the token
// held around its critical sections; the installer only reads the marker for
// diagnostics and never synchronizes on it.
type LockToken struct {
	name   string
	holder atomic.Pointer[string]
}

// NewLockToken returns a token named for the lock it stands in for.
func NewLockToken(name string) *LockToken {
	return &LockToken{name: name}
}

// MarkHeld records that holder entered the critical section guarded by this
// token. Pair with UnmarkHeld on exit.
func (t *LockToken) MarkHeld(holder string) {
	t.holder.Store(&holder)
}

// UnmarkHeld clears the marker set by MarkHeld.
func (t *LockToken) UnmarkHeld() {
	t.holder.Store(nil)
}

func (t *LockToken) heldBy() (string, bool) {
	h := t.holder.Load()
	if h == nil {
		return "", false
	}
	return *h, true
}

func (t *LockToken) String() string {
	return fmt.Sprintf("%s(%p)", t.name, t)
}

// Options tune facade construction. The zero value is usable.
type Options struct {
	// Logger defaults to logging.NewDefault().
	Logger *logging.Logger
	// SupportedABIs overrides the platform ABI list used for instruction-set
	// validation.
	SupportedABIs []string
}

// Installer forwards privileged app-data and compilation operations to
// installd. All methods are safe for concurrent use; each call blocks the
// calling goroutine until the daemon responds.
type Installer struct {
	isolated bool
	daemon   installd.Daemon
	conn     *installd.Conn
	abis     []string
	log      *logging.Logger
	metrics  *metrics.Metrics

	warnIfHeld atomic.Pointer[LockToken]
}

// New returns an Installer forwarding structured operations to daemon and
// legacy text-protocol operations over conn.
func New(daemon installd.Daemon, conn *installd.Conn, opts Options) *Installer {
	return newInstaller(false, daemon, conn, opts)
}

// NewIsolated returns an Installer that never contacts installd: every
// operation is a no-op returning its documented default. Intended for test
// doubles.
func NewIsolated(opts Options) *Installer {
	return newInstaller(true, nil, nil, opts)
}

// Dial builds a connected Installer from environment configuration
// (INSTALLD_ADDR, INSTALLD_SOCKET and friends). Neither endpoint is
// contacted until Start or the first forwarded call.
func Dial(opts Options) (*Installer, error) {
	cfg := config.LoadOrDefault()
	daemon, err := installd.Dial(cfg.Daemon.Address)
	if err != nil {
		return nil, remoteError(err)
	}
	conn := installd.NewConn(installd.ConnConfig{
		SocketPath:    cfg.Daemon.SocketPath,
		DialTimeout:   cfg.Daemon.DialTimeout,
		ReadyInterval: cfg.Daemon.ReadyInterval,
	})
	return New(daemon, conn, opts), nil
}

func newInstaller(isolated bool, daemon installd.Daemon, conn *installd.Conn, opts Options) *Installer {
	log := opts.Logger
	if log == nil {
		log = logging.NewDefault()
	}
	abis := opts.SupportedABIs
	if abis == nil {
		abis = defaultSupportedABIs
	}
	return &Installer{
		isolated: isolated,
		daemon:   daemon,
		conn:     conn,
		abis:     abis,
		log:      log,
		metrics:  metrics.Default(),
	}
}

// SetWarnIfHeld registers the lock whose holders should be warned about when
// they call into the installer. Replaces any previously registered token and
// applies to all subsequent guarded calls.
func (in *Installer) SetWarnIfHeld(token *LockToken) {
	in.warnIfHeld.Store(token)
}

// Start blocks until installd is accepting legacy text-protocol commands.
// Only the first call performs the readiness exchange; a no-op when
// isolated.
func (in *Installer) Start(ctx context.Context) error {
	if in.isolated || in.conn == nil {
		return nil
	}
	in.log.Info("waiting for installd to be ready")
	if err := in.conn.WaitReady(ctx); err != nil {
		return remoteError(err)
	}
	return nil
}

// checkBeforeRemote runs the pre-flight checks ahead of every remote call,
// synchronously on the caller's goroutine. Reports whether the call should
// be forwarded.
func (in *Installer) checkBeforeRemote() bool {
	if token := in.warnIfHeld.Load(); token != nil {
		if holder, held := token.heldBy(); held {
			// Diagnostic only. The call may still be safe in context, so
			// execution continues.
			in.log.Error("calling into installd while holding lock",
				zap.String("holder", holder),
				zap.String("lock", token.String()),
				zap.Stack("stack"))
		}
	}
	if in.isolated {
		in.log.Info("ignoring request because this installer is isolated")
		return false
	}
	return true
}

// remote translates a forwarded call's outcome: daemon status failures and
// transport failures both come back as RemoteOperationFailed.
func (in *Installer) remote(op string, err error) error {
	if err == nil {
		in.metrics.RecordSuccess(op)
		return nil
	}
	in.metrics.RecordError(op, RemoteOperationFailed.String())
	return remoteError(err)
}
