// Package installd provides the client side of the two protocols spoken by
// the installd daemon: a structured capability interface carried over gRPC
// and the older line-oriented text protocol carried over a persistent unix
// socket connection. The installer facade sits on top of both.
package installd

import (
	"context"
	"fmt"
)

// Daemon is the structured capability surface of installd. One method per
// operation; parameters are forwarded verbatim and results are returned
// unchanged. Implementations report daemon-side failures as *StatusError and
// transport failures as ordinary errors.
type Daemon interface {
	CreateAppData(ctx context.Context, uuid, packageName string, userID, flags, appID int, seInfo string, targetSdkVersion int) error
	RestoreconAppData(ctx context.Context, uuid, packageName string, userID, flags, appID int, seInfo string) error
	MigrateAppData(ctx context.Context, uuid, packageName string, userID, flags int) error
	ClearAppData(ctx context.Context, uuid, packageName string, userID, flags int, ceDataInode int64) error
	DestroyAppData(ctx context.Context, uuid, packageName string, userID, flags int, ceDataInode int64) error
	MoveCompleteApp(ctx context.Context, fromUUID, toUUID, packageName, dataAppName string, appID int, seInfo string, targetSdkVersion int) error
	GetAppDataInode(ctx context.Context, uuid, packageName string, userID, flags int) (int64, error)
	MergeProfiles(ctx context.Context, uid int, packageName string) (bool, error)
	DumpProfiles(ctx context.Context, uid int, packageName, codePaths string) (bool, error)
	Idmap(ctx context.Context, targetAPKPath, overlayAPKPath string, uid int) error
	Rmdex(ctx context.Context, codePath, instructionSet string) error
	RmPackageDir(ctx context.Context, packageDir string) error
	ClearAppProfiles(ctx context.Context, packageName string) error
	DestroyAppProfiles(ctx context.Context, packageName string) error
	CreateUserData(ctx context.Context, uuid string, userID, userSerial, flags int) error
	DestroyUserData(ctx context.Context, uuid string, userID, flags int) error
	MarkBootComplete(ctx context.Context, instructionSet string) error
	FreeCache(ctx context.Context, uuid string, freeBytes int64) error
	LinkNativeLibraryDirectory(ctx context.Context, uuid, packageName, nativeLibPath32 string, userID int) error
	CreateOatDir(ctx context.Context, oatDir, instructionSet string) error
	LinkFile(ctx context.Context, relativePath, fromBase, toBase string) error
	MoveAb(ctx context.Context, apkPath, instructionSet, outputPath string) error
	DeleteOdex(ctx context.Context, apkPath, instructionSet, outputPath string) error
}

// StatusError is a failure reported by installd itself, as opposed to a
// failure of the transport carrying the call.
type StatusError struct {
	Op      string
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("installd %s failed", e.Op)
	}
	return fmt.Sprintf("installd %s failed: %s", e.Op, e.Message)
}
