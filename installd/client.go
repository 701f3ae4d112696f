package installd

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
)

// Full method names on the daemon's capability service.
const methodPrefix = "/android.os.IInstalld/"

// DefaultCallTimeout bounds a single structured call. installd performs disk
// and compilation work, so this is deliberately generous.
const DefaultCallTimeout = 5 * time.Minute

// Client implements Daemon over a gRPC connection to installd.
type Client struct {
	conn    *grpc.ClientConn
	addr    string
	timeout time.Duration
}

var _ Daemon = (*Client)(nil)

// Dial connects to the daemon's capability service. The connection is
// established lazily; a daemon that is still starting up is tolerated.
func Dial(addr string) (*Client, error) {
	opts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		// Detect a wedged daemon without tripping its ping limits.
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                60 * time.Second,
			Timeout:             20 * time.Second,
			PermitWithoutStream: false,
		}),
		grpc.WithDefaultCallOptions(
			grpc.CallContentSubtype(codecName),
		),
	}

	conn, err := grpc.Dial(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial installd: %w", err)
	}

	return &Client{
		conn:    conn,
		addr:    addr,
		timeout: DefaultCallTimeout,
	}, nil
}

// Close closes the connection.
func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// reply is the envelope every structured response carries.
type reply struct {
	Ok    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

func (r *reply) status(op string) error {
	if r.Ok {
		return nil
	}
	return &StatusError{Op: op, Message: r.Error}
}

type inodeReply struct {
	reply
	Inode int64 `json:"inode"`
}

type boolReply struct {
	reply
	Value bool `json:"value"`
}

// appDataScope identifies the storage an operation targets.
type appDataScope struct {
	UUID        string `json:"uuid,omitempty"`
	PackageName string `json:"packageName"`
	UserID      int    `json:"userId"`
	Flags       int    `json:"flags"`
}

type createAppDataRequest struct {
	appDataScope
	AppID            int    `json:"appId"`
	SeInfo           string `json:"seInfo"`
	TargetSdkVersion int    `json:"targetSdkVersion"`
}

type restoreconAppDataRequest struct {
	appDataScope
	AppID  int    `json:"appId"`
	SeInfo string `json:"seInfo"`
}

type inodeScopedRequest struct {
	appDataScope
	CeDataInode int64 `json:"ceDataInode"`
}

type moveCompleteAppRequest struct {
	FromUUID         string `json:"fromUuid,omitempty"`
	ToUUID           string `json:"toUuid,omitempty"`
	PackageName      string `json:"packageName"`
	DataAppName      string `json:"dataAppName"`
	AppID            int    `json:"appId"`
	SeInfo           string `json:"seInfo"`
	TargetSdkVersion int    `json:"targetSdkVersion"`
}

type profilesRequest struct {
	UID         int    `json:"uid"`
	PackageName string `json:"packageName"`
	CodePaths   string `json:"codePaths,omitempty"`
}

type idmapRequest struct {
	TargetAPKPath  string `json:"targetApkPath"`
	OverlayAPKPath string `json:"overlayApkPath"`
	UID            int    `json:"uid"`
}

type rmdexRequest struct {
	CodePath       string `json:"codePath"`
	InstructionSet string `json:"instructionSet"`
}

type packageRequest struct {
	PackageName string `json:"packageName"`
}

type userDataRequest struct {
	UUID       string `json:"uuid,omitempty"`
	UserID     int    `json:"userId"`
	UserSerial int    `json:"userSerial,omitempty"`
	Flags      int    `json:"flags"`
}

type freeCacheRequest struct {
	UUID      string `json:"uuid,omitempty"`
	FreeBytes int64  `json:"freeBytes"`
}

type linkNativeLibraryRequest struct {
	UUID            string `json:"uuid,omitempty"`
	PackageName     string `json:"packageName"`
	NativeLibPath32 string `json:"nativeLibPath32"`
	UserID          int    `json:"userId"`
}

type createOatDirRequest struct {
	OatDir         string `json:"oatDir"`
	InstructionSet string `json:"instructionSet"`
}

type linkFileRequest struct {
	RelativePath string `json:"relativePath"`
	FromBase     string `json:"fromBase"`
	ToBase       string `json:"toBase"`
}

type artifactRequest struct {
	APKPath        string `json:"apkPath"`
	InstructionSet string `json:"instructionSet"`
	OutputPath     string `json:"outputPath,omitempty"`
}

type instructionSetRequest struct {
	InstructionSet string `json:"instructionSet"`
}

// call invokes one structured operation and decodes its reply envelope.
func (c *Client) call(ctx context.Context, op string, req, res interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.conn.Invoke(ctx, methodPrefix+op, req, res); err != nil {
		return fmt.Errorf("installd %s: %w", op, err)
	}
	return nil
}

// voidCall is call for the many operations whose result is status-only.
func (c *Client) voidCall(ctx context.Context, op string, req interface{}) error {
	var res reply
	if err := c.call(ctx, op, req, &res); err != nil {
		return err
	}
	return res.status(op)
}

func (c *Client) CreateAppData(ctx context.Context, uuid, packageName string, userID, flags, appID int, seInfo string, targetSdkVersion int) error {
	return c.voidCall(ctx, "createAppData", &createAppDataRequest{
		appDataScope:     appDataScope{UUID: uuid, PackageName: packageName, UserID: userID, Flags: flags},
		AppID:            appID,
		SeInfo:           seInfo,
		TargetSdkVersion: targetSdkVersion,
	})
}

func (c *Client) RestoreconAppData(ctx context.Context, uuid, packageName string, userID, flags, appID int, seInfo string) error {
	return c.voidCall(ctx, "restoreconAppData", &restoreconAppDataRequest{
		appDataScope: appDataScope{UUID: uuid, PackageName: packageName, UserID: userID, Flags: flags},
		AppID:        appID,
		SeInfo:       seInfo,
	})
}

func (c *Client) MigrateAppData(ctx context.Context, uuid, packageName string, userID, flags int) error {
	return c.voidCall(ctx, "migrateAppData", &appDataScope{
		UUID: uuid, PackageName: packageName, UserID: userID, Flags: flags,
	})
}

func (c *Client) ClearAppData(ctx context.Context, uuid, packageName string, userID, flags int, ceDataInode int64) error {
	return c.voidCall(ctx, "clearAppData", &inodeScopedRequest{
		appDataScope: appDataScope{UUID: uuid, PackageName: packageName, UserID: userID, Flags: flags},
		CeDataInode:  ceDataInode,
	})
}

func (c *Client) DestroyAppData(ctx context.Context, uuid, packageName string, userID, flags int, ceDataInode int64) error {
	return c.voidCall(ctx, "destroyAppData", &inodeScopedRequest{
		appDataScope: appDataScope{UUID: uuid, PackageName: packageName, UserID: userID, Flags: flags},
		CeDataInode:  ceDataInode,
	})
}

func (c *Client) MoveCompleteApp(ctx context.Context, fromUUID, toUUID, packageName, dataAppName string, appID int, seInfo string, targetSdkVersion int) error {
	return c.voidCall(ctx, "moveCompleteApp", &moveCompleteAppRequest{
		FromUUID:         fromUUID,
		ToUUID:           toUUID,
		PackageName:      packageName,
		DataAppName:      dataAppName,
		AppID:            appID,
		SeInfo:           seInfo,
		TargetSdkVersion: targetSdkVersion,
	})
}

func (c *Client) GetAppDataInode(ctx context.Context, uuid, packageName string, userID, flags int) (int64, error) {
	var res inodeReply
	req := &appDataScope{UUID: uuid, PackageName: packageName, UserID: userID, Flags: flags}
	if err := c.call(ctx, "getAppDataInode", req, &res); err != nil {
		return -1, err
	}
	if err := res.status("getAppDataInode"); err != nil {
		return -1, err
	}
	return res.Inode, nil
}

func (c *Client) MergeProfiles(ctx context.Context, uid int, packageName string) (bool, error) {
	var res boolReply
	req := &profilesRequest{UID: uid, PackageName: packageName}
	if err := c.call(ctx, "mergeProfiles", req, &res); err != nil {
		return false, err
	}
	if err := res.status("mergeProfiles"); err != nil {
		return false, err
	}
	return res.Value, nil
}

func (c *Client) DumpProfiles(ctx context.Context, uid int, packageName, codePaths string) (bool, error) {
	var res boolReply
	req := &profilesRequest{UID: uid, PackageName: packageName, CodePaths: codePaths}
	if err := c.call(ctx, "dumpProfiles", req, &res); err != nil {
		return false, err
	}
	if err := res.status("dumpProfiles"); err != nil {
		return false, err
	}
	return res.Value, nil
}

func (c *Client) Idmap(ctx context.Context, targetAPKPath, overlayAPKPath string, uid int) error {
	return c.voidCall(ctx, "idmap", &idmapRequest{
		TargetAPKPath:  targetAPKPath,
		OverlayAPKPath: overlayAPKPath,
		UID:            uid,
	})
}

func (c *Client) Rmdex(ctx context.Context, codePath, instructionSet string) error {
	return c.voidCall(ctx, "rmdex", &rmdexRequest{
		CodePath:       codePath,
		InstructionSet: instructionSet,
	})
}

func (c *Client) RmPackageDir(ctx context.Context, packageDir string) error {
	return c.voidCall(ctx, "rmPackageDir", &struct {
		PackageDir string `json:"packageDir"`
	}{PackageDir: packageDir})
}

func (c *Client) ClearAppProfiles(ctx context.Context, packageName string) error {
	return c.voidCall(ctx, "clearAppProfiles", &packageRequest{PackageName: packageName})
}

func (c *Client) DestroyAppProfiles(ctx context.Context, packageName string) error {
	return c.voidCall(ctx, "destroyAppProfiles", &packageRequest{PackageName: packageName})
}

func (c *Client) CreateUserData(ctx context.Context, uuid string, userID, userSerial, flags int) error {
	return c.voidCall(ctx, "createUserData", &userDataRequest{
		UUID: uuid, UserID: userID, UserSerial: userSerial, Flags: flags,
	})
}

func (c *Client) DestroyUserData(ctx context.Context, uuid string, userID, flags int) error {
	return c.voidCall(ctx, "destroyUserData", &userDataRequest{
		UUID: uuid, UserID: userID, Flags: flags,
	})
}

func (c *Client) MarkBootComplete(ctx context.Context, instructionSet string) error {
	return c.voidCall(ctx, "markBootComplete", &instructionSetRequest{InstructionSet: instructionSet})
}

func (c *Client) FreeCache(ctx context.Context, uuid string, freeBytes int64) error {
	return c.voidCall(ctx, "freeCache", &freeCacheRequest{UUID: uuid, FreeBytes: freeBytes})
}

func (c *Client) LinkNativeLibraryDirectory(ctx context.Context, uuid, packageName, nativeLibPath32 string, userID int) error {
	return c.voidCall(ctx, "linkNativeLibraryDirectory", &linkNativeLibraryRequest{
		UUID:            uuid,
		PackageName:     packageName,
		NativeLibPath32: nativeLibPath32,
		UserID:          userID,
	})
}

func (c *Client) CreateOatDir(ctx context.Context, oatDir, instructionSet string) error {
	return c.voidCall(ctx, "createOatDir", &createOatDirRequest{
		OatDir:         oatDir,
		InstructionSet: instructionSet,
	})
}

func (c *Client) LinkFile(ctx context.Context, relativePath, fromBase, toBase string) error {
	return c.voidCall(ctx, "linkFile", &linkFileRequest{
		RelativePath: relativePath,
		FromBase:     fromBase,
		ToBase:       toBase,
	})
}

func (c *Client) MoveAb(ctx context.Context, apkPath, instructionSet, outputPath string) error {
	return c.voidCall(ctx, "moveAb", &artifactRequest{
		APKPath:        apkPath,
		InstructionSet: instructionSet,
		OutputPath:     outputPath,
	})
}

func (c *Client) DeleteOdex(ctx context.Context, apkPath, instructionSet, outputPath string) error {
	return c.voidCall(ctx, "deleteOdex", &artifactRequest{
		APKPath:        apkPath,
		InstructionSet: instructionSet,
		OutputPath:     outputPath,
	})
}
