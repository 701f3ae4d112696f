package installer

import "context"

// Structured operations, forwarded one-to-one to the daemon capability
// surface. Each call either passes the pre-flight guard and is fully
// forwarded, or returns the isolated default before any daemon contact. The
// uuid argument names the storage volume; "" targets internal storage. Flag
// bitmasks are forwarded verbatim.

// CreateAppData creates the app-data directories for a package on a volume.
func (in *Installer) CreateAppData(ctx context.Context, uuid, packageName string, userID, flags, appID int, seInfo string, targetSdkVersion int) error {
	if !in.checkBeforeRemote() {
		return nil
	}
	return in.remote("createAppData",
		in.daemon.CreateAppData(ctx, uuid, packageName, userID, flags, appID, seInfo, targetSdkVersion))
}

// RestoreconAppData restores the security context of a package's app data.
func (in *Installer) RestoreconAppData(ctx context.Context, uuid, packageName string, userID, flags, appID int, seInfo string) error {
	if !in.checkBeforeRemote() {
		return nil
	}
	return in.remote("restoreconAppData",
		in.daemon.RestoreconAppData(ctx, uuid, packageName, userID, flags, appID, seInfo))
}

// MigrateAppData migrates app data between device- and credential-encrypted
// storage.
func (in *Installer) MigrateAppData(ctx context.Context, uuid, packageName string, userID, flags int) error {
	if !in.checkBeforeRemote() {
		return nil
	}
	return in.remote("migrateAppData",
		in.daemon.MigrateAppData(ctx, uuid, packageName, userID, flags))
}

// ClearAppData clears a package's app data without removing the directories.
func (in *Installer) ClearAppData(ctx context.Context, uuid, packageName string, userID, flags int, ceDataInode int64) error {
	if !in.checkBeforeRemote() {
		return nil
	}
	return in.remote("clearAppData",
		in.daemon.ClearAppData(ctx, uuid, packageName, userID, flags, ceDataInode))
}

// DestroyAppData removes a package's app data entirely.
func (in *Installer) DestroyAppData(ctx context.Context, uuid, packageName string, userID, flags int, ceDataInode int64) error {
	if !in.checkBeforeRemote() {
		return nil
	}
	return in.remote("destroyAppData",
		in.daemon.DestroyAppData(ctx, uuid, packageName, userID, flags, ceDataInode))
}

// MoveCompleteApp moves a package's complete storage between volumes.
func (in *Installer) MoveCompleteApp(ctx context.Context, fromUUID, toUUID, packageName, dataAppName string, appID int, seInfo string, targetSdkVersion int) error {
	if !in.checkBeforeRemote() {
		return nil
	}
	return in.remote("moveCompleteApp",
		in.daemon.MoveCompleteApp(ctx, fromUUID, toUUID, packageName, dataAppName, appID, seInfo, targetSdkVersion))
}

// GetAppDataInode looks up the inode number of a package's data directory.
// Returns -1 when isolated.
func (in *Installer) GetAppDataInode(ctx context.Context, uuid, packageName string, userID, flags int) (int64, error) {
	if !in.checkBeforeRemote() {
		return -1, nil
	}
	inode, err := in.daemon.GetAppDataInode(ctx, uuid, packageName, userID, flags)
	if err != nil {
		return -1, in.remote("getAppDataInode", err)
	}
	return inode, in.remote("getAppDataInode", nil)
}

// MergeProfiles merges a package's runtime compiler profiles. Returns false
// when isolated.
func (in *Installer) MergeProfiles(ctx context.Context, uid int, packageName string) (bool, error) {
	if !in.checkBeforeRemote() {
		return false, nil
	}
	merged, err := in.daemon.MergeProfiles(ctx, uid, packageName)
	if err != nil {
		return false, in.remote("mergeProfiles", err)
	}
	return merged, in.remote("mergeProfiles", nil)
}

// DumpProfiles dumps a package's compiler profiles for the given code paths.
// Returns false when isolated.
func (in *Installer) DumpProfiles(ctx context.Context, uid int, packageName, codePaths string) (bool, error) {
	if !in.checkBeforeRemote() {
		return false, nil
	}
	dumped, err := in.daemon.DumpProfiles(ctx, uid, packageName, codePaths)
	if err != nil {
		return false, in.remote("dumpProfiles", err)
	}
	return dumped, in.remote("dumpProfiles", nil)
}

// Idmap creates an overlay index mapping the target APK to the overlay APK.
func (in *Installer) Idmap(ctx context.Context, targetAPKPath, overlayAPKPath string, uid int) error {
	if !in.checkBeforeRemote() {
		return nil
	}
	return in.remote("idmap",
		in.daemon.Idmap(ctx, targetAPKPath, overlayAPKPath, uid))
}

// Rmdex removes the compiled artifact for codePath on the given instruction
// set.
func (in *Installer) Rmdex(ctx context.Context, codePath, instructionSet string) error {
	if err := in.assertValidInstructionSet(instructionSet); err != nil {
		return err
	}
	if !in.checkBeforeRemote() {
		return nil
	}
	return in.remote("rmdex",
		in.daemon.Rmdex(ctx, codePath, instructionSet))
}

// RmPackageDir removes a package directory.
func (in *Installer) RmPackageDir(ctx context.Context, packageDir string) error {
	if !in.checkBeforeRemote() {
		return nil
	}
	return in.remote("rmPackageDir",
		in.daemon.RmPackageDir(ctx, packageDir))
}

// ClearAppProfiles clears a package's compiler profile storage.
func (in *Installer) ClearAppProfiles(ctx context.Context, packageName string) error {
	if !in.checkBeforeRemote() {
		return nil
	}
	return in.remote("clearAppProfiles",
		in.daemon.ClearAppProfiles(ctx, packageName))
}

// DestroyAppProfiles destroys a package's compiler profile storage.
func (in *Installer) DestroyAppProfiles(ctx context.Context, packageName string) error {
	if !in.checkBeforeRemote() {
		return nil
	}
	return in.remote("destroyAppProfiles",
		in.daemon.DestroyAppProfiles(ctx, packageName))
}

// CreateUserData creates the per-user storage scope on a volume.
func (in *Installer) CreateUserData(ctx context.Context, uuid string, userID, userSerial, flags int) error {
	if !in.checkBeforeRemote() {
		return nil
	}
	return in.remote("createUserData",
		in.daemon.CreateUserData(ctx, uuid, userID, userSerial, flags))
}

// DestroyUserData destroys the per-user storage scope on a volume.
func (in *Installer) DestroyUserData(ctx context.Context, uuid string, userID, flags int) error {
	if !in.checkBeforeRemote() {
		return nil
	}
	return in.remote("destroyUserData",
		in.daemon.DestroyUserData(ctx, uuid, userID, flags))
}

// MarkBootComplete tells the daemon that boot finished for the given
// instruction set.
func (in *Installer) MarkBootComplete(ctx context.Context, instructionSet string) error {
	if err := in.assertValidInstructionSet(instructionSet); err != nil {
		return err
	}
	if !in.checkBeforeRemote() {
		return nil
	}
	return in.remote("markBootComplete",
		in.daemon.MarkBootComplete(ctx, instructionSet))
}

// FreeCache asks the daemon to reclaim cache on a volume until freeBytes are
// available.
func (in *Installer) FreeCache(ctx context.Context, uuid string, freeBytes int64) error {
	if !in.checkBeforeRemote() {
		return nil
	}
	return in.remote("freeCache",
		in.daemon.FreeCache(ctx, uuid, freeBytes))
}

// LinkNativeLibraryDirectory links the 32-bit native-library directory in an
// application's data directory to its real location for backward
// compatibility. No such link is created for 64-bit shared libraries.
func (in *Installer) LinkNativeLibraryDirectory(ctx context.Context, uuid, packageName, nativeLibPath32 string, userID int) error {
	if !in.checkBeforeRemote() {
		return nil
	}
	return in.remote("linkNativeLibraryDirectory",
		in.daemon.LinkNativeLibraryDirectory(ctx, uuid, packageName, nativeLibPath32, userID))
}

// CreateOatDir creates an ahead-of-time compilation output directory for the
// given instruction set.
func (in *Installer) CreateOatDir(ctx context.Context, oatDir, dexInstructionSet string) error {
	if !in.checkBeforeRemote() {
		return nil
	}
	return in.remote("createOatDir",
		in.daemon.CreateOatDir(ctx, oatDir, dexInstructionSet))
}

// LinkFile hard-links relativePath from one base directory to another.
func (in *Installer) LinkFile(ctx context.Context, relativePath, fromBase, toBase string) error {
	if !in.checkBeforeRemote() {
		return nil
	}
	return in.remote("linkFile",
		in.daemon.LinkFile(ctx, relativePath, fromBase, toBase))
}

// MoveAb applies an A/B over-the-air update swap for the given artifact.
func (in *Installer) MoveAb(ctx context.Context, apkPath, instructionSet, outputPath string) error {
	if !in.checkBeforeRemote() {
		return nil
	}
	return in.remote("moveAb",
		in.daemon.MoveAb(ctx, apkPath, instructionSet, outputPath))
}

// DeleteOdex deletes the optimized artifact for the given APK and
// instruction set.
func (in *Installer) DeleteOdex(ctx context.Context, apkPath, instructionSet, outputPath string) error {
	if !in.checkBeforeRemote() {
		return nil
	}
	return in.remote("deleteOdex",
		in.daemon.DeleteOdex(ctx, apkPath, instructionSet, outputPath))
}
