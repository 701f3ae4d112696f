package installer

import (
	"context"
	"strconv"
)

// PackageStats accumulates storage sizes for a package. GetAppSize adds into
// the existing values rather than overwriting them, so one accumulator can
// total several queries.
type PackageStats struct {
	CodeSize  int64
	DataSize  int64
	CacheSize int64
}

// Reply field positions for get_app_size; position 0 is the status field.
const (
	sizeFieldCode  = 1
	sizeFieldData  = 2
	sizeFieldCache = 3
)

// GetAppSize queries a package's code, data and cache sizes over the legacy
// text protocol and adds them into stats. When isolated, stats is left
// untouched.
func (in *Installer) GetAppSize(ctx context.Context, uuid, packageName string, userID, flags int, ceDataInode int64, codePath string, stats *PackageStats) error {
	if !in.checkBeforeRemote() {
		return nil
	}
	fields, err := in.conn.Execute(ctx, "get_app_size",
		uuid, packageName, userID, flags, ceDataInode, codePath)
	if err != nil {
		return in.remote("get_app_size", err)
	}

	codeSize, err1 := sizeField(fields, sizeFieldCode)
	dataSize, err2 := sizeField(fields, sizeFieldData)
	cacheSize, err3 := sizeField(fields, sizeFieldCache)
	if err1 != nil || err2 != nil || err3 != nil {
		in.metrics.RecordError("get_app_size", MalformedResponse.String())
		return malformedf("invalid size result: %v", fields)
	}

	stats.CodeSize += codeSize
	stats.DataSize += dataSize
	stats.CacheSize += cacheSize
	in.metrics.RecordSuccess("get_app_size")
	return nil
}

func sizeField(fields []string, pos int) (int64, error) {
	if pos >= len(fields) {
		return 0, malformedf("missing field %d", pos)
	}
	return strconv.ParseInt(fields[pos], 10, 64)
}

// Dexopt requests ahead-of-time compilation of an APK over the legacy text
// protocol. packageName, outputPath, volumeUUID and sharedLibraries may be
// empty; empty optionals are sent as the protocol's null marker. Success is
// a non-error reply status.
func (in *Installer) Dexopt(ctx context.Context, apkPath string, uid int, packageName, instructionSet string, dexoptNeeded int, outputPath string, dexFlags int, compilerFilter, volumeUUID, sharedLibraries string) error {
	if err := in.assertValidInstructionSet(instructionSet); err != nil {
		return err
	}
	if !in.checkBeforeRemote() {
		return nil
	}
	err := in.conn.ExecuteOK(ctx, "dexopt",
		apkPath, uid, packageName, instructionSet, dexoptNeeded,
		outputPath, dexFlags, compilerFilter, volumeUUID, sharedLibraries)
	return in.remote("dexopt", err)
}
