package installer

// Dexopt flags forwarded to installd. Opaque to the installer; keep in sync
// with the daemon's installd.h.
const (
	// DexoptPublic makes the resulting artifacts visible to everyone.
	DexoptPublic = 1 << 1
	// DexoptSafeMode compiles for VM safe mode.
	DexoptSafeMode = 1 << 2
	// DexoptDebuggable allows debugging of the compiled code.
	DexoptDebuggable = 1 << 3
	// DexoptBootComplete marks a request made after boot has finished.
	DexoptBootComplete = 1 << 4
	// DexoptProfileGuided hints that the dexopt type is profile-guided.
	DexoptProfileGuided = 1 << 5
	// DexoptOTA marks an over-the-air update dexopt.
	DexoptOTA = 1 << 6
)

// Clear flags forwarded to installd.
const (
	FlagClearCacheOnly     = 1 << 8
	FlagClearCodeCacheOnly = 1 << 9
)
