package installer

// instructionSets maps each ABI to the instruction set its compiled code is
// keyed by. Provided lookup; keep in sync with the platform's ABI list.
var instructionSets = map[string]string{
	"armeabi":     "arm",
	"armeabi-v7a": "arm",
	"arm64-v8a":   "arm64",
	"x86":         "x86",
	"x86_64":      "x86_64",
	"mips":        "mips",
	"mips64":      "mips64",
}

// defaultSupportedABIs is used when construction does not override the list.
var defaultSupportedABIs = []string{"arm64-v8a", "armeabi-v7a", "x86_64", "x86"}

// assertValidInstructionSet rejects instruction sets that no supported ABI
// maps to. Runs before the pre-flight guard so malformed input fails even on
// an isolated installer.
func (in *Installer) assertValidInstructionSet(instructionSet string) error {
	for _, abi := range in.abis {
		if instructionSets[abi] == instructionSet {
			return nil
		}
	}
	return invalidArgf("invalid instruction set: %s", instructionSet)
}
