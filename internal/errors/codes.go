// Package errors defines the coded errors efl reports to users and logs.
//
// Codes read ERR_<number>_<NAME>. The hundreds digit groups them: 1 config,
// 2 files and the game folder, 4 user input and mod data, 5 internal,
// 6 the game process.
package errors

// Category groups codes for logging.
type Category string

const (
	CategoryConfig     Category = "CONFIG"
	CategoryIO         Category = "IO"
	CategoryValidation Category = "VALIDATION"
	CategoryInternal   Category = "INTERNAL"
	CategoryProcess    Category = "PROCESS"
)

// Severity says whether efl can carry on after the error.
type Severity string

const (
	SeverityFatal   Severity = "FATAL"
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

const (
	ErrCodeConfigNotFound = "ERR_101_CONFIG_NOT_FOUND"
	ErrCodeConfigInvalid  = "ERR_102_CONFIG_INVALID"

	ErrCodeFileNotFound   = "ERR_201_FILE_NOT_FOUND"
	ErrCodeFilePermission = "ERR_202_FILE_PERMISSION"
	ErrCodeMarkerMissing  = "ERR_203_MARKER_MISSING"
	ErrCodeActivePack     = "ERR_204_ACTIVE_PACK_MISSING"
	ErrCodeLocked         = "ERR_205_DEPLOY_LOCKED"

	ErrCodeInvalidInput  = "ERR_401_INVALID_INPUT"
	ErrCodeInvalidPath   = "ERR_402_INVALID_PATH"
	ErrCodeModConflict   = "ERR_403_MOD_CONFLICT"
	ErrCodeModBroken     = "ERR_404_MOD_BROKEN"
	ErrCodeInvalidPreset = "ERR_405_INVALID_PRESET"

	ErrCodeInternal = "ERR_501_INTERNAL"

	ErrCodeSpawnFailed      = "ERR_601_SPAWN_FAILED"
	ErrCodeExecutableAbsent = "ERR_602_EXECUTABLE_MISSING"
)

type codeInfo struct {
	category Category
	severity Severity
	hint     string
}

var codes = map[string]codeInfo{
	ErrCodeConfigNotFound:   {CategoryConfig, SeverityError, "run 'efl config init' to create one"},
	ErrCodeConfigInvalid:    {CategoryConfig, SeverityError, "check efl.yaml or run 'efl config init --force'"},
	ErrCodeFileNotFound:     {CategoryIO, SeverityError, ""},
	ErrCodeFilePermission:   {CategoryIO, SeverityError, "close the game and check that the folder is writable"},
	ErrCodeMarkerMissing:    {CategoryIO, SeverityFatal, "install 3DMigoto next to Endfield.exe"},
	ErrCodeActivePack:       {CategoryIO, SeverityError, "run 'efl build' first"},
	ErrCodeLocked:           {CategoryIO, SeverityError, "wait for the other efl process to finish"},
	ErrCodeInvalidInput:     {CategoryValidation, SeverityError, ""},
	ErrCodeInvalidPath:      {CategoryValidation, SeverityError, ""},
	ErrCodeModConflict:      {CategoryValidation, SeverityError, "disable one of the conflicting mods"},
	ErrCodeModBroken:        {CategoryValidation, SeverityError, "run 'efl mods info' on the mod to see what is wrong"},
	ErrCodeInvalidPreset:    {CategoryValidation, SeverityError, "presets are A, B and C"},
	ErrCodeInternal:         {CategoryInternal, SeverityError, ""},
	ErrCodeSpawnFailed:      {CategoryProcess, SeverityWarning, ""},
	ErrCodeExecutableAbsent: {CategoryProcess, SeverityWarning, "set game.executable in the config"},
}

func lookup(code string) codeInfo {
	if info, ok := codes[code]; ok {
		return info
	}
	return codeInfo{category: CategoryInternal, severity: SeverityError}
}
