package preflight

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Check names reported in CheckResult.Name.
const (
	NameMarker           = "marker"
	NameProxyLibrary     = "proxy_library"
	NameExecutable       = "executable"
	NameWritePermissions = "write_permissions"
	NameDiskSpace        = "disk_space"
)

// CheckStatus is the outcome of one check.
type CheckStatus int

const (
	StatusPass CheckStatus = iota
	StatusWarn
	StatusFail
)

var statusNames = [...]string{
	StatusPass: "PASS",
	StatusWarn: "WARN",
	StatusFail: "FAIL",
}

func (s CheckStatus) String() string {
	if s < 0 || int(s) >= len(statusNames) {
		return "UNKNOWN"
	}
	return statusNames[s]
}

// MarshalText encodes the status as its upper-case name.
func (s CheckStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// CheckResult is what a single check found in the game folder.
type CheckResult struct {
	Name     string      `json:"name"`
	Status   CheckStatus `json:"status"`
	Message  string      `json:"message"`
	Details  string      `json:"details,omitempty"`
	Required bool        `json:"required"`
}

// IsCritical reports a failed check that blocks launching.
func (r CheckResult) IsCritical() bool {
	return r.Required && r.Status == StatusFail
}

func pass(name, msg string) CheckResult {
	return CheckResult{Name: name, Status: StatusPass, Message: msg}
}

func warn(name, msg string) CheckResult {
	return CheckResult{Name: name, Status: StatusWarn, Message: msg}
}

func fail(name, msg string) CheckResult {
	return CheckResult{Name: name, Status: StatusFail, Message: msg}
}

func (r CheckResult) required() CheckResult {
	r.Required = true
	return r
}

// Checker inspects a game folder. The zero value is not usable; call New.
type Checker struct {
	verbose    bool
	output     io.Writer
	marker     string
	library    string
	alternates []string
	executable string
	minFree    uint64
}

// Option configures a Checker.
type Option func(*Checker)

// WithVerbose prints check details under each result.
func WithVerbose(verbose bool) Option {
	return func(c *Checker) { c.verbose = verbose }
}

// WithOutput redirects PrintResults.
func WithOutput(w io.Writer) Option {
	return func(c *Checker) { c.output = w }
}

// WithInjector overrides the marker file and the proxy library. Empty
// values keep the defaults.
func WithInjector(marker, library string) Option {
	return func(c *Checker) {
		if marker != "" {
			c.marker = marker
		}
		if library != "" {
			c.library = library
		}
	}
}

// WithAlternates replaces the libraries accepted in place of the proxy
// library. No names means none are accepted.
func WithAlternates(names ...string) Option {
	return func(c *Checker) { c.alternates = names }
}

// WithExecutable overrides the game executable, relative to the folder or absolute.
func WithExecutable(name string) Option {
	return func(c *Checker) {
		if name != "" {
			c.executable = name
		}
	}
}

// WithMinFreeSpace sets the free space below which the disk check warns.
func WithMinFreeSpace(bytes uint64) Option {
	return func(c *Checker) {
		if bytes > 0 {
			c.minFree = bytes
		}
	}
}

// New returns a Checker for the stock 3DMigoto layout.
func New(opts ...Option) *Checker {
	c := &Checker{
		output:     os.Stdout,
		marker:     "d3dx.ini",
		library:    "dxgi.dll",
		alternates: []string{"d3d11.dll"},
		executable: "Endfield.exe",
		minFree:    MinDiskSpaceBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Checker) Marker() string       { return c.marker }
func (c *Checker) Library() string      { return c.library }
func (c *Checker) Alternates() []string { return c.alternates }

// RunLaunch runs the two checks that gate a launch, marker first.
func (c *Checker) RunLaunch(_ context.Context, dir string) []CheckResult {
	return []CheckResult{c.CheckMarker(dir), c.CheckProxyLibrary(dir)}
}

// RunAll runs the launch checks followed by the doctor-only checks.
func (c *Checker) RunAll(ctx context.Context, dir string) []CheckResult {
	return append(c.RunLaunch(ctx, dir),
		c.CheckExecutable(dir),
		c.CheckWritePermissions(dir),
		c.CheckDiskSpace(dir),
	)
}

// HasCriticalFailures reports whether any result blocks launching.
func (c *Checker) HasCriticalFailures(results []CheckResult) bool {
	return Summarize(results).Status == SummaryFailed
}

// CheckWritePermissions creates and removes a probe file in dir. Deploy
// and build both write there, so a failure is critical.
func (c *Checker) CheckWritePermissions(dir string) CheckResult {
	probe := filepath.Join(dir, ".efl-preflight-test")
	f, err := os.Create(probe)
	if err != nil {
		return fail(NameWritePermissions, fmt.Sprintf("permission denied: %v", err)).required()
	}
	_ = f.Close()
	_ = os.Remove(probe)
	return pass(NameWritePermissions, "OK").required()
}
