package backend

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/tliron/commonlog"

	"netir/internal/netlist"
	"netir/internal/textir"
)

var log = commonlog.GetLogger("netir.backend")

// Version is a yosys release number.
type Version struct {
	Major, Minor int
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// AtLeast reports whether v is the same as or newer than min.
func (v Version) AtLeast(min Version) bool {
	if v.Major != min.Major {
		return v.Major > min.Major
	}
	return v.Minor >= min.Minor
}

// DefaultMinVersion is the oldest yosys accepted when Options.MinVersion is
// unset.
var DefaultMinVersion = Version{Major: 0, Minor: 10}

// Options configures how the yosys handoff is performed.
type Options struct {
	// YosysPath optionally overrides the yosys binary. When empty the backend
	// looks it up on PATH.
	YosysPath string
	// MinVersion is the oldest acceptable yosys; zero means DefaultMinVersion.
	MinVersion Version
	// ReadCommand is the yosys command that consumes the embedded text.
	// Empty means "read_rtlil".
	ReadCommand string
	// ExtraPasses run after the default passes and before write_json.
	ExtraPasses []string
	// DumpScriptPath writes the generated script to the provided path when
	// non-empty.
	DumpScriptPath string
	// Text controls emission of the embedded text.
	Text textir.Options
}

// Result is what a yosys run produced.
type Result struct {
	JSON    []byte
	Version Version
}

const heredocMarker = "rtlil"

// Script returns the yosys command script that embeds text verbatim as a
// here-document.
func Script(text string, opts Options) string {
	read := opts.ReadCommand
	if read == "" {
		read = "read_rtlil"
	}
	script := []string{
		fmt.Sprintf("%s <<%s\n%s\n%s", read, heredocMarker, strings.TrimSuffix(text, "\n"), heredocMarker),
		"proc -norom -noopt",
		"memory_collect",
	}
	script = append(script, opts.ExtraPasses...)
	script = append(script, "write_json")
	return strings.Join(script, "\n")
}

// ConvertJSON lowers nl to text, hands it to yosys and returns the JSON
// document yosys writes.
func ConvertJSON(nl *netlist.Netlist, opts Options) (Result, error) {
	if nl == nil {
		return Result{}, fmt.Errorf("backend: netlist is nil")
	}
	text, err := textir.Emit(nl, opts.Text)
	if err != nil {
		return Result{}, fmt.Errorf("backend: emit text: %w", err)
	}
	if strings.Contains(text, "\n"+heredocMarker+"\n") {
		return Result{}, fmt.Errorf("backend: emitted text contains the heredoc terminator %q", heredocMarker)
	}

	yosysPath, err := resolveBinary(opts.YosysPath, "yosys")
	if err != nil {
		return Result{}, fmt.Errorf("backend: resolve yosys: %w", err)
	}

	version, err := yosysVersion(yosysPath)
	if err != nil {
		return Result{}, err
	}
	minVersion := opts.MinVersion
	if minVersion == (Version{}) {
		minVersion = DefaultMinVersion
	}
	if !version.AtLeast(minVersion) {
		return Result{}, fmt.Errorf("backend: yosys %s is older than required %s", version, minVersion)
	}
	log.Infof("using yosys %s at %s", version, yosysPath)

	script := Script(text, opts)
	if opts.DumpScriptPath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.DumpScriptPath), 0o755); err != nil {
			return Result{}, fmt.Errorf("backend: create script dir: %w", err)
		}
		if err := os.WriteFile(opts.DumpScriptPath, []byte(script), 0o644); err != nil {
			return Result{}, fmt.Errorf("backend: write script: %w", err)
		}
	}

	out, err := runYosys(yosysPath, script)
	if err != nil {
		return Result{}, err
	}
	return Result{JSON: out, Version: version}, nil
}

func runYosys(binary, script string) ([]byte, error) {
	cmd := exec.Command(binary, "-q", "-")
	cmd.Stdin = strings.NewReader(script)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	log.Debugf("running %s with a %d byte script", binary, len(script))
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("backend: yosys failed: %w", err)
		}
		return nil, fmt.Errorf("backend: yosys failed: %w: %s", err, msg)
	}
	if stderr.Len() > 0 {
		log.Warningf("yosys: %s", strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

var versionPattern = regexp.MustCompile(`Yosys (\d+)\.(\d+)`)

func yosysVersion(binary string) (Version, error) {
	out, err := exec.Command(binary, "-V").Output()
	if err != nil {
		return Version{}, fmt.Errorf("backend: query yosys version: %w", err)
	}
	return parseVersion(string(out))
}

func parseVersion(text string) (Version, error) {
	m := versionPattern.FindStringSubmatch(text)
	if m == nil {
		return Version{}, fmt.Errorf("backend: cannot parse yosys version from %q", strings.TrimSpace(text))
	}
	major, _ := strconv.Atoi(m[1])
	minor, _ := strconv.Atoi(m[2])
	return Version{Major: major, Minor: minor}, nil
}

func resolveBinary(explicit, fallback string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", err
		}
		return explicit, nil
	}
	path, err := exec.LookPath(fallback)
	if err != nil {
		return "", err
	}
	return path, nil
}
