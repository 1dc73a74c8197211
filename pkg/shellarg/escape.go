// Package shellarg escapes arguments for command lines run through a shell.
package shellarg

import (
	"fmt"
	"runtime"
	"strings"

	"go.trai.ch/zerr"
	"mvdan.cc/sh/v3/syntax"
)

// ErrUnknownOS is returned by ParseOS for an unrecognized OS name.
var ErrUnknownOS = zerr.New("unknown target OS")

// OS selects the quoting convention of the shell that will run a command.
type OS int

const (
	// OSUnspecified uses the convention of the host this process runs on.
	OSUnspecified OS = iota
	// OSLinux quotes for POSIX shells.
	OSLinux
	// OSWindows quotes for cmd.exe.
	OSWindows
)

func (o OS) String() string {
	switch o {
	case OSLinux:
		return "linux"
	case OSWindows:
		return "windows"
	default:
		return ""
	}
}

// ParseOS maps a name such as "linux" or "windows" to an OS.
// The empty string means OSUnspecified.
func ParseOS(name string) (OS, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return OSUnspecified, nil
	case "linux", "unix", "darwin", "posix":
		return OSLinux, nil
	case "windows":
		return OSWindows, nil
	default:
		return OSUnspecified, fmt.Errorf("%w: %q", ErrUnknownOS, name)
	}
}

var (
	linuxQuote    = strings.NewReplacer("'", `'\''`)
	linuxControls = strings.NewReplacer("\t", " ", "\n", " ", "\r", " ", "\x00", " ", "\x0B", " ")

	windowsBackslash = strings.NewReplacer(`\`, `\\`)
	windowsQuote     = strings.NewReplacer(`"`, `""`)
	windowsPercent   = strings.NewReplacer("%", "%%")

	// cmd.exe has no reliable escape for these inside a quoted word.
	windowsNativeBlank = strings.NewReplacer(`"`, " ", "%", " ", "!", " ")
)

// Escape quotes arg so it can be placed into a command line for os as a
// single word. It never fails.
func Escape(arg string, os OS) string {
	switch os {
	case OSLinux:
		return escapeLinux(arg)
	case OSWindows:
		return escapeWindows(arg)
	default:
		return escapeHost(arg)
	}
}

// escapeLinux leaves single-quote mode around every quote, inserts an
// escaped quote and re-enters it. Control characters become spaces so the
// result stays on one line even when produced for a remote shell.
func escapeLinux(arg string) string {
	arg = linuxQuote.Replace(arg)
	arg = linuxControls.Replace(arg)
	return "'" + arg + "'"
}

// escapeWindows doubles backslashes, then quotes, then percents. No pass
// may touch characters inserted by an earlier one.
func escapeWindows(arg string) string {
	arg = windowsBackslash.Replace(arg)
	arg = windowsQuote.Replace(arg)
	arg = windowsPercent.Replace(arg)
	return `"` + arg + `"`
}

// escapeHost follows the native convention of the running platform: plain
// single quoting on POSIX hosts, without the control character rewrite.
func escapeHost(arg string) string {
	if runtime.GOOS == "windows" {
		return escapeWindowsNative(arg)
	}
	return "'" + linuxQuote.Replace(arg) + "'"
}

// escapeWindowsNative is the lossy cmd.exe quoting used when no target OS
// is named: double quotes, percents and exclamation marks become spaces,
// and an odd run of trailing backslashes gets one more so the closing
// quote is not escaped.
func escapeWindowsNative(arg string) string {
	arg = windowsNativeBlank.Replace(arg)
	trailing := len(arg) - len(strings.TrimRight(arg, `\`))
	if trailing%2 == 1 {
		arg += `\`
	}
	return `"` + arg + `"`
}

// Join escapes every argument for os and joins them with spaces.
func Join(args []string, os OS) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = Escape(a, os)
	}
	return strings.Join(quoted, " ")
}

// QuoteMinimal returns the shortest POSIX shell word for arg, leaving
// plain words unquoted. Strings a POSIX shell cannot represent fall back
// to Escape with OSLinux.
func QuoteMinimal(arg string) string {
	q, err := syntax.Quote(arg, syntax.LangPOSIX)
	if err != nil {
		return Escape(arg, OSLinux)
	}
	return q
}

// GetOutput returns stderr when it is non-empty and stdout otherwise.
// Some programs write their error text to stdout, so callers reporting a
// failed process should not assume either stream.
func GetOutput(stdout, stderr string) string {
	if stderr != "" {
		return stderr
	}
	return stdout
}
