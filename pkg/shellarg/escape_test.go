package shellarg

import (
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

func TestEscape_Linux(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		want string
	}{
		{"empty", "", `''`},
		{"plain", "composer.lock", `'composer.lock'`},
		{"single quote", "it's", `'it'\''s'`},
		{"only quote", "'", `''\'''`},
		{"double quote untouched", `say "hi"`, `'say "hi"'`},
		{"tab", "a\tb", `'a b'`},
		{"newline and cr", "a\r\nb", `'a  b'`},
		{"nul and vertical tab", "a\x00b\x0Bc", `'a b c'`},
		{"dollar", "$HOME", `'$HOME'`},
		{"unicode", "žluťoučký kůň", `'žluťoučký kůň'`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.arg, OSLinux))
		})
	}
}

func TestEscape_Windows(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		want string
	}{
		{"empty", "", `""`},
		{"percent", "100%", `"100%%"`},
		{"env var", "%PATH%", `"%%PATH%%"`},
		{"backslash", `C:\Program Files\`, `"C:\\Program Files\\"`},
		{"double quote", `say "hi"`, `"say ""hi"""`},
		{"backslash before quote", `a\"b`, `"a\\""b"`},
		{"single quote untouched", "it's", `"it's"`},
		{"tab kept", "a\tb", "\"a\tb\""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Escape(tt.arg, OSWindows))
		})
	}
}

// Each pass must leave the characters added by earlier passes alone, so the
// escaped length is exactly the input length plus one per doubled character
// plus the two surrounding quotes.
func TestEscape_WindowsPassesDoNotCompound(t *testing.T) {
	arg := `\"%\\""%%`
	doubled := strings.Count(arg, `\`) + strings.Count(arg, `"`) + strings.Count(arg, "%")

	got := Escape(arg, OSWindows)
	assert.Len(t, got, len(arg)+doubled+2)
	assert.Equal(t, `"\\""%%\\\\""""%%%%"`, got)
}

func TestEscape_LinuxPassesDoNotCompound(t *testing.T) {
	// The quote replacement inserts a backslash; the control character
	// pass must not see anything it would rewrite.
	assert.Equal(t, `''\'' '\'''`, Escape("'\t'", OSLinux))
}

func TestEscape_LinuxRoundTripsThroughShellParser(t *testing.T) {
	args := []string{
		"",
		"plain",
		"it's",
		"''",
		`back\slash`,
		"$(rm -rf /)",
		"`id`",
		"a b\tc",
		"semi;colon && pipe|",
	}

	for _, arg := range args {
		t.Run(arg, func(t *testing.T) {
			got := shellWord(t, Escape(arg, OSLinux))
			want := strings.NewReplacer("\t", " ").Replace(arg)
			assert.Equal(t, want, got)
		})
	}
}

func TestEscape_Unspecified(t *testing.T) {
	got := Escape("it's\t100%", OSUnspecified)
	if runtime.GOOS == "windows" {
		assert.Equal(t, escapeWindowsNative("it's\t100%"), got)
		return
	}
	assert.Equal(t, "'it'\\''s\t100%'", got)
}

func TestEscapeWindowsNative(t *testing.T) {
	tests := []struct {
		name string
		arg  string
		want string
	}{
		{"empty", "", `""`},
		{"plain", "composer.lock", `"composer.lock"`},
		{"quote", `say "hi"`, `"say  hi "`},
		{"percent", "100%", `"100 "`},
		{"bang", "wow!", `"wow "`},
		{"backslashes kept", `C:\tmp\a`, `"C:\tmp\a"`},
		{"odd trailing backslash", `C:\tmp\`, `"C:\tmp\\"`},
		{"even trailing backslashes", `C:\tmp\\`, `"C:\tmp\\"`},
		{"single quote", "it's", `"it's"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, escapeWindowsNative(tt.arg))
		})
	}
}

func TestJoin(t *testing.T) {
	assert.Equal(t, `'git' 'show' 'HEAD:composer.lock'`, Join([]string{"git", "show", "HEAD:composer.lock"}, OSLinux))
	assert.Equal(t, `"git" "show" "HEAD:a b"`, Join([]string{"git", "show", "HEAD:a b"}, OSWindows))
	assert.Empty(t, Join(nil, OSLinux))
}

func TestQuoteMinimal(t *testing.T) {
	assert.Equal(t, "composer.lock", QuoteMinimal("composer.lock"))
	assert.Equal(t, "it's", shellWord(t, QuoteMinimal("it's")))
	assert.Equal(t, "a b", shellWord(t, QuoteMinimal("a b")))
	// NUL cannot be represented in a POSIX shell word.
	assert.Equal(t, "'a b'", QuoteMinimal("a\x00b"))
}

func TestParseOS(t *testing.T) {
	tests := []struct {
		in   string
		want OS
	}{
		{"", OSUnspecified},
		{"linux", OSLinux},
		{"Darwin", OSLinux},
		{" windows ", OSWindows},
	}
	for _, tt := range tests {
		got, err := ParseOS(tt.in)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseOS("plan9")
	require.ErrorIs(t, err, ErrUnknownOS)
}

func TestGetOutput(t *testing.T) {
	assert.Equal(t, "out", GetOutput("out", ""))
	assert.Equal(t, "err", GetOutput("out", "err"))
	assert.Equal(t, "err", GetOutput("", "err"))
	assert.Equal(t, "", GetOutput("", ""))
}

// shellWord parses word as the single argument of a POSIX command and
// returns the string the shell would pass to the program.
func shellWord(t *testing.T, word string) string {
	t.Helper()

	f, err := syntax.NewParser(syntax.Variant(syntax.LangPOSIX)).Parse(strings.NewReader("cmd "+word), "")
	require.NoError(t, err)
	require.Len(t, f.Stmts, 1)

	call, ok := f.Stmts[0].Cmd.(*syntax.CallExpr)
	require.True(t, ok, "not a simple command: %q", word)
	require.Len(t, call.Args, 2, "word split into several arguments: %q", word)

	lit, err := expand.Literal(&expand.Config{}, call.Args[1])
	require.NoError(t, err)
	return lit
}
