package script

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/lineconf/internal/errs"
	"github.com/dshills/lineconf/internal/input/key"
	"github.com/dshills/lineconf/internal/input/keymap"
)

var _ keymap.Block = (*Block)(nil)

type fakeEditor struct {
	line   string
	cursor int
}

func (f *fakeEditor) Line() string      { return f.line }
func (f *fakeEditor) Cursor() int       { return f.cursor }
func (f *fakeEditor) SetCursor(pos int) { f.cursor = pos }
func (f *fakeEditor) Insert(text string) error {
	f.line = f.line[:f.cursor] + text + f.line[f.cursor:]
	f.cursor += len(text)
	return nil
}

func TestCompileError(t *testing.T) {
	_, err := Compile("broken", "if then end")
	require.ErrorIs(t, err, errs.ErrParse)

	var pe *errs.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "broken", pe.Input)
	assert.NotNil(t, pe.Unwrap())
}

func TestRunGlobals(t *testing.T) {
	b, err := Compile("wrap", `
		if key ~= "Ctrl+j" then error("key was " .. tostring(key)) end
		arg.set_cursor(0)
		arg.insert("(")
		arg.set_cursor(#arg.line())
		arg.insert(")")
	`)
	require.NoError(t, err)

	ed := &fakeEditor{line: "x + y", cursor: 5}
	ev := key.MustParse("Ctrl+j")
	require.NoError(t, b.Run(&ev, ed))
	assert.Equal(t, "(x + y)", ed.line)
	assert.Equal(t, 7, ed.cursor)
}

func TestRunWithoutKey(t *testing.T) {
	b, err := Compile("plain", `if key ~= nil then error("unexpected key") end
		if arg ~= "hello" then error("arg") end`)
	require.NoError(t, err)
	assert.NoError(t, b.Run(nil, "hello"))
}

func TestRunError(t *testing.T) {
	b, err := Compile("fails", `error("nope")`)
	require.NoError(t, err)
	err = b.Run(nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestSandbox(t *testing.T) {
	for _, src := range []string{
		`os.exit(1)`,
		`io.write("x")`,
		`require("os")`,
		`dofile("/etc/passwd")`,
		`load("return 1")()`,
	} {
		b, err := Compile("sandbox", src)
		require.NoError(t, err)
		assert.Error(t, b.Run(nil, nil), src)
	}

	b, err := Compile("safe", `local s = string.upper("a") .. table.concat({"b"}) .. math.floor(1.5)`)
	require.NoError(t, err)
	assert.NoError(t, b.Run(nil, nil))
}

func TestTimeout(t *testing.T) {
	b, err := Compile("spin", `while true do end`, WithTimeout(50*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	err = b.Run(nil, nil)
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestPrintGoesToLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	b, err := Compile("hello", `print("hi", 42)`, WithLogger(logger))
	require.NoError(t, err)
	require.NoError(t, b.Run(nil, nil))
	assert.Contains(t, buf.String(), `msg="hi\t42"`)
	assert.Contains(t, buf.String(), "script=hello")
}

func TestCompileFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "block.lua")
	require.NoError(t, os.WriteFile(path, []byte(`arg.insert("!")`), 0o600))

	b, err := CompileFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, b.Name())

	ed := &fakeEditor{}
	require.NoError(t, b.Run(nil, ed))
	assert.Equal(t, "!", ed.line)

	_, err = CompileFile(filepath.Join(t.TempDir(), "missing.lua"))
	assert.Error(t, err)
}

func TestEval(t *testing.T) {
	tests := []struct {
		src  string
		arg  any
		want any
	}{
		{`return arg == "ok"`, "ok", true},
		{`return #arg`, "four", float64(4)},
		{`return string.upper(arg)`, "x", "X"},
		{`local x = 1`, nil, nil},
		{`return nil`, nil, nil},
	}
	for _, tt := range tests {
		b, err := Compile("eval", tt.src)
		require.NoError(t, err)
		got, err := b.Eval(tt.arg)
		require.NoError(t, err, tt.src)
		assert.Equal(t, tt.want, got, tt.src)
	}
}
