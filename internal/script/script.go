// Package script runs Lua chunks as key binding Blocks.
//
// A chunk is compiled once and executed in a fresh sandboxed state on
// every key press. Only the base, table, string and math libraries are
// available. The chunk sees two globals:
//
//	key   the chord that triggered it, e.g. "Ctrl+x" (nil when invoked
//	      without a key)
//	arg   the argument passed by the caller: a string, a number, or an
//	      editor table when the caller is an editing session
//
// The editor table exposes line(), cursor(), set_cursor(n) and
// insert(text).
package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
	"github.com/yuin/gopher-lua/parse"

	"github.com/dshills/lineconf/internal/errs"
	"github.com/dshills/lineconf/internal/input/key"
)

// DefaultTimeout bounds a single execution.
const DefaultTimeout = time.Second

// Editor is the view of an editing session offered to scripts.
type Editor interface {
	Line() string
	Cursor() int
	SetCursor(pos int)
	Insert(text string) error
}

// Block is a compiled Lua chunk. It implements keymap.Block.
type Block struct {
	name    string
	source  string
	proto   *lua.FunctionProto
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Block.
type Option func(*Block)

// WithTimeout bounds each execution. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(b *Block) { b.timeout = d }
}

// WithLogger receives the output of print().
func WithLogger(l *slog.Logger) Option {
	return func(b *Block) {
		if l != nil {
			b.logger = l
		}
	}
}

// Compile parses source. Syntax errors are returned as *errs.ParseError.
func Compile(name, source string, opts ...Option) (*Block, error) {
	chunk, err := parse.Parse(strings.NewReader(source), name)
	if err != nil {
		pe := errs.NewParseError(name, "", "invalid lua")
		pe.Err = err
		return nil, pe
	}
	proto, err := lua.Compile(chunk, name)
	if err != nil {
		pe := errs.NewParseError(name, "", "invalid lua")
		pe.Err = err
		return nil, pe
	}

	b := &Block{
		name:    name,
		source:  source,
		proto:   proto,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// CompileFile reads and compiles a Lua file.
func CompileFile(path string, opts ...Option) (*Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	return Compile(path, string(data), opts...)
}

// Name returns the chunk name.
func (b *Block) Name() string { return b.name }

// Source returns the chunk text.
func (b *Block) Source() string { return b.source }

// Run executes the chunk.
func (b *Block) Run(ev *key.Event, arg any) error {
	_, err := b.exec(ev, arg)
	return err
}

// Eval executes the chunk without a key and returns its first result
// converted to Go: nil, bool, string or float64.
func (b *Block) Eval(arg any) (any, error) {
	return b.exec(nil, arg)
}

func (b *Block) exec(ev *key.Event, arg any) (any, error) {
	L := newState()
	defer L.Close()

	if b.timeout > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), b.timeout)
		defer cancel()
		L.SetContext(ctx)
	}

	L.SetGlobal("print", L.NewFunction(b.print))
	if ev != nil {
		L.SetGlobal("key", lua.LString(ev.String()))
	}
	L.SetGlobal("arg", toLua(L, arg))

	top := L.GetTop()
	L.Push(L.NewFunctionFromProto(b.proto))
	if err := L.PCall(0, lua.MultRet, nil); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), context.DeadlineExceeded.Error()) {
			return nil, fmt.Errorf("script %s: timed out after %s", b.name, b.timeout)
		}
		return nil, fmt.Errorf("script %s: %w", b.name, err)
	}
	if L.GetTop() == top {
		return nil, nil
	}
	return fromLua(L.Get(top + 1)), nil
}

func (b *Block) print(L *lua.LState) int {
	parts := make([]string, L.GetTop())
	for i := range parts {
		parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}
	b.logger.Info(strings.Join(parts, "\t"), "script", b.name)
	return 0
}

// newState opens a state with only the safe standard libraries.
func newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

func toLua(L *lua.LState, v any) lua.LValue {
	switch x := v.(type) {
	case nil:
		return lua.LNil
	case string:
		return lua.LString(x)
	case bool:
		return lua.LBool(x)
	case int:
		return lua.LNumber(x)
	case float64:
		return lua.LNumber(x)
	case Editor:
		return editorTable(L, x)
	default:
		return lua.LString(fmt.Sprint(x))
	}
}

func fromLua(v lua.LValue) any {
	switch x := v.(type) {
	case lua.LBool:
		return bool(x)
	case lua.LString:
		return string(x)
	case lua.LNumber:
		return float64(x)
	default:
		if v == lua.LNil {
			return nil
		}
		return v.String()
	}
}

func editorTable(L *lua.LState, ed Editor) *lua.LTable {
	t := L.NewTable()
	L.SetFuncs(t, map[string]lua.LGFunction{
		"line": func(L *lua.LState) int {
			L.Push(lua.LString(ed.Line()))
			return 1
		},
		"cursor": func(L *lua.LState) int {
			L.Push(lua.LNumber(ed.Cursor()))
			return 1
		},
		"set_cursor": func(L *lua.LState) int {
			ed.SetCursor(L.CheckInt(1))
			return 0
		},
		"insert": func(L *lua.LState) int {
			if err := ed.Insert(L.CheckString(1)); err != nil {
				L.RaiseError("insert: %s", err.Error())
			}
			return 0
		},
	})
	return t
}
