// Package scripting runs Lua sketch scripts that draw on a canvas surface.
package scripting

import (
	"context"
	"fmt"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// VM wraps a Lua state configured for sketch scripts.
type VM struct {
	L   *lua.LState
	log *zap.Logger
}

// NewVM creates a new Lua VM with the standard libraries loaded. The VM
// stops when ctx is cancelled.
func NewVM(ctx context.Context, log *zap.Logger) *VM {
	if log == nil {
		log = zap.NewNop()
	}

	L := lua.NewState(lua.Options{
		CallStackSize: 120,
		RegistrySize:  120 * 20,
	})
	L.SetContext(ctx)

	return &VM{L: L, log: log}
}

// Close shuts down the Lua VM.
func (vm *VM) Close() {
	vm.L.Close()
}

// LoadScript loads and executes a Lua script file. The script may return a
// table with a draw function, or define a global named "sketch".
func (vm *VM) LoadScript(path string) error {
	if err := vm.L.DoFile(path); err != nil {
		return fmt.Errorf("load script %s: %w", path, err)
	}
	return nil
}

// LoadString executes Lua source held in memory.
func (vm *VM) LoadString(name, src string) error {
	if err := vm.L.DoString(src); err != nil {
		return fmt.Errorf("load script %s: %w", name, err)
	}
	return nil
}

// CallHandler calls a handler function. A missing function is not an
// error.
func (vm *VM) CallHandler(funcName string, args ...lua.LValue) error {
	fn := vm.handler(funcName)
	if fn == lua.LNil {
		return nil
	}

	if _, ok := fn.(*lua.LFunction); !ok {
		return fmt.Errorf("sketch.%s is not a function", funcName)
	}

	if err := vm.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, args...); err != nil {
		return fmt.Errorf("call sketch.%s: %w", funcName, err)
	}

	return nil
}

// HasHandler reports whether the script defines a handler function.
func (vm *VM) HasHandler(funcName string) bool {
	_, ok := vm.handler(funcName).(*lua.LFunction)
	return ok
}

// handler looks funcName up on the sketch table, then among the globals.
func (vm *VM) handler(funcName string) lua.LValue {
	if sketch := vm.getSketchTable(); sketch != nil {
		if fn := sketch.RawGetString(funcName); fn != lua.LNil {
			return fn
		}
	}
	return vm.L.GetGlobal(funcName)
}

// getSketchTable finds the sketch table, either as the return value of the
// script or as a global named "sketch".
func (vm *VM) getSketchTable() *lua.LTable {
	if tbl, ok := vm.L.Get(-1).(*lua.LTable); ok {
		return tbl
	}

	if tbl, ok := vm.L.GetGlobal("sketch").(*lua.LTable); ok {
		return tbl
	}

	return nil
}

// SetGlobal sets a global value in the Lua state.
func (vm *VM) SetGlobal(name string, value lua.LValue) {
	vm.L.SetGlobal(name, value)
}

// RegisterModule registers a table of functions as a Lua module.
func (vm *VM) RegisterModule(name string, funcs map[string]lua.LGFunction) {
	mod := vm.L.NewTable()
	for fname, fn := range funcs {
		mod.RawSetString(fname, vm.L.NewFunction(fn))
	}
	vm.L.SetGlobal(name, mod)
}

// LogError logs a Lua error with context.
func (vm *VM) LogError(context string, err error) {
	if err != nil {
		vm.log.Warn("lua error", zap.String("context", context), zap.Error(err))
	}
}
