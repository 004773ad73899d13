package scripting

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/fishblog/fishblog/internal/canvas"
)

// PenAPI exposes a drawing surface to Lua as the "pen" module. Coordinates
// are surface-local.
type PenAPI struct {
	surface *canvas.Surface
	ops     int
	check   ValidateInput
}

// NewPenAPI creates a Lua pen API drawing on surface.
func NewPenAPI(surface *canvas.Surface) *PenAPI {
	return &PenAPI{surface: surface}
}

// Register installs the pen functions and a read-only "canvas" table with
// the surface size.
func (api *PenAPI) Register(vm *VM) {
	vm.RegisterModule("pen", map[string]lua.LGFunction{
		"color":    api.luaColor,
		"width":    api.luaWidth,
		"down":     api.luaDown,
		"move":     api.luaMove,
		"up":       api.luaUp,
		"line":     api.luaLine,
		"dot":      api.luaDot,
		"clear":    api.luaClear,
		"segments": api.luaSegments,
	})

	b := api.surface.Bounds()
	info := vm.L.NewTable()
	info.RawSetString("width", lua.LNumber(b.Dx()))
	info.RawSetString("height", lua.LNumber(b.Dy()))
	vm.SetGlobal("canvas", info)
}

// Ops returns how many drawing calls the script made.
func (api *PenAPI) Ops() int { return api.ops }

func (api *PenAPI) count(L *lua.LState) {
	api.ops++
	if api.ops > MaxPenOps {
		L.RaiseError("too many pen operations (max %d)", MaxPenOps)
	}
}

func (api *PenAPI) checkPoint(L *lua.LState, n int) canvas.Point {
	x := float64(L.CheckNumber(n))
	y := float64(L.CheckNumber(n + 1))
	if err := api.check.ValidateCoordinate("x", x); err != nil {
		L.ArgError(n, err.Error())
	}
	if err := api.check.ValidateCoordinate("y", y); err != nil {
		L.ArgError(n+1, err.Error())
	}
	return canvas.Point{X: x, Y: y}
}

// color(hex) sets the stroke color; with no argument it returns the current one.
func (api *PenAPI) luaColor(L *lua.LState) int {
	if L.GetTop() == 0 {
		L.Push(lua.LString(api.surface.Color()))
		return 1
	}
	if err := api.surface.SetColor(L.CheckString(1)); err != nil {
		L.ArgError(1, err.Error())
	}
	return 0
}

// width(n) sets the stroke width; with no argument it returns the current one.
func (api *PenAPI) luaWidth(L *lua.LState) int {
	if L.GetTop() == 0 {
		L.Push(lua.LNumber(api.surface.Width()))
		return 1
	}
	w := float64(L.CheckNumber(1))
	if err := api.check.ValidateWidth(w); err != nil {
		L.ArgError(1, err.Error())
	}
	if err := api.surface.SetWidth(w); err != nil {
		L.ArgError(1, err.Error())
	}
	return 0
}

func (api *PenAPI) down(L *lua.LState, p canvas.Point) {
	if err := api.surface.PointerDown(p, canvas.Point{}); err != nil {
		L.RaiseError("pen.down: %v", err)
	}
}

func (api *PenAPI) move(L *lua.LState, p canvas.Point) bool {
	drew, err := api.surface.PointerMove(p, canvas.Point{})
	if err != nil {
		L.RaiseError("pen.move: %v", err)
	}
	return drew
}

func (api *PenAPI) luaDown(L *lua.LState) int {
	api.count(L)
	api.down(L, api.checkPoint(L, 1))
	return 0
}

// move(x, y) returns true when a segment was drawn.
func (api *PenAPI) luaMove(L *lua.LState) int {
	api.count(L)
	L.Push(lua.LBool(api.move(L, api.checkPoint(L, 1))))
	return 1
}

func (api *PenAPI) luaUp(L *lua.LState) int {
	api.surface.PointerUp()
	return 0
}

// line(x1, y1, x2, y2) draws one segment as a complete stroke.
func (api *PenAPI) luaLine(L *lua.LState) int {
	api.count(L)
	from := api.checkPoint(L, 1)
	to := api.checkPoint(L, 3)
	api.down(L, from)
	api.move(L, to)
	api.surface.PointerUp()
	return 0
}

// dot(x, y) draws a round dot with the current width.
func (api *PenAPI) luaDot(L *lua.LState) int {
	api.count(L)
	p := api.checkPoint(L, 1)
	api.down(L, p)
	api.move(L, p)
	api.surface.PointerUp()
	return 0
}

func (api *PenAPI) luaClear(L *lua.LState) int {
	api.surface.Clear()
	return 0
}

func (api *PenAPI) luaSegments(L *lua.LState) int {
	L.Push(lua.LNumber(api.surface.Segments()))
	return 1
}
