package game

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// LuaGame runs a game script in its own Lua state.
//
// A script returns a table:
//
//	return {
//	  name = "DICE",
//	  description = "Roll against the house",
//	  start = function(state) return "text" end,
//	  input = function(state, line) return "text" end,
//	}
//
// The game ends once the script sets state.done to true.
type LuaGame struct {
	L     *lua.LState
	game  *lua.LTable
	state *lua.LTable
	once  sync.Once
}

// NewLuaGame loads a script file into a fresh Lua state.
func NewLuaGame(path string) (*LuaGame, error) {
	L := lua.NewState(lua.Options{
		CallStackSize: 120,
		RegistrySize:  120 * 20,
	})

	if err := L.DoFile(path); err != nil {
		L.Close()
		return nil, fmt.Errorf("load game script %s: %w", path, err)
	}
	tbl, ok := L.Get(-1).(*lua.LTable)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("game script %s did not return a table", path)
	}
	L.Pop(1)

	return &LuaGame{L: L, game: tbl, state: L.NewTable()}, nil
}

// Meta returns the script's declared name and description.
func (g *LuaGame) Meta() (name, description string) {
	return lua.LVAsString(g.game.RawGetString("name")), lua.LVAsString(g.game.RawGetString("description"))
}

// Start implements Game.
func (g *LuaGame) Start() (string, error) {
	text, err := g.call("start")
	if err != nil {
		return "", fmt.Errorf("start lua game: %w", err)
	}
	return text, nil
}

// Handle implements Game.
func (g *LuaGame) Handle(input string) (string, bool) {
	text, err := g.call("input", lua.LString(input))
	if err != nil {
		return "The game crashed: " + err.Error(), true
	}
	return text, lua.LVAsBool(g.state.RawGetString("done"))
}

// Close implements Game.
func (g *LuaGame) Close() {
	g.once.Do(g.L.Close)
}

func (g *LuaGame) call(name string, args ...lua.LValue) (string, error) {
	fn, ok := g.game.RawGetString(name).(*lua.LFunction)
	if !ok {
		return "", fmt.Errorf("%s is not a function", name)
	}
	if err := g.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, append([]lua.LValue{g.state}, args...)...); err != nil {
		return "", err
	}
	ret := g.L.Get(-1)
	g.L.Pop(1)
	if ret == lua.LNil {
		return "", nil
	}
	return lua.LVAsString(ret), nil
}

// LoadDir registers every *.lua game in dir. A missing directory is not an
// error; broken scripts are logged and skipped.
func LoadDir(r *Registry, dir string, log *zap.Logger) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.lua"))
	if err != nil {
		return 0, fmt.Errorf("scan games dir %s: %w", dir, err)
	}
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return 0, nil
	}
	sort.Strings(paths)

	loaded := 0
	for _, path := range paths {
		loadedGame, err := NewLuaGame(path)
		if err != nil {
			log.Warn("skipping game script", zap.String("path", path), zap.Error(err))
			continue
		}
		name, desc := loadedGame.Meta()
		loadedGame.Close()
		if strings.TrimSpace(name) == "" {
			name = strings.TrimSuffix(filepath.Base(path), ".lua")
		}

		path := path
		if err := r.Register(name, desc, func() (Game, error) { return NewLuaGame(path) }); err != nil {
			log.Warn("skipping game script", zap.String("path", path), zap.Error(err))
			continue
		}
		log.Info("loaded game script", zap.String("name", strings.ToUpper(name)), zap.String("path", path))
		loaded++
	}
	return loaded, nil
}
