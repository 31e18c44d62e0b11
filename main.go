package main

import (
	"flag"
	"runtime"
	"time"

	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/rockfield3d/rockfield/app"
	"github.com/rockfield3d/rockfield/core"
)

func init() {
	runtime.LockOSThread()
}

// resolveSeed turns the flag value into the scene seed: an explicit seed
// reproduces a scene exactly, zero picks a fresh one from the clock.
func resolveSeed(v int64) int64 {
	if v != 0 {
		return v
	}
	return time.Now().UnixNano()
}

func main() {
	instances := flag.Int("instances", core.DefaultInstanceCount, "Number of rock instances")
	msaa := flag.Int("msaa", 4, "MSAA sample count (1 or 4)")
	seed := flag.Int64("seed", 0, "Scene generation seed (0 seeds from the clock)")
	fontPath := flag.String("font", "", "TTF font for the overlay (empty disables it)")
	width := flag.Int("width", 1280, "Window width")
	height := flag.Int("height", 720, "Window height")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	log := core.NewDefaultLogger("rockfield", *debug)

	if err := glfw.Init(); err != nil {
		log.Errorf("glfw init: %v", err)
		panic(err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	window, err := glfw.CreateWindow(*width, *height, "Rockfield", nil, nil)
	if err != nil {
		log.Errorf("create window: %v", err)
		panic(err)
	}
	defer window.Destroy()

	application, err := app.New(window, app.Config{
		Instances: *instances,
		MSAA:      *msaa,
		Seed:      resolveSeed(*seed),
		FontPath:  *fontPath,
		Debug:     *debug,
	}, log)
	if err != nil {
		log.Errorf("init: %v", err)
		panic(err)
	}
	defer application.Release()

	window.SetFramebufferSizeCallback(func(w *glfw.Window, width, height int) {
		application.Resize(width, height)
	})

	window.SetMouseButtonCallback(func(w *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		application.OnMouseButton(button, action)
	})

	window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		application.OnCursorMove(xpos, ypos)
	})

	window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		application.OnScroll(yoff)
	})

	window.SetKeyCallback(func(w *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		if key == glfw.KeyEscape && action == glfw.Press {
			w.SetShouldClose(true)
		}
	})

	for !window.ShouldClose() {
		glfw.PollEvents()
		application.Update()
		application.Render()
	}
}
