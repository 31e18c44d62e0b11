package app

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/rockfield3d/rockfield/core"
	"github.com/rockfield3d/rockfield/gpu"
)

const (
	rockScale      = 0.15
	planetScale    = 2.5
	lightScale     = 0.025
	constructScale = 24.0

	textureLayers = 8

	// Slow frames advance the animation by at most this much.
	maxFrameTime = 0.1
)

type Config struct {
	Instances int
	MSAA      int
	Seed      int64
	FontPath  string
	Debug     bool
}

type App struct {
	Window  *glfw.Window
	Context *gpu.Context
	Targets *gpu.RenderTargets

	Camera   *core.OrbitCamera
	LightSim *core.LightSim
	Assets   *core.AssetServer

	sceneBuf *wgpu.Buffer
	sampler  *wgpu.Sampler

	rockTexture  *wgpu.Texture
	rockTexView  *wgpu.TextureView
	lavaTexture  *wgpu.Texture
	lavaTexView  *wgpu.TextureView
	whiteTexture *wgpu.Texture
	whiteTexView *wgpu.TextureView

	starfield *gpu.StarfieldPass
	rocks     *gpu.RockPass
	meshes    *gpu.MeshPass
	planet    *gpu.MeshObject
	light     *gpu.MeshObject
	cage      *gpu.MeshObject
	text      *gpu.TextPass

	overlayFont   *core.OverlayFont
	instanceCount int

	locSpeed  float32
	globSpeed float32
	elapsed   float32

	lastTime   float64
	frameCount int
	fps        float64
	fpsTime    float64

	dragging   bool
	lastCursor [2]float64

	log core.Logger
}

func New(window *glfw.Window, cfg Config, log core.Logger) (*App, error) {
	if log == nil {
		log = core.NewNopLogger()
	}
	a := &App{
		Window:   window,
		Camera:   core.NewOrbitCamera(),
		LightSim: core.NewLightSim(),
		Assets:   core.NewAssetServer(),
		log:      log,
	}

	ctx, err := gpu.NewContext(window)
	if err != nil {
		return nil, fmt.Errorf("gpu init: %w", err)
	}
	a.Context = ctx

	sampleCount := gpu.NormalizeSampleCount(cfg.MSAA)
	if int(sampleCount) != cfg.MSAA && cfg.MSAA != 0 {
		log.Warnf("msaa %dx not supported, using %dx", cfg.MSAA, sampleCount)
	}
	a.Targets, err = gpu.NewRenderTargets(ctx.Device, ctx.Config, sampleCount)
	if err != nil {
		return nil, fmt.Errorf("render targets: %w", err)
	}

	a.sceneBuf, err = gpu.NewUniformBuffer[gpu.SceneUniforms](ctx.Device, "Scene Uniforms")
	if err != nil {
		return nil, err
	}

	a.sampler, err = ctx.Device.CreateSampler(&wgpu.SamplerDescriptor{
		MinFilter:     wgpu.FilterModeLinear,
		MagFilter:     wgpu.FilterModeLinear,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	if err := a.setupTextures(rng); err != nil {
		return nil, err
	}
	if err := a.setupScene(cfg, rng); err != nil {
		return nil, err
	}
	a.setupOverlay(cfg)

	log.Infof("rendering %d instances, %dx msaa, seed %d", a.instanceCount, sampleCount, cfg.Seed)
	return a, nil
}

func (a *App) setupTextures(rng *rand.Rand) error {
	var err error

	rocks := core.GenerateRockTextureArray(256, textureLayers, rng)
	a.Assets.AddTexture(rocks)
	a.rockTexture, a.rockTexView, err = gpu.UploadTexture(a.Context.Device, "Rock Array", rocks)
	if err != nil {
		return err
	}

	lava := core.GenerateLavaTexture(512, rng)
	a.Assets.AddTexture(lava)
	a.lavaTexture, a.lavaTexView, err = gpu.UploadTexture(a.Context.Device, "Lava", lava)
	if err != nil {
		return err
	}

	white := &core.TextureAsset{Width: 1, Height: 1, Layers: 1, Texels: []byte{255, 255, 255, 255}}
	a.whiteTexture, a.whiteTexView, err = gpu.UploadTexture(a.Context.Device, "White", white)
	return err
}

func (a *App) setupScene(cfg Config, rng *rand.Rand) error {
	device := a.Context.Device
	format := a.Context.Config.Format
	samples := a.Targets.SampleCount

	var err error
	a.starfield, err = gpu.NewStarfieldPass(device, format, samples, a.sceneBuf)
	if err != nil {
		return fmt.Errorf("starfield pass: %w", err)
	}

	count := cfg.Instances
	if count <= 0 {
		count = core.DefaultInstanceCount
	}
	instances, err := core.GeneratePlacement(core.PlacementConfig{
		Count:         count,
		Rings:         core.DefaultRings,
		TextureLayers: textureLayers,
	}, rng)
	if err != nil {
		return fmt.Errorf("placement: %w", err)
	}
	a.instanceCount = len(instances)

	rockMesh := core.NewRock(rockScale, 16, 12, 0.35, 7)
	a.Assets.AddMesh(rockMesh)
	a.rocks, err = gpu.NewRockPass(device, format, samples, a.sceneBuf, a.rockTexView, a.sampler, rockMesh, instances)
	if err != nil {
		return fmt.Errorf("rock pass: %w", err)
	}

	a.meshes, err = gpu.NewMeshPass(device, format, samples)
	if err != nil {
		return fmt.Errorf("mesh pass: %w", err)
	}

	planetMesh := core.NewRock(planetScale, 48, 32, 0.04, 3)
	a.Assets.AddMesh(planetMesh)
	a.planet, err = a.meshes.AddObject(device, "Planet", planetMesh, a.sceneBuf, a.lavaTexView, a.sampler)
	if err != nil {
		return err
	}
	a.planet.SetParams(0, 0, 0.3)

	lightMesh := core.NewUVSphere(lightScale, 24, 16)
	a.Assets.AddMesh(lightMesh)
	a.light, err = a.meshes.AddObject(device, "Light", lightMesh, a.sceneBuf, a.whiteTexView, a.sampler)
	if err != nil {
		return err
	}
	a.light.SetParams(1, 0, 0)

	cageMesh := core.NewCageConstruct(constructScale, 0.4)
	a.Assets.AddMesh(cageMesh)
	a.cage, err = a.meshes.AddObject(device, "Cage", cageMesh, a.sceneBuf, a.whiteTexView, a.sampler)
	if err != nil {
		return err
	}
	a.cage.SetParams(0, 0.3, 1)

	return nil
}

func (a *App) setupOverlay(cfg Config) {
	if cfg.FontPath == "" {
		a.log.Infof("no font given, overlay disabled")
		return
	}
	data, err := os.ReadFile(cfg.FontPath)
	if err != nil {
		a.log.Warnf("overlay disabled: %v", err)
		return
	}
	font, err := core.NewOverlayFont(data, 20)
	if err != nil {
		a.log.Warnf("overlay disabled: %v", err)
		return
	}
	a.overlayFont = font

	a.text, err = gpu.NewTextPass(a.Context.Device, a.Context.Config.Format, font, a.sampler)
	if err != nil {
		a.log.Warnf("overlay disabled: %v", err)
		a.overlayFont = nil
		a.text = nil
	}
}

// Update advances the simulation and uploads the per-frame uniforms.
func (a *App) Update() {
	now := glfw.GetTime()
	if a.lastTime == 0 {
		a.lastTime = now
	}
	dt := float32(now - a.lastTime)
	a.lastTime = now
	if dt > maxFrameTime {
		dt = maxFrameTime
	}

	a.LightSim.Step(dt)
	a.locSpeed += dt * 0.35
	a.globSpeed += dt * 0.01
	a.elapsed += dt

	lp := a.LightSim.Position
	cp := a.Camera.Position()
	width := int(a.Context.Config.Width)
	height := int(a.Context.Config.Height)
	aspect := float32(width) / float32(height)

	u := gpu.SceneUniforms{
		View:           a.Camera.ViewMatrix(),
		Proj:           a.Camera.ProjectionMatrix(aspect),
		LightPos:       [4]float32{lp[0], lp[1], lp[2], 1},
		CamPos:         [4]float32{cp[0], cp[1], cp[2], 1},
		LightIntensity: a.LightSim.Intensity,
		LocSpeed:       a.locSpeed,
		GlobSpeed:      a.globSpeed,
		Time:           a.elapsed,
	}
	gpu.WriteUniform(a.Context.Queue, a.sceneBuf, &u)

	a.light.SetModel(mgl32.Translate3D(lp[0], lp[1], lp[2]))
	a.planet.Flush(a.Context.Queue)
	a.light.Flush(a.Context.Queue)
	a.cage.Flush(a.Context.Queue)

	a.updateFPS(now)
	if a.text != nil {
		items := []core.OverlayItem{
			{Text: "rockfield", Position: [2]float32{5, 5}, Scale: 1.2, Color: [4]float32{1, 1, 1, 1}},
			{Text: fmt.Sprintf("%.0f fps", a.fps), Position: [2]float32{5, 45}, Scale: 1, Color: [4]float32{0.8, 0.8, 0.8, 1}},
			{Text: fmt.Sprintf("Rendering %d instances", a.instanceCount), Position: [2]float32{5, 85}, Scale: 1, Color: [4]float32{1, 1, 1, 1}},
		}
		a.text.Update(a.Context.Queue, a.overlayFont, items, width, height)
	}
}

func (a *App) updateFPS(now float64) {
	a.frameCount++
	if a.fpsTime == 0 {
		a.fpsTime = now
	}
	if now-a.fpsTime >= 0.5 {
		a.fps = float64(a.frameCount) / (now - a.fpsTime)
		a.frameCount = 0
		a.fpsTime = now
	}
}

func (a *App) Render() {
	frame, err := a.Context.Surface.GetCurrentTexture()
	if err != nil {
		a.log.Errorf("acquire frame: %v", err)
		return
	}
	defer frame.Release()

	view, err := frame.CreateView(nil)
	if err != nil {
		a.log.Errorf("frame view: %v", err)
		return
	}
	defer view.Release()

	encoder, err := a.Context.Device.CreateCommandEncoder(nil)
	if err != nil {
		a.log.Errorf("command encoder: %v", err)
		return
	}

	pass := a.Targets.BeginScenePass(encoder, view, wgpu.Color{R: 0, G: 0, B: 0, A: 1})
	a.starfield.Draw(pass)
	a.meshes.Draw(pass, a.planet, a.light, a.cage)
	a.rocks.Draw(pass)
	if err := pass.End(); err != nil {
		a.log.Errorf("scene pass: %v", err)
	}

	if a.text != nil {
		a.text.Draw(encoder, view)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		a.log.Errorf("encoder finish: %v", err)
		return
	}
	a.Context.Queue.Submit(cmd)
	a.Context.Surface.Present()
}

func (a *App) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	a.Context.Resize(width, height)
	if err := a.Targets.Resize(a.Context.Device, a.Context.Config); err != nil {
		a.log.Errorf("resize targets: %v", err)
	}
}

// Input handlers, wired to glfw callbacks by the caller.

func (a *App) OnMouseButton(button glfw.MouseButton, action glfw.Action) {
	if button != glfw.MouseButtonLeft {
		return
	}
	if action == glfw.Press {
		a.dragging = true
		a.lastCursor[0], a.lastCursor[1] = a.Window.GetCursorPos()
	} else if action == glfw.Release {
		a.dragging = false
	}
}

func (a *App) OnCursorMove(x, y float64) {
	if !a.dragging {
		return
	}
	dx := float32(x - a.lastCursor[0])
	dy := float32(y - a.lastCursor[1])
	a.lastCursor[0], a.lastCursor[1] = x, y
	a.Camera.Rotate(dx, dy)
}

func (a *App) OnScroll(dy float64) {
	a.Camera.Zoom(float32(dy))
}

func (a *App) Release() {
	if a.text != nil {
		a.text.Release()
	}
	if a.rocks != nil {
		a.rocks.Release()
	}
	for _, o := range []*gpu.MeshObject{a.planet, a.light, a.cage} {
		if o != nil {
			o.Release()
		}
	}
	for _, t := range []*wgpu.Texture{a.rockTexture, a.lavaTexture, a.whiteTexture} {
		if t != nil {
			t.Release()
		}
	}
	if a.Targets != nil {
		a.Targets.Release()
	}
	if a.Context != nil {
		a.Context.Release()
	}
}
