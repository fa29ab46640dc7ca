package main

import (
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics2d/scene"
	"golang.design/x/clipboard"
	"golang.org/x/image/colornames"
)

const (
	baseWidth  = 1280
	baseHeight = 720

	framePadding = 1.5
)

type Game struct {
	frames int

	name    string
	scene   *scene.Scene
	camera  camera
	debug   bool
	paused  bool
	ui      *ebitenui.UI
	watcher *scene.Watcher
	status  string

	clipboardReady bool
}

func NewGame(name string, debug bool) (*Game, error) {
	g := &Game{debug: debug}
	if err := g.load(name); err != nil {
		return nil, err
	}
	g.ui = NewPauseUI(g)
	if err := clipboard.Init(); err != nil {
		log.Printf("clipboard unavailable: %v", err)
	} else {
		g.clipboardReady = true
	}
	return g, nil
}

func (g *Game) load(name string) error {
	s, err := scene.Open(name)
	if err != nil {
		return err
	}
	if g.scene != nil {
		g.scene.Close()
	}
	g.name = name
	g.scene = s
	g.camera = frame(s.Bounds())
	if g.paused {
		s.World.Clock().Pause()
	}
	g.status = fmt.Sprintf("loaded %s", name)
	return nil
}

func (g *Game) reload() {
	if err := g.load(g.name); err != nil {
		log.Printf("reload %s: %v", g.name, err)
		g.status = fmt.Sprintf("reload failed: %v", err)
	}
}

func (g *Game) nextScene() {
	names := scene.List()
	if len(names) == 0 {
		return
	}
	cur := strings.TrimSuffix(g.name, ".yaml") + ".yaml"
	next := names[0]
	for i, n := range names {
		if n == cur {
			next = names[(i+1)%len(names)]
			break
		}
	}
	if err := g.load(next); err != nil {
		log.Printf("load %s: %v", next, err)
	}
}

func (g *Game) setPaused(paused bool) {
	g.paused = paused
	if paused {
		g.scene.World.Clock().Pause()
	} else {
		g.scene.World.Clock().Resume()
	}
}

func (g *Game) stepOnce() {
	g.scene.World.Step()
}

// copySnapshot puts the current scene state on the clipboard as YAML.
func (g *Game) copySnapshot() {
	data, err := g.scene.Encode()
	if err != nil {
		g.status = fmt.Sprintf("snapshot failed: %v", err)
		return
	}
	if !g.clipboardReady {
		g.status = "clipboard unavailable"
		return
	}
	clipboard.Write(clipboard.FmtText, data)
	g.status = fmt.Sprintf("copied %d bytes of %s", len(data), g.name)
}

func (g *Game) drainWatcher() {
	if g.watcher == nil {
		return
	}
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			log.Printf("changed: %s", filepath.Base(path))
			g.reload()
		case err, ok := <-g.watcher.Errors:
			if ok {
				log.Printf("watcher: %v", err)
			}
		default:
			return
		}
	}
}

func (g *Game) Update() error {
	g.frames++
	g.drainWatcher()

	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		g.setPaused(!g.paused)
	case inpututil.IsKeyJustPressed(ebiten.KeyR):
		g.reload()
	case inpututil.IsKeyJustPressed(ebiten.KeyN):
		g.nextScene()
	case inpututil.IsKeyJustPressed(ebiten.KeyC):
		g.copySnapshot()
	case inpututil.IsKeyJustPressed(ebiten.KeyF1):
		g.debug = !g.debug
	case g.paused && inpututil.IsKeyJustPressed(ebiten.KeySpace):
		g.stepOnce()
	}

	if g.paused {
		g.ui.Update()
		return nil
	}
	g.scene.World.Update()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Black)
	alpha := g.scene.World.Alpha()
	if g.paused {
		alpha = 1
	}
	drawWorld(screen, g.scene.World, g.camera, alpha, g.debug)

	st := scene.Measure(g.scene.World)
	ebitenutil.DebugPrint(screen, fmt.Sprintf(
		"%s    FPS: %.2f\n%s\n%s\n[esc] pause  [space] step  [r] reload  [n] next  [c] copy  [f1] debug",
		g.name, ebiten.ActualFPS(), st, g.status))

	if g.paused {
		g.ui.Draw(screen)
	}
}

type camera struct {
	center cp.Vector
	zoom   float64
}

// frame fits bb into the base resolution with some padding.
func frame(bb cp.BB) camera {
	w, h := bb.R-bb.L, bb.T-bb.B
	if w <= 0 || h <= 0 {
		return camera{zoom: 40}
	}
	zoom := min(baseWidth/(w*framePadding), baseHeight/(h*framePadding))
	return camera{center: bb.Center(), zoom: zoom}
}

// toScreen maps world space (y up) to screen space (y down).
func (c camera) toScreen(v cp.Vector) (float32, float32) {
	x := (v.X-c.center.X)*c.zoom + baseWidth/2
	y := baseHeight/2 - (v.Y-c.center.Y)*c.zoom
	return float32(x), float32(y)
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}
