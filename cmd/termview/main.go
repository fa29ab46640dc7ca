// Command termview draws a running scene in the terminal.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics2d/physics"
	"github.com/milk9111/physics2d/scene"
)

// cellAspect is how much taller a terminal cell is than it is wide.
const cellAspect = 2.0

type viewer struct {
	screen tcell.Screen
	name   string
	scene  *scene.Scene
	paused bool
	status string
}

func main() {
	sceneName := flag.String("scene", "stack", "scene name in scene/scenes/ (basename, .yaml optional)")
	fps := flag.Int("fps", 30, "redraw rate")
	flag.Parse()

	s, err := scene.Open(*sceneName)
	if err != nil {
		log.Fatal(err)
	}
	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal(err)
	}
	if err := screen.Init(); err != nil {
		log.Fatal(err)
	}
	defer screen.Fini()

	v := &viewer{screen: screen, name: *sceneName, scene: s}
	defer func() { v.scene.Close() }()

	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			events <- ev
		}
	}()

	frame := time.NewTicker(time.Second / time.Duration(max(*fps, 1)))
	defer frame.Stop()
	for {
		select {
		case ev, ok := <-events:
			if !ok || !v.handle(ev) {
				return
			}
		case <-frame.C:
			if !v.paused {
				v.scene.World.Update()
			}
			v.draw()
		}
	}
}

// handle applies one input event and reports whether the viewer keeps running.
func (v *viewer) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		v.screen.Sync()
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			switch ev.Rune() {
			case 'q':
				return false
			case ' ':
				v.paused = !v.paused
				if v.paused {
					v.scene.World.Clock().Pause()
				} else {
					v.scene.World.Clock().Resume()
				}
			case '.':
				if v.paused {
					v.scene.World.Step()
				}
			case 'r':
				v.load(v.name)
			case 'n':
				v.next()
			}
		}
	}
	return true
}

func (v *viewer) load(name string) {
	s, err := scene.Open(name)
	if err != nil {
		v.status = err.Error()
		return
	}
	v.scene.Close()
	v.scene, v.name = s, name
	if v.paused {
		s.World.Clock().Pause()
	}
	v.status = "loaded " + name
}

func (v *viewer) next() {
	names := scene.List()
	if len(names) == 0 {
		return
	}
	next := names[0]
	for i, n := range names {
		if n == v.name || n == v.name+".yaml" {
			next = names[(i+1)%len(names)]
			break
		}
	}
	v.load(next)
}

type grid struct {
	w, h   int
	center cp.Vector
	scale  float64
}

func fit(bb cp.BB, w, h int) grid {
	g := grid{w: w, h: h, center: bb.Center(), scale: 1}
	bw, bh := bb.R-bb.L, (bb.T-bb.B)/cellAspect
	if bw > 0 && bh > 0 {
		g.scale = math.Min(float64(w)/(bw*1.1), float64(h-2)/(bh*1.1))
	}
	return g
}

func (g grid) cell(p cp.Vector) (int, int) {
	x := (p.X-g.center.X)*g.scale + float64(g.w)/2
	y := float64(g.h)/2 - (p.Y-g.center.Y)*g.scale/cellAspect
	return int(math.Floor(x)), int(math.Floor(y))
}

// world returns the centre of cell (x, y) in world space.
func (g grid) world(x, y int) cp.Vector {
	return cp.Vector{
		X: (float64(x)+0.5-float64(g.w)/2)/g.scale + g.center.X,
		Y: (float64(g.h)/2-float64(y)-0.5)*cellAspect/g.scale + g.center.Y,
	}
}

func (v *viewer) draw() {
	v.screen.Clear()
	w, h := v.screen.Size()
	g := fit(v.scene.Bounds(), w, h)

	for _, c := range v.scene.World.Colliders() {
		b := c.Body()
		if b == nil {
			continue
		}
		style, r := cellStyle(b, c)
		bb := c.WorldBounds().BB()
		x0, y0 := g.cell(cp.Vector{X: bb.L, Y: bb.T})
		x1, y1 := g.cell(cp.Vector{X: bb.R, Y: bb.B})
		for y := max(y0, 0); y <= min(y1, h-2); y++ {
			for x := max(x0, 0); x <= min(x1, w-1); x++ {
				if c.Contains(g.world(x, y)) {
					v.screen.SetContent(x, y, r, nil, style)
				}
			}
		}
	}
	for _, col := range v.scene.World.Collisions() {
		if col.IsTrigger() {
			continue
		}
		for _, p := range col.Manifold.Points() {
			x, y := g.cell(p)
			if x >= 0 && x < w && y >= 0 && y < h-1 {
				v.screen.SetContent(x, y, '*', nil, tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true))
			}
		}
	}

	st := scene.Measure(v.scene.World)
	line := fmt.Sprintf("%s | %s | space pause . step r reload n next q quit | %s", v.name, st, v.status)
	for i, r := range line {
		if i >= w {
			break
		}
		v.screen.SetContent(i, h-1, r, nil, tcell.StyleDefault.Reverse(true))
	}
	v.screen.Show()
}

func cellStyle(b *physics.Rigidbody, c *physics.Collider) (tcell.Style, rune) {
	switch {
	case c.IsTrigger():
		return tcell.StyleDefault.Foreground(tcell.ColorDeepSkyBlue), '.'
	case b.Mode() == physics.Static:
		return tcell.StyleDefault.Foreground(tcell.ColorSlateGray), '#'
	case b.Mode() == physics.Kinematic:
		return tcell.StyleDefault.Foreground(tcell.ColorGoldenrod), '='
	case c.Kind() == physics.ShapeDisc:
		return tcell.StyleDefault.Foreground(tcell.ColorLimeGreen), 'o'
	default:
		return tcell.StyleDefault.Foreground(tcell.ColorLimeGreen), '@'
	}
}
