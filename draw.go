package main

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physics2d/physics"
	"golang.org/x/image/colornames"
)

const (
	debugCircleSegments = 24
	debugDotSize        = 4
	debugNormalLength   = 0.4
)

type worldDrawer struct {
	screen *ebiten.Image
	cam    camera
}

// drawWorld outlines every collider at its interpolated pose. With debug set it adds
// bounding discs, contact points and contact normals.
func drawWorld(screen *ebiten.Image, w *physics.World, cam camera, alpha float64, debug bool) {
	d := &worldDrawer{screen: screen, cam: cam}
	for _, c := range w.Colliders() {
		b := c.Body()
		if b == nil {
			continue
		}
		pos := b.InterpolatedPosition(alpha)
		rot := cp.ForAngle(b.InterpolatedRotation(alpha))
		clr := shapeColor(b, c)

		switch c.Kind() {
		case physics.ShapeDisc:
			disc := c.LocalDisc()
			center := pos.Add(disc.Center.Rotate(rot))
			d.drawCircle(center, disc.Radius, clr)
			d.drawLine(center, center.Add(rot.Mult(disc.Radius)), clr)
		case physics.ShapePolygon:
			local := c.LocalVertices()
			verts := make([]cp.Vector, len(local))
			for i, v := range local {
				verts[i] = pos.Add(v.Rotate(rot))
			}
			d.drawPolygon(verts, clr)
		}

		if debug {
			bounds := c.WorldBounds()
			d.drawCircle(bounds.Center, bounds.Radius, colornames.Dimgray)
		}
	}

	if !debug {
		return
	}
	for _, col := range w.Collisions() {
		if col.IsTrigger() {
			continue
		}
		for _, p := range col.Manifold.Points() {
			d.drawDot(p, colornames.Red)
			d.drawLine(p, p.Add(col.Manifold.Normal.Mult(debugNormalLength)), colornames.Orange)
		}
	}
}

func shapeColor(b *physics.Rigidbody, c *physics.Collider) color.Color {
	switch {
	case !b.Enabled():
		return colornames.Dimgray
	case c.IsTrigger():
		return colornames.Deepskyblue
	case b.Mode() == physics.Static:
		return colornames.Slategray
	case b.Mode() == physics.Kinematic:
		return colornames.Goldenrod
	default:
		return colornames.Limegreen
	}
}

func (d *worldDrawer) drawLine(a, b cp.Vector, clr color.Color) {
	x1, y1 := d.cam.toScreen(a)
	x2, y2 := d.cam.toScreen(b)
	vector.StrokeLine(d.screen, x1, y1, x2, y2, 1, clr, true)
}

func (d *worldDrawer) drawPolygon(verts []cp.Vector, clr color.Color) {
	for i := 0; i < len(verts); i++ {
		d.drawLine(verts[i], verts[(i+1)%len(verts)], clr)
	}
}

func (d *worldDrawer) drawCircle(center cp.Vector, radius float64, clr color.Color) {
	if radius <= 0 {
		return
	}
	points := make([]cp.Vector, 0, debugCircleSegments)
	for i := 0; i < debugCircleSegments; i++ {
		t := (2 * math.Pi) * (float64(i) / float64(debugCircleSegments))
		points = append(points, cp.Vector{X: center.X + math.Cos(t)*radius, Y: center.Y + math.Sin(t)*radius})
	}
	d.drawPolygon(points, clr)
}

func (d *worldDrawer) drawDot(pos cp.Vector, clr color.Color) {
	x, y := d.cam.toScreen(pos)
	half := float32(debugDotSize) / 2
	vector.StrokeLine(d.screen, x-half, y, x+half, y, 1, clr, true)
	vector.StrokeLine(d.screen, x, y-half, x, y+half, 1, clr, true)
}
