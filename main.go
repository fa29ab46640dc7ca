package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/physics2d/scene"
)

func main() {
	sceneName := flag.String("scene", "stack", "scene name in scene/scenes/ (basename, .yaml optional)")
	debug := flag.Bool("debug", false, "draw contact points, normals and bounding discs")
	watch := flag.Bool("watch", false, "reload the scene when files under scene/ change")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("physics2d")

	game, err := NewGame(*sceneName, *debug)
	if err != nil {
		log.Fatal(err)
	}
	if *watch {
		w, err := scene.WatchDisk()
		if err != nil {
			log.Printf("scene watcher disabled: %v", err)
		} else {
			game.watcher = w
			defer w.Close()
		}
	}

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
