// Command headless runs a scene without a window and prints step statistics.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/milk9111/physics2d/physics"
	"github.com/milk9111/physics2d/scene"
)

func main() {
	sceneName := flag.String("scene", "stack", "scene name in scene/scenes/ (basename, .yaml optional)")
	steps := flag.Int("steps", 600, "fixed steps to run")
	every := flag.Int("every", 60, "print stats every n steps (0 disables)")
	out := flag.String("out", "", "write the final snapshot YAML to this file")
	events := flag.Bool("events", false, "log overlap and trigger events")
	realtime := flag.Bool("realtime", false, "pace steps with the world clock instead of running flat out")
	flag.Parse()

	s, err := scene.Open(*sceneName)
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	if *events {
		logEvents(s)
	}

	start := time.Now()
	if *realtime {
		runRealtime(s, *steps, *every)
	} else {
		for i := 0; i < *steps; i++ {
			s.World.Step()
			report(s, *every)
		}
	}
	elapsed := time.Since(start)

	st := scene.Measure(s.World)
	fmt.Printf("final %s\n", st)
	fmt.Printf("%d steps in %v (%.1f steps/s)\n", st.Step, elapsed, float64(st.Step)/elapsed.Seconds())
	if dropped := s.World.DroppedSteps(); dropped > 0 {
		fmt.Printf("dropped %d steps to the spiral-of-death clamp\n", dropped)
	}

	if *out != "" {
		data, err := s.Encode()
		if err != nil {
			log.Fatal(err)
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("snapshot written to %s\n", *out)
	}
}

func runRealtime(s *scene.Scene, steps, every int) {
	tick := time.NewTicker(time.Duration(s.World.FixedTimestep() * float64(time.Second)))
	defer tick.Stop()
	s.World.OnFixedUpdate().Subscribe(func(float64) {
		report(s, every)
	})
	for int(s.World.StepCount()) < steps {
		<-tick.C
		s.World.Update()
	}
}

func report(s *scene.Scene, every int) {
	if every <= 0 {
		return
	}
	if n := s.World.StepCount(); n > 0 && n%uint64(every) == 0 {
		fmt.Println(scene.Measure(s.World))
	}
}

func logEvents(s *scene.Scene) {
	for _, b := range s.World.Bodies() {
		name := s.NameOf(b.Handle())
		b.OnOverlapStart().Subscribe(func(c *physics.Collision) {
			log.Printf("step %d: %s starts touching %s", s.World.StepCount(), name, otherName(s, c))
		})
		b.OnOverlapStop().Subscribe(func(c *physics.Collision) {
			log.Printf("step %d: %s stops touching %s", s.World.StepCount(), name, otherName(s, c))
		})
		if c := b.Collider(); c != nil && c.IsTrigger() {
			c.OnTriggerEnter().Subscribe(func(col *physics.Collision) {
				log.Printf("step %d: %s entered trigger %s", s.World.StepCount(), otherName(s, col), name)
			})
			c.OnTriggerLeave().Subscribe(func(col *physics.Collision) {
				log.Printf("step %d: %s left trigger %s", s.World.StepCount(), otherName(s, col), name)
			})
		}
	}
}

func otherName(s *scene.Scene, c *physics.Collision) string {
	if c.Other == nil {
		return "?"
	}
	return s.NameOf(c.Other.BodyHandle())
}
