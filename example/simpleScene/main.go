package main

import (
	"fmt"
	"math"

	"github.com/akmonengine/rigidscene"
	"github.com/akmonengine/rigidscene/engine"
	"github.com/akmonengine/rigidscene/feather"
	"github.com/go-gl/mathgl/mgl64"
)

// SetupScene creates the test scene with a plane and cube
func SetupScene() (*rigidscene.RigidBodyCollection, *rigidscene.CollisionCollection, *rigidscene.RigidBody) {
	eng := feather.New()

	// Create ground plane (y=0)
	plane, err := rigidscene.NewCollidableShape(eng, engine.Plane{Normal: mgl64.Vec3{0, 1, 0}})
	if err != nil {
		panic(err)
	}

	// Create cube with full size 3
	size := mgl64.Vec3{3, 3, 3}
	box, err := rigidscene.NewCollidableShape(eng, engine.Box{Size: size})
	if err != nil {
		panic(err)
	}

	// Test avec cube qui tombe en rotation
	cube := rigidscene.NewRigidBody()
	cube.SetPosition(mgl64.Vec3{-5.0, 5.0, -5.0})
	cube.SetOrientation(rigidscene.Rotation{Axis: mgl64.Vec3{0, 0, 1}, Angle: 70 * math.Pi / 180})
	if err := cube.SetMassDensityModel(engine.Box{Size: size}); err != nil {
		panic(err)
	}
	if err := cube.SetGeometry([]any{box}); err != nil {
		panic(err)
	}

	collisions := rigidscene.NewCollisionCollection(eng)
	if err := collisions.SetCollidables([]any{plane, box}); err != nil {
		panic(err)
	}
	// Haute restitution pour tester les rebonds
	if err := collisions.SetBounce(0.8); err != nil {
		panic(err)
	}

	world := rigidscene.NewRigidBodyCollection(eng)
	if err := world.SetBodies([]any{cube}); err != nil {
		panic(err)
	}
	if err := world.SetCollider(collisions); err != nil {
		panic(err)
	}
	world.SetGravity(mgl64.Vec3{0, -9.81, 0})
	world.SetupFinished()

	return world, collisions, cube
}

// TestCubeRotation steps the cube frame by frame and prints its state and contacts
func TestCubeRotation() {
	fmt.Println("🧪 Test d'intégration: Cube en rotation")
	fmt.Println("=======================================")

	world, collisions, cube := SetupScene()
	defer world.Destroy()

	fmt.Printf("Configuration initiale:\n")
	fmt.Printf("  Cube: position %v, rotation %v\n", cube.Position(), cube.Orientation())
	fmt.Printf("  Gravité: %v\n", world.Gravity())
	fmt.Println()

	const dt float64 = 1.0 / 60.0
	const maxSteps int = 200
	if err := world.SetTimestep(dt); err != nil {
		panic(err)
	}

	for step := 0; step < maxSteps; step++ {
		fmt.Printf("--- ÉTAPE %d ---\n", step+1)

		collisions.EvaluateCollisions()
		contacts := collisions.Contacts()
		if len(contacts) > 0 {
			fmt.Printf("  Collision détectée! %d contacts\n", len(contacts))
			for i, c := range contacts {
				fmt.Printf("   Point %d: position=%v penetration=%.6f normal=%v\n", i, c.Position(), c.Depth(), c.Normal())
			}
		} else {
			fmt.Printf("  Pas de collision\n")
		}

		world.ProcessInputContacts(contacts)
		world.EvaluateModel()
		world.UpdatePostSimulation()
		collisions.UpdateCollidables()

		fmt.Printf("Cube état APRÈS:\n")
		fmt.Printf("  Position: %v\n", cube.Position())
		fmt.Printf("  Velocity: %v\n", cube.LinearVelocity())
		fmt.Printf("  Angular Velocity: %v (len=%.3f)\n", cube.AngularVelocity(), cube.AngularVelocity().Len())
		fmt.Printf("  Rotation: %v\n", cube.Orientation())
		fmt.Println()
	}

	fmt.Println("Test terminé!")
}

func main() {
	TestCubeRotation()
}
