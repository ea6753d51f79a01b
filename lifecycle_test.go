package rigidscene_test

import (
	"github.com/akmonengine/rigidscene"
	"github.com/akmonengine/rigidscene/engine"
	"github.com/akmonengine/rigidscene/enginetest"
	"github.com/akmonengine/rigidscene/feather"
	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const frame = 1.0 / 60

var _ = Describe("a scene driven by the manager", func() {
	var (
		rec     *enginetest.Recorder
		ball    *rigidscene.RigidBody
		ground  *rigidscene.CollidableShape
		c       *rigidscene.RigidBodyCollection
		cc      *rigidscene.CollisionCollection
		sensor  *rigidscene.CollisionSensor
		manager *rigidscene.Manager
	)

	BeforeEach(func() {
		rec = enginetest.New(feather.New())

		var err error
		ground, err = rigidscene.NewCollidableShape(rec, engine.Plane{Normal: mgl64.Vec3{0, 1, 0}})
		Expect(err).NotTo(HaveOccurred())
		sphere, err := rigidscene.NewCollidableShape(rec, engine.Sphere{Radius: 0.5})
		Expect(err).NotTo(HaveOccurred())

		ball = rigidscene.NewRigidBody()
		ball.SetPosition(mgl64.Vec3{0, 2, 0})
		Expect(ball.SetGeometry([]any{sphere})).To(Succeed())

		cc = rigidscene.NewCollisionCollection(rec)
		Expect(cc.SetCollidables([]any{ground, sphere})).To(Succeed())

		c = rigidscene.NewRigidBodyCollection(rec)
		Expect(c.SetBodies([]any{ball})).To(Succeed())
		Expect(c.SetCollider(cc)).To(Succeed())

		sensor = rigidscene.NewCollisionSensor()
		Expect(sensor.SetCollider(cc)).To(Succeed())

		c.SetupFinished()
		sensor.SetupFinished()

		manager = rigidscene.NewManager(rigidscene.WithFixedTimestep(frame))
		for _, n := range []any{c, cc, sensor} {
			Expect(manager.Add(n)).To(Succeed())
		}
	})

	AfterEach(func() {
		manager.Clear()
		Expect(rec.LiveTotal()).To(BeZero())
		Expect(rec.DoubleFrees()).To(BeEmpty())
	})

	run := func(frames int) {
		for range frames {
			manager.PreFrame()
			manager.PostFrame(nil)
		}
		manager.PreFrame()
	}

	Context("before the ball reaches the ground", func() {
		It("falls freely", func() {
			run(10)
			Expect(ball.Position().Y()).To(BeNumerically("<", 2))
			Expect(ball.LinearVelocity().Y()).To(BeNumerically("~", -9.8*10*frame, 1e-6))
			Expect(sensor.IsActive()).To(BeFalse())
			Expect(cc.NumContacts()).To(BeZero())
		})
	})

	Context("once it lands", func() {
		It("rests on the plane", func() {
			run(240)
			Expect(ball.Position().Y()).To(BeNumerically("~", 0.5, 5e-2))
			Expect(ball.LinearVelocity().Len()).To(BeNumerically("<", 0.5))
		})

		It("activates the sensor", func() {
			run(240)
			Expect(sensor.IsActive()).To(BeTrue())
			Expect(sensor.Contacts()).NotTo(BeEmpty())
			Expect(sensor.Intersections()).To(ContainElement(ground))
		})
	})

	Context("when every contact is suppressed", func() {
		It("falls through the ground", func() {
			for range 240 {
				manager.PreFrame()
				manager.PostFrame(map[*rigidscene.RigidBodyCollection][]*rigidscene.Contact{c: nil})
			}
			manager.PreFrame()
			Expect(ball.Position().Y()).To(BeNumerically("<", -10))
		})
	})

	Context("when the collection is disabled", func() {
		It("keeps the ball in place", func() {
			c.SetEnabled(false)
			run(30)
			Expect(ball.Position()).To(Equal(mgl64.Vec3{0, 2, 0}))
		})
	})
})
