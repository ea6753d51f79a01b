package feather

import (
	"slices"

	"github.com/akmonengine/rigidscene/actor"
	"github.com/akmonengine/rigidscene/constraint"
	"github.com/akmonengine/rigidscene/engine"
	"github.com/go-gl/mathgl/mgl64"
)

// pendingContact is a contact committed by a collider, waiting for the next step
type pendingContact struct {
	contact  *constraint.Contact
	b1, b2   *Body
	erp, cfm float64
}

// World owns bodies, joints and colliders, and steps them
type World struct {
	engine *Engine

	// Gravity acceleration (m/s², or N/kg)
	gravity          mgl64.Vec3
	iterations       int
	erp, cfm         float64
	maxCorrectingVel float64
	surfaceLayer     float64
	autoDisable      actor.AutoDisable

	nextBodyID uint64
	bodies     []*Body
	joints     []*Joint
	groups     []*JointGroup
	colliders  []*Collider
	contacts   []pendingContact

	Events    Events
	destroyed bool
}

func newWorld(e *Engine) *World {
	w := &World{
		engine:           e,
		iterations:       DEFAULT_ITERATIONS,
		erp:              DEFAULT_ERP,
		cfm:              DEFAULT_CFM,
		maxCorrectingVel: -1,
		autoDisable: actor.AutoDisable{
			LinearThreshold:  0.01,
			AngularThreshold: 0.01,
			Time:             0,
		},
		Events: NewEvents(),
	}
	for _, l := range e.listeners {
		w.Events.Subscribe(l.eventType, l.listener)
	}

	return w
}

func (w *World) SetGravity(g mgl64.Vec3) {
	w.gravity = g
}

func (w *World) Gravity() mgl64.Vec3 {
	return w.gravity
}

func (w *World) SetIterations(n int) {
	w.iterations = max(1, n)
}

func (w *World) SetERP(erp float64) {
	w.erp = erp
}

func (w *World) SetCFM(cfm float64) {
	w.cfm = cfm
}

func (w *World) SetMaxCorrectingVelocity(v float64) {
	w.maxCorrectingVel = v
}

func (w *World) SetContactSurfaceLayer(depth float64) {
	w.surfaceLayer = max(0, depth)
}

// The auto-disable settings are the defaults of bodies created afterwards

func (w *World) SetAutoDisableFlag(enabled bool) {
	w.autoDisable.Enabled = enabled
}

func (w *World) SetAutoDisableLinearThreshold(v float64) {
	w.autoDisable.LinearThreshold = v
}

func (w *World) SetAutoDisableAngularThreshold(v float64) {
	w.autoDisable.AngularThreshold = v
}

func (w *World) SetAutoDisableTime(t float64) {
	w.autoDisable.Time = t
}

// Step advances the world by dt in `iterations` substeps of one solver pass
func (w *World) Step(dt float64) {
	w.step(dt, w.iterations, 1)
}

// QuickStep advances the world by dt in one substep of `iterations` passes
func (w *World) QuickStep(dt float64) {
	w.step(dt, 1, w.iterations)
}

func (w *World) step(dt float64, substeps, passes int) {
	if w.destroyed {
		panic("feather: step on a destroyed world")
	}
	if dt <= 0 {
		return
	}

	bodies := make([]*actor.RigidBody, 0, len(w.bodies))
	for _, b := range w.bodies {
		bodies = append(bodies, b.rb)
	}

	var joints []constraint.Joint
	for _, j := range w.joints {
		if j.active() {
			j.c.Prepare(dt, w.erp, w.cfm)
			joints = append(joints, j.c)
		}
	}

	contacts := w.prepareContacts(dt)
	h := dt / float64(max(1, substeps))

	for range max(1, substeps) {
		w.integrate(h, bodies)

		for range max(1, passes) {
			w.solvePosition(h, joints, contacts)
		}

		w.update(h, bodies)
		w.solveVelocity(h, joints, contacts)
		w.tryAutoDisable(h)
	}

	for _, rb := range bodies {
		rb.ClearForces()
	}
	w.contacts = w.contacts[:0]
	w.Events.flush()
}

// prepareContacts wakes bodies touched by an enabled body and resolves the
// compliance of each contact for this step
func (w *World) prepareContacts(dt float64) []*constraint.Contact {
	contacts := make([]*constraint.Contact, 0, len(w.contacts))
	for _, p := range w.contacts {
		c := p.contact
		w.Events.recordContact(p.b1, p.b2)
		if c.BodyA.IsDynamic() && c.BodyB != nil && c.BodyB.AutoDisabled {
			w.wake(c.BodyB)
		}
		if c.BodyB.IsDynamic() && c.BodyA != nil && c.BodyA.AutoDisabled {
			w.wake(c.BodyA)
		}
		c.Surface.Compliance = constraint.Compliance(p.erp, p.cfm, dt)
		c.MaxCorrectingVelocity = w.maxCorrectingVel
		contacts = append(contacts, c)
	}
	return contacts
}

func (w *World) integrate(h float64, bodies []*actor.RigidBody) {
	task(w.engine.workers, bodies, func(body *actor.RigidBody) {
		body.Integrate(h, w.gravity)
	})
}

func (w *World) solvePosition(h float64, joints []constraint.Joint, contacts []*constraint.Contact) {
	for _, j := range joints {
		j.SolvePosition(h)
	}
	for _, c := range contacts {
		c.SolvePosition(h)
	}
}

func (w *World) update(h float64, bodies []*actor.RigidBody) {
	task(w.engine.workers, bodies, func(body *actor.RigidBody) {
		body.Update(h)
	})
}

func (w *World) solveVelocity(h float64, joints []constraint.Joint, contacts []*constraint.Contact) {
	for _, j := range joints {
		j.SolveVelocity(h)
	}
	for _, c := range contacts {
		c.SolveVelocity(h)
	}
}

// tryAutoDisable is too cheap per body to be worth a task
func (w *World) tryAutoDisable(h float64) {
	for _, b := range w.bodies {
		if b.rb.TryAutoDisable(h) {
			w.Events.emitSleep(b)
		}
	}
}

func (w *World) wake(rb *actor.RigidBody) {
	for _, b := range w.bodies {
		if b.rb == rb {
			rb.Wake()
			w.Events.emitWake(b)
			return
		}
	}
}

// addContact converts a buffer slot into a contact constraint for the next step
func (w *World) addContact(c engine.Contact, b1, b2 *Body) {
	var rbA, rbB *actor.RigidBody
	if b1 != nil {
		rbA = b1.rb
	}
	if b2 != nil {
		rbB = b2.rb
	}

	s := c.Surface
	surface := constraint.Surface{
		Friction1:        s.Mu,
		Friction2:        s.Mu,
		CorrectionFactor: w.erp,
	}
	erp, cfm := w.erp, w.cfm
	if s.Mode.Has(engine.ModeMu2) {
		surface.Friction2 = s.Mu2
	}
	if s.Mode.Has(engine.ModeBounce) {
		surface.Restitution = s.Bounce
		surface.BounceVelocity = s.BounceVel
	}
	if s.Mode.Has(engine.ModeSoftERP) {
		erp = s.SoftERP
		surface.CorrectionFactor = s.SoftERP
	}
	if s.Mode.Has(engine.ModeSoftCFM) {
		cfm = s.SoftCFM
	}
	if s.Mode.Has(engine.ModeMotion1) {
		surface.Motion1 = s.Motion1
	}
	if s.Mode.Has(engine.ModeMotion2) {
		surface.Motion2 = s.Motion2
	}
	if s.Mode.Has(engine.ModeFDir1) {
		surface.FrictionDir = c.FrictionDir
	}

	depth := c.Geom.Depth - w.surfaceLayer
	contact := constraint.NewContact(rbA, rbB, c.Geom.Position, c.Geom.Normal, depth, surface)
	w.contacts = append(w.contacts, pendingContact{contact: contact, b1: b1, b2: b2, erp: erp, cfm: cfm})
}

func (w *World) NewBody() engine.Body {
	w.checkAlive()
	w.nextBodyID++
	b := newBody(w, w.nextBodyID)
	w.bodies = append(w.bodies, b)
	return b
}

// DeleteBody releases the geoms of b and turns its joint attachments into
// attachments to the static environment
func (w *World) DeleteBody(body engine.Body) {
	b, ok := body.(*Body)
	if !ok || b.destroyed || b.world != w {
		return
	}

	for _, g := range slices.Clone(b.geoms) {
		b.removeGeom(g)
	}
	for _, j := range w.joints {
		j.detachBody(b)
	}
	w.contacts = slices.DeleteFunc(w.contacts, func(p pendingContact) bool {
		return p.contact.BodyA == b.rb || p.contact.BodyB == b.rb
	})
	if i := slices.Index(w.bodies, b); i >= 0 {
		w.bodies = slices.Delete(w.bodies, i, i+1)
	}
	w.Events.forget(b)
	b.destroyed = true
}

func (w *World) NewJointGroup() engine.JointGroup {
	w.checkAlive()
	g := &JointGroup{world: w}
	w.groups = append(w.groups, g)
	return g
}

func (w *World) NewJoint(kind engine.JointKind, group engine.JointGroup) engine.Joint {
	w.checkAlive()
	j := newJoint(w, kind)
	if g, ok := group.(*JointGroup); ok && g != nil && !g.destroyed {
		j.group = g
		g.joints = append(g.joints, j)
	}
	w.joints = append(w.joints, j)
	return j
}

func (w *World) NewCollider(capacity int) engine.Collider {
	w.checkAlive()
	c := newCollider(w, capacity)
	w.colliders = append(w.colliders, c)
	return c
}

func (w *World) removeJoint(j *Joint) {
	if i := slices.Index(w.joints, j); i >= 0 {
		w.joints = slices.Delete(w.joints, i, i+1)
	}
}

func (w *World) removeGroup(g *JointGroup) {
	if i := slices.Index(w.groups, g); i >= 0 {
		w.groups = slices.Delete(w.groups, i, i+1)
	}
}

func (w *World) removeCollider(c *Collider) {
	if i := slices.Index(w.colliders, c); i >= 0 {
		w.colliders = slices.Delete(w.colliders, i, i+1)
	}
}

func (w *World) checkAlive() {
	if w.destroyed {
		panic("feather: use of a destroyed world")
	}
}

// Destroy releases every joint, body and collider still owned by the world
func (w *World) Destroy() {
	if w.destroyed {
		return
	}
	for _, g := range slices.Clone(w.groups) {
		g.Destroy()
	}
	for _, j := range slices.Clone(w.joints) {
		j.Destroy()
	}
	for _, b := range slices.Clone(w.bodies) {
		w.DeleteBody(b)
	}
	for _, c := range slices.Clone(w.colliders) {
		c.Destroy()
	}
	w.contacts = nil
	w.destroyed = true
}
