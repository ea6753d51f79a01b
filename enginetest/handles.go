package enginetest

import (
	"slices"

	"github.com/akmonengine/rigidscene/engine"
	"github.com/go-gl/mathgl/mgl64"
)

// World wraps an engine.World.
type World struct {
	handle
	r     *Recorder
	inner engine.World
}

func (w *World) SetGravity(g mgl64.Vec3)                  { w.inner.SetGravity(g) }
func (w *World) Gravity() mgl64.Vec3                      { return w.inner.Gravity() }
func (w *World) SetIterations(n int)                      { w.inner.SetIterations(n) }
func (w *World) SetERP(erp float64)                       { w.inner.SetERP(erp) }
func (w *World) SetCFM(cfm float64)                       { w.inner.SetCFM(cfm) }
func (w *World) SetMaxCorrectingVelocity(v float64)       { w.inner.SetMaxCorrectingVelocity(v) }
func (w *World) SetContactSurfaceLayer(depth float64)     { w.inner.SetContactSurfaceLayer(depth) }
func (w *World) SetAutoDisableFlag(enabled bool)          { w.inner.SetAutoDisableFlag(enabled) }
func (w *World) SetAutoDisableLinearThreshold(v float64)  { w.inner.SetAutoDisableLinearThreshold(v) }
func (w *World) SetAutoDisableAngularThreshold(v float64) { w.inner.SetAutoDisableAngularThreshold(v) }
func (w *World) SetAutoDisableTime(t float64)             { w.inner.SetAutoDisableTime(t) }
func (w *World) Step(dt float64)                          { w.inner.Step(dt) }
func (w *World) QuickStep(dt float64)                     { w.inner.QuickStep(dt) }

func (w *World) NewBody() engine.Body {
	inner := w.inner.NewBody()
	b := &Body{handle: w.r.track(KindBody), r: w.r, world: w, inner: inner}
	w.r.bodies[inner] = b
	return b
}

// DeleteBody counts as the destruction of b.
func (w *World) DeleteBody(b engine.Body) {
	if wb, ok := b.(*Body); ok && wb != nil {
		w.r.free(&wb.handle)
	}
	w.inner.DeleteBody(unwrapBody(b))
}

func (w *World) NewJointGroup() engine.JointGroup {
	return &JointGroup{handle: w.r.track(KindJointGroup), r: w.r, inner: w.inner.NewJointGroup()}
}

func (w *World) NewJoint(kind engine.JointKind, group engine.JointGroup) engine.Joint {
	j := &Joint{handle: w.r.track(KindJoint), r: w.r, inner: w.inner.NewJoint(kind, unwrapGroup(group))}
	if g, ok := group.(*JointGroup); ok && g != nil {
		j.group = g
		g.joints = append(g.joints, j)
	}
	return j
}

func (w *World) NewCollider(capacity int) engine.Collider {
	c := &Collider{handle: w.r.track(KindCollider), r: w.r, inner: w.inner.NewCollider(capacity)}
	c.buffer = &ContactBuffer{r: w.r}
	return c
}

func (w *World) Destroy() {
	w.r.free(&w.handle)
	w.inner.Destroy()
}

// Body wraps an engine.Body.
type Body struct {
	handle
	r     *Recorder
	world *World
	inner engine.Body
}

func (b *Body) SetPosition(p mgl64.Vec3)                    { b.inner.SetPosition(p) }
func (b *Body) Position() mgl64.Vec3                        { return b.inner.Position() }
func (b *Body) SetQuaternion(q mgl64.Quat)                  { b.inner.SetQuaternion(q) }
func (b *Body) Quaternion() mgl64.Quat                      { return b.inner.Quaternion() }
func (b *Body) SetAxisAngle(axis mgl64.Vec3, angle float64) { b.inner.SetAxisAngle(axis, angle) }
func (b *Body) AxisAngle() (mgl64.Vec3, float64)            { return b.inner.AxisAngle() }
func (b *Body) SetLinearVel(v mgl64.Vec3)                   { b.inner.SetLinearVel(v) }
func (b *Body) LinearVel() mgl64.Vec3                       { return b.inner.LinearVel() }
func (b *Body) SetAngularVel(w mgl64.Vec3)                  { b.inner.SetAngularVel(w) }
func (b *Body) AngularVel() mgl64.Vec3                      { return b.inner.AngularVel() }
func (b *Body) SetMass(m engine.Mass)                       { b.inner.SetMass(m) }
func (b *Body) Mass() engine.Mass                           { return b.inner.Mass() }
func (b *Body) SetFiniteRotationMode(enabled bool)          { b.inner.SetFiniteRotationMode(enabled) }
func (b *Body) SetFiniteRotationAxis(axis mgl64.Vec3)       { b.inner.SetFiniteRotationAxis(axis) }
func (b *Body) SetGravityMode(enabled bool)                 { b.inner.SetGravityMode(enabled) }
func (b *Body) SetAutoDisableFlag(enabled bool)             { b.inner.SetAutoDisableFlag(enabled) }
func (b *Body) SetAutoDisableLinearThreshold(v float64)     { b.inner.SetAutoDisableLinearThreshold(v) }
func (b *Body) SetAutoDisableAngularThreshold(v float64)    { b.inner.SetAutoDisableAngularThreshold(v) }
func (b *Body) SetAutoDisableTime(t float64)                { b.inner.SetAutoDisableTime(t) }
func (b *Body) AddForce(f mgl64.Vec3)                       { b.inner.AddForce(f) }
func (b *Body) AddTorque(t mgl64.Vec3)                      { b.inner.AddTorque(t) }
func (b *Body) SetForce(f mgl64.Vec3)                       { b.inner.SetForce(f) }
func (b *Body) SetTorque(t mgl64.Vec3)                      { b.inner.SetTorque(t) }
func (b *Body) AddGeom(g engine.Geom)                       { b.inner.AddGeom(unwrapGeom(g)) }
func (b *Body) RemoveGeom(g engine.Geom)                    { b.inner.RemoveGeom(unwrapGeom(g)) }
func (b *Body) Enable()                                     { b.inner.Enable() }
func (b *Body) Disable()                                    { b.inner.Disable() }
func (b *Body) IsEnabled() bool                             { return b.inner.IsEnabled() }

func (b *Body) Destroy() {
	b.world.DeleteBody(b)
}

// Geom wraps an engine.Geom.
type Geom struct {
	handle
	r     *Recorder
	inner engine.Geom
}

func (g *Geom) Shape() engine.Shape        { return g.inner.Shape() }
func (g *Geom) Body() engine.Body          { return g.r.body(g.inner.Body()) }
func (g *Geom) SetPosition(p mgl64.Vec3)   { g.inner.SetPosition(p) }
func (g *Geom) Position() mgl64.Vec3       { return g.inner.Position() }
func (g *Geom) SetQuaternion(q mgl64.Quat) { g.inner.SetQuaternion(q) }
func (g *Geom) Quaternion() mgl64.Quat     { return g.inner.Quaternion() }
func (g *Geom) Enable()                    { g.inner.Enable() }
func (g *Geom) Disable()                   { g.inner.Disable() }
func (g *Geom) IsEnabled() bool            { return g.inner.IsEnabled() }
func (g *Geom) Space() engine.Space        { return g.r.space(g.inner.Space()) }

func (g *Geom) Destroy() {
	g.r.free(&g.handle)
	g.inner.Destroy()
}

// Space wraps an engine.Space. It mirrors the cleanup flag so that geoms and
// child spaces destroyed along with it are counted.
type Space struct {
	handle
	r        *Recorder
	inner    engine.Space
	parent   *Space
	children []*Space
	cleanup  bool
}

func (s *Space) Add(g engine.Geom)    { s.inner.Add(unwrapGeom(g)) }
func (s *Space) Remove(g engine.Geom) { s.inner.Remove(unwrapGeom(g)) }

func (s *Space) Geoms() []engine.Geom {
	inner := s.inner.Geoms()
	geoms := make([]engine.Geom, 0, len(inner))
	for _, g := range inner {
		if w := s.r.geom(g); w != nil {
			geoms = append(geoms, w)
		}
	}
	return geoms
}

func (s *Space) Parent() engine.Space {
	return s.r.space(s.inner.Parent())
}

func (s *Space) SetCleanup(enabled bool) {
	s.cleanup = enabled
	s.inner.SetCleanup(enabled)
}

func (s *Space) Destroy() {
	if !s.r.free(&s.handle) {
		s.inner.Destroy()
		return
	}
	if s.cleanup {
		for _, g := range s.inner.Geoms() {
			if w, ok := s.r.geoms[g]; ok && !w.freed {
				s.r.free(&w.handle)
			}
		}
		for _, child := range s.children {
			if !child.freed {
				child.markDestroyed()
			}
		}
	}
	if s.parent != nil {
		s.parent.children = slices.DeleteFunc(s.parent.children, func(c *Space) bool { return c == s })
	}
	s.inner.Destroy()
}

// markDestroyed counts a space destroyed by its parent's cleanup
func (s *Space) markDestroyed() {
	s.r.free(&s.handle)
	if !s.cleanup {
		return
	}
	for _, g := range s.inner.Geoms() {
		if w, ok := s.r.geoms[g]; ok && !w.freed {
			s.r.free(&w.handle)
		}
	}
	for _, child := range s.children {
		if !child.freed {
			child.markDestroyed()
		}
	}
}

// Collider wraps an engine.Collider. Its buffer wrapper is stable across
// calls to Contacts.
type Collider struct {
	handle
	r      *Recorder
	inner  engine.Collider
	buffer *ContactBuffer
}

func (c *Collider) SetSurface(s engine.Surface)      { c.inner.SetSurface(s) }
func (c *Collider) Surface() engine.Surface          { return c.inner.Surface() }
func (c *Collider) Reset()                           { c.inner.Reset() }
func (c *Collider) Collide(space engine.Space)       { c.inner.Collide(unwrapSpace(space)) }
func (c *Collider) CollideBetween(a, b engine.Space) { c.inner.CollideBetween(unwrapSpace(a), unwrapSpace(b)) }
func (c *Collider) Apply()                           { c.inner.Apply() }

func (c *Collider) Contacts() engine.ContactBuffer {
	c.buffer.inner = c.inner.Contacts()
	return c.buffer
}

func (c *Collider) Destroy() {
	c.r.free(&c.handle)
	c.inner.Destroy()
}

// ContactBuffer wraps an engine.ContactBuffer, translating the geoms and
// bodies of each slot.
type ContactBuffer struct {
	r     *Recorder
	inner engine.ContactBuffer
}

func (cb *ContactBuffer) Len() int                { return cb.inner.Len() }
func (cb *ContactBuffer) Capacity() int           { return cb.inner.Capacity() }
func (cb *ContactBuffer) Generation() uint64      { return cb.inner.Generation() }
func (cb *ContactBuffer) Ignore(i int)            { cb.inner.Ignore(i) }
func (cb *ContactBuffer) IsIgnored(i int) bool    { return cb.inner.IsIgnored(i) }
func (cb *ContactBuffer) Body1(i int) engine.Body { return cb.r.body(cb.inner.Body1(i)) }
func (cb *ContactBuffer) Body2(i int) engine.Body { return cb.r.body(cb.inner.Body2(i)) }

func (cb *ContactBuffer) Contact(i int) engine.Contact {
	c := cb.inner.Contact(i)
	c.Geom.Geom1 = cb.r.geom(c.Geom.Geom1)
	c.Geom.Geom2 = cb.r.geom(c.Geom.Geom2)
	return c
}

func (cb *ContactBuffer) SetContact(i int, c engine.Contact) {
	c.Geom.Geom1 = unwrapGeom(c.Geom.Geom1)
	c.Geom.Geom2 = unwrapGeom(c.Geom.Geom2)
	cb.inner.SetContact(i, c)
}

// JointGroup wraps an engine.JointGroup. Emptying it counts the destruction
// of every joint still in it.
type JointGroup struct {
	handle
	r      *Recorder
	inner  engine.JointGroup
	joints []*Joint
}

func (g *JointGroup) Empty() {
	for _, j := range g.joints {
		g.r.free(&j.handle)
		j.group = nil
	}
	g.joints = nil
	g.inner.Empty()
}

func (g *JointGroup) Destroy() {
	if g.r.free(&g.handle) {
		for _, j := range g.joints {
			g.r.free(&j.handle)
			j.group = nil
		}
		g.joints = nil
	}
	g.inner.Destroy()
}

// Joint wraps an engine.Joint.
type Joint struct {
	handle
	r     *Recorder
	inner engine.Joint
	group *JointGroup
}

func (j *Joint) Kind() engine.JointKind                       { return j.inner.Kind() }
func (j *Joint) Attach(b1, b2 engine.Body)                    { j.inner.Attach(unwrapBody(b1), unwrapBody(b2)) }
func (j *Joint) Body(n int) engine.Body                       { return j.r.body(j.inner.Body(n)) }
func (j *Joint) SetAnchor(p mgl64.Vec3)                       { j.inner.SetAnchor(p) }
func (j *Joint) Anchor() mgl64.Vec3                           { return j.inner.Anchor() }
func (j *Joint) Anchor2() mgl64.Vec3                          { return j.inner.Anchor2() }
func (j *Joint) SetAxis(n int, axis mgl64.Vec3)               { j.inner.SetAxis(n, axis) }
func (j *Joint) Axis(n int) mgl64.Vec3                        { return j.inner.Axis(n) }
func (j *Joint) SetParam(p engine.Param, axis int, v float64) { j.inner.SetParam(p, axis, v) }
func (j *Joint) Param(p engine.Param, axis int) float64       { return j.inner.Param(p, axis) }
func (j *Joint) Angle(n int) float64                          { return j.inner.Angle(n) }
func (j *Joint) AngleRate(n int) float64                      { return j.inner.AngleRate(n) }
func (j *Joint) Position() float64                            { return j.inner.Position() }
func (j *Joint) PositionRate() float64                        { return j.inner.PositionRate() }
func (j *Joint) SetNumAxes(n int)                             { j.inner.SetNumAxes(n) }
func (j *Joint) NumAxes() int                                 { return j.inner.NumAxes() }
func (j *Joint) SetMode(m engine.MotorMode)                   { j.inner.SetMode(m) }
func (j *Joint) SetAngle(n int, angle float64)                { j.inner.SetAngle(n, angle) }
func (j *Joint) SetTorque(n int, torque float64)              { j.inner.SetTorque(n, torque) }

func (j *Joint) Destroy() {
	j.r.free(&j.handle)
	if j.group != nil {
		j.group.joints = slices.DeleteFunc(j.group.joints, func(o *Joint) bool { return o == j })
		j.group = nil
	}
	j.inner.Destroy()
}
