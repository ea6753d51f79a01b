package rigidscene

import (
	"slices"

	"github.com/akmonengine/rigidscene/engine"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/go-logr/logr"
)

// JointField identifies a field of a joint node, inputs and outputs alike.
type JointField int

const (
	JointBody1 JointField = iota
	JointBody2
	JointMustOutput
	JointAnchorPoint
	JointAxis
	JointAxis1
	JointAxis2
	JointAxis3
	JointMinAngle
	JointMaxAngle
	JointMinSeparation
	JointMaxSeparation
	JointStopBounce
	JointStopErrorCorrection
	JointStopConstantForceMix
	JointStop1Bounce
	JointStop2Bounce
	JointStop3Bounce
	JointStop1ErrorCorrection
	JointStop2ErrorCorrection
	JointStop3ErrorCorrection
	JointSuspensionForce
	JointSuspensionErrorCorrection
	JointMaxTorque1
	JointMaxTorque2
	JointDesiredAngularVelocity1
	JointDesiredAngularVelocity2
	JointMaxForce
	JointDesiredVelocity
	JointAutoCalc
	JointEnabledAxes
	JointAxis1Angle
	JointAxis2Angle
	JointAxis3Angle
	JointAxis1Torque
	JointAxis2Torque
	JointAxis3Torque

	OutputBody1AnchorPoint
	OutputBody2AnchorPoint
	OutputBody1Axis
	OutputBody2Axis
	OutputAngle
	OutputAngleRate
	OutputHinge1Angle
	OutputHinge1AngleRate
	OutputHinge2Angle
	OutputHinge2AngleRate
	OutputSeparation
	OutputSeparationRate
	OutputMotor1Angle
	OutputMotor1AngleRate
	OutputMotor2Angle
	OutputMotor2AngleRate
	OutputMotor3Angle
	OutputMotor3AngleRate
)

// Special names accepted by SetMustOutput.
const (
	OutputAll  = "ALL"
	OutputNone = "NONE"
)

var outputNames = map[string]JointField{
	"body1AnchorPoint": OutputBody1AnchorPoint,
	"body2AnchorPoint": OutputBody2AnchorPoint,
	"body1Axis":        OutputBody1Axis,
	"body2Axis":        OutputBody2Axis,
	"angle":            OutputAngle,
	"angleRate":        OutputAngleRate,
	"hinge1Angle":      OutputHinge1Angle,
	"hinge1AngleRate":  OutputHinge1AngleRate,
	"hinge2Angle":      OutputHinge2Angle,
	"hinge2AngleRate":  OutputHinge2AngleRate,
	"separation":       OutputSeparation,
	"separationRate":   OutputSeparationRate,
	"motor1Angle":      OutputMotor1Angle,
	"motor1AngleRate":  OutputMotor1AngleRate,
	"motor2Angle":      OutputMotor2Angle,
	"motor2AngleRate":  OutputMotor2AngleRate,
	"motor3Angle":      OutputMotor3Angle,
	"motor3AngleRate":  OutputMotor3AngleRate,
}

// Joint is the capability shared by every joint node.
type Joint interface {
	EngineJoint() engine.Joint
	Body1() *RigidBody
	Body2() *RigidBody
	SetWorld(w engine.World, group engine.JointGroup)
	Reattach()
	SetupFinished()
	SetLogger(logger logr.Logger)
	UpdateRequestedOutputs()
	NumOutputs() int
	Destroy()
}

// jointBase holds the attachment, the output subscription and the engine
// handle. Each kind supplies configure, which pushes its parameters in the
// order the engine expects.
type jointBase struct {
	node[JointField]

	name         string
	kind         engine.JointKind
	pairRequired bool
	offered      []JointField
	configure    func(engine.Joint)

	world engine.World
	group engine.JointGroup
	joint engine.Joint

	body1, body2 *RigidBody

	mustOutput []string
	requested  []JointField
	scalars    map[JointField]float64
	vectors    map[JointField]mgl64.Vec3
}

func newJointBase(name string, kind engine.JointKind, offered ...JointField) jointBase {
	return jointBase{
		node:    newNode[JointField](),
		name:    name,
		kind:    kind,
		offered: offered,
		scalars: make(map[JointField]float64),
		vectors: make(map[JointField]mgl64.Vec3),
	}
}

// EngineJoint returns the engine joint, nil while detached.
func (j *jointBase) EngineJoint() engine.Joint {
	return j.joint
}

func (j *jointBase) live() bool {
	return j.ready && j.joint != nil
}

// SetWorld recreates the engine joint in w, attaches it and pushes every
// parameter. A nil world destroys it.
func (j *jointBase) SetWorld(w engine.World, group engine.JointGroup) {
	if j.joint != nil {
		j.joint.Destroy()
		j.joint = nil
	}
	j.world, j.group = w, group
	if w == nil {
		return
	}

	j.joint = w.NewJoint(j.kind, group)
	j.attach()
	if j.configure != nil {
		j.configure(j.joint)
	}
}

// Reattach binds the engine joint to the current engine bodies again, after
// they were recreated.
func (j *jointBase) Reattach() {
	if j.joint != nil {
		j.attach()
	}
}

func (j *jointBase) attach() {
	if j.pairRequired && (j.body1 == nil) != (j.body2 == nil) {
		j.logger.Info("joint needs two bodies or none, attachment skipped", "joint", j.name)
		return
	}
	j.joint.Attach(j.body1.EngineBody(), j.body2.EngineBody())
}

func (j *jointBase) SetupFinished() {
	j.finishSetup()
}

func (j *jointBase) Body1() *RigidBody {
	return j.body1
}

// SetBody1 resolves n to a rigid body, nil clearing the side.
func (j *jointBase) SetBody1(n any) error {
	body, err := Resolve[*RigidBody](n)
	if err != nil {
		return fieldError(j.name, "body1", n, err)
	}
	j.body1 = body
	if j.live() {
		j.attach()
	}
	j.changed(JointBody1)
	return nil
}

func (j *jointBase) Body2() *RigidBody {
	return j.body2
}

func (j *jointBase) SetBody2(n any) error {
	body, err := Resolve[*RigidBody](n)
	if err != nil {
		return fieldError(j.name, "body2", n, err)
	}
	j.body2 = body
	if j.live() {
		j.attach()
	}
	j.changed(JointBody2)
	return nil
}

func (j *jointBase) MustOutput() []string {
	return j.mustOutput
}

// SetMustOutput selects the outputs refreshed after every step. ALL selects
// every output of the kind and NONE clears the selection.
func (j *jointBase) SetMustOutput(names []string) error {
	var requested []JointField
	for _, name := range names {
		switch name {
		case OutputAll:
			for _, f := range j.offered {
				if !slices.Contains(requested, f) {
					requested = append(requested, f)
				}
			}
		case OutputNone:
			requested = requested[:0]
		default:
			f, ok := outputNames[name]
			if !ok {
				return fieldError(j.name, "mustOutput", name, ErrUnknownOutput)
			}
			if !slices.Contains(j.offered, f) {
				return fieldError(j.name, "mustOutput", name, ErrUnsupportedOutput)
			}
			if !slices.Contains(requested, f) {
				requested = append(requested, f)
			}
		}
	}

	j.mustOutput = slices.Clone(names)
	j.requested = requested
	j.changed(JointMustOutput)
	return nil
}

// NumOutputs returns how many outputs are refreshed every step.
func (j *jointBase) NumOutputs() int {
	return len(j.requested)
}

// UpdateRequestedOutputs reads each requested output from the engine and
// notifies it.
func (j *jointBase) UpdateRequestedOutputs() {
	if j.joint == nil {
		return
	}
	for _, f := range j.requested {
		j.readOutput(f)
		j.changed(f)
	}
}

func (j *jointBase) readOutput(f JointField) {
	switch f {
	case OutputBody1AnchorPoint:
		j.vectors[f] = j.joint.Anchor()
	case OutputBody2AnchorPoint:
		j.vectors[f] = j.joint.Anchor2()
	case OutputBody1Axis:
		j.vectors[f] = j.joint.Axis(1)
	case OutputBody2Axis:
		j.vectors[f] = j.joint.Axis(2)
	case OutputAngle, OutputHinge1Angle, OutputMotor1Angle:
		j.scalars[f] = j.joint.Angle(1)
	case OutputAngleRate, OutputHinge1AngleRate, OutputMotor1AngleRate:
		j.scalars[f] = j.joint.AngleRate(1)
	case OutputHinge2Angle, OutputMotor2Angle:
		j.scalars[f] = j.joint.Angle(2)
	case OutputHinge2AngleRate, OutputMotor2AngleRate:
		j.scalars[f] = j.joint.AngleRate(2)
	case OutputMotor3Angle:
		j.scalars[f] = j.joint.Angle(3)
	case OutputMotor3AngleRate:
		j.scalars[f] = j.joint.AngleRate(3)
	case OutputSeparation:
		j.scalars[f] = j.joint.Position()
	case OutputSeparationRate:
		j.scalars[f] = j.joint.PositionRate()
	}
}

// Output returns the last value read for a scalar output.
func (j *jointBase) Output(f JointField) float64 {
	return j.scalars[f]
}

// OutputVector returns the last value read for a vector output.
func (j *jointBase) OutputVector(f JointField) mgl64.Vec3 {
	return j.vectors[f]
}

// Destroy releases the engine joint. Further calls do nothing.
func (j *jointBase) Destroy() {
	j.SetWorld(nil, nil)
}

// setParam stores v through field and pushes it when the joint is live.
func (j *jointBase) setParam(dst *float64, v float64, field JointField, param engine.Param, axis int) {
	*dst = v
	if j.live() {
		j.joint.SetParam(param, axis, v)
	}
	j.changed(field)
}
