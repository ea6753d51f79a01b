package rigidscene

import (
	"math"

	"github.com/akmonengine/rigidscene/engine"
	"github.com/go-gl/mathgl/mgl64"
)

// SingleAxisHingeJoint allows rotation around one axis through the anchor,
// between minAngle and maxAngle.
type SingleAxisHingeJoint struct {
	jointBase

	anchor              mgl64.Vec3
	axis                mgl64.Vec3
	minAngle            float64
	maxAngle            float64
	stopBounce          float64
	stopErrorCorrection float64
}

func NewSingleAxisHingeJoint() *SingleAxisHingeJoint {
	j := &SingleAxisHingeJoint{
		jointBase: newJointBase("SingleAxisHingeJoint", engine.JointHinge,
			OutputAngle, OutputAngleRate, OutputBody1AnchorPoint, OutputBody2AnchorPoint),
		minAngle:            -math.Pi,
		maxAngle:            math.Pi,
		stopErrorCorrection: 0.8,
	}
	j.configure = j.push
	return j
}

func (j *SingleAxisHingeJoint) push(joint engine.Joint) {
	joint.SetAnchor(j.anchor)
	joint.SetAxis(1, j.axis)
	joint.SetParam(engine.ParamLoStop, 1, j.minAngle)
	joint.SetParam(engine.ParamHiStop, 1, j.maxAngle)
	joint.SetParam(engine.ParamBounce, 1, j.stopBounce)
	joint.SetParam(engine.ParamStopERP, 1, j.stopErrorCorrection)
}

func (j *SingleAxisHingeJoint) AnchorPoint() mgl64.Vec3 {
	return j.anchor
}

func (j *SingleAxisHingeJoint) SetAnchorPoint(p mgl64.Vec3) {
	j.anchor = p
	if j.live() {
		j.joint.SetAnchor(p)
	}
	j.changed(JointAnchorPoint)
}

func (j *SingleAxisHingeJoint) Axis() mgl64.Vec3 {
	return j.axis
}

func (j *SingleAxisHingeJoint) SetAxis(axis mgl64.Vec3) {
	j.axis = axis
	if j.live() {
		j.joint.SetAxis(1, axis)
	}
	j.changed(JointAxis)
}

func (j *SingleAxisHingeJoint) MinAngle() float64 {
	return j.minAngle
}

// SetMinAngle rejects angles outside [-π, π].
func (j *SingleAxisHingeJoint) SetMinAngle(angle float64) error {
	if err := checkAngle(j.name, "minAngle", angle); err != nil {
		return err
	}
	j.setParam(&j.minAngle, angle, JointMinAngle, engine.ParamLoStop, 1)
	return nil
}

func (j *SingleAxisHingeJoint) MaxAngle() float64 {
	return j.maxAngle
}

func (j *SingleAxisHingeJoint) SetMaxAngle(angle float64) error {
	if err := checkAngle(j.name, "maxAngle", angle); err != nil {
		return err
	}
	j.setParam(&j.maxAngle, angle, JointMaxAngle, engine.ParamHiStop, 1)
	return nil
}

func (j *SingleAxisHingeJoint) StopBounce() float64 {
	return j.stopBounce
}

func (j *SingleAxisHingeJoint) SetStopBounce(bounce float64) error {
	if err := checkUnit(j.name, "stopBounce", bounce); err != nil {
		return err
	}
	j.setParam(&j.stopBounce, bounce, JointStopBounce, engine.ParamBounce, 1)
	return nil
}

func (j *SingleAxisHingeJoint) StopErrorCorrection() float64 {
	return j.stopErrorCorrection
}

func (j *SingleAxisHingeJoint) SetStopErrorCorrection(erp float64) error {
	if err := checkUnit(j.name, "stopErrorCorrection", erp); err != nil {
		return err
	}
	j.setParam(&j.stopErrorCorrection, erp, JointStopErrorCorrection, engine.ParamStopERP, 1)
	return nil
}

func (j *SingleAxisHingeJoint) Angle() float64 {
	return j.Output(OutputAngle)
}

func (j *SingleAxisHingeJoint) AngleRate() float64 {
	return j.Output(OutputAngleRate)
}

func (j *SingleAxisHingeJoint) Body1AnchorPoint() mgl64.Vec3 {
	return j.OutputVector(OutputBody1AnchorPoint)
}

func (j *SingleAxisHingeJoint) Body2AnchorPoint() mgl64.Vec3 {
	return j.OutputVector(OutputBody2AnchorPoint)
}
