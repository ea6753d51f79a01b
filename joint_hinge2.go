package rigidscene

import (
	"math"

	"github.com/akmonengine/rigidscene/engine"
	"github.com/go-gl/mathgl/mgl64"
)

// DoubleAxisHingeJoint has a limited hinge around axis1 and a free, motorised
// one around axis2, with a suspension along axis1. It attaches two bodies or
// none.
type DoubleAxisHingeJoint struct {
	jointBase

	anchor                    mgl64.Vec3
	axis1, axis2              mgl64.Vec3
	minAngle1, maxAngle1      float64
	maxTorque1, maxTorque2    float64
	desiredVelocity1          float64
	desiredVelocity2          float64
	stopBounce1               float64
	stopErrorCorrection1      float64
	stopConstantForceMix1     float64
	suspensionErrorCorrection float64
	suspensionForce           float64
}

func NewDoubleAxisHingeJoint() *DoubleAxisHingeJoint {
	j := &DoubleAxisHingeJoint{
		jointBase: newJointBase("DoubleAxisHingeJoint", engine.JointHinge2,
			OutputBody1AnchorPoint, OutputBody2AnchorPoint, OutputBody1Axis, OutputBody2Axis,
			OutputHinge1Angle, OutputHinge1AngleRate, OutputHinge2Angle, OutputHinge2AngleRate),
		minAngle1:                 -math.Pi,
		maxAngle1:                 math.Pi,
		stopErrorCorrection1:      0.8,
		stopConstantForceMix1:     0.001,
		suspensionErrorCorrection: 0.8,
	}
	j.pairRequired = true
	j.configure = j.push
	return j
}

func (j *DoubleAxisHingeJoint) push(joint engine.Joint) {
	joint.SetAnchor(j.anchor)
	joint.SetAxis(1, j.axis1)
	joint.SetAxis(2, j.axis2)
	joint.SetParam(engine.ParamLoStop, 1, j.minAngle1)
	joint.SetParam(engine.ParamHiStop, 1, j.maxAngle1)
	joint.SetParam(engine.ParamFMax, 1, j.maxTorque1)
	joint.SetParam(engine.ParamFMax, 2, j.maxTorque2)
	joint.SetParam(engine.ParamVel, 1, j.desiredVelocity1)
	joint.SetParam(engine.ParamVel, 2, j.desiredVelocity2)
	joint.SetParam(engine.ParamBounce, 1, j.stopBounce1)
	joint.SetParam(engine.ParamStopERP, 1, j.stopErrorCorrection1)
	joint.SetParam(engine.ParamStopCFM, 1, j.stopConstantForceMix1)
	joint.SetParam(engine.ParamSuspensionERP, 1, j.suspensionErrorCorrection)
	joint.SetParam(engine.ParamSuspensionCFM, 1, j.suspensionForce)
}

func (j *DoubleAxisHingeJoint) AnchorPoint() mgl64.Vec3 {
	return j.anchor
}

func (j *DoubleAxisHingeJoint) SetAnchorPoint(p mgl64.Vec3) {
	j.anchor = p
	if j.live() {
		j.joint.SetAnchor(p)
	}
	j.changed(JointAnchorPoint)
}

func (j *DoubleAxisHingeJoint) Axis1() mgl64.Vec3 {
	return j.axis1
}

func (j *DoubleAxisHingeJoint) SetAxis1(axis mgl64.Vec3) {
	j.axis1 = axis
	if j.live() {
		j.joint.SetAxis(1, axis)
	}
	j.changed(JointAxis1)
}

func (j *DoubleAxisHingeJoint) Axis2() mgl64.Vec3 {
	return j.axis2
}

func (j *DoubleAxisHingeJoint) SetAxis2(axis mgl64.Vec3) {
	j.axis2 = axis
	if j.live() {
		j.joint.SetAxis(2, axis)
	}
	j.changed(JointAxis2)
}

func (j *DoubleAxisHingeJoint) MinAngle1() float64 {
	return j.minAngle1
}

func (j *DoubleAxisHingeJoint) SetMinAngle1(angle float64) error {
	if err := checkAngle(j.name, "minAngle1", angle); err != nil {
		return err
	}
	j.setParam(&j.minAngle1, angle, JointMinAngle, engine.ParamLoStop, 1)
	return nil
}

func (j *DoubleAxisHingeJoint) MaxAngle1() float64 {
	return j.maxAngle1
}

func (j *DoubleAxisHingeJoint) SetMaxAngle1(angle float64) error {
	if err := checkAngle(j.name, "maxAngle1", angle); err != nil {
		return err
	}
	j.setParam(&j.maxAngle1, angle, JointMaxAngle, engine.ParamHiStop, 1)
	return nil
}

func (j *DoubleAxisHingeJoint) MaxTorque1() float64 {
	return j.maxTorque1
}

func (j *DoubleAxisHingeJoint) SetMaxTorque1(torque float64) error {
	if err := checkNonNegative(j.name, "maxTorque1", torque); err != nil {
		return err
	}
	j.setParam(&j.maxTorque1, torque, JointMaxTorque1, engine.ParamFMax, 1)
	return nil
}

func (j *DoubleAxisHingeJoint) MaxTorque2() float64 {
	return j.maxTorque2
}

func (j *DoubleAxisHingeJoint) SetMaxTorque2(torque float64) error {
	if err := checkNonNegative(j.name, "maxTorque2", torque); err != nil {
		return err
	}
	j.setParam(&j.maxTorque2, torque, JointMaxTorque2, engine.ParamFMax, 2)
	return nil
}

func (j *DoubleAxisHingeJoint) DesiredAngularVelocity1() float64 {
	return j.desiredVelocity1
}

func (j *DoubleAxisHingeJoint) SetDesiredAngularVelocity1(v float64) {
	j.setParam(&j.desiredVelocity1, v, JointDesiredAngularVelocity1, engine.ParamVel, 1)
}

func (j *DoubleAxisHingeJoint) DesiredAngularVelocity2() float64 {
	return j.desiredVelocity2
}

func (j *DoubleAxisHingeJoint) SetDesiredAngularVelocity2(v float64) {
	j.setParam(&j.desiredVelocity2, v, JointDesiredAngularVelocity2, engine.ParamVel, 2)
}

func (j *DoubleAxisHingeJoint) StopBounce1() float64 {
	return j.stopBounce1
}

func (j *DoubleAxisHingeJoint) SetStopBounce1(bounce float64) error {
	if err := checkUnit(j.name, "stopBounce1", bounce); err != nil {
		return err
	}
	j.setParam(&j.stopBounce1, bounce, JointStop1Bounce, engine.ParamBounce, 1)
	return nil
}

func (j *DoubleAxisHingeJoint) StopErrorCorrection1() float64 {
	return j.stopErrorCorrection1
}

func (j *DoubleAxisHingeJoint) SetStopErrorCorrection1(erp float64) error {
	if err := checkUnit(j.name, "stopErrorCorrection1", erp); err != nil {
		return err
	}
	j.setParam(&j.stopErrorCorrection1, erp, JointStop1ErrorCorrection, engine.ParamStopERP, 1)
	return nil
}

func (j *DoubleAxisHingeJoint) StopConstantForceMix1() float64 {
	return j.stopConstantForceMix1
}

func (j *DoubleAxisHingeJoint) SetStopConstantForceMix1(cfm float64) error {
	if err := checkNonNegative(j.name, "stopConstantForceMix1", cfm); err != nil {
		return err
	}
	j.setParam(&j.stopConstantForceMix1, cfm, JointStopConstantForceMix, engine.ParamStopCFM, 1)
	return nil
}

func (j *DoubleAxisHingeJoint) SuspensionErrorCorrection() float64 {
	return j.suspensionErrorCorrection
}

func (j *DoubleAxisHingeJoint) SetSuspensionErrorCorrection(erp float64) error {
	if err := checkUnit(j.name, "suspensionErrorCorrection", erp); err != nil {
		return err
	}
	j.setParam(&j.suspensionErrorCorrection, erp, JointSuspensionErrorCorrection, engine.ParamSuspensionERP, 1)
	return nil
}

// SuspensionForce is the constant force mix of the suspension.
func (j *DoubleAxisHingeJoint) SuspensionForce() float64 {
	return j.suspensionForce
}

func (j *DoubleAxisHingeJoint) SetSuspensionForce(cfm float64) error {
	if err := checkNonNegative(j.name, "suspensionForce", cfm); err != nil {
		return err
	}
	j.setParam(&j.suspensionForce, cfm, JointSuspensionForce, engine.ParamSuspensionCFM, 1)
	return nil
}

func (j *DoubleAxisHingeJoint) Hinge1Angle() float64 {
	return j.Output(OutputHinge1Angle)
}

func (j *DoubleAxisHingeJoint) Hinge1AngleRate() float64 {
	return j.Output(OutputHinge1AngleRate)
}

func (j *DoubleAxisHingeJoint) Hinge2Angle() float64 {
	return j.Output(OutputHinge2Angle)
}

func (j *DoubleAxisHingeJoint) Hinge2AngleRate() float64 {
	return j.Output(OutputHinge2AngleRate)
}

func (j *DoubleAxisHingeJoint) Body1Axis() mgl64.Vec3 {
	return j.OutputVector(OutputBody1Axis)
}

func (j *DoubleAxisHingeJoint) Body2Axis() mgl64.Vec3 {
	return j.OutputVector(OutputBody2Axis)
}

func (j *DoubleAxisHingeJoint) Body1AnchorPoint() mgl64.Vec3 {
	return j.OutputVector(OutputBody1AnchorPoint)
}

func (j *DoubleAxisHingeJoint) Body2AnchorPoint() mgl64.Vec3 {
	return j.OutputVector(OutputBody2AnchorPoint)
}
