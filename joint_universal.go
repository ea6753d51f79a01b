package rigidscene

import (
	"github.com/akmonengine/rigidscene/engine"
	"github.com/go-gl/mathgl/mgl64"
)

type UniversalJoint struct {
	jointBase

	anchor               mgl64.Vec3
	axis1, axis2         mgl64.Vec3
	stop1Bounce          float64
	stop2Bounce          float64
	stop1ErrorCorrection float64
	stop2ErrorCorrection float64
}

func NewUniversalJoint() *UniversalJoint {
	j := &UniversalJoint{
		jointBase: newJointBase("UniversalJoint", engine.JointUniversal,
			OutputBody1AnchorPoint, OutputBody2AnchorPoint, OutputBody1Axis, OutputBody2Axis),
		stop1ErrorCorrection: 0.8,
		stop2ErrorCorrection: 0.8,
	}
	j.configure = j.push
	return j
}

func (j *UniversalJoint) push(joint engine.Joint) {
	joint.SetAnchor(j.anchor)
	joint.SetAxis(1, j.axis1)
	joint.SetAxis(2, j.axis2)
	joint.SetParam(engine.ParamBounce, 1, j.stop1Bounce)
	joint.SetParam(engine.ParamBounce, 2, j.stop2Bounce)
	joint.SetParam(engine.ParamStopERP, 1, j.stop1ErrorCorrection)
	joint.SetParam(engine.ParamStopERP, 2, j.stop2ErrorCorrection)
}

func (j *UniversalJoint) AnchorPoint() mgl64.Vec3 {
	return j.anchor
}

func (j *UniversalJoint) SetAnchorPoint(p mgl64.Vec3) {
	j.anchor = p
	if j.live() {
		j.joint.SetAnchor(p)
	}
	j.changed(JointAnchorPoint)
}

func (j *UniversalJoint) Axis1() mgl64.Vec3 {
	return j.axis1
}

func (j *UniversalJoint) SetAxis1(axis mgl64.Vec3) {
	j.axis1 = axis
	if j.live() {
		j.joint.SetAxis(1, axis)
	}
	j.changed(JointAxis1)
}

func (j *UniversalJoint) Axis2() mgl64.Vec3 {
	return j.axis2
}

func (j *UniversalJoint) SetAxis2(axis mgl64.Vec3) {
	j.axis2 = axis
	if j.live() {
		j.joint.SetAxis(2, axis)
	}
	j.changed(JointAxis2)
}

func (j *UniversalJoint) Stop1Bounce() float64 {
	return j.stop1Bounce
}

func (j *UniversalJoint) SetStop1Bounce(bounce float64) error {
	if err := checkUnit(j.name, "stop1Bounce", bounce); err != nil {
		return err
	}
	j.setParam(&j.stop1Bounce, bounce, JointStop1Bounce, engine.ParamBounce, 1)
	return nil
}

func (j *UniversalJoint) Stop2Bounce() float64 {
	return j.stop2Bounce
}

func (j *UniversalJoint) SetStop2Bounce(bounce float64) error {
	if err := checkUnit(j.name, "stop2Bounce", bounce); err != nil {
		return err
	}
	j.setParam(&j.stop2Bounce, bounce, JointStop2Bounce, engine.ParamBounce, 2)
	return nil
}

func (j *UniversalJoint) Stop1ErrorCorrection() float64 {
	return j.stop1ErrorCorrection
}

func (j *UniversalJoint) SetStop1ErrorCorrection(erp float64) error {
	if err := checkUnit(j.name, "stop1ErrorCorrection", erp); err != nil {
		return err
	}
	j.setParam(&j.stop1ErrorCorrection, erp, JointStop1ErrorCorrection, engine.ParamStopERP, 1)
	return nil
}

func (j *UniversalJoint) Stop2ErrorCorrection() float64 {
	return j.stop2ErrorCorrection
}

func (j *UniversalJoint) SetStop2ErrorCorrection(erp float64) error {
	if err := checkUnit(j.name, "stop2ErrorCorrection", erp); err != nil {
		return err
	}
	j.setParam(&j.stop2ErrorCorrection, erp, JointStop2ErrorCorrection, engine.ParamStopERP, 2)
	return nil
}

func (j *UniversalJoint) Body1Axis() mgl64.Vec3 {
	return j.OutputVector(OutputBody1Axis)
}

func (j *UniversalJoint) Body2Axis() mgl64.Vec3 {
	return j.OutputVector(OutputBody2Axis)
}

func (j *UniversalJoint) Body1AnchorPoint() mgl64.Vec3 {
	return j.OutputVector(OutputBody1AnchorPoint)
}

func (j *UniversalJoint) Body2AnchorPoint() mgl64.Vec3 {
	return j.OutputVector(OutputBody2AnchorPoint)
}
