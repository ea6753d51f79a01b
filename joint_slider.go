package rigidscene

import (
	"github.com/akmonengine/rigidscene/engine"
	"github.com/go-gl/mathgl/mgl64"
)

// SliderJoint constrains two bodies to translate along one axis.
type SliderJoint struct {
	jointBase

	axis                mgl64.Vec3
	minSeparation       float64
	maxSeparation       float64
	stopBounce          float64
	stopErrorCorrection float64
	maxForce            float64
	desiredVelocity     float64
}

func NewSliderJoint() *SliderJoint {
	j := &SliderJoint{
		jointBase:           newJointBase("SliderJoint", engine.JointSlider, OutputSeparation, OutputSeparationRate),
		maxSeparation:       1,
		stopErrorCorrection: 0.8,
	}
	j.configure = j.push
	return j
}

func (j *SliderJoint) push(joint engine.Joint) {
	joint.SetAxis(1, j.axis)
	joint.SetParam(engine.ParamLoStop, 1, j.minSeparation)
	joint.SetParam(engine.ParamHiStop, 1, j.maxSeparation)
	joint.SetParam(engine.ParamBounce, 1, j.stopBounce)
	joint.SetParam(engine.ParamStopERP, 1, j.stopErrorCorrection)
	joint.SetParam(engine.ParamFMax, 1, j.maxForce)
	joint.SetParam(engine.ParamVel, 1, j.desiredVelocity)
}

func (j *SliderJoint) Axis() mgl64.Vec3 {
	return j.axis
}

func (j *SliderJoint) SetAxis(axis mgl64.Vec3) {
	j.axis = axis
	if j.live() {
		j.joint.SetAxis(1, axis)
	}
	j.changed(JointAxis)
}

func (j *SliderJoint) MinSeparation() float64 {
	return j.minSeparation
}

// SetMinSeparation rejects negative distances.
func (j *SliderJoint) SetMinSeparation(d float64) error {
	if err := checkNonNegative(j.name, "minSeparation", d); err != nil {
		return err
	}
	j.setParam(&j.minSeparation, d, JointMinSeparation, engine.ParamLoStop, 1)
	return nil
}

func (j *SliderJoint) MaxSeparation() float64 {
	return j.maxSeparation
}

func (j *SliderJoint) SetMaxSeparation(d float64) error {
	if err := checkNonNegative(j.name, "maxSeparation", d); err != nil {
		return err
	}
	j.setParam(&j.maxSeparation, d, JointMaxSeparation, engine.ParamHiStop, 1)
	return nil
}

func (j *SliderJoint) StopBounce() float64 {
	return j.stopBounce
}

func (j *SliderJoint) SetStopBounce(bounce float64) error {
	if err := checkUnit(j.name, "stopBounce", bounce); err != nil {
		return err
	}
	j.setParam(&j.stopBounce, bounce, JointStopBounce, engine.ParamBounce, 1)
	return nil
}

func (j *SliderJoint) StopErrorCorrection() float64 {
	return j.stopErrorCorrection
}

func (j *SliderJoint) SetStopErrorCorrection(erp float64) error {
	if err := checkUnit(j.name, "stopErrorCorrection", erp); err != nil {
		return err
	}
	j.setParam(&j.stopErrorCorrection, erp, JointStopErrorCorrection, engine.ParamStopERP, 1)
	return nil
}

func (j *SliderJoint) MaxForce() float64 {
	return j.maxForce
}

func (j *SliderJoint) SetMaxForce(force float64) error {
	if err := checkNonNegative(j.name, "maxForce", force); err != nil {
		return err
	}
	j.setParam(&j.maxForce, force, JointMaxForce, engine.ParamFMax, 1)
	return nil
}

func (j *SliderJoint) DesiredVelocity() float64 {
	return j.desiredVelocity
}

func (j *SliderJoint) SetDesiredVelocity(v float64) {
	j.setParam(&j.desiredVelocity, v, JointDesiredVelocity, engine.ParamVel, 1)
}

func (j *SliderJoint) Separation() float64 {
	return j.Output(OutputSeparation)
}

func (j *SliderJoint) SeparationRate() float64 {
	return j.Output(OutputSeparationRate)
}
