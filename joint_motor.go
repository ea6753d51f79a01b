package rigidscene

import (
	"fmt"

	"github.com/akmonengine/rigidscene/engine"
	"github.com/go-gl/mathgl/mgl64"
)

// MotorJoint drives the relative rotation of two bodies around up to three
// axes. With autoCalc the engine measures the angles and derives axis 2 from
// axes 1 and 3; otherwise the angles are supplied through the axis angles.
type MotorJoint struct {
	jointBase

	autoCalc            bool
	enabledAxes         int
	motorAxis           [3]mgl64.Vec3
	axisAngle           [3]float64
	axisTorque          [3]float64
	stopBounce          [3]float64
	stopErrorCorrection [3]float64
}

func NewMotorJoint() *MotorJoint {
	j := &MotorJoint{
		jointBase: newJointBase("MotorJoint", engine.JointAMotor,
			OutputMotor1Angle, OutputMotor1AngleRate,
			OutputMotor2Angle, OutputMotor2AngleRate,
			OutputMotor3Angle, OutputMotor3AngleRate),
		enabledAxes:         1,
		stopErrorCorrection: [3]float64{0.8, 0.8, 0.8},
	}
	j.configure = j.push
	return j
}

func (j *MotorJoint) push(joint engine.Joint) {
	if j.autoCalc {
		joint.SetMode(engine.MotorEuler)
	} else {
		joint.SetMode(engine.MotorUser)
	}
	joint.SetAxis(1, j.motorAxis[0])
	joint.SetAxis(3, j.motorAxis[2])

	if !j.autoCalc {
		joint.SetNumAxes(j.enabledAxes)
		for n := 1; n <= 3; n++ {
			joint.SetAngle(n, j.axisAngle[n-1])
		}
		joint.SetAxis(2, j.motorAxis[1])
	}

	for n := 1; n <= 3; n++ {
		joint.SetTorque(n, j.axisTorque[n-1])
		joint.SetParam(engine.ParamBounce, n, j.stopBounce[n-1])
		joint.SetParam(engine.ParamStopERP, n, j.stopErrorCorrection[n-1])
	}
}

// checkAxis panics on an axis number outside 1..3
func checkAxis(n int) {
	if n < 1 || n > 3 {
		panic(fmt.Sprintf("rigidscene: motor axis %d out of range", n))
	}
}

func (j *MotorJoint) AutoCalc() bool {
	return j.autoCalc
}

// SetAutoCalc switches between Euler and user mode. The engine joint is
// reconfigured since user mode pushes more state.
func (j *MotorJoint) SetAutoCalc(enabled bool) {
	j.autoCalc = enabled
	if j.live() {
		j.push(j.joint)
	}
	j.changed(JointAutoCalc)
}

func (j *MotorJoint) EnabledAxes() int {
	return j.enabledAxes
}

// SetEnabledAxes accepts 0 to 3 axes.
func (j *MotorJoint) SetEnabledAxes(n int) error {
	if n < 0 || n > 3 {
		return fieldError(j.name, "enabledAxes", n, ErrOutOfRange)
	}
	j.enabledAxes = n
	if j.live() && !j.autoCalc {
		j.joint.SetNumAxes(n)
	}
	j.changed(JointEnabledAxes)
	return nil
}

// MotorAxis returns axis n, 1 based.
func (j *MotorJoint) MotorAxis(n int) mgl64.Vec3 {
	checkAxis(n)
	return j.motorAxis[n-1]
}

// SetMotorAxis sets axis n. In autoCalc mode axis 2 is kept but not pushed.
func (j *MotorJoint) SetMotorAxis(n int, axis mgl64.Vec3) {
	checkAxis(n)
	j.motorAxis[n-1] = axis
	if j.live() && (n != 2 || !j.autoCalc) {
		j.joint.SetAxis(n, axis)
	}
	j.changed(JointAxis1 + JointField(n-1))
}

func (j *MotorJoint) AxisAngle(n int) float64 {
	checkAxis(n)
	return j.axisAngle[n-1]
}

// SetAxisAngle sets the user angle of axis n, within [-π, π].
func (j *MotorJoint) SetAxisAngle(n int, angle float64) error {
	checkAxis(n)
	if err := checkAngle(j.name, fmt.Sprintf("axis%dAngle", n), angle); err != nil {
		return err
	}
	j.axisAngle[n-1] = angle
	if j.live() && !j.autoCalc {
		j.joint.SetAngle(n, angle)
	}
	j.changed(JointAxis1Angle + JointField(n-1))
	return nil
}

func (j *MotorJoint) AxisTorque(n int) float64 {
	checkAxis(n)
	return j.axisTorque[n-1]
}

// SetAxisTorque sets the torque applied around axis n every step. Negative
// torques are valid and turn the other way.
func (j *MotorJoint) SetAxisTorque(n int, torque float64) {
	checkAxis(n)
	j.axisTorque[n-1] = torque
	if j.live() {
		j.joint.SetTorque(n, torque)
	}
	j.changed(JointAxis1Torque + JointField(n-1))
}

func (j *MotorJoint) StopBounce(n int) float64 {
	checkAxis(n)
	return j.stopBounce[n-1]
}

func (j *MotorJoint) SetStopBounce(n int, bounce float64) error {
	checkAxis(n)
	if err := checkUnit(j.name, fmt.Sprintf("stop%dBounce", n), bounce); err != nil {
		return err
	}
	j.setParam(&j.stopBounce[n-1], bounce, JointStop1Bounce+JointField(n-1), engine.ParamBounce, n)
	return nil
}

func (j *MotorJoint) StopErrorCorrection(n int) float64 {
	checkAxis(n)
	return j.stopErrorCorrection[n-1]
}

func (j *MotorJoint) SetStopErrorCorrection(n int, erp float64) error {
	checkAxis(n)
	if err := checkUnit(j.name, fmt.Sprintf("stop%dErrorCorrection", n), erp); err != nil {
		return err
	}
	j.setParam(&j.stopErrorCorrection[n-1], erp, JointStop1ErrorCorrection+JointField(n-1), engine.ParamStopERP, n)
	return nil
}

// MotorAngle returns the last angle read for axis n.
func (j *MotorJoint) MotorAngle(n int) float64 {
	checkAxis(n)
	return j.Output(OutputMotor1Angle + 2*JointField(n-1))
}

func (j *MotorJoint) MotorAngleRate(n int) float64 {
	checkAxis(n)
	return j.Output(OutputMotor1AngleRate + 2*JointField(n-1))
}
