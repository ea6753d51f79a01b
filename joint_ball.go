package rigidscene

import (
	"github.com/akmonengine/rigidscene/engine"
	"github.com/go-gl/mathgl/mgl64"
)

// BallJoint pins two bodies at a shared anchor point.
type BallJoint struct {
	jointBase
	anchor mgl64.Vec3
}

func NewBallJoint() *BallJoint {
	j := &BallJoint{
		jointBase: newJointBase("BallJoint", engine.JointBall, OutputBody1AnchorPoint, OutputBody2AnchorPoint),
	}
	j.configure = j.push
	return j
}

func (j *BallJoint) push(joint engine.Joint) {
	joint.SetAnchor(j.anchor)
}

func (j *BallJoint) AnchorPoint() mgl64.Vec3 {
	return j.anchor
}

func (j *BallJoint) SetAnchorPoint(p mgl64.Vec3) {
	j.anchor = p
	if j.live() {
		j.joint.SetAnchor(p)
	}
	j.changed(JointAnchorPoint)
}

func (j *BallJoint) Body1AnchorPoint() mgl64.Vec3 {
	return j.OutputVector(OutputBody1AnchorPoint)
}

func (j *BallJoint) Body2AnchorPoint() mgl64.Vec3 {
	return j.OutputVector(OutputBody2AnchorPoint)
}
