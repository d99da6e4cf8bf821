// Package pose contains the body-keypoint data model consumed by the swing pipeline.
package pose

import (
	"fmt"
	"math"
	"strings"
)

// JointType identifies one of the canonical body keypoints.
type JointType int

// Canonical joints. The order is fixed and used as an array index.
const (
	Nose JointType = iota
	LeftEye
	RightEye
	LeftEar
	RightEar
	LeftShoulder
	RightShoulder
	LeftElbow
	RightElbow
	LeftWrist
	RightWrist
	LeftHip
	RightHip
	LeftKnee
	RightKnee
	LeftAnkle
	RightAnkle

	// NumJoints is the size of the closed joint enumeration.
	NumJoints = 17
)

var jointNames = [NumJoints]string{
	"nose",
	"left_eye",
	"right_eye",
	"left_ear",
	"right_ear",
	"left_shoulder",
	"right_shoulder",
	"left_elbow",
	"right_elbow",
	"left_wrist",
	"right_wrist",
	"left_hip",
	"right_hip",
	"left_knee",
	"right_knee",
	"left_ankle",
	"right_ankle",
}

// String returns the snake_case wire name of the joint.
func (j JointType) String() string {
	if !j.Valid() {
		return fmt.Sprintf("joint(%d)", int(j))
	}
	return jointNames[j]
}

// Valid reports whether j is inside the closed enumeration.
func (j JointType) Valid() bool {
	return j >= 0 && j < NumJoints
}

// ParseJointType resolves a wire name (case-insensitive) to a JointType.
func ParseJointType(name string) (JointType, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for i, candidate := range jointNames {
		if candidate == n {
			return JointType(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownJoint, name)
}

// AllJoints returns every joint type in enumeration order.
func AllJoints() []JointType {
	out := make([]JointType, NumJoints)
	for i := range out {
		out[i] = JointType(i)
	}
	return out
}

// Side selects the left or right half of the body.
type Side int

const (
	// Left is the lead side for a right-handed golfer.
	Left Side = iota
	// Right is the trail side for a right-handed golfer.
	Right
)

// Point is a 2D position in normalized image coordinates.
type Point struct {
	X float64
	Y float64
}

// Distance returns the Euclidean distance between p and q.
func Distance(p, q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Midpoint returns the point halfway between p and q.
func Midpoint(p, q Point) Point {
	return Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

// Joint is one detected keypoint. A zero Joint is "not detected".
type Joint struct {
	X          float64
	Y          float64
	Confidence float64
	Present    bool
}

// Point returns the joint position.
func (j Joint) Point() Point {
	return Point{X: j.X, Y: j.Y}
}

// Observation is a single frame of detected joints. Values are immutable;
// With returns a modified copy.
type Observation struct {
	Timestamp float64
	joints    [NumJoints]Joint
}

// NewObservation builds an observation from a joint map. Entries with an
// out-of-range joint type are ignored.
func NewObservation(ts float64, joints map[JointType]Joint) Observation {
	o := Observation{Timestamp: ts}
	for jt, j := range joints {
		if !jt.Valid() {
			continue
		}
		j.Present = true
		o.joints[jt] = j
	}
	return o
}

// With returns a copy of o with joint jt set to the given position.
func (o Observation) With(jt JointType, x, y, confidence float64) Observation {
	if jt.Valid() {
		o.joints[jt] = Joint{X: x, Y: y, Confidence: confidence, Present: true}
	}
	return o
}

// Without returns a copy of o with joint jt marked as not detected.
func (o Observation) Without(jt JointType) Observation {
	if jt.Valid() {
		o.joints[jt] = Joint{}
	}
	return o
}

// Joint returns the joint and whether it was detected.
func (o Observation) Joint(jt JointType) (Joint, bool) {
	if !jt.Valid() {
		return Joint{}, false
	}
	j := o.joints[jt]
	return j, j.Present
}

// Point returns the joint position and whether it was detected.
func (o Observation) Point(jt JointType) (Point, bool) {
	j, ok := o.Joint(jt)
	return j.Point(), ok
}

// Has reports whether every listed joint was detected.
func (o Observation) Has(jts ...JointType) bool {
	for _, jt := range jts {
		if _, ok := o.Joint(jt); !ok {
			return false
		}
	}
	return true
}

// Detected returns the number of detected joints.
func (o Observation) Detected() int {
	n := 0
	for _, j := range o.joints {
		if j.Present {
			n++
		}
	}
	return n
}

// Sequence is an ordered list of observations; index order is temporal order.
type Sequence []Observation

// Len returns the number of observations.
func (s Sequence) Len() int { return len(s) }

// Window returns the half-open sub-sequence [start, end), clamped to bounds.
func (s Sequence) Window(start, end int) Sequence {
	if start < 0 {
		start = 0
	}
	if end > len(s) {
		end = len(s)
	}
	if start >= end {
		return Sequence{}
	}
	return s[start:end]
}

// First returns the first observation.
func (s Sequence) First() (Observation, bool) {
	if len(s) == 0 {
		return Observation{}, false
	}
	return s[0], true
}

// Last returns the last observation.
func (s Sequence) Last() (Observation, bool) {
	if len(s) == 0 {
		return Observation{}, false
	}
	return s[len(s)-1], true
}

// Duration returns the time between the first and last observation.
func (s Sequence) Duration() float64 {
	if len(s) < 2 {
		return 0
	}
	return s[len(s)-1].Timestamp - s[0].Timestamp
}
