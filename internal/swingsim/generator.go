package swingsim

import (
	"math"
	"math/rand"

	"github.com/okian/swinglab/internal/domain/classify"
	"github.com/okian/swinglab/internal/domain/pose"
)

// Generator defaults.
const (
	defaultFrames = 30
	defaultFPS    = 30.0
	defaultJitter = 0.0015
	defaultSeed   = 42

	// topFraction and impactFraction place the top of the backswing and
	// impact along the normalized swing time.
	topFraction    = 2.0 / 3.0
	impactFraction = 0.6

	wristTravel  = 0.45
	shoulderHalf = 0.10
	hipHalf      = 0.09
	torsoHeight  = 0.22
	minConf      = 0.85
)

// Profile shapes a synthetic swing.
type Profile struct {
	Name string
	// PlaneAngle is the inclination of the lead wrist's backswing travel.
	PlaneAngle float64
	// ShoulderTurn and HipTurn are the rotations reached at the top.
	ShoulderTurn float64
	HipTurn      float64
	// Expected is the label a correct classifier assigns.
	Expected classify.Label
}

// Built-in profiles.
var (
	ProfileGood  = Profile{Name: "good", PlaneAngle: 45, ShoulderTurn: 85, HipTurn: 45, Expected: classify.LabelGoodSwing}
	ProfileSteep = Profile{Name: "steep", PlaneAngle: 68, ShoulderTurn: 80, HipTurn: 40, Expected: classify.LabelTooSteep}
	ProfileFlat  = Profile{Name: "flat", PlaneAngle: 22, ShoulderTurn: 75, HipTurn: 50, Expected: classify.LabelTooFlat}
)

// ProfileByName looks up a built-in profile.
func ProfileByName(name string) (Profile, bool) {
	for _, p := range Profiles() {
		if p.Name == name {
			return p, true
		}
	}
	return Profile{}, false
}

// Profiles returns the built-in profiles.
func Profiles() []Profile {
	return []Profile{ProfileGood, ProfileSteep, ProfileFlat}
}

// Option configures a Generator.
type Option func(*Generator)

// WithFrames sets the number of observations per swing.
func WithFrames(n int) Option {
	return func(g *Generator) {
		if n > 0 {
			g.frames = n
		}
	}
}

// WithFPS sets the capture rate used for timestamps.
func WithFPS(fps float64) Option {
	return func(g *Generator) {
		if fps > 0 {
			g.fps = fps
		}
	}
}

// WithJitter sets the standard deviation of the per-joint position noise.
func WithJitter(j float64) Option {
	return func(g *Generator) {
		if j >= 0 {
			g.jitter = j
		}
	}
}

// WithSeed makes the noise reproducible.
func WithSeed(seed int64) Option {
	return func(g *Generator) {
		g.rng = rand.New(rand.NewSource(seed)) //nolint:gosec // reproducible noise
	}
}

// WithProfile selects the swing shape.
func WithProfile(p Profile) Option {
	return func(g *Generator) { g.profile = p }
}

// Generator synthesizes face-on pose sequences of a single swing. It is not
// safe for concurrent use.
type Generator struct {
	frames  int
	fps     float64
	jitter  float64
	profile Profile
	rng     *rand.Rand
}

// NewGenerator creates a Generator.
func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		frames:  defaultFrames,
		fps:     defaultFPS,
		jitter:  defaultJitter,
		profile: ProfileGood,
		rng:     rand.New(rand.NewSource(defaultSeed)), //nolint:gosec // reproducible noise
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Profile returns the active profile.
func (g *Generator) Profile() Profile { return g.profile }

// Swing returns one synthetic swing with every joint detected.
func (g *Generator) Swing() pose.Sequence {
	seq := make(pose.Sequence, g.frames)
	for i := range seq {
		u := 0.0
		if g.frames > 1 {
			u = float64(i) / float64(g.frames-1)
		}
		seq[i] = g.frame(float64(i)/g.fps, u)
	}
	return seq
}

// ease maps [0,1] onto a smooth start/stop curve.
func ease(s float64) float64 {
	s = math.Max(0, math.Min(1, s))
	return (1 - math.Cos(math.Pi*s)) / 2
}

func lerp(a, b pose.Point, t float64) pose.Point {
	return pose.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
}

// rotation returns the signed turn at time u: up to top during the
// backswing, then unwinding past square to -finish.
func rotation(u, top, finish float64) float64 {
	if u <= topFraction {
		return top * ease(u/topFraction)
	}
	d := (u - topFraction) / (1 - topFraction)
	return top + (-finish-top)*ease(d)
}

func (g *Generator) frame(ts, u float64) pose.Observation {
	p := g.profile
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	// Hip center drifts to the trail side going back and to the lead side coming down.
	shift := 0.01 + 0.01*ease(u/topFraction)
	if u > topFraction {
		shift = 0.02 - 0.06*ease((u-topFraction)/(1-topFraction))
	}
	hipC := pose.Point{X: 0.5 + shift, Y: 0.52}
	lean := 0.05 + 0.02*math.Sin(math.Pi*u)
	shC := pose.Point{X: hipC.X + lean, Y: hipC.Y - torsoHeight}

	shHalf := shoulderHalf * math.Abs(math.Cos(rad(rotation(u, p.ShoulderTurn, 60))))
	hHalf := hipHalf * math.Abs(math.Cos(rad(rotation(u, p.HipTurn, 50))))

	ls := pose.Point{X: shC.X - shHalf, Y: shC.Y}
	rs := pose.Point{X: shC.X + shHalf, Y: shC.Y + 0.005}
	lh := pose.Point{X: hipC.X - hHalf, Y: hipC.Y}
	rh := pose.Point{X: hipC.X + hHalf, Y: hipC.Y}

	address := pose.Point{X: shC.X - 0.09, Y: 0.62}
	top := pose.Point{
		X: address.X + wristTravel*math.Cos(rad(p.PlaneAngle)),
		Y: address.Y - wristTravel*math.Sin(rad(p.PlaneAngle)),
	}
	finish := pose.Point{X: 0.3, Y: 0.2}
	var lw pose.Point
	switch {
	case u <= topFraction:
		s := u / topFraction
		lw = lerp(address, top, ease(s))
		lw.X -= 0.02 * math.Sin(math.Pi*s)
	default:
		d := (u - topFraction) / (1 - topFraction)
		if d <= impactFraction {
			lw = lerp(top, address, ease(d/impactFraction))
		} else {
			lw = lerp(address, finish, ease((d-impactFraction)/(1-impactFraction)))
		}
	}
	rw := pose.Point{X: lw.X + 0.03, Y: lw.Y + 0.01}

	bend := 0.015 + 0.02*math.Sin(math.Pi*u)
	le := elbow(ls, lw, bend)
	re := elbow(rs, rw, bend+0.01)

	kneeKick := 0.02 * math.Sin(math.Pi*u)
	lk := pose.Point{X: 0.42 + kneeKick, Y: 0.72}
	rk := pose.Point{X: 0.59 - kneeKick/2, Y: 0.72}
	la := pose.Point{X: 0.36, Y: 0.92}
	ra := pose.Point{X: 0.64, Y: 0.92}

	nose := pose.Point{X: shC.X + 0.005 + 0.01*math.Sin(2*math.Pi*u), Y: shC.Y - 0.13}

	joints := map[pose.JointType]pose.Point{
		pose.Nose:          nose,
		pose.LeftEye:       {X: nose.X - 0.015, Y: nose.Y - 0.01},
		pose.RightEye:      {X: nose.X + 0.015, Y: nose.Y - 0.01},
		pose.LeftEar:       {X: nose.X - 0.035, Y: nose.Y},
		pose.RightEar:      {X: nose.X + 0.035, Y: nose.Y},
		pose.LeftShoulder:  ls,
		pose.RightShoulder: rs,
		pose.LeftElbow:     le,
		pose.RightElbow:    re,
		pose.LeftWrist:     lw,
		pose.RightWrist:    rw,
		pose.LeftHip:       lh,
		pose.RightHip:      rh,
		pose.LeftKnee:      lk,
		pose.RightKnee:     rk,
		pose.LeftAnkle:     la,
		pose.RightAnkle:    ra,
	}

	obs := pose.Observation{Timestamp: ts}
	for _, jt := range pose.AllJoints() {
		pt := joints[jt]
		obs = obs.With(jt,
			g.noisy(pt.X),
			g.noisy(pt.Y),
			minConf+(1-minConf)*g.rng.Float64())
	}
	return obs
}

func (g *Generator) noisy(v float64) float64 {
	return math.Max(0, math.Min(1, v+g.rng.NormFloat64()*g.jitter))
}

// elbow places the elbow between shoulder and wrist, pushed out by bend.
func elbow(shoulder, wrist pose.Point, bend float64) pose.Point {
	mid := pose.Midpoint(shoulder, wrist)
	dx, dy := wrist.X-shoulder.X, wrist.Y-shoulder.Y
	l := math.Hypot(dx, dy)
	if l == 0 {
		return mid
	}
	return pose.Point{X: mid.X - dy/l*bend, Y: mid.Y + dx/l*bend}
}
