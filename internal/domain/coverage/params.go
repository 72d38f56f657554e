package coverage

// Params holds the tuned constants of the coverage model. They have no
// physical derivation and are exposed so callers can adjust them.
type Params struct {
	// PressChance is the chance a corner presses when the technique is AUTO.
	PressChance float64 `json:"press_chance"`
	// Outcome weights when a corner presses.
	JamLockWeight    float64 `json:"jam_lock_weight"`
	JamReleaseWeight float64 `json:"jam_release_weight"`
	WhiffWeight      float64 `json:"whiff_weight"`
	// JamReleaseHold pins the corner and delays the receiver for this
	// fraction of the play on JAM_AND_RELEASE.
	JamReleaseHold float64 `json:"jam_release_hold"`
	// WhiffHold pins a corner who missed the jam.
	WhiffHold float64 `json:"whiff_hold"`

	// SpyChance is the chance one free linebacker spies under man coverage.
	SpyChance float64 `json:"spy_chance"`
	// Rotation weights for AUTO: none, strong, weak.
	RotationNone   float64 `json:"rotation_none"`
	RotationStrong float64 `json:"rotation_strong"`
	RotationWeak   float64 `json:"rotation_weak"`

	// DropEnd is when zone droppers reach their landmark.
	DropEnd float64 `json:"drop_end"`
	// ThreatBlend is how long zone defenders take to fully react to threats
	// after the drop.
	ThreatBlend float64 `json:"threat_blend"`
	// ReadT is when match defenders read their key; ReadBlend is how long
	// they take to convert.
	ReadT     float64 `json:"read_t"`
	ReadBlend float64 `json:"read_blend"`
	// CarryDepth is the depth past the line at ReadT that makes a route
	// vertical for match rules.
	CarryDepth float64 `json:"carry_depth"`

	// Cut lag: sharp breaks reduce a man defender's pursuit by up to MaxLag.
	MaxLag      float64 `json:"max_lag"`
	LagMinAngle float64 `json:"lag_min_angle"`
	LagMaxAngle float64 `json:"lag_max_angle"`
	LagWindow   float64 `json:"lag_window"`

	// ReceiverSpeed is the base receiver top speed in yards per second.
	ReceiverSpeed float64 `json:"receiver_speed"`
	// Seconds is the play duration.
	Seconds float64 `json:"seconds"`
	// Speed caps as a fraction of receiver speed.
	DBRatio float64 `json:"db_ratio"`
	LBRatio float64 `json:"lb_ratio"`
	DLRatio float64 `json:"dl_ratio"`
	// MaxAccel caps acceleration in yards per second squared.
	MaxAccel float64 `json:"max_accel"`
	// Response is the time constant of pursuit, in seconds.
	Response float64 `json:"response"`
	// StepSeconds is the integrator step.
	StepSeconds float64 `json:"step_seconds"`
}

// DefaultParams returns the stock tuning.
func DefaultParams() Params {
	return Params{
		PressChance:      0.5,
		JamLockWeight:    0.15,
		JamReleaseWeight: 0.45,
		WhiffWeight:      0.40,
		JamReleaseHold:   0.12,
		WhiffHold:        0.10,

		SpyChance:      0.35,
		RotationNone:   0.4,
		RotationStrong: 0.4,
		RotationWeak:   0.2,

		DropEnd:     0.35,
		ThreatBlend: 0.15,
		ReadT:       0.35,
		ReadBlend:   0.10,
		CarryDepth:  5,

		MaxLag:      0.6,
		LagMinAngle: 30,
		LagMaxAngle: 120,
		LagWindow:   0.04,

		ReceiverSpeed: 7.5,
		Seconds:       3,
		DBRatio:       0.9,
		LBRatio:       0.8,
		DLRatio:       0.6,
		MaxAccel:      14,
		Response:      0.2,
		StepSeconds:   1.0 / 120,
	}
}
