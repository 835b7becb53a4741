package scoring

// Pillar names one of the four scoring categories.
type Pillar string

// The four pillars, in weighting order.
const (
	Technical Pillar = "technical"
	Tactical  Pillar = "tactical"
	Physical  Pillar = "physical"
	Mental    Pillar = "mental"
)

// Pillar weights. They sum to 1.0.
const (
	weightTechnical = 0.35
	weightTactical  = 0.25
	weightPhysical  = 0.25
	weightMental    = 0.15
)

// Benchmark denominators used to normalise raw stats onto a 0-100 scale.
// They are fixed for every row regardless of position or role.
const (
	goalsBenchmark      = 1.0  // goals per 90 minutes
	conversionBenchmark = 30.0 // shot conversion rate, percent
	sprintBenchmark     = 35.0 // top sprint speed, km/h

	goalsShare      = 60.0 // technical points from scoring rate
	conversionShare = 40.0 // technical points from finishing
	percentScale    = 100.0
	pairMean        = 2.0
)

// Pillars returns the pillars in weighting order.
func Pillars() []Pillar {
	return []Pillar{Technical, Tactical, Physical, Mental}
}

// Weight returns the weight of p, or 0 for an unknown pillar.
func Weight(p Pillar) float64 {
	switch p {
	case Technical:
		return weightTechnical
	case Tactical:
		return weightTactical
	case Physical:
		return weightPhysical
	case Mental:
		return weightMental
	default:
		return 0
	}
}

// Weights returns a fresh copy of the weight table.
func Weights() map[Pillar]float64 {
	w := make(map[Pillar]float64, 4)
	for _, p := range Pillars() {
		w[p] = Weight(p)
	}
	return w
}

// WeightSum adds the weights at run time in pillar order.
func WeightSum() float64 {
	var sum float64
	for _, p := range Pillars() {
		sum += Weight(p)
	}
	return sum
}

// Benchmarks exposes the normalisation denominators.
type Benchmarks struct {
	GoalsPer90   float64 `json:"goals_per_90"`
	ShotConvRate float64 `json:"shot_conv_rate"`
	SprintSpeed  float64 `json:"sprint_speed"`
}

// DefaultBenchmarks returns the fixed benchmark denominators.
func DefaultBenchmarks() Benchmarks {
	return Benchmarks{
		GoalsPer90:   goalsBenchmark,
		ShotConvRate: conversionBenchmark,
		SprintSpeed:  sprintBenchmark,
	}
}
