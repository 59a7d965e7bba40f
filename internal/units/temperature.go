package units

import "fmt"

// bridgeEdge is one elementary affine transform: y = x*scale + offset.
type bridgeEdge struct {
	to     string
	scale  float64
	offset float64
}

// bridgeNetwork is the fixed temperature network. degR and K are the hubs;
// every pair of scales is connected through them.
var bridgeNetwork = map[string][]bridgeEdge{
	"degF": {{to: "degR", scale: 1, offset: 459.67}},
	"degR": {
		{to: "degF", scale: 1, offset: -459.67},
		{to: "K", scale: 5.0 / 9.0},
	},
	"K": {
		{to: "degR", scale: 9.0 / 5.0},
		{to: "degC", scale: 1, offset: -273.15},
	},
	"degC": {{to: "K", scale: 1, offset: 273.15}},
}

// bridge finds the shortest chain of elementary transforms between two
// temperature scales (breadth-first over bridgeNetwork).
func bridge(from, to string) ([]Step, error) {
	if from == to {
		return nil, nil
	}

	type visit struct {
		scale string
		steps []Step
	}
	seen := map[string]bool{from: true}
	queue := []visit{{scale: from}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, e := range bridgeNetwork[cur.scale] {
			if seen[e.to] {
				continue
			}
			seen[e.to] = true
			steps := make([]Step, len(cur.steps), len(cur.steps)+1)
			copy(steps, cur.steps)
			steps = append(steps, Step{
				Source:               scaleUnit(cur.scale),
				Target:               scaleUnit(e.to),
				PrefixMultiplier:     1,
				ConversionMultiplier: e.scale,
				Offset:               e.offset,
				Affine:               true,
			})
			if e.to == to {
				return steps, nil
			}
			queue = append(queue, visit{scale: e.to, steps: steps})
		}
	}
	return nil, fmt.Errorf("%w: no temperature bridge from %s to %s", ErrIncompatibleUnits, from, to)
}

func scaleUnit(symbol string) Unit {
	return format([]segment{{symbol: symbol, exp: 1}})
}

// Temperature scale units.
var (
	Kelvin     = scaleUnit("K")
	Celsius    = scaleUnit("degC")
	Fahrenheit = scaleUnit("degF")
	Rankine    = scaleUnit("degR")
)
