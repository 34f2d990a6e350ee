package clustering

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUVToXY(t *testing.T) {
	x, y := UVToXY(10, 20, North)
	assert.InDelta(t, 10.0, x, 1e-9)
	assert.InDelta(t, 30/math.Sqrt(3), y, 1e-9)

	x, _ = UVToXY(10, 20, South)
	assert.InDelta(t, -10.0, x, 1e-9)
}

func TestDistanceFromHexagon(t *testing.T) {
	assert.Equal(t, 0.0, DistanceFromHexagon(0, 0))
	assert.Equal(t, 0.0, DistanceFromHexagon(WirePlaneRadius, 0))
	// Straight out through the middle of the U edge.
	assert.InDelta(t, 9.0, DistanceFromHexagon(180, 90), 1e-9)
	assert.InDelta(t, 9.0, DistanceFromHexagon(-180, -90), 1e-9)
}

func TestPositionNLPdf(t *testing.T) {
	assert.Equal(t, 0.0, PositionNLPdf(-58.5, -58.5))
	// Two half channels outside.
	assert.InDelta(t, 2.0, PositionNLPdf(180, 90), 1e-9)
}

func TestTimeNLPdf(t *testing.T) {
	tests := []struct {
		name         string
		uTime, vTime float64
		z            float64
		want         float64
	}{
		{"coincident", 5000, 5000, 0, 0},
		{"one sigma", 6000, 5000, 0, 0.5},
		{"no z", 6000, 5000, Unset, 0.5},
		{"flat offset near anode", 8000, 5000, 195, 0},
		{"flat offset south", 8000, 5000, -195, 0},
		{"cubic offset", 5000 + 2728, 5000, 190, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, TimeNLPdf(tt.uTime, tt.vTime, tt.z), 1e-9)
		})
	}
}

func TestEnergyNLPdf(t *testing.T) {
	expected := energyFitOffset + 500*energyFitScale
	sigma := 500*energySigmaLinear + math.Sqrt(500)*energySigmaSqrt

	assert.InDelta(t, 0.0, EnergyNLPdf(500, expected, 50, 682, false), 1e-9)
	assert.InDelta(t, 0.5, EnergyNLPdf(500, expected+sigma, 50, 682, false), 1e-9)
	// Below the fit threshold no V amplitude is expected.
	assert.InDelta(t, 0.5, EnergyNLPdf(100, energySigmaLow, 50, 682, false), 1e-9)
	assert.Equal(t, energyNoUAmplitude, EnergyNLPdf(0, 10, 50, 682, false))

	// Near the anodes the fit is not used.
	assert.InDelta(t, 682.0/3000, EnergyNLPdf(500, 0, 170, 682, false), 1e-12)
	assert.InDelta(t, 682.0/3000, EnergyNLPdf(500, 0, -190, 682, true), 1e-12)
	// The new pdf is still evaluated between the two cuts, with a smaller
	// expectation.
	assert.Greater(t, EnergyNLPdf(500, expected, 170, 682, true), 0.0)
}

func TestLogLikelihoodMatrix(t *testing.T) {
	sc := &ScintillationCluster{Time: 0}
	north := uBundle(&UWireSignal{Channel: 12, Time: 50000, CorrectedEnergy: 500})
	north.Scint = sc
	south := uBundle(&UWireSignal{Channel: 2*NChannelPerWirePlane + 12, Time: 50000, CorrectedEnergy: 500})
	south.Scint = sc
	v := vBundle(&VWireSignal{Channel: NChannelPerWirePlane + 12, Time: 50000, CorrectedMagnitude: energyFitOffset + 500*energyFitScale})

	var combinedU Bundle[*UWireSignal]
	combinedU.AddBundle(north)
	combinedU.AddBundle(uBundle(&UWireSignal{Channel: 20, Time: 50000, CorrectedEnergy: 10}))
	combinedU.Scint = sc
	var cv Bundle[*VWireSignal]
	cv.AddBundle(v)
	cv.AddBundle(vBundle(&VWireSignal{Channel: NChannelPerWirePlane + 20, Time: 50000, CorrectedMagnitude: 10}))

	config := DefaultConfiguration()
	debug := &DebugData{}
	m := &matcher{config: config, drift: defaultDrift, debug: debug}
	mat := m.logLikelihoodMatrix([]Bundle[*UWireSignal]{north, south, combinedU}, []Bundle[*VWireSignal]{v, cv})

	require.Equal(t, 3, mat.Rows())
	require.Equal(t, 2, mat.Cols())
	assert.Equal(t, 0, mat.At(0, 0))
	assert.Equal(t, config.MaxCost, mat.At(1, 0))
	assert.Equal(t, config.MaxCost, mat.At(1, 1))
	assert.Equal(t, config.MaxCost, mat.At(2, 1))
	assert.Less(t, mat.At(0, 1), config.MaxCost)
	assert.Less(t, mat.At(2, 0), config.MaxCost)
	// Only pairs that were scored leave a record.
	assert.Len(t, debug.Candidates, 3)
}

func TestLogLikelihoodMatrixRejectsUndefinedScores(t *testing.T) {
	sc := &ScintillationCluster{Time: 0}
	u := uBundle(&UWireSignal{Channel: 12, Time: 50000, CorrectedEnergy: 500})
	u.Scint = sc
	v := vBundle(&VWireSignal{Channel: NChannelPerWirePlane + 12, Time: math.NaN(), CorrectedMagnitude: expectedV(500)})

	config := DefaultConfiguration()
	m := &matcher{config: config, drift: defaultDrift}
	mat := m.logLikelihoodMatrix([]Bundle[*UWireSignal]{u}, []Bundle[*VWireSignal]{v})
	assert.Equal(t, config.MaxCost, mat.At(0, 0))
}
