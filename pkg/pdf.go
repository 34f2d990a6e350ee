package clustering

import (
	"fmt"
	"math"
)

// U-V energy fit from data: expected V amplitude = energyFitOffset +
// energyFitScale * U amplitude.
const (
	energyFitScale      = 0.2378
	energyFitOffset     = -30.79
	energySigmaLow      = 20.22
	energySigmaKnee     = 350.0
	energySigmaLinear   = 0.0101
	energySigmaSqrt     = 0.892
	energyAnodeCut      = 160.0
	energyAnodeCutNew   = 185.0
	energyZCorrP0       = 0.80299698
	energyZCorrP1       = 21.93337053
	energyZCorrZmax     = 205.9221048
	energyNoUAmplitude  = 1e7
	timeSigma           = 1.0 * Microsecond
	timeOffsetNoZ       = 998.0
	timeOffsetFlatCut   = 194.1
	timeOffsetFlat      = 3.0 * Microsecond
	timeOffsetCubicCut  = 185.2
	timeOffsetCubicBase = 190.0
)

// PositionNLPdf scores how far the (u, v) crossing lies outside the wire
// hexagon, in units of half a channel.
func PositionNLPdf(u, v float64) float64 {
	a := DistanceFromHexagon(u, v) / (ChannelWidth / 2)
	return a * a / 2
}

// TimeNLPdf compares U and V times. Close to the anodes V signals are fit
// late, which the Z dependent offset accounts for. |Z| above 998 means no Z
// is known.
func TimeNLPdf(uTime, vTime, z float64) float64 {
	offset := 0.0
	absZ := math.Abs(z)
	switch {
	case absZ > timeOffsetNoZ:
		offset = 0
	case absZ > timeOffsetFlatCut:
		offset = timeOffsetFlat
	case absZ > timeOffsetCubicCut:
		x := absZ - timeOffsetCubicBase
		offset = (2.728 + 0.5466*x - 0.06538*x*x - 0.01275*x*x*x) * Microsecond
	}
	a := (uTime - vTime - offset) / timeSigma
	return a * a / 2
}

// EnergyNLPdf compares the V amplitude with the one expected from the U
// amplitude. Near the anodes the fit does not hold and a fixed reasonable
// value is returned instead.
func EnergyNLPdf(uAmplitude, vAmplitude, z float64, reasonableCost int, useNewPDF bool) float64 {
	absZ := math.Abs(z)
	if (absZ > energyAnodeCut && !useNewPDF) || absZ > energyAnodeCutNew {
		return float64(reasonableCost) / 1000 / 3
	}
	if uAmplitude <= 0 {
		return energyNoUAmplitude
	}
	v := 0.0
	if uAmplitude > -energyFitOffset/energyFitScale {
		v = energyFitOffset + uAmplitude*energyFitScale
	}
	if useNewPDF {
		corr := -1 / (1 + energyZCorrP0*math.Exp(-(absZ-energyZCorrZmax)/energyZCorrP1))
		v *= corr + 1
	}
	sigma := energySigmaLow
	if uAmplitude > energySigmaKnee {
		sigma = uAmplitude*energySigmaLinear + math.Sqrt(uAmplitude)*energySigmaSqrt
	}
	deviation := (v - vAmplitude) / sigma
	return deviation * deviation / 2
}

func (m *matcher) z(ub Bundle[*UWireSignal]) float64 {
	side := ub.Side()
	return ub.ZWithDriftVelocity(m.drift.Velocity(side), m.drift.CollectionTime(side))
}

// totalUVNLPdf is the negative log likelihood of ub and vb being the same
// deposit. At most one of them may be combined; its children are scored
// against the other side and averaged.
func (m *matcher) totalUVNLPdf(ub Bundle[*UWireSignal], vb Bundle[*VWireSignal]) float64 {
	position := 0.0
	switch {
	case ub.IsCombined():
		for i := 0; i < ub.NumChildren(); i++ {
			position += PositionNLPdf(ub.Child(i).Position(), vb.Position())
		}
		position /= float64(ub.NumChildren())
	case vb.IsCombined():
		for i := 0; i < vb.NumChildren(); i++ {
			position += PositionNLPdf(ub.Position(), vb.Child(i).Position())
		}
		position /= float64(vb.NumChildren())
	default:
		position = PositionNLPdf(ub.Position(), vb.Position())
	}

	z := m.z(ub)
	energy := EnergyNLPdf(ub.Energy(), vb.Energy(), z, m.config.ReasonableCost, m.config.UseNewEnergyPDF)
	timing := TimeNLPdf(ub.Time(), vb.Time(), z)

	if m.config.Verbosity > 2 {
		logger.Debug(fmt.Sprintf("totalUVNLPdf position/energy/time parts = %g/%g/%g", position, energy, timing), "clustering")
	}
	if m.debug != nil {
		m.debug.Candidates = append(m.debug.Candidates, CandidateRecord{
			Z:          z,
			UEnergy:    ub.Energy(),
			VEnergy:    vb.Energy(),
			Time:       ub.Time(),
			TimeDiff:   ub.Time() - vb.Time(),
			NLPosition: position,
			NLEnergy:   energy,
			NLTime:     timing,
		})
	}
	return position + energy + timing
}

// logLikelihoodMatrix holds 1000 times the negative log likelihood of every
// U (row) and V (column) pairing, capped at the configured maximal cost.
func (m *matcher) logLikelihoodMatrix(us []Bundle[*UWireSignal], vs []Bundle[*VWireSignal]) CostMatrix {
	mat := NewCostMatrix(len(us), len(vs))
	maxCost := m.config.MaxCost
	for i, ub := range us {
		for j, vb := range vs {
			if !OnSameDetectorHalf(ub.Signals[0].Channel, vb.Signals[0].Channel) {
				mat.Set(i, j, maxCost)
				continue
			}
			if ub.IsCombined() && vb.IsCombined() {
				mat.Set(i, j, maxCost)
				continue
			}
			nll := 1000 * m.totalUVNLPdf(ub, vb)
			if math.IsNaN(nll) || math.IsInf(nll, 0) || nll > float64(maxCost) {
				mat.Set(i, j, maxCost)
				continue
			}
			mat.Set(i, j, int(math.Round(nll)))
		}
	}
	return mat
}
