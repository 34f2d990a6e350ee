package clustering

import "math"

const cathodeMergeDistance = 1.0 * Centimeter

// eligibleForCathodeMerge filters out clusters that cannot be one half of a
// deposit split by the cathode.
func eligibleForCathodeMerge(cc *ChargeCluster) bool {
	return cc.Is3D() &&
		math.Abs(cc.Z) <= cathodeMergeDistance &&
		cc.DetectorHalf <= 1 &&
		cc.CorrectedEnergy >= 1
}

// CheckCathodeSplit merges pairs of 3D clusters that sit on both sides of the
// cathode at the same X and Y and share their scintillation cluster. The
// merged cluster keeps the position of the more energetic one and its
// detector half is shifted by 2, so it is never merged again.
func CheckCathodeSplit(ed *EventData) EventStatus {
	for i := 0; i < len(ed.ChargeClusters); i++ {
		cluster1 := ed.ChargeClusters[i]
		if !eligibleForCathodeMerge(cluster1) {
			continue
		}
		for j := i + 1; j < len(ed.ChargeClusters); j++ {
			cluster2 := ed.ChargeClusters[j]
			if !eligibleForCathodeMerge(cluster2) {
				continue
			}
			if cluster1.DetectorHalf == cluster2.DetectorHalf {
				continue
			}
			if math.Abs(cluster1.X-cluster2.X) > cathodeMergeDistance || math.Abs(cluster1.Y-cluster2.Y) > cathodeMergeDistance {
				continue
			}
			if cluster1.Scint != cluster2.Scint {
				continue
			}
			if cluster1.Scint.AlgorithmUsed() != cluster2.Scint.AlgorithmUsed() {
				continue
			}

			mergeAcrossCathode(cluster1, cluster2)
			logger.Debug("merged charge clusters split by the cathode", "clustering")
			ed.RemoveChargeCluster(cluster2)
			break
		}
	}
	return StatusOk
}

// mergeAcrossCathode folds cluster2 into cluster1.
func mergeAcrossCathode(cluster1, cluster2 *ChargeCluster) {
	if cluster1.CorrectedEnergy < cluster2.CorrectedEnergy {
		cluster1.U = cluster2.U
		cluster1.V = cluster2.V
		cluster1.X = cluster2.X
		cluster1.Y = cluster2.Y
		cluster1.DetectorHalf = cluster2.DetectorHalf + 2
	} else {
		cluster1.DetectorHalf += 2
	}

	cluster1.Z = (cluster1.Z + cluster2.Z) / 2
	cluster1.CollectionTime = (cluster1.CollectionTime + cluster2.CollectionTime) / 2
	cluster1.DriftTime = (cluster1.DriftTime + cluster2.DriftTime) / 2

	cluster1.RawEnergy += cluster2.RawEnergy
	cluster1.RawEnergyError = quadratureSum(cluster1.RawEnergyError, cluster2.RawEnergyError)
	cluster1.CorrectedEnergy += cluster2.CorrectedEnergy
	cluster1.CorrectedEnergyError = quadratureSum(cluster1.CorrectedEnergyError, cluster2.CorrectedEnergyError)

	cluster1.AmplitudeInVChannels += cluster2.AmplitudeInVChannels
	cluster1.CorrectedAmplitudeInVChannels += cluster2.CorrectedAmplitudeInVChannels

	// Both share the scintillation cluster, only wire links move.
	for _, sig := range cluster2.UWireSignals {
		cluster1.UWireSignals = append(cluster1.UWireSignals, sig)
		sig.linkChargeCluster(cluster1)
	}
	for _, sig := range cluster2.VWireSignals {
		cluster1.VWireSignals = append(cluster1.VWireSignals, sig)
		sig.linkChargeCluster(cluster1)
	}
}
