package clustering

import (
	"errors"
	"fmt"
	"slices"

	hdf5 "github.com/jmbenlloch/go-hdf5"
)

// Writer stores clustered events in an HDF5 file. Every table is appended to
// independently, so each keeps its own row counter.
type Writer struct {
	File            *hdf5.File
	Filename        string
	JobID           string
	RunGroup        *hdf5.Group
	ClustersGroup   *hdf5.Group
	DebugGroup      *hdf5.Group
	EventTable      *hdf5.Dataset
	RunInfoTable    *hdf5.Dataset
	ChargeTable     *hdf5.Dataset
	ScintTable      *hdf5.Dataset
	CandidatesTable *hdf5.Dataset
	MatchedTable    *hdf5.Dataset

	EvtCounter       int
	RunCounter       int
	ChargeCounter    int
	ScintCounter     int
	CandidateCounter int
	MatchedCounter   int

	runs []int
}

// NewWriter creates filename, truncating it. The debug group is only
// created when withDebug is set.
// Everything created so far is closed again if a later step fails.
func NewWriter(filename string, jobID string, withDebug bool) (_ *Writer, err error) {
	hdf5.SetStringLength(STRLEN)

	writer := &Writer{Filename: filename, JobID: jobID}
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("hdf5writer: Creating file: %s", filename), "writer")
	}
	if writer.File, err = openFile(filename); err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, writer.Close())
		}
	}()
	if writer.RunGroup, err = createGroup(writer.File, "Run"); err != nil {
		return nil, err
	}
	if writer.ClustersGroup, err = createGroup(writer.File, "Clusters"); err != nil {
		return nil, err
	}
	if writer.EventTable, err = createTable(writer.RunGroup, "events", EventDataHDF5{}); err != nil {
		return nil, err
	}
	if writer.RunInfoTable, err = createTable(writer.RunGroup, "runInfo", RunInfoHDF5{}); err != nil {
		return nil, err
	}
	if writer.ChargeTable, err = createTable(writer.ClustersGroup, "charge", ChargeClusterHDF5{}); err != nil {
		return nil, err
	}
	if writer.ScintTable, err = createTable(writer.ClustersGroup, "scintillation", ScintillationClusterHDF5{}); err != nil {
		return nil, err
	}
	if !withDebug {
		return writer, nil
	}
	if writer.DebugGroup, err = createGroup(writer.File, "Debug"); err != nil {
		return nil, err
	}
	if writer.CandidatesTable, err = createTable(writer.DebugGroup, "candidates", CandidateHDF5{}); err != nil {
		return nil, err
	}
	if writer.MatchedTable, err = createTable(writer.DebugGroup, "matched", MatchedHDF5{}); err != nil {
		return nil, err
	}
	return writer, nil
}

// WriteEvent appends the event summary and its clusters. debug may be nil.
func (w *Writer) WriteEvent(ed *EventData, status EventStatus, debug *DebugData) error {
	if !slices.Contains(w.runs, ed.RunNumber) {
		info := RunInfoHDF5{run_number: int32(ed.RunNumber), job_id: convertToHdf5String(w.JobID)}
		if err := writeEntryToTable(w.RunInfoTable, info, w.RunCounter); err != nil {
			return fmt.Errorf("error writing run info: %w", err)
		}
		w.runs = append(w.runs, ed.RunNumber)
		w.RunCounter++
	}

	evt := EventDataHDF5{
		evt_number: int32(ed.EventNumber),
		run_number: int32(ed.RunNumber),
		timestamp:  uint64(ed.Header.Timestamp().UnixMicro()),
		status:     int32(status),
		skipped:    boolToInt8(ed.SkippedByClustering),
		n_charge:   int32(len(ed.ChargeClusters)),
		n_scint:    int32(len(ed.ScintillationClusters)),
	}
	if err := writeEntryToTable(w.EventTable, evt, w.EvtCounter); err != nil {
		return fmt.Errorf("error writing event %d: %w", ed.EventNumber, err)
	}
	w.EvtCounter++

	scints := make([]ScintillationClusterHDF5, len(ed.ScintillationClusters))
	for i, sc := range ed.ScintillationClusters {
		scints[i] = ScintillationClusterHDF5{
			evt_number: int32(ed.EventNumber),
			cluster:    int32(i),
			time:       sc.Time,
			algorithm:  int32(sc.AlgorithmUsed()),
			n_apd:      int32(len(sc.APDSignals)),
			n_charge:   int32(len(sc.ChargeClusters)),
		}
	}
	if err := writeArrayToTable(w.ScintTable, &scints, w.ScintCounter); err != nil {
		return fmt.Errorf("error writing scintillation clusters of event %d: %w", ed.EventNumber, err)
	}
	w.ScintCounter += len(scints)

	charges := make([]ChargeClusterHDF5, len(ed.ChargeClusters))
	for i, cc := range ed.ChargeClusters {
		charges[i] = ChargeClusterHDF5{
			evt_number:             int32(ed.EventNumber),
			cluster:                int32(i),
			detector_half:          int32(cc.DetectorHalf),
			u:                      cc.U,
			v:                      cc.V,
			x:                      cc.X,
			y:                      cc.Y,
			z:                      cc.Z,
			u_rms:                  cc.URMS,
			v_rms:                  cc.VRMS,
			z_rms:                  cc.ZRMS,
			raw_energy:             cc.RawEnergy,
			raw_energy_error:       cc.RawEnergyError,
			corrected_energy:       cc.CorrectedEnergy,
			corrected_energy_error: cc.CorrectedEnergyError,
			induction_energy:       cc.InductionEnergy,
			induction_energy_error: cc.InductionEnergyError,
			v_amplitude:            cc.AmplitudeInVChannels,
			v_corrected_amplitude:  cc.CorrectedAmplitudeInVChannels,
			collection_time:        cc.CollectionTime,
			drift_time:             cc.DriftTime,
			scint_cluster:          int32(slices.Index(ed.ScintillationClusters, cc.Scint)),
			n_u_signals:            int32(len(cc.UWireSignals)),
			n_v_signals:            int32(len(cc.VWireSignals)),
			n_induction:            int32(len(cc.InductionSignals)),
		}
	}
	if err := writeArrayToTable(w.ChargeTable, &charges, w.ChargeCounter); err != nil {
		return fmt.Errorf("error writing charge clusters of event %d: %w", ed.EventNumber, err)
	}
	w.ChargeCounter += len(charges)

	if debug != nil && w.DebugGroup != nil {
		return w.writeDebug(debug)
	}
	return nil
}

func (w *Writer) writeDebug(debug *DebugData) error {
	candidates := make([]CandidateHDF5, len(debug.Candidates))
	for i, c := range debug.Candidates {
		candidates[i] = CandidateHDF5{
			evt_number:  int32(debug.EventNumber),
			z:           c.Z,
			u_energy:    c.UEnergy,
			v_energy:    c.VEnergy,
			time:        c.Time,
			time_diff:   c.TimeDiff,
			nl_position: c.NLPosition,
			nl_energy:   c.NLEnergy,
			nl_time:     c.NLTime,
		}
	}
	if err := writeArrayToTable(w.CandidatesTable, &candidates, w.CandidateCounter); err != nil {
		return fmt.Errorf("error writing debug candidates of event %d: %w", debug.EventNumber, err)
	}
	w.CandidateCounter += len(candidates)

	matched := make([]MatchedHDF5, len(debug.Matched))
	for i, m := range debug.Matched {
		matched[i] = MatchedHDF5{
			evt_number: int32(debug.EventNumber),
			z:          m.Z,
			u_energy:   m.UEnergy,
			v_energy:   m.VEnergy,
			time:       m.Time,
			time_diff:  m.TimeDiff,
			cost:       int32(m.Cost),
			nl_energy:  m.NLEnergy,
			nl_time:    m.NLTime,
			u_combined: boolToInt8(m.UCombined),
			v_combined: boolToInt8(m.VCombined),
		}
	}
	if err := writeArrayToTable(w.MatchedTable, &matched, w.MatchedCounter); err != nil {
		return fmt.Errorf("error writing debug matches of event %d: %w", debug.EventNumber, err)
	}
	w.MatchedCounter += len(matched)
	return nil
}

type closer interface {
	Close() error
}

func (w *Writer) Close() error {
	if configuration.Verbosity > 0 {
		logger.Info(fmt.Sprintf("Closing file hdf writer %s", w.Filename), "writer")
	}
	var errs []error

	// Innermost objects first, the file last.
	toClose := []struct {
		name string
		obj  closer
	}{
		{"event table", w.EventTable},
		{"run info table", w.RunInfoTable},
		{"charge cluster table", w.ChargeTable},
		{"scintillation cluster table", w.ScintTable},
		{"debug candidates table", w.CandidatesTable},
		{"debug matched table", w.MatchedTable},
		{"run group", w.RunGroup},
		{"clusters group", w.ClustersGroup},
		{"debug group", w.DebugGroup},
		{"file", w.File},
	}
	for _, c := range toClose {
		if isNil(c.obj) {
			continue
		}
		if err := c.obj.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing %s: %w", c.name, err))
		}
	}
	return errors.Join(errs...)
}

func isNil(c closer) bool {
	switch v := c.(type) {
	case *hdf5.Dataset:
		return v == nil
	case *hdf5.Group:
		return v == nil
	case *hdf5.File:
		return v == nil
	}
	return c == nil
}
