package clustering

import (
	"errors"
	"fmt"
	"time"
)

type DriftStatus int

const (
	FirstCall DriftStatus = iota
	UserSet
	Database
	// DBUpdate marks collection times waiting to be refreshed from a
	// calibration record the drift velocity just fetched.
	DBUpdate
	DefaultMC
	DefaultQueryFail
	DefaultQueryDisabled
)

func (s DriftStatus) String() string {
	switch s {
	case FirstCall:
		return "FirstCall"
	case UserSet:
		return "UserSet"
	case Database:
		return "Database"
	case DBUpdate:
		return "DBUpdate"
	case DefaultMC:
		return "DefaultMC"
	case DefaultQueryFail:
		return "DefaultQueryFail"
	case DefaultQueryDisabled:
		return "DefaultQueryDisabled"
	default:
		return "Unknown"
	}
}

// DriftCalibration is one calibration record. Velocities are in mm/ns,
// times in ns.
type DriftCalibration struct {
	DriftVelocityTPC1  float64
	DriftVelocityTPC2  float64
	CollectionTimeTPC1 float64
	CollectionTimeTPC2 float64
	ValidFrom          time.Time
	ValidTo            time.Time
}

// IsValid reports whether t lies in [ValidFrom, ValidTo).
func (c *DriftCalibration) IsValid(t time.Time) bool {
	return !t.Before(c.ValidFrom) && t.Before(c.ValidTo)
}

// CalibrationSource looks up the drift calibration valid for an event.
type CalibrationSource interface {
	DriftCalibration(flavor string, header EventHeader) (*DriftCalibration, error)
}

// DriftState holds the drift velocity and collection time of both TPC halves
// for the current event.
type DriftState struct {
	VelocityTPC1       float64
	VelocityTPC2       float64
	CollectionTimeTPC1 float64
	CollectionTimeTPC2 float64
	VelocityStatus     DriftStatus
	CollectionStatus   DriftStatus
}

func (s DriftState) Velocity(side TPCSide) float64 {
	if side == North {
		return s.VelocityTPC1
	}
	return s.VelocityTPC2
}

func (s DriftState) CollectionTime(side TPCSide) float64 {
	if side == North {
		return s.CollectionTimeTPC1
	}
	return s.CollectionTimeTPC2
}

// DriftResolver decides, event by event, which drift velocity and collection
// time to use. User values come first, then Monte-Carlo defaults, then the
// calibration database. Calibration records are cached while valid, and a
// failed query is not retried.
type DriftResolver struct {
	userDriftVelocity  float64
	userCollectionTime float64
	flavor             string
	source             CalibrationSource

	calib *DriftCalibration
	state DriftState
}

// NewDriftResolver builds a resolver. A nil source disables database lookups.
func NewDriftResolver(config Configuration, source CalibrationSource) *DriftResolver {
	flavor := config.CalibFlavor
	if flavor == "" {
		flavor = "vanilla"
	}
	return &DriftResolver{
		userDriftVelocity:  config.UserDriftVelocity,
		userCollectionTime: config.UserCollectionTime,
		flavor:             flavor,
		source:             source,
	}
}

func (r *DriftResolver) State() DriftState { return r.state }

// Resolve updates the drift velocity and then the collection time for the
// event described by header.
func (r *DriftResolver) Resolve(header EventHeader) DriftState {
	r.setDriftVelocity(header)
	r.setCollectionTime(header)
	return r.state
}

func (r *DriftResolver) query(header EventHeader) *DriftCalibration {
	if r.source == nil {
		return nil
	}
	calib, err := r.source.DriftCalibration(r.flavor, header)
	if err != nil {
		if !errors.Is(err, ErrNoCalibration) {
			logger.Error(fmt.Errorf("drift calibration lookup failed: %w", err).Error())
		}
		return nil
	}
	return calib
}

func (r *DriftResolver) fallbackStatus() DriftStatus {
	if r.source == nil {
		return DefaultQueryDisabled
	}
	return DefaultQueryFail
}

func (r *DriftResolver) setDriftVelocity(header EventHeader) {
	s := &r.state
	if r.userDriftVelocity > 0 {
		if s.VelocityStatus != UserSet {
			s.VelocityTPC1 = r.userDriftVelocity
			s.VelocityTPC2 = r.userDriftVelocity
			if s.VelocityStatus != FirstCall {
				logger.Info("changing drift velocity mid-job", "drift")
			}
			logger.Info(fmt.Sprintf("using user-set drift velocity = %g mm/ns", r.userDriftVelocity), "drift")
			s.VelocityStatus = UserSet
		}
		return
	}

	if header.IsMonteCarloEvent {
		if s.VelocityStatus != DefaultMC {
			s.VelocityTPC1 = DriftVelocity
			s.VelocityTPC2 = DriftVelocity
			if s.VelocityStatus != FirstCall {
				logger.Info("changing drift velocity mid-job", "drift")
			}
			logger.Info(fmt.Sprintf("running on monte carlo data; using drift velocity = %g mm/ns", DriftVelocity), "drift")
			s.VelocityStatus = DefaultMC
		}
		return
	}

	if r.calib != nil && r.calib.IsValid(header.Timestamp()) {
		if s.VelocityStatus != Database {
			s.VelocityTPC1 = r.calib.DriftVelocityTPC1
			s.VelocityTPC2 = r.calib.DriftVelocityTPC2
			logger.Info("changing drift velocity mid-job; reusing database values that are still valid", "drift")
			s.VelocityStatus = Database
		}
		return
	}

	fallback := r.fallbackStatus()
	if s.VelocityStatus != fallback {
		if r.source != nil {
			logger.Info("querying calibration database for drift velocity", "drift")
			if s.VelocityStatus == Database {
				logger.Info("the old calibration is no longer valid", "drift")
			}
		}
		r.calib = r.query(header)
		if r.calib != nil {
			s.VelocityTPC1 = r.calib.DriftVelocityTPC1
			s.VelocityTPC2 = r.calib.DriftVelocityTPC2
			logger.Info(fmt.Sprintf("retrieved drift velocity from database: TPC1 = %g mm/ns, TPC2 = %g mm/ns",
				s.VelocityTPC1, s.VelocityTPC2), "drift")
			s.VelocityStatus = Database
			if s.CollectionStatus == Database {
				s.CollectionStatus = DBUpdate
			}
			return
		}
		s.VelocityTPC1 = DriftVelocity
		s.VelocityTPC2 = DriftVelocity
		logger.Warning(fmt.Sprintf("no drift velocity from database; henceforth using default drift velocity = %g mm/ns", DriftVelocity), "drift")
		s.VelocityStatus = fallback
	}
}

func (r *DriftResolver) setCollectionTime(header EventHeader) {
	s := &r.state
	if r.userCollectionTime > 0 {
		if s.CollectionStatus != UserSet {
			s.CollectionTimeTPC1 = r.userCollectionTime
			s.CollectionTimeTPC2 = r.userCollectionTime
			if s.CollectionStatus != FirstCall {
				logger.Info("changing collection time mid-job", "drift")
			}
			logger.Info(fmt.Sprintf("using user-set collection time = %g ns", r.userCollectionTime), "drift")
			s.CollectionStatus = UserSet
		}
		return
	}

	if header.IsMonteCarloEvent {
		if s.CollectionStatus != DefaultMC {
			s.CollectionTimeTPC1 = CollectionTime
			s.CollectionTimeTPC2 = CollectionTime
			if s.CollectionStatus != FirstCall {
				logger.Info("changing collection time mid-job", "drift")
			}
			logger.Info(fmt.Sprintf("running on monte carlo data; using collection time = %g ns", CollectionTime), "drift")
			s.CollectionStatus = DefaultMC
		}
		return
	}

	if r.calib != nil {
		// The drift velocity fetched a new record, or this is the first event.
		if s.CollectionStatus == DBUpdate || s.CollectionStatus == FirstCall {
			s.CollectionTimeTPC1 = r.calib.CollectionTimeTPC1
			s.CollectionTimeTPC2 = r.calib.CollectionTimeTPC2
			s.CollectionStatus = Database
		}
		if r.calib.IsValid(header.Timestamp()) {
			if s.CollectionStatus != Database {
				s.CollectionTimeTPC1 = r.calib.CollectionTimeTPC1
				s.CollectionTimeTPC2 = r.calib.CollectionTimeTPC2
				logger.Info("changing collection time mid-job; reusing database values that are still valid", "drift")
				s.CollectionStatus = Database
			}
			return
		}
	}

	fallback := r.fallbackStatus()
	if s.CollectionStatus != fallback {
		if r.source != nil {
			logger.Info("querying calibration database for collection time", "drift")
			if s.CollectionStatus == Database {
				logger.Info("the old calibration is no longer valid", "drift")
			}
		}
		r.calib = r.query(header)
		if r.calib != nil {
			s.CollectionTimeTPC1 = r.calib.CollectionTimeTPC1
			s.CollectionTimeTPC2 = r.calib.CollectionTimeTPC2
			logger.Info(fmt.Sprintf("retrieved collection time from database: TPC1 = %g ns, TPC2 = %g ns",
				s.CollectionTimeTPC1, s.CollectionTimeTPC2), "drift")
			s.CollectionStatus = Database
			return
		}
		s.CollectionTimeTPC1 = CollectionTime
		s.CollectionTimeTPC2 = CollectionTime
		logger.Warning(fmt.Sprintf("no collection time from database; henceforth using default collection time = %g ns", CollectionTime), "drift")
		s.CollectionStatus = fallback
	}
}
