package clustering

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recordingLogger struct {
	debugs   []string
	infos    []string
	warnings []string
	errors   []string
}

func (l *recordingLogger) Debug(msg, _ string)   { l.debugs = append(l.debugs, msg) }
func (l *recordingLogger) Info(msg, _ string)    { l.infos = append(l.infos, msg) }
func (l *recordingLogger) Warning(msg, _ string) { l.warnings = append(l.warnings, msg) }
func (l *recordingLogger) Error(msg string)      { l.errors = append(l.errors, msg) }

func (l *recordingLogger) count() int {
	return len(l.debugs) + len(l.infos) + len(l.warnings) + len(l.errors)
}

type fakeSource struct {
	records []DriftCalibration
	err     error
	queries int
}

func (s *fakeSource) DriftCalibration(_ string, header EventHeader) (*DriftCalibration, error) {
	s.queries++
	if s.err != nil {
		return nil, s.err
	}
	for i := range s.records {
		if s.records[i].IsValid(header.Timestamp()) {
			calib := s.records[i]
			return &calib, nil
		}
	}
	return nil, ErrNoCalibration
}

const calibStart = 1300000000

var testCalibration = DriftCalibration{
	DriftVelocityTPC1:  0.00171,
	DriftVelocityTPC2:  0.00172,
	CollectionTimeTPC1: 2900,
	CollectionTimeTPC2: 2910,
	ValidFrom:          time.Unix(calibStart, 0),
	ValidTo:            time.Unix(calibStart+1000, 0),
}

func dataHeader(seconds int64) EventHeader {
	return EventHeader{TriggerSeconds: seconds}
}

func TestDriftResolverCachesValidCalibration(t *testing.T) {
	log := &recordingLogger{}
	SetLogger(log)
	defer SetLogger(nil)

	source := &fakeSource{records: []DriftCalibration{testCalibration}}
	r := NewDriftResolver(DefaultConfiguration(), source)

	state := r.Resolve(dataHeader(calibStart + 10))
	assert.Equal(t, 1, source.queries)
	assert.Equal(t, DriftState{
		VelocityTPC1:       0.00171,
		VelocityTPC2:       0.00172,
		CollectionTimeTPC1: 2900,
		CollectionTimeTPC2: 2910,
		VelocityStatus:     Database,
		CollectionStatus:   Database,
	}, state)

	logged := log.count()
	r.Resolve(dataHeader(calibStart + 500))
	assert.Equal(t, 1, source.queries)
	assert.Equal(t, logged, log.count())
}

func TestDriftResolverStaleCalibration(t *testing.T) {
	log := &recordingLogger{}
	SetLogger(log)
	defer SetLogger(nil)

	source := &fakeSource{records: []DriftCalibration{testCalibration}}
	r := NewDriftResolver(DefaultConfiguration(), source)
	r.Resolve(dataHeader(calibStart + 10))

	state := r.Resolve(dataHeader(calibStart + 5000))
	assert.Equal(t, 3, source.queries)
	assert.Equal(t, DefaultQueryFail, state.VelocityStatus)
	assert.Equal(t, DefaultQueryFail, state.CollectionStatus)
	assert.Equal(t, DriftVelocity, state.VelocityTPC1)
	assert.Equal(t, CollectionTime, state.CollectionTimeTPC2)
	assert.Len(t, log.warnings, 2)
	assert.Empty(t, log.errors)

	// A failed lookup is not retried.
	r.Resolve(dataHeader(calibStart + 6000))
	assert.Equal(t, 3, source.queries)
}

func TestDriftResolverQueryError(t *testing.T) {
	log := &recordingLogger{}
	SetLogger(log)
	defer SetLogger(nil)

	source := &fakeSource{err: errors.New("connection refused")}
	r := NewDriftResolver(DefaultConfiguration(), source)

	state := r.Resolve(dataHeader(calibStart))
	assert.Equal(t, DefaultQueryFail, state.VelocityStatus)
	assert.Equal(t, 2, source.queries)
	assert.Len(t, log.errors, 2)

	r.Resolve(dataHeader(calibStart + 1))
	assert.Equal(t, 2, source.queries)
}

func TestDriftResolverDefaults(t *testing.T) {
	tests := []struct {
		name           string
		config         func(*Configuration)
		source         CalibrationSource
		header         EventHeader
		wantStatus     DriftStatus
		wantVelocity   float64
		wantCollection float64
	}{
		{
			name:           "no database",
			header:         dataHeader(calibStart),
			wantStatus:     DefaultQueryDisabled,
			wantVelocity:   DriftVelocity,
			wantCollection: CollectionTime,
		},
		{
			name:           "monte carlo",
			source:         &fakeSource{records: []DriftCalibration{testCalibration}},
			header:         EventHeader{TriggerSeconds: calibStart, IsMonteCarloEvent: true},
			wantStatus:     DefaultMC,
			wantVelocity:   DriftVelocity,
			wantCollection: CollectionTime,
		},
		{
			name: "user set",
			config: func(c *Configuration) {
				c.UserDriftVelocity = 0.002
				c.UserCollectionTime = 3000
			},
			source:         &fakeSource{records: []DriftCalibration{testCalibration}},
			header:         EventHeader{TriggerSeconds: calibStart, IsMonteCarloEvent: true},
			wantStatus:     UserSet,
			wantVelocity:   0.002,
			wantCollection: 3000,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfiguration()
			if tt.config != nil {
				tt.config(&config)
			}
			r := NewDriftResolver(config, tt.source)
			state := r.Resolve(tt.header)

			assert.Equal(t, tt.wantStatus, state.VelocityStatus)
			assert.Equal(t, tt.wantStatus, state.CollectionStatus)
			assert.Equal(t, tt.wantVelocity, state.Velocity(South))
			assert.Equal(t, tt.wantCollection, state.CollectionTime(North))
			if fake, ok := tt.source.(*fakeSource); ok {
				assert.Zero(t, fake.queries)
			}
		})
	}
}

func TestDriftResolverSwitchesToNewRecord(t *testing.T) {
	next := testCalibration
	next.DriftVelocityTPC1 = 0.00180
	next.CollectionTimeTPC1 = 2800
	next.ValidFrom = testCalibration.ValidTo
	next.ValidTo = next.ValidFrom.Add(time.Hour)

	source := &fakeSource{records: []DriftCalibration{testCalibration, next}}
	r := NewDriftResolver(DefaultConfiguration(), source)
	r.Resolve(dataHeader(calibStart))

	state := r.Resolve(dataHeader(calibStart + 1500))
	assert.Equal(t, 0.00180, state.VelocityTPC1)
	assert.Equal(t, 2800.0, state.CollectionTimeTPC1)
	assert.Equal(t, Database, state.CollectionStatus)
	assert.Equal(t, 2, source.queries)
}
