package clustering

import (
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

const defaultMySQLPort = "3306"

// calibrationDSN builds the MySQL data source name of the calibration
// database. Host may carry its own port.
func calibrationDSN(config Configuration) string {
	dsn := mysql.NewConfig()
	dsn.User = config.User
	dsn.Passwd = config.Passwd
	dsn.Net = "tcp"
	dsn.Addr = config.Host
	if !strings.Contains(config.Host, ":") {
		dsn.Addr = net.JoinHostPort(config.Host, defaultMySQLPort)
	}
	dsn.DBName = config.DBName
	dsn.ParseTime = true
	return dsn.FormatDSN()
}

// ConnectToDatabase opens the calibration database named in config.
func ConnectToDatabase(config Configuration) (*sqlx.DB, error) {
	db, err := sqlx.Connect("mysql", calibrationDSN(config))
	if err != nil {
		return nil, fmt.Errorf("connecting to %s/%s as %s: %w", config.Host, config.DBName, config.User, err)
	}
	return db, nil
}

// OpenCalibrationSnapshot opens an offline copy of the calibration tables
// stored in a sqlite file.
func OpenCalibrationSnapshot(filename string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", filename)
	if err != nil {
		return nil, &ErrOpenFile{Filename: filename, Err: err}
	}
	return db, nil
}

// driftVelocityRow is one row of the DriftVelocity table. Validity bounds are
// unix seconds, velocities mm/us and collection times us.
type driftVelocityRow struct {
	Flavor             string  `db:"Flavor"`
	ValidFrom          int64   `db:"ValidFrom"`
	ValidTo            int64   `db:"ValidTo"`
	DriftVelocityTPC1  float64 `db:"DriftVelocityTPC1"`
	DriftVelocityTPC2  float64 `db:"DriftVelocityTPC2"`
	CollectionTimeTPC1 float64 `db:"CollectionTimeTPC1"`
	CollectionTimeTPC2 float64 `db:"CollectionTimeTPC2"`
}

func (r driftVelocityRow) calibration() *DriftCalibration {
	return &DriftCalibration{
		DriftVelocityTPC1:  r.DriftVelocityTPC1 * Millimeter / Microsecond,
		DriftVelocityTPC2:  r.DriftVelocityTPC2 * Millimeter / Microsecond,
		CollectionTimeTPC1: r.CollectionTimeTPC1 * Microsecond,
		CollectionTimeTPC2: r.CollectionTimeTPC2 * Microsecond,
		ValidFrom:          time.Unix(r.ValidFrom, 0),
		ValidTo:            time.Unix(r.ValidTo, 0),
	}
}

// CalibrationStore serves drift calibrations from the calibration database.
type CalibrationStore struct {
	db *sqlx.DB
}

func NewCalibrationStore(db *sqlx.DB) *CalibrationStore {
	return &CalibrationStore{db: db}
}

// DriftCalibration returns the most recent record of flavor valid at the
// event time. ErrNoCalibration is returned when none covers it.
func (s *CalibrationStore) DriftCalibration(flavor string, header EventHeader) (*DriftCalibration, error) {
	timestamp := header.Timestamp().Unix()
	query := s.db.Rebind(`SELECT Flavor, ValidFrom, ValidTo, DriftVelocityTPC1, DriftVelocityTPC2,
	CollectionTimeTPC1, CollectionTimeTPC2 FROM DriftVelocity
	WHERE Flavor = ? AND ValidFrom <= ? AND ValidTo > ?
	ORDER BY ValidFrom DESC LIMIT 1`)

	if configuration.Verbosity > 2 {
		logger.Info(fmt.Sprintf("Query: %s [%s, %d]", query, flavor, timestamp), "database")
	}

	row := driftVelocityRow{}
	err := s.db.Get(&row, query, flavor, timestamp, timestamp)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("flavor %q at %d: %w", flavor, timestamp, ErrNoCalibration)
	}
	if err != nil {
		return nil, &ErrCalibrationQuery{Flavor: flavor, Timestamp: timestamp, Err: err}
	}
	return row.calibration(), nil
}
