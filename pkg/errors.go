package clustering

import (
	"errors"
	"fmt"
)

var (
	// ErrCombinationLimit is returned by CreateCombinations when too many
	// bundles coincide in time to enumerate their merges.
	ErrCombinationLimit = errors.New("too many signals at the same time")
	ErrNonSquareMatrix  = errors.New("cost matrix is not square")
	ErrNoCalibration    = errors.New("no calibration record found")
)

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error { return e.Err }

// ErrCreateGroup represents an error when creating a group.
type ErrCreateGroup struct {
	GroupName string
	Err       error
}

func (e *ErrCreateGroup) Error() string {
	return fmt.Sprintf("error creating group %q: %v", e.GroupName, e.Err)
}

func (e *ErrCreateGroup) Unwrap() error { return e.Err }

// ErrCreateTable represents an error when creating a table.
type ErrCreateTable struct {
	TableName string
	Err       error
}

func (e *ErrCreateTable) Error() string {
	return fmt.Sprintf("error creating table %q: %v", e.TableName, e.Err)
}

func (e *ErrCreateTable) Unwrap() error { return e.Err }

// ErrCalibrationQuery wraps a failed calibration lookup.
type ErrCalibrationQuery struct {
	Flavor    string
	Timestamp int64
	Err       error
}

func (e *ErrCalibrationQuery) Error() string {
	return fmt.Sprintf("error querying %q calibration at %d: %v", e.Flavor, e.Timestamp, e.Err)
}

func (e *ErrCalibrationQuery) Unwrap() error { return e.Err }
