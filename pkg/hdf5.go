package clustering

import (
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
)

type EventDataHDF5 struct {
	evt_number int32
	run_number int32
	timestamp  uint64
	status     int32
	skipped    int8
	n_charge   int32
	n_scint    int32
}

type RunInfoHDF5 struct {
	run_number int32
	job_id     [STRLEN]byte
}

type ChargeClusterHDF5 struct {
	evt_number             int32
	cluster                int32
	detector_half          int32
	u                      float64
	v                      float64
	x                      float64
	y                      float64
	z                      float64
	u_rms                  float64
	v_rms                  float64
	z_rms                  float64
	raw_energy             float64
	raw_energy_error       float64
	corrected_energy       float64
	corrected_energy_error float64
	induction_energy       float64
	induction_energy_error float64
	v_amplitude            float64
	v_corrected_amplitude  float64
	collection_time        float64
	drift_time             float64
	scint_cluster          int32
	n_u_signals            int32
	n_v_signals            int32
	n_induction            int32
}

type ScintillationClusterHDF5 struct {
	evt_number int32
	cluster    int32
	time       float64
	algorithm  int32
	n_apd      int32
	n_charge   int32
}

type CandidateHDF5 struct {
	evt_number  int32
	z           float64
	u_energy    float64
	v_energy    float64
	time        float64
	time_diff   float64
	nl_position float64
	nl_energy   float64
	nl_time     float64
}

type MatchedHDF5 struct {
	evt_number int32
	z          float64
	u_energy   float64
	v_energy   float64
	time       float64
	time_diff  float64
	cost       int32
	nl_energy  float64
	nl_time    float64
	u_combined int8
	v_combined int8
}

// STRLEN fits a textual UUID.
const STRLEN = 40

func convertToHdf5String(s string) [STRLEN]byte {
	var byteArray [STRLEN]byte
	copy(byteArray[:], s)
	return byteArray
}

func boolToInt8(b bool) int8 {
	if b {
		return 1
	}
	return 0
}

func openFile(fname string) (*hdf5.File, error) {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, &ErrOpenFile{Filename: fname, Err: err}
	}
	return f, nil
}

func createGroup(file *hdf5.File, groupName string) (*hdf5.Group, error) {
	g, err := file.CreateGroup(groupName)
	if err != nil {
		return nil, &ErrCreateGroup{GroupName: groupName, Err: err}
	}
	return g, nil
}

func createTable(group *hdf5.Group, name string, datatype interface{}) (*hdf5.Dataset, error) {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	fileSpace, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer fileSpace.Close()

	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer plist.Close()

	chunks := []uint{32768}
	plist.SetChunk(chunks)
	plist.SetDeflate(configuration.CompressionLevel)

	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}

	dset, err := group.CreateDatasetWith(name, dtype, fileSpace, plist)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	return dset, nil
}

func writeEntryToTable[T any](dataset *hdf5.Dataset, data T, counter int) error {
	array := []T{data}
	return writeArrayToTable(dataset, &array, counter)
}

// writeArrayToTable appends data after the first counter rows of dataset.
// The slice must be allocated with its final length, hdf5 reads it through
// its backing array.
func writeArrayToTable[T any](dataset *hdf5.Dataset, data *[]T, counter int) error {
	length := uint(len(*data))
	if length == 0 {
		return nil
	}
	dims := []uint{length}
	dataspace, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return fmt.Errorf("error creating dataspace: %w", err)
	}
	defer dataspace.Close()

	// extend
	rowsInFile := uint(counter)
	newsize := []uint{rowsInFile + length}
	if err := dataset.Resize(newsize); err != nil {
		return fmt.Errorf("error resizing table: %w", err)
	}
	filespace := dataset.Space()
	defer filespace.Close()

	start := []uint{rowsInFile}
	count := []uint{length}
	if err := filespace.SelectHyperslab(start, nil, count, nil); err != nil {
		return fmt.Errorf("error selecting hyperslab: %w", err)
	}

	if err := dataset.WriteSubset(data, dataspace, filespace); err != nil {
		return fmt.Errorf("error writing table: %w", err)
	}
	return nil
}
