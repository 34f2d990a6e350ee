package clustering

type Configuration struct {
	MaxEvents        int    `json:"max_events" yaml:"max_events"`
	Verbosity        int    `json:"verbosity" yaml:"verbosity"`
	Skip             int    `json:"skip" yaml:"skip"`
	FileIn           string `json:"file_in" yaml:"file_in"`
	FileOut          string `json:"file_out" yaml:"file_out"`
	NoDB             bool   `json:"no_db" yaml:"no_db"`
	Host             string `json:"host" yaml:"host"`
	User             string `json:"user" yaml:"user"`
	Passwd           string `json:"pass" yaml:"pass"`
	DBName           string `json:"dbname" yaml:"dbname"`
	CalibSnapshot    string `json:"calib_snapshot" yaml:"calib_snapshot"`
	CalibFlavor      string `json:"calib_flavor" yaml:"calib_flavor"`
	WriteData        bool   `json:"write_data" yaml:"write_data"`
	WriteDebug       bool   `json:"write_debug" yaml:"write_debug"`
	CompressionLevel int    `json:"compression_level" yaml:"compression_level"`

	// Time windows are in ns.
	APDMatchTime              float64 `json:"apd_match_time" yaml:"apd_match_time"`
	ChargeMatchTime           float64 `json:"charge_match_time" yaml:"charge_match_time"`
	ChargeVMatchTime          float64 `json:"charge_v_match_time" yaml:"charge_v_match_time"`
	UIndMatchTime             float64 `json:"u_ind_match_time" yaml:"u_ind_match_time"`
	VTimeOffsetPerChannelDiff float64 `json:"v_time_offset_per_channel" yaml:"v_time_offset_per_channel"`

	// Values <= 0 disable the override.
	UserDriftVelocity  float64 `json:"user_drift_velocity" yaml:"user_drift_velocity"`
	UserCollectionTime float64 `json:"user_collection_time" yaml:"user_collection_time"`

	NLLThreshold    int  `json:"nll_threshold" yaml:"nll_threshold"`
	MaxCost         int  `json:"max_cost" yaml:"max_cost"`
	ReasonableCost  int  `json:"reasonable_cost" yaml:"reasonable_cost"`
	IgnoreInduction bool `json:"ignore_induction" yaml:"ignore_induction"`
	NoMaxDriftTime  bool `json:"no_max_drift_time" yaml:"no_max_drift_time"`
	UseNewEnergyPDF bool `json:"use_new_energy_pdf" yaml:"use_new_energy_pdf"`
}

// DefaultConfiguration returns the values used when a configuration file
// leaves a field unset.
func DefaultConfiguration() Configuration {
	return Configuration{
		MaxEvents:        1000000000,
		Verbosity:        0,
		Skip:             0,
		NoDB:             false,
		Host:             "exo-db.slac.stanford.edu",
		User:             "exoreader",
		Passwd:           "readonly",
		DBName:           "rundb",
		CalibFlavor:      "vanilla",
		WriteData:        true,
		WriteDebug:       false,
		CompressionLevel: 4,

		APDMatchTime:              6 * Microsecond,
		ChargeMatchTime:           3.5 * Microsecond,
		ChargeVMatchTime:          4.5 * Microsecond,
		UIndMatchTime:             50 * Microsecond,
		VTimeOffsetPerChannelDiff: -2.97 * Microsecond,

		UserDriftVelocity:  -1,
		UserCollectionTime: -1,

		NLLThreshold:   8000,
		MaxCost:        10000000,
		ReasonableCost: 682,
	}
}

var configuration = DefaultConfiguration()

func SetConfiguration(config Configuration) {
	configuration = config
}
