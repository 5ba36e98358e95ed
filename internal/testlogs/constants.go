package testlogs

// File permission constants.
const (
	dirPermission  = 0o755
	filePermission = 0o600
)

// Generator limits.
const (
	maxPairAttempts = 64
	suffixLetters   = 26
	suffixLength    = 3
)

// Defaults applied by Normalize.
const (
	DefaultStations = 60
	DefaultQSOs     = 600
	DefaultSeed     = 20220116
)

//nolint:gochecknoglobals // fixed generator tables
var (
	prefixes = []string{"LY", "ES", "YL", "OH", "SM", "LA", "OZ", "TF"}
	counties = []string{"HA", "VI", "AB", "KA", "PA", "TA", "UT", "MA", "SA", "VA", "JO", "LV"}
)
