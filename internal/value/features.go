package value

// Feature switches. Defaults describe a full host build; the atmo_* build
// tags flip them in init functions of their own files.
var (
	staticSize      = 0 // 0 means unbounded payloads
	listSupported   = true
	floatSupported  = true
	doubleSupported = true
	formatSupported = true
)

// StaticSize is the payload bound used by the atmo_static profile.
const StaticSize = 64

// Features describes the profile this binary was built with.
type Features struct {
	StaticSize int  `json:"static_size"`
	List       bool `json:"list"`
	Float      bool `json:"float"`
	Double     bool `json:"double"`
	Format     bool `json:"format"`
}

// BuildFeatures reports the active feature profile.
func BuildFeatures() Features {
	return Features{
		StaticSize: staticSize,
		List:       listSupported,
		Float:      floatSupported,
		Double:     doubleSupported,
		Format:     formatSupported,
	}
}
