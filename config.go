package mtclient

// DeviceConfig carries the connection parameters sent in every
// InitConnection (spec.md §6 "Environment / config").
type DeviceConfig struct {
	DeviceModel    string
	SystemVersion  string
	AppVersion     string
	SystemLangCode string
	LangCode       string
}

// DefaultDeviceConfig mirrors the teacher's AppConfig defaults
// (mtproto.go's NewMTProto), generalized to this module's name.
func DefaultDeviceConfig() DeviceConfig {
	return DeviceConfig{
		DeviceModel:    "Unknown",
		SystemVersion:  "unknown",
		AppVersion:     "0.0.1",
		SystemLangCode: "en",
		LangCode:       "en",
	}
}

// Config is the api_id/api_hash pair plus device parameters a Client needs
// to bootstrap a connection (spec.md §6).
type Config struct {
	APIID   int32
	APIHash string
	Device  DeviceConfig

	// Layer is the fixed TL protocol-layer number sent in InitConnection
	// (spec.md §6 "TL layer"). Changing it implies a schema break.
	Layer int32

	// FloodSleepThreshold bounds how long the invoker will sleep through a
	// FLOOD_WAIT before surfacing it to the caller (spec.md §4.5).
	FloodSleepThreshold int32
}
