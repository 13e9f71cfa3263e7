package featureflag

type Flag string

const (
	// FlagEnablePprof exposes the pprof handlers on the admin server.
	FlagEnablePprof Flag = "ENABLE_PPROF"

	// FlagEnableSmokeTest exposes the smoke test trigger on the admin
	// server.
	FlagEnableSmokeTest Flag = "ENABLE_SMOKE_TEST"
)
