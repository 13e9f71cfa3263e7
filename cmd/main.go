package main

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"reflect"
	"syscall"

	"github.com/aukilabs/go-tooling/pkg/cli"
	"github.com/aukilabs/go-tooling/pkg/logs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/encoding/json"
	"github.com/voxelforge/voxtree/featureflag"
	voxhttp "github.com/voxelforge/voxtree/http"
	"github.com/voxelforge/voxtree/smoketest"
)

var (
	// The voxtree version number. Set at build.
	version = "v0.1.0"

	infoGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name:        "voxtree_info",
		Help:        "Voxtree information.",
		ConstLabels: prometheus.Labels{"version": version},
	})
)

// This will effectively disable obfuscation of the config struct.
// Without it, the keys would get obfuscated causing the cli package to
// generate garbled command-line options.
// https://github.com/burrowers/garble/issues/403
var _ = reflect.TypeOf(config{})

type config struct {
	AdminAddr    string          `cli:""        env:"VOXTREE_ADMIN_ADDR"    help:"Admin listening address."`
	LogLevel     string          `cli:""        env:"VOXTREE_LOG_LEVEL"     help:"Log level (debug|info|warning|error)."`
	LogIndent    bool            `cli:""        env:"VOXTREE_LOG_INDENT"    help:"Indent logs."`
	FeatureFlags []string        `cli:",hidden" env:"VOXTREE_FEATURE_FLAGS" help:"Comma separated feature flags."`
	SmokeTest    smokeTestConfig `cli:",hidden" env:"-"                     help:"Smoke test configuration."`
	Version      bool            `cli:""        env:"-"                     help:"Show version."`
	Help         bool            `cli:""        env:"-"                     help:"Show help."`
}

type smokeTestConfig struct {
	Seed       int64 `cli:",hidden" env:"VOXTREE_SMOKE_TEST_SEED"       help:"Seed for the smoke test operation sequence. 0 picks the current time."`
	Operations int   `cli:",hidden" env:"VOXTREE_SMOKE_TEST_OPERATIONS" help:"The number of random operations per smoke test run."`
	Dimensions int   `cli:",hidden" env:"VOXTREE_SMOKE_TEST_DIMENSIONS" help:"The number of tree axes used by the smoke test."`
	MaxDepth   int   `cli:",hidden" env:"VOXTREE_SMOKE_TEST_MAX_DEPTH"  help:"The tree depth ceiling used by the smoke test."`
}

func main() {
	conf := config{
		AdminAddr: ":18190",
		LogLevel:  logs.InfoLevel.String(),
		SmokeTest: smokeTestConfig{
			Operations: 256,
			Dimensions: 2,
			MaxDepth:   5,
		},
	}

	// set the information gauge to 1, useful for SUM query
	infoGauge.Set(1)

	ctx, cancel := cli.ContextWithSignals(context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer cancel()

	cli.Register().
		Help("Starts the voxtree admin server.").
		Options(&conf)
	cli.Load()

	if conf.Version {
		fmt.Println(version)
		os.Exit(0)
	}

	logs.SetLevel(logs.ParseLevel(conf.LogLevel))
	logs.Encoder = json.Marshal
	if conf.LogIndent {
		logs.Encoder = func(v any) ([]byte, error) {
			return json.MarshalIndent(v, "", "  ")
		}
	}

	flags := featureflag.New(conf.FeatureFlags)

	var admin http.ServeMux
	admin.HandleFunc("/health", voxhttp.HandleHealthCheck)
	admin.Handle("/ready", voxhttp.HandleWithCORS(voxhttp.HandleReadyCheck(func() bool {
		return true
	})))
	admin.Handle("/version", voxhttp.HandleWithCORS(voxhttp.HandleVersion(version)))
	admin.Handle("/metrics", promhttp.Handler())

	flags.IfSet(featureflag.FlagEnableSmokeTest, func() {
		admin.HandleFunc("/smoke-test", smoketest.Handle(smoketest.Options{
			Seed:       conf.SmokeTest.Seed,
			Operations: conf.SmokeTest.Operations,
			Dimensions: conf.SmokeTest.Dimensions,
			MaxDepth:   conf.SmokeTest.MaxDepth,
		}))
	})

	flags.IfSet(featureflag.FlagEnablePprof, func() {
		admin.HandleFunc("/debug/pprof/", pprof.Index)
		admin.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		admin.HandleFunc("/debug/pprof/profile", pprof.Profile)
		admin.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		admin.HandleFunc("/debug/pprof/trace", pprof.Trace)
	})

	voxhttp.ListenAndServe(ctx, &http.Server{
		Addr:    conf.AdminAddr,
		Handler: &admin,
	})
}
