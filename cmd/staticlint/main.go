// Command staticlint runs the analyzers the dogmatch tree is held to:
// a fixed set of go/analysis passes, ineffassign, nilerr, the project's
// noosexit check and the staticcheck analyzers named in config.json.
//
// config.json is looked up next to the binary unless STATICLINT_CONFIG points
// elsewhere. Without a config file only the fixed set runs.
//
//	go build -o bin/staticlint ./cmd/staticlint
//	cp cmd/staticlint/config.json bin/
//	bin/staticlint ./...
package main

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/gordonklaus/ineffassign/pkg/ineffassign"
	"github.com/gostaticanalysis/nilerr"
	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/multichecker"
	"golang.org/x/tools/go/analysis/passes/copylock"
	"golang.org/x/tools/go/analysis/passes/loopclosure"
	"golang.org/x/tools/go/analysis/passes/lostcancel"
	"golang.org/x/tools/go/analysis/passes/printf"
	"golang.org/x/tools/go/analysis/passes/structtag"
	"golang.org/x/tools/go/analysis/passes/unmarshal"
	"golang.org/x/tools/go/analysis/passes/unreachable"
	"honnef.co/go/tools/staticcheck"

	"github.com/patric-chuzhbe/dogmatch/cmd/staticlint/noosexit"
)

const (
	configFileName = "config.json"
	configEnv      = "STATICLINT_CONFIG"
)

// ConfigData is the layout of config.json.
type ConfigData struct {
	// Staticcheck lists enabled staticcheck analyzers, e.g. "SA1000".
	Staticcheck []string `json:"staticcheck"`
}

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	multichecker.Main(analyzers(cfg)...)
}

func loadConfig() (ConfigData, error) {
	path := os.Getenv(configEnv)
	if path == "" {
		appfile, err := os.Executable()
		if err != nil {
			return ConfigData{}, err
		}
		path = filepath.Join(filepath.Dir(appfile), configFileName)
	}

	var cfg ConfigData
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	err = json.Unmarshal(data, &cfg)
	return cfg, err
}

func analyzers(cfg ConfigData) []*analysis.Analyzer {
	checks := []*analysis.Analyzer{
		copylock.Analyzer,
		loopclosure.Analyzer,
		lostcancel.Analyzer,
		printf.Analyzer,
		structtag.Analyzer,
		unmarshal.Analyzer,
		unreachable.Analyzer,

		ineffassign.Analyzer,
		nilerr.Analyzer,

		noosexit.Analyzer,
	}

	enabled := make(map[string]bool, len(cfg.Staticcheck))
	for _, name := range cfg.Staticcheck {
		enabled[name] = true
	}
	for _, v := range staticcheck.Analyzers {
		if enabled[v.Analyzer.Name] {
			checks = append(checks, v.Analyzer)
		}
	}

	return checks
}
