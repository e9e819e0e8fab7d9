// Package config holds the settings shared by the commands and binds them
// to command line flags.
package config

import (
	"fmt"

	"github.com/spf13/pflag"
	"github.com/vocdoni/passport-z-sandbox/circuits"
	"github.com/vocdoni/passport-z-sandbox/log"
	"github.com/vocdoni/passport-z-sandbox/types"
	"go.vocdoni.io/dvote/db"
)

const (
	DefaultHost     = "0.0.0.0"
	DefaultPort     = 9090
	DefaultDataDir  = "passport-tracker"
	DefaultLogLevel = log.LogLevelInfo
)

// Config is the configuration of the tracker and the input builders.
type Config struct {
	Host      string
	Port      int
	DataDir   string
	DBType    string
	LogLevel  string
	LogOutput string
	// TrackerURL is the commitment tracker used by the clients.
	TrackerURL string
	Register   CircuitArtifacts
	Disclose   CircuitArtifacts
}

// CircuitArtifacts are the remote location and sha256 hash of the files
// needed to prove a circuit. Empty by default: the circuits are built and
// published outside of this repository.
type CircuitArtifacts struct {
	WasmURL             string
	WasmHash            string
	ProvingKeyURL       string
	ProvingKeyHash      string
	VerificationKeyURL  string
	VerificationKeyHash string
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Host:       DefaultHost,
		Port:       DefaultPort,
		DataDir:    DefaultDataDir,
		DBType:     db.TypePebble,
		LogLevel:   DefaultLogLevel,
		LogOutput:  "stdout",
		TrackerURL: fmt.Sprintf("http://127.0.0.1:%d", DefaultPort),
	}
}

// BindFlags registers the configuration fields as flags of fs, using the
// current values as defaults.
func (c *Config) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.Host, "host", c.Host, "API listen host")
	fs.IntVarP(&c.Port, "port", "p", c.Port, "API listen port")
	fs.StringVarP(&c.DataDir, "datadir", "d", c.DataDir, "database directory")
	fs.StringVar(&c.DBType, "dbType", c.DBType, "database type")
	fs.StringVarP(&c.LogLevel, "logLevel", "l", c.LogLevel, "log level (debug, info, warn, error)")
	fs.StringVar(&c.LogOutput, "logOutput", c.LogOutput, "log output (stdout, stderr or a file path)")
	fs.StringVar(&c.TrackerURL, "tracker", c.TrackerURL, "commitment tracker API URL")
	c.Register.bindFlags(fs, "register")
	c.Disclose.bindFlags(fs, "disclose")
}

func (ca *CircuitArtifacts) bindFlags(fs *pflag.FlagSet, circuit string) {
	fs.StringVar(&ca.WasmURL, circuit+".wasmURL", ca.WasmURL, circuit+" witness calculator url")
	fs.StringVar(&ca.WasmHash, circuit+".wasmHash", ca.WasmHash, circuit+" witness calculator sha256")
	fs.StringVar(&ca.ProvingKeyURL, circuit+".zkeyURL", ca.ProvingKeyURL, circuit+" proving key url")
	fs.StringVar(&ca.ProvingKeyHash, circuit+".zkeyHash", ca.ProvingKeyHash, circuit+" proving key sha256")
	fs.StringVar(&ca.VerificationKeyURL, circuit+".vkeyURL", ca.VerificationKeyURL, circuit+" verification key url")
	fs.StringVar(&ca.VerificationKeyHash, circuit+".vkeyHash", ca.VerificationKeyHash, circuit+" verification key sha256")
}

// Validate checks the values that cannot be used as provided.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	switch c.LogLevel {
	case log.LogLevelDebug, log.LogLevelInfo, log.LogLevelWarn, log.LogLevelError:
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	if c.DataDir == "" {
		return fmt.Errorf("missing data directory")
	}
	return nil
}

// Configured reports whether the proving artifacts are set.
func (ca *CircuitArtifacts) Configured() bool {
	return ca.WasmURL != "" && ca.WasmHash != "" && ca.ProvingKeyURL != "" && ca.ProvingKeyHash != ""
}

// Artifacts returns the circuit artifacts. The verification key is
// optional.
func (ca *CircuitArtifacts) Artifacts(circuit circuits.CircuitID) (*circuits.CircuitArtifacts, error) {
	if !ca.Configured() {
		return nil, fmt.Errorf("%s artifacts not configured", circuit)
	}
	wasm, err := artifact(string(circuit)+".wasm", ca.WasmURL, ca.WasmHash)
	if err != nil {
		return nil, err
	}
	pkey, err := artifact(string(circuit)+".zkey", ca.ProvingKeyURL, ca.ProvingKeyHash)
	if err != nil {
		return nil, err
	}
	var vkey *circuits.Artifact
	if ca.VerificationKeyURL != "" {
		if vkey, err = artifact(string(circuit)+"_vkey.json", ca.VerificationKeyURL, ca.VerificationKeyHash); err != nil {
			return nil, err
		}
	}
	return circuits.NewCircuitArtifacts(wasm, pkey, vkey), nil
}

func artifact(name, url, hash string) (*circuits.Artifact, error) {
	h := types.HexStringToHexBytes(hash)
	if len(h) != 32 {
		return nil, fmt.Errorf("artifact %s: invalid sha256 hash %q", name, hash)
	}
	return &circuits.Artifact{Name: name, RemoteURL: url, Hash: h}, nil
}
