package rowpipe

import (
	"os"

	"github.com/BurntSushi/toml"

	"github.com/rowpipe/rowpipe/csvrow"
)

// Config is the engine-wide configuration: stream batch size, wavefront
// count, random seed, and CSV dialect (SPEC_FULL §2 ambient stack).
type Config struct {
	// StreamBatchSize is loaded from the config file but not read by any
	// stream: stream.MemoryStream always uses the stream.BatchSize constant.
	StreamBatchSize int `toml:"stream_batch_size"`
	// WavefrontCount is the default Puller.ProcessorCount when a caller
	// does not specify one explicitly (0 means GOMAXPROCS).
	WavefrontCount int `toml:"wavefront_count"`
	// RandomSeed is loaded from the config file but not read by any
	// component: transform.Random samples with math/rand's global source.
	RandomSeed int64 `toml:"random_seed"`
	// CSV holds the csvrow dialect used by CLI-facing export.
	CSV csvrow.Format `toml:"csv"`
}

// DefaultConfig mirrors the defaults named throughout spec.md: 256-row
// batches, GOMAXPROCS wavefronts, unseeded sampling, and the §4.12 CSV
// dialect.
func DefaultConfig() Config {
	return Config{
		StreamBatchSize: 256,
		WavefrontCount:  0,
		RandomSeed:      0,
		CSV:             csvrow.DefaultFormat(),
	}
}

// LoadConfig reads a TOML config file, applying DefaultConfig for any
// field left unset in the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
