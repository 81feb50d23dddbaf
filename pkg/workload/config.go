package workload

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"

	dberr "shorekits/pkg/error"
)

// Config describes a workload run. Zero fields in a TOML file keep their
// defaults.
type Config struct {
	Workers       int     `toml:"workers"`
	TxnsPerWorker int     `toml:"txns_per_worker"`
	OpsPerTxn     int     `toml:"ops_per_txn"`
	Keys          int     `toml:"keys"`
	RowsPerKey    int     `toml:"rows_per_key"`
	WriteRatio    float64 `toml:"write_ratio"`
	ScanRatio     float64 `toml:"scan_ratio"`
	Seed          int64   `toml:"seed"`
}

func DefaultConfig() Config {
	return Config{
		Workers:       8,
		TxnsPerWorker: 1000,
		OpsPerTxn:     4,
		Keys:          64,
		RowsPerKey:    1024,
		WriteRatio:    0.5,
		ScanRatio:     0.05,
		Seed:          1,
	}
}

// LoadConfig reads a TOML file over the defaults. Unknown keys are rejected so
// a misspelt setting does not silently fall back to its default.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, configError(fmt.Sprintf("decode config file %q: %v", path, err))
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, configError(fmt.Sprintf("unknown settings in %q: %v", path, undecoded))
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every out-of-range setting at once.
func (c Config) Validate() error {
	var result *multierror.Error

	positive := []struct {
		name  string
		value int
	}{
		{"workers", c.Workers},
		{"txns_per_worker", c.TxnsPerWorker},
		{"ops_per_txn", c.OpsPerTxn},
		{"keys", c.Keys},
		{"rows_per_key", c.RowsPerKey},
	}
	for _, p := range positive {
		if p.value <= 0 {
			result = multierror.Append(result, configError(fmt.Sprintf("%s must be positive, got %d", p.name, p.value)))
		}
	}

	if c.WriteRatio < 0 || c.WriteRatio > 1 {
		result = multierror.Append(result, configError(fmt.Sprintf("write_ratio must be in [0, 1], got %g", c.WriteRatio)))
	}
	if c.ScanRatio < 0 || c.ScanRatio > 1 {
		result = multierror.Append(result, configError(fmt.Sprintf("scan_ratio must be in [0, 1], got %g", c.ScanRatio)))
	}
	return result.ErrorOrNil()
}

func configError(detail string) *dberr.DBError {
	err := dberr.New(dberr.ErrCategorySystem, dberr.CodeInvalidConfig, "invalid workload configuration")
	err.Detail = detail
	err.Component = "workload"
	return err
}
