package configuration

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig_Full(t *testing.T) {
	path := writeConfig(t, `
logger:
  level: DEBUG
server:
  address: ":8080"
input:
  data: /data/patients.csv
  hierarchies: /data/hierarchies.yaml
  delimiter: ";"
anonymization:
  k: 5
  suppress: "count < k || count * 100 < records"
evaluation:
  schemes:
    - [0, 1]
    - [2, 2]
  workers: 3
  history_length: 4
  history_ttl: 5m
results:
  file: /var/log/precision/results.json
  size: 10
  amount: 2
telemetry:
  enabled: true
  service: precision-test
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", config.Logger.Level)
	assert.Equal(t, ":8080", config.Server.Address)
	assert.Equal(t, "/data/patients.csv", config.Input.Data)
	assert.Equal(t, "/data/hierarchies.yaml", config.Input.Hierarchies)
	assert.Equal(t, ';', config.Input.DelimiterRune())
	assert.Equal(t, 5, config.Anonymization.K)
	assert.Equal(t, "count < k || count * 100 < records", config.Anonymization.Suppress)
	assert.Equal(t, [][]int{{0, 1}, {2, 2}}, config.Evaluation.Schemes)
	assert.Equal(t, 3, config.Evaluation.Workers)
	assert.Equal(t, 4, config.Evaluation.HistoryLength)
	assert.Equal(t, 5*time.Minute, config.Evaluation.HistoryTtl)
	assert.Equal(t, "/var/log/precision/results.json", config.Results.File)
	assert.Equal(t, 10, config.Results.Size)
	assert.Equal(t, 2, config.Results.Amount)
	assert.True(t, config.Telemetry.Enabled)
	assert.Equal(t, "precision-test", config.Telemetry.Service)
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
logger:
  level: info
input:
  data: data.csv
`)

	config, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Empty(t, config.Server.Address)
	assert.Equal(t, DefaultInputDelimiter, config.Input.Delimiter)
	assert.Equal(t, ',', config.Input.DelimiterRune())
	assert.Equal(t, DefaultK, config.Anonymization.K)
	assert.Equal(t, DefaultSuppression, config.Anonymization.Suppress)
	assert.Empty(t, config.Evaluation.Schemes)
	assert.Equal(t, runtime.NumCPU(), config.Evaluation.Workers)
	assert.Equal(t, DefaultHistoryLength, config.Evaluation.HistoryLength)
	assert.Equal(t, DefaultHistoryTtl, config.Evaluation.HistoryTtl)
	assert.Empty(t, config.Results.File)
	assert.Equal(t, DefaultResultsSize, config.Results.Size)
	assert.Equal(t, DefaultResultsAmount, config.Results.Amount)
	assert.False(t, config.Telemetry.Enabled)
	assert.Equal(t, DefaultServiceName, config.Telemetry.Service)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	path := writeConfig(t, `
logger:
  level: info
input:
  data: data.csv
`)
	t.Setenv("LOGGER_LEVEL", "error")

	config, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "error", config.Logger.Level)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := map[string]string{
		"no level": `
input:
  data: data.csv
`,
		"unknown level": `
logger:
  level: verbose
input:
  data: data.csv
`,
		"no data": `
logger:
  level: info
`,
		"long delimiter": `
logger:
  level: info
input:
  data: data.csv
  delimiter: ";;"
`,
		"negative k": `
logger:
  level: info
input:
  data: data.csv
anonymization:
  k: -1
`,
		"negative workers": `
logger:
  level: info
input:
  data: data.csv
evaluation:
  workers: -2
`,
		"empty scheme": `
logger:
  level: info
input:
  data: data.csv
evaluation:
  schemes:
    - []
`,
		"negative level": `
logger:
  level: info
input:
  data: data.csv
evaluation:
  schemes:
    - [0, -1]
`,
		"malformed yaml": `
logger: [
`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, content))
			assert.Error(t, err)
		})
	}
}
