package core

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseConfigDefaultsWhenEmpty(t *testing.T) {
	c, err := ParseConfig(nil)
	require.NoError(t, err)
	require.Equal(t, "job", c.JobName)
	require.Equal(t, "runs", c.RunDir)
	require.Equal(t, 1, c.TasksPerJob)
	require.Equal(t, 1, c.Repeat)
	require.Equal(t, SlurmArgs{JobName: "job", Time: "01:00:00", Nodes: 1, NTasksPerNode: 1, Mem: "2GB"}, c.Slurm)
	require.Empty(t, c.CustomArgs)
	require.NoError(t, c.Validate())
}

func TestParseConfigFillsNestedSlurmArgs(t *testing.T) {
	c, err := ParseConfig([]byte(strings.TrimSpace(`
job_name: fold
tasks_per_job: 4
slurm_args:
  time: "24:00:00"
  mem: 8G
custom_args:
  seq: "1-3"
`)))
	require.NoError(t, err)
	require.Equal(t, "fold", c.JobName)
	require.Equal(t, 4, c.TasksPerJob)
	require.Equal(t, "24:00:00", c.Slurm.Time)
	require.Equal(t, "8G", c.Slurm.Mem)
	require.Equal(t, 1, c.Slurm.Nodes)
	require.Equal(t, 1, c.Slurm.NTasksPerNode)
	require.Equal(t, CustomArgs{{Name: "seq", ArgValues: ArgValues{Spec: "1-3"}}}, c.CustomArgs)
}

func TestParseConfigCustomArgsKeepOrder(t *testing.T) {
	c, err := ParseConfig([]byte(strings.TrimSpace(`
custom_args:
  zeta: a
  alpha: "*.txt"
  mid: 5
  dates: [2024-01-05, 2024-02-05]
  local: {switch: true}
  threads: {prefix: "-", values: "1,2"}
`)))
	require.NoError(t, err)
	require.Equal(t, []string{"zeta", "alpha", "mid", "dates", "local", "threads"}, c.CustomArgs.Names())

	require.Equal(t, "5", c.CustomArgs[2].Spec)
	require.True(t, c.CustomArgs[3].IsList)
	require.Equal(t, []string{"2024-01-05", "2024-02-05"}, c.CustomArgs[3].List)
	require.Equal(t, &ArgFlag{Prefix: "--", Switch: true}, c.CustomArgs[4].Flag)
	require.Equal(t, &ArgFlag{Prefix: "-"}, c.CustomArgs[5].Flag)
	require.Equal(t, "1,2", c.CustomArgs[5].Spec)
}

func TestParseConfigRejectsBadCustomArgs(t *testing.T) {
	for _, doc := range []string{
		"custom_args: [a, b]",
		"custom_args:\n  a: ~",
		"custom_args:\n  a: {prefix: '-'}",
		"custom_args:\n  a: {switch: true, values: '1-2'}",
		"custom_args:\n  a: [[1, 2]]",
	} {
		_, err := ParseConfig([]byte(doc))
		require.Error(t, err, doc)
	}
}

func TestParseConfigUnknownKey(t *testing.T) {
	_, err := ParseConfig([]byte("tasks_per_jobs: 3\n"))
	require.Error(t, err)
}

func TestParseConfigMalformed(t *testing.T) {
	_, err := ParseConfig([]byte("job_name: [unterminated\n"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		c, err := ParseConfig(nil)
		require.NoError(t, err)
		return c
	}

	c := base()
	c.CustomArgs = CustomArgs{{Name: "a", ArgValues: ArgValues{Spec: "1"}}}
	c.Dataframe = "rows.csv"
	require.True(t, errors.Is(c.Validate(), ErrConflictingSources))

	c = base()
	c.TasksPerJob = 0
	c.Repeat = -1
	c.Slurm.Mem = "lots"
	err := c.Validate()
	require.True(t, errors.Is(err, ErrInvalidConfig))
	require.Contains(t, err.Error(), "tasks_per_job")
	require.Contains(t, err.Error(), "repeat")
	require.Contains(t, err.Error(), "slurm_args.mem")

	c = base()
	c.JobName = "a/b"
	require.Error(t, c.Validate())
}

func TestLoadConfigResolvesRelativePaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "params.yml")
	require.NoError(t, os.WriteFile(path, []byte("extra_header: header.sh\ndataframe: /abs/rows.csv\n"), 0644))

	c, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "header.sh"), c.ExtraHeader)
	require.Equal(t, "/abs/rows.csv", c.Dataframe)
	require.Empty(t, c.HeaderTemplate)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestConfigVars(t *testing.T) {
	c, err := ParseConfig([]byte("run_dir: out\n"))
	require.NoError(t, err)
	vars := c.Vars()
	require.Equal(t, "out", vars["run_dir"])
	require.Equal(t, "1", vars["nodes"])
	require.Equal(t, "2GB", vars["mem"])
	require.Equal(t, "1", vars["repeat"])
}
