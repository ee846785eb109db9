package jobs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"jobsubmit.io/core"
	"jobsubmit.io/params"
	"jobsubmit.io/slurm"
)

func testConfig(t *testing.T, runDir string) *core.Config {
	t.Helper()
	c, err := core.ParseConfig([]byte("job_name: fold\ntasks_per_job: 2\n"))
	require.NoError(t, err)
	c.RunDir = runDir
	return c
}

func seqTasks(n int) []params.Task {
	tasks := make([]params.Task, n)
	for i := range tasks {
		tasks[i] = params.Task{"seq": strings.Repeat("A", i+1)}
	}
	return tasks
}

func TestAssemble(t *testing.T) {
	c := testConfig(t, "runs")
	jobs, err := Assemble(c, seqTasks(5))
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	require.Equal(t, "fold-0", jobs[0].Name)
	require.Equal(t, filepath.Join("runs", "fold-2"), jobs[2].Dir)
	require.Equal(t, filepath.Join("runs", "fold-1", "fold-1.sh"), jobs[1].Script())
	require.Len(t, jobs[2].Tasks, 1)
	require.Equal(t, 4, jobs[2].First)
	require.Equal(t, "AAAAA", jobs[2].Tasks[0]["seq"])
}

func TestAssembleEmpty(t *testing.T) {
	jobs, err := Assemble(testConfig(t, "runs"), nil)
	require.NoError(t, err)
	require.Empty(t, jobs)
}

func TestRender(t *testing.T) {
	c := testConfig(t, "runs")
	jobs, err := Assemble(c, seqTasks(2))
	require.NoError(t, err)

	r := &Renderer{
		Config:   c,
		Template: "run --seq $seq --task $task_index --mem $mem $missing\n",
		Header:   "#!/bin/bash\n#SBATCH --job-name=$job_name\n#SBATCH -o $output\n",
		Extra:    "module load rna\n",
		RunID:    "abc",
	}
	got := r.Render(jobs[0])
	want := strings.Join([]string{
		"#!/bin/bash",
		"#SBATCH --job-name=fold-0",
		"#SBATCH -o " + filepath.Join("runs", "fold-0", "fold-0.out"),
		"",
		"module load rna",
		"",
		"cd " + filepath.Join("runs", "fold-0"),
		"",
		"run --seq A --task 0 --mem 2GB ",
		"",
		"run --seq AA --task 1 --mem 2GB ",
		"",
	}, "\n")
	require.Equal(t, want, got)
	require.Equal(t, []string{"missing"}, r.Missing(jobs[0]))
}

func TestTaskValuesOverrideConfig(t *testing.T) {
	c := testConfig(t, "runs")
	jobs, err := Assemble(c, []params.Task{{"mem": "64G"}})
	require.NoError(t, err)
	r := &Renderer{Config: c, Template: "$mem $job_name $job_index", Header: slurm.DefaultHeader()}
	vars := r.Vars(jobs[0], 0)
	require.Equal(t, "64G", vars["mem"])
	require.Contains(t, r.Render(jobs[0]), "64G fold-0 0")
	require.Contains(t, r.Render(jobs[0]), "#SBATCH --mem=2GB")
}

func TestWriterWritesScriptsAndManifest(t *testing.T) {
	runDir := filepath.Join(t.TempDir(), "runs")
	c := testConfig(t, runDir)
	jobs, err := Assemble(c, seqTasks(3))
	require.NoError(t, err)
	r := &Renderer{Config: c, Template: "echo $seq", Header: slurm.DefaultHeader()}

	w, err := NewWriter(runDir)
	require.NoError(t, err)
	var paths []string
	for _, job := range jobs {
		script := r.Render(job)
		path, err := w.Write(job, script)
		require.NoError(t, err)
		paths = append(paths, path)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		require.Equal(t, script, string(data))

		parsed, err := core.ParseJobScriptFile(core.SlurmDirective, path)
		require.NoError(t, err)
		require.Equal(t, "/bin/bash", parsed.Shell)
		spec, err := slurm.ParseDirectives(parsed.Args)
		require.NoError(t, err)
		require.Equal(t, job.Name, spec.JobName)
		require.Equal(t, filepath.Join(job.Dir, job.Name+".err"), spec.Error)
	}

	manifest, err := os.ReadFile(filepath.Join(runDir, core.JobSubmitManifest))
	require.NoError(t, err)
	require.Equal(t, "sbatch "+paths[0]+"\nsbatch "+paths[1]+"\n", string(manifest))
}

func TestWriterRerunIsIdempotent(t *testing.T) {
	runDir := t.TempDir()
	c := testConfig(t, runDir)
	jobs, err := Assemble(c, seqTasks(1))
	require.NoError(t, err)
	r := &Renderer{Config: c, Template: "echo $seq", Header: slurm.DefaultHeader()}

	for i := 0; i < 2; i++ {
		w, err := NewWriter(runDir)
		require.NoError(t, err)
		_, err = w.Write(jobs[0], r.Render(jobs[0]))
		require.NoError(t, err)
	}
	manifest, err := os.ReadFile(filepath.Join(runDir, core.JobSubmitManifest))
	require.NoError(t, err)
	require.Equal(t, 1, strings.Count(string(manifest), "sbatch "))
}

func TestVerifyDetectsWrongJobName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.sh")
	script := "#!/bin/bash\n#SBATCH --job-name=other\necho hi\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0644))
	require.Error(t, Verify(path, "fold-0", script))
	require.NoError(t, Verify(path, "other", script))
	require.Error(t, Verify(path, "other", script+"extra"))
}
