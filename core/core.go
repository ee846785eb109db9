package core

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
)

const (
	JobSubmitManifest    = "README_SUBMIT"
	JobSubmitScriptExt   = ".sh"
	JobSubmitDirPerms    = 0755
	JobSubmitScriptPerms = 0644
	SlurmDirective       = "SBATCH"
	DefaultShell         = "/bin/sh"
)

// Data for HPC job script
/*
#!/bin/bash
#SBATCH --job-name=job_test    # Job name
#SBATCH --time=00:05:00
pwd; hostname; date
*/
type JobScript struct {
	Shell string `json:"hpc_shell"`
	// Args parsed from the leading directive block
	Args   []string `json:"hpc_args"`
	Script []byte   `json:"hpc_script"`
}

var ErrEmptyJobScript = errors.New("core: empty job script")

// ParseJobScript splits a job script into its shell, the arguments of the
// leading `#<directive>` lines and the remaining body. Blank lines inside
// the directive block are skipped; inline `#` comments after arguments are
// dropped.
func ParseJobScript(directive string, r io.Reader) (JobScript, error) {
	var shell string
	var args []string
	var script []byte

	scanner := bufio.NewScanner(r)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return JobScript{}, err
		}
		return JobScript{}, ErrEmptyJobScript
	}
	line := scanner.Text()
	if strings.HasPrefix(line, "#!") {
		shell = strings.TrimSpace(line[2:])
	} else {
		shell = DefaultShell
		script = append(script, line...)
		script = append(script, '\n')
	}
	prefix := "#" + directive
	parsed := len(script) > 0
	for scanner.Scan() {
		line := scanner.Text()
		if !parsed {
			if strings.TrimSpace(line) == "" {
				continue
			}
			if strings.HasPrefix(line, prefix) {
				for _, field := range strings.Fields(line[len(prefix):]) {
					if strings.HasPrefix(field, "#") {
						break
					}
					args = append(args, field)
				}
				continue
			}
			parsed = true
		}
		script = append(script, scanner.Bytes()...)
		script = append(script, '\n')
	}
	if err := scanner.Err(); err != nil {
		return JobScript{}, err
	}
	return JobScript{
		Shell:  shell,
		Args:   args,
		Script: script,
	}, nil
}

// ParseJobScriptFile opens filename and parses it with ParseJobScript.
func ParseJobScriptFile(directive, filename string) (JobScript, error) {
	file, err := os.Open(filename)
	if err != nil {
		return JobScript{}, err
	}
	defer file.Close()
	return ParseJobScript(directive, file)
}

func fileExist(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
