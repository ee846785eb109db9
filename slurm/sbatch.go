package slurm

import (
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	flag "github.com/juju/gnuflag"
)

var ErrInvalidMem = errors.New("invalid mem request")

var memReq = regexp.MustCompile(`^([0-9]+)([KMGT]?)B?$`)

// DecodeMem parses a slurm memory request such as "512M", "2G" or "2GB"
// and returns its size in GiB, rounded up. A bare number is megabytes.
func DecodeMem(req string) (int64, error) {
	match := memReq.FindStringSubmatch(strings.TrimSpace(req))
	if match == nil {
		return 0, fmt.Errorf("%w %q", ErrInvalidMem, req)
	}
	base, err := strconv.ParseInt(match[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w %q", ErrInvalidMem, req)
	}
	var mem int64
	switch match[2] {
	case "K":
		mem = base * 1024
	case "G":
		mem = base * 1024 * 1024 * 1024
	case "T":
		mem = base * 1024 * 1024 * 1024 * 1024
	default:
		mem = base * 1024 * 1024
	}
	return int64(math.Ceil(float64(mem) / float64(1024*1024*1024))), nil
}

// JobSpec holds the sbatch options read back from a job script.
type JobSpec struct {
	JobName       string `json:"job_name"`
	Output        string `json:"output"`
	Error         string `json:"error"`
	Time          string `json:"time"`
	Nodes         int    `json:"nodes"`
	NTasksPerNode int    `json:"ntasks_per_node"`
	Mem           string `json:"mem"`
	Chdir         string `json:"chdir,omitempty"`
	Partition     string `json:"partition,omitempty"`
	Account       string `json:"account,omitempty"`
	CpusPerTask   int    `json:"cpus_per_task,omitempty"`
	// Set lists the long names of the options present in the script
	Set map[string]bool `json:"set"`
	// Unsupported options are skipped, not rejected
	Unsupported []string `json:"unsupported,omitempty"`
}

// Slurm uses Short and Long command line options
// Save both with golang flag
type gnuFlag struct {
	Short string
	Long  string
}

// Use map to set command line options. map key is the same as Long option
type gnuFlags map[string]gnuFlag

// Check if either Long or Short flag is used
func lookupGnuArg(name string, spec gnuFlags) (string, bool) {
	for k, v := range spec {
		if name == k || (len(v.Short) > 0 && name == v.Short) {
			return k, true
		}
	}
	return "", false
}

func newSBatchFlags(spec *JobSpec) (*flag.FlagSet, gnuFlags) {
	flags := flag.NewFlagSet(SBatchName, flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	options := make(gnuFlags)

	setString := func(short, long string, value *string, usage string) {
		flags.StringVar(value, long, "", usage)
		if len(short) > 0 {
			flags.StringVar(value, short, "", usage)
		}
		options[long] = gnuFlag{Short: short, Long: long}
	}
	setInt := func(short, long string, value *int, usage string) {
		flags.IntVar(value, long, 0, usage)
		if len(short) > 0 {
			flags.IntVar(value, short, 0, usage)
		}
		options[long] = gnuFlag{Short: short, Long: long}
	}

	setString("J", "job-name", &spec.JobName, "name of the job")
	setString("o", "output", &spec.Output, "standard output file")
	setString("e", "error", &spec.Error, "standard error file")
	setString("t", "time", &spec.Time, "time limit")
	setInt("N", "nodes", &spec.Nodes, "number of nodes")
	setInt("", "ntasks-per-node", &spec.NTasksPerNode, "tasks invoked on each node")
	setString("", "mem", &spec.Mem, "real memory required per node")
	setString("D", "chdir", &spec.Chdir, "working directory")
	setString("p", "partition", &spec.Partition, "partition for the allocation")
	setString("A", "account", &spec.Account, "account charged for the job")
	setInt("c", "cpus-per-task", &spec.CpusPerTask, "cpus per task")
	return flags, options
}

// optionName returns the flag name of an option argument, without dashes
// or an inline `=value`.
func optionName(arg string) (string, bool) {
	if !strings.HasPrefix(arg, "-") || arg == "-" || arg == "--" {
		return "", false
	}
	name := strings.TrimLeft(arg, "-")
	if i := strings.IndexByte(name, '='); i >= 0 {
		name = name[:i]
	}
	return name, true
}

// ParseDirectives parses the arguments of `#SBATCH` lines. Options that are
// not understood are listed in JobSpec.Unsupported and otherwise ignored.
func ParseDirectives(args []string) (JobSpec, error) {
	spec := JobSpec{Set: map[string]bool{}}
	flags, options := newSBatchFlags(&spec)

	supported := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		name, ok := optionName(args[i])
		if !ok {
			supported = append(supported, args[i])
			continue
		}
		if _, known := lookupGnuArg(name, options); known {
			supported = append(supported, args[i])
			continue
		}
		spec.Unsupported = append(spec.Unsupported, name)
		// a detached value belongs to the skipped option
		if !strings.Contains(args[i], "=") && i+1 < len(args) &&
			!strings.HasPrefix(args[i+1], "-") {
			i++
		}
	}

	if err := flags.Parse(true, supported); err != nil {
		return JobSpec{}, fmt.Errorf("%s: unable to parse directives: %w", SBatchName, err)
	}
	if flags.NArg() > 0 {
		return JobSpec{}, fmt.Errorf("%s: unexpected directive arguments: %s",
			SBatchName, strings.Join(flags.Args(), " "))
	}
	flags.Visit(func(f *flag.Flag) {
		if key, ok := lookupGnuArg(f.Name, options); ok {
			spec.Set[key] = true
		}
	})
	return spec, nil
}
