package params

import (
	"errors"
	"fmt"

	"jobsubmit.io/core"
)

var ErrInvalidChunkSize = errors.New("chunk size must be positive")

// Task maps each custom argument name to one concrete value.
type Task map[string]string

// Values expands one custom argument to its ordered values.
func Values(arg core.CustomArg) ([]string, error) {
	if arg.Flag != nil && arg.Flag.Switch {
		return SwitchValues(arg.Name, arg.Flag.Prefix), nil
	}
	values := arg.List
	if !arg.IsList {
		parsed, err := ParseValue(arg.Spec)
		if err != nil {
			return nil, fmt.Errorf("custom argument %q: %w", arg.Name, err)
		}
		values = parsed
	}
	if arg.Flag != nil {
		return FlagValues(arg.Name, arg.Flag.Prefix, values), nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out, nil
}

// Expand computes the tasks of args: the Cartesian product of every
// argument's values, in argument order.
func Expand(args core.CustomArgs) ([]Task, error) {
	keys := make([]string, len(args))
	lists := make([][]string, len(args))
	for i, arg := range args {
		values, err := Values(arg)
		if err != nil {
			return nil, err
		}
		keys[i] = arg.Name
		lists[i] = values
	}
	return Product(keys, lists), nil
}

// Product returns one Task per element of the Cartesian product of lists,
// with the last key varying fastest. No keys yields a single empty Task;
// any empty list yields no tasks.
func Product(keys []string, lists [][]string) []Task {
	total := 1
	for _, list := range lists {
		total *= len(list)
	}
	tasks := make([]Task, 0, total)
	if total == 0 {
		return tasks
	}
	index := make([]int, len(lists))
	for {
		task := make(Task, len(keys))
		for i, key := range keys {
			task[key] = lists[i][index[i]]
		}
		tasks = append(tasks, task)

		pos := len(index) - 1
		for ; pos >= 0; pos-- {
			index[pos]++
			if index[pos] < len(lists[pos]) {
				break
			}
			index[pos] = 0
		}
		if pos < 0 {
			return tasks
		}
	}
}

// Repeat concatenates n copies of tasks. Copies share no maps with the
// input or with each other.
func Repeat(tasks []Task, n int) []Task {
	if n < 1 {
		return nil
	}
	out := make([]Task, 0, len(tasks)*n)
	for i := 0; i < n; i++ {
		for _, task := range tasks {
			dup := make(Task, len(task))
			for k, v := range task {
				dup[k] = v
			}
			out = append(out, dup)
		}
	}
	return out
}

// Chunk splits items into consecutive slices of at most size elements.
func Chunk[T any](items []T, size int) ([][]T, error) {
	if size < 1 {
		return nil, fmt.Errorf("params: %w, got %d", ErrInvalidChunkSize, size)
	}
	chunks := make([][]T, 0, (len(items)+size-1)/size)
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end:end])
	}
	return chunks, nil
}
