// Command allocdump drives the allocator from the command line: it issues a
// scripted sequence of allocations and frees, then prints the introspection
// dump. With --watch-env it reloads its placement policy whenever an env
// file changes, without restarting the process.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unsafe"

	"github.com/fsnotify/fsnotify"

	"github.com/orizon-lang/memalloc/internal/allocator"
)

func main() {
	var (
		script    string
		watchFile string
	)

	flag.StringVar(&script, "script", "alloc:16,alloc:16,free:0", "comma-separated ops: alloc:<n>, named:<n>:<name>, zeroed:<nmemb>:<size>, free:<index>")
	flag.StringVar(&watchFile, "watch-env", "", "env file to watch for ALLOCATOR_ALGORITHM/ALLOCATOR_SCRIBBLE changes")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [OPTIONS]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Drives the global allocator from a scripted op list and prints its dump.\n\n")
		fmt.Fprintf(os.Stderr, "OPTIONS:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if watchFile != "" {
		stop, err := watchEnvFile(watchFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "allocdump: watch-env: %v\n", err)
			os.Exit(1)
		}
		defer stop()
	}

	if err := run(script); err != nil {
		fmt.Fprintf(os.Stderr, "allocdump: %v\n", err)
		os.Exit(1)
	}
}

func run(script string) error {
	ptrs := make([]unsafe.Pointer, 0)

	for _, op := range strings.Split(script, ",") {
		op = strings.TrimSpace(op)
		if op == "" {
			continue
		}

		fields := strings.Split(op, ":")

		switch fields[0] {
		case "alloc":
			n, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				return fmt.Errorf("alloc: %w", err)
			}

			ptrs = append(ptrs, allocator.Alloc(uintptr(n)))
		case "named":
			n, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				return fmt.Errorf("named: %w", err)
			}

			ptrs = append(ptrs, allocator.AllocNamed(uintptr(n), fields[2]))
		case "zeroed":
			nmemb, err := strconv.ParseUint(fields[1], 10, 64)
			if err != nil {
				return fmt.Errorf("zeroed: %w", err)
			}

			size, err := strconv.ParseUint(fields[2], 10, 64)
			if err != nil {
				return fmt.Errorf("zeroed: %w", err)
			}

			ptrs = append(ptrs, allocator.AllocZeroed(uintptr(nmemb), uintptr(size)))
		case "free":
			idx, err := strconv.Atoi(fields[1])
			if err != nil {
				return fmt.Errorf("free: %w", err)
			}

			if idx < 0 || idx >= len(ptrs) {
				return fmt.Errorf("free: index %d out of range", idx)
			}

			allocator.Free(ptrs[idx])
			ptrs[idx] = nil
		default:
			return fmt.Errorf("unknown op %q", fields[0])
		}
	}

	allocator.Dump(os.Stdout)

	return nil
}

// watchEnvFile reloads the process environment from file whenever it
// changes on disk, so ALLOCATOR_ALGORITHM and ALLOCATOR_SCRIBBLE edits take
// effect without a restart (the allocator already re-reads them per call).
func watchEnvFile(file string) (func(), error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := w.Add(file); err != nil {
		w.Close()

		return nil, err
	}

	applyEnvFile(file)

	go func() {
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}

				if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					applyEnvFile(file)
				}
			case _, ok := <-w.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return func() { w.Close() }, nil
}

func applyEnvFile(file string) {
	data, err := os.ReadFile(file)
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 {
			continue
		}

		os.Setenv(strings.TrimSpace(kv[0]), strings.TrimSpace(kv[1]))
	}
}
