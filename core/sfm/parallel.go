package sfm

import (
	"os"
	"runtime"
	"sync"
)

// BookResult is the outcome of grouping one file.
type BookResult struct {
	Path    string
	Grouper *Grouper
	Err     error
}

// GroupFiles groups several independent files in parallel. Each file is a
// pure single-threaded parse with no shared mutable state, so files only
// compete for I/O. workers <= 0 means one worker per CPU. A failed file
// yields a BookResult with Err set; siblings are unaffected. Results are
// returned in the order the paths were given.
func GroupFiles(paths []string, scan ScanOptions, opts GroupOptions, workers int) []BookResult {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	results := make([]BookResult, len(paths))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				path := paths[i]
				fileScan := scan
				fileScan.Path = path
				fileOpts := opts
				fileOpts.Path = path

				lines, err := ScanFile(path, fileScan, os.ReadFile)
				if err != nil {
					results[i] = BookResult{Path: path, Err: err}
					continue
				}
				results[i] = BookResult{Path: path, Grouper: Group(lines, fileOpts)}
			}
		}()
	}

	for i := range paths {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
