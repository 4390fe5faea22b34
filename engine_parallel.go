package doctree

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/jward/doctree/internal/store"
	"github.com/jward/doctree/internal/syntax"
)

// parseItem is one selected source file.
type parseItem struct {
	path    string // as given, used for reading
	display string // root-relative, used in doc locations
	lang    string
}

// parsedFile is the outcome of parsing one item. On success file must be
// closed by the caller.
type parsedFile struct {
	item parseItem
	file *syntax.File
	hash string
	err  error
}

// parseParallel parses items on a worker pool. Each worker creates its own
// tree-sitter parser per file, so no parser state is shared. Results come
// back in the order of items.
func (e *Engine) parseParallel(ctx context.Context, items []parseItem) []parsedFile {
	out := make([]parsedFile, len(items))
	if len(items) == 0 {
		return out
	}

	numWorkers := min(runtime.NumCPU(), len(items))
	if numWorkers < 1 {
		numWorkers = 1
	}

	workCh := make(chan int, len(items))
	for i := range items {
		workCh <- i
	}
	close(workCh)

	var wg sync.WaitGroup
	for range numWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range workCh {
				// Each index is written by exactly one worker.
				out[i] = parseOne(ctx, items[i])
			}
		}()
	}
	wg.Wait()
	return out
}

func (e *Engine) parseSerial(ctx context.Context, items []parseItem) []parsedFile {
	out := make([]parsedFile, 0, len(items))
	for _, item := range items {
		out = append(out, parseOne(ctx, item))
	}
	return out
}

func parseOne(ctx context.Context, item parseItem) parsedFile {
	res := parsedFile{item: item}
	if err := ctx.Err(); err != nil {
		res.err = fmt.Errorf("parse %s: %w", item.display, err)
		return res
	}
	src, err := readFile(item.path)
	if err != nil {
		res.err = fmt.Errorf("parse %s: %w", item.display, err)
		return res
	}
	res.hash = store.ContentHash(src)
	res.file, res.err = syntax.Parse(ctx, item.display, src, item.lang)
	return res
}
