package runner

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"sync"

	"github.com/A-Archives-and-Forks/xan/pkg/evaluator"
)

type pipeline struct {
	runner  *Runner
	program *evaluator.Program
	target  int
	reader  *csv.Reader
	writer  *csv.Writer
	first   []string // record read ahead when there are no headers
}

type job struct {
	index  int
	record []string
}

type result struct {
	index  int
	record []string
	keep   bool
	err    error
}

func (p *pipeline) read() ([]string, error) {
	if p.first != nil {
		record := p.first
		p.first = nil
		return record, nil
	}
	record, err := p.reader.Read()
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("reading row: %w", err)
	}
	return record, err
}

func (p *pipeline) process(ctx context.Context, j job) result {
	value, evalErr := p.program.Run(ctx, j.record)
	out, keep, err := p.runner.apply(j.index, j.record, p.target, value, evalErr)
	return result{index: j.index, record: out, keep: keep, err: err}
}

func (p *pipeline) emit(res result) error {
	if res.err != nil {
		return res.err
	}
	if !res.keep {
		return nil
	}
	return p.writer.Write(res.record)
}

func (p *pipeline) runSequential(ctx context.Context) error {
	for index := 0; ; index++ {
		record, err := p.read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := p.emit(p.process(ctx, job{index: index, record: record})); err != nil {
			return err
		}
	}
}

// runParallel fans rows out to workers and writes results back in input
// order through a reassembly buffer keyed by row index. At most workers*4
// rows are between read and write at any time.
func (p *pipeline) runParallel(ctx context.Context, workers int) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	inFlight := workers * 4
	slots := make(chan struct{}, inFlight)
	jobs := make(chan job, inFlight)
	results := make(chan result, inFlight)

	// The producer may stay parked in Read after an abort. It owns the
	// reader alone, so it is left behind rather than waited for.
	readErr := make(chan error, 1)
	go func() {
		defer close(jobs)
		for index := 0; ; index++ {
			select {
			case slots <- struct{}{}:
			case <-ctx.Done():
				return
			}
			record, err := p.read()
			if err == io.EOF {
				return
			}
			if err != nil {
				readErr <- err
				return
			}
			select {
			case jobs <- job{index: index, record: record}:
			case <-ctx.Done():
				return
			}
		}
	}()

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				var j job
				select {
				case queued, ok := <-jobs:
					if !ok {
						return
					}
					j = queued
				case <-ctx.Done():
					return
				}
				select {
				case results <- p.process(ctx, j):
				case <-ctx.Done():
					return
				}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	pending := make(map[int]result, inFlight)
	next := 0
	for {
		var (
			res result
			ok  bool
		)
		select {
		case res, ok = <-results:
		case <-ctx.Done():
			return ctx.Err()
		}
		if !ok {
			break
		}

		pending[res.index] = res
		for {
			ready, found := pending[next]
			if !found {
				break
			}
			delete(pending, next)
			next++
			<-slots
			if err := p.emit(ready); err != nil {
				return err
			}
		}
	}

	select {
	case err := <-readErr:
		return err
	default:
	}
	return ctx.Err()
}
