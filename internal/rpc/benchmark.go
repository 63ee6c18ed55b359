package rpc

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Mohsinsiddi/nftlend/internal/chain"
)

// ErrWrongChain is returned when an endpoint serves a different chain than expected.
var ErrWrongChain = errors.New("endpoint serves a different chain")

// BenchmarkResult holds the result of probing a single endpoint.
type BenchmarkResult struct {
	URL         string
	Latency     time.Duration
	BlockNumber uint64
	ChainID     int64
	Err         error
}

// Probe measures one endpoint. When wantChainID is non-zero the endpoint's
// eth_chainId must match it.
func Probe(ctx context.Context, url string, wantChainID int64) BenchmarkResult {
	res := BenchmarkResult{URL: url}

	c, err := chain.Dial(ctx, url)
	if err != nil {
		res.Err = err
		return res
	}
	defer c.Close()

	start := time.Now()
	res.BlockNumber, res.Err = c.BlockNumber(ctx)
	res.Latency = time.Since(start)
	if res.Err != nil || wantChainID == 0 {
		return res
	}

	id, err := c.ChainID(ctx)
	if err != nil {
		res.Err = err
		return res
	}
	res.ChainID = id.Int64()
	if res.ChainID != wantChainID {
		res.Err = fmt.Errorf("%w: got %d, want %d", ErrWrongChain, res.ChainID, wantChainID)
	}
	return res
}

// Benchmark probes all URLs in parallel. Results keep the order of urls.
func Benchmark(ctx context.Context, urls []string, wantChainID int64) []BenchmarkResult {
	results := make([]BenchmarkResult, len(urls))
	var wg sync.WaitGroup

	for i, u := range urls {
		i, u := i, u
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = Probe(ctx, u, wantChainID)
		}()
	}
	wg.Wait()

	log := zap.L().Named("rpc")
	for _, r := range results {
		log.Debug("probed endpoint",
			zap.String("url", r.URL),
			zap.Duration("latency", r.Latency),
			zap.Uint64("block", r.BlockNumber),
			zap.Error(r.Err))
	}
	return results
}

// ResultsToEndpoints converts benchmark results to checked picker Endpoints.
func ResultsToEndpoints(results []BenchmarkResult) []Endpoint {
	endpoints := make([]Endpoint, 0, len(results))
	for _, r := range results {
		endpoints = append(endpoints, Endpoint{
			URL:         r.URL,
			Latency:     r.Latency,
			BlockNumber: r.BlockNumber,
			Healthy:     r.Err == nil,
			Checked:     true,
		})
	}
	return endpoints
}

var (
	pickersMu sync.Mutex
	pickers   = map[Algorithm]*Picker{}
)

// pickerFor returns the process-wide picker for algo, so round-robin rotation
// and the fastest-pick cache carry over between Best calls. Both reset when
// the process exits.
func pickerFor(algo Algorithm) *Picker {
	pickersMu.Lock()
	defer pickersMu.Unlock()
	p, ok := pickers[algo]
	if !ok {
		p = NewPicker(algo)
		pickers[algo] = p
	}
	return p
}

// Best benchmarks urls and returns the endpoint chosen by algo. A single URL
// is returned as is without probing. Round-robin rotates across calls within
// one process only; a one-shot CLI run always starts at the first healthy
// endpoint.
func Best(ctx context.Context, urls []string, algo Algorithm, wantChainID int64) (string, error) {
	switch len(urls) {
	case 0:
		return "", ErrNoHealthyRPC
	case 1:
		return urls[0], nil
	}

	endpoints := ResultsToEndpoints(Benchmark(ctx, urls, wantChainID))
	winner, err := pickerFor(algo).Pick(endpoints)
	if err != nil {
		return "", err
	}
	zap.L().Named("rpc").Debug("selected endpoint", zap.String("url", winner.URL), zap.String("algorithm", string(algo)))
	return winner.URL, nil
}
