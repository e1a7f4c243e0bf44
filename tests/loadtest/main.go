package main

import (
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"
)

var (
	baseURL      string
	numWorkers   int
	testDuration time.Duration
	userIDs      []int
)

var platforms = []string{"steam", "gog", "origin", "epic", "uplay"}

var httpClient = &http.Client{
	Timeout: 10 * time.Second,
	Transport: &http.Transport{
		MaxIdleConns:        200,
		MaxIdleConnsPerHost: 200,
		IdleConnTimeout:     30 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   2 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
	},
}

type result struct {
	endpoint string
	status   int
	latency  time.Duration
	err      bool
}

type stats struct {
	count     int64
	errors    int64
	latencies []time.Duration
}

var rootCmd = &cobra.Command{
	Use:   "loadtest",
	Short: "Drive a running gamatrix server with comparison traffic",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(userIDs) < 2 {
			return fmt.Errorf("need at least two --user ids, got %d", len(userIDs))
		}
		run()
		return nil
	},
}

func main() {
	rootCmd.Flags().StringVar(&baseURL, "url", "http://127.0.0.1:8080", "Server base URL")
	rootCmd.Flags().IntVar(&numWorkers, "workers", 50, "Concurrent clients")
	rootCmd.Flags().DurationVar(&testDuration, "duration", 10*time.Second, "Length of each phase")
	rootCmd.Flags().IntSliceVar(&userIDs, "user", []int{1, 2, 3}, "User ids present in the data store")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run() {
	fmt.Println("=== gamatrix Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Users: %v\n\n", numWorkers, testDuration, userIDs)

	fmt.Print("Waiting for server... ")
	for i := 0; i < 30; i++ {
		resp, err := httpClient.Get(baseURL + "/health")
		if err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			break
		}
		if i == 29 {
			fmt.Println("FAILED: server not responding")
			return
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	// A handful of fixed queries repeated: mostly response cache hits.
	fmt.Println("\n--- Phase 1: Repeated comparisons (GET /compare) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		return doCompare(fixedQuery(rng.Intn(4)))
	})

	// Random option sets: mostly cache misses running the full pipeline.
	fmt.Println("\n--- Phase 2: Varied comparisons (90% /compare, 10% /users) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		if rng.Float64() < 0.10 {
			return doGet("GET /users", "/users")
		}
		return doCompare(randomQuery(rng))
	})

	fmt.Println("\n--- Phase 3: Random picks and health checks ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		if rng.Float64() < 0.20 {
			return doGet("GET /health", "/health")
		}
		q := randomQuery(rng)
		q.Set("randomize", "1")
		return doCompare(q)
	})
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	stop := make(chan struct{})

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			for {
				select {
				case <-stop:
					return
				default:
					results <- workFn(rng)
				}
			}
		}(rand.Int63() + int64(i))
	}

	allResults := make(map[string]*stats)
	done := make(chan struct{})
	go func() {
		for r := range results {
			s, ok := allResults[r.endpoint]
			if !ok {
				s = &stats{}
				allResults[r.endpoint] = s
			}
			s.count++
			if r.err {
				s.errors++
			}
			s.latencies = append(s.latencies, r.latency)
		}
		close(done)
	}()

	time.Sleep(duration)
	close(stop)
	wg.Wait()
	close(results)
	<-done

	printResults(allResults, duration)
}

func printResults(allResults map[string]*stats, duration time.Duration) {
	var totalOps int64
	var totalErrors int64

	endpoints := make([]string, 0, len(allResults))
	for ep := range allResults {
		endpoints = append(endpoints, ep)
	}
	sort.Strings(endpoints)

	fmt.Printf("\n  %-22s %8s %6s %10s %10s %10s %10s\n",
		"Endpoint", "Reqs", "Errs", "Avg", "P50", "P95", "P99")
	fmt.Println("  " + strings.Repeat("-", 88))

	for _, ep := range endpoints {
		s := allResults[ep]
		totalOps += s.count
		totalErrors += s.errors

		sort.Slice(s.latencies, func(i, j int) bool {
			return s.latencies[i] < s.latencies[j]
		})

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors,
			fmtDur(avgDuration(s.latencies)),
			fmtDur(percentile(s.latencies, 0.50)),
			fmtDur(percentile(s.latencies, 0.95)),
			fmtDur(percentile(s.latencies, 0.99)))
	}

	if totalOps == 0 {
		fmt.Println("  No requests completed")
		return
	}
	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 88))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func fixedQuery(n int) url.Values {
	q := url.Values{}
	for _, id := range userIDs[:2] {
		q.Add("user", strconv.Itoa(id))
	}
	switch n {
	case 1:
		q.Set("mode", "all")
	case 2:
		q.Set("include_single_player", "1")
	case 3:
		q.Set("installed_only", "1")
	}
	return q
}

func randomQuery(rng *rand.Rand) url.Values {
	q := url.Values{}
	picked := rng.Perm(len(userIDs))[:rng.Intn(len(userIDs))+1]
	for _, i := range picked {
		q.Add("user", strconv.Itoa(userIDs[i]))
	}
	if rng.Float64() < 0.3 {
		q.Set("mode", "all")
	}
	if rng.Float64() < 0.3 {
		q.Add("exclude_platform", platforms[rng.Intn(len(platforms))])
	}
	if rng.Float64() < 0.5 {
		q.Set("include_single_player", "1")
	}
	if rng.Float64() < 0.2 {
		q.Set("installed_only", "1")
	}
	if rng.Float64() < 0.2 {
		q.Set("exclusive", "1")
	}
	return q
}

func doCompare(q url.Values) result {
	return doGet("GET /compare", "/compare?"+q.Encode())
}

func doGet(endpoint, path string) result {
	start := time.Now()
	resp, err := httpClient.Get(baseURL + path)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != http.StatusOK}
}

func avgDuration(d []time.Duration) time.Duration {
	if len(d) == 0 {
		return 0
	}
	var sum time.Duration
	for _, v := range d {
		sum += v
	}
	return sum / time.Duration(len(d))
}

func percentile(d []time.Duration, p float64) time.Duration {
	if len(d) == 0 {
		return 0
	}
	idx := int(float64(len(d)) * p)
	if idx >= len(d) {
		idx = len(d) - 1
	}
	return d[idx]
}

func fmtDur(d time.Duration) string {
	if d < time.Millisecond {
		return fmt.Sprintf("%dµs", d.Microseconds())
	}
	return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1000.0)
}
