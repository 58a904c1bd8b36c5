package main

import (
	"bytes"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"os"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/pflag"
)

var (
	baseURL      string
	numWorkers   int
	testDuration time.Duration
	numUsers     int
)

var periods = []string{"7d", "30d", "this_month", "6m", "1y", "all"}

var sessionTypes = []string{"Gi", "No Gi", "Both"}

var techniques = []string{
	"Closed Guard - Armbar",
	"Mount - Americana",
	"Back Control - Rear Naked Choke",
	"Half Guard - Sweep",
	"Side Control - Kimura",
	"Open Guard - Triangle",
	"Standing - Double Leg",
}

var httpClient = &http.Client{
	Timeout: 5 * time.Second,
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

type question struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// questionIDs maps a question role to its ID on the target server.
var questionIDs = map[string]string{}

func main() {
	pflag.StringVar(&baseURL, "url", "http://127.0.0.1:8090", "server base URL")
	pflag.IntVar(&numWorkers, "workers", 50, "concurrent workers")
	pflag.DurationVar(&testDuration, "duration", 10*time.Second, "duration of each phase")
	pflag.IntVar(&numUsers, "users", 200, "number of simulated athletes")
	pflag.Parse()

	fmt.Println("=== TrainLog Load Test ===")
	fmt.Printf("Workers: %d | Duration: %s | Users: %d\n\n", numWorkers, testDuration, numUsers)

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
			os.Exit(1)
		}
		time.Sleep(200 * time.Millisecond)
	}
	fmt.Println("OK")

	if err := loadQuestions(); err != nil {
		fmt.Printf("FAILED: %s\n", err)
		os.Exit(1)
	}

	fmt.Println("\n--- Phase 1: Logging sessions (POST /entries) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		return doLogEntry(rng)
	})

	fmt.Println("\n--- Phase 2: Mixed load (30% POST, 70% GET) ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		r := rng.Float64()
		switch {
		case r < 0.30:
			return doLogEntry(rng)
		case r < 0.85:
			return doGetDashboard(rng)
		default:
			return doGetSkips(rng)
		}
	})

	fmt.Println("\n--- Phase 3: Dashboard only ---")
	runPhase(testDuration, func(rng *rand.Rand) result {
		return doGetDashboard(rng)
	})
}

func loadQuestions() error {
	resp, err := httpClient.Get(baseURL + "/questions")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	var questions []question
	if err := json.NewDecoder(resp.Body).Decode(&questions); err != nil {
		return err
	}
	for _, q := range questions {
		if q.Role != "" {
			questionIDs[q.Role] = q.ID
		}
	}
	return nil
}

func runPhase(duration time.Duration, workFn func(rng *rand.Rand) result) {
	results := make(chan result, 10000)
	var wg sync.WaitGroup
	var totalOps atomic.Int64
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
					r := workFn(rng)
					totalOps.Add(1)
					results <- r
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

		avg := avgDuration(s.latencies)
		p50 := percentile(s.latencies, 0.50)
		p95 := percentile(s.latencies, 0.95)
		p99 := percentile(s.latencies, 0.99)

		fmt.Printf("  %-22s %8d %6d %10s %10s %10s %10s\n",
			ep, s.count, s.errors, fmtDur(avg), fmtDur(p50), fmtDur(p95), fmtDur(p99))
	}

	rps := float64(totalOps) / duration.Seconds()
	fmt.Println("  " + strings.Repeat("-", 88))
	fmt.Printf("  Total: %d reqs | Errors: %d (%.1f%%) | RPS: %.0f\n",
		totalOps, totalErrors, float64(totalErrors)/float64(totalOps)*100, rps)
}

func randomUser(rng *rand.Rand) string {
	return fmt.Sprintf("athlete-%d", rng.Intn(numUsers))
}

func doLogEntry(rng *rand.Rand) result {
	date := time.Now().AddDate(0, 0, -rng.Intn(400)).Format("2006-01-02")
	answers := []map[string]string{
		{"question_id": questionIDs["session_type"], "answer": sessionTypes[rng.Intn(len(sessionTypes))]},
		{"question_id": questionIDs["rpe"], "answer": fmt.Sprintf("%d", rng.Intn(9)+1)},
		{"question_id": questionIDs["rounds"], "answer": fmt.Sprintf("%d", rng.Intn(10))},
		{"question_id": questionIDs["technique"], "answer": techniques[rng.Intn(len(techniques))]},
	}
	if rng.Float64() < 0.05 {
		answers[1]["answer"] = "tired"
	}
	body := map[string]interface{}{
		"date":      date,
		"responses": answers,
	}

	data, _ := json.Marshal(body)
	req, _ := http.NewRequest(http.MethodPost, baseURL+"/entries", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", randomUser(rng))
	return doRequest("POST /entries", req, http.StatusCreated)
}

func doGetDashboard(rng *rand.Rand) result {
	url := fmt.Sprintf("%s/analytics/dashboard?period=%s", baseURL, periods[rng.Intn(len(periods))])
	req, _ := http.NewRequest(http.MethodGet, url, nil)
	req.Header.Set("X-User-ID", randomUser(rng))
	return doRequest("GET /analytics/dashboard", req, http.StatusOK)
}

func doGetSkips(rng *rand.Rand) result {
	req, _ := http.NewRequest(http.MethodGet, baseURL+"/analytics/skips?period=all", nil)
	req.Header.Set("X-User-ID", randomUser(rng))
	return doRequest("GET /analytics/skips", req, http.StatusOK)
}

func doRequest(endpoint string, req *http.Request, want int) result {
	start := time.Now()
	resp, err := httpClient.Do(req)
	lat := time.Since(start)
	if err != nil {
		return result{endpoint, 0, lat, true}
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	return result{endpoint, resp.StatusCode, lat, resp.StatusCode != want}
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
