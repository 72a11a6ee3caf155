// Command shadow_compare replays read-only requests against this API and
// the legacy enrollment service and reports response differences. It is
// meant to run during the migration window, before traffic is cut over.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"
)

type probe struct {
	Method   string `json:"method"`
	Path     string `json:"path"`
	Critical bool   `json:"critical"`
}

type probeFile struct {
	Probes []probe `json:"probes"`
}

type outcome struct {
	Probe         probe
	NewStatus     int
	LegacyStatus  int
	Match         bool
	Err           error
	NewLatency    time.Duration
	LegacyLatency time.Duration
}

// Fields that legitimately differ between the two stacks and must not
// count as a diff.
var volatileFields = map[string]bool{
	"request_id":   true,
	"generated_at": true,
	"expires_at":   true,
}

func main() {
	var (
		newBase    string
		legacyBase string
		probesPath string
		token      string
		timeout    time.Duration
	)

	flag.StringVar(&newBase, "new-base", "http://localhost:8080", "enroll-api base URL")
	flag.StringVar(&legacyBase, "legacy-base", "http://localhost:5000", "legacy enrollment API base URL")
	flag.StringVar(&probesPath, "probes", filepath.Join("scripts", "shadow_compare", "probes.json"), "JSON probe list")
	flag.StringVar(&token, "token", os.Getenv("SHADOW_COMPARE_TOKEN"), "bearer token for authenticated probes")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "per-request timeout")
	flag.Parse()

	probes, err := loadProbes(probesPath)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("load probes: %v", err)
		}
		probes = defaultProbes()
	}

	client := &http.Client{Timeout: timeout}

	breaking := 0
	tolerated := 0
	fmt.Println("Shadow Compare Report")
	fmt.Println("=====================")
	for _, p := range probes {
		out := runProbe(client, newBase, legacyBase, token, p)
		report(out)
		if out.Err != nil || !out.Match {
			if p.Critical {
				breaking++
			} else {
				tolerated++
			}
		}
	}

	fmt.Printf("\nbreaking diffs: %d, tolerated diffs: %d\n", breaking, tolerated)
	if breaking > 0 {
		os.Exit(1)
	}
}

func loadProbes(path string) ([]probe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var pf probeFile
	if err := json.Unmarshal(data, &pf); err != nil {
		return nil, err
	}
	if len(pf.Probes) == 0 {
		return nil, fmt.Errorf("no probes defined in %s", path)
	}
	return pf.Probes, nil
}

// defaultProbes covers the surface that is safe to hit repeatedly:
// health endpoints and catalog reads.
func defaultProbes() []probe {
	return []probe{
		{Method: http.MethodGet, Path: "/health", Critical: true},
		{Method: http.MethodGet, Path: "/ready", Critical: false},
		{Method: http.MethodGet, Path: "/api/v1/courses", Critical: true},
		{Method: http.MethodGet, Path: "/api/v1/courses?major=CS", Critical: false},
		{Method: http.MethodGet, Path: "/api/v1/courses?sort=credit_hours&order=desc", Critical: false},
	}
}

func runProbe(client *http.Client, newBase, legacyBase, token string, p probe) outcome {
	out := outcome{Probe: p}

	newBody, newStatus, newDur, err := fetch(client, newBase, token, p)
	if err != nil {
		out.Err = fmt.Errorf("enroll-api: %w", err)
		return out
	}
	legacyBody, legacyStatus, legacyDur, err := fetch(client, legacyBase, token, p)
	if err != nil {
		out.Err = fmt.Errorf("legacy: %w", err)
		return out
	}

	out.NewStatus = newStatus
	out.LegacyStatus = legacyStatus
	out.NewLatency = newDur
	out.LegacyLatency = legacyDur
	out.Match = newStatus == legacyStatus && bodiesEqual(newBody, legacyBody)
	return out
}

func fetch(client *http.Client, base, token string, p probe) ([]byte, int, time.Duration, error) {
	method := strings.ToUpper(strings.TrimSpace(p.Method))
	if method == "" {
		method = http.MethodGet
	}
	url := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(p.Path, "/")

	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		return nil, 0, 0, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, 0, err
	}
	return body, resp.StatusCode, time.Since(start), nil
}

// bodiesEqual compares responses as JSON with volatile fields stripped,
// falling back to a byte comparison for non-JSON bodies.
func bodiesEqual(a, b []byte) bool {
	var av, bv interface{}
	if json.Unmarshal(a, &av) != nil || json.Unmarshal(b, &bv) != nil {
		return strings.TrimSpace(string(a)) == strings.TrimSpace(string(b))
	}
	return reflect.DeepEqual(scrub(av), scrub(bv))
}

func scrub(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, inner := range val {
			if volatileFields[k] {
				delete(val, k)
				continue
			}
			val[k] = scrub(inner)
		}
		return val
	case []interface{}:
		for i, inner := range val {
			val[i] = scrub(inner)
		}
		return val
	case float64:
		// The legacy stack emits integral numbers without decimals.
		if val == float64(int64(val)) {
			return int64(val)
		}
		return val
	default:
		return val
	}
}

func report(out outcome) {
	state := "OK"
	switch {
	case out.Err != nil:
		state = "ERROR"
	case !out.Match:
		state = "DIFF"
	}
	fmt.Printf("[%s] %s %s", state, out.Probe.Method, out.Probe.Path)
	if out.Probe.Critical {
		fmt.Print(" (critical)")
	}
	fmt.Println()
	if out.Err != nil {
		fmt.Printf("  %v\n", out.Err)
		return
	}
	fmt.Printf("  enroll-api %d in %s | legacy %d in %s\n",
		out.NewStatus, out.NewLatency.Round(time.Millisecond),
		out.LegacyStatus, out.LegacyLatency.Round(time.Millisecond))
}
