package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/rs/zerolog"

	"github.com/visionclara/clinic-scheduling/internal/directory"
)

// Load generator for the booking API. Workers post appointment requests
// built from the seeded directory plus random future dates and times,
// sprinkle in deliberately invalid payloads, and occasionally cancel a
// booking they made earlier.

type SimConfig struct {
	APIBaseURL   string
	Duration     time.Duration
	Workers      int
	CancelRatio  float64
	InvalidRatio float64
}

func loadSimConfig() SimConfig {
	cfg := SimConfig{
		APIBaseURL:   "http://localhost:8080",
		Duration:     30 * time.Second,
		Workers:      8,
		CancelRatio:  0.1,
		InvalidRatio: 0.1,
	}
	if v := os.Getenv("SIM_API_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("SIM_DURATION"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Duration = d
		}
	}
	if v := os.Getenv("SIM_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	return cfg
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Rejected  int64
	Error     int64
	mu        sync.Mutex
	latencies []time.Duration
}

func (om *OperationMetrics) Record(latency time.Duration, status int, err error) {
	atomic.AddInt64(&om.Total, 1)
	switch {
	case err != nil || status >= http.StatusInternalServerError:
		atomic.AddInt64(&om.Error, 1)
	case status >= http.StatusBadRequest:
		atomic.AddInt64(&om.Rejected, 1)
	default:
		atomic.AddInt64(&om.Success, 1)
	}

	om.mu.Lock()
	om.latencies = append(om.latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Percentile(p float64) time.Duration {
	om.mu.Lock()
	defer om.mu.Unlock()
	if len(om.latencies) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(om.latencies))
	copy(sorted, om.latencies)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	idx := int(float64(len(sorted)-1) * p)
	return sorted[idx]
}

type bookingPool struct {
	mu  sync.Mutex
	ids []int
}

func (bp *bookingPool) Add(id int) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	bp.ids = append(bp.ids, id)
}

func (bp *bookingPool) Random() (int, bool) {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	if len(bp.ids) == 0 {
		return 0, false
	}
	return bp.ids[gofakeit.Number(0, len(bp.ids)-1)], true
}

var visitTypes = []string{
	"Control de rutina",
	"Examen de vista",
	"Examen de fondo de ojo",
	"Urgencia",
}

func main() {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	cfg := loadSimConfig()

	gofakeit.Seed(time.Now().UnixNano())

	ruts := make([]string, 0)
	for _, p := range directory.SeedPatients() {
		ruts = append(ruts, p.RUT)
	}
	doctorCount := len(directory.SeedDoctors())

	logger.Info().
		Str("api", cfg.APIBaseURL).
		Dur("duration", cfg.Duration).
		Int("workers", cfg.Workers).
		Msg("simulate starting")

	client := &http.Client{Timeout: 5 * time.Second}
	bookings := &bookingPool{}
	bookMetrics := &OperationMetrics{}
	cancelMetrics := &OperationMetrics{}

	deadline := time.Now().Add(cfg.Duration)
	var wg sync.WaitGroup
	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(deadline) {
				roll := gofakeit.Float64Range(0, 1)
				switch {
				case roll < cfg.CancelRatio:
					cancelOne(client, cfg.APIBaseURL, bookings, cancelMetrics)
				default:
					bookOne(client, cfg.APIBaseURL, ruts, doctorCount, cfg.InvalidRatio, bookings, bookMetrics)
				}
			}
		}()
	}
	wg.Wait()

	report(logger, "agendar", bookMetrics)
	report(logger, "cancelar", cancelMetrics)
}

func bookOne(client *http.Client, baseURL string, ruts []string, doctorCount int, invalidRatio float64, bookings *bookingPool, m *OperationMetrics) {
	payload := map[string]any{
		"rut_paciente":  ruts[gofakeit.Number(0, len(ruts)-1)],
		"doctor_id":     strconv.Itoa(gofakeit.Number(1, doctorCount)),
		"fecha":         time.Now().AddDate(0, 0, gofakeit.Number(1, 60)).Format("2006-01-02"),
		"hora":          fmt.Sprintf("%02d:%02d", gofakeit.Number(9, 17), 30*gofakeit.Number(0, 1)),
		"tipo_consulta": visitTypes[gofakeit.Number(0, len(visitTypes)-1)],
	}

	// A slice of traffic is deliberately broken to exercise rejections.
	if gofakeit.Float64Range(0, 1) < invalidRatio {
		switch gofakeit.Number(0, 2) {
		case 0:
			payload["rut_paciente"] = "00000000-0"
		case 1:
			payload["fecha"] = "2020-01-01"
		default:
			payload["hora"] = ""
		}
	}

	body, _ := json.Marshal(payload)

	start := time.Now()
	resp, err := client.Post(baseURL+"/api/agendar", "application/json", bytes.NewReader(body))
	latency := time.Since(start)
	if err != nil {
		m.Record(latency, 0, err)
		return
	}
	defer resp.Body.Close()
	m.Record(latency, resp.StatusCode, nil)

	if resp.StatusCode == http.StatusOK {
		var out struct {
			Cita struct {
				ID int `json:"id"`
			} `json:"cita"`
		}
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, &out) == nil && out.Cita.ID > 0 {
			bookings.Add(out.Cita.ID)
		}
	}
}

func cancelOne(client *http.Client, baseURL string, bookings *bookingPool, m *OperationMetrics) {
	id, ok := bookings.Random()
	if !ok {
		return
	}

	start := time.Now()
	resp, err := client.Post(fmt.Sprintf("%s/api/cancelar/%d", baseURL, id), "application/json", nil)
	latency := time.Since(start)
	if err != nil {
		m.Record(latency, 0, err)
		return
	}
	defer resp.Body.Close()
	m.Record(latency, resp.StatusCode, nil)
}

func report(logger zerolog.Logger, op string, m *OperationMetrics) {
	logger.Info().
		Str("op", op).
		Int64("total", atomic.LoadInt64(&m.Total)).
		Int64("success", atomic.LoadInt64(&m.Success)).
		Int64("rejected", atomic.LoadInt64(&m.Rejected)).
		Int64("error", atomic.LoadInt64(&m.Error)).
		Dur("p50", m.Percentile(0.50)).
		Dur("p95", m.Percentile(0.95)).
		Dur("p99", m.Percentile(0.99)).
		Msg("results")
}
