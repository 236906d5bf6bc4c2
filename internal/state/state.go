package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/joshharrison/linesched/internal/flowshop"
	"github.com/joshharrison/linesched/internal/planner"
)

const (
	runsDir    = "runs"
	latestFile = "latest"
)

// ErrNoRuns is returned when the store holds no saved plan.
var ErrNoRuns = errors.New("no saved runs")

// RunInfo summarizes a saved plan for listings.
type RunInfo struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Units     int       `json:"units"`
	Makespan  int       `json:"makespan"`
}

// Store persists plans as JSON files under a directory.
type Store struct {
	dir string
	mu  sync.Mutex
}

// NewStore returns a Store rooted at dir. Nothing is created until Save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store's root directory.
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) runPath(id string) string {
	return filepath.Join(s.dir, runsDir, id+".json")
}

// Save writes the plan and marks it as the latest run.
func (s *Store) Save(plan *planner.Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Join(s.dir, runsDir), 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal plan: %w", err)
	}
	if err := os.WriteFile(s.runPath(plan.ID), data, 0644); err != nil {
		return fmt.Errorf("write plan: %w", err)
	}
	return os.WriteFile(filepath.Join(s.dir, latestFile), []byte(plan.ID+"\n"), 0644)
}

// Load reads a saved plan by ID.
func (s *Store) Load(id string) (*planner.Plan, error) {
	if id == "" || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return nil, fmt.Errorf("%w: invalid plan id %q", flowshop.ErrInvalidInput, id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.runPath(id))
	if err != nil {
		return nil, fmt.Errorf("read plan %s: %w", id, err)
	}
	var plan planner.Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("parse plan %s: %w", id, err)
	}
	return &plan, nil
}

// Latest reads the most recently saved plan.
func (s *Store) Latest() (*planner.Plan, error) {
	s.mu.Lock()
	data, err := os.ReadFile(filepath.Join(s.dir, latestFile))
	s.mu.Unlock()
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("read latest: %w", err)
	}
	return s.Load(strings.TrimSpace(string(data)))
}

// List returns every saved run, newest first.
func (s *Store) List() ([]RunInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(filepath.Join(s.dir, runsDir))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}

	var runs []RunInfo
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.dir, runsDir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}
		var plan planner.Plan
		if err := json.Unmarshal(data, &plan); err != nil {
			return nil, fmt.Errorf("parse %s: %w", e.Name(), err)
		}
		runs = append(runs, RunInfo{
			ID:        plan.ID,
			CreatedAt: plan.CreatedAt,
			Units:     len(plan.Jobs),
			Makespan:  plan.Makespan,
		})
	}

	sort.SliceStable(runs, func(a, b int) bool {
		return runs[a].CreatedAt.After(runs[b].CreatedAt)
	})
	return runs, nil
}

// Exists reports whether any run has been saved.
func (s *Store) Exists() bool {
	_, err := os.Stat(filepath.Join(s.dir, latestFile))
	return err == nil
}

// Clean removes the whole state directory.
func (s *Store) Clean() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return os.RemoveAll(s.dir)
}
