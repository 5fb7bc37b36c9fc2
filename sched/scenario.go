// Scenario files describe a complete simulation setup (engine settings,
// resources, task set) in YAML. All parameter validation happens here, at
// the boundary: the engine itself assumes well-formed input.

package sched

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// TaskSpec is the boundary shape of one task, shared by YAML scenarios and
// the HTTP submit endpoint.
type TaskSpec struct {
	Name                string   `yaml:"name" json:"name"`
	ExecutionTime       float64  `yaml:"execution_time" json:"execution_time"`
	Period              float64  `yaml:"period" json:"period"`
	Deadline            float64  `yaml:"deadline" json:"deadline"`
	Priority            int      `yaml:"priority" json:"priority"`
	ArrivalTime         float64  `yaml:"arrival_time" json:"arrival_time"`
	Interrupt           bool     `yaml:"interrupt" json:"interrupt"`
	Criticality         string   `yaml:"criticality" json:"criticality,omitempty"`
	EnergyUsage         float64  `yaml:"energy_usage" json:"energy_usage,omitempty"`
	MemoryUsage         float64  `yaml:"memory_usage" json:"memory_usage,omitempty"`
	Affinity            []int    `yaml:"affinity" json:"affinity,omitempty"`
	Dependencies        []string `yaml:"dependencies" json:"dependencies,omitempty"`
	Resources           []string `yaml:"resources" json:"resources,omitempty"`
	PreemptionThreshold *int     `yaml:"preemption_threshold" json:"preemption_threshold,omitempty"`
}

// ResourceSpec is the YAML shape of one ceiling-protected resource.
type ResourceSpec struct {
	Name          string `yaml:"name"`
	AccessCeiling int    `yaml:"access_ceiling"`
	Preemptible   bool   `yaml:"preemptible"`
}

// Scenario holds a loadable simulation configuration.
type Scenario struct {
	Algorithm           string         `yaml:"algorithm"`
	Cores               int            `yaml:"cores"`
	BaseContextOverhead float64        `yaml:"base_context_overhead"`
	FaultTolerance      bool           `yaml:"fault_tolerance"`
	Quantum             float64        `yaml:"quantum"`
	Seed                int64          `yaml:"seed"`
	ExecutionJitter     bool           `yaml:"execution_jitter"`
	Resources           []ResourceSpec `yaml:"resources"`
	Tasks               []TaskSpec     `yaml:"tasks"`
}

// validCriticalities maps accepted criticality strings; empty defaults to SOFT.
var validCriticalities = map[string]bool{
	"":                      true,
	string(CriticalitySoft): true,
	string(CriticalityHard): true,
}

// LoadScenario reads and parses a YAML scenario file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	return &s, nil
}

// Validate checks every name, reference, and parameter range in the scenario.
func (s *Scenario) Validate() error {
	if !IsValidPolicy(s.Algorithm) {
		return fmt.Errorf("unknown scheduling policy %q", s.Algorithm)
	}
	if s.Cores < 0 {
		return fmt.Errorf("cores must be non-negative, got %d", s.Cores)
	}
	if s.Quantum < 0 {
		return fmt.Errorf("quantum must be non-negative, got %v", s.Quantum)
	}

	resources := make(map[string]bool, len(s.Resources))
	for _, r := range s.Resources {
		if r.Name == "" {
			return fmt.Errorf("resource with empty name")
		}
		if resources[r.Name] {
			return fmt.Errorf("duplicate resource %q", r.Name)
		}
		resources[r.Name] = true
	}

	names := make(map[string]bool, len(s.Tasks))
	for i, t := range s.Tasks {
		if t.Name == "" {
			return fmt.Errorf("task %d: empty name", i)
		}
		if names[t.Name] {
			return fmt.Errorf("duplicate task %q", t.Name)
		}
		names[t.Name] = true
		if t.ExecutionTime <= 0 {
			return fmt.Errorf("task %q: execution_time must be positive, got %v", t.Name, t.ExecutionTime)
		}
		if t.Deadline <= 0 {
			return fmt.Errorf("task %q: deadline must be positive, got %v", t.Name, t.Deadline)
		}
		if t.ArrivalTime < 0 {
			return fmt.Errorf("task %q: arrival_time must be non-negative, got %v", t.Name, t.ArrivalTime)
		}
		if t.Period < 0 {
			return fmt.Errorf("task %q: period must be non-negative, got %v", t.Name, t.Period)
		}
		if !validCriticalities[t.Criticality] {
			return fmt.Errorf("task %q: unknown criticality %q", t.Name, t.Criticality)
		}
		for _, ref := range t.Resources {
			if !resources[ref] {
				return fmt.Errorf("task %q: undeclared resource %q", t.Name, ref)
			}
		}
	}
	return nil
}

// Build validates the scenario and constructs a configured engine with all
// resources registered and tasks submitted.
func (s *Scenario) Build() (*Engine, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	cores := s.Cores
	if cores == 0 {
		cores = 2
	}
	e := NewEngine(Config{
		Algorithm:           s.Algorithm,
		NumCores:            cores,
		BaseContextOverhead: s.BaseContextOverhead,
		FaultTolerance:      s.FaultTolerance,
		Quantum:             s.Quantum,
		Seed:                s.Seed,
		ExecutionJitter:     s.ExecutionJitter,
	})
	for _, r := range s.Resources {
		e.AddResource(NewResource(r.Name, r.AccessCeiling, r.Preemptible))
	}
	for _, spec := range s.Tasks {
		e.Submit(spec.Task())
	}
	return e, nil
}

// Task converts the spec into a task instance.
func (spec TaskSpec) Task() *Task {
	t := NewTask(spec.Name, spec.ExecutionTime, spec.Period, spec.Deadline, spec.Priority)
	t.ArrivalTime = spec.ArrivalTime
	t.IsInterrupt = spec.Interrupt
	t.Criticality = CriticalitySoft
	if spec.Criticality != "" {
		t.Criticality = Criticality(spec.Criticality)
	}
	t.EnergyUsage = spec.EnergyUsage
	t.MemoryUsage = spec.MemoryUsage
	t.Affinity = append([]int(nil), spec.Affinity...)
	t.Dependencies = append([]string(nil), spec.Dependencies...)
	t.RequiredResources = append([]string(nil), spec.Resources...)
	if spec.PreemptionThreshold != nil {
		t.PreemptionThreshold = clampPriority(*spec.PreemptionThreshold)
	}
	return t
}
