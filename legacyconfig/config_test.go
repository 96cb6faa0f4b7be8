package legacyconfig

import (
	"errors"
	"testing"

	"gopkg.in/yaml.v3"

	"mustermann/dsl"
	"mustermann/vmerrors"
)

func TestFrequencyAmount(t *testing.T) {
	src := `
tasks:
  - name: App Login Errors
    frequency: 45
    template: "Failed to login: %s"
    vars:
      - Invalid username or password
      - Upstream connection refused
    severity: ERROR
`
	var cfg Config
	if err := yaml.Unmarshal([]byte(src), &cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(cfg.Tasks) != 1 {
		t.Fatalf("len(Tasks) = %d, want 1", len(cfg.Tasks))
	}
	task := cfg.Tasks[0]
	if task.Frequency.Infinite || task.Frequency.Seconds != 45 {
		t.Errorf("Frequency = %+v, want Seconds=45", task.Frequency)
	}
	if task.Template != "Failed to login: %s" {
		t.Errorf("Template = %q", task.Template)
	}
	if len(task.Vars) != 2 {
		t.Errorf("Vars = %v", task.Vars)
	}
	if task.Severity != "ERROR" {
		t.Errorf("Severity = %q", task.Severity)
	}
}

func TestFrequencyInfinite(t *testing.T) {
	src := `
tasks:
- name: App Logs
  frequency: Infinite
  template: "User %s logged in"
  vars:
    - Franz Josef
    - "34"
    - Heinz
  severity: INFO
`
	var cfg Config
	if err := yaml.Unmarshal([]byte(src), &cfg); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	task := cfg.Tasks[0]
	if !task.Frequency.Infinite || task.Frequency.Seconds != 1 {
		t.Errorf("Frequency = %+v, want Infinite with Seconds=1", task.Frequency)
	}
}

func TestFrequencyUnsupportedConst(t *testing.T) {
	src := `
tasks:
- name: Bad
  frequency: Sometimes
  template: "x"
  vars: []
  severity: INFO
`
	var cfg Config
	err := yaml.Unmarshal([]byte(src), &cfg)
	if err == nil {
		t.Fatal("Unmarshal() error = nil, want UnsupportedConstError")
	}
	var unsupported *vmerrors.UnsupportedConstError
	if !errors.As(err, &unsupported) {
		t.Fatalf("error = %v (%T), want to contain UnsupportedConstError", err, err)
	}
	if unsupported.Const != "Sometimes" {
		t.Errorf("Const = %q, want Sometimes", unsupported.Const)
	}
}

func TestToProgramSourceParses(t *testing.T) {
	cfg := &Config{Tasks: []Task{
		{
			Name:      "App Login Errors",
			Frequency: Frequency{Seconds: 45},
			Template:  "Failed to login: %s",
			Vars:      []string{"Invalid username or password", "Upstream connection refused"},
			Severity:  "ERROR",
		},
		{
			Name:      "App Logs",
			Frequency: Frequency{Infinite: true, Seconds: 1},
			Template:  "User %s logged in",
			Vars:      []string{"Franz Josef", "Heinz"},
			Severity:  "INFO",
		},
	}}

	src := cfg.ToProgramSource()
	prog, err := dsl.Parse(src)
	if err != nil {
		t.Fatalf("dsl.Parse() error = %v\nsource:\n%s", err, src)
	}
	if len(prog.Services) != 2 {
		t.Fatalf("len(Services) = %d, want 2", len(prog.Services))
	}

	first := prog.Services[0]
	if first.Loop == nil {
		t.Fatal("Services[0].Loop = nil, want a loop")
	}
	if len(first.Methods) != 1 || first.Methods[0].Name != "run_once" {
		t.Fatalf("Services[0].Methods = %+v", first.Methods)
	}
	stmt, ok := first.Methods[0].Statements[0].(*dsl.Stderr)
	if !ok {
		t.Fatalf("first statement = %T, want *dsl.Stderr (ERROR severity)", first.Methods[0].Statements[0])
	}
	if len(stmt.Args) != 2 {
		t.Errorf("Args = %v, want 2 entries", stmt.Args)
	}
}

func TestServiceNameSanitizesNonIdentifierChars(t *testing.T) {
	got := serviceName("App Login Errors!", 0)
	for _, r := range got {
		if !(r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			t.Fatalf("serviceName() = %q contains non-identifier rune %q", got, r)
		}
	}
}
