package legacyconfig

import (
	"fmt"
	"strconv"
	"strings"
)

// ToProgramSource renders a legacy Config as DSL source text the current
// parser accepts: one service per task, a single method that prints the
// task's template once per var (mirroring the original runner cycling
// through vars across ticks — see original_source/log_runner.rs's
// interpolate()), looped at the task's frequency. A severity of "ERROR"
// routes through stderr instead of stdout.
func (c *Config) ToProgramSource() string {
	var b strings.Builder
	for i, task := range c.Tasks {
		writeTaskService(&b, i, task)
	}
	return b.String()
}

func writeTaskService(b *strings.Builder, index int, task Task) {
	name := serviceName(task.Name, index)
	sink := "print"
	if strings.EqualFold(task.Severity, "ERROR") {
		sink = "stderr"
	}

	fmt.Fprintf(b, "service %s {\n", name)
	fmt.Fprintf(b, "  method run_once {\n")
	fmt.Fprintf(b, "    %s %s", sink, quote(task.Template))
	if len(task.Vars) > 0 {
		fmt.Fprintf(b, " with [%s]", joinQuoted(task.Vars))
	}
	b.WriteString("\n")
	fmt.Fprintf(b, "    sleep %d s\n", task.Frequency.Seconds)
	b.WriteString("  }\n")
	b.WriteString("  loop { call run_once }\n")
	b.WriteString("}\n")
}

// quote wraps s in double quotes. The DSL lexer does no escape processing
// (spec §4.1), so a template containing a literal '"' cannot round-trip —
// legacy configs are expected not to contain one.
func quote(s string) string { return `"` + s + `"` }

func joinQuoted(vars []string) string {
	quoted := make([]string, len(vars))
	for i, v := range vars {
		quoted[i] = quote(v)
	}
	return strings.Join(quoted, ", ")
}

// serviceName derives a valid DSL identifier from a task name, falling back
// to a positional name when nothing alphanumeric survives.
func serviceName(taskName string, index int) string {
	var b strings.Builder
	for _, r := range taskName {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	name := strings.Trim(b.String(), "_")
	if name == "" {
		return "task_" + strconv.Itoa(index)
	}
	if name[0] >= '0' && name[0] <= '9' {
		return "task_" + name
	}
	return name
}
