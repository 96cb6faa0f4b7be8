package printer

import (
	"bytes"
	"strings"
	"testing"

	"mustermann/codegen"
)

func TestPrintInstructionsIncludesMnemonicsAndDescriptions(t *testing.T) {
	code := []codegen.Instruction{
		codegen.Label("start_frontend"),
		codegen.Push(codegen.NewStringValue("Main page")),
		codegen.Stdout(),
		codegen.Ret(),
	}

	var buf bytes.Buffer
	PrintInstructions(&buf, code)
	out := buf.String()

	for _, want := range []string{"Label", "start_frontend", "Push", "Main page", "Stdout", "Ret"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
