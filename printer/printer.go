// Package printer renders a compiled instruction stream as a two-column
// table for the --print-code CLI flag (spec §6).
//
// Grounded on original_source/printer.rs's AnnotatedInstruction (one row
// per instruction: mnemonic plus a plain-English description of its
// operand and effect), rendered here with github.com/olekukonko/tablewriter
// instead of Rust's tabled crate — both example repos pull in a real
// third-party table-writer for this exact job.
package printer

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"mustermann/codegen"
)

// PrintInstructions writes one row per instruction — mnemonic and
// description — to w.
func PrintInstructions(w io.Writer, code []codegen.Instruction) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Instruction", "Description"})
	table.SetAutoWrapText(false)
	for _, ins := range code {
		table.Append([]string{ins.Op.String(), describe(ins)})
	}
	table.Render()
}

// describe renders one instruction's plain-English effect, matching the
// wording of the original Display impl per variant.
func describe(ins codegen.Instruction) string {
	switch ins.Op {
	case codegen.OpPush:
		return fmt.Sprintf("Push %s", ins.Value)
	case codegen.OpPop:
		return "Pop the current stack frame"
	case codegen.OpDec:
		return "Decrement the top of the stack"
	case codegen.OpJmpIfZero:
		return fmt.Sprintf("Jump if the top of the stack is zero to %s", ins.Label)
	case codegen.OpLabel:
		return fmt.Sprintf("Label %s", ins.Label)
	case codegen.OpStdout:
		return "Print the top of the stack to stdout"
	case codegen.OpStderr:
		return "Print the top of the stack to stderr"
	case codegen.OpSleep:
		return fmt.Sprintf("Sleep for %dms", ins.Ms)
	case codegen.OpStoreVar:
		return fmt.Sprintf("Store %s in the variable %s", ins.Var, ins.Key)
	case codegen.OpLoadVar:
		return fmt.Sprintf("Load the variable %s onto the top of the stack", ins.Key)
	case codegen.OpDup:
		return "Duplicate the top of the stack"
	case codegen.OpJump:
		return fmt.Sprintf("Jump to %s", ins.Label)
	case codegen.OpPrintf:
		return "Takes the top two values of the stack, and pushes the formatted string back onto the stack"
	case codegen.OpRemoteCall:
		return "Call a remote service"
	case codegen.OpStartContext:
		return "Start a new trace context"
	case codegen.OpEndContext:
		return "End the current trace context"
	case codegen.OpCheckInterrupt:
		return "Poll for an inbound remote call and dispatch it if present"
	case codegen.OpCall:
		return fmt.Sprintf("Call %s", ins.Label)
	case codegen.OpRet:
		return "Return from the current function"
	default:
		return ""
	}
}
