package codegen

import (
	"testing"

	"mustermann/dsl"
)

func mustParse(t *testing.T, src string) *dsl.Program {
	t.Helper()
	prog, err := dsl.Parse(src)
	if err != nil {
		t.Fatalf("dsl.Parse() error = %v", err)
	}
	return prog
}

func opSeq(code []Instruction) []Opcode {
	out := make([]Opcode, len(code))
	for i, ins := range code {
		out[i] = ins.Op
	}
	return out
}

// TestGenerateS1 checks the instruction prefix from spec scenario S1.
func TestGenerateS1(t *testing.T) {
	prog := mustParse(t, `service frontend { method main_page { print "Main page" } }`)
	code, err := NewGenerator(prog.Services[0]).Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	want := []Instruction{
		Label("start_frontend"),
		Jump("start_frontend_main"),
		Label("start_main_page"),
		Push(NewStringValue("Main page")),
		Stdout(),
		Ret(),
		Label("end_main_page"),
		Label("start_frontend_main"),
		CheckInterrupt(),
		Jump("start_frontend_main"),
		Label("end_frontend_main"),
		Label("end_frontend"),
	}

	if len(code) != len(want) {
		t.Fatalf("len(code) = %d, want %d\ngot:  %v\nwant: %v", len(code), len(want), code, want)
	}
	for i := range want {
		if code[i] != want[i] {
			t.Fatalf("instruction %d = %v, want %v", i, code[i], want[i])
		}
	}
}

// TestGenerateS2 checks that a Loop replaces the CheckInterrupt tail with
// the Call-based loop envelope.
func TestGenerateS2(t *testing.T) {
	prog := mustParse(t, `service frontend {
		method main_page { print "Main page" }
		loop { call main_page }
	}`)
	code, err := NewGenerator(prog.Services[0]).Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	want := []Instruction{
		Label("start_frontend"),
		Jump("start_frontend_main"),
		Label("start_main_page"),
		Push(NewStringValue("Main page")),
		Stdout(),
		Ret(),
		Label("end_main_page"),
		Label("start_frontend_main"),
		Label("start_loop"),
		Call("start_main_page"),
		Jump("start_loop"),
		Label("end_loop"),
		Label("end_frontend_main"),
		Label("end_frontend"),
	}

	if len(code) != len(want) {
		t.Fatalf("len(code) = %d, want %d\ngot:  %v\nwant: %v", len(code), len(want), code, want)
	}
	for i := range want {
		if code[i] != want[i] {
			t.Fatalf("instruction %d = %v, want %v", i, code[i], want[i])
		}
	}
}

// TestGenerateS3PrintWithArgsExpandsPerArg checks the per-argument Printf
// expansion rule (spec S3).
func TestGenerateS3PrintWithArgsExpandsPerArg(t *testing.T) {
	prog := mustParse(t, `service frontend {
		method main_page { print "Main page %s" with ["12345", "67890"] }
	}`)
	code, err := NewGenerator(prog.Services[0]).Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	got := opSeq(code)
	want := []Opcode{
		OpLabel, OpJump,
		OpLabel,
		OpPush, OpPush, OpPrintf, OpStdout, // "12345"
		OpPush, OpPush, OpPrintf, OpStdout, // "67890"
		OpRet,
		OpLabel,
		OpLabel, OpCheckInterrupt, OpJump,
		OpLabel, OpLabel,
	}
	if len(got) != len(want) {
		t.Fatalf("len(opcodes) = %d, want %d\ngot:  %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("opcode %d = %s, want %s", i, got[i], want[i])
		}
	}
}

// TestGenerateS4EmptyArgsProducesNoPrint checks that `with []` suppresses
// the print entirely (spec S4).
func TestGenerateS4EmptyArgsProducesNoPrint(t *testing.T) {
	prog := mustParse(t, `service frontend {
		method main_page { print "Main page" with [] sleep 5ms }
	}`)
	code, err := NewGenerator(prog.Services[0]).Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	for _, ins := range code {
		if ins.Op == OpStdout || ins.Op == OpPrintf {
			t.Fatalf("unexpected %s instruction in %v", ins.Op, code)
		}
	}
}

// TestGenerateLocalCallInMethodFails checks the InvalidStatement rule: a
// local call is only permitted inside a loop body.
func TestGenerateLocalCallInMethodFails(t *testing.T) {
	prog := mustParse(t, `service frontend {
		method a { }
		method b { call a }
	}`)
	if _, err := NewGenerator(prog.Services[0]).Generate(); err == nil {
		t.Fatal("Generate() error = nil, want InvalidStatementError for local call inside method")
	}
}

// TestGenerateLoopRemoteCallFails checks that a loop body calling a remote
// service (rather than a bare local call) is rejected.
func TestGenerateLoopRemoteCallFails(t *testing.T) {
	prog := mustParse(t, `service frontend {
		method a { }
		loop { call products.get_products }
	}`)
	if _, err := NewGenerator(prog.Services[0]).Generate(); err == nil {
		t.Fatal("Generate() error = nil, want InvalidStatementError for remote call in loop")
	}
}

func TestGenerateRemoteCallPushesServiceAndMethod(t *testing.T) {
	prog := mustParse(t, `service frontend {
		method main_page { call products.get_products }
	}`)
	code, err := NewGenerator(prog.Services[0]).Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	var push1, push2 Instruction
	found := 0
	for _, ins := range code {
		if ins.Op == OpPush {
			if found == 0 {
				push1 = ins
			} else if found == 1 {
				push2 = ins
			}
			found++
		}
		if ins.Op == OpRemoteCall && found < 2 {
			t.Fatal("RemoteCall appeared before its two Push operands")
		}
	}
	if found != 2 {
		t.Fatalf("found %d Push instructions, want 2", found)
	}
	if push1.Value.Str != "products" || push2.Value.Str != "get_products" {
		t.Fatalf("pushes = %v, %v, want products, get_products", push1.Value, push2.Value)
	}
}

func TestGenerateProgramMultipleServices(t *testing.T) {
	prog := mustParse(t, `
	service frontend { method main_page { call products.get_products } }
	service products { method get_products { print "ok" } }
	`)
	out, err := GenerateProgram(prog)
	if err != nil {
		t.Fatalf("GenerateProgram() error = %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("len(out) = %d, want 2", len(out))
	}
	if _, ok := out["frontend"]; !ok {
		t.Error("missing frontend entry")
	}
	if _, ok := out["products"]; !ok {
		t.Error("missing products entry")
	}
}
