package dsl

import "testing"

func TestParseFrontendMainPage(t *testing.T) {
	src := `service frontend { method main_page { print "Main page" } }`

	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(prog.Services) != 1 {
		t.Fatalf("len(Services) = %d, want 1", len(prog.Services))
	}

	svc := prog.Services[0]
	if svc.Name != "frontend" {
		t.Errorf("Name = %q, want frontend", svc.Name)
	}
	if svc.Loop != nil {
		t.Errorf("Loop = %+v, want nil", svc.Loop)
	}
	if len(svc.Methods) != 1 {
		t.Fatalf("len(Methods) = %d, want 1", len(svc.Methods))
	}

	method := svc.Methods[0]
	if method.Name != "main_page" {
		t.Errorf("Method.Name = %q, want main_page", method.Name)
	}
	if len(method.Statements) != 1 {
		t.Fatalf("len(Statements) = %d, want 1", len(method.Statements))
	}

	print, ok := method.Statements[0].(*Print)
	if !ok {
		t.Fatalf("Statements[0] = %T, want *Print", method.Statements[0])
	}
	if print.Message != "Main page" {
		t.Errorf("Message = %q, want %q", print.Message, "Main page")
	}
	if print.Args != nil {
		t.Errorf("Args = %v, want nil (no with clause)", print.Args)
	}
}

func TestParseLoopWithLocalCall(t *testing.T) {
	src := `service frontend {
		method main_page { print "Main page" }
		loop { call main_page }
	}`

	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	svc := prog.Services[0]
	if svc.Loop == nil {
		t.Fatal("Loop = nil, want non-nil")
	}
	call, ok := svc.Loop.Statement.(*Call)
	if !ok {
		t.Fatalf("Loop.Statement = %T, want *Call", svc.Loop.Statement)
	}
	if call.Service != "" || call.Method != "main_page" {
		t.Errorf("Call = %+v, want {Service: \"\", Method: main_page}", call)
	}
}

// TestParseLoopLeavesNonCallBodyToCodegen checks that the parser accepts a
// single non-call loop statement; rejecting it is codegen's job.
func TestParseLoopLeavesNonCallBodyToCodegen(t *testing.T) {
	src := `service frontend { loop { print "nope" } }`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v, want nil (codegen rejects a non-call loop body)", err)
	}
	if _, ok := prog.Services[0].Loop.Statement.(*Print); !ok {
		t.Fatalf("Loop.Statement = %T, want *Print", prog.Services[0].Loop.Statement)
	}
}

func TestParseLoopRejectsMultipleStatements(t *testing.T) {
	src := `service frontend { loop { call a call b } }`
	if _, err := Parse(src); err == nil {
		t.Fatal("Parse() error = nil, want error for multi-statement loop body")
	}
}

func TestParsePrintWithArgs(t *testing.T) {
	src := `service frontend { method m { print "Main page %s" with ["12345", "67890"] } }`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	print := prog.Services[0].Methods[0].Statements[0].(*Print)
	if len(print.Args) != 2 || print.Args[0] != "12345" || print.Args[1] != "67890" {
		t.Errorf("Args = %v, want [12345 67890]", print.Args)
	}
}

func TestParsePrintWithEmptyArgs(t *testing.T) {
	src := `service frontend { method m { print "Main page" with [] } }`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	print := prog.Services[0].Methods[0].Statements[0].(*Print)
	if print.Args == nil {
		t.Fatal("Args = nil, want non-nil empty slice")
	}
	if len(print.Args) != 0 {
		t.Errorf("Args = %v, want empty", print.Args)
	}
}

func TestParseStderr(t *testing.T) {
	src := `service frontend { method m { stderr "boom %s" with ["x"] } }`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	stderr, ok := prog.Services[0].Methods[0].Statements[0].(*Stderr)
	if !ok {
		t.Fatalf("Statements[0] = %T, want *Stderr", prog.Services[0].Methods[0].Statements[0])
	}
	if stderr.Message != "boom %s" || len(stderr.Args) != 1 || stderr.Args[0] != "x" {
		t.Errorf("Stderr = %+v", stderr)
	}
}

func TestParseSleepUnits(t *testing.T) {
	tests := []struct {
		src  string
		want uint64
	}{
		{`service s { method m { sleep 1000ms } }`, 1000},
		{`service s { method m { sleep 2s } }`, 2000},
	}
	for _, tt := range tests {
		prog, err := Parse(tt.src)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", tt.src, err)
		}
		sleep, ok := prog.Services[0].Methods[0].Statements[0].(*Sleep)
		if !ok {
			t.Fatalf("Statements[0] = %T, want *Sleep", prog.Services[0].Methods[0].Statements[0])
		}
		if sleep.DurationMS != tt.want {
			t.Errorf("DurationMS = %d, want %d", sleep.DurationMS, tt.want)
		}
	}
}

func TestParseRemoteCall(t *testing.T) {
	src := `service frontend { method m { call products.get_products } }`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	call := prog.Services[0].Methods[0].Statements[0].(*Call)
	if call.Service != "products" || call.Method != "get_products" {
		t.Errorf("Call = %+v, want {products get_products}", call)
	}
}

func TestParseInvalidTimeUnitFails(t *testing.T) {
	src := `service s { method m { sleep 10m } }`
	if _, err := Parse(src); err == nil {
		t.Fatal("Parse() error = nil, want error for invalid time unit")
	}
}

func TestParseMissingIdentifierFails(t *testing.T) {
	src := `service { method m { } }`
	if _, err := Parse(src); err == nil {
		t.Fatal("Parse() error = nil, want error for missing service name")
	}
}

func TestParseIgnoresComments(t *testing.T) {
	src := `
	// this is the frontend
	service frontend {
		// the only method
		method main_page {
			print "Main page" // trailing comment
		}
	}`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(prog.Services) != 1 {
		t.Fatalf("len(Services) = %d, want 1", len(prog.Services))
	}
}

func TestParseMultipleServices(t *testing.T) {
	src := `
	service frontend { method main_page { call products.get_products } }
	service products { method get_products { print "ok" } }
	`
	prog, err := Parse(src)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(prog.Services) != 2 {
		t.Fatalf("len(Services) = %d, want 2", len(prog.Services))
	}
}
