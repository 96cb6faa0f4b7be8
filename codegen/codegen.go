package codegen

import (
	"fmt"

	"mustermann/dsl"
	"mustermann/vmerrors"
)

// Generator lowers one dsl.Service at a time, following the template in
// spec §4.2.
type Generator struct {
	service *dsl.Service
}

// NewGenerator creates a Generator for the given service.
func NewGenerator(service *dsl.Service) *Generator {
	return &Generator{service: service}
}

// GenerateProgram lowers every service in prog, returning one instruction
// stream per service name.
func GenerateProgram(prog *dsl.Program) (map[string][]Instruction, error) {
	out := make(map[string][]Instruction, len(prog.Services))
	for _, svc := range prog.Services {
		code, err := NewGenerator(svc).Generate()
		if err != nil {
			return nil, fmt.Errorf("service %q: %w", svc.Name, err)
		}
		out[svc.Name] = code
	}
	return out, nil
}

// Generate lowers the service to its instruction stream:
//
//	Label("start_S")
//	Jump("start_S_main")
//	  for each method M of S: Label("start_M"); <body>; Ret; Label("end_M")
//	Label("start_S_main")
//	  <loop or CheckInterrupt envelope>
//	Label("end_S_main")
//	Label("end_S")
func (g *Generator) Generate() ([]Instruction, error) {
	svc := g.service
	var out []Instruction

	out = append(out, Label(startLabel(svc.Name)))
	out = append(out, Jump(mainLabel(svc.Name)))

	for _, method := range svc.Methods {
		body, err := g.generateMethod(method)
		if err != nil {
			return nil, err
		}
		out = append(out, body...)
	}

	out = append(out, Label(mainLabel(svc.Name)))

	if svc.Loop != nil {
		envelope, err := g.generateLoop(svc.Loop)
		if err != nil {
			return nil, err
		}
		out = append(out, envelope...)
	} else {
		out = append(out, g.generateDefaultEnvelope(svc.Name)...)
	}

	out = append(out, Label(endMainLabel(svc.Name)))
	out = append(out, Label(endLabel(svc.Name)))

	return out, nil
}

func (g *Generator) generateDefaultEnvelope(serviceName string) []Instruction {
	return []Instruction{
		CheckInterrupt(),
		Jump(mainLabel(serviceName)),
	}
}

// generateLoop lowers a service's Loop. Its single statement must be a bare
// local Call (spec §3 invariant); anything else fails codegen with
// InvalidStatementError.
func (g *Generator) generateLoop(loop *dsl.Loop) ([]Instruction, error) {
	call, ok := loop.Statement.(*dsl.Call)
	if !ok || call.Service != "" {
		return nil, &vmerrors.InvalidStatementError{
			Context: fmt.Sprintf("loop of service %q", g.service.Name),
			Reason:  "loop body must be a single local call",
		}
	}

	return []Instruction{
		Label(startLoopLabel(g.service.Name)),
		Call(methodStartLabel(call.Method)),
		Jump(startLoopLabel(g.service.Name)),
		Label(endLoopLabel(g.service.Name)),
	}, nil
}

// generateMethod lowers one method body, per the statement-lowering rules
// in spec §4.2.
func (g *Generator) generateMethod(method *dsl.Method) ([]Instruction, error) {
	var out []Instruction
	out = append(out, Label(methodStartLabel(method.Name)))

	for _, stmt := range method.Statements {
		lowered, err := g.generateStatement(method.Name, stmt)
		if err != nil {
			return nil, err
		}
		out = append(out, lowered...)
	}

	out = append(out, Ret())
	out = append(out, Label(methodEndLabel(method.Name)))
	return out, nil
}

func (g *Generator) generateStatement(methodName string, stmt dsl.Statement) ([]Instruction, error) {
	switch s := stmt.(type) {
	case *dsl.Print:
		return generatePrintLike(s.Message, s.Args, Stdout()), nil
	case *dsl.Stderr:
		return generatePrintLike(s.Message, s.Args, Stderr()), nil
	case *dsl.Sleep:
		return []Instruction{Sleep(s.DurationMS)}, nil
	case *dsl.Call:
		if s.Service == "" {
			return nil, &vmerrors.InvalidStatementError{
				Context: fmt.Sprintf("method %q of service %q", methodName, g.service.Name),
				Reason:  "local calls are only permitted inside the loop, not inside methods",
			}
		}
		return []Instruction{
			Push(NewStringValue(s.Service)),
			Push(NewStringValue(s.Method)),
			RemoteCall(),
		}, nil
	default:
		return nil, fmt.Errorf("codegen: unhandled statement type %T", stmt)
	}
}

// generatePrintLike implements the shared Print/Stderr lowering rule:
//
//	args == nil:  Push(message); <sink>
//	args == []:   nothing
//	args == [A0..An]: for each Ai: Push(message); Push(Ai); Printf; <sink>
func generatePrintLike(message string, args []string, sink Instruction) []Instruction {
	if args == nil {
		return []Instruction{Push(NewStringValue(message)), sink}
	}
	out := make([]Instruction, 0, len(args)*4)
	for _, arg := range args {
		out = append(out,
			Push(NewStringValue(message)),
			Push(NewStringValue(arg)),
			Printf(),
			sink,
		)
	}
	return out
}

func startLabel(service string) string      { return "start_" + service }
func endLabel(service string) string        { return "end_" + service }
func mainLabel(service string) string       { return "start_" + service + "_main" }
func endMainLabel(service string) string    { return "end_" + service + "_main" }
func startLoopLabel(service string) string  { return "start_loop" }
func endLoopLabel(service string) string    { return "end_loop" }
func methodStartLabel(method string) string { return "start_" + method }
func methodEndLabel(method string) string   { return "end_" + method }
