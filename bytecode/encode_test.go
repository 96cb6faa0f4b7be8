package bytecode

import (
	"bytes"
	"testing"

	"mustermann/codegen"
	"mustermann/dsl"
)

func generateS1(t *testing.T) []codegen.Instruction {
	t.Helper()
	prog, err := dsl.Parse(`service frontend { method main_page { print "Main page" } }`)
	if err != nil {
		t.Fatalf("dsl.Parse() error = %v", err)
	}
	code, err := codegen.NewGenerator(prog.Services[0]).Generate()
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	return code
}

func TestEncodeLabelsCoverAllJumpTargets(t *testing.T) {
	code := generateS1(t)
	img, err := Encode(code)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	for _, ins := range code {
		var target string
		switch ins.Op {
		case codegen.OpJump, codegen.OpJmpIfZero, codegen.OpCall:
			target = ins.Label
		default:
			continue
		}
		if _, ok := img.LabelToOffset[target]; !ok {
			t.Errorf("target label %q missing from LabelToOffset", target)
		}
	}
}

func TestEncodeDecodeEncodeRoundTrips(t *testing.T) {
	code := generateS1(t)
	img1, err := Encode(code)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	decoded, err := decode(img1.Bytes)
	if err != nil {
		t.Fatalf("decode() error = %v", err)
	}

	img2, err := Encode(decoded)
	if err != nil {
		t.Fatalf("Encode(decoded) error = %v", err)
	}

	if !bytes.Equal(img1.Bytes, img2.Bytes) {
		t.Fatalf("encode(decode(encode(s))) != encode(s)")
	}
	for label, off := range img1.LabelToOffset {
		if img2.LabelToOffset[label] != off {
			t.Errorf("label %q: offset %d != %d", label, img2.LabelToOffset[label], off)
		}
	}
}

func TestEncodePushIntUsesDistinctOpcodeFromPushString(t *testing.T) {
	strImg, err := Encode([]codegen.Instruction{codegen.Push(codegen.NewStringValue("x"))})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	intImg, err := Encode([]codegen.Instruction{codegen.Push(codegen.NewIntValue(1))})
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if strImg.Bytes[0] != byte(OpcodePushString) {
		t.Errorf("string push opcode = 0x%02x, want 0x%02x", strImg.Bytes[0], OpcodePushString)
	}
	if intImg.Bytes[0] != byte(OpcodePushInt) {
		t.Errorf("int push opcode = 0x%02x, want 0x%02x", intImg.Bytes[0], OpcodePushInt)
	}
}
