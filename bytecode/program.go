package bytecode

// Image is the encoded form of one service's instruction stream: a flat
// byte buffer plus the label offset maps the VM uses to resolve jump and
// call targets (spec §4.3).
type Image struct {
	Bytes []byte

	// LabelToOffset maps a label name to the byte offset immediately after
	// the Label instruction that declared it — the position execution
	// resumes at on Jump/JmpIfZero/Call.
	LabelToOffset map[string]int

	// OffsetToLabel is the inverse map, used by RemoteCall to recover the
	// enclosing method's label for tracing (spec §4.4, MissingFunctionName).
	OffsetToLabel map[int]string
}
