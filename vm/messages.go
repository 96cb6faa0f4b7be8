package vm

import "context"

// PrintKind discriminates the two print_out message shapes (spec §6).
type PrintKind int

const (
	Stdout PrintKind = iota
	Stderr
)

func (k PrintKind) String() string {
	if k == Stderr {
		return "Stderr"
	}
	return "Stdout"
}

// PrintMessage is one entry on a worker's print_out channel.
type PrintMessage struct {
	Kind PrintKind
	Text string
}

// ServiceCall is what RemoteCall sends on remote_out and what the
// coordinator routes to a target worker's remote_in channel (spec §4.4,
// §4.5). TraceContext carries the W3C-propagated span context, grounded on
// original_source/metadata_map.rs's Injector/Extractor carrier.
type ServiceCall struct {
	TargetService string
	TargetMethod  string
	TraceContext  context.Context
}
