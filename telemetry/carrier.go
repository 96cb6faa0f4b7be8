// Package telemetry wires OpenTelemetry tracing and metrics into the VM and
// coordinator, plus the zerolog-based structured logging sink every
// component logs through (spec §6 "Telemetry boundary").
//
// Grounded on original_source/otel.rs (OTLP exporter setup, resource
// attribution by service name) and original_source/metadata_map.rs (the
// Injector/Extractor pair carrying trace context inside a ServiceCall).
package telemetry

import "go.opentelemetry.io/otel/propagation"

// Propagator returns the W3C trace-context propagator used to carry a span
// context inside a CarrierMap across the ServiceCall boundary.
func Propagator() propagation.TextMapPropagator {
	return propagation.TraceContext{}
}

// CarrierMap implements propagation.TextMapCarrier over a plain
// map[string]string, letting a trace context ride inside a ServiceCall
// message across the channel boundary between a worker and the coordinator —
// there is no wire format here, just an in-process struct field, but the
// W3C carrier shape keeps propagation code identical to what it would be
// over an actual transport.
type CarrierMap map[string]string

// Get implements propagation.TextMapCarrier.
func (m CarrierMap) Get(key string) string {
	return m[key]
}

// Set implements propagation.TextMapCarrier.
func (m CarrierMap) Set(key, value string) {
	m[key] = value
}

// Keys implements propagation.TextMapCarrier.
func (m CarrierMap) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

var _ propagation.TextMapCarrier = CarrierMap(nil)
