package telemetry

import "go.opentelemetry.io/otel/attribute"

func serviceAttr(service string) attribute.KeyValue { return attribute.String("service", service) }
func methodAttr(method string) attribute.KeyValue   { return attribute.String("method", method) }
func instructionAttr(op string) attribute.KeyValue  { return attribute.String("instruction", op) }
