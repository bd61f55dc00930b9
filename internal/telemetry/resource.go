package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/resource"
)

func newResource() *resource.Resource {
	return resource.NewSchemaless(attribute.String("service.name", ServiceName))
}
