package telemetry

import "go.opentelemetry.io/otel/attribute"

// Attribute keys recorded on lookup spans.
const (
	KeyMethodName     = attribute.Key("msc.method.name")
	KeyClassName      = attribute.Key("msc.class.name")
	KeyParameterCount = attribute.Key("msc.method.parameters")
	KeyContextID      = attribute.Key("msc.security.context_id")
	KeyPrivileged     = attribute.Key("msc.security.privileged")
	KeyMakeAccessible = attribute.Key("msc.method.make_accessible")
)

func MethodName(name string) attribute.KeyValue {
	return KeyMethodName.String(name)
}

func ClassName(name string) attribute.KeyValue {
	return KeyClassName.String(name)
}

func ParameterCount(n int) attribute.KeyValue {
	return KeyParameterCount.Int(n)
}

func ContextID(id string) attribute.KeyValue {
	return KeyContextID.String(id)
}

func Privileged(privileged bool) attribute.KeyValue {
	return KeyPrivileged.Bool(privileged)
}

func MakeAccessible(makeAccessible bool) attribute.KeyValue {
	return KeyMakeAccessible.Bool(makeAccessible)
}
