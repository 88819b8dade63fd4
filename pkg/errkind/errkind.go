// Package errkind names the error categories from the daemon's error
// handling design. It exists only to give structured log lines a stable
// "error_kind" field; it is not used for control flow, which stays ordinary
// wrapped Go errors.
package errkind

// Kind is a label attached to log lines, not a type callers branch on.
type Kind string

const (
	Configuration Kind = "configuration"
	Transport     Kind = "transport"
	StoreQuery    Kind = "store_query"
	Mesh          Kind = "mesh"
	Probe         Kind = "probe"
	Validation    Kind = "validation"
)
