package knowledgegraph

import "fmt"

// Kind identifies the category of a Graph error, matching spec §7's error
// kinds rather than opaque strings.
type Kind string

const (
	KindMissingType     Kind = "missing_type"
	KindMissingContent  Kind = "missing_content"
	KindInvalidType     Kind = "invalid_type"
	KindQuotaExceeded   Kind = "quota_exceeded"
	KindNotFound        Kind = "not_found"
	KindInvalidArgument Kind = "invalid_argument"
)

// Error is the typed error every public Graph operation returns instead of
// raising. Callers compare against Kind via errors.As, never string matching.
type Error struct {
	Kind  Kind
	Type  NodeType // set for invalid_type / quota_exceeded
	Extra string
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindInvalidType:
		return fmt.Sprintf("knowledgegraph: invalid_type %q", e.Type)
	case KindQuotaExceeded:
		return fmt.Sprintf("knowledgegraph: quota_exceeded %q", e.Type)
	default:
		if e.Extra != "" {
			return fmt.Sprintf("knowledgegraph: %s: %s", e.Kind, e.Extra)
		}
		return fmt.Sprintf("knowledgegraph: %s", e.Kind)
	}
}

func errMissingType() error    { return &Error{Kind: KindMissingType} }
func errMissingContent() error { return &Error{Kind: KindMissingContent} }
func errInvalidType(t NodeType) error {
	return &Error{Kind: KindInvalidType, Type: t}
}
func errQuotaExceeded(t NodeType) error {
	return &Error{Kind: KindQuotaExceeded, Type: t}
}
func errNotFound(extra string) error {
	return &Error{Kind: KindNotFound, Extra: extra}
}
