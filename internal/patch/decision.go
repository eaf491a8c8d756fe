package patch

// Decision is the patcher's verdict on an entry-point file.
type Decision int

// Decisions, in the order the patcher evaluates them.
const (
	// AlreadyPatched means the webhook import is present; nothing is written.
	AlreadyPatched Decision = iota
	// NeedsImportInsertion means the hook already calls the setup function
	// but the import is missing.
	NeedsImportInsertion
	// NeedsBootstrapRewrite means both the import and the hook call are added.
	NeedsBootstrapRewrite
	// UnrecognizedShape means no bootstrap hook was found.
	UnrecognizedShape
)

func (d Decision) String() string {
	switch d {
	case AlreadyPatched:
		return "already-patched"
	case NeedsImportInsertion:
		return "needs-import-insertion"
	case NeedsBootstrapRewrite:
		return "needs-bootstrap-rewrite"
	case UnrecognizedShape:
		return "unrecognized-shape"
	default:
		return "unknown"
	}
}

// MarshalText renders the decision by name in JSON output.
func (d Decision) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
