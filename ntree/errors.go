package ntree

// Error types attached to errors returned by this package. Check them
// with errors.IsType from github.com/aukilabs/go-tooling/pkg/errors.
const (
	// ErrTypeConfig reports invalid construction parameters or an
	// attribute vector that does not match the tree arity.
	ErrTypeConfig = "ntree_config"

	// ErrTypeOutOfBounds reports a region that is not fully contained
	// within the tree bounds.
	ErrTypeOutOfBounds = "ntree_out_of_bounds"

	// ErrTypeInvariant reports a broken internal invariant. It is never
	// expected to surface and indicates a programming error.
	ErrTypeInvariant = "ntree_invariant"
)
