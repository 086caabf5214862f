package flux

import "github.com/silvanwing/flux/internal/contracts"

// PathValidator validates untrusted archive-entry paths and symlink
// targets before they are materialized on disk. This interface is
// implemented by internal/safepath.
type PathValidator = contracts.PathValidator
