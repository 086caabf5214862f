package flux

import (
	"log/slog"

	"github.com/silvanwing/flux/core"
	"github.com/silvanwing/flux/internal/contracts"
	"github.com/silvanwing/flux/internal/safepath"
)

// Client provides pack, extract, inspect, and incremental-sync operations
// over tar, zip, and 7z archives.
type Client struct {
	logger    *slog.Logger
	validator contracts.PathValidator
	security  core.SecurityOptions
}

// NewClient creates a new flux client. By default, logging is disabled
// and security limits are the spec-mandated defaults (10 GiB max
// extraction size, 100:1 max compression ratio, disk-space precheck
// enabled, external symlinks rejected).
func NewClient(opts ...ClientOption) (*Client, error) {
	c := &Client{
		logger:   slog.New(slog.DiscardHandler),
		security: core.DefaultSecurityOptions(),
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.validator = safepath.NewAdapter()

	return c, nil
}
