package flux

import "log/slog"

// ClientOption configures a Client.
type ClientOption func(*Client) error

// WithLogger sets a logger for the client. By default, logging is disabled.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// WithSecurityOptions overrides the default extraction safety limits
// (maximum extraction size, compression ratio, disk-space precheck,
// external symlink policy).
func WithSecurityOptions(security SecurityOptions) ClientOption {
	return func(c *Client) error {
		c.security = security
		return nil
	}
}
