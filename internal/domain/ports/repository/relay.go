package repository

import "context"

// RelayRepository stores which user a forwarded admin-facing message came from.
type RelayRepository interface {
	// Record stores forwardedID -> senderID, overwriting any previous value.
	Record(forwardedID int, senderID int64)
	// Lookup returns the original sender of a forwarded message.
	Lookup(forwardedID int) (int64, bool)
	Len() int
}

// UpdateGuard detects Telegram updates that were already delivered.
type UpdateGuard interface {
	// Seen marks updateID and reports whether it had been marked before.
	Seen(ctx context.Context, updateID int) bool
}
