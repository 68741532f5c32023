// Package persist owns the association between the in-memory store and the
// user's file, and orchestrates the new/open/save workflows across the
// capability tiers of the file-access mechanism.
package persist

// Tier is the capability level of the current file binding, decided at the
// point a file is created or opened, never globally per platform.
type Tier int

const (
	// TierUnbound means no file is associated: nothing loaded yet, or a
	// fresh store that has never been saved.
	TierUnbound Tier = iota

	// TierDirect means the binding holds a writable path; saves overwrite
	// that file in place.
	TierDirect

	// TierUpload means the store was loaded from a one-time byte snapshot
	// and no reusable path exists; a later save must prompt for a
	// destination.
	TierUpload
)

func (t Tier) String() string {
	switch t {
	case TierDirect:
		return "direct"
	case TierUpload:
		return "upload"
	default:
		return "unbound"
	}
}

// Binding is pure runtime state, never serialized. Path is set only for
// TierDirect; Name is the display name and is set for Direct and Upload.
type Binding struct {
	Tier Tier
	Path string
	Name string
}
