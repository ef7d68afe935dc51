package domain

// Profile is the per-user display profile.
type Profile struct {
	Owner string
	Name  string
}
