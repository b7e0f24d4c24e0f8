package domain

// Identity is the authenticated principal the rest of the dashboard reads.
// It is constructed at successful login, replaced wholesale on tenant
// switch, and cleared on logout.
type Identity struct {
	ID          string
	Username    string
	Email       string
	DisplayName string
	Roles       []Role
	TenantID    string
	TenantName  string
	AvatarURL   string
}

// Clone returns a deep copy so state snapshots cannot be mutated by callers.
func (i *Identity) Clone() *Identity {
	if i == nil {
		return nil
	}
	out := *i
	out.Roles = append([]Role(nil), i.Roles...)
	return &out
}
