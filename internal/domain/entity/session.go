package entity

// Session is the process-local view of the signed-in profile.
type Session struct {
	Profile   *Profile
	Resolving bool
}

// Clone returns a copy that shares no memory with s.
func (s Session) Clone() Session {
	if s.Profile != nil {
		p := *s.Profile
		s.Profile = &p
	}
	return s
}
