package chat

// Role is the caller's derived role, supplied by the external auth
// collaborator and read-only here.
type Role string

// Role values.
const (
	RoleGuest     Role = "guest"
	RoleAdmin     Role = "admin"
	RoleAnonymous Role = "anonymous"
)

// UserContext identifies the asking user for personal-context lookups.
type UserContext struct {
	role      Role
	subjectID int64
	memberID  string
}

// NewUserContext creates a UserContext.
func NewUserContext(role Role, subjectID int64, memberID string) UserContext {
	return UserContext{role: role, subjectID: subjectID, memberID: memberID}
}

// AnonymousUser returns the context for an unauthenticated caller.
func AnonymousUser() UserContext {
	return UserContext{role: RoleAnonymous}
}

// Role returns the caller role.
func (u UserContext) Role() Role { return u.role }

// SubjectID returns the id keying personal-data lookups (0 when absent).
func (u UserContext) SubjectID() int64 { return u.subjectID }

// MemberID returns the external member identifier (may be empty).
func (u UserContext) MemberID() string { return u.memberID }

// HasSubject reports whether personal-data lookups are possible.
func (u UserContext) HasSubject() bool { return u.subjectID != 0 }
