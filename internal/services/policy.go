package services

// Role is the caller's role for access decisions.
type Role int

const (
	RoleAnonymous Role = iota
	RoleContributor
	RoleAdmin
)

func (r Role) String() string {
	switch r {
	case RoleContributor:
		return "contributor"
	case RoleAdmin:
		return "admin"
	default:
		return "anonymous"
	}
}

// Caller is the identity a request runs as. The zero value is anonymous.
type Caller struct {
	UserID uint
	Admin  bool
}

// Authenticated reports whether the caller carries a session.
func (c Caller) Authenticated() bool { return c.UserID != 0 }

// Role derives the caller's role.
func (c Caller) Role() Role {
	switch {
	case !c.Authenticated():
		return RoleAnonymous
	case c.Admin:
		return RoleAdmin
	default:
		return RoleContributor
	}
}

// Action is an operation subject to the access policy.
type Action string

const (
	ActReadPublished   Action = "quotes.read_published"
	ActReadAnyStatus   Action = "quotes.read_any_status"
	ActCreateQuote     Action = "quotes.create"
	ActChooseStatus    Action = "quotes.choose_status"
	ActUpdateQuote     Action = "quotes.update"
	ActDeleteQuote     Action = "quotes.delete"
	ActViewContributor Action = "quotes.view_contributor"
	ActLike            Action = "likes.write"
	ActViewOwnLikes    Action = "likes.read_own"
	ActViewOwnProfile  Action = "users.read_own"
	ActEditOwnProfile  Action = "users.write_own"
	ActViewAnyProfile  Action = "users.read_any"
	ActListStatuses    Action = "statuses.list"
	ActRefreshSession  Action = "session.refresh"
	ActRevokeSession   Action = "session.revoke"
)

var (
	everyone      = []Role{RoleAnonymous, RoleContributor, RoleAdmin}
	authenticated = []Role{RoleContributor, RoleAdmin}
	adminOnly     = []Role{RoleAdmin}
)

// policy lists the roles allowed to perform each action. Anything not listed
// is denied.
var policy = map[Action][]Role{
	ActReadPublished:   everyone,
	ActReadAnyStatus:   adminOnly,
	ActCreateQuote:     authenticated,
	ActChooseStatus:    adminOnly,
	ActUpdateQuote:     adminOnly,
	ActDeleteQuote:     adminOnly,
	ActViewContributor: adminOnly,
	ActLike:            authenticated,
	ActViewOwnLikes:    authenticated,
	ActViewOwnProfile:  authenticated,
	ActEditOwnProfile:  authenticated,
	ActViewAnyProfile:  adminOnly,
	ActListStatuses:    adminOnly,
	ActRefreshSession:  authenticated,
	ActRevokeSession:   authenticated,
}

// Authorize returns nil when c may perform a. A denied anonymous caller gets
// ErrUnauthenticated; a denied authenticated caller gets ErrForbidden.
func Authorize(c Caller, a Action) error {
	role := c.Role()
	for _, r := range policy[a] {
		if r == role {
			return nil
		}
	}
	if role == RoleAnonymous {
		return ErrUnauthenticated
	}
	return ErrForbidden
}
