package userservice

// Action names something an identity may try to do.
type Action string

const (
	ActionRegister     Action = "register"
	ActionLogin        Action = "login"
	ActionLogout       Action = "logout"
	ActionListPosts    Action = "posts:list"
	ActionReadPost     Action = "post:read"
	ActionContact      Action = "contact"
	ActionAddComment   Action = "comment:create"
	ActionCreatePost   Action = "post:create"
	ActionEditPost     Action = "post:edit"
	ActionDeletePost   Action = "post:delete"
	ActionManageAdmins Action = "admins:manage"
)

// Decision is the outcome of a policy check. Every value other than Allow is
// a denial, and each maps to a different response.
type Decision int

const (
	Allow Decision = iota
	// RequireLogin asks an anonymous caller to log in first.
	RequireLogin
	// Forbidden refuses a known identity lacking privileges.
	Forbidden
	// NotFound hides the existence of the resource altogether.
	NotFound
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RequireLogin:
		return "require_login"
	case Forbidden:
		return "forbidden"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Resource is anything owned by a user.
type Resource interface {
	OwnerID() int
}

// Can decides whether u may perform action on target. target is only
// consulted for ActionEditPost.
func Can(u *User, action Action, target Resource) Decision {
	if u == nil {
		u = &AnonymousUser
	}

	switch action {
	case ActionRegister, ActionLogin, ActionLogout, ActionListPosts, ActionReadPost, ActionContact:
		return Allow

	case ActionAddComment:
		if u.IsAnonymous() {
			return RequireLogin
		}
		return Allow

	case ActionCreatePost, ActionDeletePost:
		return canWrite(u)

	case ActionEditPost:
		if d := canWrite(u); d != Allow {
			return d
		}
		// The owner is not exempt: nobody edits a post they do not own.
		if target == nil || target.OwnerID() != u.ID {
			return Forbidden
		}
		return Allow

	case ActionManageAdmins:
		if u.Role() == RoleOwner {
			return Allow
		}
		return NotFound
	}

	return Forbidden
}

func canWrite(u *User) Decision {
	if u.IsAnonymous() {
		return RequireLogin
	}

	switch u.Role() {
	case RoleOwner, RoleAdmin:
		return Allow
	default:
		return Forbidden
	}
}
