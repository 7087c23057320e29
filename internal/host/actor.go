package host

// Capabilities checked by the host and by plugins.
const (
	CapManageOptions = "manage_options"
	CapEditPosts     = "edit_posts"
)

// Actor is whoever issued the current request.
type Actor interface {
	Can(capability string) bool
}

// Role is an Actor with a fixed capability set.
type Role struct {
	Name         string
	Capabilities map[string]bool
}

// Can implements Actor.
func (r Role) Can(capability string) bool {
	return r.Capabilities[capability]
}

// Built-in roles.
var (
	Administrator = Role{Name: "administrator", Capabilities: map[string]bool{CapManageOptions: true, CapEditPosts: true}}
	Editor        = Role{Name: "editor", Capabilities: map[string]bool{CapEditPosts: true}}
	Anonymous     = Role{Name: "anonymous"}
)
