package papi

// Typed handles over the generic Resource for the well-known Pressroom
// record kinds. Each wrapper adds named accessors for the fields the server
// documents; everything else stays reachable through the generic attribute
// accessors.

// uidOr renders an identifier attribute that servers report as either a
// string or a number. Empty when absent.
func uidOr(r *Resource, key string) string {
	value, ok := r.Lookup(key)
	if !ok {
		return ""
	}

	uid, ok := uidString(value)
	if !ok {
		return ""
	}

	return uid
}

// User is a handle on a user account record.
type User struct {
	*Resource
}

// NewUser wraps an already-fetched user record.
func NewUser(session Session, path string, attrs Attrs) *User {
	return &User{Resource: NewResource(session, path, attrs)}
}

// GUID returns the user's unique identifier.
func (u *User) GUID() string {
	return u.StringOr("guid", "")
}

// Username returns the login name.
func (u *User) Username() string {
	return u.StringOr("username", "")
}

// FirstName returns the user's first name.
func (u *User) FirstName() string {
	return u.StringOr("first_name", "")
}

// LastName returns the user's last name.
func (u *User) LastName() string {
	return u.StringOr("last_name", "")
}

// Email returns the user's email address.
func (u *User) Email() string {
	return u.StringOr("email", "")
}

// Role returns the user's platform role (viewer, publisher, administrator).
func (u *User) Role() string {
	return u.StringOr("user_role", "")
}

// Locked reports whether the account is locked out.
func (u *User) Locked() bool {
	return u.BoolOr("locked", false)
}

// FullName joins first and last name, falling back to the username when
// both are empty.
func (u *User) FullName() string {
	first, last := u.FirstName(), u.LastName()

	switch {
	case first == "" && last == "":
		return u.Username()
	case first == "":
		return last
	case last == "":
		return first
	default:
		return first + " " + last
	}
}

// UserUpdateRequest represents a request to update a user account.
type UserUpdateRequest struct {
	// FirstName updates the first name; nil leaves it unchanged.
	FirstName *string `json:"first_name,omitempty" yaml:"first_name,omitempty"`
	// LastName updates the last name; nil leaves it unchanged.
	LastName *string `json:"last_name,omitempty" yaml:"last_name,omitempty"`
	// Email updates the email address; nil leaves it unchanged.
	Email *string `json:"email,omitempty" yaml:"email,omitempty"`
	// Role updates the platform role; nil leaves it unchanged.
	Role *string `json:"user_role,omitempty" yaml:"user_role,omitempty"`
}

// Group is a handle on a group record.
type Group struct {
	*Resource
}

// NewGroup wraps an already-fetched group record.
func NewGroup(session Session, path string, attrs Attrs) *Group {
	return &Group{Resource: NewResource(session, path, attrs)}
}

// GUID returns the group's unique identifier.
func (g *Group) GUID() string {
	return g.StringOr("guid", "")
}

// Name returns the group name.
func (g *Group) Name() string {
	return g.StringOr("name", "")
}

// OwnerGUID returns the guid of the user who owns the group.
func (g *Group) OwnerGUID() string {
	return g.StringOr("owner_guid", "")
}

// GroupCreateRequest represents a request to create a group.
type GroupCreateRequest struct {
	Name string `json:"name" yaml:"name"`
}

// ContentItem is a handle on a content item record.
type ContentItem struct {
	*Resource
}

// NewContentItem wraps an already-fetched content record.
func NewContentItem(session Session, path string, attrs Attrs) *ContentItem {
	return &ContentItem{Resource: NewResource(session, path, attrs)}
}

// GUID returns the content item's unique identifier.
func (c *ContentItem) GUID() string {
	return c.StringOr("guid", "")
}

// Name returns the URL-safe short name.
func (c *ContentItem) Name() string {
	return c.StringOr("name", "")
}

// Title returns the human-readable title.
func (c *ContentItem) Title() string {
	return c.StringOr("title", "")
}

// Description returns the long-form description.
func (c *ContentItem) Description() string {
	return c.StringOr("description", "")
}

// Mode returns the runtime mode the item is published as.
func (c *ContentItem) Mode() string {
	return c.StringOr("mode", "")
}

// AccessType returns who may view the item (all, logged_in, acl).
func (c *ContentItem) AccessType() string {
	return c.StringOr("access_type", "")
}

// OwnerGUID returns the guid of the owning user.
func (c *ContentItem) OwnerGUID() string {
	return c.StringOr("owner_guid", "")
}

// BundleID returns the id of the active bundle, empty when nothing has
// been deployed yet.
func (c *ContentItem) BundleID() string {
	return c.StringOr("bundle_id", "")
}

// ContentURL returns the public URL the item is served at.
func (c *ContentItem) ContentURL() string {
	return c.StringOr("content_url", "")
}

// DashboardURL returns the management UI URL for the item.
func (c *ContentItem) DashboardURL() string {
	return c.StringOr("dashboard_url", "")
}

// ContentCreateRequest represents a request to create a content item.
type ContentCreateRequest struct {
	// Name is the URL-safe short name (unique per owner).
	Name string `json:"name" yaml:"name"`
	// Title is the human-readable title shown in listings.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	// Description is the long-form description.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	// AccessType controls who may view the item; empty uses the server
	// default.
	AccessType string `json:"access_type,omitempty" yaml:"access_type,omitempty"`
}

// ContentUpdateRequest represents a request to update a content item.
type ContentUpdateRequest struct {
	// Name updates the short name; nil leaves it unchanged.
	Name *string `json:"name,omitempty" yaml:"name,omitempty"`
	// Title updates the title; nil leaves it unchanged.
	Title *string `json:"title,omitempty" yaml:"title,omitempty"`
	// Description updates the description; nil leaves it unchanged.
	Description *string `json:"description,omitempty" yaml:"description,omitempty"`
	// AccessType updates the visibility; nil leaves it unchanged.
	AccessType *string `json:"access_type,omitempty" yaml:"access_type,omitempty"`
}

// Bundle is a handle on an uploaded content bundle.
type Bundle struct {
	*Resource
}

// NewBundle wraps an already-fetched bundle record.
func NewBundle(session Session, path string, attrs Attrs) *Bundle {
	return &Bundle{Resource: NewResource(session, path, attrs)}
}

// ID returns the bundle identifier.
func (b *Bundle) ID() string {
	return uidOr(b.Resource, "id")
}

// ContentGUID returns the guid of the content item the bundle belongs to.
func (b *Bundle) ContentGUID() string {
	return b.StringOr("content_guid", "")
}

// Size returns the archive size in bytes.
func (b *Bundle) Size() int {
	return b.IntOr("size", 0)
}

// Active reports whether this bundle is the one being served.
func (b *Bundle) Active() bool {
	return b.BoolOr("active", false)
}

// CreatedTime returns the server-reported creation timestamp, verbatim.
func (b *Bundle) CreatedTime() string {
	return b.StringOr("created_time", "")
}

// Permission is a handle on one access rule of a content item. Its uid key
// is "id", not "guid".
type Permission struct {
	*Resource
}

// NewPermission wraps an already-fetched permission record.
func NewPermission(session Session, path string, attrs Attrs) *Permission {
	return &Permission{Resource: NewResource(session, path, attrs)}
}

// ID returns the permission identifier.
func (p *Permission) ID() string {
	return uidOr(p.Resource, "id")
}

// ContentGUID returns the guid of the content item the rule applies to.
func (p *Permission) ContentGUID() string {
	return p.StringOr("content_guid", "")
}

// PrincipalGUID returns the guid of the user or group granted access.
func (p *Permission) PrincipalGUID() string {
	return p.StringOr("principal_guid", "")
}

// PrincipalType returns "user" or "group".
func (p *Permission) PrincipalType() string {
	return p.StringOr("principal_type", "")
}

// Role returns the granted role (viewer, editor).
func (p *Permission) Role() string {
	return p.StringOr("role", "")
}

// PermissionCreateRequest represents a request to grant access to a
// content item.
type PermissionCreateRequest struct {
	PrincipalGUID string `json:"principal_guid" yaml:"principal_guid"`
	PrincipalType string `json:"principal_type" yaml:"principal_type"`
	Role          string `json:"role"           yaml:"role"`
}

// PermissionUpdateRequest represents a request to change a granted role.
type PermissionUpdateRequest struct {
	Role string `json:"role" yaml:"role"`
}

// Vanity is a handle on a content item's vanity path.
type Vanity struct {
	*Resource
}

// NewVanity wraps an already-fetched vanity record.
func NewVanity(session Session, path string, attrs Attrs) *Vanity {
	return &Vanity{Resource: NewResource(session, path, attrs)}
}

// ContentGUID returns the guid of the content item the path points at.
func (v *Vanity) ContentGUID() string {
	return v.StringOr("content_guid", "")
}

// PathPrefix returns the vanity path, always with leading and trailing
// slashes.
func (v *Vanity) PathPrefix() string {
	return v.StringOr("path", "")
}

// VanitySetRequest represents a request to set a content item's vanity
// path.
type VanitySetRequest struct {
	Path string `json:"path" yaml:"path"`
	// Force steals the path from whatever content item currently holds it.
	Force bool `json:"force,omitempty" yaml:"force,omitempty"`
}

// Tag is a handle on one node of the tag tree. Its uid key is "id".
type Tag struct {
	*Resource
}

// NewTag wraps an already-fetched tag record.
func NewTag(session Session, path string, attrs Attrs) *Tag {
	return &Tag{Resource: NewResource(session, path, attrs)}
}

// ID returns the tag identifier.
func (t *Tag) ID() string {
	return uidOr(t.Resource, "id")
}

// Name returns the tag name.
func (t *Tag) Name() string {
	return t.StringOr("name", "")
}

// ParentID returns the parent tag's id, empty for top-level categories.
func (t *Tag) ParentID() string {
	return uidOr(t.Resource, "parent_id")
}

// TagCreateRequest represents a request to create a tag.
type TagCreateRequest struct {
	Name string `json:"name" yaml:"name"`
	// ParentID places the tag under an existing one; empty creates a
	// top-level category.
	ParentID string `json:"parent_id,omitempty" yaml:"parent_id,omitempty"`
}

// AuditEntry represents one record of the audit trail. Audit logs are
// read-only and cursor-paginated, so entries decode straight into a struct
// instead of going through a resource handle.
type AuditEntry struct {
	ID               string `json:"id"                yaml:"id"`
	Time             string `json:"time"              yaml:"time"`
	UserGUID         string `json:"user_guid"         yaml:"user_guid"`
	UserDescription  string `json:"user_description"  yaml:"user_description"`
	Action           string `json:"action"            yaml:"action"`
	EventDescription string `json:"event_description" yaml:"event_description"`
}

// Resource factories for collection-based lookup.

// UserFactory materializes users from collection records.
func UserFactory(session Session) Factory[*User] {
	return func(path string, attrs Attrs) (*User, error) {
		return NewUser(session, path, attrs), nil
	}
}

// ContentItemFactory materializes content items from collection records.
func ContentItemFactory(session Session) Factory[*ContentItem] {
	return func(path string, attrs Attrs) (*ContentItem, error) {
		return NewContentItem(session, path, attrs), nil
	}
}

// GroupFactory materializes groups from collection records.
func GroupFactory(session Session) Factory[*Group] {
	return func(path string, attrs Attrs) (*Group, error) {
		return NewGroup(session, path, attrs), nil
	}
}

// PermissionFactory materializes permissions from collection records.
func PermissionFactory(session Session) Factory[*Permission] {
	return func(path string, attrs Attrs) (*Permission, error) {
		return NewPermission(session, path, attrs), nil
	}
}

// TagFactory materializes tags from collection records.
func TagFactory(session Session) Factory[*Tag] {
	return func(path string, attrs Attrs) (*Tag, error) {
		return NewTag(session, path, attrs), nil
	}
}

// BundleFactory materializes bundles from collection records.
func BundleFactory(session Session) Factory[*Bundle] {
	return func(path string, attrs Attrs) (*Bundle, error) {
		return NewBundle(session, path, attrs), nil
	}
}

// VanityFactory materializes vanity records from collection records.
func VanityFactory(session Session) Factory[*Vanity] {
	return func(path string, attrs Attrs) (*Vanity, error) {
		return NewVanity(session, path, attrs), nil
	}
}
