package models

// SpaceType distinguishes a user's own ledger from one shared with others.
type SpaceType string

const (
	SpaceTypePersonal SpaceType = "personal"
	SpaceTypeShared   SpaceType = "shared"
)

// SpaceRole is a member's role within a space.
type SpaceRole string

const (
	SpaceRoleOwner  SpaceRole = "owner"
	SpaceRoleMember SpaceRole = "member"
)

// Space groups categories, payment methods, transactions and templates that
// a set of users share.
type Space struct {
	Base
	Name    string        `gorm:"not null" json:"name"`
	Type    SpaceType     `gorm:"not null" json:"type"`
	OwnerID string        `gorm:"type:uuid;not null;index" json:"owner_id"`
	Members []SpaceMember `gorm:"foreignKey:SpaceID" json:"members,omitempty"`
}

// SpaceMember links a user to a space.
type SpaceMember struct {
	Base
	SpaceID string    `gorm:"type:uuid;not null;uniqueIndex:uq_space_members_space_user" json:"space_id"`
	UserID  string    `gorm:"type:uuid;not null;uniqueIndex:uq_space_members_space_user;index" json:"user_id"`
	Role    SpaceRole `gorm:"not null" json:"role"`
}
