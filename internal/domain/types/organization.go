package types

// OrganizationType is a member's role within an organization.
type OrganizationType int

const (
	OrganizationOwner OrganizationType = iota
	OrganizationAdmin
	OrganizationUser
	OrganizationManager
	OrganizationCustom
)

// OrganizationStatus is the membership state of the user.
type OrganizationStatus int

const (
	OrganizationInvited OrganizationStatus = iota
	OrganizationAccepted
	OrganizationConfirmed
)

// Organization describes one organization membership of a user.
type Organization struct {
	ID              OrganizationID     `json:"id"`
	Name            string             `json:"name"`
	Type            OrganizationType   `json:"type"`
	Status          OrganizationStatus `json:"status"`
	Enabled         bool               `json:"enabled"`
	UsePolicies     bool               `json:"usePolicies"`
	UsersGetPremium bool               `json:"usersGetPremium"`
}
