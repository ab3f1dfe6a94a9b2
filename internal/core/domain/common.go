package domain

import "time"

// AuditFields holds standard audit information for domain entities.
type AuditFields struct {
	CreatedAt     time.Time `json:"createdAt"`
	CreatedBy     string    `json:"createdBy"` // UserID Reference
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
	LastUpdatedBy string    `json:"lastUpdatedBy"` // UserID Reference
}

// ScopeRole defines the access level an actor has on a legal entity.
type ScopeRole string

const (
	RoleAdmin    ScopeRole = "ADMIN"
	RoleMember   ScopeRole = "MEMBER"
	RoleReadOnly ScopeRole = "READONLY"
)
