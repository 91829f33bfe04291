// Package policy holds the authorization rules for survey entries.
// Every rule is a pure function of the caller's role and ids.
package policy

import "survey_backend/internal/shared/identity"

// CanAccess decides read-one, update and delete: admins may touch any entry,
// everyone else only entries they own.
func CanAccess(role identity.Role, callerID, ownerID string) bool {
	return role.IsAdmin() || callerID == ownerID
}

// CanListAll decides the listing that spans every owner.
func CanListAll(role identity.Role) bool {
	return role.IsAdmin()
}

// CanListByUser decides listing the entries of targetUserID.
func CanListByUser(role identity.Role, callerID, targetUserID string) bool {
	return role.IsAdmin() || callerID == targetUserID
}
