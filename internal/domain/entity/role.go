package entity

// Role is the clinical role a profile is registered under.
type Role string

const (
	RolePhysician          Role = "Physician"
	RoleSurgeon            Role = "Surgeon"
	RolePhysicianAssistant Role = "Physician Assistant"
	RoleNurse              Role = "Nurse"
)

// Roles lists every role accepted at sign-up, in display order.
var Roles = []Role{
	RolePhysician,
	RoleSurgeon,
	RolePhysicianAssistant,
	RoleNurse,
}

// DefaultRole is assigned when an identity has no stored profile.
const DefaultRole = RolePhysician

func (r Role) IsValid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RequiresCPSO reports whether sign-up for this role needs a CPSO registration number.
func (r Role) RequiresCPSO() bool {
	return r == RolePhysician || r == RoleSurgeon
}
