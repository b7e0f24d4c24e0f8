package domain

// Role is one of the closed internal role vocabulary. The declared order is
// the display order: the first role a user holds is their "primary" role.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleAnalyst      Role = "analyst"
	RoleInvestigator Role = "investigator"
	RoleViewer       Role = "viewer"
)

// AllRoles lists every internal role in display order.
var AllRoles = []Role{RoleAdmin, RoleAnalyst, RoleInvestigator, RoleViewer}

var roleRank = map[Role]int{
	RoleAdmin:        0,
	RoleAnalyst:      1,
	RoleInvestigator: 2,
	RoleViewer:       3,
}

// externalRoleTable maps provider role claims (including legacy aliases from
// earlier realm exports) onto internal role sets. Unknown claims are dropped.
var externalRoleTable = map[string][]Role{
	"admin":             {RoleAdmin, RoleAnalyst, RoleInvestigator, RoleViewer},
	"platform-admin":    {RoleAdmin, RoleAnalyst, RoleInvestigator, RoleViewer},
	"realm-admin":       {RoleAdmin, RoleAnalyst, RoleInvestigator, RoleViewer},
	"analyst":           {RoleAnalyst, RoleViewer},
	"case-analyst":      {RoleAnalyst, RoleViewer},
	"investigator":      {RoleInvestigator, RoleViewer},
	"case-investigator": {RoleInvestigator, RoleViewer},
	"lead-investigator": {RoleAnalyst, RoleInvestigator, RoleViewer},
	"auditor":           {RoleViewer},
	"readonly":          {RoleViewer},
	"viewer":            {RoleViewer},
}

// localRoleLabelTable maps the human-readable role labels stored alongside
// local credentials onto internal role sets.
var localRoleLabelTable = map[string][]Role{
	"Administrator":     {RoleAdmin, RoleAnalyst, RoleInvestigator, RoleViewer},
	"Analyst":           {RoleAnalyst, RoleViewer},
	"Investigator":      {RoleInvestigator, RoleViewer},
	"Lead Investigator": {RoleAnalyst, RoleInvestigator, RoleViewer},
	"Auditor":           {RoleViewer},
	"Viewer":            {RoleViewer},
}

// MapExternalRoles converts a set of provider role claims into the internal
// role vocabulary. Unknown claims are dropped silently; an empty result
// defaults to viewer so no authenticated user is ever left without
// capabilities.
func MapExternalRoles(claims []string) []Role {
	var out []Role
	for _, claim := range claims {
		out = append(out, externalRoleTable[claim]...)
	}
	return normalizeRoles(out)
}

// MapLocalRoleLabel converts a stored role label into the internal role
// vocabulary. An unrecognized label maps to viewer.
func MapLocalRoleLabel(label string) []Role {
	return normalizeRoles(localRoleLabelTable[label])
}

// PrimaryRole returns the highest-ranked role in the set, for display.
func PrimaryRole(roles []Role) Role {
	if len(roles) == 0 {
		return RoleViewer
	}
	primary := roles[0]
	for _, r := range roles[1:] {
		if roleRank[r] < roleRank[primary] {
			primary = r
		}
	}
	return primary
}

// RolesIntersect reports whether the two role sets share at least one role.
func RolesIntersect(a, b []Role) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

// normalizeRoles dedupes and orders a role set, defaulting to viewer when
// the set would otherwise be empty.
func normalizeRoles(roles []Role) []Role {
	seen := map[Role]struct{}{}
	for _, r := range roles {
		if _, ok := roleRank[r]; !ok {
			continue
		}
		seen[r] = struct{}{}
	}
	if len(seen) == 0 {
		return []Role{RoleViewer}
	}
	out := make([]Role, 0, len(seen))
	for _, r := range AllRoles {
		if _, ok := seen[r]; ok {
			out = append(out, r)
		}
	}
	return out
}
