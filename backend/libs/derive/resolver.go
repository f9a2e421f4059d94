package derive

import "strings"

// Role is the physical meaning bound to a channel.
type Role string

const (
	RoleVoltage   Role = "voltage"
	RoleCurrent   Role = "current"
	RoleSpeed     Role = "speed"
	RoleLatitude  Role = "latitude"
	RoleLongitude Role = "longitude"
)

// Bindings holds at most one channel per role. An unbound role is a valid outcome.
type Bindings struct {
	channels map[Role]string
}

// Channel returns the channel bound to role.
func (b Bindings) Channel(role Role) (string, bool) {
	name, ok := b.channels[role]
	return name, ok
}

// Map returns a copy of the bindings keyed by role.
func (b Bindings) Map() map[Role]string {
	out := make(map[Role]string, len(b.channels))
	for role, name := range b.channels {
		out[role] = name
	}
	return out
}

type resolutionRule struct {
	role  Role
	match func(name string) bool
}

// Rules are tried in order; the first rule producing a match binds its role and
// later rules for that role are ignored.
var resolutionRules = []resolutionRule{
	{role: RoleVoltage, match: contains("Pack Voltage")},
	{role: RoleVoltage, match: contains("External Voltage")},
	{role: RoleCurrent, match: contains("Pack Current")},
	{role: RoleCurrent, match: contains("Current")},
	{role: RoleSpeed, match: equals("GPS Speed")},
	{role: RoleLatitude, match: equals("GPS Latitude")},
	{role: RoleLongitude, match: equals("GPS Longitude")},
}

// Resolve binds roles to channels using the ordered rules. Within a rule, channels are
// scanned in the order given, so passing schema order keeps the result stable.
func Resolve(channels []string) Bindings {
	bound := make(map[Role]string, 5)
	for _, rule := range resolutionRules {
		if _, done := bound[rule.role]; done {
			continue
		}
		for _, name := range channels {
			if rule.match(name) {
				bound[rule.role] = name
				break
			}
		}
	}
	return Bindings{channels: bound}
}

func contains(fragment string) func(string) bool {
	return func(name string) bool { return strings.Contains(name, fragment) }
}

func equals(want string) func(string) bool {
	return func(name string) bool { return name == want }
}
