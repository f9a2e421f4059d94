package derive

import "testing"

func TestResolvePrefersPackChannels(t *testing.T) {
	channels := []string{"Time", "External Voltage", "Pack Voltage", "Motor Current", "Pack Current", "GPS Speed"}

	b := Resolve(channels)

	if name, _ := b.Channel(RoleVoltage); name != "Pack Voltage" {
		t.Fatalf("expected Pack Voltage, got %q", name)
	}
	if name, _ := b.Channel(RoleCurrent); name != "Pack Current" {
		t.Fatalf("expected Pack Current, got %q", name)
	}
	if name, _ := b.Channel(RoleSpeed); name != "GPS Speed" {
		t.Fatalf("expected GPS Speed, got %q", name)
	}
}

func TestResolveFallbacks(t *testing.T) {
	channels := []string{"Time", "Inverter Current", "External Voltage", "Aux Current"}

	b := Resolve(channels)

	if name, _ := b.Channel(RoleVoltage); name != "External Voltage" {
		t.Fatalf("expected External Voltage, got %q", name)
	}
	if name, _ := b.Channel(RoleCurrent); name != "Inverter Current" {
		t.Fatalf("expected first Current match, got %q", name)
	}
}

func TestResolveSubstringMatch(t *testing.T) {
	b := Resolve([]string{"HV Pack Voltage (BMS)", "HV Pack Current (BMS)"})

	if name, ok := b.Channel(RoleVoltage); !ok || name != "HV Pack Voltage (BMS)" {
		t.Fatalf("unexpected voltage binding %q (bound=%v)", name, ok)
	}
	if name, ok := b.Channel(RoleCurrent); !ok || name != "HV Pack Current (BMS)" {
		t.Fatalf("unexpected current binding %q (bound=%v)", name, ok)
	}
}

func TestResolveLeavesRolesUnbound(t *testing.T) {
	b := Resolve([]string{"Time", "RPM", "GPS Speed"})

	for _, role := range []Role{RoleVoltage, RoleCurrent, RoleLatitude, RoleLongitude} {
		if name, ok := b.Channel(role); ok {
			t.Fatalf("expected %s unbound, got %q", role, name)
		}
	}
	if len(b.Map()) != 1 {
		t.Fatalf("expected only speed bound, got %v", b.Map())
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	channels := []string{"GPS Latitude", "Current A", "Current B", "External Voltage", "GPS Longitude", "GPS Speed"}

	first := Resolve(channels).Map()
	for i := 0; i < 50; i++ {
		got := Resolve(channels).Map()
		if len(got) != len(first) {
			t.Fatalf("run %d: expected %d bindings, got %d", i, len(first), len(got))
		}
		for role, name := range first {
			if got[role] != name {
				t.Fatalf("run %d: role %s bound to %q, previously %q", i, role, got[role], name)
			}
		}
	}
}
