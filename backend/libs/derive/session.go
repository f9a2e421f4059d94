package derive

// helperChannels are engine bookkeeping channels that are not offered for graphing.
var helperChannels = map[string]bool{
	ChannelTime:         true,
	ChannelDt:           true,
	ChannelEnergy:       true,
	ChannelPower:        true,
	ChannelDisplaySpeed: true,
}

// Channels lists the channels a dashboard can graph against Time: every raw channel
// followed by DisplaySpeed.
func (s *Session) Channels() []string {
	var out []string
	for _, name := range s.Table.names {
		if !helperChannels[name] {
			out = append(out, name)
		}
	}
	return append(out, ChannelDisplaySpeed)
}

// DefaultChannels is the initial graph selection.
func (s *Session) DefaultChannels() []string {
	out := []string{ChannelDisplaySpeed}
	if s.Table.Has("RPM") {
		out = append(out, "RPM")
	}
	return out
}

// TrackPoint is one GPS fix.
type TrackPoint struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Track is the GPS trace of a session with its centroid.
type Track struct {
	Points []TrackPoint `json:"points"`
	Center TrackPoint   `json:"center"`
}

// Track returns the rows where both latitude and longitude are present.
// ok is false when either role is unbound or no row has a complete fix.
func (s *Session) Track() (Track, bool) {
	lat := boundColumn(s.Table, s.Bindings, RoleLatitude)
	lon := boundColumn(s.Table, s.Bindings, RoleLongitude)
	if lat == nil || lon == nil {
		return Track{}, false
	}

	var track Track
	var sumLat, sumLon float64
	for i := range lat {
		if IsMissing(lat[i]) || IsMissing(lon[i]) {
			continue
		}
		track.Points = append(track.Points, TrackPoint{Lat: lat[i], Lon: lon[i]})
		sumLat += lat[i]
		sumLon += lon[i]
	}
	if len(track.Points) == 0 {
		return Track{}, false
	}
	n := float64(len(track.Points))
	track.Center = TrackPoint{Lat: sumLat / n, Lon: sumLon / n}
	return track, true
}
