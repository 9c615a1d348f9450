package tracking

import "gonum.org/v1/gonum/spatial/r2"

// ClassifyZone places an error offset from frame centre into the innermost
// zone containing it and returns that zone's gains.
func ClassifyZone(cfg Config, e r2.Vec) (ZoneKind, Gains) {
	var zone ZoneKind
	switch {
	case cfg.DeadZone.Contains(e.X, e.Y):
		zone = ZoneDead
	case cfg.NormalZone.Contains(e.X, e.Y):
		zone = ZoneNormal
	case cfg.UrgentZone.Contains(e.X, e.Y):
		zone = ZoneUrgent
	case cfg.CriticalZone.Contains(e.X, e.Y):
		zone = ZoneCritical
	default:
		zone = ZoneNone
	}
	return zone, cfg.Gains(zone)
}
