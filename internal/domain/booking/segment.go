package booking

import "time"

// Fixed leg windows per booking type. A DAY leg is a pickup-time-anchored
// session of this length; a NIGHT leg always runs 23:00-05:00.
const dayLegDuration = 12 * time.Hour

// SegmentLegs partitions a valid period into its billing segments, one entry
// per leg, ordered ascending. The meaning of an entry depends on the type:
//
//   - NIGHT: midnight of each calendar day a night starts on.
//   - FULL_DAY: the exact start of each 24-hour block (start + i*24h).
//   - DAY: midnight of each distinct calendar day the interval touches.
//
// DAY counts calendar days while FULL_DAY counts 24-hour blocks, so the same
// wall-clock duration can segment differently under the two types.
func SegmentLegs(p Period) []time.Time {
	switch p.Type {
	case TypeNight:
		return segmentNights(p)
	case TypeFullDay:
		return segmentFullDays(p)
	default:
		return segmentDays(p)
	}
}

func segmentNights(p Period) []time.Time {
	startDay := dayOf(p.Start)
	endDay := dayOf(p.End)
	nights := ceilDiv(endDay.Sub(startDay), 24*time.Hour)
	if nights < 1 {
		nights = 1
	}
	out := make([]time.Time, 0, nights)
	for i := 0; i < nights; i++ {
		out = append(out, startDay.Add(time.Duration(i)*24*time.Hour))
	}
	return out
}

func segmentFullDays(p Period) []time.Time {
	blocks := ceilDiv(p.Duration(), 24*time.Hour)
	if blocks < 1 {
		blocks = 1
	}
	out := make([]time.Time, 0, blocks)
	for i := 0; i < blocks; i++ {
		out = append(out, p.Start.Add(time.Duration(i)*24*time.Hour))
	}
	return out
}

func segmentDays(p Period) []time.Time {
	end := p.End
	// An end landing exactly on midnight belongs to the previous day; without
	// the adjustment a zero-duration trailing day would be billed.
	if end.Equal(dayOf(end)) {
		end = end.Add(-time.Millisecond)
	}
	first := dayOf(p.Start)
	last := dayOf(end)
	var out []time.Time
	for d := first; !d.After(last); d = d.Add(24 * time.Hour) {
		out = append(out, d)
	}
	return out
}

// LegWindow returns the service window of the leg anchored at the given
// segment entry.
func LegWindow(p Period, entry time.Time) (start, end time.Time) {
	switch p.Type {
	case TypeNight:
		start = entry.Add(nightStartHour * time.Hour)
		return start, start.Add((24 - nightStartHour + nightEndHour) * time.Hour)
	case TypeFullDay:
		return entry, entry.Add(24 * time.Hour)
	default:
		start = entry.Add(clockOffset(p.Start))
		return start, start.Add(dayLegDuration)
	}
}

func clockOffset(t time.Time) time.Duration {
	t = t.UTC()
	return t.Sub(dayOf(t))
}

func ceilDiv(d, unit time.Duration) int {
	n := int(d / unit)
	if d%unit != 0 {
		n++
	}
	return n
}
