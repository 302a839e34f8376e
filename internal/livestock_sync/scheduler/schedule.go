package scheduler

import (
	"sort"
	"time"
)

// DefaultAnchorHours 기본 실행 시각 (6시간 간격).
var DefaultAnchorHours = []int{0, 6, 12, 18}

// Schedule fires at fixed local hours of the day.
type Schedule struct {
	Location    *time.Location
	AnchorHours []int
}

// Next returns the first anchor strictly after now, in UTC.
func (s Schedule) Next(now time.Time) time.Time {
	loc := s.Location
	if loc == nil {
		loc = time.UTC
	}
	anchors := s.AnchorHours
	if len(anchors) == 0 {
		anchors = DefaultAnchorHours
	}
	anchors = append([]int(nil), anchors...)
	sort.Ints(anchors)

	local := now.In(loc)
	for _, h := range anchors {
		t := time.Date(local.Year(), local.Month(), local.Day(), h, 0, 0, 0, loc)
		if t.After(local) {
			return t.UTC()
		}
	}
	// 모두 지났으면 다음날 첫 앵커
	next := time.Date(local.Year(), local.Month(), local.Day()+1, anchors[0], 0, 0, 0, loc)
	return next.UTC()
}
