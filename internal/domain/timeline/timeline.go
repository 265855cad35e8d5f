// Package timeline lays out scheduled projects on a shared date axis for
// Gantt-style rendering. The layout is pure computation; rendering is the
// consumer's concern.
package timeline

import (
	"sort"
	"time"

	"github.com/erudithe/portal/internal/calendar"
	"github.com/erudithe/portal/internal/domain/project"
)

const axisPaddingDays = 7

// Bar is one project's horizontal placement on the axis. Left and Width
// are fractions of the total axis span.
type Bar struct {
	ProjectID    string         `json:"project_id"`
	ProjectType  project.Type   `json:"project_type"`
	ClientName   string         `json:"client_name"`
	Company      string         `json:"company"`
	Status       project.Status `json:"status"`
	Start        time.Time      `json:"start"`
	Deadline     time.Time      `json:"deadline"`
	OffsetDays   int            `json:"offset_days"`
	DurationDays int            `json:"duration_days"`
	Progress     float64        `json:"progress"`
	Left         float64        `json:"left"`
	Width        float64        `json:"width"`
	Row          int            `json:"row"`
}

// Month is a header cell spanning the axis days that share a month.
type Month struct {
	Name string `json:"name"`
	Year int    `json:"year"`
	Span int    `json:"span"`
}

// Day is one axis day for the second header row.
type Day struct {
	Date    time.Time `json:"date"`
	Weekend bool      `json:"weekend"`
}

// Timeline is the computed axis plus bar placements.
type Timeline struct {
	MinDate   time.Time `json:"min_date"`
	MaxDate   time.Time `json:"max_date"`
	TotalDays int       `json:"total_days"`
	Months    []Month   `json:"months"`
	Days      []Day     `json:"days"`
	Bars      []Bar     `json:"bars"`
}

type scheduled struct {
	project.Project
	start    time.Time
	deadline time.Time
}

// Layout computes the shared axis and per-project placement. Projects
// without a deadline, or still pending assignment, are excluded. With no
// qualifying projects the axis defaults to today's calendar month.
func Layout(projects []project.Project, today time.Time) Timeline {
	var items []scheduled
	for _, p := range projects {
		if p.Deadline == nil || p.Status == project.StatusPendingAssignment {
			continue
		}
		deadline := calendar.Midnight(*p.Deadline)
		start := calendar.SubtractBusinessDays(deadline, p.WorkDays())
		items = append(items, scheduled{Project: p, start: start, deadline: deadline})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].start.Before(items[j].start) })

	var minDate, maxDate time.Time
	if len(items) == 0 {
		minDate = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		maxDate = minDate.AddDate(0, 1, -1)
	} else {
		minDate = items[0].start
		maxDate = items[0].deadline
		for _, it := range items {
			if it.start.Before(minDate) {
				minDate = it.start
			}
			if it.deadline.After(maxDate) {
				maxDate = it.deadline
			}
		}
		minDate = minDate.AddDate(0, 0, -axisPaddingDays)
		maxDate = maxDate.AddDate(0, 0, axisPaddingDays)
	}

	totalDays := calendar.DaysBetween(minDate, maxDate) + 1

	tl := Timeline{
		MinDate:   minDate,
		MaxDate:   maxDate,
		TotalDays: totalDays,
		Days:      make([]Day, 0, totalDays),
	}

	for d := minDate; !d.After(maxDate); d = d.AddDate(0, 0, 1) {
		tl.Days = append(tl.Days, Day{Date: d, Weekend: calendar.IsWeekend(d)})
	}
	tl.Months = groupMonths(tl.Days)

	row := 0
	for _, it := range items {
		offset := calendar.DaysBetween(minDate, it.start)
		duration := calendar.DaysBetween(it.start, it.deadline) + 1
		// Out-of-range bars are clipped out, not clamped in.
		if offset < 0 || duration <= 0 {
			continue
		}
		tl.Bars = append(tl.Bars, Bar{
			ProjectID:    it.ID,
			ProjectType:  it.ProjectType,
			ClientName:   it.Client.Name,
			Company:      it.Client.Company,
			Status:       it.Status,
			Start:        it.start,
			Deadline:     it.deadline,
			OffsetDays:   offset,
			DurationDays: duration,
			Progress:     it.Progress(),
			Left:         float64(offset) / float64(totalDays),
			Width:        float64(duration) / float64(totalDays),
			Row:          row,
		})
		row++
	}

	return tl
}

func groupMonths(days []Day) []Month {
	var months []Month
	for _, d := range days {
		name := d.Date.Month().String()[:3]
		year := d.Date.Year()
		if n := len(months); n > 0 && months[n-1].Name == name && months[n-1].Year == year {
			months[n-1].Span++
			continue
		}
		months = append(months, Month{Name: name, Year: year, Span: 1})
	}
	return months
}
