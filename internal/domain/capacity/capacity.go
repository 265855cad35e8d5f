// Package capacity computes worker load and portfolio utilization. All
// aggregates are pure read-side computations over the current snapshot;
// nothing is cached.
package capacity

import (
	"github.com/erudithe/portal/internal/domain/project"
	"github.com/erudithe/portal/internal/domain/user"
)

// Tier buckets a worker's load percentage for display.
type Tier string

const (
	TierNominal  Tier = "nominal"
	TierWarning  Tier = "warning"
	TierCritical Tier = "critical"
)

// Policy thresholds, in percent.
const (
	warningThreshold  = 70
	criticalThreshold = 90
)

// WorkerLoad is one worker's committed hours against weekly capacity.
// Percent keeps the raw ratio for tiering; DisplayPercent is clamped at
// 100 for rendering.
type WorkerLoad struct {
	WorkerID       string  `json:"worker_id"`
	Name           string  `json:"name"`
	Capacity       float64 `json:"capacity"`
	Load           float64 `json:"load"`
	Percent        float64 `json:"percent"`
	DisplayPercent float64 `json:"display_percent"`
	Tier           Tier    `json:"tier"`
}

// TierFor buckets a raw load percentage.
func TierFor(percent float64) Tier {
	switch {
	case percent > criticalThreshold:
		return TierCritical
	case percent > warningThreshold:
		return TierWarning
	default:
		return TierNominal
	}
}

// Utilization computes each worker's committed load. Only In Progress
// assignments count; completed, pending, and on-hold work carries no live
// load.
func Utilization(workers []user.User, projects []project.Project) []WorkerLoad {
	loads := make(map[string]float64, len(workers))
	for _, p := range projects {
		if p.AssignedTo != "" && p.Status == project.StatusInProgress {
			loads[p.AssignedTo] += float64(p.TimeAllowance)
		}
	}

	result := make([]WorkerLoad, 0, len(workers))
	for _, w := range workers {
		load := loads[w.ID]
		percent := 0.0
		if w.WeeklyCapacity > 0 {
			percent = load / w.WeeklyCapacity * 100
		}
		result = append(result, WorkerLoad{
			WorkerID:       w.ID,
			Name:           w.Name,
			Capacity:       w.WeeklyCapacity,
			Load:           load,
			Percent:        percent,
			DisplayPercent: min(percent, 100),
			Tier:           TierFor(percent),
		})
	}
	return result
}

// Stats summarizes the whole portfolio.
type Stats struct {
	TotalProjects   int     `json:"total_projects"`
	AvgPages        float64 `json:"avg_pages"`
	CompletionRate  float64 `json:"completion_rate"`
	TeamUtilization float64 `json:"team_utilization"`
}

// Portfolio computes portfolio-wide aggregates: mean page count over all
// projects regardless of status, completion rate, and team utilization
// (In Progress allowance over total weekly capacity).
func Portfolio(projects []project.Project, workers []user.User) Stats {
	stats := Stats{TotalProjects: len(projects)}
	if len(projects) == 0 {
		return stats
	}

	totalPages := 0
	completed := 0
	inProgressHours := 0.0
	for _, p := range projects {
		totalPages += p.PageCount
		if p.Status == project.StatusCompleted {
			completed++
		}
		if p.Status == project.StatusInProgress {
			inProgressHours += float64(p.TimeAllowance)
		}
	}

	stats.AvgPages = float64(totalPages) / float64(len(projects))
	stats.CompletionRate = float64(completed) / float64(len(projects)) * 100

	totalCapacity := 0.0
	for _, w := range workers {
		totalCapacity += w.WeeklyCapacity
	}
	if totalCapacity > 0 {
		stats.TeamUtilization = inProgressHours / totalCapacity * 100
	}

	return stats
}
