package quote

import "github.com/erudithe/portal/internal/domain/project"

// Per-page rates and throughput per project type.
var (
	costPerPage = map[project.Type]float64{
		project.TypeSimpleConversion:     15,
		project.TypeCreativeRedesign:     30,
		project.TypeInstructionalUpgrade: 50,
	}

	pagesPerHour = map[project.Type]int{
		project.TypeSimpleConversion:     10,
		project.TypeCreativeRedesign:     5,
		project.TypeInstructionalUpgrade: 2,
	}
)

// Price returns the total cost and time allowance (whole hours, rounded
// up) for a page count of the given type.
func Price(t project.Type, pageCount int) (cost float64, allowanceHours int) {
	cost = float64(pageCount) * costPerPage[t]
	pph := pagesPerHour[t]
	if pph > 0 {
		allowanceHours = (pageCount + pph - 1) / pph
	}
	return cost, allowanceHours
}
