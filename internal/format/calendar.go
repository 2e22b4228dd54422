package format

import "time"

// CalendarDay is one cell of a month grid.
type CalendarDay struct {
	Date         time.Time
	InMonth      bool
	IsToday      bool
	Appointments int
}

// MonthGrid returns 6 weeks of 7 days covering month, starting on weekStart. Days outside the
// month are padding and have InMonth=false.
func MonthGrid(year int, month time.Month, weekStart time.Weekday, today time.Time) [][]CalendarDay {
	loc := today.Location()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	offset := (int(first.Weekday()) - int(weekStart) + 7) % 7
	cursor := first.AddDate(0, 0, -offset)

	ty, tm, td := today.Date()
	grid := make([][]CalendarDay, 6)
	for w := range grid {
		week := make([]CalendarDay, 7)
		for d := range week {
			cy, cm, cd := cursor.Date()
			week[d] = CalendarDay{
				Date:    cursor,
				InMonth: cm == month,
				IsToday: cy == ty && cm == tm && cd == td,
			}
			cursor = cursor.AddDate(0, 0, 1)
		}
		grid[w] = week
	}
	return grid
}

// MarkAppointments counts appointment start times per grid cell.
func MarkAppointments(grid [][]CalendarDay, starts []time.Time) {
	for _, s := range starts {
		sy, sm, sd := s.In(grid[0][0].Date.Location()).Date()
		for w := range grid {
			for d := range grid[w] {
				cy, cm, cd := grid[w][d].Date.Date()
				if cy == sy && cm == sm && cd == sd {
					grid[w][d].Appointments++
				}
			}
		}
	}
}
