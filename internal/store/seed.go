package store

import (
	"taskboard/internal/model"
	"taskboard/internal/rollup"
)

// SampleBoard is the demo board offered to first-time users: four people,
// four categories and three tasks, one with a subtask. Dates are relative
// to today so the board views have something in every column. Parents are
// rolled up so the seeded board already satisfies the due-date rule.
func SampleBoard(today model.Date) *Board {
	b := NewBoard()
	b.People = model.Registry{
		"Alice Johnson": "#0d6efd",
		"Bob Smith":     "#dc3545",
		"Charlie Brown": "#ffc107",
		"Diana Prince":  "#6f42c1",
	}
	b.Categories = model.Registry{
		"Design":   "#20c997",
		"Backend":  "#fd7e14",
		"DevOps":   "#6610f2",
		"Frontend": "#0dcaf0",
	}

	str := func(s string) *string { return &s }
	date := func(d model.Date) *model.Date { return &d }
	status := func(s model.Status) *model.Status { return &s }
	yes := true
	progress := 75

	recs := []model.TaskRecord{
		{
			ID:          str("TASK-1"),
			Name:        str("Design Homepage Mockups"),
			Description: str("Create high-fidelity mockups for the new homepage in Figma."),
			DueDate:     date(today.AddDays(5)),
			Assignee:    str("Alice Johnson"),
			Category:    str("Design"),
			Status:      status(model.StatusInProgress),
			IsUrgent:    &yes,
			Progress:    &progress,
			Links:       []model.Link{{Name: "Figma Mockup", URL: "https://figma.com"}},
		},
		{
			ID:          str("TASK-2"),
			Name:        str("Setup Production Server"),
			Description: str("Configure AWS EC2 instance and RDS for production deployment."),
			DueDate:     date(today),
			Assignee:    str("Diana Prince"),
			Category:    str("DevOps"),
			Status:      status(model.StatusOpen),
			Subtasks: []model.TaskRecord{{
				ID:          str("SUB-1"),
				Name:        str("Install Nginx"),
				Description: str("Set up the web server."),
				Assignee:    str("Diana Prince"),
				DueDate:     date(today),
				Status:      status(model.StatusOpen),
			}},
		},
		{
			ID:          str("TASK-3"),
			Name:        str("Fix Login Bug"),
			Description: str("Users are redirected to the wrong page after login."),
			DueDate:     date(today.AddDays(-3)),
			Assignee:    str("Charlie Brown"),
			Category:    str("Frontend"),
			Status:      status(model.StatusOpen),
		},
	}
	defaults := model.Defaults{Today: today}
	for _, rec := range recs {
		t := model.Normalize(rec, defaults)
		rollup.Apply(&t, today, rollup.DefaultPolicy())
		b.Tasks = append(b.Tasks, &t)
	}
	return b
}
