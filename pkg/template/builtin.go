package template

// Builtins returns the built-in skeletons. Results are freshly allocated
// on every call so loaders can overlay user edits without aliasing.
func Builtins() []*Template {
	return []*Template{
		{
			Name:        "blank",
			Description: "A single empty note to start from scratch",
			Items: []Entry{
				{Title: "Untitled"},
			},
		},
		{
			Name:        "project-plan",
			Description: "Goals, milestones and risks for a new project",
			Items: []Entry{
				{
					Title: "Project plan",
					Kind:  "heading",
					Children: []Entry{
						{
							Title: "Goals",
							Kind:  "heading",
							Children: []Entry{
								{Title: "Ship a first usable cut", Kind: "task", DueIn: "2w"},
							},
						},
						{
							Title: "Milestones",
							Kind:  "heading",
							Children: []Entry{
								{Title: "Scope agreed", Kind: "task", DueIn: "1w"},
								{Title: "Prototype in front of users", Kind: "task", DueIn: "1m"},
							},
						},
						{
							Title: "Risks",
							Kind:  "heading",
							Children: []Entry{
								{Title: "Open questions", Body: "List the unknowns that could sink the schedule."},
							},
						},
						{Title: "Notes", Kind: "heading"},
					},
				},
			},
		},
		{
			Name:        "meeting-notes",
			Description: "Attendees, agenda, decisions and action items",
			Items: []Entry{
				{
					Title: "Meeting notes",
					Kind:  "heading",
					Children: []Entry{
						{Title: "Attendees"},
						{Title: "Agenda", Kind: "heading"},
						{Title: "Decisions", Kind: "heading"},
						{
							Title: "Action items",
							Kind:  "heading",
							Children: []Entry{
								{Title: "Circulate these notes", Kind: "task", DueIn: "1d"},
							},
						},
					},
				},
			},
		},
		{
			Name:        "reading-list",
			Description: "A reading queue with done tracking",
			Items: []Entry{
				{
					Title: "Reading list",
					Kind:  "heading",
					Children: []Entry{
						{Title: "Up next", Kind: "heading"},
						{Title: "In progress", Kind: "heading"},
						{Title: "Finished", Kind: "heading"},
					},
				},
			},
		},
	}
}
