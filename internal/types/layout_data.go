package types

// LayoutData is the view of a resume handed to layouts, built-in or custom.
type LayoutData struct {
	Basics    PersonalInfo
	Work      []WorkEntry
	Education []EducationEntry
	Skills    []string
	ExtraData map[string]Value
}

// LayoutData returns the layout view of r. The view shares no memory with r.
func (r ResumeData) LayoutData() LayoutData {
	c := r.Clone()
	return LayoutData{
		Basics:    c.PersonalInfo,
		Work:      c.WorkExperience,
		Education: c.Education,
		Skills:    c.Skills,
		ExtraData: c.ExtraData,
	}
}

// Resume converts the view back into ResumeData.
func (d LayoutData) Resume() ResumeData {
	return ResumeData{
		PersonalInfo:   d.Basics,
		WorkExperience: d.Work,
		Education:      d.Education,
		Skills:         d.Skills,
		ExtraData:      d.ExtraData,
	}.Clone()
}

// Props returns the layout data as plain values keyed by both the current names
// (basics, work) and the historical ones (personalInfo, workExperience).
// Each call builds new maps and slices.
func (d LayoutData) Props() map[string]any {
	basics := make(map[string]any, len(KnownFields)+len(d.Basics.Dynamic))
	for k, v := range d.Basics.Map() {
		basics[k] = v
	}

	work := make([]any, len(d.Work))
	for i, w := range d.Work {
		work[i] = map[string]any{
			"id":          w.ID,
			"company":     w.Company,
			"jobTitle":    w.JobTitle,
			"position":    w.JobTitle,
			"location":    w.Location,
			"startDate":   w.StartDate,
			"endDate":     w.EndDate,
			"description": w.Description,
		}
	}

	education := make([]any, len(d.Education))
	for i, e := range d.Education {
		education[i] = map[string]any{
			"id":          e.ID,
			"institution": e.Institution,
			"degree":      e.Degree,
			"field":       e.Field,
			"startDate":   e.StartDate,
			"endDate":     e.EndDate,
			"description": e.Description,
		}
	}

	skills := make([]any, len(d.Skills))
	for i, s := range d.Skills {
		skills[i] = s
	}

	extra := make(map[string]any, len(d.ExtraData))
	for k, v := range d.ExtraData {
		extra[k] = v.Interface()
	}

	workAlias := make([]any, len(work))
	copy(workAlias, work)

	basicsAlias := make(map[string]any, len(basics))
	for k, v := range basics {
		basicsAlias[k] = v
	}

	return map[string]any{
		"basics":         basics,
		"personalInfo":   basicsAlias,
		"work":           work,
		"workExperience": workAlias,
		"education":      education,
		"skills":         skills,
		"extraData":      extra,
	}
}
