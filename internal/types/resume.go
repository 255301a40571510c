package types

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ResumeData is the complete resume being edited. Values are treated as immutable
// snapshots: the helpers below return modified copies and never touch the receiver.
type ResumeData struct {
	PersonalInfo   PersonalInfo     `json:"personalInfo" yaml:"personalInfo"`
	WorkExperience []WorkEntry      `json:"workExperience" yaml:"workExperience" validate:"dive"`
	Education      []EducationEntry `json:"education" yaml:"education" validate:"dive"`
	Skills         []string         `json:"skills" yaml:"skills" validate:"dive,max=100"`
	ExtraData      map[string]Value `json:"extraData,omitempty" yaml:"extraData,omitempty"`
}

// WorkEntry is a single position in the work history.
type WorkEntry struct {
	ID          string `json:"id" yaml:"id" validate:"required"`
	Company     string `json:"company" yaml:"company" validate:"required"`
	JobTitle    string `json:"jobTitle" yaml:"jobTitle"`
	Location    string `json:"location,omitempty" yaml:"location,omitempty"`
	StartDate   string `json:"startDate" yaml:"startDate"`
	EndDate     string `json:"endDate" yaml:"endDate"`
	Description string `json:"description" yaml:"description"`
}

// EducationEntry is a single degree or course of study.
type EducationEntry struct {
	ID          string `json:"id" yaml:"id" validate:"required"`
	Institution string `json:"institution" yaml:"institution" validate:"required"`
	Degree      string `json:"degree" yaml:"degree"`
	Field       string `json:"field" yaml:"field"`
	StartDate   string `json:"startDate" yaml:"startDate"`
	EndDate     string `json:"endDate" yaml:"endDate"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// NewID returns a fresh entry identifier.
func NewID() string {
	return uuid.NewString()
}

// NewWorkEntry returns an empty work entry with a fresh ID.
func NewWorkEntry() WorkEntry {
	return WorkEntry{ID: NewID()}
}

// NewEducationEntry returns an empty education entry with a fresh ID.
func NewEducationEntry() EducationEntry {
	return EducationEntry{ID: NewID()}
}

// Clone returns a deep copy of r.
func (r ResumeData) Clone() ResumeData {
	out := r
	out.PersonalInfo.Dynamic = append([]DynamicField(nil), r.PersonalInfo.Dynamic...)
	out.WorkExperience = append([]WorkEntry(nil), r.WorkExperience...)
	out.Education = append([]EducationEntry(nil), r.Education...)
	out.Skills = append([]string(nil), r.Skills...)
	if r.ExtraData != nil {
		out.ExtraData = make(map[string]Value, len(r.ExtraData))
		for k, v := range r.ExtraData {
			out.ExtraData[k] = v
		}
	}
	return out
}

// WithPersonalInfo returns a copy of r with the personal info replaced.
func (r ResumeData) WithPersonalInfo(p PersonalInfo) ResumeData {
	out := r.Clone()
	out.PersonalInfo = p
	out.PersonalInfo.Dynamic = append([]DynamicField(nil), p.Dynamic...)
	return out
}

// WithWorkEntry returns a copy of r where the entry with the same ID is replaced,
// or appended when no entry has that ID.
func (r ResumeData) WithWorkEntry(e WorkEntry) ResumeData {
	out := r.Clone()
	for i := range out.WorkExperience {
		if out.WorkExperience[i].ID == e.ID {
			out.WorkExperience[i] = e
			return out
		}
	}
	out.WorkExperience = append(out.WorkExperience, e)
	return out
}

// WithoutWorkEntry returns a copy of r without the work entry id.
func (r ResumeData) WithoutWorkEntry(id string) ResumeData {
	out := r.Clone()
	kept := out.WorkExperience[:0]
	for _, e := range out.WorkExperience {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	out.WorkExperience = kept
	return out
}

// WithEducationEntry returns a copy of r where the entry with the same ID is
// replaced, or appended when no entry has that ID.
func (r ResumeData) WithEducationEntry(e EducationEntry) ResumeData {
	out := r.Clone()
	for i := range out.Education {
		if out.Education[i].ID == e.ID {
			out.Education[i] = e
			return out
		}
	}
	out.Education = append(out.Education, e)
	return out
}

// WithoutEducationEntry returns a copy of r without the education entry id.
func (r ResumeData) WithoutEducationEntry(id string) ResumeData {
	out := r.Clone()
	kept := out.Education[:0]
	for _, e := range out.Education {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	out.Education = kept
	return out
}

// WithSkills returns a copy of r with the skill list replaced. Blank skills are
// dropped and surrounding whitespace trimmed.
func (r ResumeData) WithSkills(skills []string) ResumeData {
	out := r.Clone()
	out.Skills = make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.TrimSpace(s); s != "" {
			out.Skills = append(out.Skills, s)
		}
	}
	return out
}

// EnsureIDs returns a copy of r where every entry without an ID gets a fresh one.
func (r ResumeData) EnsureIDs() ResumeData {
	out := r.Clone()
	for i := range out.WorkExperience {
		if out.WorkExperience[i].ID == "" {
			out.WorkExperience[i].ID = NewID()
		}
	}
	for i := range out.Education {
		if out.Education[i].ID == "" {
			out.Education[i].ID = NewID()
		}
	}
	return out
}

// FieldError describes one failed validation rule.
type FieldError struct {
	Field   string
	Message string
}

// ValidationError collects the rule violations of a ResumeData value.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fmt.Sprintf("%s: %s", fe.Field, fe.Message)
	}
	return "invalid resume data: " + strings.Join(parts, "; ")
}

// Validate checks struct rules and ID uniqueness.
func (r ResumeData) Validate() error {
	var out []FieldError
	validate := validator.New()
	if err := validate.Struct(r); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				out = append(out, FieldError{Field: fe.Namespace(), Message: describeTag(fe)})
			}
		} else {
			return err
		}
	}

	seen := make(map[string]bool)
	for i, e := range r.WorkExperience {
		if e.ID != "" && seen[e.ID] {
			out = append(out, FieldError{Field: fmt.Sprintf("ResumeData.WorkExperience[%d].ID", i), Message: "duplicate id " + e.ID})
		}
		seen[e.ID] = true
	}
	for i, e := range r.Education {
		if e.ID != "" && seen[e.ID] {
			out = append(out, FieldError{Field: fmt.Sprintf("ResumeData.Education[%d].ID", i), Message: "duplicate id " + e.ID})
		}
		seen[e.ID] = true
	}
	for i, f := range r.PersonalInfo.Dynamic {
		if IsKnownField(f.Key) {
			out = append(out, FieldError{Field: fmt.Sprintf("ResumeData.PersonalInfo.Dynamic[%d].Key", i), Message: "reserved key " + f.Key})
		}
	}

	if len(out) > 0 {
		return &ValidationError{Errors: out}
	}
	return nil
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "failed rule " + fe.Tag()
	}
}
