package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleResume() ResumeData {
	return ResumeData{
		PersonalInfo: PersonalInfo{FullName: "Jane Roe", JobTitle: "Engineer", Email: "jane@example.com"},
		WorkExperience: []WorkEntry{
			{ID: "w1", Company: "Acme", JobTitle: "Engineer", StartDate: "2020-01", EndDate: "Present"},
		},
		Education: []EducationEntry{
			{ID: "e1", Institution: "State University", Degree: "BSc", Field: "Computer Science"},
		},
		Skills:    []string{"Go", "SQL"},
		ExtraData: map[string]Value{"languages": List(String("English"))},
	}
}

func TestNewEntries_HaveUniqueIDs(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		w := NewWorkEntry()
		e := NewEducationEntry()
		require.NotEmpty(t, w.ID)
		require.False(t, seen[w.ID])
		require.False(t, seen[e.ID])
		seen[w.ID] = true
		seen[e.ID] = true
	}
}

func TestResumeData_UpdatesReturnCopies(t *testing.T) {
	r := sampleResume()

	updated := r.WithWorkEntry(WorkEntry{ID: "w1", Company: "Globex"})
	assert.Equal(t, "Acme", r.WorkExperience[0].Company)
	assert.Equal(t, "Globex", updated.WorkExperience[0].Company)

	added := r.WithWorkEntry(WorkEntry{ID: "w2", Company: "Initech"})
	assert.Len(t, r.WorkExperience, 1)
	assert.Len(t, added.WorkExperience, 2)

	removed := added.WithoutWorkEntry("w1")
	require.Len(t, removed.WorkExperience, 1)
	assert.Equal(t, "w2", removed.WorkExperience[0].ID)
	assert.Len(t, added.WorkExperience, 2)

	edu := r.WithEducationEntry(EducationEntry{ID: "e2", Institution: "Tech"}).WithoutEducationEntry("e1")
	require.Len(t, edu.Education, 1)
	assert.Equal(t, "e2", edu.Education[0].ID)
	assert.Len(t, r.Education, 1)
}

func TestResumeData_WithSkillsTrims(t *testing.T) {
	r := sampleResume().WithSkills([]string{" Go ", "", "  ", "Rust"})
	assert.Equal(t, []string{"Go", "Rust"}, r.Skills)
}

func TestResumeData_EnsureIDs(t *testing.T) {
	r := ResumeData{WorkExperience: []WorkEntry{{Company: "A"}}, Education: []EducationEntry{{Institution: "B", ID: "keep"}}}
	out := r.EnsureIDs()
	assert.NotEmpty(t, out.WorkExperience[0].ID)
	assert.Equal(t, "keep", out.Education[0].ID)
	assert.Empty(t, r.WorkExperience[0].ID)
}

func TestResumeData_Validate(t *testing.T) {
	assert.NoError(t, sampleResume().Validate())

	bad := sampleResume()
	bad.PersonalInfo.Email = "not-an-email"
	bad.WorkExperience = append(bad.WorkExperience, WorkEntry{ID: "w1", Company: ""})

	err := bad.Validate()
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	msg := err.Error()
	assert.Contains(t, msg, "valid email")
	assert.Contains(t, msg, "Company")
	assert.Contains(t, msg, "duplicate id w1")
}

func TestResumeData_JSONRoundTrip(t *testing.T) {
	r := sampleResume()
	r.PersonalInfo = r.PersonalInfo.With("website", "https://jane.dev")

	data, err := json.Marshal(r)
	require.NoError(t, err)

	var back ResumeData
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, r.PersonalInfo, back.PersonalInfo)
	assert.Equal(t, r.WorkExperience, back.WorkExperience)
	assert.True(t, r.ExtraData["languages"].Equal(back.ExtraData["languages"]))
}

func TestLayoutData_PropsUsesBothNamings(t *testing.T) {
	props := sampleResume().LayoutData().Props()

	basics := props["basics"].(map[string]any)
	assert.Equal(t, "Jane Roe", basics["fullName"])
	assert.Equal(t, basics, props["personalInfo"])

	work := props["work"].([]any)
	require.Len(t, work, 1)
	assert.Equal(t, "Acme", work[0].(map[string]any)["company"])
	assert.Equal(t, work, props["workExperience"])

	assert.Equal(t, []any{"Go", "SQL"}, props["skills"])
	assert.Equal(t, []any{"English"}, props["extraData"].(map[string]any)["languages"])
}

func TestLayoutData_PropsAreFreshPerCall(t *testing.T) {
	d := sampleResume().LayoutData()
	first := d.Props()
	first["basics"].(map[string]any)["fullName"] = "changed"

	second := d.Props()
	assert.Equal(t, "Jane Roe", second["basics"].(map[string]any)["fullName"])
	assert.Equal(t, "Jane Roe", second["personalInfo"].(map[string]any)["fullName"])
}
