package selectors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBundled_IsValid(t *testing.T) {
	doc, err := Validate(BundledJSON())
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Version)

	for _, platform := range []FieldSelectors{doc.LinkedIn, doc.Indeed} {
		assert.Empty(t, platform.MissingFields())
	}
}

func TestParse_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing version", `{"linkedin": {}, "indeed": {}}`},
		{"empty version", `{"version": "", "linkedin": {}, "indeed": {}}`},
		{"missing indeed", `{"version": "1", "linkedin": {}}`},
		{"missing linkedin", `{"version": "1", "indeed": {}}`},
		{"list of numbers", `{"version": "1", "linkedin": {"position": [1]}, "indeed": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)

			var validationErr *ValidationError
			assert.ErrorAs(t, err, &validationErr)
			assert.True(t, errors.Is(err, ErrMalformedConfig))
		})
	}
}

func TestParse_NotJSON(t *testing.T) {
	_, err := Parse([]byte("<html>404</html>"))
	require.Error(t, err)

	var configErr *ConfigError
	assert.ErrorAs(t, err, &configErr)
}

func TestParse_Minimal(t *testing.T) {
	doc, err := Parse([]byte(`{"version": "2.0", "linkedin": {}, "indeed": {"position": [".t"]}}`))
	require.NoError(t, err)
	assert.Equal(t, "2.0", doc.Version)
	assert.Equal(t, []string{".t"}, doc.Indeed.Position)
	assert.Nil(t, doc.LinkedIn.Position)
}

func TestMerge_PerField(t *testing.T) {
	base := &Document{
		Version: "1",
		Indeed: FieldSelectors{
			Position: []string{".base-title"},
			Company:  []string{".base-company"},
			Salary:   []string{".base-salary"},
		},
	}
	override := &Document{
		Version: "2",
		Indeed: FieldSelectors{
			Position: []string{".remote-title"},
			Company:  []string{},
			Salary:   []string{"  "},
		},
	}

	merged := Merge(base, override)

	assert.Equal(t, "2", merged.Version)
	assert.Equal(t, []string{".remote-title"}, merged.Indeed.Position)
	assert.Equal(t, []string{".base-company"}, merged.Indeed.Company, "empty override falls back")
	assert.Equal(t, []string{".base-salary"}, merged.Indeed.Salary, "blank-only override falls back")
	assert.Equal(t, []string{"company", "salary", "description", "appLink"}, Merge(&Document{}, override).Indeed.MissingFields())

	// base is untouched
	assert.Equal(t, []string{".base-title"}, base.Indeed.Position)
}

func TestMerge_NilOverrideCopiesBase(t *testing.T) {
	base := Bundled()
	merged := Merge(base, nil)
	assert.Equal(t, base, merged)

	merged.Indeed.Position[0] = "changed"
	assert.NotEqual(t, "changed", base.Indeed.Position[0])
}

func TestLint(t *testing.T) {
	doc := &Document{
		Version: "1",
		LinkedIn: FieldSelectors{
			Position: []string{"h1", "div[", ""},
		},
	}

	problems := Lint(doc)
	require.Len(t, problems, 2)
	assert.Equal(t, "linkedin.position.1", problems[0].Field)
	assert.Equal(t, "linkedin.position.2", problems[1].Field)
	assert.Equal(t, "empty selector", problems[1].Message)
}

func TestValidate_MissingRequiredLists(t *testing.T) {
	_, err := Validate([]byte(`{"version": "1", "linkedin": {}, "indeed": {}}`))
	require.Error(t, err)

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Len(t, validationErr.Errors, 2*len(RequiredFields))
}

func TestForLinkedIn(t *testing.T) {
	t.Run("bundled", func(t *testing.T) {
		l := ForLinkedIn(nil, nil)
		assert.Equal(t, Bundled().LinkedIn.Position, l.Detail.Title)
		assert.Equal(t, "h1.top-card-layout__title", l.Single.Title[0])
		assert.Len(t, l.Container, 3)
	})

	t.Run("override replaces both layouts", func(t *testing.T) {
		override := &Document{
			Version:  "9",
			LinkedIn: FieldSelectors{Position: []string{".custom-title"}, Description: []string{".custom-desc"}},
		}
		l := ForLinkedIn(nil, override)
		assert.Equal(t, []string{".custom-title"}, l.Detail.Title)
		assert.Equal(t, []string{".custom-title"}, l.Single.Title)
		assert.Equal(t, []string{".custom-desc"}, l.Single.Description)
		assert.Equal(t, Bundled().LinkedIn.Company, l.Detail.Company)
	})
}

func TestForIndeed(t *testing.T) {
	override := &Document{Version: "9", Indeed: FieldSelectors{Company: []string{".co"}}}
	f := ForIndeed(nil, override)
	assert.Equal(t, []string{".co"}, f.Company)
	assert.Equal(t, Bundled().Indeed.Position, f.Position)
}
