// Package template manages reusable assessment templates: question sets a
// teacher can load from the template library or import as JSON.
package template

// Template is one reusable assessment blueprint.
type Template struct {
	ID          string             `yaml:"id" json:"id"`
	Name        string             `yaml:"name" json:"name"`
	CourseCode  string             `yaml:"course_code" json:"course_code"`
	Description string             `yaml:"description" json:"description"`
	Questions   []TemplateQuestion `yaml:"questions" json:"questions"`
}

// TemplateQuestion is one question inside a template. TargetCLO and
// TargetLevel describe which outcome and cognitive level the question
// was written against.
type TemplateQuestion struct {
	Text        string `yaml:"text" json:"text"`
	TargetCLO   int    `yaml:"target_clo" json:"target_clo"`
	TargetLevel string `yaml:"target_level" json:"target_level"`
}
