package entity

// Source is one selectable content source (a book or course).
type Source struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

// Unit is one selectable sub-unit of a source.
type Unit struct {
	ID       string `json:"id"`
	SourceID string `json:"source_id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// SkillFormat is one generation format offered by a skill.
type SkillFormat struct {
	Slug string      `json:"slug"`
	Name string      `json:"name"`
	Kind ContentKind `json:"kind"`
}

// Skill is one selectable skill with its available formats. The mix skill
// carries no formats.
type Skill struct {
	Slug    string        `json:"slug"`
	Name    string        `json:"name"`
	Formats []SkillFormat `json:"formats,omitempty"`
}
