// Package portfolio defines the Portfolio Document and how it is read and
// validated at the boundary.
package portfolio

// Document is the single payload describing everything the page renders.
// Field order mirrors the order the sections are rendered in.
type Document struct {
	Hero       *Hero     `json:"hero"`
	About      *About    `json:"about"`
	Skills     []Skill   `json:"skills"`
	Education  []Entry   `json:"experience1"`
	Experience []Entry   `json:"experience"`
	Projects   []Project `json:"projects"`
	Contact    *Contact  `json:"contact"`
}

// Hero is the headline identity block.
type Hero struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// About is the biography paragraph plus its bullet list.
type About struct {
	Description string   `json:"description"`
	Highlights  []string `json:"highlights"`
}

// Skill is a named proficiency. Level is a percentage used only as a bar
// width; it is not clamped.
type Skill struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
}

// Entry is one education or experience card.
type Entry struct {
	Position    string `json:"position"`
	Company     string `json:"company"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

// Project is a portfolio project card.
type Project struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Link        string `json:"link"`
}

// Contact holds the contact block.
type Contact struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	LinkedIn string `json:"linkedin"`
	GitHub   string `json:"github"`
}
