package portfolio

import (
	"encoding/json"
	"reflect"
	"strconv"
	"strings"
)

// The wire types mirror Document with pointers so that an absent or null
// key stays distinguishable from an empty string or a zero level.

type wireDocument struct {
	Hero       *wireHero      `json:"hero" validate:"required"`
	About      *wireAbout     `json:"about" validate:"required"`
	Skills     []*wireSkill   `json:"skills" validate:"required,dive,required"`
	Education  []*wireEntry   `json:"experience1" validate:"required,dive,required"`
	Experience []*wireEntry   `json:"experience" validate:"required,dive,required"`
	Projects   []*wireProject `json:"projects" validate:"required,dive,required"`
	Contact    *wireContact   `json:"contact" validate:"required"`
}

type wireHero struct {
	Name        *string `json:"name" validate:"required"`
	Title       *string `json:"title" validate:"required"`
	Description *string `json:"description" validate:"required"`
}

type wireAbout struct {
	Description *string   `json:"description" validate:"required"`
	Highlights  []*string `json:"highlights" validate:"required,dive,required"`
}

type wireSkill struct {
	Name  *string `json:"name" validate:"required"`
	Level *int    `json:"level" validate:"required"`
}

type wireEntry struct {
	Position    *string `json:"position" validate:"required"`
	Company     *string `json:"company" validate:"required"`
	Duration    *string `json:"duration" validate:"required"`
	Description *string `json:"description" validate:"required"`
}

type wireProject struct {
	Title       *string `json:"title" validate:"required"`
	Description *string `json:"description" validate:"required"`
	Link        *string `json:"link" validate:"required"`
}

type wireContact struct {
	Email    *string `json:"email" validate:"required"`
	Phone    *string `json:"phone" validate:"required"`
	LinkedIn *string `json:"linkedin" validate:"required"`
	GitHub   *string `json:"github" validate:"required"`
}

// document converts a validated wire document. Every required pointer is
// known to be set.
func (w *wireDocument) document() *Document {
	doc := &Document{
		Hero: &Hero{
			Name:        *w.Hero.Name,
			Title:       *w.Hero.Title,
			Description: *w.Hero.Description,
		},
		About: &About{
			Description: *w.About.Description,
			Highlights:  make([]string, len(w.About.Highlights)),
		},
		Skills:     make([]Skill, len(w.Skills)),
		Education:  entries(w.Education),
		Experience: entries(w.Experience),
		Projects:   make([]Project, len(w.Projects)),
		Contact: &Contact{
			Email:    *w.Contact.Email,
			Phone:    *w.Contact.Phone,
			LinkedIn: *w.Contact.LinkedIn,
			GitHub:   *w.Contact.GitHub,
		},
	}
	for i, h := range w.About.Highlights {
		doc.About.Highlights[i] = *h
	}
	for i, s := range w.Skills {
		doc.Skills[i] = Skill{Name: *s.Name, Level: *s.Level}
	}
	for i, p := range w.Projects {
		doc.Projects[i] = Project{Title: *p.Title, Description: *p.Description, Link: *p.Link}
	}
	return doc
}

func entries(in []*wireEntry) []Entry {
	out := make([]Entry, len(in))
	for i, e := range in {
		out[i] = Entry{
			Position:    *e.Position,
			Company:     *e.Company,
			Duration:    *e.Duration,
			Description: *e.Description,
		}
	}
	return out
}

const rootField = "(document)"

// typeProblems walks a generically decoded value against the wire type t and
// reports every value whose JSON type does not match, with indexed paths.
// Absent and null values are left to the validator.
func typeProblems(path string, t reflect.Type, v any) []Problem {
	if v == nil {
		return nil
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	mismatch := func() []Problem {
		field := path
		if field == "" {
			field = rootField
		}
		return []Problem{{Field: field, Rule: "type " + jsonType(v)}}
	}

	switch t.Kind() {
	case reflect.String:
		if _, ok := v.(string); !ok {
			return mismatch()
		}
	case reflect.Int:
		n, ok := v.(json.Number)
		if !ok {
			return mismatch()
		}
		if _, err := strconv.ParseInt(n.String(), 10, 0); err != nil {
			return mismatch()
		}
	case reflect.Slice:
		items, ok := v.([]any)
		if !ok {
			return mismatch()
		}
		var problems []Problem
		for i, item := range items {
			problems = append(problems, typeProblems(path+"["+strconv.Itoa(i)+"]", t.Elem(), item)...)
		}
		return problems
	case reflect.Struct:
		obj, ok := v.(map[string]any)
		if !ok {
			return mismatch()
		}
		var problems []Problem
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
			child := name
			if path != "" {
				child = path + "." + name
			}
			problems = append(problems, typeProblems(child, f.Type, obj[name])...)
		}
		return problems
	}
	return nil
}

func jsonType(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case json.Number, float64:
		return "number"
	case bool:
		return "bool"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "null"
	}
}

// covers reports whether a type problem at field already accounts for a
// problem reported at other.
func covers(field, other string) bool {
	return field == rootField ||
		other == field ||
		strings.HasPrefix(other, field+".") ||
		strings.HasPrefix(other, field+"[")
}
