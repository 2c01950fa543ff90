package web

// Copy shown around the portfolio content. Section titles live here so the
// templates only carry structure.
var (
	LoadingMessage = `This needs to load something...`

	FailedMessage = `Something went wrong while loading this portfolio.`

	RetryLabel = `Try again`

	ProjectLinkLabel = `View Project →`
)

var copyText = map[string]string{
	"loading":     LoadingMessage,
	"failed":      FailedMessage,
	"retry":       RetryLabel,
	"projectLink": ProjectLinkLabel,

	"hero":       "Welcome",
	"about":      "About Me",
	"skills":     "Skills",
	"education":  "Education",
	"experience": "Experience",
	"projects":   "Projects",
	"contact":    "Contact Me",
}

// text looks up a piece of page copy by key. Unknown keys render as the key
// itself so a typo is visible on the page instead of blank.
func text(key string) string {
	if s, ok := copyText[key]; ok {
		return s
	}
	return key
}
