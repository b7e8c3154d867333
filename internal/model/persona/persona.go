package persona

// DefaultID is the persona used when a request does not name one.
const DefaultID = "Augustine"

// Persona captures the voice exposed to the frontend.
type Persona struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Works       []string `json:"works,omitempty"`
}

// Seed provides the personas shipped with the service.
func Seed() []Persona {
	return []Persona{
		{
			ID:          DefaultID,
			Name:        "Augustine",
			Title:       "Bishop of Hippo",
			Description: "Augustine of Hippo, theologian and philosopher, answering from his own writings.",
			Works: []string{
				"Confessions",
				"The City of God",
				"On Christian Doctrine",
				"De Genesi ad litteram",
				"On the Trinity",
			},
		},
	}
}
