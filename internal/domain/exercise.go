package domain

// Exercise describes one entry of the fixed exercise catalog.
type Exercise struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Duration    int      `json:"duration"`
	Benefits    []string `json:"benefits"`
}

const (
	ExerciseBreathing   = "breathing-478"
	ExerciseVisualFocus = "visual-focus"
	ExerciseSound       = "sound-meditation"
	ExerciseObservation = "mindful-observation"
)

var catalog = []Exercise{
	{
		ID:          ExerciseBreathing,
		Title:       "4-7-8 Breathing",
		Description: "Inhale for 4 seconds, hold for 7, exhale for 8.",
		Duration:    300,
		Benefits:    []string{"Lowers stress", "Calms the nervous system", "Improves focus"},
	},
	{
		ID:          ExerciseVisualFocus,
		Title:       "Visual Focus",
		Description: "Keep your gaze on a single point and bring it back whenever it drifts.",
		Duration:    180,
		Benefits:    []string{"Trains sustained attention", "Reduces distractibility"},
	},
	{
		ID:          ExerciseSound,
		Title:       "Sound Meditation",
		Description: "Listen to the sounds around you without labelling them.",
		Duration:    300,
		Benefits:    []string{"Builds present-moment awareness", "Relaxes the body"},
	},
	{
		ID:          ExerciseObservation,
		Title:       "Mindful Observation",
		Description: "Study an everyday object as if seeing it for the first time.",
		Duration:    600,
		Benefits:    []string{"Sharpens perception", "Quiets mental chatter", "Strengthens concentration"},
	},
}

// Catalog returns a copy of the exercise catalog in display order.
func Catalog() []Exercise {
	out := make([]Exercise, len(catalog))
	copy(out, catalog)
	return out
}

// FindExercise looks up a catalog entry by id.
func FindExercise(id string) (Exercise, bool) {
	for _, e := range catalog {
		if e.ID == id {
			return e, true
		}
	}
	return Exercise{}, false
}
