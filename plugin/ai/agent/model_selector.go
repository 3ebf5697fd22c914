package agent

// TaskCategory is the assessed category of a general query.
type TaskCategory string

const (
	CategoryGeneral   TaskCategory = "general"
	CategoryCreative  TaskCategory = "creative"
	CategoryReasoning TaskCategory = "reasoning"
	CategoryTechnical TaskCategory = "technical"
)

// SelectModel picks the completion model for a general query from its
// assessed category and complexity (1-3). Complex or reasoning-heavy
// work goes to the strong model, everything else to the weak one.
func SelectModel(strong, weak string, category TaskCategory, complexity int) string {
	if complexity >= 2 || category == CategoryReasoning || category == "analysis" {
		return strong
	}
	if category == CategoryCreative && complexity >= 2 {
		return strong
	}
	return weak
}
