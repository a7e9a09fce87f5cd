package ai

// Summary - итог для публикации: заголовок, краткое содержание и источник
type Summary struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	Source  string `json:"source"`
}
