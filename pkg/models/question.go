package models

// Question is a single learning item from the question bank. Topic and
// Category are optional grouping tags used by distractor selection.
type Question struct {
	ID       int64  `json:"id"`
	Grade    int    `json:"grade"`
	Surface  string `json:"surface"`
	Meaning  string `json:"meaning"`
	Topic    string `json:"topic"`
	Category string `json:"category"`
}

// ListeningQuestion is a scripted conversation-listening item. Unlike plain
// questions it ships with its own prewritten options.
type ListeningQuestion struct {
	ID           int64     `json:"id"`
	Script       string    `json:"script"`
	Prompt       string    `json:"prompt"`
	Options      [4]string `json:"options"`
	CorrectIndex int       `json:"correct_index"`
	Explanation  string    `json:"explanation"`
}
