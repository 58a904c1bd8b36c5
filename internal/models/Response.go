package models

type Response struct {
	ID         string `json:"id"`
	EntryID    string `json:"entry_id"`
	QuestionID string `json:"question_id"`
	Answer     string `json:"answer"`
}
