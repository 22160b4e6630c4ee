package models

type Student struct {
	StudentID string `json:"student_id" example:"S0042"`
	Name      string `json:"name" example:"Anna Kowalska"`
	UserID    *int64 `json:"-"`
}
