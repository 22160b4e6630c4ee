package models

type Subject struct {
	ID        int64  `json:"id"`
	TeacherID int64  `json:"teacher_id"`
	Name      string `json:"name" example:"Matematyka"`
	DayOfWeek string `json:"day_of_week" example:"Monday"`
	TimeSlot  string `json:"time_slot" example:"10:00-11:30"`
}
