// ABOUTME: Daily tracking models for macros, habits and vitamins.
// ABOUTME: Each row is keyed by user and calendar day.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Macros is the nutrition total for a day.
type Macros struct {
	Date     Day     `json:"date"`
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

// HabitLog records whether a habit was done on a day.
type HabitLog struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Habit     string    `json:"habit"`
	Date      Day       `json:"date"`
	Done      bool      `json:"done"`
	CreatedAt time.Time `json:"created_at"`
}

// NewHabitLog creates a habit log entry.
func NewHabitLog(userID, habit string, day Day, done bool) *HabitLog {
	return &HabitLog{
		ID:        uuid.New(),
		UserID:    userID,
		Habit:     habit,
		Date:      day,
		Done:      done,
		CreatedAt: time.Now(),
	}
}

// VitaminLog records a vitamin taken on a day.
type VitaminLog struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Date      Day       `json:"date"`
	Taken     bool      `json:"taken"`
	CreatedAt time.Time `json:"created_at"`
}

// NewVitaminLog creates a taken vitamin entry.
func NewVitaminLog(userID, name string, day Day) *VitaminLog {
	return &VitaminLog{
		ID:        uuid.New(),
		UserID:    userID,
		Name:      name,
		Date:      day,
		Taken:     true,
		CreatedAt: time.Now(),
	}
}
