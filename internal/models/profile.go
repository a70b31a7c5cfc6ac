// ABOUTME: Profile model holding the authoritative per-user game record.
// ABOUTME: Tracks XP, level, minutes, attributes, water and quest claim date.
package models

import (
	"fmt"
	"strings"
	"time"
)

// Stat names one of the four profile attributes.
type Stat string

const (
	StatStrength Stat = "strength"
	StatSpeed    Stat = "speed"
	StatDefense  Stat = "defense"
	StatFocus    Stat = "focus"
)

// AllStats lists the attributes in display order.
var AllStats = []Stat{StatStrength, StatSpeed, StatDefense, StatFocus}

// ParseStat validates a stat name case-insensitively.
func ParseStat(s string) (Stat, error) {
	for _, st := range AllStats {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown stat: %s", s)
}

// Profile is the single authoritative row per user.
type Profile struct {
	ID            string    `json:"id" yaml:"id"`
	DisplayName   string    `json:"display_name" yaml:"display_name"`
	Level         int       `json:"level" yaml:"level"`
	XP            int       `json:"xp" yaml:"xp"`
	TotalMinutes  int       `json:"total_minutes" yaml:"total_minutes"`
	Strength      int       `json:"strength" yaml:"strength"`
	Speed         int       `json:"speed" yaml:"speed"`
	Defense       int       `json:"defense" yaml:"defense"`
	Focus         int       `json:"focus" yaml:"focus"`
	WaterML       int       `json:"water_ml" yaml:"water_ml"`
	LastClaim     *Day      `json:"last_claim,omitempty" yaml:"last_claim,omitempty"`
	StatusMessage string    `json:"status_message,omitempty" yaml:"status_message,omitempty"`
	Bio           string    `json:"bio,omitempty" yaml:"bio,omitempty"`
	UpdatedAt     time.Time `json:"updated_at" yaml:"updated_at"`
}

// NewProfile creates a profile at signup defaults: level 1, zero XP.
func NewProfile(id, displayName string) *Profile {
	return &Profile{
		ID:          id,
		DisplayName: displayName,
		Level:       1,
		UpdatedAt:   time.Now(),
	}
}

// StatValue returns the current value of the named attribute.
func (p *Profile) StatValue(s Stat) int {
	switch s {
	case StatStrength:
		return p.Strength
	case StatSpeed:
		return p.Speed
	case StatDefense:
		return p.Defense
	case StatFocus:
		return p.Focus
	}
	return 0
}

// AddStat adds delta to the named attribute and returns the new value.
func (p *Profile) AddStat(s Stat, delta int) int {
	switch s {
	case StatStrength:
		p.Strength += delta
		return p.Strength
	case StatSpeed:
		p.Speed += delta
		return p.Speed
	case StatDefense:
		p.Defense += delta
		return p.Defense
	case StatFocus:
		p.Focus += delta
		return p.Focus
	}
	return 0
}

// ClaimedOn reports whether the last quest claim happened on day.
func (p *Profile) ClaimedOn(day Day) bool {
	return p.LastClaim != nil && *p.LastClaim == day
}

// Clone returns a copy that shares no pointers with p.
func (p *Profile) Clone() *Profile {
	c := *p
	if p.LastClaim != nil {
		d := *p.LastClaim
		c.LastClaim = &d
	}
	return &c
}
