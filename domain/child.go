package domain

import (
	"fmt"
	"strings"
)

// Grades lists the values a parent can pick for a child, in display order.
var Grades = []string{
	"Pre-K", "Kindergarten",
	"1st", "2nd", "3rd", "4th", "5th", "6th",
	"7th", "8th", "9th", "10th", "11th", "12th",
}

type Child struct {
	Name  string `json:"name"`
	Grade string `json:"grade"`
}

// Selectable reports whether the row is complete enough to ask about.
func (c Child) Selectable() bool {
	return strings.TrimSpace(c.Name) != "" && strings.TrimSpace(c.Grade) != ""
}

func (c Child) Label() string {
	return fmt.Sprintf("%s - Grade %s", c.Name, c.Grade)
}

func ValidGrade(grade string) bool {
	if grade == "" {
		return true
	}
	for _, g := range Grades {
		if g == grade {
			return true
		}
	}
	return false
}
