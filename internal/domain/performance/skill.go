package performance

import (
	"strings"

	"techrank/internal/errs"
)

// Proficiency is an ordinal skill grade.
type Proficiency int

const (
	ProficiencyBeginner     Proficiency = 1
	ProficiencyIntermediate Proficiency = 2
	ProficiencyAdvanced     Proficiency = 3
	ProficiencyExpert       Proficiency = 4
)

var proficiencyNames = map[Proficiency]string{
	ProficiencyBeginner:     "BEGINNER",
	ProficiencyIntermediate: "INTERMEDIATE",
	ProficiencyAdvanced:     "ADVANCED",
	ProficiencyExpert:       "EXPERT",
}

func (p Proficiency) Valid() bool {
	_, ok := proficiencyNames[p]
	return ok
}

func (p Proficiency) String() string {
	if name, ok := proficiencyNames[p]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseProficiency accepts either the name (case-insensitive) or the ordinal.
func ParseProficiency(raw string) (Proficiency, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	for p, name := range proficiencyNames {
		if name == trimmed {
			return p, nil
		}
	}
	switch trimmed {
	case "1", "2", "3", "4":
		return Proficiency(trimmed[0] - '0'), nil
	}
	return 0, errs.Validationf("unknown proficiency %q", raw)
}
