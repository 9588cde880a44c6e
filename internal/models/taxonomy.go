package models

// School grades and subjects recognized by the platform. Hardcoded rather
// than stored: the set is stable and lesson filters rely on exact values.

var grades = map[string]bool{
	"CP": true, "CE1": true, "CE2": true, "CM1": true, "CM2": true,
	"SIXIEME": true, "CINQUIEME": true, "QUATRIEME": true, "TROISIEME": true,
	"SECONDE": true, "PREMIERE": true, "TERMINALE": true,
}

var subjects = map[string]bool{
	"MATHS":                             true,
	"FRANCAIS":                          true,
	"ANGLAIS":                           true,
	"ESPAGNOL":                          true,
	"ALLEMAND":                          true,
	"ITALIEN":                           true,
	"PORTUGAIS":                         true,
	"ARABE":                             true,
	"LATIN":                             true,
	"GREC ANCIEN":                       true,
	"HISTOIRE":                          true,
	"GEOGRAPHIE":                        true,
	"EDUCATION CIVIQUE":                 true,
	"PHILOSOPHIE":                       true,
	"EDUCATION MUSICALE":                true,
	"ARTS PLASTIQUES":                   true,
	"SCIENCES DE LA VIE ET DE LA TERRE": true,
	"SCIENCES PHYSIQUES ET CHIMIE":      true,
	"TECHNOLOGIE":                       true,
	"DROIT":                             true,
	"SCIENCES ECONOMIQUES ET SOCIALES":  true,
	"GESTION":                           true,
	"EDUCATION PHYSIQUE ET SPORTIVE":    true,
	"EDUCATION RELIGIEUSE":              true,
}

// ValidGrade reports whether g is a known school grade. The empty string is
// accepted: grade is optional on a lesson.
func ValidGrade(g string) bool {
	return g == "" || grades[g]
}

// ValidSubject reports whether s is a known subject, empty meaning unset.
func ValidSubject(s string) bool {
	return s == "" || subjects[s]
}
