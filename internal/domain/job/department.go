package job

import "strings"

const DepartmentAll = "all"

var departmentNames = map[string]string{
	"cse": "Computer Science Engineering",
	"it":  "Information Technology",
	"ece": "Electronics & Communication",
	"ee":  "Electrical Engineering",
	"me":  "Mechanical Engineering",
	"ce":  "Civil Engineering",
}

// NormalizeDepartment maps a code or a full department name to its code.
// Unknown values are returned lower-cased so they can still be compared.
func NormalizeDepartment(value string) string {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" {
		return ""
	}
	if trimmed == DepartmentAll {
		return DepartmentAll
	}
	if _, ok := departmentNames[trimmed]; ok {
		return trimmed
	}
	for code, name := range departmentNames {
		if strings.ToLower(name) == trimmed {
			return code
		}
	}
	return trimmed
}

func DepartmentName(code string) string {
	if name, ok := departmentNames[NormalizeDepartment(code)]; ok {
		return name
	}
	return code
}

// NormalizeDepartments deduplicates and normalizes a department list.
func NormalizeDepartments(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		code := NormalizeDepartment(value)
		if code == "" {
			continue
		}
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}

// IsKnownDepartment accepts catalogue codes, their full names, and the all sentinel.
func IsKnownDepartment(value string) bool {
	code := NormalizeDepartment(value)
	if code == DepartmentAll {
		return true
	}
	_, ok := departmentNames[code]
	return ok
}
