package util

import "strings"

func RemoveDuplicateStrings(strings []string, ignoreList []string) []string {
	presentStrings := make(map[string]bool)
	var list []string

	for _, ignoreString := range ignoreList {
		presentStrings[ignoreString] = true
	}

	for _, item := range strings {
		if _, value := presentStrings[item]; !value && item != "" {
			presentStrings[item] = true
			list = append(list, item)
		}
	}
	return list
}

// OptionalString trims s and returns nil when nothing is left, so blank form values are stored as NULL
func OptionalString(s *string) *string {
	if s == nil {
		return nil
	}

	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}

	return &trimmed
}
