package validation

import (
	"os"
	"regexp"
	"strconv"
	"strings"
)

// E.164 with a leading plus, 7-15 digits.
var phoneRe = regexp.MustCompile(`^\+[1-9]\d{6,14}$`)

var displayNameRe = regexp.MustCompile(`^[^\x00-\x1f]{1,100}$`)

func NormalizePhone(phone string) string {
	var b strings.Builder
	for _, r := range strings.TrimSpace(phone) {
		switch r {
		case ' ', '-', '(', ')', '.':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func ValidatePhone(phone string) bool {
	return phoneRe.MatchString(NormalizePhone(phone))
}

func NormalizeDisplayName(name string) string {
	return strings.TrimSpace(name)
}

func ValidateDisplayName(name string) bool {
	name = NormalizeDisplayName(name)
	return name != "" && displayNameRe.MatchString(name)
}

func MaxMessageLength() int {
	maxStr := os.Getenv("MAX_MESSAGE_LENGTH")
	if maxStr == "" {
		return 4000
	}
	max, err := strconv.Atoi(maxStr)
	if err != nil || max < 1 {
		return 4000
	}
	return max
}

func MaxGroupName() int {
	return 100
}

func TrimAndLimit(s string, max int) string {
	s = strings.TrimSpace(s)
	if max > 0 && len(s) > max {
		return s[:max]
	}
	return s
}
