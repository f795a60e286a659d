package utils

import (
	"regexp"
	"strings"

	"reviewhub/internal/models"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9@.+_-]{1,150}$`)

func IsValidUsername(username string) bool {
	return usernamePattern.MatchString(username)
}

func IsValidPassword(password string) bool {
	return len(password) >= 8
}

func IsValidRating(rating int) bool {
	return rating >= 1 && rating <= 5
}

func IsValidReaction(reaction string) bool {
	return reaction == models.ReactionLike || reaction == models.ReactionDislike
}

func SanitizeString(input string) string {
	return strings.TrimSpace(input)
}
