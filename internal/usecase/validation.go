package usecase

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/GoArmGo/PhotoHub/internal/domain"
)

// Пределы длины полей, совпадают с ограничениями схемы
const (
	maxPhotoTitle       = 255
	maxDescription      = 1000
	maxCollectionTitle  = 100
	minUsername         = 3
	maxUsername         = 50
	maxEmail            = 100
	minPassword         = 8
	maxName             = 100
	maxBio              = 500
	maxLocation         = 200
	maxPortfolioURL     = 255
	maxSocialUsername   = 50
	maxTagName          = 50
	maxSearchKeywordLen = 100
)

func invalid(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, domain.ErrValidation)...)
}

func checkLength(field, value string, min, max int) error {
	n := utf8.RuneCountInString(value)
	if n < min {
		if min == 1 {
			return invalid("%s is required", field)
		}
		return invalid("%s must be at least %d characters", field, min)
	}
	if max > 0 && n > max {
		return invalid("%s must be at most %d characters", field, max)
	}
	return nil
}

func checkOptional(field string, value *string, max int) error {
	if value == nil {
		return nil
	}
	return checkLength(field, *value, 0, max)
}

// normalizeTags обрезает пробелы, приводит к нижнему регистру,
// отбрасывает пустые имена и дубликаты, сохраняя порядок
func normalizeTags(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.ToLower(strings.TrimSpace(n))
		if n == "" {
			continue
		}
		if utf8.RuneCountInString(n) > maxTagName {
			return nil, invalid("tag %q is longer than %d characters", n, maxTagName)
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out, nil
}

func validatePhotoPatch(p domain.PhotoPatch) error {
	if p.Title != nil {
		if err := checkLength("title", strings.TrimSpace(*p.Title), 1, maxPhotoTitle); err != nil {
			return err
		}
	}
	return checkOptional("description", p.Description, maxDescription)
}

func validateCollectionPatch(p domain.CollectionPatch) error {
	if p.Title != nil {
		if err := checkLength("title", strings.TrimSpace(*p.Title), 1, maxCollectionTitle); err != nil {
			return err
		}
	}
	return checkOptional("description", p.Description, maxDescription)
}

func validateProfilePatch(p domain.ProfilePatch) error {
	checks := []struct {
		field string
		value *string
		max   int
	}{
		{"name", p.Name, maxName},
		{"bio", p.Bio, maxBio},
		{"location", p.Location, maxLocation},
		{"portfolio_url", p.PortfolioURL, maxPortfolioURL},
		{"instagram_username", p.InstagramUsername, maxSocialUsername},
		{"twitter_username", p.TwitterUsername, maxSocialUsername},
	}
	for _, c := range checks {
		if err := checkOptional(c.field, c.value, c.max); err != nil {
			return err
		}
	}
	return nil
}

func validateRegistration(in RegisterInput) error {
	if err := checkLength("username", in.Username, minUsername, maxUsername); err != nil {
		return err
	}
	if err := checkLength("email", in.Email, 1, maxEmail); err != nil {
		return err
	}
	if !strings.Contains(in.Email, "@") {
		return invalid("email is malformed")
	}
	if err := checkLength("password", in.Password, minPassword, 0); err != nil {
		return err
	}
	return checkOptional("name", in.Name, maxName)
}
