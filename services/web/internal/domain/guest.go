package domain

import (
	"regexp"
	"strings"
	"time"
)

type Guest struct {
	ID          int64     `json:"id"`
	CreatedAt   time.Time `json:"created_at"`
	FullName    string    `json:"full_name"`
	Email       string    `json:"email"`
	Nationality string    `json:"nationality"`
	CountryFlag string    `json:"country_flag"`
	NationalID  string    `json:"national_id"`
}

// GuestProfile holds the fields a guest may edit on the profile page.
type GuestProfile struct {
	Nationality string
	CountryFlag string
	NationalID  string
}

var nationalIDPattern = regexp.MustCompile(`^[A-Za-z0-9]{6,12}$`)

func ValidNationalID(id string) bool {
	return nationalIDPattern.MatchString(id)
}

// ParseNationality splits the "<name>%<flagUrl>" value sent by the country
// select. A value without a separator has no flag; segments after the second
// are dropped.
func ParseNationality(v string) (nationality, flag string) {
	parts := strings.Split(v, "%")
	nationality = parts[0]
	if len(parts) > 1 {
		flag = parts[1]
	}
	return nationality, flag
}
