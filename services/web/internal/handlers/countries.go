package handlers

import "strings"

type country struct {
	Name string
	Code string
}

var countries = []country{
	{"Argentina", "ar"}, {"Australia", "au"}, {"Austria", "at"}, {"Belgium", "be"},
	{"Brazil", "br"}, {"Canada", "ca"}, {"Denmark", "dk"}, {"Finland", "fi"},
	{"France", "fr"}, {"Germany", "de"}, {"Ireland", "ie"}, {"Italy", "it"},
	{"Japan", "jp"}, {"Mexico", "mx"}, {"Netherlands", "nl"}, {"New Zealand", "nz"},
	{"Norway", "no"}, {"Poland", "pl"}, {"Portugal", "pt"}, {"Spain", "es"},
	{"Sweden", "se"}, {"Switzerland", "ch"}, {"United Kingdom", "gb"}, {"United States", "us"},
}

// countryOption values use the "<name>%<flagUrl>" encoding the profile
// action expects.
type countryOption struct {
	Name     string
	Value    string
	Selected bool
}

func flagURL(code string) string {
	return "https://flagcdn.com/" + code + ".svg"
}

func countryOptions(selected string) []countryOption {
	opts := make([]countryOption, 0, len(countries))
	for _, c := range countries {
		opts = append(opts, countryOption{
			Name:     c.Name,
			Value:    c.Name + "%" + flagURL(c.Code),
			Selected: strings.EqualFold(c.Name, selected),
		})
	}
	return opts
}
