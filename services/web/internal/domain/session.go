package domain

import "github.com/diagnosis/zenith-cabins/pkg/utils"

// Session is the identity attached to a request. A nil *Session is anonymous.
type Session struct {
	GuestID int64
	Name    string
	Email   string
}

func (s *Session) FirstName() string {
	if s == nil {
		return "Guest"
	}
	return utils.FirstName(s.Name, "Guest")
}
