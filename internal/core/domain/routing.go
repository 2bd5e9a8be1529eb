package domain

import "strings"

// Destination is the home screen a session is routed to.
type Destination string

const (
	DestinationCoachHome  Destination = "coach_home"
	DestinationPlayerHome Destination = "player_home"
)

// RouteFor maps a stored role to its home destination. Any role that does not
// name a coach, including an empty one, lands on the player home.
func RouteFor(role string) Destination {
	if strings.Contains(strings.ToLower(role), "coach") {
		return DestinationCoachHome
	}
	return DestinationPlayerHome
}

// IsCoach reports whether role collapses to the coach group.
func IsCoach(role string) bool {
	return RouteFor(role) == DestinationCoachHome
}
