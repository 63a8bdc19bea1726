package remote

// State is the connectivity/authentication state of the sync client.
type State int

const (
	StateOffline State = iota
	StateOnlineUnauthenticated
	StateOnlineAuthenticated
)

func (s State) String() string {
	switch s {
	case StateOnlineUnauthenticated:
		return "online-unauthenticated"
	case StateOnlineAuthenticated:
		return "online-authenticated"
	default:
		return "offline"
	}
}

func computeState(online bool, token string) State {
	switch {
	case !online:
		return StateOffline
	case token == "":
		return StateOnlineUnauthenticated
	default:
		return StateOnlineAuthenticated
	}
}
