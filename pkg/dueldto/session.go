package dueldto

// SessionState is what the presentation layer needs to show one duel.
type SessionState struct {
	GameID     string
	WhiteName  string
	BlackName  string
	Turn       string
	MoveCount  int
	Status     string
	Winner     string
	LastMove   string
	Selected   string
	Targets    []string
	BoardImage []byte
}

// Finished reports whether the duel reached a final status.
func (s *SessionState) Finished() bool {
	return s != nil && s.Status != "" && s.Status != "ACTIVE"
}
