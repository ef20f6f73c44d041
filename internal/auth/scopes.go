package auth

// Known OAuth scopes used by the practice statistics endpoints.
const (
	ScopePracticeWrite = "practice:write"
	ScopePracticeRead  = "practice:read"
)
