package domain

import "fmt"

type Outcome int

const (
	OutcomeSuccess Outcome = iota
	OutcomeError
	OutcomeLoggedIn
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeError:
		return "error"
	case OutcomeLoggedIn:
		return "logged_in"
	default:
		return "unknown"
	}
}

// AuthResult is the outcome of a register or login call. Exactly one of the
// three variants is set; User is only non-nil for OutcomeLoggedIn and Err is only
// non-nil for OutcomeError.
type AuthResult struct {
	Outcome Outcome
	Message string
	User    *User
	Err     error
}

func Success(message string) AuthResult {
	return AuthResult{Outcome: OutcomeSuccess, Message: message}
}

func Failure(err error) AuthResult {
	return AuthResult{Outcome: OutcomeError, Message: UserMessage(err), Err: err}
}

func LoggedIn(user User) AuthResult {
	return AuthResult{Outcome: OutcomeLoggedIn, Message: user.Username, User: &user}
}

func (r AuthResult) IsLoggedIn() bool {
	return r.Outcome == OutcomeLoggedIn
}

func (r AuthResult) String() string {
	return fmt.Sprintf("%s(%s)", r.Outcome, r.Message)
}
