package offers

import "fmt"

// AuthError reports a failed authentication call. The previous access token
// stays live; callers decide whether and when to retry.
type AuthError struct {
	Status int
	Err    error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authenticate: %v", e.Err)
	}
	return fmt.Sprintf("authenticate: unexpected status %d", e.Status)
}

func (e *AuthError) Unwrap() error { return e.Err }

// FetchError reports a failed offer lookup for one product. Non-200
// responses are expected outcomes and are carried here with their status.
type FetchError struct {
	ProductID string
	Status    int
	Err       error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch offers for %s: %v", e.ProductID, e.Err)
	}
	return fmt.Sprintf("fetch offers for %s: unexpected status %d", e.ProductID, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// RegisterError reports a failed product registration. The caller owns any
// compensating action on its local state.
type RegisterError struct {
	ProductID string
	Status    int
	Err       error
}

func (e *RegisterError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("register product %s: %v", e.ProductID, e.Err)
	}
	return fmt.Sprintf("register product %s: unexpected status %d", e.ProductID, e.Status)
}

func (e *RegisterError) Unwrap() error { return e.Err }
