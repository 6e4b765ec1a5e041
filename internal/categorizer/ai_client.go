package categorizer

import "context"

// AIClient suggests an account for a description that no rule matched.
// Implementations must answer with one of the offered accounts; anything
// else is discarded by the caller.
type AIClient interface {
	SuggestAccount(ctx context.Context, description string, accounts []string) (string, error)
}
