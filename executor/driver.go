package executor

import "context"

// Driver opens fresh browser pages for scenario runs. Each page is owned by
// exactly one scenario iteration and must be closed before the iteration
// returns.
type Driver interface {
	NewPage(ctx context.Context, headed bool) (Page, error)
}

// Page is one live browser page. All operations honor the deadline of the
// context they are given.
type Page interface {
	Navigate(ctx context.Context, url string) error
	WaitVisible(ctx context.Context, selector string) error
	WaitText(ctx context.Context, text string) error
	Click(ctx context.Context, selector string) error
	Fill(ctx context.Context, selector, value string) error
	SelectOption(ctx context.Context, selector, value string) error
	SetChecked(ctx context.Context, selector string, checked bool) error
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}
