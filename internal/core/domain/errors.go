package domain

import "fmt"

var (
	ErrAccountNotFound  = fmt.Errorf("account not found")
	ErrMetadataNotFound = fmt.Errorf("account metadata not found")
	ErrSenderNotFound   = fmt.Errorf("sender not found")
	// ErrFeeJuiceEmpty is returned when popping a recipient's fee-juice stack
	// while its stack pointer is 0.
	ErrFeeJuiceEmpty      = fmt.Errorf("no stored fee juice for recipient")
	ErrUnknownAccountType = fmt.Errorf("unknown account type")
	ErrMissingAlias       = fmt.Errorf("missing alias")
)
