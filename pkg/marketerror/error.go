package marketerror

import (
	"fmt"
)

type CredentialFetchError struct {
	Credential string
	Err        error
}

type ListingsFetchError struct {
	Err error
}

type ConfirmSaleError struct {
	ListingID string
	Err       error
}

type DispatchError struct {
	ListingID string
	Err       error
}

func (e CredentialFetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %s", e.Credential, e.Err)
}

func (e CredentialFetchError) Unwrap() error {
	return e.Err
}

func (e ListingsFetchError) Error() string {
	return fmt.Sprintf("failed to fetch active listings: %s", e.Err)
}

func (e ListingsFetchError) Unwrap() error {
	return e.Err
}

func (e ConfirmSaleError) Error() string {
	return fmt.Sprintf("failed to confirm sale for listing %s: %s", e.ListingID, e.Err)
}

func (e ConfirmSaleError) Unwrap() error {
	return e.Err
}

func (e DispatchError) Error() string {
	return fmt.Sprintf("failed to dispatch transfer for listing %s: %s", e.ListingID, e.Err)
}

func (e DispatchError) Unwrap() error {
	return e.Err
}
