package marketapi

import (
	"context"
	"encoding/json"
	"github.com/andrew-fenton/sell-bot/pkg/credential"
	"github.com/andrew-fenton/sell-bot/pkg/marketerror"
	"github.com/andrew-fenton/sell-bot/pkg/model"
	"github.com/pkg/errors"
	"net/http"
	"strings"
	"time"
)

// Client talks to the marketplace REST API. Both credentials are read
// from the store on every request, never cached on the client.
type Client struct {
	baseURL string
	timeout time.Duration
	store   *credential.Store
}

func NewClient(baseURL string, timeout time.Duration, store *credential.Store) Client {
	return Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		timeout: timeout,
		store:   store,
	}
}

func (c Client) ActiveListings(parent context.Context) ([]model.Listing, error) {
	ctx, cancel := context.WithTimeout(parent, c.timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/listings/active", nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}

	c.authorize(request)

	client := &http.Client{
		Timeout: c.timeout,
	}

	resp, err := client.Do(request)
	if err != nil {
		return nil, marketerror.ListingsFetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, marketerror.ListingsFetchError{Err: errors.New("unexpected status: " + resp.Status)}
	}

	var listings []model.Listing
	err = json.NewDecoder(resp.Body).Decode(&listings)
	if err != nil {
		return nil, marketerror.ListingsFetchError{Err: errors.Wrap(err, "failed to decode listings")}
	}

	return listings, nil
}

func (c Client) ConfirmSale(parent context.Context, listingID string) error {
	ctx, cancel := context.WithTimeout(parent, c.timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx,
		http.MethodPatch,
		c.baseURL+"/api/v1/listings/"+listingID+"/confirm",
		nil)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}

	c.authorize(request)

	client := &http.Client{
		Timeout: c.timeout,
	}

	resp, err := client.Do(request)
	if err != nil {
		return marketerror.ConfirmSaleError{ListingID: listingID, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return marketerror.ConfirmSaleError{ListingID: listingID, Err: errors.New("unexpected status: " + resp.Status)}
	}

	return nil
}

// FetchAccessToken exchanges the session cookie for a fresh bearer token.
// The cookie is passed in rather than read from the store so bootstrap
// can run before the store is populated.
func (c Client) FetchAccessToken(parent context.Context, sessionCookie string) (string, error) {
	ctx, cancel := context.WithTimeout(parent, c.timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/auth/token", nil)
	if err != nil {
		return "", errors.Wrap(err, "failed to create request")
	}

	request.Header.Set("Cookie", sessionCookie)

	client := &http.Client{
		Timeout: c.timeout,
	}

	resp, err := client.Do(request)
	if err != nil {
		return "", marketerror.CredentialFetchError{Credential: "access token", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", marketerror.CredentialFetchError{
			Credential: "access token",
			Err:        errors.New("unexpected status: " + resp.Status),
		}
	}

	var body struct {
		AccessToken string `json:"accessToken"`
	}
	err = json.NewDecoder(resp.Body).Decode(&body)
	if err != nil {
		return "", marketerror.CredentialFetchError{
			Credential: "access token",
			Err:        errors.Wrap(err, "failed to decode token response"),
		}
	}

	if body.AccessToken == "" {
		return "", marketerror.CredentialFetchError{
			Credential: "access token",
			Err:        errors.New("empty token in response"),
		}
	}

	return body.AccessToken, nil
}

func (c Client) authorize(request *http.Request) {
	if token := c.store.AccessToken(); token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	if cookie := c.store.SessionCookie(); cookie != "" {
		request.Header.Set("Cookie", cookie)
	}
}
