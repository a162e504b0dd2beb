package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"github.com/keyurgolani/BabyNest-sub006/internal"
)

// RemoteAuthProvider asks an external auth service to resolve tokens.
// Transport errors and 5xx responses are retried; 401/403 are final.
type RemoteAuthProvider struct {
	AuthServiceURL string
	HTTPClient     *http.Client
	Attempts       uint
	logger         internal.Logger
}

type statusError struct{ code int }

func (e statusError) Error() string { return fmt.Sprintf("auth service returned %d", e.code) }

func (a *RemoteAuthProvider) ValidateTokenLocal(token string) (*internal.Caregiver, error) {
	return nil, errors.New("not implemented in RemoteAuthProvider")
}

func (a *RemoteAuthProvider) ValidateTokenRemote(ctx context.Context, token string) (*internal.Caregiver, error) {
	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return nil, err
	}
	var caregiver *internal.Caregiver
	err = retry.Do(func() error {
		c, err := a.call(ctx, body)
		if err != nil {
			return err
		}
		caregiver = c
		return nil
	},
		retry.Context(ctx),
		retry.Attempts(a.Attempts),
		retry.Delay(50*time.Millisecond),
		retry.MaxDelay(time.Second),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var se statusError
			if errors.As(err, &se) {
				return se.code >= http.StatusInternalServerError
			}
			return !errors.Is(err, ErrInvalidToken)
		}),
		retry.OnRetry(func(n uint, err error) {
			a.logger.Warnw("retrying auth service call", "attempt", n+1, "error", err)
		}),
	)
	if err != nil {
		a.logger.Errorw("remote token validation failed", "error", err)
		return nil, err
	}
	return caregiver, nil
}

func (a *RemoteAuthProvider) call(ctx context.Context, body []byte) (*internal.Caregiver, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.AuthServiceURL, bytes.NewReader(body))
	if err != nil {
		return nil, retry.Unrecoverable(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := a.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrInvalidToken
	case resp.StatusCode != http.StatusOK:
		return nil, statusError{code: resp.StatusCode}
	}
	var caregiver internal.Caregiver
	if err := json.NewDecoder(resp.Body).Decode(&caregiver); err != nil {
		return nil, retry.Unrecoverable(fmt.Errorf("decode auth response: %w", err))
	}
	if caregiver.ID == "" {
		return nil, ErrInvalidToken
	}
	return &caregiver, nil
}

func NewRemoteAuthProvider(url string, logger internal.Logger) *RemoteAuthProvider {
	return &RemoteAuthProvider{
		AuthServiceURL: url,
		HTTPClient:     &http.Client{Timeout: 5 * time.Second},
		Attempts:       3,
		logger:         logger.With("component", "remote_auth"),
	}
}
