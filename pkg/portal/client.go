// Package portal is the typed HTTP client for the StackBill portal
// API. It mirrors the API's envelope and error conventions: successful
// payloads arrive under a per-route envelope key, and error bodies
// carry a human-readable "message" (or legacy "error") field which is
// surfaced verbatim when present.
package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	invoicedomain "github.com/stackbill/stackbill/internal/invoice/domain"
	paymentdomain "github.com/stackbill/stackbill/internal/payment/domain"
	plandomain "github.com/stackbill/stackbill/internal/plan/domain"
	subscriptiondomain "github.com/stackbill/stackbill/internal/subscription/domain"
	ticketdomain "github.com/stackbill/stackbill/internal/ticket/domain"
)

const apiKeyHeader = "APIKey"

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient substitutes the underlying HTTP client, e.g. for
// custom timeouts or test transports.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL, apiKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// APIError is a non-2xx response. Message holds the server's own
// wording when the body carried one, otherwise the caller-supplied
// fallback for the operation.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("portal: %s (status %d)", e.Message, e.StatusCode)
}

type SaveResult struct {
	Message string              `json:"message"`
	Plan    *plandomain.Response `json:"plan"`
}

func (c *Client) SavePlan(ctx context.Context, req plandomain.SaveRequest) (*SaveResult, error) {
	var out SaveResult
	err := c.do(ctx, http.MethodPost, "/api/node/createplan", nil, req, &out, "Failed to save plan.")
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetPlan(ctx context.Context, id int64) (*plandomain.Response, error) {
	var out struct {
		Plan *plandomain.Response `json:"plan"`
	}
	path := "/api/node/plan/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &out, "Failed to fetch plan."); err != nil {
		return nil, err
	}
	return out.Plan, nil
}

func (c *Client) ListPlans(ctx context.Context) ([]plandomain.Response, error) {
	var out struct {
		Plans []plandomain.Response `json:"plans"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/node/plans", nil, nil, &out, "Failed to fetch plans."); err != nil {
		return nil, err
	}
	return out.Plans, nil
}

func (c *Client) DeletePlan(ctx context.Context, id int64) error {
	path := "/api/node/plan/" + strconv.FormatInt(id, 10)
	return c.do(ctx, http.MethodDelete, path, nil, nil, nil, "Failed to delete plan.")
}

func (c *Client) UserPlan(ctx context.Context, userID string) (*subscriptiondomain.UserPlanDetails, error) {
	var out struct {
		Plan *subscriptiondomain.UserPlanDetails `json:"plan"`
	}
	query := url.Values{"userId": {userID}}
	if err := c.do(ctx, http.MethodGet, "/api/node/userplan", query, nil, &out, "Failed to fetch current plan."); err != nil {
		return nil, err
	}
	return out.Plan, nil
}

func (c *Client) AllUserPlans(ctx context.Context) ([]subscriptiondomain.UserPlanDetails, error) {
	var out struct {
		Plans []subscriptiondomain.UserPlanDetails `json:"plans"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/node/alluserplans", nil, nil, &out, "Failed to fetch user plans."); err != nil {
		return nil, err
	}
	return out.Plans, nil
}

func (c *Client) CancelSubscription(ctx context.Context, userID string, planID int64) error {
	body := map[string]any{"userId": userID, "planId": planID}
	return c.do(ctx, http.MethodPost, "/api/node/cancel-subscription", nil, body, nil, "Failed to cancel subscription.")
}

func (c *Client) UserInvoiceHistory(ctx context.Context, userID string) ([]invoicedomain.Response, error) {
	var out struct {
		Invoices []invoicedomain.Response `json:"invoices"`
	}
	query := url.Values{"userId": {userID}}
	if err := c.do(ctx, http.MethodGet, "/api/node/userinvoicehistory", query, nil, &out, "Failed to fetch invoice history."); err != nil {
		return nil, err
	}
	return out.Invoices, nil
}

func (c *Client) AllInvoices(ctx context.Context) ([]invoicedomain.Response, error) {
	var out struct {
		Invoices []invoicedomain.Response `json:"invoices"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/node/invoices", nil, nil, &out, "Failed to fetch invoices."); err != nil {
		return nil, err
	}
	return out.Invoices, nil
}

func (c *Client) CreateTicket(ctx context.Context, req ticketdomain.CreateRequest) (*ticketdomain.Response, error) {
	var out struct {
		Ticket *ticketdomain.Response `json:"ticket"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/node/ticket", nil, req, &out, "Failed to submit ticket."); err != nil {
		return nil, err
	}
	return out.Ticket, nil
}

func (c *Client) AllTickets(ctx context.Context) ([]ticketdomain.Response, error) {
	var out struct {
		Tickets []ticketdomain.Response `json:"tickets"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/node/allticket", nil, nil, &out, "Failed to fetch tickets."); err != nil {
		return nil, err
	}
	return out.Tickets, nil
}

func (c *Client) CreatePaymentIntent(ctx context.Context, req paymentdomain.CreateIntentRequest) (*paymentdomain.Intent, error) {
	var out struct {
		Intent *paymentdomain.Intent `json:"intent"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/node/create-payment-intent", nil, req, &out, "Failed to start payment."); err != nil {
		return nil, err
	}
	return out.Intent, nil
}

func (c *Client) Cards(ctx context.Context, userID string) ([]paymentdomain.Card, error) {
	var out struct {
		Cards []paymentdomain.Card `json:"cards"`
	}
	query := url.Values{"userId": {userID}}
	if err := c.do(ctx, http.MethodGet, "/api/node/cards", query, nil, &out, "Failed to fetch cards."); err != nil {
		return nil, err
	}
	return out.Cards, nil
}

func (c *Client) SetDefaultCard(ctx context.Context, userID, paymentMethodID string) error {
	body := map[string]any{"userId": userID, "paymentMethodId": paymentMethodID}
	return c.do(ctx, http.MethodPost, "/api/node/setdefaultcard", nil, body, nil, "Failed to set default card.")
}

func (c *Client) DeleteCard(ctx context.Context, userID, paymentMethodID string) error {
	query := url.Values{"userId": {userID}}
	return c.do(ctx, http.MethodDelete, "/api/node/card/"+url.PathEscape(paymentMethodID), query, nil, nil, "Failed to remove card.")
}

func (c *Client) IsAdmin(ctx context.Context, userID string) (bool, error) {
	var out struct {
		IsAdmin bool `json:"isAdmin"`
	}
	query := url.Values{"userId": {userID}}
	if err := c.do(ctx, http.MethodGet, "/api/node/isadmin", query, nil, &out, "Failed to check admin status."); err != nil {
		return false, err
	}
	return out.IsAdmin, nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, fallback string) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw, fallback),
		}
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(raw, out)
}

// errorMessage prefers the server's "message", then "error", and only
// then the static fallback. A body that fails to parse also falls
// back.
func errorMessage(raw []byte, fallback string) string {
	var body struct {
		Message string `json:"message"`
		Err     string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Err != "" {
			return body.Err
		}
	}
	return fallback
}
