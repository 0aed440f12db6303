package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// TokenSource supplies the bearer token for authenticated requests. An empty
// token means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// Client talks to the LogiTrack HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	tokens    TokenSource
}

const (
	defaultBaseURL   = "https://vps.logitrack.site:40761"
	defaultUserAgent = "dispatch/0.1"
	requestTimeout   = 10 * time.Second
)

// APIError is a non-2xx response. Message carries the server's error text
// when the body was decodable, so user-initiated writes can surface it.
type APIError struct {
	StatusCode int
	Path       string
	Message    string
}

// Error implements error.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api %s returned status %d", e.Path, e.StatusCode)
}

// NewClient builds a Client for the given base URL. An empty value selects
// the production endpoint.
func NewClient(base string, tokens TokenSource) (*Client, error) {
	parsed, err := parseBaseURL(base)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: parsed,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
		tokens:    tokens,
	}, nil
}

// Auth

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, creds Credentials) (*AuthResponse, error) {
	var payload AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", creds, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Register creates a new account pending email confirmation.
func (c *Client) Register(ctx context.Context, reg Registration) (*AuthResponse, error) {
	var payload AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/register", reg, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Confirm finalises a registration with the emailed confirmation code.
func (c *Client) Confirm(ctx context.Context, email, code string) error {
	body := map[string]string{"email": email, "code": code}
	return c.do(ctx, http.MethodPost, "/api/auth/confirm", body, nil)
}

// ResendConfirmation asks the server to email a fresh confirmation code.
func (c *Client) ResendConfirmation(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return c.do(ctx, http.MethodPost, "/api/auth/resend-confirmation", body, nil)
}

// Couriers

// ActiveCouriers retrieves the couriers the server currently reports active.
func (c *Client) ActiveCouriers(ctx context.Context) ([]Courier, error) {
	var payload []Courier
	if err := c.do(ctx, http.MethodGet, "/api/active-couriers", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// Courier retrieves a single courier, including its latest position.
func (c *Client) Courier(ctx context.Context, id int64) (*Courier, error) {
	var payload Courier
	if err := c.do(ctx, http.MethodGet, "/api/couriers/"+itoa(id), nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// CourierDestination retrieves the courier's current destination, when any.
func (c *Client) CourierDestination(ctx context.Context, id int64) (*Destination, error) {
	var payload Destination
	if err := c.do(ctx, http.MethodGet, "/api/couriers/"+itoa(id)+"/destination", nil, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// CourierOrders lists the orders currently assigned to a courier.
func (c *Client) CourierOrders(ctx context.Context, id int64) ([]Order, error) {
	var payload []Order
	if err := c.do(ctx, http.MethodGet, "/api/couriers/"+itoa(id)+"/orders", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// SetCourierActive flips the courier's availability flag.
func (c *Client) SetCourierActive(ctx context.Context, id int64, active bool) error {
	body := map[string]bool{"active": active}
	return c.do(ctx, http.MethodPut, "/api/couriers/"+itoa(id)+"/active", body, nil)
}

// ReportLocation pushes the courier's own position to the server.
func (c *Client) ReportLocation(ctx context.Context, report LocationReport) error {
	return c.do(ctx, http.MethodPost, "/api/courier-location", report, nil)
}

// Deliveries

// Deliveries retrieves the full delivery list.
func (c *Client) Deliveries(ctx context.Context) ([]Delivery, error) {
	var payload []Delivery
	if err := c.do(ctx, http.MethodGet, "/api/deliveries", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// DeliveriesWithProducts retrieves deliveries joined with their line items.
func (c *Client) DeliveriesWithProducts(ctx context.Context) ([]Delivery, error) {
	var payload []Delivery
	if err := c.do(ctx, http.MethodGet, "/api/deliveries-with-products", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// AddDelivery creates a delivery.
func (c *Client) AddDelivery(ctx context.Context, delivery NewDelivery) error {
	return c.do(ctx, http.MethodPost, "/api/deliveries/add", delivery, nil)
}

// UpdateDelivery rewrites a delivery's mutable fields.
func (c *Client) UpdateDelivery(ctx context.Context, delivery Delivery) error {
	return c.do(ctx, http.MethodPut, "/api/deliveries/"+itoa(delivery.ID), delivery, nil)
}

// StartDelivery marks a delivery as started.
func (c *Client) StartDelivery(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPut, "/api/deliveries/"+itoa(id)+"/start", nil, nil)
}

// CompleteDelivery marks a delivery as delivered.
func (c *Client) CompleteDelivery(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodPut, "/api/deliveries/"+itoa(id)+"/complete", nil, nil)
}

// SetEstimatedTime records the estimated delivery duration in seconds.
func (c *Client) SetEstimatedTime(ctx context.Context, id int64, seconds int64) error {
	body := map[string]int64{"estimated_seconds": seconds}
	return c.do(ctx, http.MethodPut, "/api/deliveries/"+itoa(id)+"/estimated-time", body, nil)
}

// Duration retrieves a delivery's recorded duration in seconds.
func (c *Client) Duration(ctx context.Context, id int64) (int64, error) {
	var payload struct {
		Seconds int64 `json:"seconds"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/deliveries/"+itoa(id)+"/duration", nil, &payload); err != nil {
		return 0, err
	}
	return payload.Seconds, nil
}

// SetDuration overwrites a delivery's recorded duration.
func (c *Client) SetDuration(ctx context.Context, id int64, seconds int64) error {
	body := map[string]int64{"seconds": seconds}
	return c.do(ctx, http.MethodPut, "/api/deliveries/"+itoa(id)+"/duration", body, nil)
}

// Orders

// Orders retrieves the order list.
func (c *Client) Orders(ctx context.Context) ([]Order, error) {
	var payload []Order
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// AssignOrder attaches an order to a courier.
func (c *Client) AssignOrder(ctx context.Context, orderID, courierID int64) error {
	body := map[string]int64{"order_id": orderID, "courier_id": courierID}
	return c.do(ctx, http.MethodPost, "/api/orders/assign", body, nil)
}

// AutoAssignOrders asks the server to distribute pending orders across
// active couriers. The assignment algorithm is server-side; the response is
// the refreshed order list.
func (c *Client) AutoAssignOrders(ctx context.Context) ([]Order, error) {
	var payload []Order
	if err := c.do(ctx, http.MethodPost, "/api/orders/auto-assign", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// RemoveOrder detaches an order from its courier.
func (c *Client) RemoveOrder(ctx context.Context, orderID int64) error {
	body := map[string]int64{"order_id": orderID}
	return c.do(ctx, http.MethodPost, "/api/orders/remove", body, nil)
}

// Warehouse

// Products retrieves the warehouse product list.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var payload []Product
	if err := c.do(ctx, http.MethodGet, "/api/warehouse/products", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// AddProduct creates a warehouse product.
func (c *Client) AddProduct(ctx context.Context, product Product) error {
	return c.do(ctx, http.MethodPost, "/api/warehouse/products", product, nil)
}

// UpdateProduct rewrites a warehouse product.
func (c *Client) UpdateProduct(ctx context.Context, product Product) error {
	return c.do(ctx, http.MethodPut, "/api/warehouse/products/"+itoa(product.ID), product, nil)
}

// DeleteProduct removes a warehouse product.
func (c *Client) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/warehouse/products/"+itoa(id), nil, nil)
}

// Stats

// FetchStats gathers every dashboard aggregate. Endpoints fail independently;
// the first error is returned after the remaining sections were still
// attempted, so a single broken endpoint does not blank the others.
func (c *Client) FetchStats(ctx context.Context) (*Stats, error) {
	var stats Stats
	var firstErr error

	record := func(err error) {
		if err != nil && firstErr == nil {
			firstErr = err
		}
	}

	record(c.do(ctx, http.MethodGet, "/api/delivery-stats", nil, &stats.Delivery))
	record(c.do(ctx, http.MethodGet, "/api/order-stats", nil, &stats.Order))
	record(c.do(ctx, http.MethodGet, "/api/warehouse-stats", nil, &stats.Warehouse))
	record(c.do(ctx, http.MethodGet, "/api/courier-stats", nil, &stats.Courier))
	record(c.do(ctx, http.MethodGet, "/api/employee-stats", nil, &stats.Employee))
	record(c.do(ctx, http.MethodGet, "/api/user-stats", nil, &stats.User))

	if firstErr != nil {
		return &stats, firstErr
	}
	return &stats, nil
}

// Users

// Users retrieves the user list. Admin only.
func (c *Client) Users(ctx context.Context) ([]User, error) {
	var payload []User
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &payload); err != nil {
		return nil, err
	}
	return payload, nil
}

// UpdateUser rewrites a user's profile fields.
func (c *Client) UpdateUser(ctx context.Context, user User) error {
	return c.do(ctx, http.MethodPut, "/api/users/"+itoa(user.ID), user, nil)
}

// DeleteUser removes a user account.
func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/users/"+itoa(id), nil, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Path: path}
		var failure struct {
			Message string `json:"message"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&failure); decodeErr == nil {
			apiErr.Message = failure.Message
		}
		return apiErr
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func parseBaseURL(base string) (*url.URL, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = defaultBaseURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api base %q: %w", base, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
