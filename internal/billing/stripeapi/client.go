// Package stripeapi реализует клиент REST API биллинг-провайдера.
//
// Клиент — тонкая обертка над HTTP: он не пишет в локальное хранилище.
// Сверка локального состояния с внешним — всегда отдельный явный шаг
// вызывающей стороны или движка сверки, поэтому у каждой локальной записи
// есть прослеживаемая причина.
package stripeapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"encoding/json"
)

// ErrNotConfigured клиент создан без секретного ключа. Конструктор не
// падает при отсутствии учетных данных: отличие "не настроено" от
// "сломан код" проверяется через CheckConfiguration.
var ErrNotConfigured = errors.New("billing client is not configured")

const defaultAPIURL = "https://api.stripe.com/v1"

// Client клиент API биллинг-провайдера.
type Client struct {
	secretKey  string
	apiURL     string
	httpClient *http.Client
}

// NewClient создает новый клиент. Пустой secretKey допустим — клиент
// создается в состоянии "не настроен".
func NewClient(secretKey, apiURL string) *Client {
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	return &Client{
		secretKey:  secretKey,
		apiURL:     strings.TrimSuffix(apiURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// IsConfigured сообщает, задан ли секретный ключ.
func (c *Client) IsConfigured() bool {
	return c.secretKey != ""
}

// CheckConfiguration возвращает ErrNotConfigured, если клиенту не хватает
// учетных данных для работы.
func (c *Client) CheckConfiguration() error {
	if !c.IsConfigured() {
		return ErrNotConfigured
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, form url.Values) (*http.Request, error) {
	var body *strings.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	} else {
		body = strings.NewReader("")
	}
	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return req, nil
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var apiErr apiError
		if decErr := json.NewDecoder(resp.Body).Decode(&apiErr); decErr == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("billing api: %s: %s", resp.Status, apiErr.Error.Message)
		}
		return fmt.Errorf("billing api: unexpected status: %s", resp.Status)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// ListCustomersByEmail возвращает клиента с указанной почтой или nil,
// если такого нет. Почта у провайдера не уникальна, берется первый.
func (c *Client) ListCustomersByEmail(ctx context.Context, email string) (*Customer, error) {
	const op = "stripeapi.ListCustomersByEmail"
	if !c.IsConfigured() {
		return nil, fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}

	query := url.Values{}
	query.Set("email", email)
	query.Set("limit", "1")
	req, err := c.newRequest(ctx, http.MethodGet, "/customers?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var list customerList
	if err := c.do(req, &list); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if len(list.Data) == 0 {
		return nil, nil
	}
	return &list.Data[0], nil
}

// CreateCustomer создает клиента у провайдера.
func (c *Client) CreateCustomer(ctx context.Context, email string, metadata map[string]string) (*Customer, error) {
	const op = "stripeapi.CreateCustomer"
	if !c.IsConfigured() {
		return nil, fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}

	form := url.Values{}
	form.Set("email", email)
	for k, v := range metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}
	req, err := c.newRequest(ctx, http.MethodPost, "/customers", form)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var customer Customer
	if err := c.do(req, &customer); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &customer, nil
}

// ListActiveSubscriptions возвращает активные подписки клиента.
func (c *Client) ListActiveSubscriptions(ctx context.Context, customerID string) ([]Subscription, error) {
	const op = "stripeapi.ListActiveSubscriptions"
	if !c.IsConfigured() {
		return nil, fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}

	query := url.Values{}
	query.Set("customer", customerID)
	query.Set("status", "active")
	req, err := c.newRequest(ctx, http.MethodGet, "/subscriptions?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var list subscriptionList
	if err := c.do(req, &list); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return list.Data, nil
}

// CreateSubscription создает подписку на указанный тариф. Подписка
// создается незавершенной: фронтенд доводит оплату по client secret
// из последнего счета.
func (c *Client) CreateSubscription(ctx context.Context, customerID, priceID string) (*Subscription, error) {
	const op = "stripeapi.CreateSubscription"
	if !c.IsConfigured() {
		return nil, fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}

	form := url.Values{}
	form.Set("customer", customerID)
	form.Set("items[0][price]", priceID)
	form.Set("payment_behavior", "default_incomplete")
	form.Add("expand[]", "latest_invoice.payment_intent")
	req, err := c.newRequest(ctx, http.MethodPost, "/subscriptions", form)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var sub Subscription
	if err := c.do(req, &sub); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &sub, nil
}

// CancelSubscription отменяет подписку у провайдера.
func (c *Client) CancelSubscription(ctx context.Context, subscriptionID string) error {
	const op = "stripeapi.CancelSubscription"
	if !c.IsConfigured() {
		return fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}

	req, err := c.newRequest(ctx, http.MethodDelete, "/subscriptions/"+subscriptionID, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// UpdateSubscription переводит позицию подписки на другой тариф.
func (c *Client) UpdateSubscription(ctx context.Context, subscriptionID, itemID, newPriceID string) error {
	const op = "stripeapi.UpdateSubscription"
	if !c.IsConfigured() {
		return fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}

	form := url.Values{}
	form.Set("items[0][id]", itemID)
	form.Set("items[0][price]", newPriceID)
	req, err := c.newRequest(ctx, http.MethodPost, "/subscriptions/"+subscriptionID, form)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.do(req, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
