package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
)

const maxErrorBody = 2048

type razorpayGateway struct {
	client    *http.Client
	baseURL   string
	keyID     string
	keySecret string
}

func NewRazorpayGateway(baseURL, keyID, keySecret string, timeout time.Duration) PaymentGateway {
	return &razorpayGateway{
		client:    &http.Client{Timeout: timeout},
		baseURL:   baseURL,
		keyID:     keyID,
		keySecret: keySecret,
	}
}

func (g *razorpayGateway) KeyID() string {
	return g.keyID
}

func (g *razorpayGateway) CreateOrder(ctx context.Context, req OrderRequest) (*Order, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrap(err, "marshal order request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "build order request")
	}
	httpReq.SetBasicAuth(g.keyID, g.keySecret)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return nil, errors.Wrap(fmt.Errorf("%w: %v", ErrGateway, err), "create order")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(fmt.Errorf("%w: read body: %v", ErrGateway, err), "create order")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(respBody) > maxErrorBody {
			respBody = respBody[:maxErrorBody]
		}
		return nil, errors.Wrap(fmt.Errorf("%w: %s: %s", ErrGateway, resp.Status, respBody), "create order")
	}

	var order Order
	if err := json.Unmarshal(respBody, &order); err != nil {
		return nil, errors.Wrap(fmt.Errorf("%w: decode body: %v", ErrGateway, err), "create order")
	}
	if order.ID == "" {
		return nil, errors.Wrap(fmt.Errorf("%w: response without order id", ErrGateway), "create order")
	}
	return &order, nil
}
