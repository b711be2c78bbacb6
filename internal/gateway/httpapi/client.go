// Package httpapi implements the diagnosis gateway over the remote HTTP API.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cropdoctor/diagnosis-api/internal/gateway"
	"github.com/cropdoctor/diagnosis-api/internal/model"
)

const (
	basePath = "/api/v1/diagnoses"

	// wireTimeLayout is the ISO-8601-like timestamp format the remote API
	// uses, interpreted as UTC.
	wireTimeLayout = "2006-01-02T15:04:05"

	defaultLimit = 10
)

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Create(ctx context.Context, req *model.CreateDiagnosisRequest) (*model.Diagnosis, error) {
	body := &strings.Builder{}
	form := multipart.NewWriter(body)

	fields := map[string]*string{
		"question":           req.Question,
		"audio":              req.AudioPath,
		"farmer_id":          req.FarmerID,
		"province":           req.Province,
		"district":           req.District,
		"weather_conditions": req.WeatherConditions,
	}
	if err := form.WriteField("image", req.ImagePath); err != nil {
		return nil, &gateway.TransportError{Kind: gateway.KindMalformed, Err: err}
	}
	for name, value := range fields {
		if value == nil {
			continue
		}
		if err := form.WriteField(name, *value); err != nil {
			return nil, &gateway.TransportError{Kind: gateway.KindMalformed, Err: err}
		}
	}
	numeric := map[string]*float64{
		"latitude":    req.Latitude,
		"longitude":   req.Longitude,
		"temperature": req.Temperature,
		"humidity":    req.Humidity,
	}
	for name, value := range numeric {
		if value == nil {
			continue
		}
		if err := form.WriteField(name, strconv.FormatFloat(*value, 'f', -1, 64)); err != nil {
			return nil, &gateway.TransportError{Kind: gateway.KindMalformed, Err: err}
		}
	}
	if err := form.Close(); err != nil {
		return nil, &gateway.TransportError{Kind: gateway.KindMalformed, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+basePath, strings.NewReader(body.String()))
	if err != nil {
		return nil, &gateway.TransportError{Kind: gateway.KindMalformed, Err: err}
	}
	httpReq.Header.Set("Content-Type", form.FormDataContentType())

	var dto diagnosisResponse
	if err := c.do(httpReq, &dto); err != nil {
		return nil, err
	}
	return dto.toModel(), nil
}

func (c *Client) GetByID(ctx context.Context, id int) (*model.Diagnosis, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s%s/%d", c.baseURL, basePath, id), nil)
	if err != nil {
		return nil, &gateway.TransportError{Kind: gateway.KindMalformed, Err: err}
	}

	var dto diagnosisResponse
	if err := c.do(httpReq, &dto); err != nil {
		return nil, err
	}
	return dto.toModel(), nil
}

func (c *Client) GetHistory(ctx context.Context, farmerID *string, limit, offset int) ([]*model.Diagnosis, int, error) {
	if limit <= 0 {
		limit = defaultLimit
	}
	if offset < 0 {
		offset = 0
	}

	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))
	if farmerID != nil {
		query.Set("farmer_id", *farmerID)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+basePath+"?"+query.Encode(), nil)
	if err != nil {
		return nil, 0, &gateway.TransportError{Kind: gateway.KindMalformed, Err: err}
	}

	var dto historyResponse
	if err := c.do(httpReq, &dto); err != nil {
		return nil, 0, err
	}

	records := make([]*model.Diagnosis, 0, len(dto.Diagnoses))
	for i := range dto.Diagnoses {
		records = append(records, dto.Diagnoses[i].toModel())
	}
	return records, dto.Total, nil
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return classify(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return &gateway.TransportError{
			Kind:       gateway.KindNotFound,
			StatusCode: resp.StatusCode,
			Err:        errors.New("resource not found"),
		}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &gateway.TransportError{
			Kind:       gateway.KindServerError,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", strings.TrimSpace(string(payload))),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &gateway.TransportError{Kind: gateway.KindMalformed, Err: err}
	}
	return nil
}

func classify(err error) *gateway.TransportError {
	var netErr net.Error
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return &gateway.TransportError{Kind: gateway.KindTimeout, Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &gateway.TransportError{Kind: gateway.KindTimeout, Err: err}
	default:
		return &gateway.TransportError{Kind: gateway.KindUnreachable, Err: err}
	}
}
