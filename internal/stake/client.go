// Package stake is the resilient client for the casino GraphQL API.
package stake

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/stakebot/internal/config"
	"github.com/yourusername/stakebot/internal/models"
)

// DefaultAPIURL is the public GraphQL endpoint
const DefaultAPIURL = "https://stake.krd/_api/graphql"

// DefaultIdentifier is the client seed identifier sent when none is generated per bet
const DefaultIdentifier = "PeLCm-dvHjrDsj-CeIKCk"

// DiceBetRequest is a single dice roll
type DiceBetRequest struct {
	Amount     decimal.Decimal
	Currency   models.Currency
	Chance     decimal.Decimal
	Condition  models.Direction
	Identifier string
}

// Target returns the wire target for the request's chance and condition
func (r DiceBetRequest) Target() decimal.Decimal {
	m := models.WagerModifiers{Chance: r.Chance, Direction: r.Condition}
	return m.DiceTarget()
}

// LimboBetRequest is a single limbo bet
type LimboBetRequest struct {
	Amount           decimal.Decimal
	Currency         models.Currency
	MultiplierTarget decimal.Decimal
	Identifier       string
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithIdentifierFunc overrides how the per-bet identifier is chosen
func WithIdentifierFunc(fn func() string) ClientOption {
	return func(c *Client) { c.identifier = fn }
}

// WithRandomIdentifier sends a fresh uuid with every bet
func WithRandomIdentifier() ClientOption {
	return WithIdentifierFunc(func() string { return uuid.NewString() })
}

// Client places bets and reads balances. Transient failures are retried inside
// the transport; every error it returns is final for that call.
type Client struct {
	transport  *Transport
	url        string
	header     http.Header
	identifier func() string
	logger     *logrus.Logger
}

// NewClient creates a new casino API client. Missing credentials fail here,
// before any request is attempted.
func NewClient(url string, creds Credentials, userAgent string, transport *Transport, logger *logrus.Logger, opts ...ClientOption) (*Client, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	if url == "" {
		url = DefaultAPIURL
	}

	c := &Client{
		transport:  transport,
		url:        url,
		header:     creds.Header(userAgent),
		identifier: func() string { return DefaultIdentifier },
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewClientFromConfig wires a Client and its Transport from the stake section
func NewClientFromConfig(cfg config.StakeConfig, logger *logrus.Logger) (*Client, error) {
	var opts []ClientOption
	switch {
	case cfg.RandomIdentifier:
		opts = append(opts, WithRandomIdentifier())
	case cfg.Identifier != "":
		id := cfg.Identifier
		opts = append(opts, WithIdentifierFunc(func() string { return id }))
	}

	transport := NewTransport(TransportConfigFromStake(cfg), logger)
	return NewClient(cfg.APIURL, CredentialsFromConfig(cfg), cfg.UserAgent, transport, logger, opts...)
}

// Transport returns the underlying transport so callers can register retry hooks
func (c *Client) Transport() *Transport {
	return c.transport
}

// GetBalances returns the available and vaulted balance of every currency
func (c *Client) GetBalances(ctx context.Context) (models.Balances, error) {
	resp, err := c.execute(ctx, graphQLRequest{
		Query:         userBalancesQuery,
		OperationName: OperationUserBalances,
	})
	if err != nil {
		return nil, err
	}
	if resp.Bet != nil {
		return nil, NewUnrecognizedResponseShapeError("bet payload in reply to %s", OperationUserBalances)
	}
	return resp.Balances, nil
}

// PlaceDiceBet places a dice roll
func (c *Client) PlaceDiceBet(ctx context.Context, req DiceBetRequest) (*models.BetResult, error) {
	if req.Identifier == "" {
		req.Identifier = c.identifier()
	}
	return c.placeBet(ctx, graphQLRequest{
		Query:         diceRollMutation,
		OperationName: OperationDiceRoll,
		Variables: map[string]interface{}{
			"amount":     json.Number(req.Amount.String()),
			"target":     json.Number(req.Target().String()),
			"condition":  string(req.Condition),
			"currency":   string(req.Currency),
			"identifier": req.Identifier,
		},
	})
}

// PlaceLimboBet places a limbo bet
func (c *Client) PlaceLimboBet(ctx context.Context, req LimboBetRequest) (*models.BetResult, error) {
	if req.Identifier == "" {
		req.Identifier = c.identifier()
	}
	return c.placeBet(ctx, graphQLRequest{
		Query:         limboBetMutation,
		OperationName: OperationLimboBet,
		Variables: map[string]interface{}{
			"amount":           json.Number(req.Amount.String()),
			"multiplierTarget": json.Number(req.MultiplierTarget.String()),
			"currency":         string(req.Currency),
			"identifier":       req.Identifier,
		},
	})
}

// PlaceBet places one bet of the given game using the current modifiers
func (c *Client) PlaceBet(ctx context.Context, game models.Game, m *models.WagerModifiers) (*models.BetResult, error) {
	switch game {
	case models.GameDice:
		return c.PlaceDiceBet(ctx, DiceBetRequest{
			Amount:    m.Amount,
			Currency:  m.Currency,
			Chance:    m.Chance,
			Condition: m.Direction,
		})
	case models.GameLimbo:
		return c.PlaceLimboBet(ctx, LimboBetRequest{
			Amount:           m.Amount,
			Currency:         m.Currency,
			MultiplierTarget: m.LimboMultiplierTarget(),
		})
	default:
		return nil, fmt.Errorf("%w: game %q", models.ErrUnknownEnum, game)
	}
}

func (c *Client) placeBet(ctx context.Context, req graphQLRequest) (*models.BetResult, error) {
	resp, err := c.execute(ctx, req)
	if err != nil {
		return nil, err
	}
	if resp.Bet == nil {
		return nil, NewUnrecognizedResponseShapeError("balances payload in reply to %s", req.OperationName)
	}

	c.logger.WithFields(logrus.Fields{
		"component": "stake",
		"operation": req.OperationName,
		"bet_id":    resp.Bet.ID,
		"win":       resp.Bet.Win(),
	}).Debug("Bet settled")
	return resp.Bet, nil
}

func (c *Client) execute(ctx context.Context, req graphQLRequest) (*response, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	raw, err := c.transport.Post(ctx, req.OperationName, c.url, c.header, body)
	if err != nil {
		c.logger.WithFields(logrus.Fields{
			"component": "stake",
			"operation": req.OperationName,
			"error":     err,
		}).Error("Casino request failed")
		return nil, err
	}

	return parseResponse(raw)
}
